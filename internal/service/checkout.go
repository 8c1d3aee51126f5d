package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/gateway"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/notify"
	"marketplace-settlement/internal/repository"
	"marketplace-settlement/internal/splitter"
)

type CheckoutService interface {
	StartCheckout(ctx context.Context, customerID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error)
	// ConfirmPayment re-verifies the payment with the gateway and settles.
	// Safe to deliver twice: settlement is idempotent on the gateway
	// transaction id.
	ConfirmPayment(ctx context.Context, kind gateway.Kind, handle string) (*dto.ConfirmResponse, error)
	HandleWebhook(ctx context.Context, kind gateway.Kind, headers http.Header, body []byte) error
}

type checkoutServiceImpl struct {
	db             *gorm.DB
	gateways       map[gateway.Kind]gateway.Gateway
	catalog        splitter.Catalog
	orderRepo      repository.OrderRepository
	paymentRepo    repository.PaymentRepository
	webhookRepo    repository.WebhookEventRepository
	payoutLedger   PayoutService
	notifier       notify.Notifier
	webhookVerify  WebhookVerifier
	commissionRate decimal.Decimal
	currency       string
	baseURL        string
}

// WebhookVerifier authenticates a raw gateway notification before any of its
// content is looked at.
type WebhookVerifier interface {
	Verify(ctx context.Context, kind gateway.Kind, headers http.Header, body []byte) error
}

func NewCheckoutService(
	db *gorm.DB,
	gateways map[gateway.Kind]gateway.Gateway,
	catalog splitter.Catalog,
	orderRepo repository.OrderRepository,
	paymentRepo repository.PaymentRepository,
	webhookRepo repository.WebhookEventRepository,
	payoutLedger PayoutService,
	notifier notify.Notifier,
	webhookVerify WebhookVerifier,
	commissionRate decimal.Decimal,
	currency string,
	baseURL string,
) CheckoutService {
	return &checkoutServiceImpl{
		db:             db,
		gateways:       gateways,
		catalog:        catalog,
		orderRepo:      orderRepo,
		paymentRepo:    paymentRepo,
		webhookRepo:    webhookRepo,
		payoutLedger:   payoutLedger,
		notifier:       notifier,
		webhookVerify:  webhookVerify,
		commissionRate: commissionRate,
		currency:       currency,
		baseURL:        baseURL,
	}
}

func (s *checkoutServiceImpl) StartCheckout(ctx context.Context, customerID string, req *dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	kind, err := gateway.ParseKind(req.PaymentMethod)
	if err != nil {
		return nil, apperror.Validation("unsupported payment method %q", req.PaymentMethod)
	}
	gw := s.gateways[kind]
	if gw == nil {
		return nil, apperror.Validation("payment method %q is not configured", req.PaymentMethod)
	}

	if req.Currency != "" && !strings.EqualFold(req.Currency, s.currency) {
		return nil, apperror.Validation("unsupported currency %q, settlement currency is %s", req.Currency, s.currency)
	}

	lines := make([]splitter.CartLine, len(req.Cart))
	lineQuantities := make(map[string]int32, len(req.Cart))
	for i, line := range req.Cart {
		lines[i] = splitter.CartLine{ProductID: line.ProductID, Quantity: line.Quantity}
		lineQuantities[line.ProductID] += line.Quantity
	}

	split, err := splitter.Compute(ctx, s.catalog, lines, s.commissionRate)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Currency:   s.currency,
		GrandTotal: split.GrandTotal,
		Status:     model.OrderPendingPayment,
		Gateway:    string(kind),
	}

	subOrders := make([]*model.SubOrder, 0, len(split.Groups))
	var items []*model.SubOrderItem
	for _, group := range split.Groups {
		so := &model.SubOrder{
			ID:           uuid.NewString(),
			OrderID:      order.ID,
			MerchantID:   group.MerchantID,
			Subtotal:     group.Subtotal,
			Commission:   group.Commission,
			PayoutAmount: group.PayoutAmount,
			Status:       model.OrderPendingPayment,
		}
		subOrders = append(subOrders, so)
		for _, item := range group.Items {
			items = append(items, &model.SubOrderItem{
				SubOrderID: so.ID,
				ProductID:  item.ProductID,
				Title:      item.Title,
				UnitPrice:  item.UnitPrice,
				Quantity:   item.Quantity,
			})
		}
	}

	// Order and sub-orders are frozen once an intent exists; a retried cart
	// starts a fresh split.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order: %w", err)
		}
		return s.orderRepo.CreateSubOrders(ctx, tx, subOrders, items)
	})
	if err != nil {
		return nil, fmt.Errorf("persist split: %w", err)
	}

	intent, err := gw.CreateIntent(ctx, &gateway.IntentRequest{
		Amount:         split.GrandTotal,
		Currency:       s.currency,
		IdempotencyKey: gateway.IdempotencyKey(customerID, s.currency, lineQuantities),
		Metadata:       s.intentMetadata(customerID, order.ID, req, split),
		ReturnURL:      fmt.Sprintf("%s/api/checkout/confirm?gateway=%s", s.baseURL, kind),
	})
	if err != nil {
		// Best effort; the order is dead either way and the gateway error is
		// what the caller needs to see.
		if markErr := s.orderRepo.MarkPaymentFailed(ctx, order.ID); markErr != nil {
			return nil, fmt.Errorf("mark order failed after gateway error: %v: %w", markErr, err)
		}
		return nil, err
	}

	if err := s.orderRepo.SetIntentRef(ctx, order.ID, string(kind), intent.Handle); err != nil {
		return nil, fmt.Errorf("store intent ref: %w", err)
	}

	return buildCheckoutResponse(order, subOrders, intent), nil
}

func (s *checkoutServiceImpl) intentMetadata(customerID, orderID string, req *dto.CheckoutRequest, split *splitter.Split) map[string]string {
	cartJSON, _ := json.Marshal(req.Cart)
	splitParts := make([]string, 0, len(split.Groups))
	for _, g := range split.Groups {
		splitParts = append(splitParts, fmt.Sprintf("%s:%s", g.MerchantID, g.Subtotal.StringFixed(2)))
	}

	return map[string]string{
		"order_id":         orderID,
		"customer_id":      customerID,
		"cart":             string(cartJSON),
		"shipping_address": req.ShippingAddress,
		"split":            strings.Join(splitParts, ","),
		"cancel_url":       req.ReturnURL,
	}
}

func buildCheckoutResponse(order *model.Order, subOrders []*model.SubOrder, intent *gateway.Intent) *dto.CheckoutResponse {
	views := make([]dto.SubOrderView, len(subOrders))
	for i, so := range subOrders {
		views[i] = dto.SubOrderView{
			MerchantID:   so.MerchantID,
			Subtotal:     so.Subtotal.StringFixed(2),
			Commission:   so.Commission.StringFixed(2),
			PayoutAmount: so.PayoutAmount.StringFixed(2),
		}
	}

	return &dto.CheckoutResponse{
		Status: "PAYMENT_REQUIRED",
		Payment: dto.PaymentInfo{
			Method:         string(intent.Kind),
			ClientSecret:   intent.ClientSecret,
			GatewayOrderID: intent.Handle,
			ApproveURL:     intent.ApproveURL,
		},
		CartData: dto.CartData{
			OrderID:    order.ID,
			Currency:   order.Currency,
			GrandTotal: order.GrandTotal.StringFixed(2),
			SubOrders:  views,
		},
	}
}

func (s *checkoutServiceImpl) ConfirmPayment(ctx context.Context, kind gateway.Kind, handle string) (*dto.ConfirmResponse, error) {
	gw := s.gateways[kind]
	if gw == nil {
		return nil, apperror.Validation("unsupported payment gateway %q", kind)
	}

	// Gateway I/O happens strictly before the settlement transaction opens.
	status, err := gw.RetrieveStatus(ctx, handle)
	if err != nil {
		return nil, err
	}

	if !status.Succeeded {
		capturer, ok := gw.(gateway.Capturer)
		if ok && status.State == "APPROVED" {
			status, err = capturer.Capture(ctx, handle)
			if err != nil {
				return nil, err
			}
		}
	}

	if !status.Succeeded {
		return nil, apperror.Validation("payment for %s not completed (state %s)", handle, status.State)
	}

	order, err := s.settle(ctx, kind, status)
	if err != nil {
		return nil, err
	}

	return &dto.ConfirmResponse{
		OrderID:       order.ID,
		Status:        order.Status,
		TransactionID: status.TransactionID,
	}, nil
}

// settle records the payment, marks the order paid, and credits every seller's
// ledger as one transaction. Settling the same transaction id twice mutates
// state exactly once.
func (s *checkoutServiceImpl) settle(ctx context.Context, kind gateway.Kind, status *gateway.PaymentStatus) (*model.Order, error) {
	var order *model.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.paymentRepo.FindByTransactionID(ctx, tx, status.TransactionID)
		if err != nil {
			return fmt.Errorf("check existing payment: %w", err)
		}
		if existing != nil {
			order, err = s.orderRepo.FindByID(ctx, tx, existing.OrderID)
			if err != nil {
				return fmt.Errorf("load settled order: %w", err)
			}
			return nil
		}

		order, err = s.orderRepo.FindByIntentRef(ctx, tx, status.Handle)
		if err != nil {
			return apperror.Consistency("", "confirmed payment %s has no matching order (intent %s)",
				status.TransactionID, status.Handle)
		}

		if !status.Amount.Equal(order.GrandTotal) || !strings.EqualFold(status.Currency, order.Currency) {
			return apperror.Consistency(order.ID, "gateway reports %s %s, order expects %s %s",
				status.Amount.StringFixed(2), status.Currency,
				order.GrandTotal.StringFixed(2), order.Currency)
		}

		if err := s.paymentRepo.Create(ctx, tx, &model.Payment{
			ID:            uuid.NewString(),
			OrderID:       order.ID,
			Gateway:       string(kind),
			Status:        model.PaymentSucceeded,
			Amount:        status.Amount,
			Currency:      order.Currency,
			TransactionID: status.TransactionID,
			Payload: &model.ProviderPayload{
				Version: 1,
				Gateway: string(kind),
				Raw:     status.Raw,
			},
		}); err != nil {
			return fmt.Errorf("store payment: %w", err)
		}

		if err := s.orderRepo.MarkPaid(ctx, tx, order.ID); err != nil {
			return apperror.Consistency(order.ID, "mark paid failed: %v", err)
		}
		order.Status = model.OrderPaid

		subOrders, err := s.orderRepo.GetSubOrders(ctx, tx, order.ID)
		if err != nil {
			return fmt.Errorf("load sub-orders: %w", err)
		}
		if len(subOrders) == 0 {
			return apperror.Consistency(order.ID, "no sub-orders to credit")
		}

		for _, so := range subOrders {
			if err := s.payoutLedger.Credit(ctx, tx, so.MerchantID, order.ID, so.PayoutAmount); err != nil {
				return fmt.Errorf("credit merchant %s: %w", so.MerchantID, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	go func(order model.Order) {
		ctx := context.WithoutCancel(ctx)
		subOrders, err := s.orderRepo.GetSubOrders(ctx, s.db, order.ID)
		if err != nil {
			return
		}
		s.notifier.PaymentSettled(ctx, &order, subOrders)
	}(*order)

	return order, nil
}

func (s *checkoutServiceImpl) HandleWebhook(ctx context.Context, kind gateway.Kind, headers http.Header, body []byte) error {
	if err := s.webhookVerify.Verify(ctx, kind, headers, body); err != nil {
		return fmt.Errorf("verify webhook signature: %w", err)
	}

	eventID, eventType, handle, err := parseWebhook(kind, body)
	if err != nil {
		return err
	}
	if handle == "" {
		// event type we do not settle on
		return nil
	}

	processed, err := s.webhookRepo.Exists(eventID)
	if err != nil {
		return fmt.Errorf("check webhook dedupe: %w", err)
	}
	if processed {
		return nil
	}

	// The payload's claimed status is never trusted; ConfirmPayment re-fetches
	// from the gateway before settling.
	if _, err := s.ConfirmPayment(ctx, kind, handle); err != nil {
		return err
	}

	return s.webhookRepo.MarkProcessed(eventID, eventType, string(kind))
}

func parseWebhook(kind gateway.Kind, body []byte) (eventID, eventType, handle string, err error) {
	switch kind {
	case gateway.KindStripe:
		var event model.StripeWebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return "", "", "", fmt.Errorf("decode stripe webhook: %w", err)
		}
		if event.Type != "payment_intent.succeeded" {
			return event.ID, event.Type, "", nil
		}
		var intent model.StripePaymentIntent
		if err := json.Unmarshal(event.Data.Object, &intent); err != nil {
			return "", "", "", fmt.Errorf("decode stripe intent object: %w", err)
		}
		return event.ID, event.Type, intent.ID, nil

	case gateway.KindPaypal:
		var event model.PaypalWebhookEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return "", "", "", fmt.Errorf("decode paypal webhook: %w", err)
		}
		if event.EventType != "PAYMENT.CAPTURE.COMPLETED" && event.EventType != "CHECKOUT.ORDER.APPROVED" {
			return event.ID, event.EventType, "", nil
		}
		orderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
		if orderID == "" {
			orderID = event.Resource.ID
		}
		return event.ID, event.EventType, orderID, nil
	}

	return "", "", "", fmt.Errorf("unsupported webhook gateway %q", kind)
}
