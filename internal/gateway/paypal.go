package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/model"
)

// paypalGateway is the create/capture style: the buyer approves off-site and a
// later capture call moves the funds.
type paypalGateway struct {
	client client.PaypalClient
}

func NewPaypalGateway(c client.PaypalClient) Gateway {
	return &paypalGateway{client: c}
}

func (g *paypalGateway) Kind() Kind {
	return KindPaypal
}

func (g *paypalGateway) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	resp, err := g.client.CreateOrder(ctx, &client.PaypalCreateOrderRequest{
		Value:       req.Amount.StringFixed(2),
		Currency:    req.Currency,
		ReferenceID: req.Metadata["order_id"],
		RequestID:   req.IdempotencyKey,
		ReturnURL:   req.ReturnURL,
		CancelURL:   req.Metadata["cancel_url"],
	})
	if err != nil {
		return nil, err
	}

	return &Intent{
		Kind:       KindPaypal,
		Handle:     resp.OrderID,
		ApproveURL: resp.ApproveURL,
	}, nil
}

func (g *paypalGateway) RetrieveStatus(ctx context.Context, handle string) (*PaymentStatus, error) {
	order, raw, err := g.client.GetOrder(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("get paypal order: %w", err)
	}

	st, err := paypalStatus(order)
	if err != nil {
		return nil, err
	}
	st.Raw = raw

	return st, nil
}

func (g *paypalGateway) Capture(ctx context.Context, handle string) (*PaymentStatus, error) {
	order, raw, err := g.client.CaptureOrder(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("capture paypal order: %w", err)
	}

	st, err := paypalStatus(order)
	if err != nil {
		return nil, err
	}
	st.Raw = raw

	return st, nil
}

func paypalStatus(order *model.PaypalOrder) (*PaymentStatus, error) {
	st := &PaymentStatus{
		Kind:      KindPaypal,
		Handle:    order.ID,
		State:     order.Status,
		Succeeded: order.Status == "COMPLETED",
	}

	if len(order.PurchaseUnits) == 0 {
		return nil, fmt.Errorf("paypal order %s has no purchase units", order.ID)
	}
	pu := order.PurchaseUnits[0]

	if len(pu.Payments.Captures) > 0 {
		capture := pu.Payments.Captures[0]
		amount, err := decimal.NewFromString(capture.Amount.Value)
		if err != nil {
			return nil, fmt.Errorf("parse capture amount %q: %w", capture.Amount.Value, err)
		}
		st.TransactionID = capture.ID
		st.Amount = amount
		st.Currency = capture.Amount.Currency
		st.Succeeded = st.Succeeded && capture.Status == "COMPLETED"
		return st, nil
	}

	// Not captured yet; report the approved order amount so the caller can
	// decide to capture.
	amount, err := decimal.NewFromString(pu.Amount.Value)
	if err != nil {
		return nil, fmt.Errorf("parse order amount %q: %w", pu.Amount.Value, err)
	}
	st.TransactionID = ""
	st.Amount = amount
	st.Currency = pu.Amount.Currency
	st.Succeeded = false

	return st, nil
}
