package gateway

import (
	"context"
	"fmt"
	"strings"

	"marketplace-settlement/internal/client"
)

// stripeGateway is the intent/confirm style: the buyer confirms a server-side
// payment intent with the client secret.
type stripeGateway struct {
	client client.StripeClient
}

func NewStripeGateway(c client.StripeClient) Gateway {
	return &stripeGateway{client: c}
}

func (g *stripeGateway) Kind() Kind {
	return KindStripe
}

func (g *stripeGateway) CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error) {
	intent, _, err := g.client.CreatePaymentIntent(ctx,
		MinorUnits(req.Amount),
		req.Currency,
		req.Metadata,
		req.IdempotencyKey,
	)
	if err != nil {
		return nil, err
	}

	return &Intent{
		Kind:         KindStripe,
		Handle:       intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (g *stripeGateway) RetrieveStatus(ctx context.Context, handle string) (*PaymentStatus, error) {
	intent, raw, err := g.client.GetPaymentIntent(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("get payment intent: %w", err)
	}

	txnID := intent.LatestCharge
	if txnID == "" {
		// intent never charged; the intent id still identifies the attempt
		txnID = intent.ID
	}

	return &PaymentStatus{
		Kind:          KindStripe,
		Handle:        intent.ID,
		TransactionID: txnID,
		State:         intent.Status,
		Succeeded:     intent.Status == "succeeded",
		Amount:        FromMinorUnits(intent.Amount),
		Currency:      strings.ToUpper(intent.Currency),
		Raw:           raw,
	}, nil
}
