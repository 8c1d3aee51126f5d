package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"marketplace-settlement/internal/client"
	"marketplace-settlement/internal/gateway"
)

type webhookVerifierImpl struct {
	stripeWebhookSecret string
	paypalClient        client.PaypalClient
}

func NewWebhookVerifier(stripeWebhookSecret string, paypalClient client.PaypalClient) WebhookVerifier {
	return &webhookVerifierImpl{
		stripeWebhookSecret: stripeWebhookSecret,
		paypalClient:        paypalClient,
	}
}

func (v *webhookVerifierImpl) Verify(ctx context.Context, kind gateway.Kind, headers http.Header, body []byte) error {
	switch kind {
	case gateway.KindStripe:
		return verifyStripeSignature(v.stripeWebhookSecret, headers.Get("Stripe-Signature"), body)
	case gateway.KindPaypal:
		return v.paypalClient.VerifyWebhookSignature(ctx, headers, body)
	}
	return fmt.Errorf("unsupported webhook gateway %q", kind)
}

// verifyStripeSignature checks the v1 HMAC scheme: the header carries
// "t=<ts>,v1=<sig>[,v1=...]" and the signed payload is "<ts>.<body>".
func verifyStripeSignature(secret, header string, body []byte) error {
	if header == "" {
		return fmt.Errorf("missing Stripe-Signature header")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = val
		case "v1":
			signatures = append(signatures, val)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return fmt.Errorf("malformed Stripe-Signature header")
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}

	return fmt.Errorf("stripe webhook signature mismatch")
}
