package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/config"
)

func TestCreatePaymentIntentSendsFormAndIdempotencyKey(t *testing.T) {
	var gotForm map[string]string
	var gotIdemKey string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		gotIdemKey = r.Header.Get("Idempotency-Key")

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_1","client_secret":"pi_1_secret","status":"requires_payment_method","amount":4500,"currency":"usd"}`))
	}))
	defer srv.Close()

	c := NewStripeClient(&config.Stripe{BaseApiURL: srv.URL, SecretKey: "sk_test_123"})

	intent, _, err := c.CreatePaymentIntent(context.Background(), 4500, "USD",
		map[string]string{"order_id": "ord-1"}, "idem-key-1")
	require.NoError(t, err)

	assert.Equal(t, "pi_1", intent.ID)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, "idem-key-1", gotIdemKey)
	assert.Equal(t, "4500", gotForm["amount"])
	assert.Equal(t, "usd", gotForm["currency"])
	assert.Equal(t, "ord-1", gotForm["metadata[order_id]"])
}

func TestStripeErrorDecodedStructurally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Request-Id", "req_abc")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds","doc_url":"https://stripe.com/docs/error-codes/card-declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	c := NewStripeClient(&config.Stripe{BaseApiURL: srv.URL, SecretKey: "sk_test_123"})

	_, _, err := c.CreatePaymentIntent(context.Background(), 100, "USD", nil, "k")

	var gerr *apperror.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "stripe", gerr.Gateway)
	assert.Equal(t, "card_error", gerr.Type)
	assert.Equal(t, "card_declined", gerr.Code)
	assert.Equal(t, "insufficient_funds", gerr.DeclineCode)
	assert.Equal(t, "req_abc", gerr.RequestID)
	assert.Equal(t, "Your card was declined.", gerr.Message)
}

func TestStripeErrorNonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	defer srv.Close()

	c := NewStripeClient(&config.Stripe{BaseApiURL: srv.URL, SecretKey: "sk_test_123"})

	_, _, err := c.GetPaymentIntent(context.Background(), "pi_1")

	var gerr *apperror.GatewayError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "api_error", gerr.Type)
	assert.Contains(t, gerr.Message, "upstream unavailable")
}
