package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/model"
)

type StripeClient interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string, idempotencyKey string) (*model.StripePaymentIntent, []byte, error)
	GetPaymentIntent(ctx context.Context, intentID string) (*model.StripePaymentIntent, []byte, error)
}

type stripeClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	secretKey  string
}

func NewStripeClient(stripeCfg *config.Stripe) StripeClient {
	return &stripeClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL: stripeCfg.BaseApiURL,
		secretKey:  stripeCfg.SecretKey,
	}
}

func (c *stripeClientImpl) CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string, idempotencyKey string) (*model.StripePaymentIntent, []byte, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/payment_intents",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Idempotency-Key", idempotencyKey)

	return c.do(req)
}

func (c *stripeClientImpl) GetPaymentIntent(ctx context.Context, intentID string) (*model.StripePaymentIntent, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseApiURL+"/v1/payment_intents/"+intentID, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.do(req)
}

func (c *stripeClientImpl) do(req *http.Request) (*model.StripePaymentIntent, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, stripeError(resp, body)
	}

	var intent model.StripePaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, nil, fmt.Errorf("decode stripe response: %w", err)
	}

	return &intent, body, nil
}

// stripeError decodes the provider's structured rejection. The detail is
// passed through verbatim, never flattened.
func stripeError(resp *http.Response, body []byte) error {
	var eb model.StripeErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error.Type == "" {
		return &apperror.GatewayError{
			Gateway:   "stripe",
			Type:      "api_error",
			RequestID: resp.Header.Get("Request-Id"),
			Message:   fmt.Sprintf("stripe error %d: %s", resp.StatusCode, string(body)),
		}
	}

	return &apperror.GatewayError{
		Gateway:     "stripe",
		Type:        eb.Error.Type,
		Code:        eb.Error.Code,
		DeclineCode: eb.Error.DeclineCode,
		Param:       eb.Error.Param,
		DocURL:      eb.Error.DocURL,
		RequestID:   resp.Header.Get("Request-Id"),
		Message:     eb.Error.Message,
	}
}
