package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/config"
	"marketplace-settlement/internal/model"
)

type PaypalClient interface {
	CreateOrder(ctx context.Context, req *PaypalCreateOrderRequest) (*PaypalCreateOrderResponse, error)
	CaptureOrder(ctx context.Context, orderID string) (*model.PaypalOrder, []byte, error)
	GetOrder(ctx context.Context, orderID string) (*model.PaypalOrder, []byte, error)
	VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error
}

type PaypalCreateOrderRequest struct {
	Value       string // major-unit amount, already formatted
	Currency    string
	ReferenceID string // our order id
	RequestID   string // idempotency key, sent as PayPal-Request-Id
	ReturnURL   string
	CancelURL   string
}

type PaypalCreateOrderResponse struct {
	OrderID    string
	ApproveURL string
}

type paypalClientImpl struct {
	httpClient   *http.Client
	baseApiURL   string
	clientID     string
	clientSecret string
	webhookID    string
}

func NewPaypalClient(paypalCfg *config.Paypal) PaypalClient {
	return &paypalClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:   paypalCfg.BaseApiURL,
		clientID:     paypalCfg.ClientID,
		clientSecret: paypalCfg.ClientSecret,
		webhookID:    paypalCfg.WebhookID,
	}
}

func (c *paypalClientImpl) getAccessToken(ctx context.Context) (string, error) {
	auth := base64.StdEncoding.EncodeToString(
		[]byte(c.clientID + ":" + c.clientSecret),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/oauth2/token",
		bytes.NewBufferString("grant_type=client_credentials"))
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if res.AccessToken == "" {
		return "", fmt.Errorf("paypal token response missing access_token")
	}

	return res.AccessToken, nil
}

func (c *paypalClientImpl) CreateOrder(ctx context.Context, createReq *PaypalCreateOrderRequest) (*PaypalCreateOrderResponse, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"reference_id": createReq.ReferenceID,
				"custom_id":    createReq.ReferenceID,
				"amount": map[string]string{
					"currency_code": createReq.Currency,
					"value":         createReq.Value,
				},
			},
		},
		"application_context": map[string]string{
			"return_url": createReq.ReturnURL,
			"cancel_url": createReq.CancelURL,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v2/checkout/orders",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")
	// Retrying the same checkout attempt returns the original order.
	req.Header.Set("PayPal-Request-Id", createReq.RequestID)

	order, _, err := c.doOrder(req)
	if err != nil {
		return nil, err
	}

	return &PaypalCreateOrderResponse{
		OrderID:    order.ID,
		ApproveURL: extractApproveURL(order.Links),
	}, nil
}

func (c *paypalClientImpl) CaptureOrder(ctx context.Context, orderID string) (*model.PaypalOrder, []byte, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get paypal access token: %w", err)
	}

	url := fmt.Sprintf("%s/v2/checkout/orders/%s/capture", c.baseApiURL, orderID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create capture request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	return c.doOrder(req)
}

func (c *paypalClientImpl) GetOrder(ctx context.Context, orderID string) (*model.PaypalOrder, []byte, error) {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get paypal access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v2/checkout/orders/%s", c.baseApiURL, orderID), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.doOrder(req)
}

func (c *paypalClientImpl) VerifyWebhookSignature(ctx context.Context, headers http.Header, body []byte) error {
	accessToken, err := c.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get paypal access token: %w", err)
	}

	payload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        c.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal verify payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseApiURL+"/v1/notifications/verify-webhook-signature",
		bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("verify webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return fmt.Errorf("decode verify response: %w", err)
	}
	if res.VerificationStatus != "SUCCESS" {
		return fmt.Errorf("webhook signature verification failed: %s", res.VerificationStatus)
	}

	return nil
}

func (c *paypalClientImpl) doOrder(req *http.Request) (*model.PaypalOrder, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("paypal request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read paypal response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, paypalError(resp, body)
	}

	var order model.PaypalOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, nil, fmt.Errorf("decode paypal response: %w", err)
	}

	return &order, body, nil
}

func paypalError(resp *http.Response, body []byte) error {
	var eb model.PaypalErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Name == "" {
		return &apperror.GatewayError{
			Gateway: "paypal",
			Type:    "api_error",
			Message: fmt.Sprintf("paypal error %d: %s", resp.StatusCode, string(body)),
		}
	}

	gerr := &apperror.GatewayError{
		Gateway:   "paypal",
		Type:      eb.Name,
		RequestID: eb.DebugID,
		Message:   eb.Message,
	}
	if len(eb.Details) > 0 {
		gerr.Code = eb.Details[0].Issue
		gerr.Param = eb.Details[0].Field
	}

	return gerr
}

func extractApproveURL(links []model.PaypalLink) string {
	for _, link := range links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}
