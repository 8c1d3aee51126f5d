package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindStripe Kind = "stripe"
	KindPaypal Kind = "paypal"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(s)) {
	case KindStripe:
		return KindStripe, nil
	case KindPaypal:
		return KindPaypal, nil
	}
	return "", fmt.Errorf("unsupported payment gateway %q", s)
}

type IntentRequest struct {
	Amount         decimal.Decimal
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
	ReturnURL      string
}

// Intent is the handle a buyer needs to complete payment: a client secret for
// the intent/confirm style, an approval URL for the create/capture style.
type Intent struct {
	Kind         Kind
	Handle       string
	ClientSecret string
	ApproveURL   string
}

type PaymentStatus struct {
	Kind          Kind
	Handle        string
	TransactionID string // charge / capture id, empty until funds moved
	State         string // provider-native state string
	Succeeded     bool
	Amount        decimal.Decimal
	Currency      string
	Raw           json.RawMessage
}

type Gateway interface {
	Kind() Kind
	CreateIntent(ctx context.Context, req *IntentRequest) (*Intent, error)
	// RetrieveStatus re-fetches the payment from the provider. Caller-supplied
	// status claims are never trusted.
	RetrieveStatus(ctx context.Context, handle string) (*PaymentStatus, error)
}

// Capturer is implemented by create/capture style gateways where buyer
// approval and funds movement are separate provider calls.
type Capturer interface {
	Capture(ctx context.Context, handle string) (*PaymentStatus, error)
}

// MinorUnits converts a major-unit decimal amount to the gateway's integer
// minor unit. This conversion happens only at the adapter boundary.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func FromMinorUnits(n int64) decimal.Decimal {
	return decimal.NewFromInt(n).Div(decimal.NewFromInt(100))
}

// IdempotencyKey derives a deterministic key for a checkout attempt so a
// client retry of the same cart cannot create two competing intents.
func IdempotencyKey(customerID, currency string, lines map[string]int32) string {
	parts := make([]string, 0, len(lines))
	for id, qty := range lines {
		parts = append(parts, fmt.Sprintf("%s=%d", id, qty))
	}
	sort.Strings(parts)
	sum := sha256.Sum256([]byte(customerID + "|" + currency + "|" + strings.Join(parts, ",")))
	return hex.EncodeToString(sum[:])
}
