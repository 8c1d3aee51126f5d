package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         string          `gorm:"primaryKey;size:64;not null"` // product sku
	Name       string          `gorm:"size:128;not null"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency   string          `gorm:"size:8;not null"`
	MerchantID string          `gorm:"size:64;index;not null"` // owning seller
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Merchant struct {
	ID        string `gorm:"primaryKey;size:64;not null"`
	Name      string `gorm:"size:128;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Order struct {
	ID         string          `gorm:"primaryKey;size:64;not null"`
	CustomerID string          `gorm:"size:64;index;not null"`
	Currency   string          `gorm:"size:8;not null"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status     string          `gorm:"size:32;index;not null"` // PENDING_PAYMENT, PAID, PAYMENT_FAILED
	Gateway    string          `gorm:"size:16;not null"`       // stripe, paypal
	IntentRef  string          `gorm:"size:128;index"`         // gateway intent / gateway order id
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type SubOrder struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	OrderID    string `gorm:"size:64;index;not null"`
	MerchantID string `gorm:"size:64;index;not null"`
	// Subtotal is rounded once; commission is rounded from it and payout is
	// the exact remainder, so Commission + PayoutAmount == Subtotal always.
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Commission   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PayoutAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status       string          `gorm:"size:32;index;not null"` // PENDING_PAYMENT, PAID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SubOrderItem struct {
	ID         uint            `gorm:"primaryKey"`
	SubOrderID string          `gorm:"size:64;index;not null"`
	ProductID  string          `gorm:"size:64;index;not null"`
	Title      string          `gorm:"size:128;not null"` // snapshot at checkout time
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity   int32           `gorm:"not null"`
	CreatedAt  time.Time
}

// ProviderPayload is the gateway-tagged, versioned raw response captured at
// settlement time.
type ProviderPayload struct {
	Version int             `json:"version"`
	Gateway string          `json:"gateway"`
	Raw     json.RawMessage `json:"raw"`
}

type Payment struct {
	ID       string          `gorm:"primaryKey;size:64;not null"`
	OrderID  string          `gorm:"size:64;index;not null"`
	Gateway  string          `gorm:"size:16;not null"`
	Status   string          `gorm:"size:16;not null"` // PENDING, SUCCEEDED, FAILED
	Amount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Currency string          `gorm:"size:8;not null"`
	// Gateway-side charge/capture id; the idempotency key for settlement.
	TransactionID string           `gorm:"size:128;uniqueIndex;not null"`
	Payload       *ProviderPayload `gorm:"type:json;serializer:json"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type PayoutBalance struct {
	MerchantID string          `gorm:"primaryKey;size:64;not null"`
	Available  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Pending    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const (
	PayoutTypeCredit = "CREDIT" // settlement earning appended per sub-order
	PayoutTypePayout = "PAYOUT" // merchant-requested withdrawal
)

type PayoutTransaction struct {
	ID          string          `gorm:"primaryKey;size:64;not null"`
	MerchantID  string          `gorm:"size:64;index;not null"`
	Type        string          `gorm:"size:16;index;not null"` // CREDIT, PAYOUT
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status      string          `gorm:"size:16;index;not null"` // PENDING, PAID, FAILED
	Method      string          `gorm:"size:32"`                // bank_transfer, paypal, ...
	ExternalRef string          `gorm:"size:128"`               // provider reference once paid
	OrderID     string          `gorm:"size:64;index"`          // source order for CREDIT rows
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	Gateway     string `gorm:"size:16;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
