package apperror

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError is a malformed request: empty cart, bad quantity, wrong
// currency, unsupported payment method.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// GatewayError carries the provider's structured rejection verbatim so the
// payment UI can react to it (declined card, bad param, ...). It is never
// flattened into a generic message.
type GatewayError struct {
	Gateway     string `json:"gateway"`
	Type        string `json:"type"`
	Code        string `json:"code"`
	DeclineCode string `json:"declineCode,omitempty"`
	Param       string `json:"param,omitempty"`
	DocURL      string `json:"docUrl,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	Message     string `json:"message"`
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway error [%s/%s]: %s", e.Gateway, e.Type, e.Code, e.Message)
}

type InsufficientBalanceError struct {
	MerchantID string
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: requested %s, available %s",
		e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// ConsistencyError means a settlement invariant failed to hold. It is fatal
// for the request and must be surfaced for reconciliation, never dropped.
type ConsistencyError struct {
	OrderID string
	Msg     string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency violation on order %s: %s", e.OrderID, e.Msg)
}

func Consistency(orderID, format string, args ...any) *ConsistencyError {
	return &ConsistencyError{OrderID: orderID, Msg: fmt.Sprintf(format, args...)}
}
