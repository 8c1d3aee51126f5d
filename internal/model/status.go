package model

const (
	OrderPendingPayment = "PENDING_PAYMENT"
	OrderPaid           = "PAID" // paid, awaiting fulfillment
	OrderPaymentFailed  = "PAYMENT_FAILED"

	PaymentPending   = "PENDING"
	PaymentSucceeded = "SUCCEEDED"
	PaymentFailed    = "FAILED"

	PayoutPending = "PENDING"
	PayoutPaid    = "PAID"
	PayoutFailed  = "FAILED"
)
