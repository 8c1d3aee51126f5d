package dto

type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int32  `json:"quantity"`
}

type CheckoutRequest struct {
	Cart            []CartLine `json:"cart"`
	ShippingAddress string     `json:"shippingAddress"`
	Currency        string     `json:"currency"`
	PaymentMethod   string     `json:"paymentMethod"` // stripe | paypal
	ReturnURL       string     `json:"returnUrl"`
}

type PaymentInfo struct {
	Method         string `json:"method"`
	ClientSecret   string `json:"clientSecret,omitempty"`
	GatewayOrderID string `json:"gatewayOrderId,omitempty"`
	ApproveURL     string `json:"approveUrl,omitempty"`
}

type SubOrderView struct {
	MerchantID   string `json:"merchantId"`
	Subtotal     string `json:"subtotal"`
	Commission   string `json:"commission"`
	PayoutAmount string `json:"payoutAmount"`
}

type CartData struct {
	OrderID    string         `json:"orderId"`
	Currency   string         `json:"currency"`
	GrandTotal string         `json:"grandTotal"`
	SubOrders  []SubOrderView `json:"subOrders"`
}

type CheckoutResponse struct {
	Status   string      `json:"status"` // PAYMENT_REQUIRED
	Payment  PaymentInfo `json:"payment"`
	CartData CartData    `json:"cartData"`
}

type ConfirmResponse struct {
	OrderID       string `json:"orderId"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId"`
}

type PayoutRequest struct {
	Amount string `json:"amount"`
	Method string `json:"method"`
}

type BalanceView struct {
	Available string `json:"available"`
	Pending   string `json:"pending"`
	Total     string `json:"total"`
}

type PayoutSummary struct {
	TotalEarnings   string `json:"totalEarnings"`
	PendingEarnings string `json:"pendingEarnings"`
	TotalPaidOut    string `json:"totalPaidOut"`
}

type PayoutTransactionView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Method      string `json:"method,omitempty"`
	ExternalRef string `json:"externalRef,omitempty"`
	OrderID     string `json:"orderId,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

type PayoutStatement struct {
	Balance      BalanceView             `json:"balance"`
	Summary      PayoutSummary           `json:"summary"`
	Transactions []PayoutTransactionView `json:"transactions"`
}

type CreateMerchantRequest struct {
	MerchantName string `json:"merchantName"`
}
