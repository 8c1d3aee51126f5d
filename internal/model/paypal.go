package model

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalCapture struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Final  bool         `json:"final_capture"`
	Amount PaypalAmount `json:"amount"`
}

type PaypalPayments struct {
	Captures []PaypalCapture `json:"captures"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string         `json:"reference_id"`
	Amount      PaypalAmount   `json:"amount"`
	CustomID    string         `json:"custom_id"`
	Payments    PaypalPayments `json:"payments"`
}

type PaypalOrder struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"` // CREATED, APPROVED, COMPLETED
	Links         []PaypalLink         `json:"links"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

type PaypalErrorDetail struct {
	Issue string `json:"issue"`
	Field string `json:"field"`
}

type PaypalErrorBody struct {
	Name    string              `json:"name"`
	Message string              `json:"message"`
	DebugID string              `json:"debug_id"`
	Details []PaypalErrorDetail `json:"details"`
}

type PaypalRelatedIDs struct {
	OrderID string `json:"order_id"`
}

type PaypalSupplementaryData struct {
	RelatedIDs PaypalRelatedIDs `json:"related_ids"`
}

type PaypalResource struct {
	ID                string                  `json:"id"`
	Status            string                  `json:"status"`
	SupplementaryData PaypalSupplementaryData `json:"supplementary_data"`
}

type PaypalWebhookEvent struct {
	ID        string         `json:"id"`
	EventType string         `json:"event_type"`
	Resource  PaypalResource `json:"resource"`
}
