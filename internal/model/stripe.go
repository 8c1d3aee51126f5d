package model

import "encoding/json"

type StripePaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"` // requires_payment_method, processing, succeeded, ...
	Amount       int64  `json:"amount"` // minor units
	Currency     string `json:"currency"`
	LatestCharge string `json:"latest_charge"`
}

type StripeErrorBody struct {
	Error StripeError `json:"error"`
}

type StripeError struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
	Param       string `json:"param"`
	DocURL      string `json:"doc_url"`
	Message     string `json:"message"`
}

type StripeWebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}
