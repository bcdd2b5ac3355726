package dto

// WebhookNotification is the payload the payment gateway posts when a payment
// changes state. Only data.id is needed; the handler fetches the payment
// details back from the gateway.
type WebhookNotification struct {
	Data        WebhookData `json:"data"`
	Type        string      `json:"type"`
	Action      string      `json:"action"`
	DateCreated string      `json:"date_created"`
}

type WebhookData struct {
	ID string `json:"id"`
}
