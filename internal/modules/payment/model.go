package payment

// IntentSucceeded is the provider's terminal success status for a payment
// intent. Confirmation never trusts a client-supplied flag; the status is
// always re-read from the provider.
const IntentSucceeded = "succeeded"

// Intent is the provider-agnostic view of an external payment intent.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"` // minor units (cents)
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreateIntentRequest is what the gateway needs to open an intent.
type CreateIntentRequest struct {
	Amount   int64 // minor units (cents)
	Currency string
	Metadata map[string]string
}

// IntentResponse is returned to clients driving the hosted payment UI.
type IntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// ── HTTP payloads ─────────────────────────────────────────────────────────────

type CreateIntentPayload struct {
	OrderID string `json:"order_id"`
}

type ConfirmPayload struct {
	PaymentIntentID string `json:"payment_intent_id"`
	OrderID         string `json:"order_id,omitempty"`
}

type CompletePayload struct {
	PaymentMethod string `json:"payment_method"`
}

// WebhookEvent is the slice of the provider's event envelope we act on.
type WebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}
