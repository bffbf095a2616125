package dto

import "time"

type AttemptStatus string

// Payment attempt transitions are one-directional: a cancelled or failed
// attempt is never resurrected, a retry creates a new attempt with a new
// reference and a new order.
const (
	ATTEMPT_PENDING   AttemptStatus = "pending"
	ATTEMPT_VERIFYING AttemptStatus = "verifying"
	ATTEMPT_VERIFIED  AttemptStatus = "verified"
	ATTEMPT_FAILED    AttemptStatus = "failed"
	ATTEMPT_CANCELLED AttemptStatus = "cancelled"
)

// PaymentAttempt tracks one pass through the checkout flow.
type PaymentAttempt struct {
	OrderID     string `json:"order_id,omitempty" yaml:"order_id,omitempty"`
	OrderNumber string `json:"order_number,omitempty" yaml:"order_number,omitempty"`
	Reference   string `json:"reference" yaml:"reference"`
	// Amount in integer minor units.
	Amount    int64         `json:"amount" yaml:"amount"`
	Currency  string        `json:"currency,omitempty" yaml:"currency,omitempty"`
	Email     string        `json:"email" yaml:"email"`
	Status    AttemptStatus `json:"status" yaml:"status"`
	Message   string        `json:"message,omitempty" yaml:"message,omitempty"`
	StartedAt time.Time     `json:"started_at,omitempty" yaml:"started_at,omitempty"`
}

type WidgetOutcomeKind string

const (
	WIDGET_SUCCESS   WidgetOutcomeKind = "success"
	WIDGET_CANCELLED WidgetOutcomeKind = "cancelled"
	WIDGET_ERROR     WidgetOutcomeKind = "error"
)

// WidgetOutcome is the single terminal report of an opened payment widget.
type WidgetOutcome struct {
	Kind WidgetOutcomeKind
	// Reference reported by the gateway; expected to match the client-generated one.
	Reference string
	Message   string
}

// WidgetParams configures one widget presentation.
type WidgetParams struct {
	Key       string
	Email     string
	Amount    int64
	Currency  string
	Reference string
	Channels  []string
}
