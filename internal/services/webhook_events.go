package services

import (
	"encoding/json"
	"fmt"
)

// EventKind is the discriminator naming what happened at the processor.
// The set is closed; anything else routes to the unhandled path.
type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_intent.succeeded"
	EventPaymentFailed    EventKind = "payment_intent.payment_failed"
	EventPaymentCanceled  EventKind = "payment_intent.canceled"
	EventDisputeCreated   EventKind = "charge.dispute.created"
	EventInvoicePaid      EventKind = "invoice.paid"
)

// PaymentIntentData is the payload for the payment_intent.* kinds
type PaymentIntentData struct {
	PaymentIntentRef string `json:"payment_intent"`
	Amount           int64  `json:"amount"` // minor currency unit
	Currency         string `json:"currency"`
	ErrorMessage     string `json:"error_message,omitempty"`
}

// DisputeData is the payload for charge.dispute.created
type DisputeData struct {
	ChargeRef string `json:"charge"`
	Reason    string `json:"reason"`
	Amount    int64  `json:"amount"` // minor currency unit
	Currency  string `json:"currency"`
}

// InvoiceData is the payload for invoice.paid (reserved for future
// subscription support; logged only)
type InvoiceData struct {
	InvoiceRef string `json:"invoice"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
}

// ProcessorEvent is one authenticated event from the payment processor.
// Exactly one of the typed payload fields is set, matching Kind; events
// outside the known kind set carry only Kind and the raw payload.
type ProcessorEvent struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	CreatedAt int64     `json:"created_at"`

	PaymentIntent *PaymentIntentData `json:"-"`
	Dispute       *DisputeData       `json:"-"`
	Invoice       *InvoiceData       `json:"-"`

	Raw json.RawMessage `json:"-"`
}

// Known reports whether the event kind is in the recognized set
func (e *ProcessorEvent) Known() bool {
	switch e.Kind {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled,
		EventDisputeCreated, EventInvoicePaid:
		return true
	}
	return false
}

type rawEnvelope struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	CreatedAt int64           `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// ParseProcessorEvent decodes a verified webhook body into a typed event.
// Must only be called after signature verification succeeded.
func ParseProcessorEvent(body []byte) (*ProcessorEvent, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode event envelope: %w", err)
	}
	if env.ID == "" {
		return nil, fmt.Errorf("event is missing an id")
	}

	ev := &ProcessorEvent{
		ID:        env.ID,
		Kind:      EventKind(env.Kind),
		CreatedAt: env.CreatedAt,
		Raw:       body,
	}

	switch ev.Kind {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentCanceled:
		var data PaymentIntentData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent data: %w", err)
		}
		if data.PaymentIntentRef == "" {
			return nil, fmt.Errorf("payment event is missing payment_intent")
		}
		ev.PaymentIntent = &data
	case EventDisputeCreated:
		var data DisputeData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode dispute data: %w", err)
		}
		ev.Dispute = &data
	case EventInvoicePaid:
		var data InvoiceData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode invoice data: %w", err)
		}
		ev.Invoice = &data
	default:
		// Unknown kind: keep the envelope, the router acknowledges it
	}

	return ev, nil
}
