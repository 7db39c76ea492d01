package services

import (
	"testing"
)

func TestParseProcessorEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		check   func(t *testing.T, ev *ProcessorEvent)
	}{
		{
			name: "payment succeeded",
			body: `{"id":"evt_1","kind":"payment_intent.succeeded","created_at":1773500000,"data":{"payment_intent":"pi_123","amount":10000,"currency":"USD"}}`,
			check: func(t *testing.T, ev *ProcessorEvent) {
				if ev.PaymentIntent == nil {
					t.Fatal("PaymentIntent is nil")
				}
				if ev.PaymentIntent.Amount != 10000 {
					t.Errorf("Amount = %d; want 10000", ev.PaymentIntent.Amount)
				}
				if !ev.Known() {
					t.Error("Known() = false; want true")
				}
			},
		},
		{
			name: "payment failed with error detail",
			body: `{"id":"evt_2","kind":"payment_intent.payment_failed","created_at":1773500000,"data":{"payment_intent":"pi_123","amount":10000,"currency":"USD","error_message":"card_declined"}}`,
			check: func(t *testing.T, ev *ProcessorEvent) {
				if ev.PaymentIntent == nil || ev.PaymentIntent.ErrorMessage != "card_declined" {
					t.Errorf("ErrorMessage not parsed: %+v", ev.PaymentIntent)
				}
			},
		},
		{
			name: "dispute created",
			body: `{"id":"evt_3","kind":"charge.dispute.created","created_at":1773500000,"data":{"charge":"ch_9","reason":"fraudulent","amount":5000,"currency":"USD"}}`,
			check: func(t *testing.T, ev *ProcessorEvent) {
				if ev.Dispute == nil || ev.Dispute.ChargeRef != "ch_9" {
					t.Errorf("Dispute not parsed: %+v", ev.Dispute)
				}
			},
		},
		{
			name: "invoice paid",
			body: `{"id":"evt_4","kind":"invoice.paid","created_at":1773500000,"data":{"invoice":"in_7","amount":2500,"currency":"USD"}}`,
			check: func(t *testing.T, ev *ProcessorEvent) {
				if ev.Invoice == nil || ev.Invoice.InvoiceRef != "in_7" {
					t.Errorf("Invoice not parsed: %+v", ev.Invoice)
				}
			},
		},
		{
			name: "unknown kind is kept, not an error",
			body: `{"id":"evt_5","kind":"customer.created","created_at":1773500000,"data":{}}`,
			check: func(t *testing.T, ev *ProcessorEvent) {
				if ev.Known() {
					t.Error("Known() = true; want false")
				}
				if ev.PaymentIntent != nil || ev.Dispute != nil || ev.Invoice != nil {
					t.Error("unknown kind should carry no typed payload")
				}
			},
		},
		{
			name:    "missing event id",
			body:    `{"kind":"payment_intent.succeeded","data":{"payment_intent":"pi_123"}}`,
			wantErr: true,
		},
		{
			name:    "payment event without payment_intent",
			body:    `{"id":"evt_6","kind":"payment_intent.succeeded","data":{"amount":10000}}`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			body:    `{`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseProcessorEvent([]byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Error("ParseProcessorEvent() error = nil; want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProcessorEvent() error = %v; want nil", err)
			}
			tt.check(t, ev)
		})
	}
}
