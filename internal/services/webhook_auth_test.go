package services

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "whsec_test_secret"

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestAuthenticator() *WebhookAuthenticator {
	a := NewWebhookAuthenticator(testSecret)
	a.now = func() time.Time { return testNow }
	return a
}

func validBody() []byte {
	return []byte(`{"id":"evt_1","kind":"payment_intent.succeeded","created_at":1773500000,"data":{"payment_intent":"pi_123","amount":10000,"currency":"USD"}}`)
}

func TestAuthenticateValidSignature(t *testing.T) {
	a := newTestAuthenticator()
	body := validBody()
	header := SignWebhookPayload([]byte(testSecret), testNow, body)

	ev, err := a.Authenticate(body, header)
	if err != nil {
		t.Fatalf("Authenticate() error = %v; want nil", err)
	}
	if ev.ID != "evt_1" {
		t.Errorf("event ID = %q; want %q", ev.ID, "evt_1")
	}
	if ev.Kind != EventPaymentSucceeded {
		t.Errorf("event Kind = %q; want %q", ev.Kind, EventPaymentSucceeded)
	}
	if ev.PaymentIntent == nil || ev.PaymentIntent.PaymentIntentRef != "pi_123" {
		t.Errorf("payment intent payload not parsed: %+v", ev.PaymentIntent)
	}
}

func TestAuthenticateRejections(t *testing.T) {
	a := newTestAuthenticator()
	body := validBody()

	tests := []struct {
		name   string
		body   []byte
		header string
	}{
		{
			name:   "missing header",
			body:   body,
			header: "",
		},
		{
			name:   "malformed header",
			body:   body,
			header: "not-a-signature",
		},
		{
			name:   "missing v1 part",
			body:   body,
			header: "t=1773500000",
		},
		{
			name:   "non-numeric timestamp",
			body:   body,
			header: "t=abc,v1=deadbeef",
		},
		{
			name:   "non-hex signature",
			body:   body,
			header: "t=1773500000,v1=zzzz",
		},
		{
			name:   "tampered body with valid header",
			body:   []byte(`{"id":"evt_1","kind":"payment_intent.succeeded","created_at":1773500000,"data":{"payment_intent":"pi_123","amount":999999,"currency":"USD"}}`),
			header: SignWebhookPayload([]byte(testSecret), testNow, body),
		},
		{
			name:   "wrong secret",
			body:   body,
			header: SignWebhookPayload([]byte("whsec_other"), testNow, body),
		},
		{
			name:   "stale timestamp",
			body:   body,
			header: SignWebhookPayload([]byte(testSecret), testNow.Add(-10*time.Minute), body),
		},
		{
			name:   "future timestamp",
			body:   body,
			header: SignWebhookPayload([]byte(testSecret), testNow.Add(10*time.Minute), body),
		},
		{
			name:   "signed but unparsable body",
			body:   []byte("not json"),
			header: SignWebhookPayload([]byte(testSecret), testNow, []byte("not json")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(tt.body, tt.header)
			if !errors.Is(err, ErrWebhookAuth) {
				t.Errorf("Authenticate() error = %v; want ErrWebhookAuth", err)
			}
		})
	}
}

func TestAuthenticateToleratesSmallSkew(t *testing.T) {
	a := newTestAuthenticator()
	body := validBody()
	header := SignWebhookPayload([]byte(testSecret), testNow.Add(-2*time.Minute), body)

	if _, err := a.Authenticate(body, header); err != nil {
		t.Errorf("Authenticate() with 2m old timestamp error = %v; want nil", err)
	}
}
