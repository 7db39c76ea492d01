package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ProcessorClient talks to the payment processor's REST API. The processor
// itself is a black box; this client only covers payment method management
// and payment intent status lookups. It is constructed once at process
// start and passed by reference, never held in package-level state.
type ProcessorClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewProcessorClient() *ProcessorClient {
	url := os.Getenv("PROCESSOR_BASE_URL")
	if url == "" {
		url = "https://api.processor.example.com"
	}
	return &ProcessorClient{
		baseURL: url,
		apiKey:  os.Getenv("PROCESSOR_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// PaymentMethodDetails describes a stored payment method
type PaymentMethodDetails struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	IsDefault bool   `json:"is_default"`
}

// PaymentIntentStatus is the processor's view of a payment intent
type PaymentIntentStatus struct {
	ID           string `json:"id"`
	Status       string `json:"status"` // succeeded, failed, canceled, processing
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func (p *ProcessorClient) makeRequest(method, endpoint string, payload interface{}, out interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		bodyReader = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, fmt.Sprintf("%s%s", p.baseURL, endpoint), bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// RetrievePaymentMethodDetails fetches a stored payment method
func (p *ProcessorClient) RetrievePaymentMethodDetails(id string) (*PaymentMethodDetails, error) {
	var details PaymentMethodDetails
	if err := p.makeRequest("GET", "/v1/payment_methods/"+id, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// AttachPaymentMethod attaches a payment method to a customer
func (p *ProcessorClient) AttachPaymentMethod(methodID, customerRef string) error {
	return p.makeRequest("POST", "/v1/payment_methods/"+methodID+"/attach", map[string]string{
		"customer": customerRef,
	}, nil)
}

// SetDefaultPaymentMethod marks a payment method as the customer's default
func (p *ProcessorClient) SetDefaultPaymentMethod(methodID, customerRef string) error {
	return p.makeRequest("POST", "/v1/customers/"+customerRef+"/default_payment_method", map[string]string{
		"payment_method": methodID,
	}, nil)
}

// RetrievePaymentIntent fetches the processor-side status of a payment
// intent. Used by the reconcile sweep to resolve payments stuck in PENDING
// when a webhook was never delivered.
func (p *ProcessorClient) RetrievePaymentIntent(ref string) (*PaymentIntentStatus, error) {
	var status PaymentIntentStatus
	if err := p.makeRequest("GET", "/v1/payment_intents/"+ref, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
