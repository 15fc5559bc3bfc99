package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// CheckoutIntent is what the platform asks the payment provider to host a
// checkout page for.
type CheckoutIntent struct {
	Reference   string `json:"reference"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
	SuccessURL  string `json:"success_url"`
	CancelURL   string `json:"cancel_url"`
}

// Provider creates hosted checkout sessions with an external payment
// processor. The processor later reports the outcome on the webhook
// endpoint using the same reference.
type Provider interface {
	CreateCheckout(ctx context.Context, intent CheckoutIntent) (checkoutURL string, err error)
}

// DevProvider fabricates checkout URLs without talking to anyone. Used
// when no provider URL is configured; the webhook endpoint still drives
// confirmation, so local flows are fully testable.
type DevProvider struct{}

func (DevProvider) CreateCheckout(_ context.Context, intent CheckoutIntent) (string, error) {
	return "https://pay.dev.local/checkout/" + intent.Reference, nil
}

// HTTPProvider posts checkout intents to a real processor endpoint.
type HTTPProvider struct {
	endpoint string
	client   *http.Client
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	return &HTTPProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (p *HTTPProvider) CreateCheckout(ctx context.Context, intent CheckoutIntent) (string, error) {
	body, err := json.Marshal(intent)
	if err != nil {
		return "", fmt.Errorf("marshal intent: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	var out struct {
		CheckoutURL string `json:"checkout_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode provider response: %w", err)
	}
	if out.CheckoutURL == "" {
		return "", fmt.Errorf("provider response missing checkout_url")
	}
	return out.CheckoutURL, nil
}
