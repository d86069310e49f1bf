package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/careward/alert-relay/internal/domain"
)

// submitRequest is the JSON body posted to the platform gateway.
type submitRequest struct {
	Identifier string         `json:"identifier"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Payload    map[string]any `json:"payload,omitempty"`
	Priority   string         `json:"priority"`
}

// WebhookChannel delivers alerts by POSTing to a platform gateway endpoint.
// The base URL is injected from config so tests can point at a local mock.
//
// The HTTP client carries no timeout of its own; the orchestrator bounds
// every Submit with a per-attempt context deadline.
type WebhookChannel struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebhookChannel(baseURL string) *WebhookChannel {
	return &WebhookChannel{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Submit posts the alert and expects a 202 Accepted.
// A 4xx response means the gateway refused the item outright and maps to
// domain.ErrDeliveryRejected; 5xx and transport errors are retriable.
func (c *WebhookChannel) Submit(ctx context.Context, item *domain.NotificationItem) error {
	body, err := json.Marshal(submitRequest{
		Identifier: item.Identifier,
		Title:      item.Title,
		Body:       item.Body,
		Payload:    item.Payload,
		Priority:   string(item.Priority),
	})
	if err != nil {
		return fmt.Errorf("%w: marshal request: %v", domain.ErrDeliveryRejected, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit alert: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusAccepted:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return fmt.Errorf("%w: gateway status %d", domain.ErrDeliveryRejected, resp.StatusCode)
	default:
		return fmt.Errorf("unexpected gateway status: %d", resp.StatusCode)
	}
}

var _ Channel = (*WebhookChannel)(nil)
