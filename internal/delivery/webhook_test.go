package delivery_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/careward/alert-relay/internal/delivery"
	"github.com/careward/alert-relay/internal/domain"
)

func sampleItem() *domain.NotificationItem {
	return &domain.NotificationItem{
		Identifier: "task-7",
		Title:      "Handover pending",
		Body:       "Ward B handover awaiting acknowledgement",
		Payload:    map[string]any{"ward": "B"},
		Priority:   domain.PriorityCritical,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestWebhookChannel_Accepted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	ch := delivery.NewWebhookChannel(srv.URL)
	if err := ch.Submit(context.Background(), sampleItem()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["identifier"] != "task-7" || got["priority"] != "critical" {
		t.Fatalf("unexpected request body: %v", got)
	}
}

// TestWebhookChannel_ClientErrorIsRejection verifies 4xx responses map to
// the non-retriable rejection sentinel.
func TestWebhookChannel_ClientErrorIsRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ch := delivery.NewWebhookChannel(srv.URL)
	err := ch.Submit(context.Background(), sampleItem())
	if !errors.Is(err, domain.ErrDeliveryRejected) {
		t.Fatalf("expected ErrDeliveryRejected, got %v", err)
	}
}

// TestWebhookChannel_ServerErrorIsRetriable verifies 5xx responses are plain
// errors the orchestrator will retry.
func TestWebhookChannel_ServerErrorIsRetriable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch := delivery.NewWebhookChannel(srv.URL)
	err := ch.Submit(context.Background(), sampleItem())
	if err == nil {
		t.Fatal("expected an error for 502")
	}
	if errors.Is(err, domain.ErrDeliveryRejected) {
		t.Fatal("5xx must not map to the non-retriable rejection")
	}
}

// TestWebhookChannel_ContextDeadline verifies a hung gateway is cut off by
// the caller's deadline.
func TestWebhookChannel_ContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ch := delivery.NewWebhookChannel(srv.URL)
	err := ch.Submit(ctx, sampleItem())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}
