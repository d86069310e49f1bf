package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/careward/alert-relay/internal/orchestrator"
)

// NotificationHandler exposes the cancellation interface and the queue
// depth snapshot.
type NotificationHandler struct {
	orch   *orchestrator.Orchestrator
	logger *zap.Logger
}

func NewNotificationHandler(orch *orchestrator.Orchestrator, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{orch: orch, logger: logger}
}

// Cancel handles DELETE /api/v1/notifications/{id}.
//
// Cancellation is best-effort and only effective while the item is queued.
// It is idempotent: an unknown or already-processed identifier still yields
// 200, with "removed" reporting whether anything was dequeued.
func (h *NotificationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed := h.orch.Cancel(r.Context(), id)
	respondJSON(w, http.StatusOK, map[string]any{
		"identifier": id,
		"removed":    removed,
	})
}

// Queues handles GET /api/v1/queues, a human-readable JSON depth snapshot.
// Raw Prometheus metrics are served separately at /metrics via promhttp.
func (h *NotificationHandler) Queues(w http.ResponseWriter, r *http.Request) {
	normal, critical := h.orch.Depths()
	respondJSON(w, http.StatusOK, map[string]any{
		"queue_depth": map[string]int{
			"normal":   normal,
			"critical": critical,
			"total":    normal + critical,
		},
	})
}
