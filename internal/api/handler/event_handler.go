package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	apimw "github.com/careward/alert-relay/internal/api/middleware"
	"github.com/careward/alert-relay/internal/bridge"
	"github.com/careward/alert-relay/internal/domain"
)

// EventHandler accepts inbound domain events and hands them to the bridge.
type EventHandler struct {
	bridge *bridge.Bridge
	logger *zap.Logger
}

func NewEventHandler(b *bridge.Bridge, logger *zap.Logger) *EventHandler {
	return &EventHandler{bridge: b, logger: logger}
}

// Ingest handles POST /api/v1/events.
//
// The request body is the inbound event contract from the task/handover
// domain. A 202 means the alert is queued; delivery outcomes are observable
// only through the audit trail. Validation failures return 422, a lane at
// capacity returns 503.
func (h *EventHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var ev domain.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.bridge.Ingest(r.Context(), ev)
	if err != nil {
		h.logger.Warn("event rejected",
			zap.String("correlation_id", apimw.GetCorrelationID(r.Context())),
			zap.String("event_type", string(ev.Type)),
			zap.Error(err),
		)
		mapError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, item)
}
