package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/careward/alert-relay/internal/audit"
	"github.com/careward/alert-relay/internal/domain"
	"github.com/careward/alert-relay/internal/queue"
)

// Bridge translates inbound domain events into queued notification items.
// All enqueue-time rules live here: shape validation, the payload size
// bound, the sensitivity gate, and deterministic priority classification.
// The orchestrator never sees an item the bridge did not accept.
type Bridge struct {
	normal   *queue.Lane
	critical *queue.Lane
	auditLog audit.Log
	logger   *zap.Logger
}

func New(normal, critical *queue.Lane, auditLog audit.Log, logger *zap.Logger) *Bridge {
	return &Bridge{normal: normal, critical: critical, auditLog: auditLog, logger: logger}
}

// Ingest validates and classifies an event, then enqueues the resulting
// item on the matching lane. Validation failures are reported synchronously
// and leave both lanes untouched.
//
// The returned item is a snapshot taken before the enqueue: once an item is
// queued, the orchestrator owns it exclusively (it mutates RetryCount and
// CreatedAt on the retry path), so callers must never hold a reference to
// the queued instance.
//
// A lane at capacity is an immediate abandonment: the rejected_full audit
// record is written here, at the enqueue boundary, and ErrQueueFull is
// propagated to the caller. Attempt-outcome records stay with the
// orchestrator; this is the one enqueue-time record.
func (b *Bridge) Ingest(ctx context.Context, ev domain.Event) (domain.NotificationItem, error) {
	item, err := buildItem(ev)
	if err != nil {
		return domain.NotificationItem{}, err
	}
	snapshot := *item

	lane := b.normal
	if item.Priority == domain.PriorityCritical {
		lane = b.critical
	}

	if err := lane.Enqueue(item); err != nil {
		if errors.Is(err, domain.ErrQueueFull) {
			b.recordRejection(ctx, &snapshot)
		}
		return domain.NotificationItem{}, err
	}

	b.logger.Debug("event enqueued",
		zap.String("identifier", snapshot.Identifier),
		zap.String("priority", string(snapshot.Priority)),
	)
	return snapshot, nil
}

// buildItem validates the event and constructs the item to enqueue.
// For restricted content the generic fallback text replaces title and body;
// raw sensitive detail never reaches a queue.
func buildItem(ev domain.Event) (*domain.NotificationItem, error) {
	if !ev.Type.IsValid() {
		return nil, domain.ErrUnknownEventType
	}
	if ev.Identifier == "" {
		return nil, domain.ErrMissingIdentifier
	}
	if ev.Title == "" || ev.Body == "" {
		return nil, domain.ErrMissingContent
	}

	size, err := domain.PayloadSize(ev.Payload)
	if err != nil {
		return nil, err
	}
	if size > domain.MaxPayloadBytes {
		return nil, domain.ErrPayloadTooLarge
	}

	title, body := ev.Title, ev.Body
	if ev.SensitivityLevel >= domain.SensitivityRestricted {
		if ev.GenericTitle == "" || ev.GenericBody == "" {
			return nil, domain.ErrSensitiveContent
		}
		title, body = ev.GenericTitle, ev.GenericBody
	}

	priority, err := classify(ev)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationItem{
		Identifier:       ev.Identifier,
		Title:            title,
		Body:             body,
		Payload:          ev.Payload,
		Priority:         priority,
		SensitivityLevel: ev.SensitivityLevel,
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// classify derives priority deterministically from the event type.
// The caller hint only distinguishes normal from important for routine task
// updates; no hint can escalate an event to critical.
func classify(ev domain.Event) (domain.Priority, error) {
	switch ev.Type {
	case domain.EventHandoverInitiated:
		return domain.PriorityCritical, nil
	case domain.EventTaskUpdated:
		switch ev.PriorityHint {
		case domain.HintImportant:
			return domain.PriorityImportant, nil
		case domain.HintNormal, "":
			return domain.PriorityNormal, nil
		default:
			return "", domain.ErrInvalidPriorityHint
		}
	default: // sync_completed
		return domain.PriorityNormal, nil
	}
}

func (b *Bridge) recordRejection(ctx context.Context, item *domain.NotificationItem) {
	rec := domain.AuditRecord{
		ID:          uuid.New().String(),
		Identifier:  item.Identifier,
		AttemptType: domain.AttemptRejectedFull,
		Success:     false,
		ErrorDetail: domain.ErrQueueFull.Error(),
		Timestamp:   time.Now().UTC(),
	}
	if err := b.auditLog.Record(ctx, rec); err != nil {
		b.logger.Error("audit write failed for queue-full rejection",
			zap.String("identifier", item.Identifier), zap.Error(err))
	}
}
