package domain

import (
	"encoding/json"
	"time"
)

// Priority controls queue ordering. Critical items travel on their own lane.
type Priority string

const (
	PriorityNormal    Priority = "normal"
	PriorityImportant Priority = "important"
	PriorityCritical  Priority = "critical"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityNormal, PriorityImportant, PriorityCritical:
		return true
	}
	return false
}

// rank orders priorities for the queue heap. Higher is dequeued first.
func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 2
	case PriorityImportant:
		return 1
	default:
		return 0
	}
}

// Before reports whether an item with priority p should be dequeued ahead
// of one with priority q.
func (p Priority) Before(q Priority) bool { return p.rank() > q.rank() }

// Sensitivity levels for notification content. Restricted content must be
// replaced by generic display text before it ever enters a queue.
const (
	SensitivityNone       = 0
	SensitivityElevated   = 1
	SensitivityRestricted = 2
)

const (
	// MaxRetryAttempts bounds requeues of a single logical item. Once
	// RetryCount reaches this value the item is abandoned permanently.
	MaxRetryAttempts = 3

	// MaxPayloadBytes bounds the serialized payload size. Exceeding it is a
	// validation failure at ingest time, never a runtime error later.
	MaxPayloadBytes = 4096

	// DefaultQueueCapacity is the bound of the normal priority queue.
	DefaultQueueCapacity = 100

	// DefaultCriticalCapacity is the (much larger) bound of the critical
	// alert lane. Routine queue pressure must never starve critical alerts.
	DefaultCriticalCapacity = 1000
)

// NotificationItem is the unit of work flowing through the queues.
//
// Identifier is stable across every requeue of one logical alert; the audit
// trail correlates attempts by it. RetryCount is mutated only by the
// orchestrator. CreatedAt is the FIFO tiebreaker within a priority tier and
// is refreshed on requeue so a retried item joins the back of its tier.
type NotificationItem struct {
	Identifier       string         `json:"identifier"`
	Title            string         `json:"title"`
	Body             string         `json:"body"`
	Payload          map[string]any `json:"payload,omitempty"`
	Priority         Priority       `json:"priority"`
	SensitivityLevel int            `json:"sensitivity_level"`
	CreatedAt        time.Time      `json:"created_at"`
	RetryCount       int            `json:"retry_count"`
}

// PayloadSize returns the serialized size of a payload in bytes.
// A payload that cannot be serialized yields ErrNotSerializable.
func PayloadSize(payload map[string]any) (int, error) {
	if len(payload) == 0 {
		return 0, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, ErrNotSerializable
	}
	return len(b), nil
}

// AttemptType classifies an audit record.
type AttemptType string

const (
	// AttemptDelivery records one delivery attempt, successful or not.
	AttemptDelivery AttemptType = "delivery"
	// AttemptAbandoned is the terminal record for an item that exhausted its
	// retries or was rejected as undeliverable.
	AttemptAbandoned AttemptType = "abandoned"
	// AttemptRejectedFull records an enqueue refused by a lane at capacity.
	AttemptRejectedFull AttemptType = "rejected_full"
	// AttemptCancelled records a queued item removed before any attempt.
	AttemptCancelled AttemptType = "cancelled"
)

// AuditRecord is one immutable entry in the compliance trail. Records are
// write-once: no component ever updates or deletes them.
type AuditRecord struct {
	ID          string      `json:"id"`
	Identifier  string      `json:"identifier"`
	AttemptType AttemptType `json:"attempt_type"`
	Success     bool        `json:"success"`
	ErrorDetail string      `json:"error_detail,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// EventType identifies the originating domain event of a notification.
type EventType string

const (
	EventTaskUpdated       EventType = "task_updated"
	EventHandoverInitiated EventType = "handover_initiated"
	EventSyncCompleted     EventType = "sync_completed"
)

func (e EventType) IsValid() bool {
	switch e {
	case EventTaskUpdated, EventHandoverInitiated, EventSyncCompleted:
		return true
	}
	return false
}

// PriorityHint is the caller-supplied urgency hint for routine task events.
// It never escalates an event to critical; classification by event type is
// deterministic.
type PriorityHint string

const (
	HintNormal    PriorityHint = "normal"
	HintImportant PriorityHint = "important"
)

// Event is the inbound contract from the task/handover domain. Restricted
// content must arrive with generic fallback text; the bridge enqueues the
// fallback, never the raw detail.
type Event struct {
	Type             EventType      `json:"event_type"`
	Identifier       string         `json:"identifier"`
	Title            string         `json:"title"`
	Body             string         `json:"body"`
	GenericTitle     string         `json:"generic_title,omitempty"`
	GenericBody      string         `json:"generic_body,omitempty"`
	Payload          map[string]any `json:"payload,omitempty"`
	SensitivityLevel int            `json:"sensitivity_level"`
	PriorityHint     PriorityHint   `json:"priority_hint,omitempty"`
}
