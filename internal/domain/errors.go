package domain

import "errors"

// Sentinel errors used throughout the application.
// The HTTP layer translates these to status codes via a single mapError
// function; the orchestrator branches on ErrDeliveryRejected with errors.Is.
var (
	// Validation failures: the item never enters a queue.
	ErrUnknownEventType    = errors.New("unknown event type")
	ErrMissingIdentifier   = errors.New("identifier must not be empty")
	ErrMissingContent      = errors.New("title and body must not be empty")
	ErrNotSerializable     = errors.New("payload is not serializable")
	ErrPayloadTooLarge     = errors.New("payload exceeds 4096 serialized bytes")
	ErrSensitiveContent    = errors.New("restricted content requires a generic display fallback")
	ErrInvalidPriorityHint = errors.New("priority hint must be normal or important")

	// ErrQueueFull is returned by Enqueue on a lane at capacity. Callers
	// treat it as immediate abandonment with a rejected_full audit entry,
	// never as a silent drop.
	ErrQueueFull = errors.New("queue is at capacity")

	// ErrDeliveryRejected marks a non-retriable refusal from the delivery
	// channel. The orchestrator abandons the item immediately, regardless
	// of remaining retry budget.
	ErrDeliveryRejected = errors.New("delivery channel rejected item")

	// ErrAuditWrite wraps a failed audit sink write. Unaudited attempts
	// violate the compliance contract, so this is escalated to the host
	// rather than swallowed.
	ErrAuditWrite = errors.New("audit write failed")
)
