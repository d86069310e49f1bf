package delivery

import (
	"context"

	"github.com/careward/alert-relay/internal/domain"
)

// Channel abstracts the platform mechanism that actually presents or
// transmits one alert. Submit blocks until the channel confirms the outcome
// or ctx expires; the orchestrator bounds every call with a deadline.
//
// Outcome mapping:
//   - nil: delivered
//   - an error wrapping domain.ErrDeliveryRejected: non-retriable refusal
//     (malformed content, permanently invalid target); the item is abandoned
//   - any other error, including ctx deadline expiry: transient failure,
//     retried within the retry budget
//
// Stubbing this interface in tests gives full control over delivery
// behaviour without a real platform adapter.
type Channel interface {
	Submit(ctx context.Context, item *domain.NotificationItem) error
}
