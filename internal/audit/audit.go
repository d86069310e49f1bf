package audit

import (
	"context"

	"github.com/careward/alert-relay/internal/domain"
)

// Log is the append-only audit sink. Every delivery attempt outcome,
// abandonment, capacity rejection, and cancellation produces exactly one
// record. Implementations never update or delete records.
//
// Record is called synchronously before the orchestrator proceeds to the
// next item: audit completeness takes priority over throughput.
// The pgx implementation is in pg.go; tests and library-only embedders use
// the in-memory implementation (memory.go).
type Log interface {
	Record(ctx context.Context, rec domain.AuditRecord) error
}
