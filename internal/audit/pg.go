package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/careward/alert-relay/internal/domain"
)

type pgLog struct {
	pool *pgxpool.Pool
}

// NewPgLog returns a Log backed by PostgreSQL. The audit_records table is
// insert-only; this implementation issues no UPDATE or DELETE statements.
func NewPgLog(pool *pgxpool.Pool) Log {
	return &pgLog{pool: pool}
}

func (l *pgLog) Record(ctx context.Context, rec domain.AuditRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO audit_records
			(id, identifier, attempt_type, success, error_detail, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rec.ID, rec.Identifier, rec.AttemptType, rec.Success, rec.ErrorDetail, rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

var _ Log = (*pgLog)(nil)
