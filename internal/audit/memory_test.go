package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/careward/alert-relay/internal/audit"
	"github.com/careward/alert-relay/internal/domain"
)

func rec(id, identifier string, at domain.AttemptType) domain.AuditRecord {
	return domain.AuditRecord{
		ID:          id,
		Identifier:  identifier,
		AttemptType: at,
		Timestamp:   time.Now().UTC(),
	}
}

func TestMemoryLog_ByIdentifierPreservesWriteOrder(t *testing.T) {
	log := audit.NewMemoryLog()
	ctx := context.Background()

	_ = log.Record(ctx, rec("1", "a", domain.AttemptDelivery))
	_ = log.Record(ctx, rec("2", "b", domain.AttemptDelivery))
	_ = log.Record(ctx, rec("3", "a", domain.AttemptAbandoned))

	got := log.ByIdentifier("a")
	if len(got) != 2 {
		t.Fatalf("expected 2 records for a, got %d", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("expected write order 1,3; got %s,%s", got[0].ID, got[1].ID)
	}
	if len(log.Records()) != 3 {
		t.Fatalf("expected 3 records total, got %d", len(log.Records()))
	}
}
