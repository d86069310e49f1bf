package audit

import (
	"context"
	"sync"

	"github.com/careward/alert-relay/internal/domain"
)

// MemoryLog is a hand-written, in-memory Log used in unit tests and by
// hosts that wire their own persistence. No mock-generation library needed.
type MemoryLog struct {
	mu        sync.RWMutex
	records   []domain.AuditRecord
	recordErr error
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// FailWith makes every subsequent Record call return err. Pass nil to
// restore normal behaviour. Tests use this to exercise the audit-failure
// escalation path.
func (m *MemoryLog) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordErr = err
}

func (m *MemoryLog) Record(_ context.Context, rec domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of every record written so far, in write order.
func (m *MemoryLog) Records() []domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.AuditRecord, len(m.records))
	copy(out, m.records)
	return out
}

// ByIdentifier returns all records for one logical item, in write order.
// Retries share an identifier, so this is the full attempt history.
func (m *MemoryLog) ByIdentifier(id string) []domain.AuditRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.AuditRecord
	for _, rec := range m.records {
		if rec.Identifier == id {
			out = append(out, rec)
		}
	}
	return out
}

var _ Log = (*MemoryLog)(nil)
