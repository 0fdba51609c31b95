package payroll

import (
	"context"
	"sort"
	"sync"
	"time"
)

type recordKey struct {
	employeeID string
	month      string
}

// MemoryStore keeps records in process memory. Writes are serialised by the mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[recordKey]AbsenceRecord
	order   func(month string) int
	now     func() time.Time
}

// NewMemoryStore builds an empty store. monthOrder ranks months for listing; pass nil to
// sort by month name.
func NewMemoryStore(monthOrder func(month string) int) *MemoryStore {
	return &MemoryStore{
		records: make(map[recordKey]AbsenceRecord),
		order:   monthOrder,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(ctx context.Context, employeeID, month string) (AbsenceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[recordKey{employeeID: employeeID, month: month}]
	if !ok {
		return AbsenceRecord{}, ErrRecordNotFound
	}
	return rec, nil
}

func (s *MemoryStore) Upsert(ctx context.Context, rec AbsenceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.UpdatedAt = s.now().UTC()
	s.records[recordKey{employeeID: rec.EmployeeID, month: rec.Month}] = rec
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, employeeID, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := recordKey{employeeID: employeeID, month: month}
	if _, ok := s.records[key]; !ok {
		return ErrRecordNotFound
	}
	delete(s.records, key)
	return nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]AbsenceRecord, error) {
	return s.list(func(AbsenceRecord) bool { return true }), nil
}

func (s *MemoryStore) ListByEmployee(ctx context.Context, employeeID string) ([]AbsenceRecord, error) {
	return s.list(func(rec AbsenceRecord) bool { return rec.EmployeeID == employeeID }), nil
}

func (s *MemoryStore) list(keep func(AbsenceRecord) bool) []AbsenceRecord {
	s.mu.RLock()
	out := make([]AbsenceRecord, 0, len(s.records))
	for _, rec := range s.records {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		if s.order != nil {
			return s.order(out[i].Month) < s.order(out[j].Month)
		}
		return out[i].Month < out[j].Month
	})
	return out
}
