package payroll

import "context"

// RecordReader is the part of the store the lookback resolver depends on.
type RecordReader interface {
	Get(ctx context.Context, employeeID, month string) (AbsenceRecord, error)
}

// RecordStore persists absence records keyed by (employee id, month).
// Upsert replaces an existing record for the same key; implementations serialise
// writes to a key themselves.
type RecordStore interface {
	RecordReader
	Upsert(ctx context.Context, rec AbsenceRecord) error
	Delete(ctx context.Context, employeeID, month string) error
	ListAll(ctx context.Context) ([]AbsenceRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]AbsenceRecord, error)
}
