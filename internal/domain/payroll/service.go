package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Service struct {
	store    RecordStore
	rules    RuleSet
	resolver *Resolver
	logger   *slog.Logger
}

func NewService(store RecordStore, rules RuleSet, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		rules:    rules,
		resolver: NewResolver(store, rules, logger),
		logger:   logger,
	}
}

func (s *Service) Rules() RuleSet {
	return s.rules
}

// Compute resolves the paid-leave lookback against the record store and runs the calculator.
func (s *Service) Compute(ctx context.Context, in Input) (Breakdown, error) {
	month, err := s.rules.Calendar.Normalize(in.Month)
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	in.Month = month
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)

	var prior *PriorMonth
	found, ok, err := s.resolver.FindQualifyingPriorMonth(ctx, in.EmployeeID, month)
	if err != nil {
		return Breakdown{}, err
	}
	if ok {
		prior = &found
	}

	b, err := Calculate(s.rules, in, prior)
	if err != nil {
		return Breakdown{}, err
	}
	if b.VacationBaseSource == LeaveBaseNone && in.DaysVacation > 0 {
		s.logger.InfoContext(ctx, "paid leave not valued, no qualifying month", "employeeId", in.EmployeeID, "month", month, "daysVacation", in.DaysVacation)
	}
	return b, nil
}

func (s *Service) SaveRecord(ctx context.Context, rec AbsenceRecord) (AbsenceRecord, error) {
	valid, err := ValidateRecord(s.rules, rec)
	if err != nil {
		return AbsenceRecord{}, err
	}
	if err := s.store.Upsert(ctx, valid); err != nil {
		return AbsenceRecord{}, fmt.Errorf("upsert record: %w", err)
	}
	return s.store.Get(ctx, valid.EmployeeID, valid.Month)
}

func (s *Service) GetRecord(ctx context.Context, employeeID, month string) (AbsenceRecord, error) {
	name, err := s.rules.Calendar.Normalize(month)
	if err != nil {
		return AbsenceRecord{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	return s.store.Get(ctx, strings.TrimSpace(employeeID), name)
}

func (s *Service) DeleteRecord(ctx context.Context, employeeID, month string) error {
	name, err := s.rules.Calendar.Normalize(month)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	return s.store.Delete(ctx, strings.TrimSpace(employeeID), name)
}

// ListRecords lists every record, or one employee's records when employeeID is set.
func (s *Service) ListRecords(ctx context.Context, employeeID string) ([]AbsenceRecord, error) {
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return s.store.ListAll(ctx)
	}
	return s.store.ListByEmployee(ctx, employeeID)
}

// ImportRecords validates and upserts each record, returning how many were stored and
// the per-row failures keyed by 1-based row number.
func (s *Service) ImportRecords(ctx context.Context, records []AbsenceRecord) (int, map[int]error) {
	failures := map[int]error{}
	stored := 0
	for i, rec := range records {
		if _, err := s.SaveRecord(ctx, rec); err != nil {
			failures[i+1] = err
			continue
		}
		stored++
	}
	return stored, failures
}
