package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/calendar"
)

// Resolver finds the nearest earlier month of the same year whose record shows
// enough worked days to serve as the paid-leave base.
type Resolver struct {
	store    RecordReader
	calendar *calendar.Calendar
	minDays  int
	logger   *slog.Logger
}

func NewResolver(store RecordReader, rules RuleSet, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, calendar: rules.Calendar, minDays: rules.MinDaysWorkedForLeaveBase, logger: logger}
}

// FindQualifyingPriorMonth scans backwards from the month before targetMonth.
// Missing records and store failures both mean "keep scanning"; only an unknown
// target month is an error.
func (r *Resolver) FindQualifyingPriorMonth(ctx context.Context, employeeID, targetMonth string) (PriorMonth, bool, error) {
	candidates, err := r.calendar.MonthsBefore(targetMonth)
	if err != nil {
		return PriorMonth{}, false, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" || r.store == nil {
		return PriorMonth{}, false, nil
	}

	for _, month := range candidates {
		rec, err := r.store.Get(ctx, employeeID, month)
		if err != nil {
			if !errors.Is(err, ErrRecordNotFound) {
				r.logger.WarnContext(ctx, "lookback record read failed", "employeeId", employeeID, "month", month, "err", err)
			}
			continue
		}
		workingDays, err := r.calendar.WorkingDays(month)
		if err != nil {
			continue
		}
		if workingDays-rec.absentDays() >= r.minDays {
			return PriorMonth{
				Month:                month,
				GrossSalaryBase:      rec.GrossSalaryBase,
				SeniorityRatePercent: rec.SeniorityRatePercent,
				YearsExperience:      rec.YearsExperience,
				WorkingDays:          workingDays,
			}, true, nil
		}
	}
	return PriorMonth{}, false, nil
}
