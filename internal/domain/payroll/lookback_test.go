package payroll

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type readerFunc func(ctx context.Context, employeeID, month string) (AbsenceRecord, error)

func (f readerFunc) Get(ctx context.Context, employeeID, month string) (AbsenceRecord, error) {
	return f(ctx, employeeID, month)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(t *testing.T, store *MemoryStore, records ...AbsenceRecord) {
	t.Helper()
	for _, rec := range records {
		require.NoError(t, store.Upsert(context.Background(), rec))
	}
}

func TestResolverNearestQualifyingMonthWins(t *testing.T) {
	rules := DefaultRuleSet()
	store := NewMemoryStore(rules.Calendar.Ordinal)
	seed(t, store,
		AbsenceRecord{EmployeeID: "E-1", Month: "Март", GrossSalaryBase: 1500},
		AbsenceRecord{EmployeeID: "E-1", Month: "Май", GrossSalaryBase: 1900, SeniorityRatePercent: 0.6, YearsExperience: 5},
	)

	prior, ok, err := NewResolver(store, rules, quietLogger()).FindQualifyingPriorMonth(context.Background(), "E-1", "Юни")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Май", prior.Month)
	assert.Equal(t, 1900.0, prior.GrossSalaryBase)
	assert.Equal(t, 19, prior.WorkingDays)
	assert.Equal(t, 5, prior.YearsExperience)
}

func TestResolverSkipsMonthsBelowThreshold(t *testing.T) {
	rules := DefaultRuleSet()
	store := NewMemoryStore(rules.Calendar.Ordinal)
	seed(t, store,
		AbsenceRecord{EmployeeID: "E-1", Month: "Март", GrossSalaryBase: 1500},
		// 19 working days, 10 absent: 9 worked
		AbsenceRecord{EmployeeID: "E-1", Month: "Май", GrossSalaryBase: 1900, DaysSick: 6, SickLeaveEpisodes: 1, DaysUnpaid: 4},
		// exactly 10 worked still qualifies
		AbsenceRecord{EmployeeID: "E-1", Month: "Април", GrossSalaryBase: 1700, DaysVacation: 10},
	)

	prior, ok, err := NewResolver(store, rules, quietLogger()).FindQualifyingPriorMonth(context.Background(), "E-1", "Юни")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Април", prior.Month)
}

func TestResolverFirstMonthHasNoCandidates(t *testing.T) {
	rules := DefaultRuleSet()
	called := false
	reader := readerFunc(func(context.Context, string, string) (AbsenceRecord, error) {
		called = true
		return AbsenceRecord{}, nil
	})

	_, ok, err := NewResolver(reader, rules, quietLogger()).FindQualifyingPriorMonth(context.Background(), "E-1", "Януари")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestResolverContinuesPastStoreFailures(t *testing.T) {
	rules := DefaultRuleSet()
	var asked []string
	reader := readerFunc(func(_ context.Context, _ string, month string) (AbsenceRecord, error) {
		asked = append(asked, month)
		switch month {
		case "Март":
			return AbsenceRecord{}, errors.New("disk on fire")
		case "Февруари":
			return AbsenceRecord{}, ErrRecordNotFound
		default:
			return AbsenceRecord{EmployeeID: "E-1", Month: month, GrossSalaryBase: 1234}, nil
		}
	})

	prior, ok, err := NewResolver(reader, rules, quietLogger()).FindQualifyingPriorMonth(context.Background(), "E-1", "Април")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Януари", prior.Month)
	assert.Equal(t, []string{"Март", "Февруари", "Януари"}, asked)
}

func TestResolverUnknownTargetMonth(t *testing.T) {
	_, _, err := NewResolver(NewMemoryStore(nil), DefaultRuleSet(), quietLogger()).
		FindQualifyingPriorMonth(context.Background(), "E-1", "Smarch")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestResolverBlankEmployee(t *testing.T) {
	rules := DefaultRuleSet()
	store := NewMemoryStore(rules.Calendar.Ordinal)
	seed(t, store, AbsenceRecord{EmployeeID: "", Month: "Март", GrossSalaryBase: 1500})

	_, ok, err := NewResolver(store, rules, quietLogger()).FindQualifyingPriorMonth(context.Background(), "  ", "Април")
	require.NoError(t, err)
	assert.False(t, ok)
}
