package payroll

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	rules := DefaultRuleSet()
	return NewService(NewMemoryStore(rules.Calendar.Ordinal), rules, quietLogger())
}

func TestServiceComputeUsesStoredPriorMonth(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.SaveRecord(ctx, AbsenceRecord{EmployeeID: "E-1", Month: "8", GrossSalaryBase: 2100, SickLeaveEpisodes: 1})
	require.NoError(t, err)

	in := septemberInput()
	in.Month = "септември"
	in.DaysVacation = 5
	b, err := svc.Compute(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Септември", b.Month)
	assert.Equal(t, LeaveBasePriorMonth, b.VacationBaseSource)
	assert.Equal(t, "Август", b.VacationBaseMonth)
	assert.InDelta(t, 100, b.VacationDailyBase, delta)
}

func TestServiceComputeWithoutRecords(t *testing.T) {
	in := septemberInput()
	in.DaysVacation = 12
	b, err := newTestService().Compute(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, LeaveBaseNone, b.VacationBaseSource)
	assert.Contains(t, b.Notices, NoticeNoQualifyingBase)
}

func TestServiceComputeRejectsUnknownMonth(t *testing.T) {
	in := septemberInput()
	in.Month = "Smarch"
	_, err := newTestService().Compute(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestServiceRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	saved, err := svc.SaveRecord(ctx, AbsenceRecord{EmployeeID: " E-1 ", FullName: " Мария ", Month: "март", GrossSalaryBase: 1500, DaysSick: 2, SickLeaveEpisodes: 1})
	require.NoError(t, err)
	assert.Equal(t, "E-1", saved.EmployeeID)
	assert.Equal(t, "Мария", saved.FullName)
	assert.Equal(t, "Март", saved.Month)
	assert.False(t, saved.UpdatedAt.IsZero())

	got, err := svc.GetRecord(ctx, "E-1", "3")
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	list, err := svc.ListRecords(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteRecord(ctx, "E-1", "Март"))
	_, err = svc.GetRecord(ctx, "E-1", "Март")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	_, err = svc.GetRecord(ctx, "E-1", "Smarch")
	assert.ErrorIs(t, err, ErrInvalidMonth)
}

func TestServiceSaveRecordValidation(t *testing.T) {
	svc := newTestService()
	tests := []struct {
		name string
		rec  AbsenceRecord
		want error
	}{
		{name: "missing id", rec: AbsenceRecord{Month: "Март", GrossSalaryBase: 1}, want: ErrInvalidInput},
		{name: "bad month", rec: AbsenceRecord{EmployeeID: "E-1", Month: "13", GrossSalaryBase: 1}, want: ErrInvalidMonth},
		{name: "no salary", rec: AbsenceRecord{EmployeeID: "E-1", Month: "Март"}, want: ErrInvalidInput},
		{name: "too many days", rec: AbsenceRecord{EmployeeID: "E-1", Month: "Март", GrossSalaryBase: 1, DaysAbsence: 21}, want: ErrInvalidDayCounts},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SaveRecord(context.Background(), tc.rec)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServiceImportRecordsReportsRowFailures(t *testing.T) {
	svc := newTestService()
	stored, failures := svc.ImportRecords(context.Background(), []AbsenceRecord{
		{EmployeeID: "E-1", Month: "Януари", GrossSalaryBase: 1500},
		{EmployeeID: "E-1", Month: "Nope", GrossSalaryBase: 1500},
		{EmployeeID: "E-2", Month: "Януари", GrossSalaryBase: 1700},
	})
	assert.Equal(t, 2, stored)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[2], ErrInvalidMonth)
}
