package payroll

import (
	"fmt"
	"strings"
)

type dayCounts struct {
	vacation, sick, absence, unpaid, episodes int
}

// check enforces the cross-field limits once, independent of any input surface.
func (d dayCounts) check(workingDays int) error {
	if d.vacation < 0 || d.sick < 0 || d.absence < 0 || d.unpaid < 0 {
		return fmt.Errorf("%w: day counts must not be negative", ErrInvalidDayCounts)
	}
	if sum := d.vacation + d.sick + d.absence + d.unpaid; sum > workingDays {
		return fmt.Errorf("%w: %d absent days exceed %d working days", ErrInvalidDayCounts, sum, workingDays)
	}
	if d.episodes < 0 {
		return fmt.Errorf("%w: sick leave episode count must not be negative", ErrInvalidDayCounts)
	}
	if d.episodes > max(d.sick, 1) {
		return fmt.Errorf("%w: %d sick leave episodes for %d sick days", ErrInvalidDayCounts, d.episodes, d.sick)
	}
	return nil
}

func (in Input) dayCounts() dayCounts {
	return dayCounts{vacation: in.DaysVacation, sick: in.DaysSick, absence: in.DaysAbsence, unpaid: in.DaysUnpaid, episodes: in.SickLeaveEpisodes}
}

func (r AbsenceRecord) dayCounts() dayCounts {
	return dayCounts{vacation: r.DaysVacation, sick: r.DaysSick, absence: r.DaysAbsence, unpaid: r.DaysUnpaid, episodes: r.SickLeaveEpisodes}
}

// ValidateRecord checks a record against the rule set's calendar and normalises its month.
func ValidateRecord(rules RuleSet, rec AbsenceRecord) (AbsenceRecord, error) {
	rec.EmployeeID = strings.TrimSpace(rec.EmployeeID)
	rec.FullName = strings.TrimSpace(rec.FullName)
	if rec.EmployeeID == "" {
		return AbsenceRecord{}, fmt.Errorf("%w: employee id is required", ErrInvalidInput)
	}
	month, err := rules.Calendar.Normalize(rec.Month)
	if err != nil {
		return AbsenceRecord{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	rec.Month = month
	if rec.GrossSalaryBase <= 0 {
		return AbsenceRecord{}, fmt.Errorf("%w: gross salary must be positive", ErrInvalidInput)
	}
	if rec.SeniorityRatePercent < 0 || rec.YearsExperience < 0 {
		return AbsenceRecord{}, fmt.Errorf("%w: seniority must not be negative", ErrInvalidInput)
	}
	workingDays, err := rules.Calendar.WorkingDays(month)
	if err != nil {
		return AbsenceRecord{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	if err := rec.dayCounts().check(workingDays); err != nil {
		return AbsenceRecord{}, err
	}
	return rec, nil
}
