package payroll

import (
	"fmt"
	"math"
)

// Calculate runs the full net-salary pipeline. It is pure: prior is the lookback answer,
// nil when no earlier month qualified. Amounts keep full float precision; use
// Breakdown.Rounded for presentation.
func Calculate(rules RuleSet, in Input, prior *PriorMonth) (Breakdown, error) {
	if rules.Calendar == nil {
		return Breakdown{}, fmt.Errorf("%w: calendar is required", ErrInvalidRuleSet)
	}
	month, err := rules.Calendar.Normalize(in.Month)
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	totalWorkingDays, err := rules.Calendar.WorkingDays(month)
	if err != nil {
		return Breakdown{}, fmt.Errorf("%w: %v", ErrInvalidMonth, err)
	}
	if err := in.dayCounts().check(totalWorkingDays); err != nil {
		return Breakdown{}, err
	}
	if err := checkAmounts(rules, in); err != nil {
		return Breakdown{}, err
	}

	var notices []string
	bracket := in.Bracket
	if bracket == "" {
		year, ok := BirthYearFromEGN(in.EmployeeID)
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: bracket is required when the employee id is not a valid EGN", ErrUnknownBracket)
		}
		bracket = rules.BracketForBirthYear(year)
		notices = append(notices, NoticeBracketFromEGN)
	}
	profile, err := rules.Profile(bracket)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		EffectiveYear:       rules.Year,
		EmployeeID:          in.EmployeeID,
		Month:               month,
		Bracket:             bracket,
		GrossSalary:         in.GrossSalary,
		TotalWorkingDays:    totalWorkingDays,
		DaysVacation:        in.DaysVacation,
		DaysSick:            in.DaysSick,
		DaysAbsence:         in.DaysAbsence,
		DaysUnpaid:          in.DaysUnpaid,
		SickLeaveEpisodes:   in.SickLeaveEpisodes,
		EmployeeRates:       profile.Employee,
		EmployerRates:       profile.Employer,
		WorkAccidentRate:    in.WorkAccidentRatePercent,
		DisabilityExemption: in.DisabilityExemption,
	}
	workingDays := float64(totalWorkingDays)

	// Seniority bonus.
	b.SeniorityAmount = in.GrossSalary * (in.SeniorityRatePercent / 100) * float64(in.YearsExperience)
	b.GrossWithSeniority = in.GrossSalary + b.SeniorityAmount

	b.DaysWorked = totalWorkingDays - in.DaysVacation - in.DaysSick - in.DaysAbsence - in.DaysUnpaid
	if b.DaysWorked < 0 {
		return Breakdown{}, fmt.Errorf("%w: negative worked days", ErrInvalidDayCounts)
	}

	// Paid-leave daily base: prior qualifying month, else the current month, else nothing.
	switch {
	case prior != nil && prior.WorkingDays > 0:
		b.VacationDailyBase = prior.grossWithSeniority() / float64(prior.WorkingDays)
		b.VacationBaseSource = LeaveBasePriorMonth
		b.VacationBaseMonth = prior.Month
		notices = append(notices, NoticeLeaveBasePrior)
	case b.DaysWorked >= rules.MinDaysWorkedForLeaveBase:
		b.VacationDailyBase = b.GrossWithSeniority / workingDays
		b.VacationBaseSource = LeaveBaseCurrentMonth
		b.VacationBaseMonth = month
		notices = append(notices, NoticeLeaveBaseCurrent)
	default:
		b.VacationDailyBase = 0
		b.VacationBaseSource = LeaveBaseNone
		notices = append(notices, NoticeNoQualifyingBase)
	}

	// Earnings.
	b.BaseSalaryPart = (b.GrossWithSeniority / workingDays) * float64(b.DaysWorked)
	b.VacationPart = b.VacationDailyBase * float64(in.DaysVacation)
	b.DailySickPay = (b.GrossWithSeniority / workingDays) * rules.SickPayRatio
	b.EmployerSickDays = min(in.DaysSick, rules.EmployerSickDaysPerEpisode*in.SickLeaveEpisodes)
	b.StateSickDays = in.DaysSick - b.EmployerSickDays
	b.SickPayEmployer = b.DailySickPay * float64(b.EmployerSickDays)
	b.SickPayNSSI = b.DailySickPay * float64(b.StateSickDays)
	grossWorked := b.BaseSalaryPart + b.VacationPart
	b.TotalGrossIncome = grossWorked + b.SickPayEmployer

	b.InsuranceBase = rules.Thresholds.clamp(grossWorked + b.SickPayEmployer)

	// Employee side.
	b.Employee = profile.Employee.apply(b.InsuranceBase)
	b.TotalDOOEmployee = b.Employee.Pension + b.Employee.OZM + b.Employee.Unemployment
	b.TotalInsuranceEmployeeCore = b.TotalDOOEmployee + b.Employee.DZPO + b.Employee.Health

	b.UnpaidHealthBase = (rules.Thresholds.MinInsurable * rules.UnpaidHealthBaseFactor / workingDays) * float64(in.DaysUnpaid)
	b.UnpaidHealthAmount = b.UnpaidHealthBase * rules.UnpaidHealthRate
	if rules.RoundUnpaidHealthLevy {
		b.UnpaidHealthAmount = Round2(b.UnpaidHealthAmount)
	}
	b.TotalInsuranceEmployee = b.TotalInsuranceEmployeeCore + b.UnpaidHealthAmount

	// Health cover for state-paid sick days is financed by the employer on the minimum income.
	b.SickLeaveInsuranceBase = (rules.Thresholds.MinInsurable / workingDays) * float64(b.StateSickDays)
	b.EmployerHealthOnStateSick = b.SickLeaveInsuranceBase * rules.StateSickHealthRate

	// Employer side.
	b.Employer = profile.Employer.apply(b.InsuranceBase)
	b.WorkAccident = b.InsuranceBase * (in.WorkAccidentRatePercent / 100)
	b.TotalDOOEmployer = b.Employer.Pension + b.Employer.OZM + b.Employer.Unemployment
	b.TotalInsuranceEmployer = b.TotalDOOEmployer + b.Employer.DZPO + b.WorkAccident + b.Employer.Health + b.EmployerHealthOnStateSick

	b.EmployerTotalCost = b.TotalGrossIncome + b.TotalInsuranceEmployer + b.UnpaidHealthAmount

	// Tax.
	b.TaxableIncome = (grossWorked + b.SickPayEmployer) - (b.TotalInsuranceEmployee - b.UnpaidHealthAmount)
	// Only the exemption floors at zero. Earnings below the insurable minimum leave a
	// negative taxable amount and therefore a negative tax.
	if in.DisabilityExemption {
		b.TaxableIncome = math.Max(0, b.TaxableIncome-rules.DisabilityExemption)
	}
	b.IncomeTax = b.TaxableIncome * rules.FlatTaxRate
	b.NetSalary = b.TotalGrossIncome - b.TotalInsuranceEmployee - b.IncomeTax

	b.Notices = notices
	return b, nil
}

func checkAmounts(rules RuleSet, in Input) error {
	if in.GrossSalary <= 0 || math.IsNaN(in.GrossSalary) || math.IsInf(in.GrossSalary, 0) {
		return fmt.Errorf("%w: gross salary must be a positive amount", ErrInvalidInput)
	}
	if in.YearsExperience < 0 {
		return fmt.Errorf("%w: years of experience must not be negative", ErrInvalidInput)
	}
	if in.SeniorityRatePercent != 0 && !rules.seniorityAllowed(in.SeniorityRatePercent) {
		return fmt.Errorf("%w: seniority rate %v%% is not an allowed option", ErrInvalidInput, in.SeniorityRatePercent)
	}
	if !rules.workAccidentAllowed(in.WorkAccidentRatePercent) {
		return fmt.Errorf("%w: work-accident rate %v%% is not an allowed option", ErrInvalidInput, in.WorkAccidentRatePercent)
	}
	return nil
}
