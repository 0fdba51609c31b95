package payroll

import "github.com/shopspring/decimal"

// Round2 rounds an amount to cents, half away from zero.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func (c ContributionLines) rounded() ContributionLines {
	return ContributionLines{
		Pension:      Round2(c.Pension),
		OZM:          Round2(c.OZM),
		Unemployment: Round2(c.Unemployment),
		DZPO:         Round2(c.DZPO),
		Health:       Round2(c.Health),
	}
}

// Rounded returns a presentation copy with every money amount rounded to cents.
// Rates and day counts are left untouched.
func (b Breakdown) Rounded() Breakdown {
	out := b
	for _, v := range []*float64{
		&out.GrossSalary, &out.SeniorityAmount, &out.GrossWithSeniority,
		&out.VacationDailyBase, &out.BaseSalaryPart, &out.VacationPart,
		&out.DailySickPay, &out.SickPayEmployer, &out.SickPayNSSI,
		&out.TotalGrossIncome, &out.InsuranceBase,
		&out.TotalDOOEmployee, &out.TotalInsuranceEmployeeCore,
		&out.UnpaidHealthBase, &out.UnpaidHealthAmount, &out.TotalInsuranceEmployee,
		&out.WorkAccident, &out.TotalDOOEmployer,
		&out.SickLeaveInsuranceBase, &out.EmployerHealthOnStateSick,
		&out.TotalInsuranceEmployer, &out.EmployerTotalCost,
		&out.TaxableIncome, &out.IncomeTax, &out.NetSalary,
	} {
		*v = Round2(*v)
	}
	out.Employee = b.Employee.rounded()
	out.Employer = b.Employer.rounded()
	if b.Notices != nil {
		out.Notices = append([]string(nil), b.Notices...)
	}
	return out
}
