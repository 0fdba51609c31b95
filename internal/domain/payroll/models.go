package payroll

import "time"

// AbsenceRecord is the persisted unit, one per employee per month.
type AbsenceRecord struct {
	EmployeeID           string    `json:"employeeId"`
	FullName             string    `json:"fullName"`
	Month                string    `json:"month"`
	GrossSalaryBase      float64   `json:"grossSalaryBase"`
	SeniorityRatePercent float64   `json:"seniorityRatePercent"`
	YearsExperience      int       `json:"yearsExperience"`
	DaysVacation         int       `json:"daysVacation"`
	DaysSick             int       `json:"daysSick"`
	DaysAbsence          int       `json:"daysAbsence"`
	DaysUnpaid           int       `json:"daysUnpaid"`
	SickLeaveEpisodes    int       `json:"sickLeaveEpisodes"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (r AbsenceRecord) absentDays() int {
	return r.DaysVacation + r.DaysSick + r.DaysAbsence + r.DaysUnpaid
}

// Input is everything the calculator needs for one employee and month.
// An empty Bracket is resolved from the employee id when it is a valid EGN.
type Input struct {
	EmployeeID              string       `json:"employeeId"`
	Month                   string       `json:"month"`
	GrossSalary             float64      `json:"grossSalary"`
	WorkAccidentRatePercent float64      `json:"workAccidentRatePercent"`
	Bracket                 BirthBracket `json:"bracket"`
	DaysVacation            int          `json:"daysVacation"`
	DaysSick                int          `json:"daysSick"`
	DaysAbsence             int          `json:"daysAbsence"`
	DaysUnpaid              int          `json:"daysUnpaid"`
	SickLeaveEpisodes       int          `json:"sickLeaveEpisodes"`
	DisabilityExemption     bool         `json:"disabilityExemption"`
	YearsExperience         int          `json:"yearsExperience"`
	SeniorityRatePercent    float64      `json:"seniorityRatePercent"`
}

// PriorMonth is the salary data of the nearest earlier month with enough worked days.
type PriorMonth struct {
	Month                string  `json:"month"`
	GrossSalaryBase      float64 `json:"grossSalaryBase"`
	SeniorityRatePercent float64 `json:"seniorityRatePercent"`
	YearsExperience      int     `json:"yearsExperience"`
	WorkingDays          int     `json:"workingDays"`
}

func (p PriorMonth) grossWithSeniority() float64 {
	return p.GrossSalaryBase + (p.GrossSalaryBase * (p.SeniorityRatePercent / 100) * float64(p.YearsExperience))
}

type ContributionLines struct {
	Pension      float64 `json:"pension"`
	OZM          float64 `json:"ozm"`
	Unemployment float64 `json:"unemployment"`
	DZPO         float64 `json:"dzpo"`
	Health       float64 `json:"health"`
}

// Breakdown is the itemised result of one calculation. It is never persisted.
type Breakdown struct {
	EffectiveYear int          `json:"effectiveYear"`
	EmployeeID    string       `json:"employeeId,omitempty"`
	Month         string       `json:"month"`
	Bracket       BirthBracket `json:"bracket"`

	GrossSalary        float64 `json:"grossSalary"`
	SeniorityAmount    float64 `json:"seniorityAmount"`
	GrossWithSeniority float64 `json:"grossWithSeniority"`

	TotalWorkingDays  int `json:"totalWorkingDays"`
	DaysWorked        int `json:"daysWorked"`
	DaysVacation      int `json:"daysVacation"`
	DaysSick          int `json:"daysSick"`
	DaysAbsence       int `json:"daysAbsence"`
	DaysUnpaid        int `json:"daysUnpaid"`
	SickLeaveEpisodes int `json:"sickLeaveEpisodes"`
	EmployerSickDays  int `json:"employerSickDays"`
	StateSickDays     int `json:"stateSickDays"`

	VacationDailyBase  float64         `json:"vacationDailyBase"`
	VacationBaseSource LeaveBaseSource `json:"vacationBaseSource"`
	VacationBaseMonth  string          `json:"vacationBaseMonth,omitempty"`

	BaseSalaryPart   float64 `json:"baseSalaryPart"`
	VacationPart     float64 `json:"vacationPart"`
	DailySickPay     float64 `json:"dailySickPay"`
	SickPayEmployer  float64 `json:"sickPayEmployer"`
	SickPayNSSI      float64 `json:"sickPayNssi"`
	TotalGrossIncome float64 `json:"totalGrossIncome"`
	InsuranceBase    float64 `json:"insuranceBase"`

	EmployeeRates              RateSet           `json:"employeeRates"`
	Employee                   ContributionLines `json:"employee"`
	TotalDOOEmployee           float64           `json:"totalDooEmployee"`
	TotalInsuranceEmployeeCore float64           `json:"totalInsuranceEmployeeCore"`
	UnpaidHealthBase           float64           `json:"unpaidHealthBase"`
	UnpaidHealthAmount         float64           `json:"unpaidHealthAmount"`
	TotalInsuranceEmployee     float64           `json:"totalInsuranceEmployee"`

	EmployerRates             RateSet           `json:"employerRates"`
	WorkAccidentRate          float64           `json:"workAccidentRate"`
	Employer                  ContributionLines `json:"employer"`
	WorkAccident              float64           `json:"workAccident"`
	TotalDOOEmployer          float64           `json:"totalDooEmployer"`
	SickLeaveInsuranceBase    float64           `json:"sickLeaveInsuranceBase"`
	EmployerHealthOnStateSick float64           `json:"employerHealthOnStateSick"`
	TotalInsuranceEmployer    float64           `json:"totalInsuranceEmployer"`
	EmployerTotalCost         float64           `json:"employerTotalCost"`

	DisabilityExemption bool    `json:"disabilityExemption"`
	TaxableIncome       float64 `json:"taxableIncome"`
	IncomeTax           float64 `json:"incomeTax"`
	NetSalary           float64 `json:"netSalary"`

	Notices []string `json:"notices,omitempty"`
}
