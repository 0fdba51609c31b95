package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-6

func septemberInput() Input {
	return Input{
		EmployeeID:              "E-1",
		Month:                   "Септември",
		GrossSalary:             2267,
		WorkAccidentRatePercent: 0.7,
		Bracket:                 BracketFromCutoff,
		SeniorityRatePercent:    0.6,
	}
}

func TestCalculateFullMonthScenario(t *testing.T) {
	b, err := Calculate(DefaultRuleSet(), septemberInput(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2025, b.EffectiveYear)
	assert.Equal(t, 20, b.TotalWorkingDays)
	assert.Equal(t, 20, b.DaysWorked)
	assert.Zero(t, b.SeniorityAmount)
	assert.InDelta(t, 2267, b.GrossWithSeniority, delta)
	assert.InDelta(t, 2267, b.InsuranceBase, delta)
	assert.InDelta(t, 312.3926, b.TotalInsuranceEmployee, delta)
	assert.InDelta(t, 1954.6074, b.TaxableIncome, delta)
	assert.InDelta(t, 195.46074, b.IncomeTax, delta)
	assert.InDelta(t, 1759.14666, b.NetSalary, delta)
	assert.InDelta(t, 435.7174, b.TotalInsuranceEmployer, delta)
	assert.InDelta(t, 2702.7174, b.EmployerTotalCost, delta)
	assert.Equal(t, LeaveBaseCurrentMonth, b.VacationBaseSource)

	assert.Equal(t, 1759.15, b.Rounded().NetSalary)
}

func TestCalculateSickLeaveSplit(t *testing.T) {
	in := septemberInput()
	in.GrossSalary = 2000
	in.SeniorityRatePercent = 0
	in.DaysSick = 5
	in.SickLeaveEpisodes = 2

	b, err := Calculate(DefaultRuleSet(), in, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, b.EmployerSickDays)
	assert.Equal(t, 1, b.StateSickDays)
	assert.Equal(t, 15, b.DaysWorked)
	assert.InDelta(t, 70, b.DailySickPay, delta)
	assert.InDelta(t, 280, b.SickPayEmployer, delta)
	assert.InDelta(t, 70, b.SickPayNSSI, delta)
	assert.InDelta(t, 1780, b.InsuranceBase, delta)
	assert.InDelta(t, 2.5848, b.EmployerHealthOnStateSick, delta)
	assert.InDelta(t, 1381.2444, b.NetSalary, delta)
}

func TestCalculateSickDaysAlwaysSplitCompletely(t *testing.T) {
	rules := DefaultRuleSet()
	for sick := 0; sick <= 8; sick++ {
		for episodes := 0; episodes <= max(sick, 1); episodes++ {
			in := septemberInput()
			in.DaysSick = sick
			in.SickLeaveEpisodes = episodes
			b, err := Calculate(rules, in, nil)
			require.NoError(t, err, "sick=%d episodes=%d", sick, episodes)
			assert.Equal(t, sick, b.EmployerSickDays+b.StateSickDays)
		}
	}
}

func TestCalculateInsuranceBaseIsClamped(t *testing.T) {
	rules := DefaultRuleSet()
	for _, gross := range []float64{1, 400, 1077, 2500, 4130, 9000, 1e7} {
		in := septemberInput()
		in.GrossSalary = gross
		b, err := Calculate(rules, in, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.InsuranceBase, rules.Thresholds.MinInsurable, "gross %v", gross)
		assert.LessOrEqual(t, b.InsuranceBase, rules.Thresholds.MaxInsurable, "gross %v", gross)
	}
}

func TestCalculateNetReconstructs(t *testing.T) {
	rules := DefaultRuleSet()
	inputs := []Input{
		septemberInput(),
		{Month: "Януари", GrossSalary: 900, WorkAccidentRatePercent: 0.4, Bracket: BracketBeforeCutoff, DaysUnpaid: 4, DaysAbsence: 1},
		{Month: "Юли", GrossSalary: 6000, WorkAccidentRatePercent: 1.1, Bracket: BracketFromCutoff, DaysSick: 6, SickLeaveEpisodes: 1, DaysVacation: 3, YearsExperience: 12, SeniorityRatePercent: 1.0},
		{Month: "Май", GrossSalary: 1500, WorkAccidentRatePercent: 0.5, Bracket: BracketBeforeCutoff, DisabilityExemption: true, DaysVacation: 2},
	}
	for _, in := range inputs {
		b, err := Calculate(rules, in, nil)
		require.NoError(t, err)
		assert.Equal(t, b.TotalGrossIncome-b.TotalInsuranceEmployee-b.IncomeTax, b.NetSalary)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	rules := DefaultRuleSet()
	prior := &PriorMonth{Month: "Август", GrossSalaryBase: 2100, WorkingDays: 21}
	in := septemberInput()
	in.DaysVacation = 4

	first, err := Calculate(rules, in, prior)
	require.NoError(t, err)
	second, err := Calculate(rules, in, prior)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCalculatePaidLeaveBase(t *testing.T) {
	rules := DefaultRuleSet()

	t.Run("prior month", func(t *testing.T) {
		in := septemberInput()
		in.GrossSalary = 2000
		in.SeniorityRatePercent = 0
		in.DaysVacation = 5
		prior := &PriorMonth{Month: "Август", GrossSalaryBase: 2100, SeniorityRatePercent: 1.0, YearsExperience: 10, WorkingDays: 21}

		b, err := Calculate(rules, in, prior)
		require.NoError(t, err)
		assert.Equal(t, LeaveBasePriorMonth, b.VacationBaseSource)
		assert.Equal(t, "Август", b.VacationBaseMonth)
		assert.InDelta(t, 110, b.VacationDailyBase, delta)
		assert.InDelta(t, 550, b.VacationPart, delta)
		assert.InDelta(t, 1500, b.BaseSalaryPart, delta)
		assert.Contains(t, b.Notices, NoticeLeaveBasePrior)
	})

	t.Run("current month qualifies", func(t *testing.T) {
		in := septemberInput()
		in.GrossSalary = 2000
		in.SeniorityRatePercent = 0
		in.DaysVacation = 10

		b, err := Calculate(rules, in, nil)
		require.NoError(t, err)
		assert.Equal(t, 10, b.DaysWorked)
		assert.Equal(t, LeaveBaseCurrentMonth, b.VacationBaseSource)
		assert.InDelta(t, 100, b.VacationDailyBase, delta)
		assert.InDelta(t, 2000, b.BaseSalaryPart+b.VacationPart, delta)
	})

	t.Run("nothing qualifies", func(t *testing.T) {
		in := septemberInput()
		in.GrossSalary = 2000
		in.DaysVacation = 11

		b, err := Calculate(rules, in, nil)
		require.NoError(t, err)
		assert.Equal(t, 9, b.DaysWorked)
		assert.Equal(t, LeaveBaseNone, b.VacationBaseSource)
		assert.Zero(t, b.VacationPart)
		assert.Contains(t, b.Notices, NoticeNoQualifyingBase)
	})
}

func TestCalculateEarningsNeverExceedGross(t *testing.T) {
	rules := DefaultRuleSet()
	prior := &PriorMonth{Month: "Август", GrossSalaryBase: 1800, WorkingDays: 21}
	for vacation := 0; vacation <= 20; vacation++ {
		in := septemberInput()
		in.DaysVacation = vacation
		b, err := Calculate(rules, in, prior)
		require.NoError(t, err)
		assert.LessOrEqual(t, b.BaseSalaryPart+b.VacationPart, b.GrossWithSeniority+delta)
	}
}

func TestCalculateUnpaidLevyRounding(t *testing.T) {
	in := septemberInput()
	in.GrossSalary = 2000
	in.SeniorityRatePercent = 0
	in.DaysUnpaid = 3

	rules := DefaultRuleSet()
	b, err := Calculate(rules, in, nil)
	require.NoError(t, err)
	assert.InDelta(t, 80.775, b.UnpaidHealthBase, delta)
	assert.Equal(t, 6.46, b.UnpaidHealthAmount)
	assert.InDelta(t, 1312.706, b.NetSalary, delta)

	rules.RoundUnpaidHealthLevy = false
	b, err = Calculate(rules, in, nil)
	require.NoError(t, err)
	assert.InDelta(t, 6.462, b.UnpaidHealthAmount, delta)
	assert.InDelta(t, 1312.704, b.NetSalary, delta)
}

func TestCalculateDisabilityExemptionFloorsAtZero(t *testing.T) {
	in := septemberInput()
	in.GrossSalary = 500
	in.SeniorityRatePercent = 0
	in.DisabilityExemption = true

	b, err := Calculate(DefaultRuleSet(), in, nil)
	require.NoError(t, err)
	assert.Zero(t, b.TaxableIncome)
	assert.Zero(t, b.IncomeTax)
	assert.InDelta(t, 1077, b.InsuranceBase, delta)
}

func TestCalculateTaxableIncomeCanGoNegativeWithoutExemption(t *testing.T) {
	in := septemberInput()
	in.GrossSalary = 1
	in.SeniorityRatePercent = 0

	b, err := Calculate(DefaultRuleSet(), in, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1077, b.InsuranceBase, delta)
	assert.InDelta(t, 148.4106, b.TotalInsuranceEmployee, delta)
	assert.InDelta(t, -147.4106, b.TaxableIncome, delta)
	assert.InDelta(t, -14.74106, b.IncomeTax, delta)
	assert.InDelta(t, -132.66954, b.NetSalary, delta)
	assert.Equal(t, -14.74, b.Rounded().IncomeTax)
}

func TestCalculateOlderBracketHasNoSupplementaryPension(t *testing.T) {
	in := septemberInput()
	in.Bracket = BracketBeforeCutoff

	b, err := Calculate(DefaultRuleSet(), in, nil)
	require.NoError(t, err)
	assert.Zero(t, b.Employee.DZPO)
	assert.Zero(t, b.Employer.DZPO)
	assert.InDelta(t, 2267*0.1378, b.TotalInsuranceEmployee, delta)
}

func TestCalculateBracketFromEGN(t *testing.T) {
	rules := DefaultRuleSet()

	in := septemberInput()
	in.Bracket = ""
	in.EmployeeID = "5503150017"
	b, err := Calculate(rules, in, nil)
	require.NoError(t, err)
	assert.Equal(t, BracketBeforeCutoff, b.Bracket)
	assert.Contains(t, b.Notices, NoticeBracketFromEGN)

	in.EmployeeID = "7501010010"
	b, err = Calculate(rules, in, nil)
	require.NoError(t, err)
	assert.Equal(t, BracketFromCutoff, b.Bracket)

	in.EmployeeID = "E-1"
	_, err = Calculate(rules, in, nil)
	assert.ErrorIs(t, err, ErrUnknownBracket)
}

func TestCalculateRejectsBadInput(t *testing.T) {
	rules := DefaultRuleSet()
	tests := []struct {
		name   string
		mutate func(*Input)
		want   error
	}{
		{name: "unknown month", mutate: func(in *Input) { in.Month = "Smarch" }, want: ErrInvalidMonth},
		{name: "negative days", mutate: func(in *Input) { in.DaysAbsence = -1 }, want: ErrInvalidDayCounts},
		{name: "too many days", mutate: func(in *Input) { in.DaysVacation = 15; in.DaysSick = 6; in.SickLeaveEpisodes = 1 }, want: ErrInvalidDayCounts},
		{name: "too many episodes", mutate: func(in *Input) { in.DaysSick = 2; in.SickLeaveEpisodes = 3 }, want: ErrInvalidDayCounts},
		{name: "negative episodes", mutate: func(in *Input) { in.SickLeaveEpisodes = -1 }, want: ErrInvalidDayCounts},
		{name: "zero gross", mutate: func(in *Input) { in.GrossSalary = 0 }, want: ErrInvalidInput},
		{name: "bad work accident rate", mutate: func(in *Input) { in.WorkAccidentRatePercent = 0.6 }, want: ErrInvalidInput},
		{name: "bad seniority rate", mutate: func(in *Input) { in.SeniorityRatePercent = 0.65 }, want: ErrInvalidInput},
		{name: "negative experience", mutate: func(in *Input) { in.YearsExperience = -2 }, want: ErrInvalidInput},
		{name: "unknown bracket", mutate: func(in *Input) { in.Bracket = "ancient" }, want: ErrUnknownBracket},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := septemberInput()
			tc.mutate(&in)
			_, err := Calculate(rules, in, nil)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCalculateSeniorityBonus(t *testing.T) {
	in := septemberInput()
	in.GrossSalary = 2000
	in.SeniorityRatePercent = 0.6
	in.YearsExperience = 10

	b, err := Calculate(DefaultRuleSet(), in, nil)
	require.NoError(t, err)
	assert.InDelta(t, 120, b.SeniorityAmount, delta)
	assert.InDelta(t, 2120, b.GrossWithSeniority, delta)
	assert.InDelta(t, 2120, b.BaseSalaryPart, delta)
}

func TestRuleSetValidate(t *testing.T) {
	require.NoError(t, DefaultRuleSet().Validate())

	rules := DefaultRuleSet()
	rules.Year = 2026
	assert.ErrorIs(t, rules.Validate(), ErrInvalidRuleSet)

	rules = DefaultRuleSet()
	rules.Thresholds.MaxInsurable = 10
	assert.ErrorIs(t, rules.Validate(), ErrInvalidRuleSet)

	rules = DefaultRuleSet()
	rules.Profiles = map[BirthBracket]RateProfile{BracketFromCutoff: rules.Profiles[BracketFromCutoff]}
	assert.ErrorIs(t, rules.Validate(), ErrInvalidRuleSet)

	rules = DefaultRuleSet()
	rules.Calendar = nil
	assert.ErrorIs(t, rules.Validate(), ErrInvalidRuleSet)
}
