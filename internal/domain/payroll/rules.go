package payroll

import (
	"fmt"
	"math"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/calendar"
)

// RateSet holds contribution rates as fractions (0.032 = 3.2%).
type RateSet struct {
	Pension      float64 `json:"pension" mapstructure:"pension"`
	OZM          float64 `json:"ozm" mapstructure:"ozm"`
	Unemployment float64 `json:"unemployment" mapstructure:"unemployment"`
	DZPO         float64 `json:"dzpo" mapstructure:"dzpo"`
	Health       float64 `json:"health" mapstructure:"health"`
}

func (r RateSet) apply(base float64) ContributionLines {
	return ContributionLines{
		Pension:      base * r.Pension,
		OZM:          base * r.OZM,
		Unemployment: base * r.Unemployment,
		DZPO:         base * r.DZPO,
		Health:       base * r.Health,
	}
}

func (r RateSet) validate() error {
	for name, v := range map[string]float64{
		"pension": r.Pension, "ozm": r.OZM, "unemployment": r.Unemployment, "dzpo": r.DZPO, "health": r.Health,
	} {
		if v < 0 || v >= 1 {
			return fmt.Errorf("%w: %s rate %v out of range", ErrInvalidRuleSet, name, v)
		}
	}
	return nil
}

type RateProfile struct {
	Employee RateSet `json:"employee" mapstructure:"employee"`
	Employer RateSet `json:"employer" mapstructure:"employer"`
}

type InsuranceThresholds struct {
	MinInsurable float64 `json:"minInsurable" mapstructure:"min_insurable"`
	MaxInsurable float64 `json:"maxInsurable" mapstructure:"max_insurable"`
}

func (t InsuranceThresholds) clamp(v float64) float64 {
	return math.Max(math.Min(v, t.MaxInsurable), t.MinInsurable)
}

// RuleSet is the injected tax and social-security configuration for one effective year.
// Treat it as read-only after construction; copies share the profile map.
type RuleSet struct {
	Year       int                          `json:"year"`
	Calendar   *calendar.Calendar           `json:"-"`
	Thresholds InsuranceThresholds          `json:"thresholds"`
	Profiles   map[BirthBracket]RateProfile `json:"profiles"`

	// BirthYearCutoff splits the brackets: born before it -> BracketBeforeCutoff.
	BirthYearCutoff int `json:"birthYearCutoff"`

	FlatTaxRate                float64 `json:"flatTaxRate"`
	SickPayRatio               float64 `json:"sickPayRatio"`
	EmployerSickDaysPerEpisode int     `json:"employerSickDaysPerEpisode"`
	StateSickHealthRate        float64 `json:"stateSickHealthRate"`
	UnpaidHealthRate           float64 `json:"unpaidHealthRate"`
	UnpaidHealthBaseFactor     float64 `json:"unpaidHealthBaseFactor"`
	DisabilityExemption        float64 `json:"disabilityExemption"`
	MinDaysWorkedForLeaveBase  int     `json:"minDaysWorkedForLeaveBase"`

	// Allowed option lists, in percent. Empty means any non-negative value.
	WorkAccidentRates []float64 `json:"workAccidentRates"`
	SeniorityRates    []float64 `json:"seniorityRates"`

	// RoundUnpaidHealthLevy rounds the unpaid-leave health levy to cents before it is
	// reused in the employee total, employer cost and taxable income.
	RoundUnpaidHealthLevy bool `json:"roundUnpaidHealthLevy"`
}

// DefaultRuleSet is the 2025 Bulgarian rule set.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Year:     2025,
		Calendar: calendar.Bulgaria2025(),
		Thresholds: InsuranceThresholds{
			MinInsurable: 1077,
			MaxInsurable: 4130,
		},
		Profiles: map[BirthBracket]RateProfile{
			BracketBeforeCutoff: {
				Employee: RateSet{Pension: 0.0878, OZM: 0.014, Unemployment: 0.004, DZPO: 0, Health: 0.032},
				Employer: RateSet{Pension: 0.1102, OZM: 0.021, Unemployment: 0.006, DZPO: 0, Health: 0.048},
			},
			BracketFromCutoff: {
				Employee: RateSet{Pension: 0.0658, OZM: 0.014, Unemployment: 0.004, DZPO: 0.022, Health: 0.032},
				Employer: RateSet{Pension: 0.0822, OZM: 0.021, Unemployment: 0.006, DZPO: 0.028, Health: 0.048},
			},
		},
		BirthYearCutoff:            1960,
		FlatTaxRate:                0.10,
		SickPayRatio:               0.70,
		EmployerSickDaysPerEpisode: 2,
		StateSickHealthRate:        0.048,
		UnpaidHealthRate:           0.08,
		UnpaidHealthBaseFactor:     0.5,
		DisabilityExemption:        660,
		MinDaysWorkedForLeaveBase:  10,
		WorkAccidentRates:          []float64{0.4, 0.5, 0.7, 0.9, 1.1},
		SeniorityRates:             []float64{0.6, 0.7, 0.8, 0.9, 1.0},
		RoundUnpaidHealthLevy:      true,
	}
}

func (r RuleSet) Validate() error {
	if r.Calendar == nil {
		return fmt.Errorf("%w: calendar is required", ErrInvalidRuleSet)
	}
	if r.Calendar.Year() != r.Year {
		return fmt.Errorf("%w: calendar year %d does not match rule year %d", ErrInvalidRuleSet, r.Calendar.Year(), r.Year)
	}
	if r.Thresholds.MinInsurable <= 0 || r.Thresholds.MaxInsurable < r.Thresholds.MinInsurable {
		return fmt.Errorf("%w: insurable income range [%v, %v]", ErrInvalidRuleSet, r.Thresholds.MinInsurable, r.Thresholds.MaxInsurable)
	}
	for _, bracket := range []BirthBracket{BracketBeforeCutoff, BracketFromCutoff} {
		profile, ok := r.Profiles[bracket]
		if !ok {
			return fmt.Errorf("%w: missing %s profile", ErrInvalidRuleSet, bracket)
		}
		if err := profile.Employee.validate(); err != nil {
			return err
		}
		if err := profile.Employer.validate(); err != nil {
			return err
		}
	}
	if r.FlatTaxRate < 0 || r.FlatTaxRate >= 1 {
		return fmt.Errorf("%w: flat tax rate %v", ErrInvalidRuleSet, r.FlatTaxRate)
	}
	if r.SickPayRatio < 0 || r.SickPayRatio > 1 {
		return fmt.Errorf("%w: sick pay ratio %v", ErrInvalidRuleSet, r.SickPayRatio)
	}
	if r.EmployerSickDaysPerEpisode < 0 || r.MinDaysWorkedForLeaveBase < 0 {
		return fmt.Errorf("%w: negative day thresholds", ErrInvalidRuleSet)
	}
	if r.StateSickHealthRate < 0 || r.UnpaidHealthRate < 0 || r.UnpaidHealthBaseFactor < 0 || r.DisabilityExemption < 0 {
		return fmt.Errorf("%w: negative surcharge settings", ErrInvalidRuleSet)
	}
	return nil
}

func (r RuleSet) Profile(bracket BirthBracket) (RateProfile, error) {
	profile, ok := r.Profiles[bracket]
	if !ok {
		return RateProfile{}, fmt.Errorf("%w: %q", ErrUnknownBracket, bracket)
	}
	return profile, nil
}

func (r RuleSet) BracketForBirthYear(year int) BirthBracket {
	if year < r.BirthYearCutoff {
		return BracketBeforeCutoff
	}
	return BracketFromCutoff
}

func (r RuleSet) workAccidentAllowed(percent float64) bool {
	return optionAllowed(r.WorkAccidentRates, percent)
}

func (r RuleSet) seniorityAllowed(percent float64) bool {
	return optionAllowed(r.SeniorityRates, percent)
}

func optionAllowed(options []float64, v float64) bool {
	if v < 0 {
		return false
	}
	if len(options) == 0 {
		return true
	}
	for _, option := range options {
		if math.Abs(option-v) < 1e-9 {
			return true
		}
	}
	return false
}
