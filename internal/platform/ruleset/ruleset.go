package ruleset

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/calendar"
	"github.com/Boyan92/SalaryCalculatorNew/internal/domain/payroll"
)

// EnvPrefix scopes scalar overrides, e.g. RULES_FLAT_TAX_RATE=0.12.
const EnvPrefix = "RULES"

type document struct {
	Year                       int                            `mapstructure:"year"`
	Calendar                   []calendar.Month               `mapstructure:"calendar"`
	Thresholds                 payroll.InsuranceThresholds    `mapstructure:"thresholds"`
	Profiles                   map[string]payroll.RateProfile `mapstructure:"profiles"`
	BirthYearCutoff            int                            `mapstructure:"birth_year_cutoff"`
	FlatTaxRate                float64                        `mapstructure:"flat_tax_rate"`
	SickPayRatio               float64                        `mapstructure:"sick_pay_ratio"`
	EmployerSickDaysPerEpisode int                            `mapstructure:"employer_sick_days_per_episode"`
	StateSickHealthRate        float64                        `mapstructure:"state_sick_health_rate"`
	UnpaidHealthRate           float64                        `mapstructure:"unpaid_health_rate"`
	UnpaidHealthBaseFactor     float64                        `mapstructure:"unpaid_health_base_factor"`
	DisabilityExemption        float64                        `mapstructure:"disability_exemption"`
	MinDaysWorkedForLeaveBase  int                            `mapstructure:"min_days_worked_for_leave_base"`
	WorkAccidentRates          []float64                      `mapstructure:"work_accident_rates"`
	SeniorityRates             []float64                      `mapstructure:"seniority_rates"`
	RoundUnpaidHealthLevy      bool                           `mapstructure:"round_unpaid_health_levy"`
}

// Load returns the 2025 defaults overlaid with the optional rules file (YAML, JSON or TOML,
// chosen by extension) and RULES_* environment variables. A profile given in the file
// replaces the whole bracket; a calendar given in the file replaces the whole table.
func Load(path string) (payroll.RuleSet, error) {
	defaults := payroll.DefaultRuleSet()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range map[string]any{
		"year":                           defaults.Year,
		"birth_year_cutoff":              defaults.BirthYearCutoff,
		"flat_tax_rate":                  defaults.FlatTaxRate,
		"sick_pay_ratio":                 defaults.SickPayRatio,
		"employer_sick_days_per_episode": defaults.EmployerSickDaysPerEpisode,
		"state_sick_health_rate":         defaults.StateSickHealthRate,
		"unpaid_health_rate":             defaults.UnpaidHealthRate,
		"unpaid_health_base_factor":      defaults.UnpaidHealthBaseFactor,
		"disability_exemption":           defaults.DisabilityExemption,
		"min_days_worked_for_leave_base": defaults.MinDaysWorkedForLeaveBase,
		"round_unpaid_health_levy":       defaults.RoundUnpaidHealthLevy,
		"thresholds.min_insurable":       defaults.Thresholds.MinInsurable,
		"thresholds.max_insurable":       defaults.Thresholds.MaxInsurable,
		"work_accident_rates":            defaults.WorkAccidentRates,
		"seniority_rates":                defaults.SeniorityRates,
	} {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return payroll.RuleSet{}, fmt.Errorf("read rules file %s: %w", path, err)
		}
	}

	doc := document{Profiles: map[string]payroll.RateProfile{}}
	for bracket, profile := range defaults.Profiles {
		doc.Profiles[string(bracket)] = profile
	}
	if err := v.Unmarshal(&doc); err != nil {
		return payroll.RuleSet{}, fmt.Errorf("decode rules: %w", err)
	}

	rules := payroll.RuleSet{
		Year:                       doc.Year,
		Calendar:                   defaults.Calendar,
		Thresholds:                 doc.Thresholds,
		Profiles:                   make(map[payroll.BirthBracket]payroll.RateProfile, len(doc.Profiles)),
		BirthYearCutoff:            doc.BirthYearCutoff,
		FlatTaxRate:                doc.FlatTaxRate,
		SickPayRatio:               doc.SickPayRatio,
		EmployerSickDaysPerEpisode: doc.EmployerSickDaysPerEpisode,
		StateSickHealthRate:        doc.StateSickHealthRate,
		UnpaidHealthRate:           doc.UnpaidHealthRate,
		UnpaidHealthBaseFactor:     doc.UnpaidHealthBaseFactor,
		DisabilityExemption:        doc.DisabilityExemption,
		MinDaysWorkedForLeaveBase:  doc.MinDaysWorkedForLeaveBase,
		WorkAccidentRates:          doc.WorkAccidentRates,
		SeniorityRates:             doc.SeniorityRates,
		RoundUnpaidHealthLevy:      doc.RoundUnpaidHealthLevy,
	}
	for bracket, profile := range doc.Profiles {
		rules.Profiles[payroll.BirthBracket(bracket)] = profile
	}
	if len(doc.Calendar) > 0 {
		cal, err := calendar.New(doc.Year, doc.Calendar)
		if err != nil {
			return payroll.RuleSet{}, fmt.Errorf("%w: %v", payroll.ErrInvalidRuleSet, err)
		}
		rules.Calendar = cal
	}

	if err := rules.Validate(); err != nil {
		return payroll.RuleSet{}, err
	}
	return rules, nil
}
