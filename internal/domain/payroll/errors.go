package payroll

import "errors"

var (
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDayCounts = errors.New("invalid day counts")
	ErrUnknownBracket   = errors.New("unknown birth-year bracket")
	ErrInvalidInput     = errors.New("invalid payroll input")
	ErrRecordNotFound   = errors.New("salary record not found")
	ErrInvalidRuleSet   = errors.New("invalid rule set")
)
