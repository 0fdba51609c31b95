// Package calendar holds the per-month official working-day table for one payroll year.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownMonth  = errors.New("unknown month")
	ErrInvalidTable  = errors.New("invalid working-day table")
	ErrDuplicateName = errors.New("duplicate month name")
)

type Month struct {
	Name        string `json:"name" mapstructure:"name"`
	WorkingDays int    `json:"workingDays" mapstructure:"working_days"`
}

// Calendar is immutable once built. The declared month order drives the lookback scan,
// so it is kept as a slice and never derived from map iteration.
type Calendar struct {
	year   int
	months []Month
	index  map[string]int
}

func New(year int, months []Month) (*Calendar, error) {
	if len(months) == 0 {
		return nil, fmt.Errorf("%w: no months configured", ErrInvalidTable)
	}
	c := &Calendar{
		year:   year,
		months: make([]Month, 0, len(months)),
		index:  make(map[string]int, len(months)),
	}
	for _, m := range months {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty month name", ErrInvalidTable)
		}
		if m.WorkingDays <= 0 {
			return nil, fmt.Errorf("%w: %s has %d working days", ErrInvalidTable, name, m.WorkingDays)
		}
		key := strings.ToLower(name)
		if _, exists := c.index[key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateName, name)
		}
		c.index[key] = len(c.months)
		c.months = append(c.months, Month{Name: name, WorkingDays: m.WorkingDays})
	}
	return c, nil
}

// Bulgaria2025 returns the official working days for 2025 in Bulgaria.
func Bulgaria2025() *Calendar {
	c, err := New(2025, []Month{
		{Name: "Януари", WorkingDays: 22},
		{Name: "Февруари", WorkingDays: 20},
		{Name: "Март", WorkingDays: 20},
		{Name: "Април", WorkingDays: 20},
		{Name: "Май", WorkingDays: 19},
		{Name: "Юни", WorkingDays: 21},
		{Name: "Юли", WorkingDays: 23},
		{Name: "Август", WorkingDays: 21},
		{Name: "Септември", WorkingDays: 20},
		{Name: "Октомври", WorkingDays: 23},
		{Name: "Ноември", WorkingDays: 20},
		{Name: "Декември", WorkingDays: 20},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Calendar) Year() int {
	return c.year
}

// Normalize maps a month name (any case) or its 1-based ordinal to the configured name.
func (c *Calendar) Normalize(month string) (string, error) {
	month = strings.TrimSpace(month)
	if idx, ok := c.index[strings.ToLower(month)]; ok {
		return c.months[idx].Name, nil
	}
	if n, err := strconv.Atoi(month); err == nil && n >= 1 && n <= len(c.months) {
		return c.months[n-1].Name, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMonth, month)
}

func (c *Calendar) WorkingDays(month string) (int, error) {
	idx, err := c.position(month)
	if err != nil {
		return 0, err
	}
	return c.months[idx].WorkingDays, nil
}

func (c *Calendar) MonthsInOrder() []string {
	names := make([]string, len(c.months))
	for i, m := range c.months {
		names[i] = m.Name
	}
	return names
}

// Months returns a copy of the table in declared order.
func (c *Calendar) Months() []Month {
	out := make([]Month, len(c.months))
	copy(out, c.months)
	return out
}

// MonthsBefore lists the months strictly before month, nearest first.
func (c *Calendar) MonthsBefore(month string) ([]string, error) {
	idx, err := c.position(month)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, idx)
	for i := idx - 1; i >= 0; i-- {
		out = append(out, c.months[i].Name)
	}
	return out, nil
}

// Ordinal is the 1-based position of month, or 0 when it is not configured.
func (c *Calendar) Ordinal(month string) int {
	idx, err := c.position(month)
	if err != nil {
		return 0
	}
	return idx + 1
}

func (c *Calendar) position(month string) (int, error) {
	name, err := c.Normalize(month)
	if err != nil {
		return 0, err
	}
	return c.index[strings.ToLower(name)], nil
}
