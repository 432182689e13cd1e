package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
)

var (
	ErrInvalidConfiguration = errors.New("model: invalid schedule configuration")
	ErrInvalidKind          = fmt.Errorf("%w: unknown kind", ErrInvalidConfiguration)
)

type Kind string

const (
	KindOnce         Kind = "once"
	KindDaily        Kind = "daily"
	KindWeekly       Kind = "weekly"
	KindMonthly      Kind = "monthly"
	KindEveryNDays   Kind = "every_n_days"
	KindEveryNWeeks  Kind = "every_n_weeks"
	KindEveryNMonths Kind = "every_n_months"
)

var Kinds = []Kind{KindOnce, KindDaily, KindWeekly, KindMonthly, KindEveryNDays, KindEveryNWeeks, KindEveryNMonths}

func (k Kind) IsValid() bool {
	switch k {
	case KindOnce, KindDaily, KindWeekly, KindMonthly, KindEveryNDays, KindEveryNWeeks, KindEveryNMonths:
		return true
	default:
		return false
	}
}

func (k Kind) NeedsDayOfWeek() bool {
	return k == KindWeekly || k == KindEveryNWeeks
}

func (k Kind) NeedsDayOfMonth() bool {
	return k == KindMonthly || k == KindEveryNMonths
}

func (k Kind) NeedsInterval() bool {
	return k == KindEveryNDays || k == KindEveryNWeeks || k == KindEveryNMonths
}

// ParseKind accepts the canonical names plus dashed and upper-case spellings.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Schedule is a recurrence rule attached to a task plus the cursor of the
// most recently materialized occurrence.
type Schedule struct {
	ID             string
	TaskID         string
	Kind           Kind
	StartDate      time.Time
	EndDate        mo.Option[time.Time]
	LastOccurrence mo.Option[time.Time]
	DayOfWeek      mo.Option[int]
	DayOfMonth     mo.Option[int]
	Interval       mo.Option[int]
	CreatedAt      time.Time
}

func (s Schedule) Validate() error {
	if strings.TrimSpace(s.TaskID) == "" {
		return fmt.Errorf("%w: task_id is required", ErrInvalidConfiguration)
	}
	if !s.Kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, s.Kind)
	}
	if s.StartDate.IsZero() {
		return fmt.Errorf("%w: start_date is required", ErrInvalidConfiguration)
	}
	if end, ok := s.EndDate.Get(); ok && end.Before(s.StartDate) {
		return fmt.Errorf("%w: end_date %s is before start_date %s", ErrInvalidConfiguration, FormatDate(end), FormatDate(s.StartDate))
	}
	if s.Kind.NeedsDayOfWeek() {
		dow, ok := s.DayOfWeek.Get()
		if !ok {
			return fmt.Errorf("%w: %s schedule requires day_of_week", ErrInvalidConfiguration, s.Kind)
		}
		if dow < 0 || dow > 6 {
			return fmt.Errorf("%w: day_of_week %d out of range 0..6", ErrInvalidConfiguration, dow)
		}
	}
	if s.Kind.NeedsDayOfMonth() {
		dom, ok := s.DayOfMonth.Get()
		if !ok {
			return fmt.Errorf("%w: %s schedule requires day_of_month", ErrInvalidConfiguration, s.Kind)
		}
		if dom < 1 || dom > 31 {
			return fmt.Errorf("%w: day_of_month %d out of range 1..31", ErrInvalidConfiguration, dom)
		}
	}
	if s.Kind.NeedsInterval() {
		n, ok := s.Interval.Get()
		if !ok {
			return fmt.Errorf("%w: %s schedule requires interval", ErrInvalidConfiguration, s.Kind)
		}
		if n <= 0 {
			return fmt.Errorf("%w: interval must be positive, got %d", ErrInvalidConfiguration, n)
		}
	}
	return nil
}

// Normalize truncates dates, derives the monthly target day from the start
// date when missing, and drops parameters the kind does not use.
func (s Schedule) Normalize() Schedule {
	s.StartDate = DateOf(s.StartDate)
	s.EndDate = truncateOption(s.EndDate)
	s.LastOccurrence = truncateOption(s.LastOccurrence)
	if s.Kind.NeedsDayOfMonth() && s.DayOfMonth.IsAbsent() && !s.StartDate.IsZero() {
		s.DayOfMonth = mo.Some(s.StartDate.Day())
	}
	if !s.Kind.NeedsDayOfWeek() {
		s.DayOfWeek = mo.None[int]()
	}
	if !s.Kind.NeedsDayOfMonth() {
		s.DayOfMonth = mo.None[int]()
	}
	if !s.Kind.NeedsInterval() {
		s.Interval = mo.None[int]()
	}
	return s
}

func truncateOption(o mo.Option[time.Time]) mo.Option[time.Time] {
	v, ok := o.Get()
	if !ok {
		return mo.None[time.Time]()
	}
	return mo.Some(DateOf(v))
}

// Every returns the interval, or 1 for kinds without one.
func (s Schedule) Every() int {
	return s.Interval.OrElse(1)
}
