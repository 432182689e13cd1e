package recurrence

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/cadence/internal/model"
)

var ErrInvalidMode = errors.New("recurrence: invalid mode")

// Mode selects how a cursor is advanced.
type Mode string

const (
	// Normal advances from the cursor by one period.
	Normal Mode = "normal"
	// Regenerate recomputes from reconciled history after a schedule edit.
	Regenerate Mode = "regenerate"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Normal, "":
		return Normal, nil
	case Regenerate, "regen":
		return Regenerate, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Rule produces candidate dates for one schedule kind. Candidates ignore the
// end date; NextDate applies it.
type Rule interface {
	First() time.Time
	Next(cursor time.Time, mode Mode) time.Time
}

type onceRule struct {
	start time.Time
}

func (r onceRule) First() time.Time { return r.start }

func (r onceRule) Next(time.Time, Mode) time.Time { return r.start }

// dayRule covers Daily (step 1) and EveryNDays.
type dayRule struct {
	start time.Time
	step  int
}

func (r dayRule) First() time.Time { return r.start }

func (r dayRule) Next(cursor time.Time, _ Mode) time.Time {
	return cursor.AddDate(0, 0, r.step)
}

// weekRule covers Weekly (weeks=1) and EveryNWeeks.
type weekRule struct {
	start time.Time
	dow   int
	weeks int
}

func (r weekRule) First() time.Time {
	return alignWeekday(r.start, r.dow)
}

func (r weekRule) Next(cursor time.Time, mode Mode) time.Time {
	if mode == Regenerate {
		// The weekday may just have changed; realign from confirmed history
		// but never land back on the confirmed date itself.
		aligned := alignWeekday(cursor, r.dow)
		if aligned.After(cursor) {
			return aligned
		}
	}
	return cursor.AddDate(0, 0, 7*r.weeks)
}

// monthRule covers Monthly (months=1) and EveryNMonths.
type monthRule struct {
	start  time.Time
	dom    int
	months int
}

func (r monthRule) First() time.Time { return r.start }

func (r monthRule) Next(cursor time.Time, _ Mode) time.Time {
	return clampMonthDay(addMonths(firstOfMonth(cursor), r.months), r.dom)
}

// RuleFor builds the rule for a schedule. It reports false when the kind is
// unknown or a parameter the kind needs is missing.
func RuleFor(s model.Schedule) (Rule, bool) {
	start := model.DateOf(s.StartDate)
	switch s.Kind {
	case model.KindOnce:
		return onceRule{start: start}, true
	case model.KindDaily:
		return dayRule{start: start, step: 1}, true
	case model.KindEveryNDays:
		n, ok := positive(s.Interval.Get())
		if !ok {
			return nil, false
		}
		return dayRule{start: start, step: n}, true
	case model.KindWeekly, model.KindEveryNWeeks:
		dow, ok := s.DayOfWeek.Get()
		if !ok || dow < 0 || dow > 6 {
			return nil, false
		}
		weeks := 1
		if s.Kind == model.KindEveryNWeeks {
			if weeks, ok = positive(s.Interval.Get()); !ok {
				return nil, false
			}
		}
		return weekRule{start: start, dow: dow, weeks: weeks}, true
	case model.KindMonthly, model.KindEveryNMonths:
		dom, ok := s.DayOfMonth.Get()
		if !ok || dom < 1 || dom > 31 {
			return nil, false
		}
		months := 1
		if s.Kind == model.KindEveryNMonths {
			if months, ok = positive(s.Interval.Get()); !ok {
				return nil, false
			}
		}
		return monthRule{start: start, dom: dom, months: months}, true
	default:
		return nil, false
	}
}

func positive(n int, ok bool) (int, bool) {
	return n, ok && n > 0
}
