// Package recurrence computes occurrence dates for task schedules. Every
// function here is pure: identical inputs always yield identical outputs.
package recurrence

import (
	"time"

	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
)

// NextDate returns the next occurrence date for s given the cursor of the
// last materialized occurrence. It returns None when the schedule is
// exhausted by its end date or cannot be evaluated.
func NextDate(s model.Schedule, cursor mo.Option[time.Time], mode Mode) mo.Option[time.Time] {
	rule, ok := RuleFor(s)
	if !ok {
		return mo.None[time.Time]()
	}
	candidate := rule.First()
	if c, ok := cursor.Get(); ok {
		candidate = rule.Next(model.DateOf(c), mode)
	}
	if end, ok := s.EndDate.Get(); ok && candidate.After(model.DateOf(end)) {
		return mo.None[time.Time]()
	}
	return mo.Some(candidate)
}

// Preview lists up to count upcoming dates after cursor, advancing in
// normal mode. A one-off schedule yields at most its single date.
func Preview(s model.Schedule, cursor mo.Option[time.Time], count int) []time.Time {
	out := make([]time.Time, 0, max(count, 0))
	if s.Kind == model.KindOnce && cursor.IsPresent() {
		return out
	}
	for i := 0; i < count; i++ {
		next, ok := NextDate(s, cursor, Normal).Get()
		if !ok {
			break
		}
		if c, had := cursor.Get(); had && !next.After(c) {
			break
		}
		out = append(out, next)
		cursor = mo.Some(next)
	}
	return out
}
