package recurrence

import (
	"time"

	"github.com/sandeepkv93/cadence/internal/model"
)

// alignWeekday returns the first date on or after from whose weekday is dow
// (Monday=0). It never moves backward and lands at most six days ahead.
func alignWeekday(from time.Time, dow int) time.Time {
	delta := dow - model.Weekday(from)
	if delta < 0 {
		delta += 7
	}
	return from.AddDate(0, 0, delta)
}

func firstOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return model.NewDate(y, m, 1)
}

// addMonths steps a first-of-month date forward n months.
func addMonths(first time.Time, n int) time.Time {
	return first.AddDate(0, n, 0)
}

// clampMonthDay places dom inside the month starting at first, falling back
// to the month's last day when the month is shorter.
func clampMonthDay(first time.Time, dom int) time.Time {
	days := model.DaysIn(first.Year(), first.Month())
	return first.AddDate(0, 0, min(dom, days)-1)
}
