package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/sandeepkv93/cadence/internal/model"
)

var rruleWeekdays = [7]rrule.Weekday{rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA, rrule.SU}

// Options expresses a repeating schedule as RFC 5545 recurrence options,
// anchored on its first occurrence. One-off schedules report false.
//
// Month-end clamping maps to BYMONTHDAY=d,-1;BYSETPOS=1: the earlier of the
// target day and the month's last day.
func Options(s model.Schedule) (rrule.ROption, bool) {
	rule, ok := RuleFor(s)
	if !ok || s.Kind == model.KindOnce {
		return rrule.ROption{}, false
	}
	opt := rrule.ROption{
		Dtstart:  rule.First(),
		Interval: s.Every(),
	}
	if end, ok := s.EndDate.Get(); ok {
		opt.Until = model.DateOf(end)
	}
	switch s.Kind {
	case model.KindDaily, model.KindEveryNDays:
		opt.Freq = rrule.DAILY
	case model.KindWeekly, model.KindEveryNWeeks:
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{rruleWeekdays[s.DayOfWeek.MustGet()]}
	case model.KindMonthly, model.KindEveryNMonths:
		opt.Freq = rrule.MONTHLY
		dom := s.DayOfMonth.MustGet()
		if dom > 28 {
			opt.Bymonthday = []int{dom, -1}
			opt.Bysetpos = []int{1}
		} else {
			opt.Bymonthday = []int{dom}
		}
	}
	return opt, true
}

// RRule renders the RRULE value (without DTSTART) for a repeating schedule.
func RRule(s model.Schedule) (string, bool) {
	opt, ok := Options(s)
	if !ok {
		return "", false
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return "", false
	}
	body := opt
	body.Dtstart = time.Time{}
	return body.String(), true
}
