// Package ics exports schedules and their occurrences as iCalendar data.
package ics

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
)

const ProductID = "-//cadence//recurrence engine//EN"

// Series bundles what one export covers.
type Series struct {
	Task        model.Task
	Schedule    model.Schedule
	Occurrences []model.Occurrence
}

// Build renders every stored occurrence as an all-day VEVENT and, for
// repeating schedules that are not exhausted, one series VEVENT carrying the
// RRULE. The series starts at the first date after the newest stored
// occurrence, so the two never cover the same day.
func Build(series []Series, stamp time.Time) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, item := range series {
		rule, repeats := recurrence.RRule(item.Schedule)
		start, upcoming := SeriesStart(item).Get()
		if repeats && upcoming {
			ev := cal.AddEvent(SeriesUID(item.Schedule.ID))
			ev.SetDtStampTime(stamp)
			ev.SetSummary(item.Task.Title)
			ev.SetDescription(fmt.Sprintf("%s schedule", item.Schedule.Kind))
			ev.SetAllDayStartAt(start)
			ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
			ev.SetProperty(ical.ComponentPropertyTransp, "TRANSPARENT")
			ev.AddRrule(rule)
		}
		for _, occ := range item.Occurrences {
			ev := cal.AddEvent(OccurrenceUID(occ.ID))
			ev.SetDtStampTime(stamp)
			ev.SetSummary(item.Task.Title)
			ev.SetDescription(fmt.Sprintf("status: %s", occ.Status))
			ev.SetAllDayStartAt(occ.Date)
			ev.SetAllDayEndAt(occ.Date.AddDate(0, 0, 1))
			ev.SetProperty(ical.ComponentPropertyStatus, string(eventStatus(occ.Status)))
		}
	}
	return cal
}

// SeriesStart is the date closing the newest stored occurrence would
// produce, or None once the schedule is exhausted.
func SeriesStart(item Series) mo.Option[time.Time] {
	cursor := item.Schedule.LastOccurrence
	for _, occ := range item.Occurrences {
		if c, ok := cursor.Get(); !ok || occ.Date.After(c) {
			cursor = mo.Some(occ.Date)
		}
	}
	return recurrence.NextDate(item.Schedule, cursor, recurrence.Normal)
}

// Write serializes the calendar built from series to w.
func Write(w io.Writer, series []Series, stamp time.Time) error {
	if _, err := io.WriteString(w, Build(series, stamp).Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

func SeriesUID(scheduleID string) string {
	return "series-" + scheduleID + "@cadence"
}

func OccurrenceUID(occurrenceID string) string {
	return occurrenceID + "@cadence"
}

func eventStatus(s model.Status) ical.ObjectStatus {
	switch s {
	case model.StatusCancelled, model.StatusSkipped:
		return ical.ObjectStatusCancelled
	default:
		return ical.ObjectStatusConfirmed
	}
}
