package model

import (
	"errors"
	"testing"
	"time"

	"github.com/samber/mo"
)

func TestScheduleValidateRequiredParameters(t *testing.T) {
	start := NewDate(2026, time.June, 1)
	cases := []struct {
		name string
		in   Schedule
	}{
		{"weekly without weekday", Schedule{TaskID: "t", Kind: KindWeekly, StartDate: start}},
		{"every n weeks without weekday", Schedule{TaskID: "t", Kind: KindEveryNWeeks, StartDate: start, Interval: mo.Some(2)}},
		{"every n weeks without interval", Schedule{TaskID: "t", Kind: KindEveryNWeeks, StartDate: start, DayOfWeek: mo.Some(1)}},
		{"monthly without day of month", Schedule{TaskID: "t", Kind: KindMonthly, StartDate: start}},
		{"every n days without interval", Schedule{TaskID: "t", Kind: KindEveryNDays, StartDate: start}},
		{"every n months zero interval", Schedule{TaskID: "t", Kind: KindEveryNMonths, StartDate: start, DayOfMonth: mo.Some(1), Interval: mo.Some(0)}},
		{"weekday out of range", Schedule{TaskID: "t", Kind: KindWeekly, StartDate: start, DayOfWeek: mo.Some(7)}},
		{"day of month out of range", Schedule{TaskID: "t", Kind: KindMonthly, StartDate: start, DayOfMonth: mo.Some(32)}},
		{"end before start", Schedule{TaskID: "t", Kind: KindDaily, StartDate: start, EndDate: mo.Some(start.AddDate(0, 0, -1))}},
		{"unknown kind", Schedule{TaskID: "t", Kind: Kind("yearly"), StartDate: start}},
		{"missing start", Schedule{TaskID: "t", Kind: KindDaily}},
		{"missing task", Schedule{Kind: KindDaily, StartDate: start}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}
}

func TestScheduleValidateSuccess(t *testing.T) {
	start := NewDate(2026, time.June, 1)
	s := Schedule{
		TaskID:     "t",
		Kind:       KindEveryNMonths,
		StartDate:  start,
		EndDate:    mo.Some(start),
		DayOfMonth: mo.Some(31),
		Interval:   mo.Some(3),
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid schedule, got %v", err)
	}
}

func TestScheduleNormalizeDerivesDayOfMonth(t *testing.T) {
	s := Schedule{
		TaskID:    "t",
		Kind:      KindMonthly,
		StartDate: time.Date(2026, 1, 31, 15, 30, 0, 0, time.UTC),
		DayOfWeek: mo.Some(3),
		Interval:  mo.Some(4),
	}.Normalize()

	if got := s.DayOfMonth.OrElse(0); got != 31 {
		t.Fatalf("expected day_of_month 31, got %d", got)
	}
	if s.DayOfWeek.IsPresent() || s.Interval.IsPresent() {
		t.Fatalf("expected unused parameters to be dropped: %+v", s)
	}
	if !s.StartDate.Equal(NewDate(2026, 1, 31)) {
		t.Fatalf("expected start date truncated, got %s", s.StartDate)
	}
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Every-N-Weeks")
	if err != nil || k != KindEveryNWeeks {
		t.Fatalf("unexpected parse result: %q %v", k, err)
	}
	if _, err := ParseKind("fortnightly"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
}

func TestWeekdayMondayIsZero(t *testing.T) {
	if got := Weekday(NewDate(2026, time.June, 1)); got != 0 {
		t.Fatalf("2026-06-01 is a Monday, got weekday %d", got)
	}
	if got := Weekday(NewDate(2026, time.June, 7)); got != 6 {
		t.Fatalf("2026-06-07 is a Sunday, got weekday %d", got)
	}
}

func TestDaysIn(t *testing.T) {
	cases := map[time.Month]int{time.February: 28, time.April: 30, time.May: 31}
	for month, want := range cases {
		if got := DaysIn(2026, month); got != want {
			t.Fatalf("DaysIn(2026, %s) = %d, want %d", month, got, want)
		}
	}
	if got := DaysIn(2028, time.February); got != 29 {
		t.Fatalf("expected leap february, got %d", got)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]int{"0": 0, "6": 6, "mon": 0, "Wednesday": 2, "thu": 3, " SUN ": 6}
	for in, want := range cases {
		got, err := ParseWeekday(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"7", "mo", "funday", ""} {
		if _, err := ParseWeekday(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}
