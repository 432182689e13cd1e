package model

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Weekday numbers days from Monday=0 to Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// DaysIn returns the length of the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func WeekdayName(dow int) string {
	if dow < 0 || dow > 6 {
		return "?"
	}
	return weekdayNames[dow]
}

// ParseWeekday accepts 0..6 or an English day name, full or abbreviated
// to at least three letters.
func ParseWeekday(s string) (int, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if len(raw) == 1 && raw[0] >= '0' && raw[0] <= '6' {
		return int(raw[0] - '0'), nil
	}
	if len(raw) >= 3 {
		for i, name := range weekdayNames {
			if strings.HasPrefix(strings.ToLower(name), raw) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfiguration, s)
}
