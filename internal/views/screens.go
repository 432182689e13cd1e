package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/cadence/internal/model"
)

// Describe phrases a schedule's rule for people.
func Describe(s model.Schedule) string {
	every := s.Every()
	var b strings.Builder
	switch s.Kind {
	case model.KindOnce:
		b.WriteString("once on " + model.FormatDate(s.StartDate))
	case model.KindDaily:
		b.WriteString("every day")
	case model.KindEveryNDays:
		fmt.Fprintf(&b, "every %d days", every)
	case model.KindWeekly, model.KindEveryNWeeks:
		if every == 1 {
			b.WriteString("every week")
		} else {
			fmt.Fprintf(&b, "every %d weeks", every)
		}
		fmt.Fprintf(&b, " on %s", model.WeekdayName(s.DayOfWeek.OrElse(-1)))
	case model.KindMonthly, model.KindEveryNMonths:
		if every == 1 {
			b.WriteString("every month")
		} else {
			fmt.Fprintf(&b, "every %d months", every)
		}
		dom := s.DayOfMonth.OrElse(0)
		fmt.Fprintf(&b, " on day %d", dom)
		if dom > 28 {
			b.WriteString(" (or the month's last day)")
		}
	default:
		b.WriteString(string(s.Kind))
	}
	if s.Kind != model.KindOnce {
		b.WriteString(" from " + model.FormatDate(s.StartDate))
	}
	if end, ok := s.EndDate.Get(); ok {
		b.WriteString(" until " + model.FormatDate(end))
	}
	return b.String()
}

type ScheduleSummaryData struct {
	Task     model.Task
	Schedule model.Schedule
	RRule    string
	Upcoming []time.Time
	History  []model.Occurrence
}

// ScheduleSummaryMarkdown is rendered through RenderMarkdown by the CLI and
// the board's detail pane.
func ScheduleSummaryMarkdown(data ScheduleSummaryData) string {
	s := data.Schedule
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", data.Task.Title)
	fmt.Fprintf(&b, "*%s*\n\n", Describe(s))
	fmt.Fprintf(&b, "- schedule: `%s`\n", s.ID)
	fmt.Fprintf(&b, "- kind: %s\n", s.Kind)
	if c, ok := s.LastOccurrence.Get(); ok {
		fmt.Fprintf(&b, "- last materialized: %s\n", model.FormatDate(c))
	} else {
		b.WriteString("- last materialized: none\n")
	}
	if data.RRule != "" {
		fmt.Fprintf(&b, "- rrule: `%s`\n", data.RRule)
	}
	b.WriteString("\n## Upcoming\n\n")
	if len(data.Upcoming) == 0 {
		b.WriteString("Nothing left to schedule.\n")
	}
	for _, d := range data.Upcoming {
		fmt.Fprintf(&b, "- %s %s\n", model.FormatDate(d), d.Weekday().String()[:3])
	}
	if len(data.History) > 0 {
		b.WriteString("\n## History\n\n")
		for _, o := range data.History {
			fmt.Fprintf(&b, "- %s %s\n", model.FormatDate(o.Date), StatusBadge(o.Status))
		}
	}
	return b.String()
}

func StatusBadge(s model.Status) string {
	switch s {
	case model.StatusPending:
		return "[PENDING]"
	case model.StatusDone:
		return "[DONE]"
	case model.StatusCancelled:
		return "[CANCELLED]"
	case model.StatusSkipped:
		return "[SKIPPED]"
	default:
		return "[" + strings.ToUpper(string(s)) + "]"
	}
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: :%s", input)
}

func RenderNotification(level string, body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(level), body)
}

func RenderHelpPanel(bindings []string, helpView string) string {
	return fmt.Sprintf("help:\n%s\n%s", strings.Join(bindings, "\n"), helpView)
}

func RenderPreview(title string, dates []time.Time) string {
	var b strings.Builder
	b.WriteString("preview: " + title + "\n")
	if len(dates) == 0 {
		b.WriteString("(exhausted)")
		return b.String()
	}
	for _, d := range dates {
		b.WriteString("- " + model.FormatDate(d) + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
