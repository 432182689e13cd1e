package tui

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/views"
)

var paletteUsage = []string{
	"close <occurrence> done|cancelled|skipped",
	"regen <schedule>",
	"preview <schedule> [count]",
	"edit <schedule> start=YYYY-MM-DD end=YYYY-MM-DD|none dow=mon interval=2",
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	header := "cadence: pending occurrences"
	if m.showAll {
		header = "cadence: all occurrences"
	}

	detail := m.detail
	if detail == "" {
		if item, ok := m.selected(); ok {
			detail = fmt.Sprintf("task: %s\nkind: %s\nschedule: %s\noccurrence: %s\nstatus: %s",
				item.TaskTitle, item.Kind, short(item.Occurrence.ScheduleID), item.Occurrence.ID, views.StatusBadge(item.Occurrence.Status))
		} else {
			detail = "(no selection)"
		}
	}

	status := m.Status.Text
	if palette := views.RenderCommandPalette(m.paletteOpen, m.palette.Value()); palette != "" {
		status = palette
	}
	notification := ""
	if m.Status.IsError && !m.paletteOpen {
		notification = views.RenderNotification("error", m.Status.Text)
	}

	footer := m.helpModel.View(m.keys)
	if m.helpVisible {
		footer = views.RenderHelpPanel(paletteUsage, m.helpModel.FullHelpView(m.keys.FullHelp()))
	}

	return views.RenderApp(views.AppData{
		Header:        header,
		Summary:       m.summary(),
		Board:         m.table.View(),
		Detail:        detail,
		StatusLine:    status,
		StatusIsError: m.Status.IsError && !m.paletteOpen,
		Footer:        footer,
		Notification:  notification,
		Width:         m.width,
	})
}

// summary counts loaded rows per status, pending first.
func (m Model) summary() string {
	counts := map[model.Status]int{}
	for _, item := range m.items {
		counts[item.Occurrence.Status]++
	}
	var parts []string
	for _, st := range []model.Status{model.StatusPending, model.StatusDone, model.StatusSkipped, model.StatusCancelled} {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(string(st))))
		}
	}
	return strings.Join(parts, " / ")
}
