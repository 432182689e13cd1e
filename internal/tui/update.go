package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/commands"
	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
	"github.com/sandeepkv93/cadence/internal/views"
)

type agendaLoadedMsg struct {
	items []materializer.AgendaItem
	err   error
}

// actionDoneMsg reports a mutation; the board reloads afterwards.
type actionDoneMsg struct {
	text string
	err  error
}

type previewMsg struct {
	title string
	dates []time.Time
	err   error
}

func (m Model) Init() tea.Cmd {
	return m.loadAgenda()
}

func (m Model) loadAgenda() tea.Cmd {
	status := model.StatusPending
	if m.showAll {
		status = ""
	}
	return func() tea.Msg {
		items, err := m.svc.Agenda(m.ctx, status)
		return agendaLoadedMsg{items: items, err: err}
	}
}

func (m Model) closeCmd(item materializer.AgendaItem, status model.Status) tea.Cmd {
	return func() tea.Msg {
		next, err := m.svc.Close(m.ctx, item.Occurrence.ID, status)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		text := fmt.Sprintf("%s %s: %s", item.TaskTitle, model.FormatDate(item.Occurrence.Date), strings.ToLower(string(status)))
		return actionDoneMsg{text: text + nextSuffix(next)}
	}
}

func (m Model) regenCmd(scheduleID string) tea.Cmd {
	return func() tea.Msg {
		next, err := m.svc.Produce(m.ctx, scheduleID, recurrence.Regenerate)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "regenerated " + short(scheduleID) + nextSuffix(next)}
	}
}

func (m Model) previewCmd(scheduleID, title string, count int) tea.Cmd {
	return func() tea.Msg {
		dates, err := m.svc.Preview(m.ctx, scheduleID, count)
		return previewMsg{title: title, dates: dates, err: err}
	}
}

func (m Model) editCmd(args commands.EditArgs) tea.Cmd {
	return func() tea.Msg {
		s, err := m.svc.UpdateSchedule(m.ctx, args.Schedule, args.Edit)
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{text: "updated " + short(s.ID) + ": " + views.Describe(s)}
	}
}

func nextSuffix(next mo.Option[time.Time]) string {
	if d, ok := next.Get(); ok {
		return ", next " + model.FormatDate(d)
	}
	return ""
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.paletteOpen {
			return m.handlePaletteKey(typed)
		}
		return m.handleKey(typed)
	case tea.WindowSizeMsg:
		m.helpModel.Width = typed.Width
		m.width = typed.Width
		if typed.Height > 12 {
			m.table.SetHeight(typed.Height - 10)
		}
		return m, nil
	case agendaLoadedMsg:
		if typed.err != nil {
			m.Status = errorStatus(typed.err)
			return m, nil
		}
		m.items = typed.items
		m.table.SetRows(rows(typed.items))
		if m.table.Cursor() >= len(m.items) {
			m.table.SetCursor(max(len(m.items)-1, 0))
		}
		if m.Status.Text == "loading" {
			m.Status = StatusBar{Text: fmt.Sprintf("%d occurrences", len(m.items))}
		}
		return m, nil
	case actionDoneMsg:
		if typed.err != nil {
			m.logger.Warn("board action failed", "err", typed.err)
			m.Status = errorStatus(typed.err)
			return m, nil
		}
		m.Status = StatusBar{Text: typed.text}
		return m, m.loadAgenda()
	case previewMsg:
		if typed.err != nil {
			m.Status = errorStatus(typed.err)
			return m, nil
		}
		m.detail = views.RenderPreview(typed.title, typed.dates)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		return m, nil
	case key.Matches(msg, m.keys.Palette):
		m.paletteOpen = true
		m.palette.SetValue("")
		m.palette.Focus()
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadAgenda()
	case key.Matches(msg, m.keys.ShowAll):
		m.showAll = !m.showAll
		return m, m.loadAgenda()
	case key.Matches(msg, m.keys.Done):
		return m.closeSelected(model.StatusDone)
	case key.Matches(msg, m.keys.Cancel):
		return m.closeSelected(model.StatusCancelled)
	case key.Matches(msg, m.keys.Skip):
		return m.closeSelected(model.StatusSkipped)
	case key.Matches(msg, m.keys.Regen):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.regenCmd(item.Occurrence.ScheduleID)
	case key.Matches(msg, m.keys.Preview):
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		return m, m.previewCmd(item.Occurrence.ScheduleID, item.TaskTitle, m.previewCount)
	}
	before := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != before {
		m.detail = ""
	}
	return m, cmd
}

func (m Model) closeSelected(status model.Status) (tea.Model, tea.Cmd) {
	item, ok := m.selected()
	if !ok {
		m.Status = StatusBar{Text: "nothing selected"}
		return m, nil
	}
	if item.Occurrence.Status != model.StatusPending {
		m.Status = StatusBar{Text: "error: occurrence already " + strings.ToLower(string(item.Occurrence.Status)), IsError: true}
		return m, nil
	}
	return m, m.closeCmd(item, status)
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.paletteOpen = false
		m.palette.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		input := m.palette.Value()
		m.paletteOpen = false
		m.palette.Blur()
		return m.runCommand(input)
	}
	var cmd tea.Cmd
	m.palette, cmd = m.palette.Update(msg)
	return m, cmd
}

// runCommand dispatches palette input. Handlers only validate and pick the
// tea.Cmd to run; the service calls happen inside those commands.
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	parsed, err := commands.Parse(input)
	if err != nil {
		m.Status = errorStatus(err)
		return m, nil
	}
	var next tea.Cmd
	_, err = commands.Execute(parsed, commands.Handlers{
		Close: func(a commands.CloseArgs) (commands.Result, error) {
			item, err := m.resolveOccurrence(a.Target)
			if err != nil {
				return commands.Result{}, err
			}
			next = m.closeCmd(item, a.Status)
			return commands.Result{}, nil
		},
		Regen: func(a commands.RegenArgs) (commands.Result, error) {
			next = m.regenCmd(m.resolveSchedule(a.Schedule))
			return commands.Result{}, nil
		},
		Preview: func(a commands.PreviewArgs) (commands.Result, error) {
			count := a.Count
			if count == 0 {
				count = m.previewCount
			}
			id := m.resolveSchedule(a.Schedule)
			next = m.previewCmd(id, short(id), count)
			return commands.Result{}, nil
		},
		Edit: func(a commands.EditArgs) (commands.Result, error) {
			a.Schedule = m.resolveSchedule(a.Schedule)
			next = m.editCmd(a)
			return commands.Result{}, nil
		},
	})
	if err != nil {
		m.Status = errorStatus(err)
		return m, nil
	}
	m.Status = StatusBar{Text: "running " + parsed.Raw}
	return m, next
}

var errAmbiguous = errors.New("ambiguous id prefix")

// resolveOccurrence matches a full id or unique prefix among loaded rows.
func (m Model) resolveOccurrence(target string) (materializer.AgendaItem, error) {
	var found []materializer.AgendaItem
	for _, item := range m.items {
		if item.Occurrence.ID == target {
			return item, nil
		}
		if strings.HasPrefix(item.Occurrence.ID, target) {
			found = append(found, item)
		}
	}
	switch len(found) {
	case 0:
		return materializer.AgendaItem{}, fmt.Errorf("occurrence %q: %w", target, materializer.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return materializer.AgendaItem{}, fmt.Errorf("occurrence %q: %w", target, errAmbiguous)
	}
}

// resolveSchedule expands a unique prefix of a loaded schedule id. Unknown
// ids pass through so the service reports them.
func (m Model) resolveSchedule(target string) string {
	match := ""
	for _, item := range m.items {
		id := item.Occurrence.ScheduleID
		if id == target {
			return id
		}
		if strings.HasPrefix(id, target) {
			if match != "" && match != id {
				return target
			}
			match = id
		}
	}
	if match == "" {
		return target
	}
	return match
}

func rows(items []materializer.AgendaItem) []table.Row {
	out := make([]table.Row, 0, len(items))
	for _, item := range items {
		o := item.Occurrence
		out = append(out, table.Row{
			short(o.ID),
			model.FormatDate(o.Date),
			o.Date.Weekday().String()[:3],
			item.TaskTitle,
			string(item.Kind),
			string(o.Status),
		})
	}
	return out
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func errorStatus(err error) StatusBar {
	if errors.Is(err, materializer.ErrNotFound) {
		return StatusBar{Text: "error: information not found", IsError: true}
	}
	return StatusBar{Text: "error: " + err.Error(), IsError: true}
}
