// Package tui is the interactive occurrence board.
package tui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
)

// Service is the part of the materializer the board drives.
type Service interface {
	Agenda(ctx context.Context, status model.Status) ([]materializer.AgendaItem, error)
	Close(ctx context.Context, occurrenceID string, status model.Status) (mo.Option[time.Time], error)
	Produce(ctx context.Context, scheduleID string, mode recurrence.Mode) (mo.Option[time.Time], error)
	Preview(ctx context.Context, scheduleID string, count int) ([]time.Time, error)
	UpdateSchedule(ctx context.Context, id string, edit materializer.ScheduleEdit) (model.Schedule, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Done    key.Binding
	Cancel  key.Binding
	Skip    key.Binding
	Regen   key.Binding
	Preview key.Binding
	ShowAll key.Binding
	Palette key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
	Submit  key.Binding
	Refresh key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:    key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Done:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "mark done")),
		Cancel:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cancel")),
		Skip:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
		Regen:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "regenerate schedule")),
		Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview schedule")),
		ShowAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle history")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command palette")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Escape:  key.NewBinding(key.WithKeys("esc")),
		Submit:  key.NewBinding(key.WithKeys("enter")),
		Refresh: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "reload")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Done, k.Cancel, k.Skip, k.Regen, k.Palette, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Refresh, k.ShowAll},
		{k.Done, k.Cancel, k.Skip},
		{k.Regen, k.Preview, k.Palette},
		{k.Help, k.Quit},
	}
}

type Model struct {
	ctx          context.Context
	svc          Service
	logger       *slog.Logger
	previewCount int

	keys        keyMap
	table       table.Model
	palette     textinput.Model
	helpModel   help.Model
	items       []materializer.AgendaItem
	showAll     bool
	paletteOpen bool
	helpVisible bool
	detail      string
	width       int
	Status      StatusBar
	Quitting    bool
}

type Option func(*Model)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithPreviewCount(n int) Option {
	return func(m *Model) {
		if n > 0 {
			m.previewCount = n
		}
	}
}

func New(ctx context.Context, svc Service, opts ...Option) Model {
	columns := []table.Column{
		{Title: "ID", Width: 8},
		{Title: "Date", Width: 10},
		{Title: "Day", Width: 3},
		{Title: "Task", Width: 28},
		{Title: "Kind", Width: 14},
		{Title: "Status", Width: 11},
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true), table.WithHeight(14))
	input := textinput.New()
	input.Prompt = ":"
	input.Placeholder = "close <id> done | regen <schedule> | preview <schedule> [n] | edit <schedule> key=value"
	m := Model{
		ctx:          ctx,
		svc:          svc,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		previewCount: 5,
		keys:         defaultKeys(),
		table:        tbl,
		palette:      input,
		helpModel:    help.New(),
		Status:       StatusBar{Text: "loading"},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Items returns the rows currently on the board.
func (m Model) Items() []materializer.AgendaItem {
	return m.items
}

func (m Model) selected() (materializer.AgendaItem, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.items) {
		return materializer.AgendaItem{}, false
	}
	return m.items[i], true
}
