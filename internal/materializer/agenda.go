package materializer

import (
	"context"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/storage"
)

// AgendaItem is an occurrence joined with what a board needs to display it.
type AgendaItem struct {
	Occurrence model.Occurrence
	TaskTitle  string
	Kind       model.Kind
}

// Agenda lists occurrences across every schedule ordered by date. An empty
// status returns every occurrence.
func (m *Materializer) Agenda(ctx context.Context, status model.Status) ([]AgendaItem, error) {
	tasks, err := m.store.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	schedules, err := m.store.ListSchedules(ctx, storage.ScheduleListFilter{})
	if err != nil {
		return nil, storageErr("list schedules", err)
	}
	kinds := make(map[string]model.Kind, len(schedules))
	for _, s := range schedules {
		kinds[s.ID] = s.Kind
	}

	occs, err := m.store.ListOccurrences(ctx, storage.OccurrenceListFilter{Status: status})
	if err != nil {
		return nil, storageErr("list occurrences", err)
	}
	out := make([]AgendaItem, 0, len(occs))
	for _, o := range occs {
		out = append(out, AgendaItem{Occurrence: o, TaskTitle: titles[o.TaskID], Kind: kinds[o.ScheduleID]})
	}
	return out, nil
}
