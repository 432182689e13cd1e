package materializer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
	"github.com/sandeepkv93/cadence/internal/storage"
)

// ScheduleInput describes a new schedule. Monthly kinds repeat on the start
// date's day; DayOfMonth may restate it but cannot differ.
type ScheduleInput struct {
	TaskID     string
	Kind       model.Kind
	StartDate  time.Time
	EndDate    mo.Option[time.Time]
	DayOfWeek  mo.Option[int]
	DayOfMonth mo.Option[int]
	Interval   mo.Option[int]
}

// ScheduleEdit lists the rule fields to change. Absent fields keep their
// stored value. The kind of a schedule cannot change, and a monthly
// schedule's day follows its start date.
type ScheduleEdit struct {
	StartDate    mo.Option[time.Time]
	EndDate      mo.Option[time.Time]
	ClearEndDate bool
	DayOfWeek    mo.Option[int]
	Interval     mo.Option[int]
}

func (m *Materializer) CreateTask(ctx context.Context, title, description string) (model.Task, error) {
	task := model.Task{
		ID:          m.newID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   m.now().UTC(),
	}
	if err := task.Validate(); err != nil {
		return model.Task{}, err
	}
	if err := m.store.CreateTask(ctx, task); err != nil {
		return model.Task{}, storageErr("create task", err)
	}
	return task, nil
}

func (m *Materializer) Task(ctx context.Context, id string) (model.Task, error) {
	task, err := m.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, storageErr("load task", err)
	}
	return task, nil
}

func (m *Materializer) Tasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := m.store.ListTasks(ctx, storage.TaskListFilter{})
	if err != nil {
		return nil, storageErr("list tasks", err)
	}
	return tasks, nil
}

// CreateSchedule validates and stores a schedule, then materializes its
// first occurrence.
func (m *Materializer) CreateSchedule(ctx context.Context, in ScheduleInput) (model.Schedule, error) {
	s := model.Schedule{
		ID:         m.newID(),
		TaskID:     in.TaskID,
		Kind:       in.Kind,
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		DayOfWeek:  in.DayOfWeek,
		DayOfMonth: in.DayOfMonth,
		Interval:   in.Interval,
		CreatedAt:  m.now().UTC(),
	}.Normalize()
	if err := s.Validate(); err != nil {
		return model.Schedule{}, err
	}
	if dom, ok := s.DayOfMonth.Get(); ok && dom != s.StartDate.Day() {
		return model.Schedule{}, fmt.Errorf("%w: day_of_month %d differs from start date %s", model.ErrInvalidConfiguration, dom, model.FormatDate(s.StartDate))
	}

	err := m.serial.Do(ctx, s.ID, func(ctx context.Context) error {
		return m.inTx(ctx, "create schedule", func(tx Store) error {
			if _, err := tx.GetTask(ctx, s.TaskID); err != nil {
				return storageErr("load task", err)
			}
			if err := tx.CreateSchedule(ctx, s); err != nil {
				return storageErr("create schedule", err)
			}
			_, err := m.produce(ctx, tx, s.ID, recurrence.Normal)
			return err
		})
	})
	if err != nil {
		return model.Schedule{}, err
	}
	m.logger.Info("schedule created", "schedule_id", s.ID, "task_id", s.TaskID, "kind", s.Kind)
	return m.Schedule(ctx, s.ID)
}

// UpdateSchedule applies an edit and, when any rule field changed,
// regenerates pending occurrences from confirmed history.
func (m *Materializer) UpdateSchedule(ctx context.Context, id string, edit ScheduleEdit) (model.Schedule, error) {
	err := m.serial.Do(ctx, id, func(ctx context.Context) error {
		return m.inTx(ctx, "update schedule", func(tx Store) error {
			current, err := tx.GetSchedule(ctx, id)
			if err != nil {
				return storageErr("load schedule", err)
			}
			next, err := applyEdit(current, edit)
			if err != nil {
				return err
			}
			if sameRule(current, next) {
				m.logger.Debug("schedule unchanged", "schedule_id", id)
				return nil
			}
			if err := tx.UpdateSchedule(ctx, next); err != nil {
				return storageErr("update schedule", err)
			}
			_, err = m.produce(ctx, tx, id, recurrence.Regenerate)
			return err
		})
	})
	if err != nil {
		return model.Schedule{}, err
	}
	m.logger.Info("schedule updated", "schedule_id", id)
	return m.Schedule(ctx, id)
}

func applyEdit(s model.Schedule, edit ScheduleEdit) (model.Schedule, error) {
	if v, ok := edit.StartDate.Get(); ok {
		s.StartDate = model.DateOf(v)
		if s.Kind.NeedsDayOfMonth() {
			s.DayOfMonth = mo.Some(s.StartDate.Day())
		}
	}
	if edit.ClearEndDate {
		s.EndDate = mo.None[time.Time]()
	} else if v, ok := edit.EndDate.Get(); ok {
		s.EndDate = mo.Some(v)
	}
	if v, ok := edit.DayOfWeek.Get(); ok {
		if !s.Kind.NeedsDayOfWeek() {
			return s, fmt.Errorf("%w: %s schedule has no day_of_week", model.ErrInvalidConfiguration, s.Kind)
		}
		s.DayOfWeek = mo.Some(v)
	}
	if v, ok := edit.Interval.Get(); ok {
		if !s.Kind.NeedsInterval() {
			return s, fmt.Errorf("%w: %s schedule has no interval", model.ErrInvalidConfiguration, s.Kind)
		}
		s.Interval = mo.Some(v)
	}
	s = s.Normalize()
	return s, s.Validate()
}

func sameRule(a, b model.Schedule) bool {
	return a.StartDate.Equal(b.StartDate) &&
		sameDate(a.EndDate, b.EndDate) &&
		a.DayOfWeek == b.DayOfWeek &&
		a.DayOfMonth == b.DayOfMonth &&
		a.Interval == b.Interval
}

func sameDate(a, b mo.Option[time.Time]) bool {
	av, aok := a.Get()
	bv, bok := b.Get()
	return aok == bok && av.Equal(bv)
}

// DeleteSchedule removes a schedule together with its occurrences.
func (m *Materializer) DeleteSchedule(ctx context.Context, id string) error {
	err := m.serial.Do(ctx, id, func(ctx context.Context) error {
		return storageErr("delete schedule", m.store.DeleteSchedule(ctx, id))
	})
	if err != nil {
		return err
	}
	m.logger.Info("schedule deleted", "schedule_id", id)
	return nil
}

func (m *Materializer) Schedule(ctx context.Context, id string) (model.Schedule, error) {
	s, err := m.store.GetSchedule(ctx, id)
	if err != nil {
		return model.Schedule{}, storageErr("load schedule", err)
	}
	return s, nil
}

// Schedules lists schedules, optionally narrowed to one task.
func (m *Materializer) Schedules(ctx context.Context, taskID string) ([]model.Schedule, error) {
	items, err := m.store.ListSchedules(ctx, storage.ScheduleListFilter{TaskID: taskID})
	if err != nil {
		return nil, storageErr("list schedules", err)
	}
	return items, nil
}

// ListOccurrences returns a schedule's occurrences ordered by date.
func (m *Materializer) ListOccurrences(ctx context.Context, scheduleID string) ([]model.Occurrence, error) {
	if _, err := m.Schedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	items, err := m.store.ListOccurrences(ctx, storage.OccurrenceListFilter{ScheduleID: scheduleID})
	if err != nil {
		return nil, storageErr("list occurrences", err)
	}
	return items, nil
}

// Preview lists up to count upcoming dates: the pending occurrence first,
// then what closing it would produce in turn. Nothing is written.
func (m *Materializer) Preview(ctx context.Context, scheduleID string, count int) ([]time.Time, error) {
	s, err := m.Schedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if count <= 0 {
		return []time.Time{}, nil
	}
	pending, err := m.store.ListPendingOccurrences(ctx, scheduleID)
	if err != nil {
		return nil, storageErr("load pending occurrences", err)
	}
	if len(pending) == 0 {
		return recurrence.Preview(s, s.LastOccurrence, count), nil
	}
	first := pending[0].Date
	if s.Kind == model.KindOnce {
		return []time.Time{first}, nil
	}
	return append([]time.Time{first}, recurrence.Preview(s, mo.Some(first), count-1)...), nil
}
