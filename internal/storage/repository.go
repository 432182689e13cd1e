package storage

import (
	"context"
	"errors"
	"time"

	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateTask(ctx context.Context, in model.Task) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error)

	CreateSchedule(ctx context.Context, in model.Schedule) error
	// GetSchedule returns ErrNotFound when no schedule has the id.
	GetSchedule(ctx context.Context, id string) (model.Schedule, error)
	// UpdateSchedule persists the rule fields. Kind, task and cursor are left untouched.
	UpdateSchedule(ctx context.Context, in model.Schedule) error
	UpdateScheduleCursor(ctx context.Context, id string, cursor mo.Option[time.Time]) error
	// DeleteSchedule removes the schedule and, by cascade, its occurrences.
	DeleteSchedule(ctx context.Context, id string) error
	ListSchedules(ctx context.Context, filter ScheduleListFilter) ([]model.Schedule, error)

	CreateOccurrence(ctx context.Context, in model.Occurrence) error
	GetOccurrence(ctx context.Context, id string) (model.Occurrence, error)
	UpdateOccurrenceStatus(ctx context.Context, id string, status model.Status, closedAt *time.Time) error
	ListOccurrences(ctx context.Context, filter OccurrenceListFilter) ([]model.Occurrence, error)
	ListPendingOccurrences(ctx context.Context, scheduleID string) ([]model.Occurrence, error)
	// DeletePendingOccurrences returns the number of rows removed.
	DeletePendingOccurrences(ctx context.Context, scheduleID string) (int64, error)
	// MaxClosedOccurrenceDate is the latest date among non-pending occurrences, or None.
	MaxClosedOccurrenceDate(ctx context.Context, scheduleID string) (mo.Option[time.Time], error)

	// WithTx runs fn against a repository bound to one transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	// Nested calls reuse the outer transaction.
	WithTx(ctx context.Context, fn func(Repository) error) error
}
