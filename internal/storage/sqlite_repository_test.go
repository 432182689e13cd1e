package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cadence-test.db")
	db, err := sql.Open("sqlite3", DSN(dbPath))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func parseRFC3339(t *testing.T, value string) time.Time {
	t.Helper()
	out, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}
	return out
}

func seedTask(t *testing.T, repo *SQLiteRepository, id string) model.Task {
	t.Helper()
	task := model.Task{ID: id, Title: "Task " + id, CreatedAt: parseRFC3339(t, "2026-02-09T12:00:00Z")}
	if err := repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	return task
}

func seedSchedule(t *testing.T, repo *SQLiteRepository, id, taskID string) model.Schedule {
	t.Helper()
	s := model.Schedule{
		ID:        id,
		TaskID:    taskID,
		Kind:      model.KindEveryNWeeks,
		StartDate: model.NewDate(2026, 6, 1),
		DayOfWeek: mo.Some(2),
		Interval:  mo.Some(2),
		CreatedAt: parseRFC3339(t, "2026-02-09T12:00:00Z"),
	}
	if err := repo.CreateSchedule(context.Background(), s); err != nil {
		t.Fatalf("create schedule: %v", err)
	}
	return s
}

func occurrence(id, taskID, scheduleID string, date time.Time, status model.Status) model.Occurrence {
	o := model.Occurrence{ID: id, TaskID: taskID, ScheduleID: scheduleID, Date: date, Status: status}
	if status.IsTerminal() {
		closed := date.Add(12 * time.Hour)
		o.ClosedAt = &closed
	}
	return o
}

func TestTaskCRUDAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := parseRFC3339(t, "2026-02-09T12:00:00Z")

	task := model.Task{
		ID:          "task-1",
		Title:       "Water plants",
		Description: "balcony and kitchen",
		CreatedAt:   created,
	}
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := repo.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Title != task.Title || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected task get result: %#v", got)
	}

	list, err := repo.ListTasks(ctx, TaskListFilter{})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID {
		t.Fatalf("unexpected task list: %#v", list)
	}

	if err := repo.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	_, err = repo.GetTask(ctx, task.ID)
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestScheduleCRUDAndCursor(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-s")
	s := seedSchedule(t, repo, "sched-1", task.ID)

	got, err := repo.GetSchedule(ctx, s.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if got.Kind != model.KindEveryNWeeks || got.DayOfWeek.OrEmpty() != 2 || got.Interval.OrEmpty() != 2 {
		t.Fatalf("unexpected schedule: %#v", got)
	}
	if !got.StartDate.Equal(model.NewDate(2026, 6, 1)) || got.EndDate.IsPresent() || got.LastOccurrence.IsPresent() {
		t.Fatalf("unexpected schedule dates: %#v", got)
	}
	if got.DayOfMonth.IsPresent() {
		t.Fatalf("expected no day_of_month, got %v", got.DayOfMonth)
	}

	s.EndDate = mo.Some(model.NewDate(2026, 12, 31))
	s.DayOfWeek = mo.Some(4)
	if err := repo.UpdateSchedule(ctx, s); err != nil {
		t.Fatalf("update schedule: %v", err)
	}
	cursor := model.NewDate(2026, 6, 4)
	if err := repo.UpdateScheduleCursor(ctx, s.ID, mo.Some(cursor)); err != nil {
		t.Fatalf("update cursor: %v", err)
	}

	got, err = repo.GetSchedule(ctx, s.ID)
	if err != nil {
		t.Fatalf("get schedule: %v", err)
	}
	if got.DayOfWeek.OrEmpty() != 4 || !got.EndDate.OrEmpty().Equal(model.NewDate(2026, 12, 31)) {
		t.Fatalf("update not persisted: %#v", got)
	}
	if !got.LastOccurrence.OrEmpty().Equal(cursor) {
		t.Fatalf("cursor not persisted: %#v", got.LastOccurrence)
	}

	if err := repo.UpdateScheduleCursor(ctx, s.ID, mo.None[time.Time]()); err != nil {
		t.Fatalf("clear cursor: %v", err)
	}
	got, _ = repo.GetSchedule(ctx, s.ID)
	if got.LastOccurrence.IsPresent() {
		t.Fatalf("expected cleared cursor, got %v", got.LastOccurrence)
	}

	list, err := repo.ListSchedules(ctx, ScheduleListFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("list schedules: %v", err)
	}
	if len(list) != 1 || list[0].ID != s.ID {
		t.Fatalf("unexpected schedule list: %#v", list)
	}

	if err := repo.UpdateScheduleCursor(ctx, "missing", mo.None[time.Time]()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing schedule, got %v", err)
	}
}

func TestOccurrenceLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-o")
	s := seedSchedule(t, repo, "sched-o", task.ID)

	first := occurrence("occ-1", task.ID, s.ID, model.NewDate(2026, 6, 3), model.StatusPending)
	if err := repo.CreateOccurrence(ctx, first); err != nil {
		t.Fatalf("create occurrence: %v", err)
	}

	got, err := repo.GetOccurrence(ctx, first.ID)
	if err != nil {
		t.Fatalf("get occurrence: %v", err)
	}
	if got.Status != model.StatusPending || got.ClosedAt != nil || !got.Date.Equal(first.Date) {
		t.Fatalf("unexpected occurrence: %#v", got)
	}

	closed := parseRFC3339(t, "2026-06-03T18:00:00Z")
	if err := repo.UpdateOccurrenceStatus(ctx, first.ID, model.StatusDone, &closed); err != nil {
		t.Fatalf("close occurrence: %v", err)
	}
	got, _ = repo.GetOccurrence(ctx, first.ID)
	if got.Status != model.StatusDone || got.ClosedAt == nil || !got.ClosedAt.Equal(closed) {
		t.Fatalf("unexpected closed occurrence: %#v", got)
	}

	if err := repo.UpdateOccurrenceStatus(ctx, "missing", model.StatusDone, &closed); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetOccurrence(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPendingQueriesAndMaxClosedDate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-p")
	s := seedSchedule(t, repo, "sched-p", task.ID)

	latest, err := repo.MaxClosedOccurrenceDate(ctx, s.ID)
	if err != nil {
		t.Fatalf("max closed date on empty: %v", err)
	}
	if latest.IsPresent() {
		t.Fatalf("expected none on empty history, got %v", latest)
	}

	items := []model.Occurrence{
		occurrence("occ-a", task.ID, s.ID, model.NewDate(2026, 6, 3), model.StatusDone),
		occurrence("occ-b", task.ID, s.ID, model.NewDate(2026, 6, 17), model.StatusSkipped),
		occurrence("occ-c", task.ID, s.ID, model.NewDate(2026, 7, 1), model.StatusPending),
	}
	for _, o := range items {
		if err := repo.CreateOccurrence(ctx, o); err != nil {
			t.Fatalf("create occurrence %s: %v", o.ID, err)
		}
	}

	latest, err = repo.MaxClosedOccurrenceDate(ctx, s.ID)
	if err != nil {
		t.Fatalf("max closed date: %v", err)
	}
	if !latest.OrEmpty().Equal(model.NewDate(2026, 6, 17)) {
		t.Fatalf("unexpected max closed date: %v", latest)
	}

	pending, err := repo.ListPendingOccurrences(ctx, s.ID)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "occ-c" {
		t.Fatalf("unexpected pending list: %#v", pending)
	}

	all, err := repo.ListOccurrences(ctx, OccurrenceListFilter{ScheduleID: s.ID})
	if err != nil {
		t.Fatalf("list occurrences: %v", err)
	}
	if len(all) != 3 || all[0].ID != "occ-a" || all[2].ID != "occ-c" {
		t.Fatalf("expected date ordering, got %#v", all)
	}

	removed, err := repo.DeletePendingOccurrences(ctx, s.ID)
	if err != nil {
		t.Fatalf("delete pending: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected one pending removed, got %d", removed)
	}
	all, _ = repo.ListOccurrences(ctx, OccurrenceListFilter{ScheduleID: s.ID})
	if len(all) != 2 {
		t.Fatalf("closed history must survive, got %#v", all)
	}
}

func TestSecondPendingOccurrenceIsRejected(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-u")
	s := seedSchedule(t, repo, "sched-u", task.ID)

	if err := repo.CreateOccurrence(ctx, occurrence("occ-1", task.ID, s.ID, model.NewDate(2026, 6, 3), model.StatusPending)); err != nil {
		t.Fatalf("create first pending: %v", err)
	}
	if err := repo.CreateOccurrence(ctx, occurrence("occ-2", task.ID, s.ID, model.NewDate(2026, 6, 17), model.StatusPending)); err == nil {
		t.Fatalf("expected unique pending violation")
	}
}

func TestDeleteScheduleCascadesOccurrences(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-c")
	s := seedSchedule(t, repo, "sched-c", task.ID)
	if err := repo.CreateOccurrence(ctx, occurrence("occ-1", task.ID, s.ID, model.NewDate(2026, 6, 3), model.StatusDone)); err != nil {
		t.Fatalf("create occurrence: %v", err)
	}

	if err := repo.DeleteSchedule(ctx, s.ID); err != nil {
		t.Fatalf("delete schedule: %v", err)
	}
	if _, err := repo.GetOccurrence(ctx, "occ-1"); err != ErrNotFound {
		t.Fatalf("expected cascaded delete, got %v", err)
	}
	if err := repo.DeleteSchedule(ctx, s.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-tx")
	s := seedSchedule(t, repo, "sched-tx", task.ID)

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx Repository) error {
		if err := tx.CreateOccurrence(ctx, occurrence("occ-tx", task.ID, s.ID, model.NewDate(2026, 6, 3), model.StatusPending)); err != nil {
			return err
		}
		if err := tx.UpdateScheduleCursor(ctx, s.ID, mo.Some(model.NewDate(2026, 6, 3))); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}

	if _, err := repo.GetOccurrence(ctx, "occ-tx"); err != ErrNotFound {
		t.Fatalf("occurrence insert must roll back, got %v", err)
	}
	got, _ := repo.GetSchedule(ctx, s.ID)
	if got.LastOccurrence.IsPresent() {
		t.Fatalf("cursor update must roll back, got %v", got.LastOccurrence)
	}
}

func TestWithTxCommitsAndNests(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	task := seedTask(t, repo, "task-nest")
	s := seedSchedule(t, repo, "sched-nest", task.ID)

	err := repo.WithTx(ctx, func(tx Repository) error {
		return tx.WithTx(ctx, func(inner Repository) error {
			return inner.UpdateScheduleCursor(ctx, s.ID, mo.Some(model.NewDate(2026, 6, 3)))
		})
	})
	if err != nil {
		t.Fatalf("with tx: %v", err)
	}
	got, _ := repo.GetSchedule(ctx, s.ID)
	if !got.LastOccurrence.OrEmpty().Equal(model.NewDate(2026, 6, 3)) {
		t.Fatalf("expected committed cursor, got %v", got.LastOccurrence)
	}
}
