package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db *sql.DB
	q  dbtx
	tx bool
}

// DSN appends the connection parameters the repository relies on:
// enforced foreign keys, write-locking transactions and a busy timeout.
func DSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, q: db}, nil
}

// OpenSQLite opens the database at path and applies pending migrations.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(Repository) error) error {
	if r.tx {
		return fn(r)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&SQLiteRepository{db: r.db, q: tx, tx: true}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in model.Task) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (id, title, description, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Title, in.Description, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, title, description, created_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, err
	}
	return task, nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]model.Task, error) {
	query := `SELECT id, title, description, created_at FROM tasks ORDER BY created_at ASC, id ASC`
	args := make([]any, 0, 2)
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	return out, rows.Err()
}

const scheduleColumns = `id, task_id, kind, start_date, end_date, last_occurrence, day_of_week, day_of_month, interval_value, created_at`

func (r *SQLiteRepository) CreateSchedule(ctx context.Context, in model.Schedule) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO schedules (`+scheduleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, string(in.Kind), formatDate(in.StartDate), nullDate(in.EndDate), nullDate(in.LastOccurrence),
		nullInt(in.DayOfWeek), nullInt(in.DayOfMonth), nullInt(in.Interval), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetSchedule(ctx context.Context, id string) (model.Schedule, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	item, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Schedule{}, ErrNotFound
		}
		return model.Schedule{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateSchedule(ctx context.Context, in model.Schedule) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE schedules
		SET start_date = ?, end_date = ?, day_of_week = ?, day_of_month = ?, interval_value = ?
		WHERE id = ?`,
		formatDate(in.StartDate), nullDate(in.EndDate), nullInt(in.DayOfWeek), nullInt(in.DayOfMonth), nullInt(in.Interval), in.ID,
	)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) UpdateScheduleCursor(ctx context.Context, id string, cursor mo.Option[time.Time]) error {
	res, err := r.q.ExecContext(ctx, `UPDATE schedules SET last_occurrence = ? WHERE id = ?`, nullDate(cursor), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteSchedule(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM schedules WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListSchedules(ctx context.Context, filter ScheduleListFilter) ([]model.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules`
	args := make([]any, 0, 3)
	if filter.TaskID != "" {
		query += ` WHERE task_id = ?`
		args = append(args, filter.TaskID)
	}
	query += ` ORDER BY created_at ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Schedule, 0)
	for rows.Next() {
		item, scanErr := scanSchedule(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

const occurrenceColumns = `id, task_id, schedule_id, date, status, closed_at`

func (r *SQLiteRepository) CreateOccurrence(ctx context.Context, in model.Occurrence) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO occurrences (`+occurrenceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		in.ID, in.TaskID, in.ScheduleID, formatDate(in.Date), string(in.Status), nullTime(in.ClosedAt),
	)
	return err
}

func (r *SQLiteRepository) GetOccurrence(ctx context.Context, id string) (model.Occurrence, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+occurrenceColumns+` FROM occurrences WHERE id = ?`, id)
	item, err := scanOccurrence(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Occurrence{}, ErrNotFound
		}
		return model.Occurrence{}, err
	}
	return item, nil
}

func (r *SQLiteRepository) UpdateOccurrenceStatus(ctx context.Context, id string, status model.Status, closedAt *time.Time) error {
	res, err := r.q.ExecContext(ctx, `UPDATE occurrences SET status = ?, closed_at = ? WHERE id = ?`,
		string(status), nullTime(closedAt), id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListOccurrences(ctx context.Context, filter OccurrenceListFilter) ([]model.Occurrence, error) {
	query := `SELECT ` + occurrenceColumns + ` FROM occurrences`
	clauses := make([]string, 0, 3)
	args := make([]any, 0, 5)
	if filter.ScheduleID != "" {
		clauses = append(clauses, "schedule_id = ?")
		args = append(args, filter.ScheduleID)
	}
	if filter.TaskID != "" {
		clauses = append(clauses, "task_id = ?")
		args = append(args, filter.TaskID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, string(filter.Status))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY date ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Occurrence, 0)
	for rows.Next() {
		item, scanErr := scanOccurrence(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListPendingOccurrences(ctx context.Context, scheduleID string) ([]model.Occurrence, error) {
	return r.ListOccurrences(ctx, OccurrenceListFilter{ScheduleID: scheduleID, Status: model.StatusPending})
}

func (r *SQLiteRepository) DeletePendingOccurrences(ctx context.Context, scheduleID string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM occurrences WHERE schedule_id = ? AND status = ?`,
		scheduleID, string(model.StatusPending))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) MaxClosedOccurrenceDate(ctx context.Context, scheduleID string) (mo.Option[time.Time], error) {
	var latest sql.NullString
	err := r.q.QueryRowContext(ctx, `SELECT MAX(date) FROM occurrences WHERE schedule_id = ? AND status <> ?`,
		scheduleID, string(model.StatusPending)).Scan(&latest)
	if err != nil {
		return mo.None[time.Time](), err
	}
	return parseNullableDate(latest)
}

func formatDate(v time.Time) string {
	return model.FormatDate(model.DateOf(v))
}

func nullDate(v mo.Option[time.Time]) any {
	d, ok := v.Get()
	if !ok {
		return nil
	}
	return formatDate(d)
}

func parseNullableDate(v sql.NullString) (mo.Option[time.Time], error) {
	if !v.Valid || v.String == "" {
		return mo.None[time.Time](), nil
	}
	d, err := model.ParseDate(v.String)
	if err != nil {
		return mo.None[time.Time](), err
	}
	return mo.Some(d), nil
}

func nullInt(v mo.Option[int]) any {
	n, ok := v.Get()
	if !ok {
		return nil
	}
	return n
}

func intOption(v sql.NullInt64) mo.Option[int] {
	if !v.Valid {
		return mo.None[int]()
	}
	return mo.Some(int(v.Int64))
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeLayout)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeLayout, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		if limit <= 0 {
			sql += " LIMIT -1"
		}
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (model.Task, error) {
	var out model.Task
	var created string
	if err := s.Scan(&out.ID, &out.Title, &out.Description, &created); err != nil {
		return model.Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Task{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanSchedule(s scanner) (model.Schedule, error) {
	var out model.Schedule
	var kind, start, created string
	var end, last sql.NullString
	var dow, dom, interval sql.NullInt64
	if err := s.Scan(&out.ID, &out.TaskID, &kind, &start, &end, &last, &dow, &dom, &interval, &created); err != nil {
		return model.Schedule{}, err
	}
	startDate, err := model.ParseDate(start)
	if err != nil {
		return model.Schedule{}, err
	}
	endDate, err := parseNullableDate(end)
	if err != nil {
		return model.Schedule{}, err
	}
	lastOccurrence, err := parseNullableDate(last)
	if err != nil {
		return model.Schedule{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Schedule{}, err
	}
	out.Kind = model.Kind(kind)
	out.StartDate = startDate
	out.EndDate = endDate
	out.LastOccurrence = lastOccurrence
	out.DayOfWeek = intOption(dow)
	out.DayOfMonth = intOption(dom)
	out.Interval = intOption(interval)
	out.CreatedAt = createdAt
	return out, nil
}

func scanOccurrence(s scanner) (model.Occurrence, error) {
	var out model.Occurrence
	var date, status string
	var closed sql.NullString
	if err := s.Scan(&out.ID, &out.TaskID, &out.ScheduleID, &date, &status, &closed); err != nil {
		return model.Occurrence{}, err
	}
	d, err := model.ParseDate(date)
	if err != nil {
		return model.Occurrence{}, err
	}
	closedAt, err := parseNullableTime(closed)
	if err != nil {
		return model.Occurrence{}, err
	}
	out.Date = d
	out.Status = model.Status(status)
	out.ClosedAt = closedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
