// Package materializer turns schedules into persisted occurrences. It is the
// only part of the recurrence engine with side effects: every call loads a
// schedule, asks the calculator for the next date and writes at most one
// pending occurrence plus the advanced cursor inside a single transaction.
package materializer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/model"
	"github.com/sandeepkv93/cadence/internal/recurrence"
	"github.com/sandeepkv93/cadence/internal/scheduler"
	"github.com/sandeepkv93/cadence/internal/storage"
)

// Store is the storage collaborator the engine needs.
type Store = storage.Repository

type Materializer struct {
	store  Store
	serial *scheduler.Serializer
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

type Option func(*Materializer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the source of closed_at and created_at timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Materializer) {
		if now != nil {
			m.now = now
		}
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Materializer) {
		if newID != nil {
			m.newID = newID
		}
	}
}

// WithSerializer shares a serializer between materializers over the same store.
func WithSerializer(s *scheduler.Serializer) Option {
	return func(m *Materializer) {
		if s != nil {
			m.serial = s
		}
	}
}

func New(store Store, opts ...Option) *Materializer {
	m := &Materializer{
		store:  store,
		serial: scheduler.NewSerializer(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Produce materializes the next occurrence of a schedule. It returns the
// date of the occurrence it created, or None when nothing was created: the
// schedule is exhausted, a one-off already fired, or a pending occurrence
// already exists in normal mode.
func (m *Materializer) Produce(ctx context.Context, scheduleID string, mode recurrence.Mode) (mo.Option[time.Time], error) {
	if scheduleID == "" {
		return mo.None[time.Time](), fmt.Errorf("schedule %q: %w", scheduleID, ErrNotFound)
	}
	var out mo.Option[time.Time]
	err := m.serial.Do(ctx, scheduleID, func(ctx context.Context) error {
		return m.inTx(ctx, "produce", func(tx Store) error {
			var err error
			out, err = m.produce(ctx, tx, scheduleID, mode)
			return err
		})
	})
	if err != nil {
		m.logger.Error("produce failed", "schedule_id", scheduleID, "mode", mode, "err", err)
		return mo.None[time.Time](), err
	}
	return out, nil
}

// Close moves a pending occurrence to a terminal status and, unless the
// schedule is a one-off, materializes the next occurrence in the same
// transaction. It returns the date of the new occurrence, if any.
func (m *Materializer) Close(ctx context.Context, occurrenceID string, status model.Status) (mo.Option[time.Time], error) {
	if !status.IsTerminal() {
		return mo.None[time.Time](), fmt.Errorf("%w: %q cannot close an occurrence", model.ErrInvalidStatus, status)
	}
	occ, err := m.store.GetOccurrence(ctx, occurrenceID)
	if err != nil {
		return mo.None[time.Time](), storageErr("load occurrence", err)
	}

	var out mo.Option[time.Time]
	err = m.serial.Do(ctx, occ.ScheduleID, func(ctx context.Context) error {
		return m.inTx(ctx, "close occurrence", func(tx Store) error {
			current, err := tx.GetOccurrence(ctx, occurrenceID)
			if err != nil {
				return storageErr("load occurrence", err)
			}
			if current.Status != model.StatusPending {
				return fmt.Errorf("%w: %s is %s", ErrAlreadyClosed, occurrenceID, current.Status)
			}
			closedAt := m.now().UTC()
			if err := tx.UpdateOccurrenceStatus(ctx, occurrenceID, status, &closedAt); err != nil {
				return storageErr("update occurrence status", err)
			}
			m.logger.Info("occurrence closed", "occurrence_id", occurrenceID, "schedule_id", current.ScheduleID, "status", status)

			s, err := tx.GetSchedule(ctx, current.ScheduleID)
			if err != nil {
				return storageErr("load schedule", err)
			}
			if s.Kind == model.KindOnce {
				return nil
			}
			out, err = m.produce(ctx, tx, s.ID, recurrence.Normal)
			return err
		})
	})
	if err != nil {
		return mo.None[time.Time](), err
	}
	return out, nil
}

// produce runs one materialization step against tx. Callers hold the
// schedule's serializer slot.
func (m *Materializer) produce(ctx context.Context, tx Store, scheduleID string, mode recurrence.Mode) (mo.Option[time.Time], error) {
	none := mo.None[time.Time]()

	s, err := tx.GetSchedule(ctx, scheduleID)
	if err != nil {
		return none, storageErr("load schedule", err)
	}
	if err := s.Validate(); err != nil {
		return none, err
	}

	var cursor mo.Option[time.Time]
	switch mode {
	case recurrence.Regenerate:
		removed, err := tx.DeletePendingOccurrences(ctx, scheduleID)
		if err != nil {
			return none, storageErr("delete pending occurrences", err)
		}
		cursor, err = tx.MaxClosedOccurrenceDate(ctx, scheduleID)
		if err != nil {
			return none, storageErr("load closed history", err)
		}
		if err := tx.UpdateScheduleCursor(ctx, scheduleID, cursor); err != nil {
			return none, storageErr("reconcile cursor", err)
		}
		m.logger.Debug("schedule reconciled", "schedule_id", scheduleID, "removed", removed, "cursor", formatCursor(cursor))
	case recurrence.Normal:
		pending, err := tx.ListPendingOccurrences(ctx, scheduleID)
		if err != nil {
			return none, storageErr("load pending occurrences", err)
		}
		if len(pending) > 0 {
			m.logger.Debug("pending occurrence exists", "schedule_id", scheduleID, "date", model.FormatDate(pending[0].Date))
			return none, nil
		}
		cursor = s.LastOccurrence
	default:
		return none, fmt.Errorf("%w: %q", recurrence.ErrInvalidMode, mode)
	}

	if s.Kind == model.KindOnce && cursor.IsPresent() {
		m.logger.Debug("one-off schedule already fired", "schedule_id", scheduleID)
		return none, nil
	}

	next, ok := recurrence.NextDate(s, cursor, mode).Get()
	if !ok {
		m.logger.Info("schedule exhausted", "schedule_id", scheduleID, "mode", mode)
		return none, nil
	}

	occ := model.Occurrence{
		ID:         m.newID(),
		TaskID:     s.TaskID,
		ScheduleID: s.ID,
		Date:       next,
		Status:     model.StatusPending,
	}
	if err := tx.CreateOccurrence(ctx, occ); err != nil {
		return none, storageErr("create occurrence", err)
	}
	if err := tx.UpdateScheduleCursor(ctx, s.ID, mo.Some(next)); err != nil {
		return none, storageErr("advance cursor", err)
	}
	m.logger.Info("occurrence materialized", "schedule_id", s.ID, "occurrence_id", occ.ID, "date", model.FormatDate(next), "mode", mode)
	return mo.Some(next), nil
}

func (m *Materializer) inTx(ctx context.Context, op string, fn func(tx Store) error) error {
	return storageErr(op, m.store.WithTx(ctx, fn))
}

func formatCursor(cursor mo.Option[time.Time]) string {
	if c, ok := cursor.Get(); ok {
		return model.FormatDate(c)
	}
	return "none"
}
