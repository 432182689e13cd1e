package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidStatus = errors.New("model: invalid occurrence status")

type Status string

const (
	StatusPending   Status = "Pending"
	StatusDone      Status = "Done"
	StatusCancelled Status = "Cancelled"
	StatusSkipped   Status = "Skipped"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDone, StatusCancelled, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status closes an occurrence for good.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusSkipped
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "todo":
		return StatusPending, nil
	case "done":
		return StatusDone, nil
	case "cancelled", "canceled", "cancel":
		return StatusCancelled, nil
	case "skipped", "skip":
		return StatusSkipped, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

type Occurrence struct {
	ID         string
	TaskID     string
	ScheduleID string
	Date       time.Time
	Status     Status
	ClosedAt   *time.Time
}

func (o Occurrence) Validate() error {
	if strings.TrimSpace(o.ID) == "" {
		return errors.New("model: occurrence id is required")
	}
	if strings.TrimSpace(o.ScheduleID) == "" {
		return errors.New("model: occurrence schedule_id is required")
	}
	if o.Date.IsZero() {
		return errors.New("model: occurrence date is required")
	}
	if !o.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	if o.Status.IsTerminal() && o.ClosedAt == nil {
		return errors.New("model: closed_at is required when occurrence is closed")
	}
	if o.Status == StatusPending && o.ClosedAt != nil {
		return errors.New("model: closed_at must be nil while occurrence is pending")
	}
	return nil
}
