package model

import (
	"errors"
	"strings"
	"time"
)

// Task owns schedules. Everything beyond identity and a title belongs to
// the surrounding application.
type Task struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("model: task id is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("model: task title is required")
	}
	if t.CreatedAt.IsZero() {
		return errors.New("model: task created_at is required")
	}
	return nil
}
