// Package schedfile imports schedules from a YAML document.
package schedfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/mo"
	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
)

type File struct {
	Schedules []Entry `yaml:"schedules"`
}

// Entry names its task either by id (task) or by a title for a new task.
type Entry struct {
	Task        string `yaml:"task"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Kind        string `yaml:"kind"`
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	DayOfWeek   string `yaml:"day_of_week"`
	DayOfMonth  *int   `yaml:"day_of_month"`
	Interval    *int   `yaml:"interval"`
}

type Creator interface {
	CreateTask(ctx context.Context, title, description string) (model.Task, error)
	CreateSchedule(ctx context.Context, in materializer.ScheduleInput) (model.Schedule, error)
}

func Decode(r io.Reader) (File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return File{}, nil
		}
		return File{}, fmt.Errorf("decode schedules: %w", err)
	}
	return f, nil
}

// Input converts an entry for a known task id.
func (e Entry) Input(taskID string) (materializer.ScheduleInput, error) {
	kind, err := model.ParseKind(e.Kind)
	if err != nil {
		return materializer.ScheduleInput{}, err
	}
	start, err := model.ParseDate(e.Start)
	if err != nil {
		return materializer.ScheduleInput{}, fmt.Errorf("%w: start %q", model.ErrInvalidConfiguration, e.Start)
	}
	in := materializer.ScheduleInput{TaskID: taskID, Kind: kind, StartDate: start}
	if strings.TrimSpace(e.End) != "" {
		end, err := model.ParseDate(e.End)
		if err != nil {
			return materializer.ScheduleInput{}, fmt.Errorf("%w: end %q", model.ErrInvalidConfiguration, e.End)
		}
		in.EndDate = mo.Some(end)
	}
	if strings.TrimSpace(e.DayOfWeek) != "" {
		dow, err := model.ParseWeekday(e.DayOfWeek)
		if err != nil {
			return materializer.ScheduleInput{}, err
		}
		in.DayOfWeek = mo.Some(dow)
	}
	if e.DayOfMonth != nil {
		in.DayOfMonth = mo.Some(*e.DayOfMonth)
	}
	if e.Interval != nil {
		in.Interval = mo.Some(*e.Interval)
	}
	return in, nil
}

// Import creates every entry in order and stops at the first failure,
// reporting the entry's position. Schedules created before it remain.
func Import(ctx context.Context, c Creator, r io.Reader) ([]model.Schedule, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	out := make([]model.Schedule, 0, len(f.Schedules))
	for i, e := range f.Schedules {
		s, err := importEntry(ctx, c, e)
		if err != nil {
			return out, fmt.Errorf("schedule %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func importEntry(ctx context.Context, c Creator, e Entry) (model.Schedule, error) {
	taskID := strings.TrimSpace(e.Task)
	title := strings.TrimSpace(e.Title)
	if (taskID == "") == (title == "") {
		return model.Schedule{}, fmt.Errorf("%w: exactly one of task or title is required", model.ErrInvalidConfiguration)
	}
	// Validate before creating a task so a bad entry leaves nothing behind.
	in, err := e.Input(taskID)
	if err != nil {
		return model.Schedule{}, err
	}
	if taskID == "" {
		task, err := c.CreateTask(ctx, title, e.Description)
		if err != nil {
			return model.Schedule{}, err
		}
		in.TaskID = task.ID
	}
	return c.CreateSchedule(ctx, in)
}
