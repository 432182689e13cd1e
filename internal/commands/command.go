// Package commands parses the board's command palette input.
package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/sandeepkv93/cadence/internal/materializer"
	"github.com/sandeepkv93/cadence/internal/model"
)

type Type string

const (
	TypeClose   Type = "close"
	TypeRegen   Type = "regen"
	TypePreview Type = "preview"
	TypeEdit    Type = "edit"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func invalid(format string, args ...any) error {
	return &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// CloseArgs targets an occurrence by id or unique id prefix.
type CloseArgs struct {
	Target string
	Status model.Status
}

type RegenArgs struct {
	Schedule string
}

type PreviewArgs struct {
	Schedule string
	Count    int
}

type EditArgs struct {
	Schedule string
	Edit     materializer.ScheduleEdit
}

type Command struct {
	Type    Type
	Raw     string
	Close   *CloseArgs
	Regen   *RegenArgs
	Preview *PreviewArgs
	Edit    *EditArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ":") {
		raw = strings.TrimSpace(raw[1:])
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeClose:
		return parseClose(input, args)
	case TypeRegen, "regenerate":
		return parseRegen(input, args)
	case TypePreview:
		return parsePreview(input, args)
	case TypeEdit:
		return parseEdit(input, args)
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseClose(raw string, args []string) (Command, error) {
	if len(args) != 2 {
		return Command{}, invalid("close requires an occurrence and a status")
	}
	status, err := model.ParseStatus(args[1])
	if err != nil || !status.IsTerminal() {
		return Command{}, invalid("close status must be done, cancelled or skipped, got %q", args[1])
	}
	return Command{Type: TypeClose, Raw: raw, Close: &CloseArgs{Target: args[0], Status: status}}, nil
}

func parseRegen(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, invalid("regen requires a schedule")
	}
	return Command{Type: TypeRegen, Raw: raw, Regen: &RegenArgs{Schedule: args[0]}}, nil
}

func parsePreview(raw string, args []string) (Command, error) {
	if len(args) == 0 || len(args) > 2 {
		return Command{}, invalid("preview requires a schedule and an optional count")
	}
	out := PreviewArgs{Schedule: args[0]}
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			return Command{}, invalid("preview count must be a positive number, got %q", args[1])
		}
		out.Count = n
	}
	return Command{Type: TypePreview, Raw: raw, Preview: &out}, nil
}

// parseEdit reads key=value pairs: start, end (or end=none), dow, interval.
func parseEdit(raw string, args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, invalid("edit requires a schedule and at least one key=value")
	}
	var edit materializer.ScheduleEdit
	for _, pair := range args[1:] {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || value == "" {
			return Command{}, invalid("expected key=value, got %q", pair)
		}
		switch strings.ToLower(key) {
		case "start":
			d, err := parseDate(value)
			if err != nil {
				return Command{}, err
			}
			edit.StartDate = mo.Some(d)
		case "end":
			if strings.EqualFold(value, "none") {
				edit.ClearEndDate = true
				continue
			}
			d, err := parseDate(value)
			if err != nil {
				return Command{}, err
			}
			edit.EndDate = mo.Some(d)
		case "dow":
			dow, err := model.ParseWeekday(value)
			if err != nil {
				return Command{}, invalid("%v", err)
			}
			edit.DayOfWeek = mo.Some(dow)
		case "interval":
			n, err := strconv.Atoi(value)
			if err != nil {
				return Command{}, invalid("interval must be a number, got %q", value)
			}
			edit.Interval = mo.Some(n)
		default:
			return Command{}, invalid("unknown edit key %q", key)
		}
	}
	return Command{Type: TypeEdit, Raw: raw, Edit: &EditArgs{Schedule: args[0], Edit: edit}}, nil
}

func parseDate(value string) (time.Time, error) {
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, invalid("date must look like %s, got %q", model.DateLayout, value)
	}
	return d, nil
}
