package model

import (
	"errors"
	"testing"
	"time"
)

func TestOccurrenceValidate(t *testing.T) {
	closed := time.Date(2026, 6, 2, 8, 0, 0, 0, time.UTC)
	occ := Occurrence{
		ID:         "occ-1",
		TaskID:     "task-1",
		ScheduleID: "sched-1",
		Date:       NewDate(2026, time.June, 1),
		Status:     StatusPending,
	}
	if err := occ.Validate(); err != nil {
		t.Fatalf("expected valid occurrence, got %v", err)
	}

	occ.Status = StatusDone
	if err := occ.Validate(); err == nil {
		t.Fatal("expected closed_at to be required for Done")
	}
	occ.ClosedAt = &closed
	if err := occ.Validate(); err != nil {
		t.Fatalf("expected valid closed occurrence, got %v", err)
	}

	occ.Status = Status("Archived")
	if err := occ.Validate(); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusDone, StatusCancelled, StatusSkipped} {
		if !s.IsTerminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	if StatusPending.IsTerminal() {
		t.Fatal("pending must not be terminal")
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"done":     StatusDone,
		"Canceled": StatusCancelled,
		"skip":     StatusSkipped,
		"pending":  StatusPending,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Fatalf("ParseStatus(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseStatus("later"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}
