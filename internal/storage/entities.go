package storage

import "github.com/sandeepkv93/cadence/internal/model"

type TaskListFilter struct {
	Limit  int
	Offset int
}

type ScheduleListFilter struct {
	TaskID string
	Limit  int
	Offset int
}

type OccurrenceListFilter struct {
	ScheduleID string
	TaskID     string
	Status     model.Status
	Limit      int
	Offset     int
}
