// Package task defines the task domain model tracked by the engine.
package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no task matches the requested name.
	ErrNotFound = errors.New("task not found")
	// ErrInProgress is returned when a transition would create a second
	// in-progress task.
	ErrInProgress = errors.New("another task is already in progress")
	// ErrBadTransition is returned when a status change is not allowed
	// by the lifecycle.
	ErrBadTransition = errors.New("invalid status transition")
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusPaused     Status = "PAUSED"
	StatusCompleted  Status = "COMPLETED"
)

// transitions is the allowed lifecycle graph. COMPLETED is terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusInProgress},
	StatusInProgress: {StatusPaused, StatusCompleted},
	StatusPaused:     {StatusInProgress, StatusCompleted},
	StatusCompleted:  {},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// LogEntry is a single pause or resume record. Logs are append-only.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}

// Task is a single unit of work tracked in the active list or the archive.
type Task struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Status     Status         `json:"status"`
	StartTime  *time.Time     `json:"start_time,omitempty"`
	DueDate    *time.Time     `json:"due_date,omitempty"`
	EndTime    *time.Time     `json:"end_time,omitempty"`
	PauseLog   []LogEntry     `json:"pause_log,omitempty"`
	ResumeLog  []LogEntry     `json:"resume_log,omitempty"`
	FinalStats map[string]any `json:"final_stats,omitempty"`
}

// New creates a pending task with a fresh ID.
func New(name string) Task {
	return Task{
		ID:     uuid.New().String(),
		Name:   name,
		Status: StatusPending,
	}
}

// FindByName returns the index of the task with an exact, case-sensitive
// name match, or -1. Fuzzy matching belongs upstream in the classifier.
func FindByName(list []Task, name string) int {
	for i := range list {
		if list[i].Name == name {
			return i
		}
	}
	return -1
}

// InProgress returns the index of the task currently in progress, or -1.
func InProgress(list []Task) int {
	for i := range list {
		if list[i].Status == StatusInProgress {
			return i
		}
	}
	return -1
}

// CompletedIndex returns the index of the first completed entry, or -1.
// The active list carries a completed entry only transiently, between a
// controller response and the archive step of the same operation.
func CompletedIndex(list []Task) int {
	for i := range list {
		if list[i].Status == StatusCompleted {
			return i
		}
	}
	return -1
}
