package task

import (
	"encoding/json"
	"errors"
)

// ErrActiveCorrupt is returned when the active list document exists but
// cannot be decoded. Callers must not treat this as an empty list: doing so
// would discard the basis for the single in-progress invariant.
var ErrActiveCorrupt = errors.New("active task list is unreadable")

// Store defines persistence for the active list, subtask payloads, and the
// monthly completion archive. Implementations own the underlying documents
// exclusively; no other component touches them directly.
type Store interface {
	// LoadActive returns the current active list. A missing or empty
	// document is an empty list, not an error. A document that exists but
	// cannot be decoded returns ErrActiveCorrupt.
	LoadActive() ([]Task, error)

	// SaveActive atomically replaces the whole active list.
	SaveActive(list []Task) error

	// LoadSubtask returns the raw payload stored under key.
	// The second result is false when the key is absent.
	LoadSubtask(key string) (json.RawMessage, bool, error)

	// SaveSubtask stores a raw payload under key.
	SaveSubtask(key string, doc json.RawMessage) error

	// ArchiveAppend appends a completed task to the partition for its
	// completion month, creating the partition on first use.
	ArchiveAppend(t Task) error

	// LoadHistory returns archived tasks from the last monthsBack months
	// (current month included) as one flat list, oldest month first.
	// Months without a partition contribute nothing.
	LoadHistory(monthsBack int) ([]Task, error)
}
