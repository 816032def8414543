// Package jsonfile implements task.Store over per-resource JSON documents:
// one file for the active list, one for subtask payloads, and one archive
// partition per completion month.
package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethanchou/tempo/internal/core/logging"
	"github.com/ethanchou/tempo/internal/core/task"
	"github.com/rs/zerolog"
)

const (
	activeFile   = "active.json"
	subtasksFile = "subtasks.json"
	historyDir   = "history"
)

// Store persists tasks as JSON documents under a data directory.
// Each resource class (active list, subtask documents, archive partitions)
// has its own lock; the store is local-file-backed and single-process.
type Store struct {
	dataDir string
	log     zerolog.Logger

	activeMu  sync.RWMutex
	subtaskMu sync.RWMutex
	archiveMu sync.RWMutex
}

// New creates a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		log:     logging.Component("jsonfile"),
	}
}

var _ task.Store = (*Store)(nil)

// LoadActive returns the persisted active list. A missing or empty document
// is an empty list. A document that fails to decode returns
// task.ErrActiveCorrupt: treating it as empty would let a transient glitch
// re-admit a second in-progress task.
func (s *Store) LoadActive() ([]task.Task, error) {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()

	path := filepath.Join(s.dataDir, activeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []task.Task{}, nil
		}
		return nil, fmt.Errorf("%w: %v", task.ErrActiveCorrupt, err)
	}

	if len(data) == 0 {
		return []task.Task{}, nil
	}

	var list []task.Task
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Error().Err(err).Str("path", path).Msg("active list unreadable")
		return nil, fmt.Errorf("%w: %v", task.ErrActiveCorrupt, err)
	}

	return list, nil
}

// SaveActive atomically replaces the whole active list document.
func (s *Store) SaveActive(list []task.Task) error {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	if list == nil {
		list = []task.Task{}
	}
	return s.writeJSON(filepath.Join(s.dataDir, activeFile), list)
}

// LoadSubtask returns the raw payload stored under key, if present.
// A corrupt subtask document is logged and treated as absent.
func (s *Store) LoadSubtask(key string) (json.RawMessage, bool, error) {
	s.subtaskMu.RLock()
	defer s.subtaskMu.RUnlock()

	docs := s.loadSubtasks()
	doc, ok := docs[key]
	return doc, ok, nil
}

// SaveSubtask stores a raw payload under key.
func (s *Store) SaveSubtask(key string, doc json.RawMessage) error {
	s.subtaskMu.Lock()
	defer s.subtaskMu.Unlock()

	docs := s.loadSubtasks()
	docs[key] = doc
	return s.writeJSON(filepath.Join(s.dataDir, subtasksFile), docs)
}

func (s *Store) loadSubtasks() map[string]json.RawMessage {
	path := filepath.Join(s.dataDir, subtasksFile)
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return map[string]json.RawMessage{}
	}

	var docs map[string]json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("subtask document unreadable, treating as empty")
		return map[string]json.RawMessage{}
	}
	return docs
}

// ArchiveAppend appends a completed task to the partition for its completion
// month. The partition file is created lazily on first write and only ever
// grows by appends.
func (s *Store) ArchiveAppend(t task.Task) error {
	s.archiveMu.Lock()
	defer s.archiveMu.Unlock()

	completed := time.Now()
	if t.EndTime != nil {
		completed = *t.EndTime
	}

	path := s.partitionPath(completed.Year(), completed.Month())
	entries := s.loadPartition(path)
	entries = append(entries, t)

	return s.writeJSON(path, entries)
}

// LoadHistory returns archived tasks from the last monthsBack consecutive
// months ending at the current month, flattened oldest month first. Months
// without a partition contribute nothing.
func (s *Store) LoadHistory(monthsBack int) ([]task.Task, error) {
	s.archiveMu.RLock()
	defer s.archiveMu.RUnlock()

	now := time.Now()
	var all []task.Task
	for i := monthsBack - 1; i >= 0; i-- {
		// time.Date normalizes out-of-range months, so January-2 becomes
		// November of the prior year.
		m := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC)
		all = append(all, s.loadPartition(s.partitionPath(m.Year(), m.Month()))...)
	}

	return all, nil
}

func (s *Store) partitionPath(year int, month time.Month) string {
	return filepath.Join(s.dataDir, historyDir, fmt.Sprintf("%04d-%02d.json", year, int(month)))
}

// loadPartition reads one archive partition. Missing or malformed partitions
// yield an empty list; history must stay usable even with a corrupted month.
func (s *Store) loadPartition(path string) []task.Task {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return nil
	}

	var entries []task.Task
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("archive partition unreadable, skipping")
		return nil
	}
	return entries
}

// writeJSON writes a document atomically: marshal to a temp file in the same
// directory, then rename into place. The live file is never truncated and
// streamed into.
func (s *Store) writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(tmp), err)
	}

	return os.Rename(tmp, path)
}
