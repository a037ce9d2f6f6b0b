package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"field-service-compliance/internal/models"
)

// FileSink stores the snapshot as a single JSON document on disk. Saves go
// through a temp file and rename so a crash mid-write never leaves a
// truncated document behind.
type FileSink struct {
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Save(_ context.Context, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: fmt.Errorf("marshal snapshot: %w", err)}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &models.PersistenceError{Op: "save", Err: fmt.Errorf("create %s: %w", dir, err)}
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return &models.PersistenceError{Op: "save", Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "save", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

func (s *FileSink) Load(_ context.Context) (Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: err}
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, &models.PersistenceError{Op: "load", Err: fmt.Errorf("decode snapshot: %w", err)}
	}
	return snap, true, nil
}
