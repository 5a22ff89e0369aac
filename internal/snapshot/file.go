package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"khakhra/backend/internal/domain"
)

// FileStore persists the snapshot as a JSON file on disk. Writes go through a
// temp file followed by a rename so a crash mid-write cannot leave a
// half-written snapshot behind.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = StorageKey + ".json"
	}
	return &FileStore{path: path}
}

func (s *FileStore) Load(_ context.Context) (*domain.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Malformed file counts as absent: the store falls back to seed data.
		return nil, ErrNotFound
	}
	return &snap, nil
}

func (s *FileStore) Save(_ context.Context, snap *domain.Snapshot) error {
	if snap == nil {
		return nil
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
