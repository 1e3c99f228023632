// Package cursor persists the id of the last fully processed post.
package cursor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store holds a single cursor value between runs.
type Store interface {
	// Load returns the stored post id, or "" when no prior state exists.
	Load() (string, error)
	// Save durably replaces the stored post id.
	Save(id string) error
}

type record struct {
	LastPostID string `json:"last_post_id"`
}

// FileStore keeps the cursor in a single JSON file. Saves go through a temp
// file in the same directory plus a rename, so a crash mid-save leaves
// either the old value or the new one, never a partial write.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read cursor: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("parse cursor: %w", err)
	}
	return rec.LastPostID, nil
}

func (s *FileStore) Save(id string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.Marshal(record{LastPostID: id})
	if err != nil {
		return fmt.Errorf("marshal cursor: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cursor-*")
	if err != nil {
		return fmt.Errorf("create temp cursor: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cursor: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync cursor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp cursor: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cursor: %w", err)
	}
	return nil
}
