package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists snapshots between process restarts.
type Store interface {
	// Load returns nil, nil when nothing has been persisted yet.
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snapshot *Snapshot) error
}

// NopStore never persists anything, every Open starts with a scrape.
type NopStore struct{}

func (NopStore) Load(context.Context) (*Snapshot, error) {
	return nil, nil
}

func (NopStore) Save(context.Context, *Snapshot) error {
	return nil
}

// FileStore keeps the record as a json file on disk.
type FileStore struct {
	path string
}

func NewFileStore(path string) (FileStore, error) {
	if path == "" {
		return FileStore{}, fmt.Errorf("a path was not specified")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return FileStore{}, err
	}
	return FileStore{path: abs}, nil
}

func (s FileStore) Path() string {
	return s.path
}

func (s FileStore) Load(ctx context.Context) (*Snapshot, error) {
	contents, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	// an empty file is what a crashed first save leaves behind
	if len(contents) == 0 {
		return nil, nil
	}

	var record Record
	err = json.Unmarshal(contents, &record)
	if err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", s.path, err)
	}
	return record.Decode()
}

// Save writes to a temporary file next to the target and renames it into
// place so readers never see a partial record.
func (s FileStore) Save(ctx context.Context, snapshot *Snapshot) error {
	record, err := Encode(snapshot)
	if err != nil {
		return err
	}
	contents, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename succeeded
		_ = os.Remove(tmpName)
	}()

	_, err = tmp.Write(contents)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	err = os.Rename(tmpName, s.path)
	if err != nil {
		return fmt.Errorf("rename %s: %w", tmpName, err)
	}
	return nil
}
