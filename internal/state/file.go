package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	adperrors "github.com/adp-project/adp/pkg/errors"
)

// CorruptMode selects how NewFileState treats an unparsable backing file.
type CorruptMode int

const (
	// CorruptStartEmpty silently discards the corrupt file's contents and
	// starts from an empty map.
	CorruptStartEmpty CorruptMode = iota
	// CorruptFail makes NewFileState return a StateCorruptError instead.
	CorruptFail
)

// FileState is a JSON file-backed key/value store. The backing file holds a
// single top-level JSON object. Get and Set operate in-memory only; Save
// serializes the full map back to disk, creating parent directories.
type FileState struct {
	path string
	data map[string]any
}

// NewFileState loads the backing file at path if it exists. A missing file
// is not an error. Deserialization failures are handled per mode.
func NewFileState(path string, mode CorruptMode) (*FileState, error) {
	s := &FileState{path: path, data: make(map[string]any)}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		if mode == CorruptFail {
			return nil, &adperrors.StateCorruptError{Path: path, Err: err}
		}
		s.data = make(map[string]any)
	}
	return s, nil
}

// Get returns the stored value for key.
func (s *FileState) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key. The value must be JSON-serializable for Save
// to succeed.
func (s *FileState) Set(key string, value any) {
	s.data[key] = value
}

// Save writes the full map to the backing file atomically.
func (s *FileState) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then rename into place.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

var _ State = (*FileState)(nil)
