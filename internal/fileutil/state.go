package fileutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"reliquary/internal/services"
)

// State classifies what a read found at a path.
type State int

const (
	// Fatal means the path could not be read for reasons other than absence.
	Fatal State = iota
	// Absent means nothing is stored at the path.
	Absent
	// Corrupt means content exists but does not parse.
	Corrupt
	// Intact means content exists and parsed.
	Intact
)

func (s State) String() string {
	switch s {
	case Absent:
		return "ABSENT"
	case Corrupt:
		return "CORRUPT"
	case Intact:
		return "INTACT"
	default:
		return "IO_FATAL"
	}
}

// ReadFile returns the raw bytes at path along with its State. A zero-length
// file is Corrupt: something was written, but nothing parseable.
func ReadFile(path string) ([]byte, State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, Absent, nil
		}
		return nil, Fatal, services.Wrap(services.ErrIOFatal, "fileutil", "read", path, err)
	}
	if len(data) == 0 {
		return nil, Corrupt, services.Wrap(services.ErrCorruption, "fileutil", "read", path+" is empty", nil)
	}
	return data, Intact, nil
}

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v any) (State, error) {
	data, state, err := ReadFile(path)
	if state != Intact {
		return state, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return Corrupt, services.Wrap(services.ErrCorruption, "fileutil", "parse", path, err)
	}
	return Intact, nil
}

// WriteFileAtomic replaces path with data via a temp file and rename, creating
// parent directories as needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrIOFatal, "fileutil", "write", "create directory "+dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return services.Wrap(services.ErrIOFatal, "fileutil", "write", "temp file "+tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return services.Wrap(services.ErrIOFatal, "fileutil", "write", "rename into "+path, err)
	}
	return nil
}

// WriteJSONAtomic marshals v as indented JSON and replaces path with it.
// Markup in string values is written literally.
func WriteJSONAtomic(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, buf.Bytes(), 0o644)
}
