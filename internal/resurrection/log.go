package resurrection

import (
	"time"

	"reliquary/internal/fileutil"
)

// Actions recorded in the resurrection log.
const (
	ActionInspected = "inspected"
	ActionRestored  = "restored"
	ActionVerified  = "verified"
	ActionArchived  = "archived"
)

// LogEntry is one line of the resurrection log.
type LogEntry struct {
	At     time.Time `json:"at"`
	Path   string    `json:"path"`
	Node   string    `json:"node,omitempty"`
	State  string    `json:"state"`
	Action string    `json:"action"`
	Detail string    `json:"detail,omitempty"`
}

// ReadLog loads the persisted log. A missing log is empty.
func ReadLog(path string) ([]LogEntry, error) {
	var entries []LogEntry
	state, err := fileutil.ReadJSON(path, &entries)
	if state == fileutil.Absent {
		return []LogEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []LogEntry{}
	}
	return entries, nil
}

func appendLog(path string, entries []LogEntry) error {
	if path == "" || len(entries) == 0 {
		return nil
	}
	existing, err := ReadLog(path)
	if err != nil {
		return err
	}
	return fileutil.WriteJSONAtomic(path, append(existing, entries...))
}
