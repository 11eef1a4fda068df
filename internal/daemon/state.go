package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1broseidon/edgedock/internal/platform"
)

// State is what the daemon remembers between runs.
type State struct {
	// LastEdge is the most recent non-floating edge; Toggle docks back to it.
	LastEdge  string    `json:"last_edge"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StateStore persists State as JSON at a fixed path.
type StateStore struct {
	path string
}

func NewStateStore(path string) *StateStore {
	return &StateStore{path: path}
}

// Load reads the state file. A missing file yields the zero State.
func (s *StateStore) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, nil
		}
		return State{}, fmt.Errorf("failed to read state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("failed to parse state %s: %w", s.path, err)
	}
	return st, nil
}

// Save writes the state through a temp file and rename.
func (s *StateStore) Save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state: %w", err)
	}
	return nil
}

// Edge returns LastEdge parsed, or EdgeNone when unset or invalid.
func (st State) Edge() platform.Edge {
	edge, err := platform.ParseEdge(st.LastEdge)
	if err != nil {
		return platform.EdgeNone
	}
	return edge
}
