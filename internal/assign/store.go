// Package assign persists unit-to-strategy bindings in a small JSON
// file so operator reassignments survive a restart.
package assign

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type fileFormat struct {
	Default     string            `json:"default"`
	Assignments map[string]string `json:"assignments"`
}

// Store maps unit ids to strategy ids, backed by a JSON file. The zero
// assignment falls through to the default. Safe for concurrent use:
// the tick loop reads while the control surface writes.
type Store struct {
	mu   sync.RWMutex
	path string
	def  string
	data map[string]string
}

// New loads the store from path, creating an empty one when the file
// does not exist yet. defaultID is used until an operator overrides it.
func New(path, defaultID string) (*Store, error) {
	s := &Store{
		path: path,
		def:  defaultID,
		data: make(map[string]string),
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read assignments %s: %w", path, err)
	}
	var f fileFormat
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse assignments %s: %w", path, err)
	}
	if f.Default != "" {
		s.def = f.Default
	}
	if f.Assignments != nil {
		s.data = f.Assignments
	}
	return s, nil
}

// StrategyFor returns the binding for unitID, or the default.
func (s *Store) StrategyFor(unitID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.data[unitID]; ok && id != "" {
		return id
	}
	return s.def
}

// Default returns the current default strategy id.
func (s *Store) Default() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.def
}

// SetFor binds unitID to strategyID and persists. An empty strategyID
// clears the binding back to the default.
func (s *Store) SetFor(unitID, strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strategyID == "" {
		delete(s.data, unitID)
	} else {
		s.data[unitID] = strategyID
	}
	return s.saveLocked()
}

// SetDefault replaces the default strategy id and persists.
func (s *Store) SetDefault(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.def = strategyID
	return s.saveLocked()
}

// Dump returns a copy of all explicit bindings.
func (s *Store) Dump() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

// saveLocked writes the file atomically; callers hold the write lock.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	f := fileFormat{Default: s.def, Assignments: s.data}
	raw, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode assignments: %w", err)
	}
	tmp := s.path + ".tmp"
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create assignments dir: %w", err)
		}
	}
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write assignments: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace assignments: %w", err)
	}
	return nil
}
