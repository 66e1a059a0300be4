// Package behavior holds the tunable parameters the heuristics consult:
// a global scope plus an optional per-unit scope that overrides it.
package behavior

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Global addresses the global scope directly.
const Global = math.MinInt32

// Store is read by every heuristic and written only by the unit currently
// being processed (memoised decisions, caution counter).
type Store struct {
	global map[string]any
	units  map[int]map[string]any
}

// NewStore returns a store seeded with Defaults.
func NewStore() *Store {
	return &Store{
		global: Defaults(),
		units:  make(map[int]map[string]any),
	}
}

type file struct {
	Global map[string]any         `yaml:"global"`
	Units  map[int]map[string]any `yaml:"units"`
}

// Load reads a YAML behaviour file on top of the defaults.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read behavior file: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse behavior file %s: %w", path, err)
	}
	s := NewStore()
	for k, v := range f.Global {
		s.SetGlobal(k, v)
	}
	for id, vars := range f.Units {
		for k, v := range vars {
			s.Set(id, k, v)
		}
	}
	return s, nil
}

func (s *Store) SetGlobal(name string, v any) {
	s.global[name] = v
}

// Set writes into a unit's scope.
func (s *Store) Set(unitID int, name string, v any) {
	if unitID == Global {
		s.SetGlobal(name, v)
		return
	}
	scope, ok := s.units[unitID]
	if !ok {
		scope = make(map[string]any)
		s.units[unitID] = scope
	}
	scope[name] = v
}

// Lookup resolves name in the unit scope, then the global scope.
func (s *Store) Lookup(unitID int, name string) (any, bool) {
	if scope, ok := s.units[unitID]; ok {
		if v, ok := scope[name]; ok {
			return v, true
		}
	}
	v, ok := s.global[name]
	return v, ok
}

// ClearUnit drops a unit's overrides, e.g. after it is destroyed.
func (s *Store) ClearUnit(unitID int) {
	delete(s.units, unitID)
}

// Float returns the value as float64, or 0 when unset or not numeric.
func (s *Store) Float(unitID int, name string) float64 {
	v, _ := s.Lookup(unitID, name)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

// Int returns the value as int, truncating floats, or 0 when unset.
func (s *Store) Int(unitID int, name string) int {
	v, _ := s.Lookup(unitID, name)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case float32:
		return int(n)
	}
	return 0
}

func (s *Store) Bool(unitID int, name string) bool {
	v, _ := s.Lookup(unitID, name)
	b, _ := v.(bool)
	return b
}
