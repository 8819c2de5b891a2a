package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/megafile/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps dot-keyed settings in memory.
// Used by tests and by --ephemeral runs that must not touch the home directory.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates a config store seeded with the given values.
func NewConfigStore(seed ...map[string]any) *ConfigStore {
	s := &ConfigStore{values: make(map[string]any)}
	for _, m := range seed {
		maps.Copy(s.values, m)
	}
	return s
}

// Get returns the raw value stored under key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

func (s *ConfigStore) GetString(key string) string {
	return lookup(s, key, func(v any) (string, bool) {
		str, ok := v.(string)
		return str, ok
	})
}

// GetInt accepts any integer or float value; floats are truncated.
func (s *ConfigStore) GetInt(key string) int {
	return lookup(s, key, func(v any) (int, bool) {
		f, ok := number(v)
		return int(f), ok
	})
}

func (s *ConfigStore) GetFloat(key string) float64 {
	return lookup(s, key, number)
}

func (s *ConfigStore) GetBool(key string) bool {
	return lookup(s, key, func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// GetStringSlice drops non-string elements of a mixed slice.
func (s *ConfigStore) GetStringSlice(key string) []string {
	return lookup(s, key, func(v any) ([]string, bool) {
		switch items := v.(type) {
		case []string:
			return items, true
		case []any:
			out := make([]string, 0, len(items))
			for _, item := range items {
				if str, ok := item.(string); ok {
					out = append(out, str)
				}
			}
			return out, true
		}
		return nil, false
	})
}

// Set stores value under key.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Save is a no-op; values live only as long as the process.
func (s *ConfigStore) Save() error { return nil }

// Load is a no-op.
func (s *ConfigStore) Load() error { return nil }

// Path reports a pseudo path for display.
func (s *ConfigStore) Path() string { return ":memory:" }

// lookup converts the value under key, returning the zero value when the key
// is missing or has another type.
func lookup[T any](s *ConfigStore, key string, convert func(any) (T, bool)) T {
	var zero T
	val, ok := s.Get(key)
	if !ok {
		return zero
	}
	if out, ok := convert(val); ok {
		return out
	}
	return zero
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
