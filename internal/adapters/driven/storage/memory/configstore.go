package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory driven.ConfigStore for tests. Values are
// normalised the way a TOML round trip would: integers become int64 and
// string slices become []any.
type ConfigStore struct {
	mu       sync.RWMutex
	values   map[string]any
	watchers []func()
	saves    int
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

// Get retrieves a configuration value by key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.values[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	n, _ := val.(int64)
	return int(n)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	b, _ := val.(bool)
	return b
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, _ := s.Get(key)
	items, ok := val.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if str, ok := it.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Set stores a configuration value and counts as a save.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	s.values[key] = normalise(value)
	s.saves++
	s.mu.Unlock()
	return nil
}

func normalise(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	default:
		return v
	}
}

// Save counts a save; nothing is persisted.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return nil
}

// Saves returns how many times the store was written.
func (s *ConfigStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

// Load is a no-op.
func (s *ConfigStore) Load() error {
	return nil
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return ":memory:"
}

// Watch registers onChange and blocks until ctx is cancelled. Touch
// triggers the registered callbacks.
func (s *ConfigStore) Watch(ctx context.Context, onChange func()) error {
	s.mu.Lock()
	s.watchers = append(s.watchers, onChange)
	s.mu.Unlock()
	<-ctx.Done()
	return nil
}

// Touch simulates an external change of the configuration.
func (s *ConfigStore) Touch() {
	s.mu.RLock()
	watchers := append([]func(){}, s.watchers...)
	s.mu.RUnlock()
	for _, fn := range watchers {
		if fn != nil {
			fn()
		}
	}
}
