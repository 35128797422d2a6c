package file

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/polydb-cli/internal/core/ports/driven"
	"github.com/custodia-labs/polydb-cli/internal/polytype"
)

// Ensure TypeRegistry implements the interface.
var _ driven.TypeRegistry = (*TypeRegistry)(nil)

// TypesFile is the name of the user type overrides inside the config directory.
const TypesFile = "types.toml"

// AnyCollection is the table whose entries apply to every collection.
const AnyCollection = "*"

//go:embed defaults/types.toml
var defaultTypes []byte

// typeTable maps collection -> property -> signature.
type typeTable map[string]map[string]string

// TypeRegistry resolves property type signatures from embedded defaults
// overlaid with the user's types.toml. Entries for a specific collection
// take precedence over entries under ["*"].
type TypeRegistry struct {
	mu       sync.RWMutex
	filePath string
	defaults typeTable
	types    typeTable
}

// NewTypeRegistry creates a registry reading overrides from configDir.
// If configDir is empty, defaults to ~/.polydb/types.toml. A missing
// overrides file is not an error.
func NewTypeRegistry(configDir string) (*TypeRegistry, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	defaults, err := parseTypes(defaultTypes, "embedded types")
	if err != nil {
		return nil, err
	}
	r := &TypeRegistry{
		filePath: filepath.Join(configDir, TypesFile),
		defaults: defaults,
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-reads the overrides file.
func (r *TypeRegistry) Reload() error {
	merged := make(typeTable, len(r.defaults))
	merged.overlay(r.defaults)

	data, err := os.ReadFile(r.filePath)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("reading %s: %w", r.filePath, err)
	default:
		user, err := parseTypes(data, r.filePath)
		if err != nil {
			return err
		}
		merged.overlay(user)
	}

	r.mu.Lock()
	r.types = merged
	r.mu.Unlock()
	return nil
}

// Lookup returns the signature of field in collection.
func (r *TypeRegistry) Lookup(collection, field string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if sig, ok := r.types[collection][field]; ok {
		return sig, true
	}
	sig, ok := r.types[AnyCollection][field]
	return sig, ok
}

// Fields returns every signature known for collection, including those
// under ["*"].
func (r *TypeRegistry) Fields(collection string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string)
	for f, sig := range r.types[AnyCollection] {
		out[f] = sig
	}
	for f, sig := range r.types[collection] {
		out[f] = sig
	}
	return out
}

// Collections returns the collections with explicit entries, sorted.
func (r *TypeRegistry) Collections() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.types))
	for c := range r.types {
		if c != AnyCollection {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

// Path returns the overrides file path.
func (r *TypeRegistry) Path() string {
	return r.filePath
}

// Watch reloads the overrides whenever the file changes and then calls
// onChange. It blocks until ctx is done.
func (r *TypeRegistry) Watch(ctx context.Context, onChange func()) error {
	return watchFile(ctx, r.filePath, r.Reload, onChange)
}

// parseTypes decodes a types file and checks every signature.
func parseTypes(data []byte, source string) (typeTable, error) {
	var t typeTable
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", source, err)
	}
	for coll, fields := range t {
		for field, sig := range fields {
			if _, err := polytype.Parse(sig); err != nil {
				return nil, fmt.Errorf("%s: [%s] %s: %w", source, coll, field, err)
			}
		}
	}
	return t, nil
}

func (t typeTable) overlay(o typeTable) {
	for coll, fields := range o {
		m, ok := t[coll]
		if !ok {
			m = make(map[string]string, len(fields))
			t[coll] = m
		}
		for f, sig := range fields {
			m[f] = sig
		}
	}
}
