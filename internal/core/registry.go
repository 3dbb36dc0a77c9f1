package core

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor is the type-erased view of a schema held by the registry.
// *Schema[R] satisfies it for every record type R.
type Descriptor interface {
	Name() string
	Header() string
	Columns() []ColumnInfo
	// Decode parses a document and returns its Collection and record count.
	Decode(text string) (any, int, error)
}

var (
	registry   = make(map[string]Descriptor)
	registryMu sync.RWMutex
)

// Register adds a schema to the registry.
// Panics if a schema with the same name is already registered.
func Register(d Descriptor) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[d.Name()]; exists {
		panic(fmt.Sprintf("schema already registered: %s", d.Name()))
	}
	registry[d.Name()] = d
}

// Get returns a schema by name.
// Returns false if not found.
func Get(name string) (Descriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	d, ok := registry[name]
	return d, ok
}

// All returns all registered schemas sorted by name.
func All() []Descriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		result = append(result, d)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})

	return result
}

// Count returns the number of registered schemas.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered schemas.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Descriptor)
}
