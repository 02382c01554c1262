package core

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Source is a dataset origin. Handle is constant for the life of the source;
// Identity must be cheap (a stat or a counter query); Read performs the full
// decode and is only called on cache misses.
type Source interface {
	Handle() string
	Identity(ctx context.Context) (Identity, error)
	Read(ctx context.Context) (*RawTable, error)
	Close() error
}

// FileBacked is implemented by sources that read a local file, so that the
// file can be watched for changes.
type FileBacked interface {
	Path() string
}

// SourceSpec locates a dataset. Location is a file path or a URL; Sheet
// selects a workbook sheet and Table a database table where relevant.
type SourceSpec struct {
	Location string
	Sheet    string
	Table    string
	Pool     PoolOptions
}

// PoolOptions configures connection pools of database-backed sources.
// Zero values keep the driver defaults.
type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// OpenFunc creates a source for a spec. It must not perform I/O beyond
// argument validation; connections are opened lazily.
type OpenFunc func(spec SourceSpec) (Source, error)

// SourceDefinition describes a source type.
type SourceDefinition struct {
	Kind       string   // Unique identifier: "xlsx", "csv", "sqlite", "postgres"
	Label      string   // Display name
	Schemes    []string // URL schemes handled, without "://"
	Extensions []string // File extensions handled, including the dot
	Open       OpenFunc
}

var (
	registry   = make(map[string]SourceDefinition)
	registryMu sync.RWMutex
)

// RegisterSource adds a source definition to the registry.
// Panics if a source with the same kind is already registered.
func RegisterSource(def SourceDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Kind]; exists {
		panic(fmt.Sprintf("source already registered: %s", def.Kind))
	}

	registry[def.Kind] = def
}

// GetSource returns a source definition by kind.
// Returns false if not found.
func GetSource(kind string) (SourceDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[kind]
	return def, ok
}

// ResolveSource finds the source definition handling a location, first by
// URL scheme, then by file extension.
func ResolveSource(location string) (SourceDefinition, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if scheme, _, ok := strings.Cut(location, "://"); ok {
		scheme = strings.ToLower(scheme)
		for _, def := range registry {
			for _, s := range def.Schemes {
				if s == scheme {
					return def, nil
				}
			}
		}
		return SourceDefinition{}, fmt.Errorf("%w: scheme %q", ErrUnknownSource, scheme)
	}

	ext := strings.ToLower(filepath.Ext(location))
	for _, def := range registry {
		for _, e := range def.Extensions {
			if e == ext {
				return def, nil
			}
		}
	}
	return SourceDefinition{}, fmt.Errorf("%w: extension %q", ErrUnknownSource, ext)
}

// AllSources returns all registered source definitions, sorted by kind.
func AllSources() []SourceDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]SourceDefinition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Kind < result[j].Kind
	})

	return result
}

// UploadExtensions returns the file extensions accepted for uploads: those
// of every registered file-based source, sorted.
func UploadExtensions() []string {
	var exts []string
	for _, def := range AllSources() {
		exts = append(exts, def.Extensions...)
	}
	sort.Strings(exts)
	return exts
}

// SourceCount returns the number of registered sources.
func SourceCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
