// Package sources registers the dataset source types and export writers with
// the core registries. Import it for side effects:
//
//	import _ "github.com/JonMunkholm/supplierdash/internal/core/sources"
//
// Each file uses init() to register one source type or writer.
package sources

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/supplierdash/internal/core"
)

// fileSource holds what every local-file source shares: a path, a handle
// derived from it, and a size+mtime identity.
type fileSource struct {
	path   string
	handle string
}

func newFileSource(kind, location string) (fileSource, error) {
	if location == "" {
		return fileSource{}, fmt.Errorf("%s source: empty path", kind)
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return fileSource{}, fmt.Errorf("%s source: %w", kind, err)
	}
	return fileSource{path: abs, handle: kind + ":" + abs}, nil
}

func (f fileSource) Handle() string { return f.handle }

// Path implements core.FileBacked.
func (f fileSource) Path() string { return f.path }

// Identity stats the file. The marker changes whenever the file is
// rewritten (size or modification time).
func (f fileSource) Identity(ctx context.Context) (core.Identity, error) {
	if err := ctx.Err(); err != nil {
		return core.Identity{}, err
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return core.Identity{}, err
	}
	if info.IsDir() {
		return core.Identity{}, fmt.Errorf("%s is a directory", f.path)
	}
	marker := strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10)
	return core.Identity{Handle: f.handle, Marker: marker}, nil
}

func (f fileSource) Close() error { return nil }

// checkContext returns ctx.Err() every core.ContextCheckInterval rows.
func checkContext(ctx context.Context, row int) error {
	if core.ContextCheckInterval > 0 && row%core.ContextCheckInterval == 0 {
		return ctx.Err()
	}
	return nil
}

// isEmptyRow reports whether every cell is blank.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// toAny widens a text row for core.RawTable.
func toAny(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
