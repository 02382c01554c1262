package core

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// ExportFileBase is the base name of downloaded export files.
const ExportFileBase = "Supplier_Dashboard_Results"

// ExportTable is an export-ready copy of a filtered result: every original
// column (Concat included) in original order, rows in original order.
type ExportTable struct {
	Columns []string
	Rows    [][]string
}

// Export materializes a filtered result for a spreadsheet writer. No
// normalization or filtering is reapplied. An empty result returns
// ErrExportEmpty and no table.
func Export(result *FilteredResult) (*ExportTable, error) {
	if result == nil || result.Len() == 0 {
		return nil, ErrExportEmpty
	}

	t := &ExportTable{
		Columns: result.Columns(),
		Rows:    make([][]string, result.Len()),
	}
	for i := range t.Rows {
		t.Rows[i] = result.Row(i)
	}
	return t, nil
}

// WriteFunc serializes an export table to w.
type WriteFunc func(w io.Writer, t *ExportTable) error

// WriterDefinition describes an export file format.
type WriterDefinition struct {
	Format      string // Unique key: "xlsx", "csv"
	Extension   string // File extension including the dot
	ContentType string
	Write       WriteFunc
}

// FileName returns the download file name for this format.
func (w WriterDefinition) FileName() string {
	return ExportFileBase + w.Extension
}

var (
	writers   = make(map[string]WriterDefinition)
	writersMu sync.RWMutex
)

// RegisterWriter adds an export format.
// Panics if a writer with the same format is already registered.
func RegisterWriter(def WriterDefinition) {
	writersMu.Lock()
	defer writersMu.Unlock()

	key := strings.ToLower(def.Format)
	if _, exists := writers[key]; exists {
		panic(fmt.Sprintf("export writer already registered: %s", def.Format))
	}
	writers[key] = def
}

// GetWriter returns the writer for a format.
func GetWriter(format string) (WriterDefinition, error) {
	writersMu.RLock()
	defer writersMu.RUnlock()

	def, ok := writers[strings.ToLower(format)]
	if !ok {
		return WriterDefinition{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return def, nil
}

// WriterFormats returns every registered format, sorted.
func WriterFormats() []string {
	writersMu.RLock()
	defer writersMu.RUnlock()

	formats := make([]string, 0, len(writers))
	for f := range writers {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
