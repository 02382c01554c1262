package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
)

// pipeReads counts Read calls across every pipe source.
var pipeReads atomic.Int64

// The pipe source reads "a|b|c" text files: the first line is the header.
// It lets core tests run the service end to end without the real codecs.
func init() {
	RegisterSource(SourceDefinition{
		Kind:       "pipe",
		Label:      "Pipe-delimited text",
		Schemes:    []string{"pipe"},
		Extensions: []string{".pipe"},
		Open: func(spec SourceSpec) (Source, error) {
			path := strings.TrimPrefix(spec.Location, "pipe://")
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, err
			}
			return &pipeSource{path: abs}, nil
		},
	})
}

type pipeSource struct {
	path   string
	closed atomic.Bool
}

func (p *pipeSource) Handle() string { return "pipe:" + p.path }
func (p *pipeSource) Path() string   { return p.path }

func (p *pipeSource) Close() error {
	p.closed.Store(true)
	return nil
}

func (p *pipeSource) Identity(ctx context.Context) (Identity, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Handle: p.Handle(),
		Marker: strconv.FormatInt(info.Size(), 10) + "-" + strconv.FormatInt(info.ModTime().UnixNano(), 10),
	}, nil
}

func (p *pipeSource) Read(ctx context.Context) (*RawTable, error) {
	pipeReads.Add(1)
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("pipe file has no header")
	}
	raw := &RawTable{Columns: strings.Split(lines[0], "|")}
	for _, line := range lines[1:] {
		cells := strings.Split(line, "|")
		row := make([]any, len(cells))
		for i, c := range cells {
			row[i] = c
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw, nil
}

// writePipe writes a pipe file and returns its path.
func writePipe(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newDataset builds a dataset from text rows.
func newDataset(t *testing.T, columns []string, rows ...[]string) *Dataset {
	t.Helper()
	raw := &RawTable{Columns: columns}
	for _, r := range rows {
		cells := make([]any, len(r))
		for i, c := range r {
			cells[i] = c
		}
		raw.Rows = append(raw.Rows, cells)
	}
	ds, err := LoadDataset(Identity{Handle: "test", Marker: "1"}, raw)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	return ds
}

// names returns the Supplier_Name of every row in a result.
func names(r *FilteredResult) []string {
	out := make([]string, r.Len())
	for i := range out {
		out[i] = r.Dataset().Cell(r.Indices()[i], string(ColSupplierName))
	}
	return out
}
