package core

// dataset.go builds the immutable, text-only Dataset from a decoded source.
//
// The build runs once per source identity (see DatasetCache) and performs, in
// order: header canonicalization, cell coercion, search blob provisioning,
// shadow index construction and option enumeration. Nothing is mutated
// afterwards, so a *Dataset can be shared by any number of readers.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// RawTable is a decoded but untyped table as produced by a source codec.
// Rows are aligned with Columns by position; a row may be shorter (missing
// trailing cells) or longer (unlabeled trailing cells) than the header.
type RawTable struct {
	Columns []string
	Rows    [][]any
}

// Identity identifies one version of a source: the handle names the source,
// the marker changes whenever its content does (size/mtime, row counters).
type Identity struct {
	Handle string `json:"handle"`
	Marker string `json:"marker"`
}

// Key returns the cache key for this identity.
func (id Identity) Key() string {
	return id.Handle + "@" + id.Marker
}

// Dataset is an ordered set of text rows sharing a fixed ordered column set.
// It is immutable after LoadDataset returns.
type Dataset struct {
	identity Identity
	columns  []string
	colIndex map[string]int
	rows     [][]string

	shadow   map[Column][]string
	options  map[Column]OptionList
	warnings []Warning

	loadedAt     time.Time
	loadDuration time.Duration
}

// LoadDataset builds a Dataset from a decoded source table.
//
// It fails only when raw is nil (the source could not be enumerated);
// individual cells never cause an error.
func LoadDataset(id Identity, raw *RawTable) (*Dataset, error) {
	if raw == nil {
		return nil, sourceUnavailable(id.Handle, fmt.Errorf("no rows decoded"))
	}
	start := time.Now()

	labels := widenLabels(raw)
	mapping := CanonicalizeHeaders(labels)

	ds := &Dataset{
		identity: id,
		columns:  make([]string, 0, len(labels)+1),
		colIndex: make(map[string]int, len(labels)+1),
		rows:     make([][]string, len(raw.Rows)),
	}

	for i := range labels {
		ds.addColumn(mapping.Name(i))
	}
	for _, c := range mapping.Collisions {
		ds.warnings = append(ds.warnings, Warning{
			Kind:   WarningHeaderCollision,
			Column: string(c.Column),
			Message: fmt.Sprintf("columns %q and %q both map to %s; %q was loaded under its original name",
				c.ClaimedBy, c.Label, c.Column, c.Label),
		})
	}

	width := len(ds.columns)
	for i, rawRow := range raw.Rows {
		row := make([]string, width)
		for j := 0; j < width && j < len(rawRow); j++ {
			row[j] = CellText(rawRow[j])
		}
		ds.rows[i] = row
	}

	ds.ensureConcat()
	ds.buildShadow()
	ds.buildOptions()

	ds.loadedAt = time.Now()
	ds.loadDuration = ds.loadedAt.Sub(start)
	return ds, nil
}

// widenLabels returns the header labels, extended with "Unnamed: N" labels
// when some row carries more cells than the header names.
func widenLabels(raw *RawTable) []string {
	labels := append([]string(nil), raw.Columns...)
	for _, row := range raw.Rows {
		for len(labels) < len(row) {
			labels = append(labels, "Unnamed: "+strconv.Itoa(len(labels)))
		}
	}
	return labels
}

// addColumn appends a column, suffixing ".1", ".2", ... when the name is
// already taken so that every column name in a dataset is unique.
func (d *Dataset) addColumn(name string) {
	unique := name
	for n := 1; ; n++ {
		if _, taken := d.colIndex[unique]; !taken {
			break
		}
		unique = name + "." + strconv.Itoa(n)
	}
	d.colIndex[unique] = len(d.columns)
	d.columns = append(d.columns, unique)
}

// CellText coerces a decoded cell to text. Absent cells become "".
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// ensureConcat guarantees the Concat search blob column exists. A Concat
// column from the source is trusted verbatim; otherwise one is synthesized by
// joining every column's text with a single space.
func (d *Dataset) ensureConcat() {
	if d.HasColumn(string(ColConcat)) {
		return
	}

	width := len(d.columns)
	if width == 0 {
		d.warnings = append(d.warnings, Warning{
			Kind:    WarningSchemaIncomplete,
			Column:  string(ColConcat),
			Message: "dataset has no columns; search blob is empty",
		})
	}

	d.addColumn(string(ColConcat))
	for i, row := range d.rows {
		d.rows[i] = append(row, strings.Join(row[:width], " "))
	}
}

// Normalize is the shadow normalization: surrounding whitespace trimmed and
// case folded to lower. It is idempotent.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// buildShadow precomputes the normalized value of every present filterable
// column and of Concat, parallel to the source rows.
func (d *Dataset) buildShadow() {
	d.shadow = make(map[Column][]string, len(FilterColumns)+1)

	cols := append(append([]Column(nil), FilterColumns...), ColConcat)
	for _, col := range cols {
		idx, ok := d.colIndex[string(col)]
		if !ok {
			continue
		}
		values := make([]string, len(d.rows))
		for i, row := range d.rows {
			values[i] = Normalize(row[idx])
		}
		d.shadow[col] = values
	}
}

// buildOptions precomputes the option list of every filterable column.
func (d *Dataset) buildOptions() {
	d.options = make(map[Column]OptionList, len(FilterColumns))
	for _, col := range FilterColumns {
		d.options[col] = EnumerateOptions(d, col)
	}
}

// Identity returns the source identity the dataset was built from.
func (d *Dataset) Identity() Identity {
	return d.identity
}

// Columns returns the ordered column names, including Concat.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// HasColumn reports whether the dataset has a column with this exact name.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.colIndex[name]
	return ok
}

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int {
	return len(d.rows)
}

// Row returns a copy of the i-th row, aligned with Columns.
func (d *Dataset) Row(i int) []string {
	return append([]string(nil), d.rows[i]...)
}

// Cell returns the text of a cell, or "" if the column is absent.
func (d *Dataset) Cell(i int, column string) string {
	idx, ok := d.colIndex[column]
	if !ok {
		return ""
	}
	return d.rows[i][idx]
}

// Shadow returns the normalized values of a column, or nil if the column has
// no shadow (absent, or not filterable and not Concat).
func (d *Dataset) Shadow(col Column) []string {
	return d.shadow[col]
}

// Warnings returns the recoverable conditions found during the build.
func (d *Dataset) Warnings() []Warning {
	return append([]Warning(nil), d.warnings...)
}

// LoadedAt returns when the build finished.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// LoadDuration returns how long the build took, excluding source I/O.
func (d *Dataset) LoadDuration() time.Duration {
	return d.loadDuration
}
