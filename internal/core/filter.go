package core

// filter.go evaluates filter selections and search queries against a Dataset.
//
// Both steps compare against the precomputed shadow columns, never the
// display values:
//
//  1. Equality filters: shadow value == Normalize(selected value)
//  2. Search: every whitespace-separated term must be a substring of the
//     Concat shadow (AND across terms)
//
// Equality filters run first since they are cheaper than substring scans.
// Both are intersections, so the order never changes the result.

import "strings"

// FilterSelection maps filterable columns to a selected display value.
// A missing entry, an empty value or AllOption means "no constraint".
type FilterSelection map[Column]string

// Active returns the constrained columns in FilterColumns order.
func (s FilterSelection) Active() []Column {
	var active []Column
	for _, col := range FilterColumns {
		if isConstraint(s[col]) {
			active = append(active, col)
		}
	}
	return active
}

// isConstraint reports whether a selected value narrows the result.
func isConstraint(value string) bool {
	key := Normalize(value)
	return key != "" && key != Normalize(AllOption)
}

// SearchTerms splits a search query into normalized terms. A blank query
// yields no terms.
func SearchTerms(query string) []string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if t := Normalize(f); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// FilteredResult is the subset of a dataset's rows satisfying a selection
// and query, in original row order. It shares the dataset's storage.
type FilteredResult struct {
	dataset *Dataset
	indices []int
}

// Evaluate returns the rows matching every active filter and every search term.
//
// Columns absent from the dataset are treated as unconstrained. A selected
// value that no row carries (for example, stale UI state after a reload)
// yields an empty result rather than an error.
func (d *Dataset) Evaluate(sel FilterSelection, query string) *FilteredResult {
	indices := make([]int, len(d.rows))
	for i := range indices {
		indices[i] = i
	}

	for _, col := range sel.Active() {
		shadow, ok := d.shadow[col]
		if !ok {
			continue
		}
		want := Normalize(sel[col])
		indices = retain(indices, func(i int) bool {
			return shadow[i] == want
		})
	}

	if terms := SearchTerms(query); len(terms) > 0 {
		blob := d.shadow[ColConcat]
		indices = retain(indices, func(i int) bool {
			for _, term := range terms {
				if !strings.Contains(blob[i], term) {
					return false
				}
			}
			return true
		})
	}

	return &FilteredResult{dataset: d, indices: indices}
}

// retain filters indices in place, keeping order.
func retain(indices []int, keep func(int) bool) []int {
	out := indices[:0]
	for _, i := range indices {
		if keep(i) {
			out = append(out, i)
		}
	}
	return out
}

// Dataset returns the dataset the result was evaluated against.
func (r *FilteredResult) Dataset() *Dataset {
	return r.dataset
}

// Len returns the number of matching rows.
func (r *FilteredResult) Len() int {
	return len(r.indices)
}

// Indices returns the matching row positions in the dataset, ascending.
func (r *FilteredResult) Indices() []int {
	return append([]int(nil), r.indices...)
}

// Columns returns every original column, including Concat.
func (r *FilteredResult) Columns() []string {
	return r.dataset.Columns()
}

// Row returns the i-th matching row aligned with Columns.
func (r *FilteredResult) Row(i int) []string {
	return r.dataset.Row(r.indices[i])
}

// DisplayColumns returns the columns shown to users: every original column
// except the Concat search blob.
func (r *FilteredResult) DisplayColumns() []string {
	cols := make([]string, 0, len(r.dataset.columns))
	for _, c := range r.dataset.columns {
		if c != string(ColConcat) {
			cols = append(cols, c)
		}
	}
	return cols
}

// DisplayRows returns up to limit matching rows aligned with DisplayColumns.
// A limit <= 0 returns every row.
func (r *FilteredResult) DisplayRows(limit int) [][]string {
	n := len(r.indices)
	if limit > 0 && limit < n {
		n = limit
	}

	concatIdx, hasConcat := r.dataset.colIndex[string(ColConcat)]
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		src := r.dataset.rows[r.indices[i]]
		row := make([]string, 0, len(src))
		for j, cell := range src {
			if hasConcat && j == concatIdx {
				continue
			}
			row = append(row, cell)
		}
		rows[i] = row
	}
	return rows
}
