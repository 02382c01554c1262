package core

// header.go reconciles human-authored column headers with the canonical schema.
//
// Source spreadsheets are maintained by hand, so the same column shows up as
// "Supplier Name", "supplier_name", "SupplierName" or "SUPPLIER-NAME". Every
// label is reduced to a key (see NormalizeLabel) and looked up in a static
// synonym table. Labels without a synonym pass through unrenamed and become
// ordinary, non-filterable columns.

import (
	"regexp"
	"strings"
)

// nonAlnumRun matches runs of characters that are not lowercase ASCII letters or digits.
var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// headerSynonyms maps normalized header keys to canonical columns.
var headerSynonyms = map[string]Column{
	"supplier_name": ColSupplierName,
	"suppliername":  ColSupplierName,

	"city":     ColCity,
	"state":    ColState,
	"location": ColLocation,

	"product_service":  ColProductService,
	"productservice":   ColProductService,
	"product_services": ColProductService,
	"product":          ColProductService,
	"service":          ColProductService,

	"category_1": ColCategory1,
	"category1":  ColCategory1,
	"category_2": ColCategory2,
	"category2":  ColCategory2,
	"category_3": ColCategory3,
	"category3":  ColCategory3,

	"concat":      ColConcat,
	"search_blob": ColConcat,
	"search":      ColConcat,
}

// NormalizeLabel reduces a raw header label to its lookup key: trimmed,
// lowercased, with every run of non-alphanumeric characters collapsed to a
// single underscore and leading/trailing underscores removed.
//
//	NormalizeLabel("  Supplier Name ") == "supplier_name"
//	NormalizeLabel("Category #1")      == "category_1"
func NormalizeLabel(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = nonAlnumRun.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// canonicalFor returns the canonical column for a raw label, if any.
func canonicalFor(label string) (Column, bool) {
	col, ok := headerSynonyms[NormalizeLabel(label)]
	return col, ok
}

// HeaderCollision records a raw label that resolved to a canonical column
// already claimed by an earlier label.
type HeaderCollision struct {
	Label     string // Raw label that lost
	Column    Column // Canonical column both labels resolve to
	ClaimedBy string // Raw label that kept the canonical name
}

// HeaderMapping is the result of canonicalizing a header row. It is
// positional: Columns[i] is the canonical column given to Labels[i], or ""
// when the label keeps its raw text.
type HeaderMapping struct {
	Labels  []string
	Columns []Column

	// Collisions lists labels that could not be renamed because an earlier
	// label already claimed the same canonical column.
	Collisions []HeaderCollision
}

// Name returns the column name the i-th label is loaded under.
func (m HeaderMapping) Name(i int) string {
	if m.Columns[i] != "" {
		return string(m.Columns[i])
	}
	return m.Labels[i]
}

// Renames returns the raw label to canonical column renaming.
func (m HeaderMapping) Renames() map[string]Column {
	renames := make(map[string]Column, len(m.Labels))
	for i, label := range m.Labels {
		if m.Columns[i] != "" {
			renames[label] = m.Columns[i]
		}
	}
	return renames
}

// CanonicalizeHeaders maps raw column labels to canonical column names.
//
// The first label (in source order) that resolves to a canonical column
// claims it. Later labels resolving to the same column are not renamed and
// are reported in Collisions, so no data is silently dropped.
func CanonicalizeHeaders(labels []string) HeaderMapping {
	m := HeaderMapping{
		Labels:  labels,
		Columns: make([]Column, len(labels)),
	}
	claimed := make(map[Column]string)

	for i, label := range labels {
		col, ok := canonicalFor(label)
		if !ok {
			continue
		}
		if owner, taken := claimed[col]; taken {
			m.Collisions = append(m.Collisions, HeaderCollision{
				Label:     label,
				Column:    col,
				ClaimedBy: owner,
			})
			continue
		}
		claimed[col] = label
		m.Columns[i] = col
	}

	return m
}
