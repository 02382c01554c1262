package core

// Column is a canonical column name. The set is closed: every canonical
// column is declared below and header synonyms can only resolve to these.
type Column string

const (
	ColSupplierName   Column = "Supplier_Name"
	ColCity           Column = "City"
	ColState          Column = "State"
	ColLocation       Column = "Location"
	ColCategory1      Column = "Category_1"
	ColCategory2      Column = "Category_2"
	ColCategory3      Column = "Category_3"
	ColProductService Column = "Product_Service"
	ColConcat         Column = "Concat"
)

// AllOption is the sentinel option meaning "no constraint".
const AllOption = "All"

// FilterColumns lists the filterable columns in display order.
var FilterColumns = []Column{
	ColSupplierName,
	ColCity,
	ColState,
	ColLocation,
	ColCategory1,
	ColCategory2,
	ColCategory3,
	ColProductService,
}

// filterLabels are the UI labels for each filterable column.
var filterLabels = map[Column]string{
	ColSupplierName:   "Name",
	ColCity:           "City",
	ColState:          "State",
	ColLocation:       "Location",
	ColCategory1:      "Category 1",
	ColCategory2:      "Category 2",
	ColCategory3:      "Category 3",
	ColProductService: "Product",
}

// String returns the canonical column name.
func (c Column) String() string {
	return string(c)
}

// Label returns the display label used by filter controls.
func (c Column) Label() string {
	if l, ok := filterLabels[c]; ok {
		return l
	}
	return string(c)
}

// IsFilterable reports whether c is one of the filterable columns.
func (c Column) IsFilterable() bool {
	_, ok := filterLabels[c]
	return ok
}

// ParseFilterColumn resolves a column name from user input (query string keys,
// form fields) to a filterable column. Matching is case-insensitive and
// accepts any header synonym, so "supplier name" resolves to Supplier_Name.
func ParseFilterColumn(name string) (Column, bool) {
	col, ok := canonicalFor(name)
	if !ok || !col.IsFilterable() {
		return "", false
	}
	return col, true
}
