package core

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestLoadDataset_NilSource(t *testing.T) {
	_, err := LoadDataset(Identity{Handle: "xlsx:/data/excel.xlsx"}, nil)
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestLoadDataset_Shape(t *testing.T) {
	raw := &RawTable{
		Columns: []string{"Supplier Name", "City", "Phone", "Phone"},
		Rows: [][]any{
			{"Acme Co", "Dayton", "555", "556"},
			{"Short Row"},
			{"Wide", "Reno", "1", "2", "extra"},
		},
	}
	ds, err := LoadDataset(Identity{Handle: "h", Marker: "m"}, raw)
	if err != nil {
		t.Fatal(err)
	}

	wantCols := []string{"Supplier_Name", "City", "Phone", "Phone.1", "Unnamed: 4", "Concat"}
	if !reflect.DeepEqual(ds.Columns(), wantCols) {
		t.Errorf("columns = %v, want %v", ds.Columns(), wantCols)
	}
	if ds.NumRows() != 3 {
		t.Fatalf("rows = %d", ds.NumRows())
	}

	short := ds.Row(1)
	if short[0] != "Short Row" || short[1] != "" || short[4] != "" {
		t.Errorf("short row = %q", short)
	}
	if got := ds.Cell(2, "Unnamed: 4"); got != "extra" {
		t.Errorf("unlabelled cell = %q", got)
	}
	if got := ds.Cell(0, "Missing"); got != "" {
		t.Errorf("absent column cell = %q", got)
	}
	if ds.Identity().Key() != "h@m" {
		t.Errorf("identity key = %q", ds.Identity().Key())
	}
}

func TestLoadDataset_ConcatSynthesized(t *testing.T) {
	ds := newDataset(t, []string{"Supplier Name", "State"}, []string{"Acme Co", "OH"})
	if got := ds.Cell(0, "Concat"); got != "Acme Co OH" {
		t.Errorf("Concat = %q, want %q", got, "Acme Co OH")
	}
	if got := ds.Shadow(ColConcat)[0]; got != "acme co oh" {
		t.Errorf("Concat shadow = %q", got)
	}
	if len(ds.Warnings()) != 0 {
		t.Errorf("warnings = %v", ds.Warnings())
	}
}

func TestLoadDataset_ConcatTrusted(t *testing.T) {
	ds := newDataset(t, []string{"Supplier Name", "Concat"}, []string{"Acme Co", "stale blob"})
	if got := ds.Cell(0, "Concat"); got != "stale blob" {
		t.Errorf("Concat = %q, want source value", got)
	}
	if n := len(ds.Columns()); n != 2 {
		t.Errorf("columns = %v", ds.Columns())
	}
}

func TestLoadDataset_NoColumns(t *testing.T) {
	ds, err := LoadDataset(Identity{Handle: "h"}, &RawTable{})
	if err != nil {
		t.Fatal(err)
	}
	warnings := ds.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != WarningSchemaIncomplete {
		t.Fatalf("warnings = %v", warnings)
	}
	if !ds.HasColumn("Concat") {
		t.Error("empty Concat column not substituted")
	}
	if r := ds.Evaluate(nil, "anything"); r.Len() != 0 {
		t.Errorf("search on empty dataset = %d rows", r.Len())
	}
}

func TestLoadDataset_HeaderCollision(t *testing.T) {
	ds := newDataset(t, []string{"Product", "Service"}, []string{"Bolts", "Machining"})
	warnings := ds.Warnings()
	if len(warnings) != 1 || warnings[0].Kind != WarningHeaderCollision {
		t.Fatalf("warnings = %v", warnings)
	}
	if !strings.Contains(warnings[0].Message, `"Service"`) {
		t.Errorf("message = %q", warnings[0].Message)
	}
	if ds.Cell(0, "Product_Service") != "Bolts" || ds.Cell(0, "Service") != "Machining" {
		t.Errorf("row = %v", ds.Row(0))
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", " Acme ", " Acme "},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"bytes", []byte("raw"), "raw"},
		{"date", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), "2024-03-09"},
		{"datetime", time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC), "2024-03-09 14:05:06"},
		{"zero time", time.Time{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CellText(tt.in); got != tt.want {
				t.Errorf("CellText(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"", "  ", "Acme Co", "  ACME co  ", "\tDayton\n", "Ünïcode Ltd", "ALL"}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestDataset_AccessorsCopy(t *testing.T) {
	ds := newDataset(t, []string{"Supplier Name"}, []string{"Acme Co"})

	cols := ds.Columns()
	cols[0] = "mutated"
	row := ds.Row(0)
	row[0] = "mutated"

	if ds.Columns()[0] != "Supplier_Name" || ds.Row(0)[0] != "Acme Co" {
		t.Error("accessors leaked internal slices")
	}
	if ds.LoadedAt().IsZero() {
		t.Error("LoadedAt not set")
	}
}
