package core

import (
	"errors"
	"slices"
	"testing"
)

func TestResolveSource(t *testing.T) {
	tests := []struct {
		location string
		kind     string
		wantErr  bool
	}{
		{"data/suppliers.pipe", "pipe", false},
		{"DATA/SUPPLIERS.PIPE", "pipe", false},
		{"pipe://data/suppliers", "pipe", false},
		{"PIPE://data/suppliers", "pipe", false},
		{"ftp://host/suppliers.pipe", "", true},
		{"suppliers.doc", "", true},
		{"suppliers", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			def, err := ResolveSource(tt.location)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownSource) {
					t.Errorf("err = %v, want ErrUnknownSource", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if def.Kind != tt.kind {
				t.Errorf("kind = %q, want %q", def.Kind, tt.kind)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	def, ok := GetSource("pipe")
	if !ok || def.Label != "Pipe-delimited text" {
		t.Fatalf("GetSource(pipe) = %+v, %v", def, ok)
	}
	if _, ok := GetSource("parquet"); ok {
		t.Error("GetSource found an unregistered kind")
	}

	if !slices.Contains(UploadExtensions(), ".pipe") {
		t.Errorf("UploadExtensions() = %v", UploadExtensions())
	}
	if SourceCount() != len(AllSources()) {
		t.Error("SourceCount disagrees with AllSources")
	}

	kinds := make([]string, 0)
	for _, d := range AllSources() {
		kinds = append(kinds, d.Kind)
	}
	if !slices.IsSorted(kinds) {
		t.Errorf("AllSources not sorted: %v", kinds)
	}
}

func TestRegisterSource_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	RegisterSource(SourceDefinition{Kind: "pipe"})
}
