package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func renderString(t *testing.T, d DashboardData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := Dashboard(d).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestDashboard(t *testing.T) {
	out := renderString(t, DashboardData{
		Title:  "Supplier Dashboard",
		Search: `bolts "m8"`,
		Filters: []FilterControl{
			{Field: "filter[State]", Label: "State", Options: []string{"All", "NV", "OH"}, Selected: "OH"},
		},
		Columns:      []string{"Supplier_Name", "State"},
		Rows:         [][]string{{"Acme <Tools>", "OH"}},
		Total:        1,
		ExportURL:    "/api/export?format=xlsx",
		ExportCSVURL: "/api/export?format=csv",
		LoadDuration: 42 * time.Millisecond,
	})

	for _, want := range []string{
		`<option value="OH" selected>OH</option>`,
		`Acme &lt;Tools&gt;`,
		`value="bolts &#34;m8&#34;"`,
		`Download 1 rows as Excel`,
		`Data loaded in ~42 ms`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<Tools>") {
		t.Error("cell text was not escaped")
	}
}

func TestDashboard_NoRows(t *testing.T) {
	out := renderString(t, DashboardData{Title: "Supplier Dashboard", Columns: []string{"Supplier_Name"}})
	if !strings.Contains(out, "No data to export") {
		t.Error("missing no-data note")
	}
	if strings.Contains(out, "Download") {
		t.Error("export link rendered for empty result")
	}
}

func TestDashboard_StaleSelectionKept(t *testing.T) {
	out := renderString(t, DashboardData{
		Title: "Supplier Dashboard",
		Filters: []FilterControl{
			{Field: "filter[City]", Label: "City", Options: []string{"All", "Reno"}, Selected: "Dayton"},
		},
	})
	if !strings.Contains(out, `<option value="Dayton" selected>Dayton</option>`) {
		t.Errorf("stale selection not kept: %s", out)
	}
}

func TestDashboard_Truncated(t *testing.T) {
	out := renderString(t, DashboardData{
		Title:   "Supplier Dashboard",
		Columns: []string{"Supplier_Name"},
		Rows:    [][]string{{"a"}, {"b"}},
		Total:   5,
	})
	if !strings.Contains(out, "Showing first 2 of 5 matching rows") {
		t.Errorf("missing truncation caption: %s", out)
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	err := ErrorPage(503, "The supplier data could not be read", "Reload", "SRC001").Render(context.Background(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Code: SRC001") {
		t.Errorf("output = %s", buf.String())
	}
}

func TestLoginPage(t *testing.T) {
	tests := []struct {
		name   string
		failed bool
		want   bool
	}{
		{"first visit", false, false},
		{"rejected key", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := LoginPage(tt.failed).Render(context.Background(), &buf); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			if !strings.Contains(out, `<form method="post" action="/login">`) {
				t.Errorf("missing login form: %s", out)
			}
			if got := strings.Contains(out, "That key was not accepted."); got != tt.want {
				t.Errorf("rejection message shown = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDashboardData_Caption(t *testing.T) {
	tests := []struct {
		name string
		d    DashboardData
		want string
	}{
		{
			name: "all rows shown",
			d:    DashboardData{Rows: [][]string{{"a"}}, Total: 1, LoadDuration: 7 * time.Millisecond},
			want: "1 matching rows · Data loaded in ~7 ms · Using cached dataset · Searching only 'Concat'",
		},
		{
			name: "truncated with source",
			d:    DashboardData{Rows: [][]string{{"a"}}, Total: 3, SourceName: "suppliers.csv"},
			want: "Showing first 1 of 3 matching rows · Data loaded in ~0 ms · Using cached dataset · Searching only 'Concat' · Source: suppliers.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.Caption(); got != tt.want {
				t.Errorf("Caption() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFilterControl_StaleSelection(t *testing.T) {
	tests := []struct {
		name string
		f    FilterControl
		want bool
	}{
		{"nothing selected", FilterControl{Options: []string{"All", "OH"}}, false},
		{"listed", FilterControl{Options: []string{"All", "OH"}, Selected: "OH"}, false},
		{"no longer listed", FilterControl{Options: []string{"All", "NV"}, Selected: "OH"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.staleSelection(); got != tt.want {
				t.Errorf("staleSelection() = %v, want %v", got, tt.want)
			}
		})
	}
}
