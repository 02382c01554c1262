// Package templates holds the templ components for the dashboard pages.
// Edit the .templ files and regenerate with `templ generate`.
package templates

import (
	"strconv"
	"strings"
	"time"
)

// FilterControl is one select box of the filter form.
type FilterControl struct {
	Field    string // Form field name, e.g. filter[State]
	Label    string
	Options  []string
	Selected string
}

// staleSelection reports whether Selected is set but no longer listed.
func (f FilterControl) staleSelection() bool {
	if f.Selected == "" {
		return false
	}
	for _, opt := range f.Options {
		if opt == f.Selected {
			return false
		}
	}
	return true
}

// DashboardData is everything the dashboard page shows.
type DashboardData struct {
	Title    string
	Search   string
	Filters  []FilterControl
	Columns  []string
	Rows     [][]string
	Total    int
	Warnings []string

	ExportURL     string // Empty when the result has no rows
	ExportCSVURL  string
	LoadDuration  time.Duration
	SourceName    string
	UploadAccept  string // Comma-separated extensions for the file input
	UploadEnabled bool
}

// Truncated reports whether the table shows fewer rows than matched.
func (d DashboardData) Truncated() bool {
	return len(d.Rows) < d.Total
}

// Caption is the status line under the result table.
func (d DashboardData) Caption() string {
	var b strings.Builder
	if d.Truncated() {
		b.WriteString("Showing first " + strconv.Itoa(len(d.Rows)) + " of " + strconv.Itoa(d.Total) + " matching rows")
	} else {
		b.WriteString(strconv.Itoa(d.Total) + " matching rows")
	}
	b.WriteString(" · Data loaded in ~" + strconv.FormatInt(d.LoadDuration.Milliseconds(), 10) + " ms")
	b.WriteString(" · Using cached dataset · Searching only 'Concat'")
	if d.SourceName != "" {
		b.WriteString(" · Source: " + d.SourceName)
	}
	return b.String()
}
