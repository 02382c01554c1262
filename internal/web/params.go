package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/supplierdash/internal/core"
	"github.com/JonMunkholm/supplierdash/internal/logging"
)

const (
	filterPrefix = "filter["
	filterSuffix = "]"
)

// query is the parsed filter state of a request.
type query struct {
	Selection core.FilterSelection
	Search    string
}

// filterField returns the form field name for a filter column.
func filterField(col core.Column) string {
	return filterPrefix + col.String() + filterSuffix
}

// parseQuery reads filter[Column]=value pairs and search from the URL.
// Column names accept any header synonym. Unknown columns are ignored.
func parseQuery(r *http.Request) query {
	values := r.URL.Query()
	q := query{
		Selection: make(core.FilterSelection),
		Search:    strings.TrimSpace(values.Get("search")),
	}

	for key, vals := range values {
		if !strings.HasPrefix(key, filterPrefix) || !strings.HasSuffix(key, filterSuffix) || len(vals) == 0 {
			continue
		}
		name := key[len(filterPrefix) : len(key)-len(filterSuffix)]
		col, ok := core.ParseFilterColumn(name)
		if !ok {
			logging.FromContext(r.Context()).Debug("ignoring unknown filter column", "column", name)
			continue
		}
		q.Selection[col] = strings.TrimSpace(vals[0])
	}
	return q
}

// encode renders q back to query parameters, omitting unconstrained columns.
func (q query) encode() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	for _, col := range q.Selection.Active() {
		v.Set(filterField(col), q.Selection[col])
	}
	return v
}

// parseLimit reads the limit parameter, clamped to 1..max. Missing or
// invalid values return max.
func parseLimit(r *http.Request, max int) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > max {
		return max
	}
	return n
}

// formRedirect returns the local redirect target of an already parsed form
// post, or "" when there is none.
func formRedirect(r *http.Request) string {
	var target string
	if r.MultipartForm != nil {
		if v := r.MultipartForm.Value["redirect"]; len(v) > 0 {
			target = v[0]
		}
	} else if r.PostForm != nil {
		target = r.PostForm.Get("redirect")
	}

	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return ""
	}
	return target
}
