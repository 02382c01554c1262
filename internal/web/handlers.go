package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/supplierdash/internal/core"
	"github.com/JonMunkholm/supplierdash/internal/logging"
	mw "github.com/JonMunkholm/supplierdash/internal/web/middleware"
	"github.com/JonMunkholm/supplierdash/internal/web/templates"
)

const dashboardTitle = "Supplier Dashboard"

// multipartOverhead is the slack allowed over the file size limit for
// multipart boundaries and form fields.
const multipartOverhead = 1 << 20

// maxMemory is the part of a multipart upload kept in memory before
// spilling to temporary files.
const maxMemory = 32 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// =============================================================================
// Pages
// =============================================================================

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.Security.RequireAPIKey {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, templates.LoginPage(r.URL.Query().Get("failed") == "1"))
}

// handleLogin trades a valid key for a session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login?failed=1", http.StatusSeeOther)
		return
	}
	key := strings.TrimSpace(r.PostForm.Get("key"))
	if !mw.ValidAPIKey(&s.cfg.Security, key) {
		logging.FromContext(r.Context()).Warn("login rejected", "ip", mw.ClientIP(r))
		http.Redirect(w, r, "/login?failed=1", http.StatusSeeOther)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     mw.APIKeyCookie,
		Value:    key,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := parseQuery(r)

	ds, err := s.service.Dataset(ctx)
	if err != nil {
		respondError(w, r, err)
		return
	}
	result := ds.Evaluate(q.Selection, q.Search)

	data := templates.DashboardData{
		Title:         dashboardTitle,
		Search:        q.Search,
		Columns:       result.DisplayColumns(),
		Rows:          result.DisplayRows(s.cfg.Dataset.DisplayLimit),
		Total:         result.Len(),
		LoadDuration:  ds.LoadDuration(),
		SourceName:    s.sourceName(ctx),
		UploadAccept:  strings.Join(core.UploadExtensions(), ","),
		UploadEnabled: true,
	}

	for _, col := range core.FilterColumns {
		opts := ds.Options(col)
		data.Filters = append(data.Filters, templates.FilterControl{
			Field:    filterField(col),
			Label:    col.Label(),
			Options:  opts,
			Selected: selectedOption(opts, q.Selection[col]),
		})
	}

	for _, warn := range ds.Warnings() {
		data.Warnings = append(data.Warnings, warn.Message)
	}

	if result.Len() > 0 {
		data.ExportURL = exportURL(q, "xlsx")
		data.ExportCSVURL = exportURL(q, "csv")
	}

	s.render(w, r, http.StatusOK, templates.Dashboard(data))
}

// selectedOption returns the listed option matching value, or value itself
// when it is not listed. An empty value selects AllOption.
func selectedOption(opts core.OptionList, value string) string {
	if value == "" {
		return core.AllOption
	}
	key := core.Normalize(value)
	for _, opt := range opts {
		if core.Normalize(opt) == key {
			return opt
		}
	}
	return value
}

func exportURL(q query, format string) string {
	v := q.encode()
	v.Set("format", format)
	return "/api/export?" + v.Encode()
}

// sourceName is the short source description shown in the page caption.
// Uploaded files show their original name, configured sources their kind.
func (s *Server) sourceName(ctx context.Context) string {
	st := s.service.Status(ctx)
	if st.FileName != "" {
		return st.FileName
	}
	return st.Kind
}

// render writes an HTML component.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

// =============================================================================
// API
// =============================================================================

// optionsEntry is one filter control in the /api/options response.
type optionsEntry struct {
	Column string   `json:"column"`
	Label  string   `json:"label"`
	Field  string   `json:"field"`
	Values []string `json:"values"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	all, err := s.service.Options(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	entries := make([]optionsEntry, 0, len(core.FilterColumns))
	for _, col := range core.FilterColumns {
		entries = append(entries, optionsEntry{
			Column: col.String(),
			Label:  col.Label(),
			Field:  filterField(col),
			Values: all[col],
		})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"options": entries})
}

// rowsResponse is the /api/rows response.
type rowsResponse struct {
	Columns   []string          `json:"columns"`
	Rows      [][]string        `json:"rows"`
	Total     int               `json:"total"`
	Shown     int               `json:"shown"`
	Truncated bool              `json:"truncated"`
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	q := parseQuery(r)
	result, err := s.service.Evaluate(r.Context(), q.Selection, q.Search)
	if err != nil {
		respondError(w, r, err)
		return
	}

	rows := result.DisplayRows(parseLimit(r, s.cfg.Dataset.DisplayLimit))
	resp := rowsResponse{
		Columns:   result.DisplayColumns(),
		Rows:      rows,
		Total:     result.Len(),
		Shown:     len(rows),
		Truncated: len(rows) < result.Len(),
		Search:    q.Search,
	}
	if active := q.Selection.Active(); len(active) > 0 {
		resp.Filters = make(map[string]string, len(active))
		for _, col := range active {
			resp.Filters[col.String()] = q.Selection[col]
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// handleExport streams the filtered result as a spreadsheet download.
// The file is rendered to memory first so a writer failure still produces
// a proper error response instead of a truncated download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	writer, err := core.GetWriter(format)
	if err != nil {
		respondError(w, r, err)
		return
	}

	q := parseQuery(r)
	table, err := s.service.Export(r.Context(), q.Selection, q.Search)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := writer.Write(&buf, table); err != nil {
		respondError(w, r, fmt.Errorf("write %s export: %w", writer.Format, err))
		return
	}

	logging.FromContext(r.Context()).Info("export written",
		"format", writer.Format,
		"rows", len(table.Rows),
		"bytes", buf.Len(),
	)

	w.Header().Set("Content-Type", writer.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", writer.FileName()))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.Status(r.Context()))
}

// reloadResponse is the /api/reload response.
type reloadResponse struct {
	Invalidated int            `json:"invalidated"`
	Rows        int            `json:"rows"`
	Columns     []string       `json:"columns"`
	Warnings    []core.Warning `json:"warnings,omitempty"`
	DurationNs  int64          `json:"loadDurationNs"`
}

// handleReload drops the cached dataset and loads it again, so the response
// reflects the source as it is now.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondError(w, r, fmt.Errorf("%w: %v", errBadForm, err))
		return
	}

	n := s.service.Reload()
	ds, err := s.service.Dataset(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	if target := formRedirect(r); target != "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeJSON(w, r, http.StatusOK, reloadResponse{
		Invalidated: n,
		Rows:        ds.NumRows(),
		Columns:     ds.Columns(),
		Warnings:    ds.Warnings(),
		DurationNs:  ds.LoadDuration().Nanoseconds(),
	})
}

// handleUpload replaces the active dataset with an uploaded file.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit))
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	logging.WithFields(r.Context(), "file", header.Filename, "size", header.Size).Info("upload received")

	result, err := s.service.Upload(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if target := formRedirect(r); target != "" {
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}
