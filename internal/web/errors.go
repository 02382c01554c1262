package web

// errors.go turns errors into responses.
//
// The flow:
//  1. A handler calls respondError(w, r, err)
//  2. statusFor picks the HTTP status from the sentinel err wraps
//  3. core.MapError picks the user message and support code
//  4. The technical error is logged with the request id
//  5. The client gets JSON (API routes, Accept: application/json) or an
//     HTML error page

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/supplierdash/internal/core"
	"github.com/JonMunkholm/supplierdash/internal/logging"
	"github.com/JonMunkholm/supplierdash/internal/web/templates"
)

// errNoFile is returned when an upload request has no "file" part.
var errNoFile = errors.New("no file provided")

// errBadForm is returned when a form body cannot be parsed.
var errBadForm = errors.New("invalid form data")

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrSourceUnavailable), errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrExportEmpty):
		return http.StatusConflict
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrUnknownFormat),
		errors.Is(err, core.ErrUnknownSource),
		errors.Is(err, core.ErrUnsupportedFile),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrUploadNameRequired),
		errors.Is(err, errNoFile),
		errors.Is(err, errBadForm):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a user-friendly error response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{"path", r.URL.Path, "method", r.Method, "status", status, "code", msg.Code, "error", err.Error()}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	if errors.Is(err, core.ErrTooManyUploads) && w.Header().Get("Retry-After") == "" {
		w.Header().Set("Retry-After", "5")
	}

	if wantsJSON(r) {
		writeJSON(w, r, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorPage(status, msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logger.Error("render error page", "error", err)
	}
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// Browser form posts to the API ask for a redirect and get HTML errors.
	if r.Method == http.MethodPost && formRedirect(r) != "" {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// writeJSON encodes v as a JSON response. Encoding failures can only be
// logged since the headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
