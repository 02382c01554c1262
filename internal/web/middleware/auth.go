package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/supplierdash/internal/config"
	"github.com/JonMunkholm/supplierdash/internal/logging"
)

// APIKeyCookie is the cookie a browser session uses to carry its API key.
const APIKeyCookie = "api_key"

// APIKeyAuth gates requests behind one of cfg.APIKeys. The key is read from
// X-API-Key, then "Authorization: Bearer", then the api_key cookie. With
// RequireAPIKey off every request passes.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := requestAPIKey(r)
			logger := logging.WithFields(r.Context(), "path", r.URL.Path, "method", r.Method, "ip", ClientIP(r))

			switch {
			case key == "":
				logger.Warn("auth: missing API key")
				writeAuthError(w, http.StatusUnauthorized, "missing API key", "AUTH_MISSING_KEY")
			case !isValidAPIKey(key, cfg.APIKeys):
				logger.Warn("auth: invalid API key")
				writeAuthError(w, http.StatusForbidden, "invalid API key", "AUTH_INVALID_KEY")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// APIKeyAuthRedirect gates browser pages the same way as APIKeyAuth, but
// sends rejected requests to loginPath instead of returning JSON.
func APIKeyAuthRedirect(cfg *config.SecurityConfig, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.RequireAPIKey && !isValidAPIKey(requestAPIKey(r), cfg.APIKeys) {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ValidAPIKey reports whether key is one of the configured keys.
func ValidAPIKey(cfg *config.SecurityConfig, key string) bool {
	return key != "" && isValidAPIKey(key, cfg.APIKeys)
}

// requestAPIKey returns the first API key found on r.
func requestAPIKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}
	if c, err := r.Cookie(APIKeyCookie); err == nil {
		return c.Value
	}
	return ""
}

// isValidAPIKey compares key against every configured key in constant time,
// so timing does not reveal which key (if any) matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, k := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}

func writeAuthError(w http.ResponseWriter, status int, message, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message, "code": code})
}
