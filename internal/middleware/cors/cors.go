// Package cors applies Cross-Origin Resource Sharing headers so a UI served
// from another origin can call the API.
package cors

import (
	"net/http"
	"net/url"
	"strings"
)

// New returns middleware that allows the given origins. Entries are host names,
// optionally with a port ("localhost:3000"), or full origins ("https://app.example"). An empty list or "*" allows any origin.
//
// Requests with a disallowed Origin get 403. Preflight (OPTIONS) requests are
// answered with 204 and never reach next.
func New(allowedHosts []string) func(http.Handler) http.Handler {
	allowAll := len(allowedHosts) == 0
	for _, h := range allowedHosts {
		if strings.TrimSpace(h) == "*" {
			allowAll = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			h := w.Header()

			switch {
			case allowAll:
				h.Set("Access-Control-Allow-Origin", "*")
			case origin == "":
				// Same-origin or non-browser client.
			case isOriginAllowed(origin, allowedHosts):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			default:
				http.Error(w, "origin not allowed", http.StatusForbidden)
				return
			}

			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isOriginAllowed(origin string, allowedHosts []string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.ToLower(u.Host)
	hostname := strings.ToLower(u.Hostname())
	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if strings.Contains(allowed, "://") {
			if strings.TrimRight(allowed, "/") == strings.ToLower(origin) {
				return true
			}
			continue
		}
		if allowed == host || allowed == hostname {
			return true
		}
	}
	return false
}
