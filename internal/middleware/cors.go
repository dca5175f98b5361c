package middleware

import (
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Cors lets through requests without an Origin (curl, same-origin GETs), same-origin
// requests, and requests from the configured origins. MCP clients are allowed from anywhere.
func Cors(allowedOrigins []string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimSuffix(o, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			switch {
			case origin == "" && !strings.HasPrefix(r.URL.Path, "/mcp"):
				next.ServeHTTP(w, r)
				return
			case
				allowed[origin],
				isSameOrigin(origin, r.Host),
				strings.HasPrefix(r.URL.Path, "/mcp"):
				allowOrigin := origin
				if allowOrigin == "" {
					allowOrigin = "*"
				}
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				w.Header().Set("Access-Control-Allow-Headers",
					"Accept, Content-Type, Content-Length, Accept-Encoding, X-Request-Id, MCP-Protocol-Version, MCP-Session-Id",
				)
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			default:
				log.Warnf("CORS: origin not allowed for path [%s] and origin [%s]", r.URL.Path, origin)
				w.WriteHeader(http.StatusForbidden)
				return
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSameOrigin(origin, host string) bool {
	if host == "" {
		return false
	}
	return origin == "http://"+host || origin == "https://"+host
}
