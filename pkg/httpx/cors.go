package httpx

import (
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// ParseOrigins splits a comma separated origin list, dropping blanks.
func ParseOrigins(s string) []string {
	var out []string
	for o := range strings.SplitSeq(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// CORSMiddleware allows browser calls from origins. An empty list disables
// cross-origin access; "*" allows any origin.
func CORSMiddleware(origins []string, exposedHeaders ...string) Middleware {
	if len(origins) == 0 {
		// cors.New treats an empty list as "*"
		return func(next http.Handler) http.Handler { return next }
	}

	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: false,
		MaxAge:           600,
	})
	return c.Handler
}
