package httpx

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
	"github.com/aussiebroadwan/sataplan/pkg/slogx"
)

// Authorizer turns a raw token into claims, failing unless its kind is one
// of expected. ErrorCode maps a failure to a stable wire code.
type Authorizer interface {
	Authorize(ctx context.Context, token string, expected ...jwtx.Kind) (jwtx.Claims, error)
	ErrorCode(err error) string
}

// Codes with a status other than 401.
const (
	codeWrongTokenKind = "wrong_token_kind"
	codeServerError    = "server_error"
	codeMissingToken   = "missing_token"
)

// AuthnMiddleware requires an "Authorization: Bearer" token of one of kinds
// and stores its claims in the request context.
func AuthnMiddleware(a Authorizer, kinds ...jwtx.Kind) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			if !strings.HasPrefix(authz, "Bearer ") || raw == "" {
				WriteTokenError(w, codeMissingToken)
				return
			}

			claims, err := a.Authorize(ctx, raw, kinds...)
			if err != nil {
				code := a.ErrorCode(err)
				if code == codeServerError {
					log.Error("token authorization failed", "code", code, "err", err)
				} else {
					// Never log the token itself
					log.Warn("token rejected", "code", code, "err", err)
				}
				WriteTokenError(w, code)
				return
			}

			ctx = slogx.With(contextWithClaims(ctx, claims),
				"token_kind", claims.Kind.String(),
				"principal_id", claims.PrincipalID,
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RawQueryParam returns the first value of name from the request's raw
// query without percent-decoding it. Tokens read this way must be decoded
// exactly once, by the verifier.
func RawQueryParam(r *http.Request, name string) (string, bool) {
	for part := range strings.SplitSeq(r.URL.RawQuery, "&") {
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil && k == name {
			return value, true
		}
	}
	return "", false
}

// WriteTokenError writes an RFC 6750-style failure for a rejected token.
// code is the access gate's stable code: wrong_token_kind is a 403,
// server_error a 500, anything else a 401 with a WWW-Authenticate challenge.
func WriteTokenError(w http.ResponseWriter, code string) {
	desc := "token rejected: " + code
	status := http.StatusUnauthorized
	switch code {
	case codeWrongTokenKind:
		status = http.StatusForbidden
	case codeServerError:
		status = http.StatusInternalServerError
	}

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	}
	WriteJSON(w, status, map[string]string{
		"error":             code,
		"error_description": desc,
	})
}
