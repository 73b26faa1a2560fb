package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sataplan/pkg/httpx"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

var errBad = errors.New("bad token")

// fakeAuthorizer accepts "good-<kind>" tokens.
type fakeAuthorizer struct {
	fail error
}

func (f *fakeAuthorizer) Authorize(_ context.Context, token string, expected ...jwtx.Kind) (jwtx.Claims, error) {
	if f.fail != nil {
		return jwtx.Claims{}, f.fail
	}
	kind := jwtx.Kind(token[len("good-"):])
	if !slices.Contains(expected, kind) {
		return jwtx.Claims{}, errWrongKind
	}
	return jwtx.Claims{Kind: kind, PrincipalID: 42, Subject: "alice"}, nil
}

var (
	errWrongKind = errors.New("wrong kind")
	errInternal  = errors.New("ledger down")
)

func (f *fakeAuthorizer) ErrorCode(err error) string {
	switch {
	case errors.Is(err, errWrongKind):
		return "wrong_token_kind"
	case errors.Is(err, errInternal):
		return "server_error"
	}
	return "malformed_token"
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := httpx.ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		id, _ := httpx.PrincipalID(r.Context())
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"kind": c.Kind, "id": id})
	})
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestAuthnMiddleware(t *testing.T) {
	auth := &fakeAuthorizer{}
	h := httpx.AuthnMiddleware(auth, jwtx.KindSessionAccess)(claimsEcho())

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("accepted token populates the context", func(t *testing.T) {
		rec := serve("Bearer good-session_access")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"kind":"session_access","id":42}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		rec := serve("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
		require.Equal(t, "missing_token", errorCode(t, rec))
	})

	t.Run("not a bearer scheme", func(t *testing.T) {
		require.Equal(t, http.StatusUnauthorized, serve("Basic abc").Code)
	})

	t.Run("wrong kind is forbidden", func(t *testing.T) {
		rec := serve("Bearer good-session_refresh")
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Empty(t, rec.Header().Get("WWW-Authenticate"))
		require.Equal(t, "wrong_token_kind", errorCode(t, rec))
	})

	t.Run("internal failure", func(t *testing.T) {
		auth.fail = errInternal
		defer func() { auth.fail = nil }()

		rec := serve("Bearer good-session_access")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Equal(t, "server_error", errorCode(t, rec))
	})

	t.Run("other failures carry the gate code", func(t *testing.T) {
		auth.fail = errBad
		defer func() { auth.fail = nil }()

		rec := serve("Bearer good-session_access")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "malformed_token", errorCode(t, rec))
	})
}

func TestWriteTokenError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteTokenError(rec, "token_already_used")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "token_already_used")
	require.Equal(t, "token_already_used", errorCode(t, rec))
}

func TestRawQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?a=1&token=abc%2Edef&token=second&flag", nil)

	v, ok := httpx.RawQueryParam(req, "token")
	require.True(t, ok)
	require.Equal(t, "abc%2Edef", v)

	v, ok = httpx.RawQueryParam(req, "flag")
	require.True(t, ok)
	require.Empty(t, v)

	_, ok = httpx.RawQueryParam(req, "missing")
	require.False(t, ok)
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mw("a"), mw("b"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestCORSMiddleware(t *testing.T) {
	h := httpx.CORSMiddleware([]string{"http://localhost:3000"}, "X-Goal-Password")(okHandler())

	t.Run("allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
		require.Equal(t, "X-Goal-Password", rec.Header().Get("Access-Control-Expose-Headers"))
	})

	t.Run("other origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("no origins configured", func(t *testing.T) {
		closed := httpx.CORSMiddleware(nil)(okHandler())
		req := httptest.NewRequest(http.MethodGet, "/v1/goals", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		closed.ServeHTTP(rec, req)

		require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	require.Equal(t, []string{"http://a", "http://b"}, httpx.ParseOrigins(" http://a, ,http://b "))
}
