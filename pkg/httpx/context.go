package httpx

import (
	"context"
	"strconv"

	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyPrincipal ctxKey = "principal_id"
	CtxKeyClaims    ctxKey = "claims"
)

func contextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	if c.PrincipalID != 0 {
		ctx = context.WithValue(ctx, CtxKeyPrincipal, c.PrincipalID)
	}
	return ctx
}

// ClaimsFromContext returns the claims stored by the authn middleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}

// PrincipalID returns the authenticated user id, if any.
func PrincipalID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(CtxKeyPrincipal).(int64)
	return id, ok && id != 0
}

func principalKey(ctx context.Context) string {
	if id, ok := PrincipalID(ctx); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}
