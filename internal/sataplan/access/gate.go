package access

import (
	"context"
	"fmt"
	"slices"

	"github.com/aussiebroadwan/sataplan/pkg/cryptox"
	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

// Gate is the single entry point for turning a raw token into trusted
// claims. It never touches the relational store; checking that the resource
// still exists and belongs to the principal is the caller's job.
type Gate struct {
	verifier jwtx.Verifier
	ledger   *Ledger
}

// NewGate creates a gate. One-time tokens are consumed against ledger.
func NewGate(verifier jwtx.Verifier, ledger *Ledger) *Gate {
	return &Gate{verifier: verifier, ledger: ledger}
}

// Authorize verifies token and checks its kind is one of expected. A valid
// qr_onetime token is consumed: every later call with it fails with
// ErrTokenAlreadyUsed until it expires.
func (g *Gate) Authorize(ctx context.Context, token string, expected ...jwtx.Kind) (jwtx.Claims, error) {
	claims, err := g.verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	if !slices.Contains(expected, claims.Kind) {
		return jwtx.Claims{}, fmt.Errorf("%w: got %s", ErrWrongTokenKind, claims.Kind)
	}

	if claims.Kind != jwtx.KindQROneTime {
		return claims, nil
	}

	used, err := g.ledger.CheckAndMark(ctx, claims.ConsumptionID, cryptox.FingerprintToken(token), claims.Expiry())
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if used {
		return jwtx.Claims{}, ErrTokenAlreadyUsed
	}
	return claims, nil
}

// ErrorCode maps a failure returned by Authorize to its stable code.
func (g *Gate) ErrorCode(err error) string { return ErrorCode(err) }
