package access

import (
	"errors"

	"github.com/aussiebroadwan/sataplan/pkg/jwtx"
)

var (
	ErrWrongTokenKind      = errors.New("access: wrong token kind")
	ErrTokenAlreadyUsed    = errors.New("access: token already used")
	ErrInvalidGoalPassword = errors.New("access: invalid goal password")

	// ErrInternal wraps ledger and store failures. The request fails closed.
	ErrInternal = errors.New("access: internal error")
)

// Stable error codes, safe to put on the wire.
const (
	CodeMalformedToken   = "malformed_token"
	CodeInvalidSignature = "invalid_signature"
	CodeTokenExpired     = "token_expired"
	CodeMissingClaim     = "missing_claim"
	CodeWrongTokenKind   = "wrong_token_kind"
	CodeTokenAlreadyUsed = "token_already_used"
	CodeServerError      = "server_error"
)

// ErrorCode maps an authorization failure to its stable code. Anything not
// produced by the codec or the gate is a server error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrMalformed):
		return CodeMalformedToken
	case errors.Is(err, jwtx.ErrInvalidSig):
		return CodeInvalidSignature
	case errors.Is(err, jwtx.ErrExpired):
		return CodeTokenExpired
	case errors.Is(err, jwtx.ErrMissingClaim):
		return CodeMissingClaim
	case errors.Is(err, ErrWrongTokenKind):
		return CodeWrongTokenKind
	case errors.Is(err, ErrTokenAlreadyUsed):
		return CodeTokenAlreadyUsed
	default:
		return CodeServerError
	}
}
