package jwtx

// Signer is our interface for anything that can sign tokens.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}
