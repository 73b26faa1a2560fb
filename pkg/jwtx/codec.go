package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = "HS256"

// Codec signs and verifies shared-secret (HMAC) tokens. It is immutable once
// built and safe for concurrent use.
type Codec struct {
	method *jwt.SigningMethodHMAC
	secret []byte
	now    func() time.Time
	parser *jwt.Parser
}

var (
	_ Signer   = (*Codec)(nil)
	_ Verifier = (*Codec)(nil)
)

// NewCodec creates a codec for one of HS256, HS384 or HS512. The now func is
// the clock used for expiry checks; nil means time.Now.
func NewCodec(secret []byte, algorithm string, now func() time.Time) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwtx: empty signing secret")
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}

	var method *jwt.SigningMethodHMAC
	switch strings.ToUpper(algorithm) {
	case jwt.SigningMethodHS256.Alg():
		method = jwt.SigningMethodHS256
	case jwt.SigningMethodHS384.Alg():
		method = jwt.SigningMethodHS384
	case jwt.SigningMethodHS512.Alg():
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("jwtx: unsupported algorithm %q", algorithm)
	}

	if now == nil {
		now = time.Now
	}

	// Copy so later mutation of the caller's slice can't change our key
	key := make([]byte, len(secret))
	copy(key, secret)

	return &Codec{
		method: method,
		secret: key,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithTimeFunc(now),
		),
	}, nil
}

// Alg returns the configured algorithm name.
func (c *Codec) Alg() string { return c.method.Alg() }

// Sign encodes and signs the claims. expires_at is required; the codec never
// makes one up.
func (c *Codec) Sign(claims Claims) (string, error) {
	if claims.ExpiresAt == nil {
		return "", fmt.Errorf("%w: expires_at", ErrMissingClaim)
	}
	if claims.Kind == "" {
		return "", fmt.Errorf("%w: kind", ErrMissingClaim)
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify decodes a token that may have travelled percent-encoded in a URL.
// The input is unescaped exactly once, the signature is checked before any
// claim is read, then expiry and structure are validated.
func (c *Codec) Verify(raw string) (Claims, error) {
	token, err := url.PathUnescape(raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: percent-decoding: %v", ErrMalformed, err)
	}

	if err := c.verifySignature(token); err != nil {
		return Claims{}, err
	}

	var claims Claims
	parsed, err := c.parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case err != nil:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	case !parsed.Valid:
		return Claims{}, ErrMalformed
	}

	if _, err := claims.Variant(); err != nil {
		return Claims{}, err
	}
	return claims, nil
}

// verifySignature checks the integrity of header.payload without decoding
// the payload, so tampering always reports as ErrInvalidSig.
func (c *Codec) verifySignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformed, len(parts))
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return fmt.Errorf("%w: header encoding", ErrMalformed)
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return fmt.Errorf("%w: header json", ErrMalformed)
	}
	if header.Alg != c.method.Alg() {
		return fmt.Errorf("%w: algorithm %q not accepted", ErrInvalidSig, header.Alg)
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return fmt.Errorf("%w: signature encoding", ErrMalformed)
	}

	if err := c.method.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return ErrInvalidSig
	}
	return nil
}
