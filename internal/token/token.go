// Package token implements the two credential primitives of the login flow:
// the signed session/login token codec and the 6-digit one-time code
// generator. Both are pure -- no store access, no cookies -- so the
// handshake controller and the authorization middleware can compose them
// with the credential store independently.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type discriminates what a signed token or stored credential row is for.
type Type string

const (
	// TypeLoginCode marks a one-time login code record.
	TypeLoginCode Type = "login_code"

	// TypeSession marks a session credential.
	TypeSession Type = "session"
)

// Claims is the signed payload. Exactly one of UserID or Email is set:
// UserID once an account exists, Email for a pre-registration marker.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Type   Type   `json:"type"`
	jwt.RegisteredClaims
}

// Result is the outcome of verifying a token. Malformed input, a bad
// signature, and an elapsed expiry all yield Valid == false with a nil
// Claims -- verification never errors out, so callers branch on the flag.
type Result struct {
	Valid  bool
	Claims *Claims
}

// Codec signs and verifies tokens with an HMAC-SHA256 secret.
type Codec struct {
	secret []byte
}

// NewCodec creates a codec with the given signing secret.
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// SignUser creates a signed token whose subject is a registered user id.
// Returns the token string and its expiry as epoch seconds, which the
// caller persists alongside the token for the stateful validity check.
func (c *Codec) SignUser(userID string, typ Type, ttl time.Duration) (string, int64, error) {
	return c.sign(Claims{UserID: userID, Type: typ}, ttl)
}

// SignEmail creates a signed token whose subject is an email address with
// no account yet (pre-registration marker).
func (c *Codec) SignEmail(email string, typ Type, ttl time.Duration) (string, int64, error) {
	return c.sign(Claims{Email: email, Type: typ}, ttl)
}

func (c *Codec) sign(claims Claims, ttl time.Duration) (string, int64, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(c.secret)
	if err != nil {
		return "", 0, err
	}
	return signed, claims.ExpiresAt.Unix(), nil
}

// Verify checks a token's signature and expiry. It fails closed: any
// malformed structure, signature mismatch, wrong signing method, or
// expiry in the past returns an invalid Result rather than an error.
func (c *Codec) Verify(tokenString string) Result {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return Result{Valid: false}
	}

	return Result{Valid: true, Claims: claims}
}
