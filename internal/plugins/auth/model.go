// Package auth implements the passwordless login handshake for cinefil.
// A visitor submits their email, receives a 6-digit one-time code, and
// exchanges it for either a session token (known email) or a short-lived
// registration window (new email). Session validity is checked both ways:
// the token signature must verify AND the token row must still exist in
// the credential store, so logout and revocation take effect immediately.
package auth

import (
	"database/sql"
	"encoding/json"

	"github.com/cinefil/cinefil/internal/token"
)

// TokenRecord is a row in the auth_tokens table. It backs both credential
// kinds: a 6-digit login code (Token is the code itself) and a session
// (Token is the signed session token). UserID is NULL for a login code
// issued to an email with no account yet.
type TokenRecord struct {
	Token     string
	Type      token.Type
	Email     string
	UserID    sql.NullString
	ExpiresAt int64
}

// --- Request DTOs (bound from HTTP requests) ---

// LoginRequest starts the handshake: just an email address.
type LoginRequest struct {
	Email string `json:"email"`
}

// VerifyRequest carries the 6-digit code. json.Number keeps the SPA's
// numeric payload from losing leading context through float conversion.
type VerifyRequest struct {
	LoginCode json.Number `json:"loginCode"`
}

// RegisterRequest completes signup for a verified email with no account.
type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
}

// --- Service results ---

// VerifyResult is the outcome of a successful code exchange. For a known
// email SessionToken is set; for an unknown one NeedsRegistration is true
// and the caller gets a temporary marker cookie instead of a session.
type VerifyResult struct {
	SessionToken      string
	UserID            string
	Email             string
	NeedsRegistration bool
}

// RegisterResult is the outcome of completing a registration: the new
// account's id and its freshly minted session token.
type RegisterResult struct {
	UserID       string
	SessionToken string
}

// --- Response DTOs ---

// VerifyResponse is the JSON body returned by POST /api/auth/verify.
type VerifyResponse struct {
	Valid             bool   `json:"valid"`
	SessionToken      string `json:"sessionToken,omitempty"`
	UserID            string `json:"userId"`
	Email             string `json:"email"`
	NeedsRegistration bool   `json:"needsRegistration"`
}
