package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cinefil/cinefil/internal/token"
)

// TokenRepository is the credential store contract. All SQL lives in the
// concrete implementation -- no SQL leaks out. Expiry comparisons take the
// current time as an epoch-seconds parameter so tests control the clock.
type TokenRepository interface {
	Insert(ctx context.Context, rec *TokenRecord) error
	FindLoginCode(ctx context.Context, code string, now int64) (*TokenRecord, error)
	SessionExists(ctx context.Context, tok string, now int64) (bool, error)
	DeleteLoginCode(ctx context.Context, code string) error
	DeleteExpiredLoginCodes(ctx context.Context, email string, now int64) error
	DeleteSessionsForEmail(ctx context.Context, email string) error
	DeleteSession(ctx context.Context, tok string) error
}

// ErrCodeNotFound is returned when no live login code matches. The caller
// maps it to a generic 401 -- the client never learns whether the code was
// wrong, expired, or already consumed.
var ErrCodeNotFound = errors.New("login code not found")

// tokenRepository implements TokenRepository with hand-written MariaDB queries.
type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a credential store backed by the given DB pool.
func NewTokenRepository(db *sql.DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Insert stores a new credential row. The table has no uniqueness
// constraint on token: concurrent login requests may store colliding
// 6-digit codes, and the lookup simply matches the first live row.
func (r *tokenRepository) Insert(ctx context.Context, rec *TokenRecord) error {
	query := `INSERT INTO auth_tokens (token, token_type, email, user_id, expires_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		rec.Token,
		string(rec.Type),
		rec.Email,
		rec.UserID,
		rec.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("inserting auth token: %w", err)
	}

	return nil
}

// FindLoginCode retrieves a live login code record. Rows at or past their
// expiry are invisible here; physical cleanup happens separately.
func (r *tokenRepository) FindLoginCode(ctx context.Context, code string, now int64) (*TokenRecord, error) {
	query := `SELECT email, user_id FROM auth_tokens
	          WHERE token = ? AND token_type = 'login_code' AND expires_at > ?`

	rec := &TokenRecord{Token: code, Type: token.TypeLoginCode}
	err := r.db.QueryRowContext(ctx, query, code, now).Scan(&rec.Email, &rec.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying login code: %w", err)
	}

	return rec, nil
}

// SessionExists reports whether a live session row matches the given token.
// This is the stateful half of session validation -- the signature check
// alone can't see revocation.
func (r *tokenRepository) SessionExists(ctx context.Context, tok string, now int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM auth_tokens
	          WHERE token = ? AND token_type = 'session' AND expires_at > ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, tok, now).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking session token: %w", err)
	}

	return exists, nil
}

// DeleteLoginCode removes a login code after it has been consumed. Every
// row holding this code value goes, which also clears any collision.
func (r *tokenRepository) DeleteLoginCode(ctx context.Context, code string) error {
	query := `DELETE FROM auth_tokens WHERE token = ? AND token_type = 'login_code'`

	if _, err := r.db.ExecContext(ctx, query, code); err != nil {
		return fmt.Errorf("deleting login code: %w", err)
	}

	return nil
}

// DeleteExpiredLoginCodes clears dead codes for an email before a new one
// is issued. Incremental cleanup -- there is no background sweeper.
func (r *tokenRepository) DeleteExpiredLoginCodes(ctx context.Context, email string, now int64) error {
	query := `DELETE FROM auth_tokens
	          WHERE email = ? AND token_type = 'login_code' AND expires_at < ?`

	if _, err := r.db.ExecContext(ctx, query, email, now); err != nil {
		return fmt.Errorf("deleting expired login codes: %w", err)
	}

	return nil
}

// DeleteSessionsForEmail revokes every session for an email. Called before
// issuing a new session so each account holds at most one live session.
func (r *tokenRepository) DeleteSessionsForEmail(ctx context.Context, email string) error {
	query := `DELETE FROM auth_tokens WHERE email = ? AND token_type = 'session'`

	if _, err := r.db.ExecContext(ctx, query, email); err != nil {
		return fmt.Errorf("deleting sessions for email: %w", err)
	}

	return nil
}

// DeleteSession revokes a single session by its token value.
func (r *tokenRepository) DeleteSession(ctx context.Context, tok string) error {
	query := `DELETE FROM auth_tokens WHERE token = ? AND token_type = 'session'`

	if _, err := r.db.ExecContext(ctx, query, tok); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	return nil
}
