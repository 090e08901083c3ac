package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/mailer"
	"github.com/cinefil/cinefil/internal/token"
)

// UserStore is the slice of the users plugin the handshake needs: resolve
// an email to an account id, and create the account rows on registration.
type UserStore interface {
	// FindIDByEmail returns the user id owning an email, or found == false
	// when no account exists. That second case is NOT an error -- it routes
	// the handshake toward registration.
	FindIDByEmail(ctx context.Context, email string) (userID string, found bool, err error)

	// Register creates the user and profile rows. Re-running with the same
	// userID must be a no-op, not an error, so a retried registration
	// converges instead of failing.
	Register(ctx context.Context, userID, email, displayName string) error
}

// AuthService defines the business logic contract for the login handshake.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Login(ctx context.Context, email string) error
	Verify(ctx context.Context, code string) (*VerifyResult, error)
	Register(ctx context.Context, input RegisterRequest) (*RegisterResult, error)
	Logout(ctx context.Context, sessionToken string) error
}

// authService implements AuthService over the credential store, the signed
// token codec, and the outbound mailer.
type authService struct {
	tokens TokenRepository
	users  UserStore
	codec  *token.Codec
	mail   mailer.Mailer

	loginCodeTTL time.Duration
	sessionTTL   time.Duration
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(tokens TokenRepository, users UserStore, codec *token.Codec, mail mailer.Mailer, loginCodeTTL, sessionTTL time.Duration) AuthService {
	return &authService{
		tokens:       tokens,
		users:        users,
		codec:        codec,
		mail:         mail,
		loginCodeTTL: loginCodeTTL,
		sessionTTL:   sessionTTL,
	}
}

// Login issues a fresh 6-digit code for the email and sends it. The flow
// is identical whether or not the email has an account -- same work, same
// success response -- so the endpoint can't be used to probe which emails
// are registered.
func (s *authService) Login(ctx context.Context, email string) error {
	now := time.Now().Unix()

	// Clear this email's dead codes before issuing a new one. There is no
	// background sweeper; cleanup rides along with each login request.
	if err := s.tokens.DeleteExpiredLoginCodes(ctx, email, now); err != nil {
		return apperror.NewInternal(fmt.Errorf("cleaning expired codes: %w", err))
	}

	userID, found, err := s.users.FindIDByEmail(ctx, email)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("resolving email: %w", err))
	}

	otp, err := token.GenerateOTP(s.loginCodeTTL)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("generating login code: %w", err))
	}

	rec := &TokenRecord{
		Token:     otp.String(),
		Type:      token.TypeLoginCode,
		Email:     email,
		ExpiresAt: otp.ExpiresAt,
	}
	if found {
		rec.UserID = sql.NullString{String: userID, Valid: true}
	}

	if err := s.tokens.Insert(ctx, rec); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing login code: %w", err))
	}

	if err := s.mail.SendLoginCode(ctx, email, otp.String()); err != nil {
		return apperror.NewInternal(fmt.Errorf("sending login code: %w", err))
	}

	slog.Info("login code issued",
		slog.String("email", email),
		slog.Bool("known_account", found),
	)

	return nil
}

// Verify exchanges a 6-digit code for the next handshake step. A code
// bound to an account yields a session token; a code for an unknown email
// yields NeedsRegistration so the caller opens the registration window.
// Either way the code is consumed -- it can never be redeemed twice.
func (s *authService) Verify(ctx context.Context, code string) (*VerifyResult, error) {
	now := time.Now().Unix()

	rec, err := s.tokens.FindLoginCode(ctx, code, now)
	if err == ErrCodeNotFound {
		// Wrong, expired, and already-used codes are indistinguishable.
		return nil, apperror.NewUnauthorized("Invalid or expired code")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("looking up login code: %w", err))
	}

	if err := s.tokens.DeleteLoginCode(ctx, code); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("consuming login code: %w", err))
	}

	if !rec.UserID.Valid {
		// Verified email with no account: hand off to registration.
		return &VerifyResult{Email: rec.Email, NeedsRegistration: true}, nil
	}

	sessionToken, err := s.createSession(ctx, rec.UserID.String, rec.Email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	slog.Info("user logged in", slog.String("user_id", rec.UserID.String))

	return &VerifyResult{
		SessionToken: sessionToken,
		UserID:       rec.UserID.String,
		Email:        rec.Email,
	}, nil
}

// Register creates the account for a verified email and signs it in. The
// handler has already validated the fields; this layer persists the rows
// and mints the first session.
func (s *authService) Register(ctx context.Context, input RegisterRequest) (*RegisterResult, error) {
	if err := s.users.Register(ctx, input.UserID, input.Email, input.DisplayName); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating account: %w", err))
	}

	sessionToken, err := s.createSession(ctx, input.UserID, input.Email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", input.UserID),
		slog.String("email", input.Email),
	)

	return &RegisterResult{UserID: input.UserID, SessionToken: sessionToken}, nil
}

// Logout revokes a session in the credential store. The signed token keeps
// verifying cryptographically until its expiry, but without the store row
// the authorization gate rejects it.
func (s *authService) Logout(ctx context.Context, sessionToken string) error {
	if err := s.tokens.DeleteSession(ctx, sessionToken); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting session: %w", err))
	}
	return nil
}

// createSession replaces any live sessions for the email with a freshly
// signed one and persists it. Revoke-then-insert is not transactional: a
// crash between the two steps logs the user out everywhere, which fails
// safe.
func (s *authService) createSession(ctx context.Context, userID, email string) (string, error) {
	if err := s.tokens.DeleteSessionsForEmail(ctx, email); err != nil {
		return "", fmt.Errorf("revoking old sessions: %w", err)
	}

	signed, expiresAt, err := s.codec.SignUser(userID, token.TypeSession, s.sessionTTL)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	rec := &TokenRecord{
		Token:     signed,
		Type:      token.TypeSession,
		Email:     email,
		UserID:    sql.NullString{String: userID, Valid: true},
		ExpiresAt: expiresAt,
	}
	if err := s.tokens.Insert(ctx, rec); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return signed, nil
}
