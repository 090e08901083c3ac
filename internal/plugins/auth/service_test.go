package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/token"
)

// --- Mock Token Repository ---

// mockTokenRepo implements TokenRepository for testing.
type mockTokenRepo struct {
	insertFn                  func(ctx context.Context, rec *TokenRecord) error
	findLoginCodeFn           func(ctx context.Context, code string, now int64) (*TokenRecord, error)
	sessionExistsFn           func(ctx context.Context, tok string, now int64) (bool, error)
	deleteLoginCodeFn         func(ctx context.Context, code string) error
	deleteExpiredLoginCodesFn func(ctx context.Context, email string, now int64) error
	deleteSessionsForEmailFn  func(ctx context.Context, email string) error
	deleteSessionFn           func(ctx context.Context, tok string) error
}

func (m *mockTokenRepo) Insert(ctx context.Context, rec *TokenRecord) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, rec)
	}
	return nil
}

func (m *mockTokenRepo) FindLoginCode(ctx context.Context, code string, now int64) (*TokenRecord, error) {
	if m.findLoginCodeFn != nil {
		return m.findLoginCodeFn(ctx, code, now)
	}
	return nil, ErrCodeNotFound
}

func (m *mockTokenRepo) SessionExists(ctx context.Context, tok string, now int64) (bool, error) {
	if m.sessionExistsFn != nil {
		return m.sessionExistsFn(ctx, tok, now)
	}
	return false, nil
}

func (m *mockTokenRepo) DeleteLoginCode(ctx context.Context, code string) error {
	if m.deleteLoginCodeFn != nil {
		return m.deleteLoginCodeFn(ctx, code)
	}
	return nil
}

func (m *mockTokenRepo) DeleteExpiredLoginCodes(ctx context.Context, email string, now int64) error {
	if m.deleteExpiredLoginCodesFn != nil {
		return m.deleteExpiredLoginCodesFn(ctx, email, now)
	}
	return nil
}

func (m *mockTokenRepo) DeleteSessionsForEmail(ctx context.Context, email string) error {
	if m.deleteSessionsForEmailFn != nil {
		return m.deleteSessionsForEmailFn(ctx, email)
	}
	return nil
}

func (m *mockTokenRepo) DeleteSession(ctx context.Context, tok string) error {
	if m.deleteSessionFn != nil {
		return m.deleteSessionFn(ctx, tok)
	}
	return nil
}

// --- Mock User Store ---

// mockUserStore implements UserStore for testing.
type mockUserStore struct {
	findIDByEmailFn func(ctx context.Context, email string) (string, bool, error)
	registerFn      func(ctx context.Context, userID, email, displayName string) error
}

func (m *mockUserStore) FindIDByEmail(ctx context.Context, email string) (string, bool, error) {
	if m.findIDByEmailFn != nil {
		return m.findIDByEmailFn(ctx, email)
	}
	return "", false, nil
}

func (m *mockUserStore) Register(ctx context.Context, userID, email, displayName string) error {
	if m.registerFn != nil {
		return m.registerFn(ctx, userID, email, displayName)
	}
	return nil
}

// --- Mock Mailer ---

// mockMailer implements mailer.Mailer for testing.
type mockMailer struct {
	sendFn func(ctx context.Context, to, code string) error
	// Capture fields for assertions.
	lastTo    string
	lastCode  string
	sendCount int
}

func (m *mockMailer) SendLoginCode(ctx context.Context, to, code string) error {
	m.lastTo = to
	m.lastCode = code
	m.sendCount++
	if m.sendFn != nil {
		return m.sendFn(ctx, to, code)
	}
	return nil
}

// --- Test Helpers ---

const testSecret = "test-secret-key-for-auth-service!"

func newTestAuthService(tokens *mockTokenRepo, users *mockUserStore, mail *mockMailer) *authService {
	return &authService{
		tokens:       tokens,
		users:        users,
		codec:        token.NewCodec(testSecret),
		mail:         mail,
		loginCodeTTL: 10 * time.Minute,
		sessionTTL:   24 * time.Hour,
	}
}

// assertAppError checks that err is an *apperror.AppError with the expected code.
func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// --- Login Tests ---

func TestLogin_KnownEmail(t *testing.T) {
	var stored *TokenRecord
	tokens := &mockTokenRepo{
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			stored = rec
			return nil
		},
	}
	users := &mockUserStore{
		findIDByEmailFn: func(ctx context.Context, email string) (string, bool, error) {
			return "alice", true, nil
		},
	}
	mail := &mockMailer{}

	svc := newTestAuthService(tokens, users, mail)
	if err := svc.Login(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected login code to be stored")
	}
	if stored.Type != token.TypeLoginCode {
		t.Errorf("expected login_code type, got %s", stored.Type)
	}
	if len(stored.Token) != 6 {
		t.Errorf("expected 6-digit code, got %q", stored.Token)
	}
	if !stored.UserID.Valid || stored.UserID.String != "alice" {
		t.Errorf("expected user_id alice, got %+v", stored.UserID)
	}
	if stored.Email != "alice@example.com" {
		t.Errorf("expected email alice@example.com, got %s", stored.Email)
	}

	// Expiry should be roughly 10 minutes out.
	untilExpiry := time.Until(time.Unix(stored.ExpiresAt, 0))
	if untilExpiry < 9*time.Minute || untilExpiry > 11*time.Minute {
		t.Errorf("expected expiry ~10 minutes, got %v", untilExpiry)
	}

	// The emailed code must match the stored one.
	if mail.sendCount != 1 {
		t.Fatalf("expected 1 email sent, got %d", mail.sendCount)
	}
	if mail.lastTo != "alice@example.com" {
		t.Errorf("expected email to alice@example.com, got %s", mail.lastTo)
	}
	if mail.lastCode != stored.Token {
		t.Errorf("emailed code %q does not match stored code %q", mail.lastCode, stored.Token)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	var stored *TokenRecord
	tokens := &mockTokenRepo{
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			stored = rec
			return nil
		},
	}
	users := &mockUserStore{} // FindIDByEmail returns not found.
	mail := &mockMailer{}

	svc := newTestAuthService(tokens, users, mail)

	// Unknown email behaves exactly like a known one: no error, code
	// stored, email sent. The only difference is the NULL user_id.
	if err := svc.Login(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected login code to be stored")
	}
	if stored.UserID.Valid {
		t.Errorf("expected NULL user_id for unknown email, got %q", stored.UserID.String)
	}
	if mail.sendCount != 1 {
		t.Errorf("expected 1 email sent, got %d", mail.sendCount)
	}
}

func TestLogin_CleansExpiredCodes(t *testing.T) {
	var cleanedEmail string
	tokens := &mockTokenRepo{
		deleteExpiredLoginCodesFn: func(ctx context.Context, email string, now int64) error {
			cleanedEmail = email
			return nil
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	if err := svc.Login(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanedEmail != "alice@example.com" {
		t.Errorf("expected expired-code cleanup for alice@example.com, got %q", cleanedEmail)
	}
}

func TestLogin_StoreError(t *testing.T) {
	tokens := &mockTokenRepo{
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			return errors.New("db write error")
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	err := svc.Login(context.Background(), "alice@example.com")
	assertAppError(t, err, 500)
}

func TestLogin_MailError(t *testing.T) {
	mail := &mockMailer{
		sendFn: func(ctx context.Context, to, code string) error {
			return errors.New("smtp unreachable")
		},
	}

	svc := newTestAuthService(&mockTokenRepo{}, &mockUserStore{}, mail)
	err := svc.Login(context.Background(), "alice@example.com")
	assertAppError(t, err, 500)
}

// --- Verify Tests ---

func TestVerify_KnownUser(t *testing.T) {
	var codeDeleted, sessionsRevoked bool
	var storedSession *TokenRecord

	tokens := &mockTokenRepo{
		findLoginCodeFn: func(ctx context.Context, code string, now int64) (*TokenRecord, error) {
			if code != "123456" {
				t.Errorf("expected lookup of 123456, got %s", code)
			}
			return &TokenRecord{
				Token:  code,
				Type:   token.TypeLoginCode,
				Email:  "alice@example.com",
				UserID: sql.NullString{String: "alice", Valid: true},
			}, nil
		},
		deleteLoginCodeFn: func(ctx context.Context, code string) error {
			codeDeleted = true
			return nil
		},
		deleteSessionsForEmailFn: func(ctx context.Context, email string) error {
			sessionsRevoked = true
			if email != "alice@example.com" {
				t.Errorf("expected revocation for alice@example.com, got %s", email)
			}
			return nil
		},
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			storedSession = rec
			return nil
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	result, err := svc.Verify(context.Background(), "123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NeedsRegistration {
		t.Error("expected NeedsRegistration false for known user")
	}
	if result.UserID != "alice" || result.Email != "alice@example.com" {
		t.Errorf("unexpected result identity: %+v", result)
	}
	if !codeDeleted {
		t.Error("expected login code to be consumed")
	}
	if !sessionsRevoked {
		t.Error("expected old sessions to be revoked before issuing a new one")
	}

	// The stored session row must mirror the returned token.
	if storedSession == nil {
		t.Fatal("expected session to be stored")
	}
	if storedSession.Type != token.TypeSession {
		t.Errorf("expected session type, got %s", storedSession.Type)
	}
	if storedSession.Token != result.SessionToken {
		t.Error("stored session token does not match returned token")
	}

	// The token must verify and carry the session type and user id.
	verified := token.NewCodec(testSecret).Verify(result.SessionToken)
	if !verified.Valid {
		t.Fatal("expected returned session token to verify")
	}
	if verified.Claims.Type != token.TypeSession {
		t.Errorf("expected session claim type, got %s", verified.Claims.Type)
	}
	if verified.Claims.UserID != "alice" {
		t.Errorf("expected userId claim alice, got %s", verified.Claims.UserID)
	}
}

func TestVerify_UnknownEmail(t *testing.T) {
	var codeDeleted bool
	var sessionStored bool

	tokens := &mockTokenRepo{
		findLoginCodeFn: func(ctx context.Context, code string, now int64) (*TokenRecord, error) {
			return &TokenRecord{
				Token: code,
				Type:  token.TypeLoginCode,
				Email: "new@example.com",
				// NULL user_id: no account yet.
			}, nil
		},
		deleteLoginCodeFn: func(ctx context.Context, code string) error {
			codeDeleted = true
			return nil
		},
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			sessionStored = true
			return nil
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	result, err := svc.Verify(context.Background(), "654321")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.NeedsRegistration {
		t.Error("expected NeedsRegistration true for unknown email")
	}
	if result.SessionToken != "" {
		t.Error("expected no session token for unregistered email")
	}
	if result.Email != "new@example.com" {
		t.Errorf("expected email new@example.com, got %s", result.Email)
	}
	if !codeDeleted {
		t.Error("expected login code to be consumed even without an account")
	}
	if sessionStored {
		t.Error("expected no session row for unregistered email")
	}
}

func TestVerify_InvalidCode(t *testing.T) {
	svc := newTestAuthService(&mockTokenRepo{}, &mockUserStore{}, &mockMailer{})
	_, err := svc.Verify(context.Background(), "000000")
	assertAppError(t, err, 401)
}

func TestVerify_LookupError(t *testing.T) {
	tokens := &mockTokenRepo{
		findLoginCodeFn: func(ctx context.Context, code string, now int64) (*TokenRecord, error) {
			return nil, errors.New("db connection lost")
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	_, err := svc.Verify(context.Background(), "123456")
	assertAppError(t, err, 500)
}

// --- Register Tests ---

func TestRegister_Success(t *testing.T) {
	var storedSession *TokenRecord
	users := &mockUserStore{
		registerFn: func(ctx context.Context, userID, email, displayName string) error {
			if userID != "alice" || email != "alice@example.com" || displayName != "Alice" {
				t.Errorf("unexpected register args: %s %s %s", userID, email, displayName)
			}
			return nil
		},
	}
	tokens := &mockTokenRepo{
		insertFn: func(ctx context.Context, rec *TokenRecord) error {
			storedSession = rec
			return nil
		},
	}

	svc := newTestAuthService(tokens, users, &mockMailer{})
	result, err := svc.Register(context.Background(), RegisterRequest{
		DisplayName: "Alice",
		UserID:      "alice",
		Email:       "alice@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UserID != "alice" {
		t.Errorf("expected userId alice, got %s", result.UserID)
	}
	if result.SessionToken == "" {
		t.Fatal("expected session token")
	}
	if storedSession == nil || storedSession.Token != result.SessionToken {
		t.Error("expected session row matching returned token")
	}

	verified := token.NewCodec(testSecret).Verify(result.SessionToken)
	if !verified.Valid || verified.Claims.UserID != "alice" {
		t.Error("expected session token bound to the new account")
	}
}

func TestRegister_StoreError(t *testing.T) {
	users := &mockUserStore{
		registerFn: func(ctx context.Context, userID, email, displayName string) error {
			return errors.New("db write error")
		},
	}

	svc := newTestAuthService(&mockTokenRepo{}, users, &mockMailer{})
	_, err := svc.Register(context.Background(), RegisterRequest{
		DisplayName: "Alice",
		UserID:      "alice",
		Email:       "alice@example.com",
	})
	assertAppError(t, err, 500)
}

// --- Logout Tests ---

func TestLogout_DeletesSession(t *testing.T) {
	var deleted string
	tokens := &mockTokenRepo{
		deleteSessionFn: func(ctx context.Context, tok string) error {
			deleted = tok
			return nil
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	if err := svc.Logout(context.Background(), "the-session-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "the-session-token" {
		t.Errorf("expected deletion of the-session-token, got %q", deleted)
	}
}

func TestLogout_StoreError(t *testing.T) {
	tokens := &mockTokenRepo{
		deleteSessionFn: func(ctx context.Context, tok string) error {
			return errors.New("db unreachable")
		},
	}

	svc := newTestAuthService(tokens, &mockUserStore{}, &mockMailer{})
	err := svc.Logout(context.Background(), "tok")
	assertAppError(t, err, 500)
}
