package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/token"
)

// newOwnerRequest builds an Echo context for a guarded per-user route.
func newOwnerRequest(t *testing.T, paramUserID, cookieValue string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPut, "/api/users/"+paramUserID+"/profile", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	c.SetParamNames("userId")
	c.SetParamValues(paramUserID)

	return c, rec
}

func testCookieConfig() CookieConfig {
	return NewCookieConfig(true, "", 24*time.Hour, 15*time.Minute)
}

// okHandler marks that the gate let the request through.
func okHandler(called *bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		*called = true
		return c.NoContent(http.StatusOK)
	}
}

func TestRequireOwner_NoCookie(t *testing.T) {
	mw := RequireOwner(token.NewCodec(testSecret), &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", "")
	err := mw(okHandler(&called))(c)

	assertAppError(t, err, 401)
	if called {
		t.Error("expected handler not to be called")
	}
}

func TestRequireOwner_MalformedToken(t *testing.T) {
	mw := RequireOwner(token.NewCodec(testSecret), &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", "not-a-jwt")
	err := mw(okHandler(&called))(c)

	assertAppError(t, err, 401)
	if called {
		t.Error("expected handler not to be called")
	}
}

func TestRequireOwner_WrongSecret(t *testing.T) {
	// Token signed with a different secret must not verify.
	other := token.NewCodec("a-completely-different-secret-key")
	signed, _, err := other.SignUser("alice", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	mw := RequireOwner(token.NewCodec(testSecret), &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", signed)
	assertAppError(t, mw(okHandler(&called))(c), 401)
}

func TestRequireOwner_ExpiredToken(t *testing.T) {
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeSession, -time.Minute)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	mw := RequireOwner(codec, &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", signed)
	assertAppError(t, mw(okHandler(&called))(c), 401)
}

func TestRequireOwner_LoginCodeTokenRejected(t *testing.T) {
	// A correctly signed token of the wrong type must not open the gate.
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeLoginCode, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	mw := RequireOwner(codec, &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", signed)
	assertAppError(t, mw(okHandler(&called))(c), 401)
}

func TestRequireOwner_MissingUserIDClaim(t *testing.T) {
	// An email-subject token (pre-registration) has no userId claim.
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignEmail("alice@example.com", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	mw := RequireOwner(codec, &mockTokenRepo{}, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", signed)
	assertAppError(t, mw(okHandler(&called))(c), 401)
}

func TestRequireOwner_RevokedSession(t *testing.T) {
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	// Signature verifies but the store row is gone (logged out elsewhere).
	tokens := &mockTokenRepo{
		sessionExistsFn: func(ctx context.Context, tok string, now int64) (bool, error) {
			return false, nil
		},
	}
	mw := RequireOwner(codec, tokens, testCookieConfig())

	var called bool
	c, rec := newOwnerRequest(t, "alice", signed)
	if err := mw(okHandler(&called))(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if called {
		t.Error("expected handler not to be called")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"authenticated":false`) {
		t.Errorf("expected authenticated:false body, got %s", rec.Body.String())
	}

	// The stale cookie must be cleared.
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("expected stale session cookie to be cleared")
	}
}

func TestRequireOwner_StoreError(t *testing.T) {
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	tokens := &mockTokenRepo{
		sessionExistsFn: func(ctx context.Context, tok string, now int64) (bool, error) {
			return false, errors.New("db unreachable")
		},
	}
	mw := RequireOwner(codec, tokens, testCookieConfig())

	var called bool
	c, _ := newOwnerRequest(t, "alice", signed)
	assertAppError(t, mw(okHandler(&called))(c), 401)
}

func TestRequireOwner_OwnershipMismatch(t *testing.T) {
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	tokens := &mockTokenRepo{
		sessionExistsFn: func(ctx context.Context, tok string, now int64) (bool, error) {
			return true, nil
		},
	}
	mw := RequireOwner(codec, tokens, testCookieConfig())

	// alice's valid session attempting bob's route.
	var called bool
	c, _ := newOwnerRequest(t, "bob", signed)
	assertAppError(t, mw(okHandler(&called))(c), 403)
	if called {
		t.Error("expected handler not to be called")
	}
}

func TestRequireOwner_Success(t *testing.T) {
	codec := token.NewCodec(testSecret)
	signed, _, err := codec.SignUser("alice", token.TypeSession, time.Hour)
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	tokens := &mockTokenRepo{
		sessionExistsFn: func(ctx context.Context, tok string, now int64) (bool, error) {
			if tok != signed {
				t.Errorf("expected lookup of the presented token")
			}
			return true, nil
		},
	}
	mw := RequireOwner(codec, tokens, testCookieConfig())

	var called bool
	var userIDInContext string
	handler := func(c echo.Context) error {
		called = true
		userIDInContext = GetUserID(c)
		return c.NoContent(http.StatusOK)
	}

	c, _ := newOwnerRequest(t, "alice", signed)
	if err := mw(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !called {
		t.Fatal("expected handler to be called")
	}
	if userIDInContext != "alice" {
		t.Errorf("expected user id alice in context, got %q", userIDInContext)
	}
}
