package users

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

// --- Mock Service ---

// mockService implements Service for handler tests.
type mockService struct {
	checkFn  func(ctx context.Context, userID string) (bool, error)
	getFn    func(ctx context.Context, userID string) (*Profile, error)
	createFn func(ctx context.Context, userID string, p Profile) error
	updateFn func(ctx context.Context, userID string, p Profile) error
}

func (m *mockService) CheckAvailability(ctx context.Context, userID string) (bool, error) {
	if m.checkFn != nil {
		return m.checkFn(ctx, userID)
	}
	return true, nil
}

func (m *mockService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return &Profile{}, nil
}

func (m *mockService) CreateProfile(ctx context.Context, userID string, p Profile) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, p)
	}
	return nil
}

func (m *mockService) UpdateProfile(ctx context.Context, userID string, p Profile) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, p)
	}
	return nil
}

// --- Helpers ---

var testReserved = []string{"login", "register", "admin", "api"}

func doRequest(t *testing.T, h echo.HandlerFunc, method, body, paramUserID string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if paramUserID != "" {
		c.SetParamNames("userId")
		c.SetParamValues(paramUserID)
	}

	return rec, h(c)
}

// --- Check Tests ---

func TestHandlerCheck_BareBoolean(t *testing.T) {
	svc := &mockService{
		checkFn: func(ctx context.Context, userID string) (bool, error) {
			return userID != "taken", nil
		},
	}
	h := NewHandler(svc, testReserved)

	rec, err := doRequest(t, h.Check, http.MethodPost, `{"userId":"alice"}`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The body is a bare JSON boolean, not an object.
	if got := strings.TrimSpace(rec.Body.String()); got != "true" {
		t.Errorf("expected bare true, got %q", got)
	}

	rec, err = doRequest(t, h.Check, http.MethodPost, `{"userId":"taken"}`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "false" {
		t.Errorf("expected bare false, got %q", got)
	}
}

func TestHandlerCheck_MissingUserID(t *testing.T) {
	h := NewHandler(&mockService{}, testReserved)
	_, err := doRequest(t, h.Check, http.MethodPost, `{}`, "")
	assertAppError(t, err, 400)
}

// --- Profile Tests ---

func TestHandlerGetProfile_Success(t *testing.T) {
	svc := &mockService{
		getFn: func(ctx context.Context, userID string) (*Profile, error) {
			return &Profile{
				DisplayName: "Alice",
				Bio:         "Film lover",
				SocialLinks: map[string]string{"website": "https://example.com"},
			}, nil
		},
	}
	h := NewHandler(svc, testReserved)

	rec, err := doRequest(t, h.GetProfile, http.MethodGet, "", "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{`"displayName":"Alice"`, `"bio":"Film lover"`, `"socialLinks"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected body to contain %s, got %s", want, body)
		}
	}
}

func TestHandlerUpdateProfile_Validation(t *testing.T) {
	h := NewHandler(&mockService{}, testReserved)

	longBio := strings.Repeat("a", 151)
	tests := []struct {
		name string
		body string
	}{
		{"missing displayName", `{"userId":"alice","profile":{}}`},
		{"bio too long", `{"userId":"alice","profile":{"displayName":"Alice","bio":"` + longBio + `"}}`},
		{"bad website", `{"userId":"alice","profile":{"displayName":"Alice","socialLinks":{"website":"not-a-url"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := doRequest(t, h.UpdateProfile, http.MethodPut, tt.body, "alice")
			assertAppError(t, err, 400)
		})
	}
}

func TestHandlerUpdateProfile_UsesPathParam(t *testing.T) {
	var targetUserID string
	svc := &mockService{
		updateFn: func(ctx context.Context, userID string, p Profile) error {
			targetUserID = userID
			return nil
		},
	}
	h := NewHandler(svc, testReserved)

	// Body names a userId; the (ownership-checked) path wins.
	body := `{"userId":"alice","profile":{"displayName":"Alice"}}`
	rec, err := doRequest(t, h.UpdateProfile, http.MethodPut, body, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if targetUserID != "alice" {
		t.Errorf("expected update target alice, got %q", targetUserID)
	}
}
