package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/validate"
)

// Cookie names shared by the handshake endpoints and the authorization
// middleware. session_token carries the signed session; temp_login_auth is
// the short-lived marker proving email ownership during registration.
const (
	sessionCookieName  = "session_token"
	tempAuthCookieName = "temp_login_auth"
)

// tempAuthCookieValue is the only value the marker cookie ever holds.
const tempAuthCookieValue = "verified"

// CookieConfig bakes the attributes every auth cookie shares. The SPA and
// the API live on different origins in development (localhost ports), so
// dev uses SameSite=None with no Domain; production scopes cookies to the
// apex domain with SameSite=Lax. Secure is always on -- browsers require
// it for SameSite=None anyway.
type CookieConfig struct {
	SameSite http.SameSite
	Domain   string

	SessionTTL  time.Duration
	TempAuthTTL time.Duration
}

// NewCookieConfig derives cookie attributes from the runtime environment.
func NewCookieConfig(isDev bool, domain string, sessionTTL, tempAuthTTL time.Duration) CookieConfig {
	cc := CookieConfig{
		SameSite:    http.SameSiteLaxMode,
		Domain:      domain,
		SessionTTL:  sessionTTL,
		TempAuthTTL: tempAuthTTL,
	}
	if isDev {
		cc.SameSite = http.SameSiteNoneMode
		cc.Domain = ""
	}
	return cc
}

// Handler handles the handshake endpoints: login, verify, register, logout.
// Handlers are thin: they bind the request, validate fields, call the
// service, and write cookies plus the JSON response. No business logic
// lives here.
type Handler struct {
	service  AuthService
	cookies  CookieConfig
	reserved []string
}

// NewHandler creates a new auth handler.
func NewHandler(service AuthService, cookies CookieConfig, reservedUserIDs []string) *Handler {
	return &Handler{service: service, cookies: cookies, reserved: reservedUserIDs}
}

// Login requests a 6-digit code for an email (POST /api/auth/login).
// The response is the same whether or not the email has an account.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Invalid email")
	}

	if msg := validate.Email(req.Email); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	if err := h.service.Login(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Login code sent to your email",
	})
}

// Verify exchanges a 6-digit code for a session or a registration window
// (POST /api/auth/verify).
func (h *Handler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Verification code is required")
	}
	if req.LoginCode == "" {
		return apperror.NewBadRequest("Verification code is required")
	}

	// The shape check runs before any store access so malformed input
	// never costs a query.
	code := req.LoginCode.String()
	if !isSixDigits(code) {
		return apperror.NewBadRequest("Verification code must be 6 digits")
	}

	result, err := h.service.Verify(c.Request().Context(), code)
	if err != nil {
		return err
	}

	if result.NeedsRegistration {
		// Email verified but no account: set the short-lived marker and
		// let the SPA route to registration.
		h.setTempAuthCookie(c)
	} else {
		h.setSessionCookie(c, result.SessionToken)
	}

	return c.JSON(http.StatusOK, VerifyResponse{
		Valid:             true,
		SessionToken:      result.SessionToken,
		UserID:            result.UserID,
		Email:             result.Email,
		NeedsRegistration: result.NeedsRegistration,
	})
}

// Register completes signup for a verified email (POST /api/auth/register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Invalid request")
	}

	if msg := validate.UserID(req.UserID, h.reserved); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.Email(req.Email); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.DisplayName(req.DisplayName); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	result, err := h.service.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	h.setSessionCookie(c, result.SessionToken)
	h.clearTempAuthCookie(c)

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"userId":  result.UserID,
		"message": "Registered successfully",
	})
}

// Logout revokes the current session (POST /api/auth/logout). The cookie
// is cleared even when the store delete fails -- the client ends up logged
// out either way.
func (h *Handler) Logout(c echo.Context) error {
	sessionToken := readCookie(c, sessionCookieName)
	if sessionToken == "" {
		return c.JSON(http.StatusUnauthorized, map[string]any{
			"authenticated": false,
		})
	}

	h.clearSessionCookie(c)

	if err := h.service.Logout(c.Request().Context(), sessionToken); err != nil {
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": "Logged out",
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

// --- Cookie helpers ---

// readCookie returns a cookie's value or empty string when absent.
func readCookie(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setSessionCookie(c echo.Context, tok string) {
	c.SetCookie(h.cookies.build(sessionCookieName, tok, int(h.cookies.SessionTTL.Seconds())))
}

func (h *Handler) clearSessionCookie(c echo.Context) {
	c.SetCookie(h.cookies.build(sessionCookieName, "", -1))
}

func (h *Handler) setTempAuthCookie(c echo.Context) {
	c.SetCookie(h.cookies.build(tempAuthCookieName, tempAuthCookieValue, int(h.cookies.TempAuthTTL.Seconds())))
}

func (h *Handler) clearTempAuthCookie(c echo.Context) {
	c.SetCookie(h.cookies.build(tempAuthCookieName, "", -1))
}

// build assembles a cookie with the shared auth attributes.
func (cc CookieConfig) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cc.Domain,
		HttpOnly: true,
		Secure:   true,
		SameSite: cc.SameSite,
		MaxAge:   maxAge,
	}
}

// --- Validation helpers ---

// isSixDigits reports whether s is exactly six ASCII digits.
func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
