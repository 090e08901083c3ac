package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/token"
)

// contextKeyUserID stores the authenticated user's id in the Echo context.
// Other plugins read it via GetUserID.
const contextKeyUserID = "auth_user_id"

// RequireOwner returns middleware guarding routes of the form
// /api/users/:userId/... . A request passes only when it carries a session
// cookie whose token verifies cryptographically, is of session type,
// still exists in the credential store, AND belongs to the same user the
// route addresses. The checks run cheapest-first: no store query happens
// until the signature has already passed.
func RequireOwner(codec *token.Codec, tokens TokenRepository, cookies CookieConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionToken := readCookie(c, sessionCookieName)
			if sessionToken == "" {
				return apperror.NewUnauthorized("Authentication required")
			}

			result := codec.Verify(sessionToken)
			if !result.Valid {
				return apperror.NewUnauthorized("Invalid or expired token")
			}

			if result.Claims.Type != token.TypeSession {
				// A login-code token in the session cookie is never valid,
				// signed or not.
				return apperror.NewUnauthorized("Invalid token type")
			}

			userID := result.Claims.UserID
			if userID == "" {
				return apperror.NewUnauthorized("Invalid token payload")
			}

			// Stateful half: the signature alone can't see logout or
			// revocation, only the store row can.
			exists, err := tokens.SessionExists(c.Request().Context(), sessionToken, time.Now().Unix())
			if err != nil {
				return apperror.NewUnauthorized("Authentication failed")
			}
			if !exists {
				// Revoked or superseded session: clear the stale cookie so
				// the browser stops resending it.
				c.SetCookie(cookies.build(sessionCookieName, "", -1))
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"authenticated": false,
				})
			}

			if c.Param("userId") != userID {
				return apperror.NewForbidden("Access denied: You can only access your own data")
			}

			c.Set(contextKeyUserID, userID)

			return next(c)
		}
	}
}

// GetUserID retrieves the authenticated user's id from the Echo context.
// Returns empty string if RequireOwner was not applied to the route.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}
