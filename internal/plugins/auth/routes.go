package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the handshake endpoints. All four are public --
// they ARE the way a client becomes authenticated. The ownership
// middleware is exported separately (RequireOwner) for the plugins that
// guard per-user routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/api/auth/login", h.Login)
	e.POST("/api/auth/verify", h.Verify)
	e.POST("/api/auth/register", h.Register)
	e.POST("/api/auth/logout", h.Logout)
}
