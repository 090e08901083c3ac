package users

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up account and profile routes. The availability
// check, the public profile read, and the initial profile write are open;
// profile updates pass through the ownership gate supplied by the caller.
func RegisterRoutes(e *echo.Echo, h *Handler, requireOwner echo.MiddlewareFunc) {
	e.POST("/api/users/check", h.Check)
	e.GET("/api/users/:userId/profile", h.GetProfile)
	e.POST("/api/users/:userId/profile", h.CreateProfile)
	e.PUT("/api/users/:userId/profile", h.UpdateProfile, requireOwner)
}
