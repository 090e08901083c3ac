package users

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/validate"
)

// Handler handles HTTP requests for accounts and profiles. Handlers are
// thin: bind, validate, call the service, render JSON.
type Handler struct {
	service  Service
	reserved []string
}

// NewHandler creates a new users handler.
func NewHandler(service Service, reservedUserIDs []string) *Handler {
	return &Handler{service: service, reserved: reservedUserIDs}
}

// Check reports handle availability (POST /api/users/check). The response
// body is a bare JSON boolean: true means free, false means taken. The
// endpoint is public -- the signup form calls it on every keystroke.
func (h *Handler) Check(c echo.Context) error {
	var req CheckRequest
	if err := c.Bind(&req); err != nil || req.UserID == "" {
		return apperror.NewBadRequest("User ID required")
	}

	available, err := h.service.CheckAvailability(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, available)
}

// GetProfile returns a public profile (GET /api/users/:userId/profile).
// No authentication: profile pages are the product.
func (h *Handler) GetProfile(c echo.Context) error {
	userID := c.Param("userId")
	if userID == "" {
		return apperror.NewBadRequest("User ID is required")
	}

	profile, err := h.service.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profile)
}

// CreateProfile fills in the initial profile right after registration
// (POST /api/users/:userId/profile).
func (h *Handler) CreateProfile(c echo.Context) error {
	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Profile data is required")
	}

	if msg := validate.UserID(req.UserID, h.reserved); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.DisplayName(req.Profile.DisplayName); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	if err := h.service.CreateProfile(c.Request().Context(), req.UserID, req.Profile); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success": true,
		"message": "Profile created successfully",
	})
}

// UpdateProfile overwrites profile content (PUT /api/users/:userId/profile,
// owner only). The ownership gate has already matched the path param to
// the session, so the path is the authoritative target.
func (h *Handler) UpdateProfile(c echo.Context) error {
	var req ProfileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Profile data is required")
	}

	if msg := validate.UserID(req.UserID, h.reserved); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.DisplayName(req.Profile.DisplayName); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.Bio(req.Profile.Bio); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if msg := validate.URL(req.Profile.SocialLinks["website"]); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	if err := h.service.UpdateProfile(c.Request().Context(), c.Param("userId"), req.Profile); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Profile updated successfully",
	})
}
