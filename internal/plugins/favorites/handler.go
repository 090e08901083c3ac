package favorites

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/validate"
)

// List size limits. The profile page shows a top-6 movie grid and top-3
// rows for people and genres; the API enforces the same bounds.
const (
	maxMovies  = 6
	maxPersons = 3
	maxGenres  = 3
)

// Handler handles HTTP requests for favorites. GET endpoints are public;
// the write endpoints sit behind the ownership gate, so by the time a
// handler runs the path's :userId is the authenticated user.
type Handler struct {
	service Service
}

// NewHandler creates a new favorites handler.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// --- Movies ---

// GetMovies returns a user's favorite movies (GET /api/users/:userId/movies).
func (h *Handler) GetMovies(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	movies, err := h.service.GetMovies(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"movies": movies})
}

// UpdateMovies replaces the favorite movie list (PUT /api/users/:userId/movies).
func (h *Handler) UpdateMovies(c echo.Context) error {
	var req MoviesUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Movies must be an array")
	}

	if len(req.Movies) > maxMovies {
		return apperror.NewBadRequest("Maximum 6 movies allowed")
	}
	for _, m := range req.Movies {
		if m.ID == 0 || m.Title == "" {
			return apperror.NewBadRequest("Invalid movie data")
		}
	}

	if err := h.service.UpdateMovies(c.Request().Context(), c.Param("userId"), req.Movies); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Favorite Movies updated successfully"})
}

// --- Directors ---

// GetDirectors returns a user's favorite directors (GET /api/users/:userId/directors).
func (h *Handler) GetDirectors(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	directors, err := h.service.GetDirectors(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"directors": directors})
}

// UpdateDirectors replaces the favorite director list (PUT /api/users/:userId/directors).
func (h *Handler) UpdateDirectors(c echo.Context) error {
	var req PersonsUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Data must be an array")
	}

	if msg := validatePersons(req.Directors); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	if err := h.service.UpdateDirectors(c.Request().Context(), c.Param("userId"), req.Directors); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Favorite Directors updated successfully"})
}

// --- Actors ---

// GetActors returns a user's favorite actors (GET /api/users/:userId/actors).
func (h *Handler) GetActors(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	actors, err := h.service.GetActors(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"actors": actors})
}

// UpdateActors replaces the favorite actor list (PUT /api/users/:userId/actors).
func (h *Handler) UpdateActors(c echo.Context) error {
	var req PersonsUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Data must be an array")
	}

	if msg := validatePersons(req.Actors); msg != "" {
		return apperror.NewBadRequest(msg)
	}

	if err := h.service.UpdateActors(c.Request().Context(), c.Param("userId"), req.Actors); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Favorite Actors updated successfully"})
}

// --- Genres ---

// GetGenres returns a user's favorite genres (GET /api/users/:userId/genres).
func (h *Handler) GetGenres(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	genres, err := h.service.GetGenres(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"genres": genres})
}

// UpdateGenres replaces the favorite genre list (PUT /api/users/:userId/genres).
func (h *Handler) UpdateGenres(c echo.Context) error {
	var req GenresUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Data must be an array")
	}

	if len(req.Genres) > maxGenres {
		return apperror.NewBadRequest("Maximum 3 items allowed")
	}

	if err := h.service.UpdateGenres(c.Request().Context(), c.Param("userId"), req.Genres); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Top 3 Genres updated successfully"})
}

// --- Theaters ---

// GetTheaters returns a user's favorite theaters (GET /api/users/:userId/theaters).
func (h *Handler) GetTheaters(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	theaters, err := h.service.GetTheaters(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if len(theaters) == 0 {
		theaters = json.RawMessage("[]")
	}

	return c.JSON(http.StatusOK, map[string]any{"theaters": theaters})
}

// UpdateTheaters replaces the theaters blob (POST /api/users/:userId/theaters).
func (h *Handler) UpdateTheaters(c echo.Context) error {
	var req TheatersUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Theater data is required")
	}
	if len(req.Theaters) == 0 {
		req.Theaters = json.RawMessage("[]")
	}

	if err := h.service.UpdateTheaters(c.Request().Context(), c.Param("userId"), req.Theaters); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Favorite Theater added successfully"})
}

// --- Quote ---

// GetQuote returns a user's favorite quote (GET /api/users/:userId/quote).
// A user with no quote yet gets empty strings, not a 404.
func (h *Handler) GetQuote(c echo.Context) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}

	quote, err := h.service.GetQuote(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]any{"quote": quote})
}

// UpdateQuote sets the favorite quote (POST /api/users/:userId/quote).
func (h *Handler) UpdateQuote(c echo.Context) error {
	var req QuoteUpdateRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Quote data is required")
	}

	if req.Quote.Text == "" {
		return apperror.NewBadRequest("Quote data is required")
	}
	if msg := validate.Quote(req.Quote.Text); msg != "" {
		return apperror.NewBadRequest(msg)
	}
	if req.Quote.Title != "" {
		if msg := validate.QuoteTitle(req.Quote.Title); msg != "" {
			return apperror.NewBadRequest(msg)
		}
	}

	if err := h.service.UpdateQuote(c.Request().Context(), c.Param("userId"), req.Quote); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{"message": "Favorite Quote added successfully"})
}

// --- Helpers ---

// pathUserID reads the :userId path parameter for public GET endpoints.
func pathUserID(c echo.Context) (string, error) {
	userID := c.Param("userId")
	if userID == "" {
		return "", apperror.NewBadRequest("User ID is required")
	}
	return userID, nil
}

// validatePersons enforces the shared bounds for director and actor lists.
func validatePersons(persons []Person) string {
	if len(persons) > maxPersons {
		return "Maximum 3 items allowed"
	}
	for _, p := range persons {
		if p.ID == 0 || p.Name == "" {
			return "Invalid data"
		}
	}
	return ""
}
