package favorites

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the favorites routes. Reads are public -- they
// render on anyone's view of a profile -- and every write goes through
// the ownership gate supplied by the caller. Theaters and quote use POST
// for writes; the list endpoints use PUT.
func RegisterRoutes(e *echo.Echo, h *Handler, requireOwner echo.MiddlewareFunc) {
	e.GET("/api/users/:userId/movies", h.GetMovies)
	e.PUT("/api/users/:userId/movies", h.UpdateMovies, requireOwner)

	e.GET("/api/users/:userId/directors", h.GetDirectors)
	e.PUT("/api/users/:userId/directors", h.UpdateDirectors, requireOwner)

	e.GET("/api/users/:userId/actors", h.GetActors)
	e.PUT("/api/users/:userId/actors", h.UpdateActors, requireOwner)

	e.GET("/api/users/:userId/genres", h.GetGenres)
	e.PUT("/api/users/:userId/genres", h.UpdateGenres, requireOwner)

	e.GET("/api/users/:userId/theaters", h.GetTheaters)
	e.POST("/api/users/:userId/theaters", h.UpdateTheaters, requireOwner)

	e.GET("/api/users/:userId/quote", h.GetQuote)
	e.POST("/api/users/:userId/quote", h.UpdateQuote, requireOwner)
}
