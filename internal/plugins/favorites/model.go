// Package favorites manages the curated lists on a profile page: top
// movies, directors, actors, genres, theaters, and a favorite quote.
// Movies and people are shared lookup rows (TMDB ids) linked to users
// with an explicit display order; theaters and the quote are single-row
// per-user upserts. All reads are public; all writes are owner-only.
package favorites

import "encoding/json"

// Movie is a favorite movie entry. ID is the TMDB movie id.
type Movie struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	PosterPath   string `json:"posterPath,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
	Year         string `json:"year,omitempty"`
}

// Person is a favorite director or actor entry. ID is the TMDB person id.
type Person struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProfilePath  string `json:"profilePath,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty"`
}

// Genre is a favorite genre reference. Only the TMDB genre id is stored;
// the SPA owns the id-to-name mapping.
type Genre struct {
	ID int64 `json:"id"`
}

// Quote is the favorite movie quote shown on the profile.
type Quote struct {
	Text  string `json:"text"`
	Title string `json:"title"`
}

// --- Request DTOs ---

// MoviesUpdateRequest replaces the whole movie list.
type MoviesUpdateRequest struct {
	Movies []Movie `json:"movies"`
	UserID string  `json:"userId"`
}

// PersonsUpdateRequest replaces a director or actor list.
type PersonsUpdateRequest struct {
	Directors []Person `json:"directors"`
	Actors    []Person `json:"actors"`
	UserID    string   `json:"userId"`
}

// GenresUpdateRequest replaces the genre list.
type GenresUpdateRequest struct {
	Genres []Genre `json:"genres"`
	UserID string  `json:"userId"`
}

// TheatersUpdateRequest replaces the theaters blob. The theater objects
// come from an external cinema API and are stored verbatim, so the
// payload stays raw JSON end to end.
type TheatersUpdateRequest struct {
	Theaters json.RawMessage `json:"theaters"`
	UserID   string          `json:"userId"`
}

// QuoteUpdateRequest sets the favorite quote.
type QuoteUpdateRequest struct {
	Quote  Quote  `json:"quote"`
	UserID string `json:"userId"`
}
