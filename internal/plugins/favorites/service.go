package favorites

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/sanitize"
)

// Service defines the business logic contract for favorites.
type Service interface {
	GetMovies(ctx context.Context, userID string) ([]Movie, error)
	UpdateMovies(ctx context.Context, userID string, movies []Movie) error

	GetDirectors(ctx context.Context, userID string) ([]Person, error)
	UpdateDirectors(ctx context.Context, userID string, directors []Person) error

	GetActors(ctx context.Context, userID string) ([]Person, error)
	UpdateActors(ctx context.Context, userID string, actors []Person) error

	GetGenres(ctx context.Context, userID string) ([]Genre, error)
	UpdateGenres(ctx context.Context, userID string, genres []Genre) error

	GetTheaters(ctx context.Context, userID string) (json.RawMessage, error)
	UpdateTheaters(ctx context.Context, userID string, theaters json.RawMessage) error

	GetQuote(ctx context.Context, userID string) (Quote, error)
	UpdateQuote(ctx context.Context, userID string, quote Quote) error
}

// service implements Service. Titles, names, and quote text pass through
// the HTML sanitizer on the way in -- they are rendered on public pages.
type service struct {
	repo Repository
}

// NewService creates a favorites service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetMovies(ctx context.Context, userID string) ([]Movie, error) {
	movies, err := s.repo.ListMovies(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorite movies: %w", err))
	}
	return movies, nil
}

func (s *service) UpdateMovies(ctx context.Context, userID string, movies []Movie) error {
	for i := range movies {
		movies[i].Title = sanitize.Text(movies[i].Title)
	}
	if err := s.repo.ReplaceMovies(ctx, userID, movies); err != nil {
		return apperror.NewInternal(fmt.Errorf("replacing favorite movies: %w", err))
	}
	return nil
}

func (s *service) GetDirectors(ctx context.Context, userID string) ([]Person, error) {
	directors, err := s.repo.ListDirectors(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorite directors: %w", err))
	}
	return directors, nil
}

func (s *service) UpdateDirectors(ctx context.Context, userID string, directors []Person) error {
	sanitizePersons(directors)
	if err := s.repo.ReplaceDirectors(ctx, userID, directors); err != nil {
		return apperror.NewInternal(fmt.Errorf("replacing favorite directors: %w", err))
	}
	return nil
}

func (s *service) GetActors(ctx context.Context, userID string) ([]Person, error) {
	actors, err := s.repo.ListActors(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorite actors: %w", err))
	}
	return actors, nil
}

func (s *service) UpdateActors(ctx context.Context, userID string, actors []Person) error {
	sanitizePersons(actors)
	if err := s.repo.ReplaceActors(ctx, userID, actors); err != nil {
		return apperror.NewInternal(fmt.Errorf("replacing favorite actors: %w", err))
	}
	return nil
}

func (s *service) GetGenres(ctx context.Context, userID string) ([]Genre, error) {
	genres, err := s.repo.ListGenres(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorite genres: %w", err))
	}
	return genres, nil
}

func (s *service) UpdateGenres(ctx context.Context, userID string, genres []Genre) error {
	if err := s.repo.ReplaceGenres(ctx, userID, genres); err != nil {
		return apperror.NewInternal(fmt.Errorf("replacing favorite genres: %w", err))
	}
	return nil
}

func (s *service) GetTheaters(ctx context.Context, userID string) (json.RawMessage, error) {
	theaters, err := s.repo.GetTheaters(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading favorite theaters: %w", err))
	}
	return theaters, nil
}

func (s *service) UpdateTheaters(ctx context.Context, userID string, theaters json.RawMessage) error {
	if err := s.repo.SetTheaters(ctx, userID, theaters); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing favorite theaters: %w", err))
	}
	return nil
}

func (s *service) GetQuote(ctx context.Context, userID string) (Quote, error) {
	quote, err := s.repo.GetQuote(ctx, userID)
	if err != nil {
		return Quote{}, apperror.NewInternal(fmt.Errorf("loading favorite quote: %w", err))
	}
	if quote == nil {
		// No quote yet: the SPA expects empty strings, not a 404.
		return Quote{}, nil
	}
	return *quote, nil
}

func (s *service) UpdateQuote(ctx context.Context, userID string, quote Quote) error {
	quote.Text = sanitize.Text(quote.Text)
	quote.Title = sanitize.Text(quote.Title)
	if err := s.repo.SetQuote(ctx, userID, quote); err != nil {
		return apperror.NewInternal(fmt.Errorf("storing favorite quote: %w", err))
	}
	return nil
}

func sanitizePersons(persons []Person) {
	for i := range persons {
		persons[i].Name = sanitize.Text(persons[i].Name)
	}
}
