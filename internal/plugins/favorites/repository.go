package favorites

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

// Repository is the data access contract for favorites. Replace operations
// are transactional: the old link rows and the new list land atomically,
// so a failed write never leaves a half-replaced list behind.
type Repository interface {
	ListMovies(ctx context.Context, userID string) ([]Movie, error)
	ReplaceMovies(ctx context.Context, userID string, movies []Movie) error

	ListDirectors(ctx context.Context, userID string) ([]Person, error)
	ReplaceDirectors(ctx context.Context, userID string, directors []Person) error

	ListActors(ctx context.Context, userID string) ([]Person, error)
	ReplaceActors(ctx context.Context, userID string, actors []Person) error

	ListGenres(ctx context.Context, userID string) ([]Genre, error)
	ReplaceGenres(ctx context.Context, userID string, genres []Genre) error

	GetTheaters(ctx context.Context, userID string) (json.RawMessage, error)
	SetTheaters(ctx context.Context, userID string, theaters json.RawMessage) error

	GetQuote(ctx context.Context, userID string) (*Quote, error)
	SetQuote(ctx context.Context, userID string, quote Quote) error
}

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a favorites repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// --- Movies ---

func (r *repository) ListMovies(ctx context.Context, userID string) ([]Movie, error) {
	query := `SELECT fm.movie_id, fm.title, fm.poster_path, fm.year, ufm.display_order
	          FROM favorite_movies fm
	          JOIN user_favorite_movies ufm ON fm.movie_id = ufm.movie_id
	          WHERE ufm.user_id = ?
	          ORDER BY ufm.display_order`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorite movies: %w", err)
	}
	defer rows.Close()

	movies := []Movie{}
	for rows.Next() {
		var (
			m          Movie
			posterPath sql.NullString
			year       sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.Title, &posterPath, &year, &m.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning movie row: %w", err)
		}
		m.PosterPath = posterPath.String
		if year.Valid {
			m.Year = strconv.FormatInt(year.Int64, 10)
		}
		movies = append(movies, m)
	}

	return movies, rows.Err()
}

// ReplaceMovies swaps the user's movie list in one transaction. The shared
// lookup row is inserted with IGNORE -- another user may already have the
// same movie -- and the link row carries the 1-based display order.
func (r *repository) ReplaceMovies(ctx context.Context, userID string, movies []Movie) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_favorite_movies WHERE user_id = ?`, userID,
		); err != nil {
			return fmt.Errorf("clearing favorite movies: %w", err)
		}

		for i, m := range movies {
			if _, err := tx.ExecContext(ctx,
				`INSERT IGNORE INTO favorite_movies (movie_id, title, poster_path, year) VALUES (?, ?, ?, ?)`,
				m.ID, m.Title, nullIfEmpty(m.PosterPath), yearValue(m.Year),
			); err != nil {
				return fmt.Errorf("inserting movie %d: %w", m.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_favorite_movies (user_id, movie_id, display_order) VALUES (?, ?, ?)`,
				userID, m.ID, i+1,
			); err != nil {
				return fmt.Errorf("linking movie %d: %w", m.ID, err)
			}
		}

		return nil
	})
}

// --- Directors / Actors ---

// personTables names the lookup and link tables for one person kind.
// Directors and actors share every semantic except table and column names.
type personTables struct {
	lookup string
	link   string
	idCol  string
}

var (
	directorTables = personTables{lookup: "favorite_directors", link: "user_favorite_directors", idCol: "director_id"}
	actorTables    = personTables{lookup: "favorite_actors", link: "user_favorite_actors", idCol: "actor_id"}
)

func (r *repository) ListDirectors(ctx context.Context, userID string) ([]Person, error) {
	return r.listPersons(ctx, directorTables, userID)
}

func (r *repository) ReplaceDirectors(ctx context.Context, userID string, directors []Person) error {
	return r.replacePersons(ctx, directorTables, userID, directors)
}

func (r *repository) ListActors(ctx context.Context, userID string) ([]Person, error) {
	return r.listPersons(ctx, actorTables, userID)
}

func (r *repository) ReplaceActors(ctx context.Context, userID string, actors []Person) error {
	return r.replacePersons(ctx, actorTables, userID, actors)
}

func (r *repository) listPersons(ctx context.Context, t personTables, userID string) ([]Person, error) {
	query := fmt.Sprintf(`SELECT p.%[1]s, p.name, p.profile_path, l.display_order
	          FROM %[2]s p
	          JOIN %[3]s l ON p.%[1]s = l.%[1]s
	          WHERE l.user_id = ?
	          ORDER BY l.display_order`, t.idCol, t.lookup, t.link)

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.link, err)
	}
	defer rows.Close()

	persons := []Person{}
	for rows.Next() {
		var (
			p           Person
			profilePath sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.Name, &profilePath, &p.DisplayOrder); err != nil {
			return nil, fmt.Errorf("scanning %s row: %w", t.link, err)
		}
		p.ProfilePath = profilePath.String
		persons = append(persons, p)
	}

	return persons, rows.Err()
}

func (r *repository) replacePersons(ctx context.Context, t personTables, userID string, persons []Person) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, t.link), userID,
		); err != nil {
			return fmt.Errorf("clearing %s: %w", t.link, err)
		}

		for i, p := range persons {
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT IGNORE INTO %s (%s, name, profile_path) VALUES (?, ?, ?)`, t.lookup, t.idCol),
				p.ID, p.Name, nullIfEmpty(p.ProfilePath),
			); err != nil {
				return fmt.Errorf("inserting person %d: %w", p.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				fmt.Sprintf(`INSERT INTO %s (user_id, %s, display_order) VALUES (?, ?, ?)`, t.link, t.idCol),
				userID, p.ID, i+1,
			); err != nil {
				return fmt.Errorf("linking person %d: %w", p.ID, err)
			}
		}

		return nil
	})
}

// --- Genres ---

func (r *repository) ListGenres(ctx context.Context, userID string) ([]Genre, error) {
	query := `SELECT genre_id FROM user_favorite_genres WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing favorite genres: %w", err)
	}
	defer rows.Close()

	genres := []Genre{}
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID); err != nil {
			return nil, fmt.Errorf("scanning genre row: %w", err)
		}
		genres = append(genres, g)
	}

	return genres, rows.Err()
}

func (r *repository) ReplaceGenres(ctx context.Context, userID string, genres []Genre) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM user_favorite_genres WHERE user_id = ?`, userID,
		); err != nil {
			return fmt.Errorf("clearing favorite genres: %w", err)
		}

		for _, g := range genres {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO user_favorite_genres (user_id, genre_id) VALUES (?, ?)`,
				userID, g.ID,
			); err != nil {
				return fmt.Errorf("linking genre %d: %w", g.ID, err)
			}
		}

		return nil
	})
}

// --- Theaters ---

func (r *repository) GetTheaters(ctx context.Context, userID string) (json.RawMessage, error) {
	query := `SELECT theaters FROM user_favorite_theaters WHERE user_id = ?`

	var theaters sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&theaters)
	if err == sql.ErrNoRows || (err == nil && !theaters.Valid) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying favorite theaters: %w", err)
	}

	return json.RawMessage(theaters.String), nil
}

func (r *repository) SetTheaters(ctx context.Context, userID string, theaters json.RawMessage) error {
	query := `INSERT INTO user_favorite_theaters (user_id, theaters) VALUES (?, ?)
	          ON DUPLICATE KEY UPDATE theaters = VALUES(theaters)`

	if _, err := r.db.ExecContext(ctx, query, userID, string(theaters)); err != nil {
		return fmt.Errorf("upserting favorite theaters: %w", err)
	}

	return nil
}

// --- Quote ---

func (r *repository) GetQuote(ctx context.Context, userID string) (*Quote, error) {
	query := `SELECT text, title FROM user_favorite_quote WHERE user_id = ?`

	var text, title sql.NullString
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&text, &title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying favorite quote: %w", err)
	}

	return &Quote{Text: text.String, Title: title.String}, nil
}

func (r *repository) SetQuote(ctx context.Context, userID string, quote Quote) error {
	query := `INSERT INTO user_favorite_quote (user_id, text, title) VALUES (?, ?, ?)
	          ON DUPLICATE KEY UPDATE text = VALUES(text), title = VALUES(title)`

	if _, err := r.db.ExecContext(ctx, query, userID, nullIfEmpty(quote.Text), nullIfEmpty(quote.Title)); err != nil {
		return fmt.Errorf("upserting favorite quote: %w", err)
	}

	return nil
}

// --- Helpers ---

// inTx runs fn inside a transaction, rolling back on any error.
func (r *repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// nullIfEmpty stores empty optional fields as NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// yearValue parses the SPA's string year into the nullable INT column.
func yearValue(year string) sql.NullInt64 {
	n, err := strconv.ParseInt(year, 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
