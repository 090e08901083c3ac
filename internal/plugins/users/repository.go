package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Repository is the data access contract for accounts and profiles. It
// doubles as the auth plugin's UserStore: FindIDByEmail and Register are
// the two calls the login handshake makes here.
type Repository interface {
	FindIDByEmail(ctx context.Context, email string) (userID string, found bool, err error)
	Register(ctx context.Context, userID, email, displayName string) error
	UserIDExists(ctx context.Context, userID string) (bool, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID string, p *Profile) (int64, error)
}

// ErrProfileNotFound is returned when a profile row does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// repository implements Repository with hand-written MariaDB queries.
type repository struct {
	db *sql.DB
}

// NewRepository creates a user repository backed by the given DB pool.
func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// FindIDByEmail resolves an email to its account id. An unknown email is
// not an error -- found is false and the login handshake routes toward
// registration.
func (r *repository) FindIDByEmail(ctx context.Context, email string) (string, bool, error) {
	query := `SELECT user_id FROM users WHERE email = ?`

	var userID string
	err := r.db.QueryRowContext(ctx, query, email).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("querying user by email: %w", err)
	}

	return userID, true, nil
}

// Register creates the account and its empty profile. INSERT IGNORE makes
// a retried registration converge on the existing rows instead of failing,
// so a client replaying the request after a dropped response still ends up
// signed in.
func (r *repository) Register(ctx context.Context, userID, email, displayName string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO users (user_id, email) VALUES (?, ?)`,
		userID, email,
	); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO profiles (user_id, display_name) VALUES (?, ?)`,
		userID, displayName,
	); err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// UserIDExists reports whether a handle is already taken.
func (r *repository) UserIDExists(ctx context.Context, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE user_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking user id: %w", err)
	}

	return exists, nil
}

// GetProfile loads a profile. Nullable columns come back as empty strings;
// social_links is stored as a JSON text column and an unreadable value
// degrades to an empty map rather than failing the whole page.
func (r *repository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	query := `SELECT display_name, bio, avatar, social_links FROM profiles WHERE user_id = ?`

	var (
		p           Profile
		bio, avatar sql.NullString
		socialLinks sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&p.DisplayName, &bio, &avatar, &socialLinks)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	p.Bio = bio.String
	p.Avatar = avatar.String
	p.SocialLinks = map[string]string{}
	if socialLinks.Valid && socialLinks.String != "" {
		if err := json.Unmarshal([]byte(socialLinks.String), &p.SocialLinks); err != nil {
			p.SocialLinks = map[string]string{}
		}
	}

	return &p, nil
}

// UpdateProfile overwrites a profile row and returns the number of rows
// affected; zero means the profile does not exist.
func (r *repository) UpdateProfile(ctx context.Context, userID string, p *Profile) (int64, error) {
	links, err := json.Marshal(p.SocialLinks)
	if err != nil {
		return 0, fmt.Errorf("marshaling social links: %w", err)
	}

	query := `UPDATE profiles SET display_name = ?, bio = ?, avatar = ?, social_links = ? WHERE user_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		p.DisplayName,
		nullIfEmpty(p.Bio),
		nullIfEmpty(p.Avatar),
		string(links),
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("updating profile: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}

	return n, nil
}

// nullIfEmpty stores empty optional fields as NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
