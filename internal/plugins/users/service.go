package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cinefil/cinefil/internal/apperror"
	"github.com/cinefil/cinefil/internal/cache"
	"github.com/cinefil/cinefil/internal/sanitize"
)

// profileCacheTTL bounds staleness for readers that race a concurrent
// update; every write path invalidates the key anyway.
const profileCacheTTL = 5 * time.Minute

// Service defines the business logic contract for profiles.
type Service interface {
	CheckAvailability(ctx context.Context, userID string) (bool, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	CreateProfile(ctx context.Context, userID string, p Profile) error
	UpdateProfile(ctx context.Context, userID string, p Profile) error
}

// service implements Service with a Redis read cache in front of the
// repository. Profile pages are the hottest read path in the app -- every
// visit to a shared link hits GET profile -- while writes are rare.
type service struct {
	repo  Repository
	cache *cache.Cache
}

// NewService creates a user service. The cache may be nil, in which case
// every read goes to the database.
func NewService(repo Repository, c *cache.Cache) Service {
	return &service{repo: repo, cache: c}
}

// CheckAvailability reports whether a handle is free to register.
func (s *service) CheckAvailability(ctx context.Context, userID string) (bool, error) {
	exists, err := s.repo.UserIDExists(ctx, userID)
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("checking availability: %w", err))
	}
	return !exists, nil
}

// GetProfile returns a public profile, serving from cache when possible.
func (s *service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	if s.cache != nil {
		var cached Profile
		hit, err := s.cache.Get(ctx, userID, &cached)
		if err != nil {
			// Cache trouble must never take down the read path.
			slog.Warn("profile cache read failed", slog.String("user_id", userID), slog.Any("error", err))
		} else if hit {
			return &cached, nil
		}
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return nil, apperror.NewNotFound("User not found")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("loading profile: %w", err))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, p, profileCacheTTL); err != nil {
			slog.Warn("profile cache write failed", slog.String("user_id", userID), slog.Any("error", err))
		}
	}

	return p, nil
}

// CreateProfile fills in the profile row created at registration. The row
// must already exist; a miss means the handle was never registered.
func (s *service) CreateProfile(ctx context.Context, userID string, p Profile) error {
	clean := sanitizeProfile(p)

	n, err := s.repo.UpdateProfile(ctx, userID, &clean)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("creating profile: %w", err))
	}
	if n == 0 {
		return apperror.NewNotFound("Profile not found")
	}

	s.invalidate(ctx, userID)
	return nil
}

// UpdateProfile overwrites the profile content for an existing account.
func (s *service) UpdateProfile(ctx context.Context, userID string, p Profile) error {
	clean := sanitizeProfile(p)

	if _, err := s.repo.UpdateProfile(ctx, userID, &clean); err != nil {
		return apperror.NewInternal(fmt.Errorf("updating profile: %w", err))
	}

	s.invalidate(ctx, userID)
	return nil
}

// invalidate drops the cached profile after a write. Failure only delays
// visibility until the TTL; it never fails the write.
func (s *service) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, userID); err != nil {
		slog.Warn("profile cache invalidation failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}

// sanitizeProfile strips any HTML from the free-text fields. Profiles are
// rendered on a public page; stored markup is a stored-XSS vector.
func sanitizeProfile(p Profile) Profile {
	clean := Profile{
		DisplayName: sanitize.Text(p.DisplayName),
		Bio:         sanitize.Text(p.Bio),
		Avatar:      p.Avatar,
		SocialLinks: make(map[string]string, len(p.SocialLinks)),
	}
	for k, v := range p.SocialLinks {
		clean.SocialLinks[sanitize.Text(k)] = sanitize.Text(v)
	}
	return clean
}
