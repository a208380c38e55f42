package repository

import (
	"context"
	"errors"

	"gigsafe/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// PostQuery selects a page of posts. Zero values do not filter; a zero
// Limit returns every match.
type PostQuery struct {
	Locale        string
	Type          domain.PostType
	Category      string
	FeaturedOnly  bool
	IncludeDrafts bool
	Limit         int
	Offset        int
}

// Repository defines the interface for content data access
type Repository interface {
	// Posts
	UpsertPost(ctx context.Context, post *domain.Post) error
	GetPost(ctx context.Context, locale, slug string) (*domain.Post, error)
	ListPosts(ctx context.Context, q PostQuery) ([]domain.Post, int, error)
	DeletePost(ctx context.Context, id string) error
	PostFingerprint(ctx context.Context, id string) (string, error)

	// Gigs
	UpsertGig(ctx context.Context, gig *domain.Gig) error
	GetGig(ctx context.Context, idOrSlug string) (*domain.Gig, error)
	ListGigs(ctx context.Context) ([]domain.Gig, error)

	// Close releases resources
	Close() error
}
