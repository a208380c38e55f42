package service

import (
	"context"
	"net/url"

	"go.uber.org/zap"

	"gigsafe/internal/domain"
	"gigsafe/internal/gigs"
	"gigsafe/internal/meta"
	"gigsafe/internal/repository"
)

// GigService provides marketplace search over stored gigs
type GigService struct {
	repo   repository.Repository
	meta   *meta.Builder
	logger *zap.Logger
}

// NewGigService creates a new gig service
func NewGigService(repo repository.Repository, builder *meta.Builder, logger *zap.Logger) *GigService {
	return &GigService{
		repo:   repo,
		meta:   builder,
		logger: logger,
	}
}

// Search filters, sorts and paginates gigs using query parameters
func (s *GigService) Search(ctx context.Context, q url.Values) (*gigs.Result, gigs.Filter, error) {
	filter := gigs.ParseFilter(q)

	all, err := s.repo.ListGigs(ctx)
	if err != nil {
		return nil, filter, err
	}

	result := gigs.Apply(all, filter)
	s.logger.Debug("gig search",
		zap.String("query", filter.Query),
		zap.String("sort", string(filter.Sort)),
		zap.Int("total", result.Total))

	return &result, filter, nil
}

// GetGig retrieves a gig by ID or slug
func (s *GigService) GetGig(ctx context.Context, idOrSlug string) (*domain.Gig, error) {
	return s.repo.GetGig(ctx, idOrSlug)
}

// GigMeta builds the page metadata of a gig
func (s *GigService) GigMeta(ctx context.Context, idOrSlug string) (*domain.PageMeta, error) {
	gig, err := s.repo.GetGig(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	m := s.meta.Gig(*gig)
	return &m, nil
}
