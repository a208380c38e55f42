package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"gigsafe/internal/codec"
	"gigsafe/internal/content"
	"gigsafe/internal/domain"
	"gigsafe/internal/meta"
	"gigsafe/internal/metrics"
	"gigsafe/internal/repository"
)

// slugSuffixLength bounds the ID suffix added to a contested slug
const slugSuffixLength = 8

// ErrInvalidInput marks import failures caused by unreadable input
var ErrInvalidInput = errors.New("invalid input")

// ImportResult summarizes one import
type ImportResult struct {
	Format    string `json:"format"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"`
}

// Total is the number of records the import looked at
func (r *ImportResult) Total() int {
	return r.Created + r.Updated + r.Unchanged + r.Skipped
}

// PostPage is one page of posts
type PostPage struct {
	Items  []domain.Post `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// ContentService provides business logic for posts and content imports
type ContentService struct {
	repo       repository.Repository
	normalizer *content.Normalizer
	meta       *meta.Builder
	eventBus   *EventBus
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewContentService creates a new content service
func NewContentService(
	repo repository.Repository,
	normalizer *content.Normalizer,
	builder *meta.Builder,
	eventBus *EventBus,
	m *metrics.Metrics,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		repo:       repo,
		normalizer: normalizer,
		meta:       builder,
		eventBus:   eventBus,
		metrics:    m,
		logger:     logger,
	}
}

// Import parses records with importer and stores them. Posts whose
// fingerprint matches the stored one are left untouched. Records of an
// unknown kind are skipped. A storage error aborts the import and returns
// the counts reached so far.
func (s *ContentService) Import(ctx context.Context, importer codec.Importer, r io.Reader) (*ImportResult, error) {
	start := time.Now()
	defer s.metrics.ObserveImport(start)

	fragment, err := importer.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, importer.Format(), err)
	}

	result := &ImportResult{Format: importer.Format(), Skipped: fragment.Invalid}
	defer s.recordImport(result)

	for i, raw := range fragment.Records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		kind, ok := s.normalizer.Kind(raw)
		if !ok {
			result.Skipped++
			s.logger.Debug("skipping record of unknown kind",
				zap.Int("index", i),
				zap.Any("kind", raw.Get("kind")))
			continue
		}

		switch kind {
		case domain.KindGig:
			err = s.importGig(ctx, raw, result)
		default:
			err = s.importPost(ctx, raw, result)
		}
		if err != nil {
			return result, fmt.Errorf("record %d: %w", i, err)
		}
	}

	s.eventBus.Publish(Event{
		Type:    EventContentImported,
		Payload: result,
	})

	s.logger.Info("content imported",
		zap.String("format", result.Format),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("unchanged", result.Unchanged),
		zap.Int("skipped", result.Skipped),
		zap.Duration("took", time.Since(start)))

	return result, nil
}

// ImportFile imports a content file using the codec its extension names
func (s *ContentService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	c, err := codec.ForPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	result, err := s.Import(ctx, c, f)
	if err != nil {
		return result, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	return result, nil
}

func (s *ContentService) importPost(ctx context.Context, raw domain.RawRecord, result *ImportResult) error {
	post := s.normalizer.Post(raw)
	s.metrics.IncrementNormalized(string(domain.KindPost))

	if err := s.claimSlug(ctx, &post); err != nil {
		return err
	}

	stored, err := s.repo.PostFingerprint(ctx, post.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if exists && stored == post.Fingerprint {
		result.Unchanged++
		return nil
	}

	if err := s.repo.UpsertPost(ctx, &post); err != nil {
		return err
	}

	event := EventPostCreated
	if exists {
		event = EventPostUpdated
		result.Updated++
	} else {
		result.Created++
	}

	s.eventBus.Publish(Event{
		Type:    event,
		Payload: map[string]string{"id": post.ID, "locale": post.Locale, "slug": post.Slug},
	})
	return nil
}

// claimSlug makes the post's slug unique within its locale. A slug held by
// another post gets a suffix derived from this post's ID, so repeated
// imports resolve to the same slug.
func (s *ContentService) claimSlug(ctx context.Context, post *domain.Post) error {
	id := content.Slugify(post.ID)
	if id == "" {
		id = "post"
	}
	short := id
	if len(short) > slugSuffixLength {
		short = strings.TrimRight(short[:slugSuffixLength], "-")
	}

	for _, candidate := range []string{post.Slug, post.Slug + "-" + short, post.Slug + "-" + id} {
		other, err := s.repo.GetPost(ctx, post.Locale, candidate)
		switch {
		case errors.Is(err, repository.ErrNotFound) || (err == nil && other.ID == post.ID):
			if candidate != post.Slug {
				s.logger.Debug("post slug taken, using suffix",
					zap.String("id", post.ID),
					zap.String("slug", post.Slug),
					zap.String("claimed", candidate))
				post.Slug = candidate
				post.Fingerprint = content.Fingerprint(*post)
			}
			return nil
		case err != nil:
			return err
		}
	}
	return fmt.Errorf("no free slug for post %s in locale %s", post.ID, post.Locale)
}

func (s *ContentService) importGig(ctx context.Context, raw domain.RawRecord, result *ImportResult) error {
	gig := s.normalizer.Gig(raw)
	s.metrics.IncrementNormalized(string(domain.KindGig))

	// GetGig also matches slugs; only a row with this ID is the same gig
	existing, err := s.repo.GetGig(ctx, gig.ID)
	exists := err == nil && existing.ID == gig.ID
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if exists && sameGig(*existing, gig) {
		result.Unchanged++
		return nil
	}

	if err := s.repo.UpsertGig(ctx, &gig); err != nil {
		return err
	}

	if exists {
		result.Updated++
	} else {
		result.Created++
	}

	s.eventBus.Publish(Event{
		Type:    EventGigUpserted,
		Payload: map[string]string{"id": gig.ID, "slug": gig.Slug},
	})
	return nil
}

func (s *ContentService) recordImport(result *ImportResult) {
	s.metrics.AddImported(metrics.OutcomeCreated, result.Created)
	s.metrics.AddImported(metrics.OutcomeUpdated, result.Updated)
	s.metrics.AddImported(metrics.OutcomeUnchanged, result.Unchanged)
	s.metrics.AddImported(metrics.OutcomeSkipped, result.Skipped)
}

// sameGig compares a stored gig with a freshly normalized one. A record
// without a creation date keeps the stored one.
func sameGig(stored, fresh domain.Gig) bool {
	if fresh.CreatedAt.IsZero() {
		fresh.CreatedAt = stored.CreatedAt
	}
	stored.CreatedAt, fresh.CreatedAt = stored.CreatedAt.UTC(), fresh.CreatedAt.UTC()
	if len(stored.Tags) == 0 && len(fresh.Tags) == 0 {
		stored.Tags, fresh.Tags = nil, nil
	}
	return reflect.DeepEqual(stored, fresh)
}

// Export writes every stored post, drafts included, and every gig
func (s *ContentService) Export(ctx context.Context, exporter codec.Exporter, w io.Writer) error {
	posts, _, err := s.repo.ListPosts(ctx, repository.PostQuery{IncludeDrafts: true})
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	gigList, err := s.repo.ListGigs(ctx)
	if err != nil {
		return fmt.Errorf("list gigs: %w", err)
	}

	fragment := domain.NewFragment()
	for i := range posts {
		fragment.Add(posts[i].ToRecord())
	}
	for i := range gigList {
		fragment.Add(gigList[i].ToRecord())
	}

	if err := exporter.Export(fragment, w); err != nil {
		return fmt.Errorf("export %s: %w", exporter.Format(), err)
	}
	return nil
}

// GetPost retrieves a post by locale and slug
func (s *ContentService) GetPost(ctx context.Context, locale, slug string) (*domain.Post, error) {
	return s.repo.GetPost(ctx, strings.ToLower(locale), slug)
}

// ListPosts returns a page of posts
func (s *ContentService) ListPosts(ctx context.Context, q repository.PostQuery) (*PostPage, error) {
	posts, total, err := s.repo.ListPosts(ctx, q)
	if err != nil {
		return nil, err
	}
	return &PostPage{Items: posts, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// DeletePost removes a post by locale and slug
func (s *ContentService) DeletePost(ctx context.Context, locale, slug string) error {
	post, err := s.GetPost(ctx, locale, slug)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePost(ctx, post.ID); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventPostDeleted,
		Payload: map[string]string{"id": post.ID, "locale": post.Locale, "slug": post.Slug},
	})
	return nil
}

// PageMeta builds the page metadata of a post
func (s *ContentService) PageMeta(ctx context.Context, locale, slug string) (*domain.PageMeta, error) {
	post, err := s.GetPost(ctx, locale, slug)
	if err != nil {
		return nil, err
	}
	m := s.meta.Post(*post)
	return &m, nil
}
