package service

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gigsafe/internal/codec"
	"gigsafe/internal/content"
	"gigsafe/internal/domain"
	"gigsafe/internal/meta"
	"gigsafe/internal/metrics"
	"gigsafe/internal/repository"
	"gigsafe/internal/repository/sqlite"
	"gigsafe/internal/safe"
)

var testSite = domain.Site{
	Name:          "Gigs",
	BaseURL:       "https://example.com",
	DefaultLocale: "en",
	Currency:      "USD",
}

type fixture struct {
	content *ContentService
	gigs    *GigService
	bus     *EventBus
	events  chan Event
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	defaults := safe.Registry()
	normalizer := content.NewNormalizer(safe.New(defaults, m), testSite.DefaultLocale)
	builder := meta.NewBuilder(testSite, defaults)
	bus := NewEventBus()
	events := make(chan Event, 64)
	bus.Subscribe(events)

	return &fixture{
		content: NewContentService(repo, normalizer, builder, bus, m, zap.NewNop()),
		gigs:    NewGigService(repo, builder, zap.NewNop()),
		bus:     bus,
		events:  events,
		metrics: m,
	}
}

func (f *fixture) drain() []EventType {
	var types []EventType
	for {
		select {
		case e := <-f.events:
			types = append(types, e.Type)
		default:
			return types
		}
	}
}

const importJSON = `{"records": [
	{"title": "Hello World", "content": "<p>Hi there</p>", "tags": ["go", " ", null]},
	{"kind": "review", "title": "Tool Review", "locale": "FR", "featured": "yes"},
	{"kind": "gig", "title": "Logo design", "price": "25", "category": "Design", "reviews": 3, "rating": 4.5},
	{"kind": "author", "name": "Ada"},
	"garbage"
]}`

func TestImportCreatesThenSkipsUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Format: "json", Created: 3, Skipped: 2}, res)
	assert.Equal(t, 5, res.Total())
	assert.Equal(t,
		[]EventType{EventPostCreated, EventPostCreated, EventGigUpserted, EventContentImported},
		f.drain())

	res, err = f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Format: "json", Unchanged: 3, Skipped: 2}, res)
	assert.Equal(t, []EventType{EventContentImported}, f.drain())

	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.RecordsImported.WithLabelValues(metrics.OutcomeCreated)))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.RecordsImported.WithLabelValues(metrics.OutcomeUnchanged)))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.RecordsNormalized.WithLabelValues("post")))
	assert.Positive(t, testutil.ToFloat64(f.metrics.Fallbacks.WithLabelValues("image")))
}

func TestImportUpdatesChangedRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)
	f.drain()

	changed := `
- title: Hello World
  content: "<p>Hi there, updated</p>"
- kind: gig
  title: Logo design
  price: 30
  category: design
`
	res, err := f.content.Import(ctx, codec.NewYAMLCodec(), strings.NewReader(changed))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Format: "yaml", Updated: 2}, res)
	assert.Equal(t, []EventType{EventPostUpdated, EventGigUpserted, EventContentImported}, f.drain())

	post, err := f.content.GetPost(ctx, "EN", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hi there, updated", post.Excerpt)
}

func TestImportParseError(t *testing.T) {
	f := newFixture(t)
	_, err := f.content.Import(context.Background(), codec.NewJSONCodec(), strings.NewReader(`{"records":`))
	assert.Error(t, err)
	assert.Empty(t, f.drain())
}

func TestImportCancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, res.Created)
}

func TestListAndDeletePosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)

	page, err := f.content.ListPosts(ctx, repository.PostQuery{Locale: "fr", Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "tool-review", page.Items[0].Slug)
	assert.Equal(t, domain.PostTypeReview, page.Items[0].Type)
	assert.True(t, page.Items[0].Featured)
	assert.Equal(t, 1, page.Total)

	f.drain()
	require.NoError(t, f.content.DeletePost(ctx, "fr", "tool-review"))
	assert.Equal(t, []EventType{EventPostDeleted}, f.drain())

	_, err = f.content.GetPost(ctx, "fr", "tool-review")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

func TestPageMeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)

	m, err := f.content.PageMeta(ctx, "en", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello World | Gigs", m.Title)
	assert.Equal(t, "https://example.com/en/article/hello-world", m.Canonical)

	_, err = f.content.PageMeta(ctx, "en", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestExportRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.content.Export(ctx, codec.NewYAMLCodec(), &buf))

	// a fresh store loaded from the export matches the original
	other := newFixture(t)
	res, err := other.content.Import(ctx, codec.NewYAMLCodec(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Created)

	// and re-importing the export into the source changes nothing
	buf.Reset()
	require.NoError(t, f.content.Export(ctx, codec.NewJSONCodec(), &buf))
	res, err = f.content.Import(ctx, codec.NewJSONCodec(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Unchanged)
}

func TestGigSearchAndMeta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(importJSON))
	require.NoError(t, err)

	res, filter, err := f.gigs.Search(ctx, url.Values{"category": {"DESIGN"}, "max_price": {"oops"}})
	require.NoError(t, err)
	assert.Equal(t, "design", filter.Category)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, 25.0, res.Items[0].Price)

	gig, err := f.gigs.GetGig(ctx, "logo-design")
	require.NoError(t, err)

	m, err := f.gigs.GigMeta(ctx, gig.ID)
	require.NoError(t, err)
	assert.Equal(t, "Service", m.JSONLD["@type"])
	assert.Contains(t, m.JSONLD, "aggregateRating")

	_, err = f.gigs.GigMeta(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	done := make(chan struct{})
	go func() {
		bus.Publish(Event{Type: EventPostCreated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
	assert.Equal(t, EventPostCreated, (<-fast).Type)

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventPostUpdated})
	select {
	case e := <-fast:
		t.Fatalf("unsubscribed channel received %v", e.Type)
	default:
	}
}

func TestImportParseErrorIsInvalidInput(t *testing.T) {
	f := newFixture(t)
	_, err := f.content.Import(context.Background(), codec.NewYAMLCodec(), strings.NewReader("records: [unclosed"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestImportFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "posts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records:\n  - title: From YAML\n  - kind: author\n"), 0o644))

	res, err := f.content.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "yaml", res.Format)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)

	_, err = f.content.ImportFile(ctx, filepath.Join(dir, "notes.txt"))
	assert.ErrorIs(t, err, codec.ErrUnknownFormat)

	_, err = f.content.ImportFile(ctx, filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportResolvesSlugCollisions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const input = `[
		{"id": "x"},
		{"id": "y"},
		{"id": "a", "title": "Hello"},
		{"id": "b3f9c2e1-77aa-4d1e-9c0f-0123456789ab", "title": "Hello"},
		{"title": "Other"}
	]`

	res, err := f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 5, res.Created)

	tests := []struct {
		slug string
		id   string
	}{
		{"untitled", "x"},
		{"untitled-y", "y"},
		{"hello", "a"},
		{"hello-b3f9c2e1", "b3f9c2e1-77aa-4d1e-9c0f-0123456789ab"},
		{"other", ""},
	}
	for _, tt := range tests {
		post, err := f.content.GetPost(ctx, "en", tt.slug)
		require.NoError(t, err, tt.slug)
		if tt.id != "" {
			assert.Equal(t, tt.id, post.ID, tt.slug)
		}
	}

	res, err = f.content.Import(ctx, codec.NewJSONCodec(), strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Format: "json", Unchanged: 5}, res)
}

func TestImportGigMatchesByIDOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.content.Import(ctx, codec.NewJSONCodec(),
		strings.NewReader(`[{"kind": "gig", "id": "g1", "slug": "logo", "title": "Logo"}]`))
	require.NoError(t, err)

	res, err := f.content.Import(ctx, codec.NewJSONCodec(),
		strings.NewReader(`[{"kind": "gig", "id": "logo", "slug": "banner", "title": "Banner"}]`))
	require.NoError(t, err)
	assert.Equal(t, &ImportResult{Format: "json", Created: 1}, res)

	gig, err := f.gigs.GetGig(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Logo", gig.Title)
}
