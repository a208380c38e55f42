package content

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigsafe/internal/domain"
	"gigsafe/internal/safe"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	return NewNormalizer(safe.New(safe.Registry(), nil), "en")
}

func TestPostFromEmptyRecord(t *testing.T) {
	n := newTestNormalizer(t)
	d := safe.Registry()

	p := n.Post(domain.RawRecord{})

	assert.Equal(t, d.Title, p.Title)
	assert.Equal(t, d.Excerpt, p.Excerpt)
	assert.Equal(t, d.Content, p.Content)
	assert.Equal(t, d.ContentFormat, p.ContentFormat)
	assert.Equal(t, d.FeatureImage, p.FeatureImage)
	assert.Equal(t, d.AuthorName, p.Author.Name)
	assert.Equal(t, d.AuthorImage, p.Author.Image)
	assert.Equal(t, []string{}, p.Author.SocialLinks)
	assert.Equal(t, []string{}, p.Tags)
	assert.Equal(t, d.Views, p.Views)
	assert.Equal(t, d.ReadTime, p.ReadTime)
	assert.Equal(t, "en", p.Locale)
	assert.Equal(t, "untitled", p.Slug)
	assert.Equal(t, domain.PostTypeArticle, p.Type)
	assert.True(t, p.Published)
	assert.False(t, p.Featured)
	assert.NotEmpty(t, p.ID)
	assert.NotEmpty(t, p.Fingerprint)
}

func TestPostFromMalformedRecord(t *testing.T) {
	n := newTestNormalizer(t)
	d := safe.Registry()

	p := n.Post(domain.RawRecord{
		"title":         "   ",
		"feature_image": 42,
		"tags":          "not-a-list",
		"views":         "abc",
		"read_time":     map[string]any{},
		"featured":      []any{},
		"author":        []any{"x"},
		"published":     "maybe",
	})

	assert.Equal(t, d.Title, p.Title)
	assert.Equal(t, d.FeatureImage, p.FeatureImage)
	assert.Equal(t, []string{}, p.Tags)
	assert.Equal(t, 0, p.Views)
	assert.Equal(t, d.ReadTime, p.ReadTime)
	assert.False(t, p.Featured)
	assert.Equal(t, d.AuthorName, p.Author.Name)
	assert.True(t, p.Published)
}

func TestPostFromDecodedJSON(t *testing.T) {
	const input = `{
		"title": "  Upwork vs Fiverr: Which Is Better?  ",
		"locale": "DE",
		"type": "comparison",
		"category": "platforms",
		"excerpt": "",
		"content": "<p>Both platforms <strong>charge</strong> fees.</p><script>x()</script>",
		"image": " https://cdn.example.com/cover.jpg ",
		"tags": ["freelance", null, "", "  fees  ", 3],
		"views": "1200",
		"featured": "yes",
		"draft": true,
		"published_at": "2024-03-01",
		"author": {"name": " Ana ", "image": "", "social_links": [null, "https://x.com/ana"]}
	}`

	dec := json.NewDecoder(stringsReader(input))
	dec.UseNumber()
	var raw domain.RawRecord
	require.NoError(t, dec.Decode(&raw))

	p := newTestNormalizer(t).Post(raw)

	want := domain.Author{
		Name:        "Ana",
		Image:       safe.Registry().AuthorImage,
		SocialLinks: []string{"https://x.com/ana"},
	}
	if diff := cmp.Diff(want, p.Author); diff != "" {
		t.Errorf("author mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Upwork vs Fiverr: Which Is Better?", p.Title)
	assert.Equal(t, "upwork-vs-fiverr-which-is-better", p.Slug)
	assert.Equal(t, "de", p.Locale)
	assert.Equal(t, domain.PostTypeComparison, p.Type)
	assert.Equal(t, "Both platforms charge fees.", p.Excerpt)
	assert.Equal(t, "https://cdn.example.com/cover.jpg", p.FeatureImage)
	assert.Equal(t, []string{"freelance", "fees"}, p.Tags)
	assert.Equal(t, 1200, p.Views)
	assert.Equal(t, 1, p.ReadTime)
	assert.True(t, p.Featured)
	assert.False(t, p.Published)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.PublishedAt)
}

func TestPostIDIsStable(t *testing.T) {
	n := newTestNormalizer(t)
	a := n.Post(domain.RawRecord{"title": "Same Title"})
	b := n.Post(domain.RawRecord{"title": "Same Title"})
	c := n.Post(domain.RawRecord{"title": "Same Title", "locale": "fr"})

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.ID, c.ID)

	explicit := n.Post(domain.RawRecord{"id": " post-1 ", "title": "x"})
	assert.Equal(t, "post-1", explicit.ID)
}

func TestPostRoundTripsThroughRecord(t *testing.T) {
	n := newTestNormalizer(t)
	p := n.Post(domain.RawRecord{
		"title":        "Guide",
		"content":      "one two three",
		"tags":         []any{"a", "b"},
		"views":        7,
		"published_at": "2024-01-02T03:04:05Z",
		"author":       map[string]any{"name": "Bo", "social_links": []any{"https://b.example"}},
	})

	again := n.Post(p.ToRecord())
	if diff := cmp.Diff(p, again); diff != "" {
		t.Errorf("round trip mismatch (-first +second):\n%s", diff)
	}
}

func TestReadTimeEstimate(t *testing.T) {
	n := newTestNormalizer(t)

	words := make([]byte, 0, 450*5)
	for i := 0; i < 450; i++ {
		words = append(words, "word "...)
	}
	p := n.Post(domain.RawRecord{"content": string(words)})
	assert.Equal(t, 3, p.ReadTime)

	explicit := n.Post(domain.RawRecord{"content": string(words), "read_time": "12"})
	assert.Equal(t, 12, explicit.ReadTime)
}

func TestGig(t *testing.T) {
	n := newTestNormalizer(t)
	d := safe.Registry()

	g := n.Gig(domain.RawRecord{
		"title":         " Logo Design ",
		"category":      "Design",
		"price":         "49.5",
		"rating":        7,
		"reviews":       "12",
		"delivery_days": 0,
		"featured":      1,
		"tags":          []any{"logo", nil},
		"seller":        map[string]any{"name": "studio"},
		"created_at":    "2024-05-06T07:08:09Z",
	})

	assert.Equal(t, "Logo Design", g.Title)
	assert.Equal(t, "logo-design", g.Slug)
	assert.Equal(t, "design", g.Category)
	assert.Equal(t, d.CategoryImage, g.Image)
	assert.Equal(t, "studio", g.Seller)
	assert.Equal(t, 49.5, g.Price)
	assert.Equal(t, 5.0, g.Rating)
	assert.Equal(t, 12, g.Reviews)
	assert.Equal(t, 1, g.DeliveryDays)
	assert.True(t, g.Featured)
	assert.Equal(t, []string{"logo"}, g.Tags)
	assert.NotEmpty(t, g.ID)

	empty := n.Gig(domain.RawRecord{"price": -10, "rating": "NaN"})
	assert.Equal(t, 0.0, empty.Price)
	assert.Equal(t, 0.0, empty.Rating)
	assert.Equal(t, d.AuthorName, empty.Seller)
}

func TestKind(t *testing.T) {
	n := newTestNormalizer(t)

	k, ok := n.Kind(domain.RawRecord{})
	assert.True(t, ok)
	assert.Equal(t, domain.KindPost, k)

	k, ok = n.Kind(domain.RawRecord{"kind": "Service"})
	assert.True(t, ok)
	assert.Equal(t, domain.KindGig, k)

	_, ok = n.Kind(domain.RawRecord{"kind": "author"})
	assert.False(t, ok)
}

func TestFragment(t *testing.T) {
	n := newTestNormalizer(t)

	in := domain.NewFragment()
	in.Invalid = 2
	in.Add(domain.RawRecord{"title": "Post"})
	in.Add(domain.RawRecord{"kind": "gig", "title": "Gig", "seller": map[string]any{"name": "studio"}})
	in.Add(domain.RawRecord{"kind": "author", "name": "Ada"})

	out, skipped := n.Fragment(in)
	assert.Equal(t, 3, skipped)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "post", out.Records[0]["kind"])
	assert.Equal(t, "gig", out.Records[1]["kind"])
	assert.Equal(t, "studio", out.Records[1]["seller"])
	assert.NotContains(t, out.Records[1], "created_at")

	// normalized output normalizes to itself
	again, skipped := n.Fragment(out)
	assert.Zero(t, skipped)
	if diff := cmp.Diff(out.Records, again.Records); diff != "" {
		t.Errorf("renormalized records differ (-first +second):\n%s", diff)
	}
}
