// Package content turns raw upstream records into normalized posts and gigs.
//
// Every field is read through a safe.Normalizer, so a record with missing,
// blank, or mistyped fields still produces a fully populated value. Nothing
// here returns an error; the only outcome of bad input is a default.
package content

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"gigsafe/internal/domain"
	"gigsafe/internal/safe"
)

// excerptLength is the rune budget for excerpts derived from content.
const excerptLength = 160

// idNamespace scopes derived record IDs.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://gigsafe.dev/content"))

// dateLayouts are tried in order when parsing record dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Normalizer converts raw records using a bound safe.Normalizer.
type Normalizer struct {
	safe     *safe.Normalizer
	defaults safe.Defaults
	locale   string
}

// NewNormalizer creates a record normalizer. defaultLocale is used for posts
// that do not carry one.
func NewNormalizer(n *safe.Normalizer, defaultLocale string) *Normalizer {
	return &Normalizer{
		safe:     n,
		defaults: n.Defaults(),
		locale:   strings.ToLower(safe.TextOr(defaultLocale, "en")),
	}
}

// Kind classifies a raw record. Records without a kind are treated as posts.
func (n *Normalizer) Kind(raw domain.RawRecord) (domain.Kind, bool) {
	k := n.safe.Text(raw.Get("kind"))
	if k == "" {
		return domain.KindPost, true
	}
	return domain.ParseKind(k)
}

// Post normalizes a raw post record.
func (n *Normalizer) Post(raw domain.RawRecord) domain.Post {
	d := n.defaults

	p := domain.Post{
		Locale:        strings.ToLower(n.safe.TextOr(raw.First("locale", "lang"), n.locale)),
		Type:          domain.ParsePostType(n.safe.Text(raw.First("type", "kind"))),
		Category:      n.safe.Text(raw.Get("category")),
		Title:         n.safe.TextOr(raw.First("title", "name"), d.Title),
		Content:       n.safe.TextOr(raw.First("content", "body"), d.Content),
		ContentFormat: strings.ToLower(n.safe.TextOr(raw.First("content_format", "format"), d.ContentFormat)),
		FeatureImage:  n.safe.Image(raw.First("feature_image", "image", "cover")),
		Tags:          n.safe.Strings(raw.Get("tags")),
		Author:        n.author(raw),
		Views:         count(n.safe.NumberOr(raw.Get("views"), float64(d.Views)), 0),
		Featured:      n.safe.Boolean(raw.Get("featured")),
		PublishedAt:   parseDate(n.safe.Text(raw.First("published_at", "date"))),
	}

	p.Excerpt = n.safe.Text(raw.First("excerpt", "description", "summary"))
	if p.Excerpt == "" && p.Content != d.Content {
		p.Excerpt = Excerpt(p.Content, excerptLength)
	}
	if p.Excerpt == "" {
		p.Excerpt = d.Excerpt
	}

	draft := n.safe.Boolean(raw.Get("draft"))
	p.Published = n.safe.BooleanOr(raw.Get("published"), !draft)

	p.ReadTime = count(n.safe.Number(raw.First("read_time", "reading_time")), 0)
	if p.ReadTime < 1 {
		if p.Content == d.Content {
			p.ReadTime = d.ReadTime
		} else {
			p.ReadTime = EstimateReadTime(WordCount(p.Content))
		}
	}

	p.Slug = Slugify(n.safe.Text(raw.Get("slug")))
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	p.ID = n.safe.Text(raw.Get("id"))
	if p.ID == "" {
		p.ID = deriveID(domain.KindPost, p.Locale+"/"+p.Slug)
	}
	if p.Slug == "" {
		p.Slug = p.ID
	}

	p.Fingerprint = Fingerprint(p)
	return p
}

func (n *Normalizer) author(raw domain.RawRecord) domain.Author {
	d := n.defaults

	a := domain.Author{
		Name:        n.safe.TextOr(raw.First("author.name", "author_name", "author"), d.AuthorName),
		Image:       n.safe.ImageOr(raw.First("author.image", "author.avatar", "author_image"), d.AuthorImage),
		Bio:         n.safe.Text(raw.Get("author.bio")),
		SocialLinks: n.safe.Strings(raw.First("author.social_links", "author.socials")),
	}
	if len(a.SocialLinks) == 0 {
		a.SocialLinks = d.AuthorSocialLinks
	}
	return a
}

// Gig normalizes a raw marketplace listing.
func (n *Normalizer) Gig(raw domain.RawRecord) domain.Gig {
	d := n.defaults

	g := domain.Gig{
		Title:        n.safe.TextOr(raw.First("title", "name"), d.Title),
		Description:  n.safe.Text(raw.First("description", "summary")),
		Category:     strings.ToLower(n.safe.Text(raw.Get("category"))),
		Image:        n.safe.ImageOr(raw.First("image", "thumbnail"), d.CategoryImage),
		Seller:       n.safe.TextOr(raw.First("seller.name", "seller"), d.AuthorName),
		Price:        math.Max(0, finite(n.safe.Number(raw.First("price", "starting_price")))),
		Rating:       math.Min(5, math.Max(0, finite(n.safe.Number(raw.Get("rating"))))),
		Reviews:      count(n.safe.Number(raw.First("reviews", "review_count")), 0),
		DeliveryDays: count(n.safe.NumberOr(raw.First("delivery_days", "delivery_time"), 1), 1),
		Featured:     n.safe.Boolean(raw.Get("featured")),
		Tags:         n.safe.Strings(raw.Get("tags")),
		CreatedAt:    parseDate(n.safe.Text(raw.Get("created_at"))),
	}

	g.Slug = Slugify(n.safe.Text(raw.Get("slug")))
	if g.Slug == "" {
		g.Slug = Slugify(g.Title)
	}
	g.ID = n.safe.Text(raw.Get("id"))
	if g.ID == "" {
		g.ID = deriveID(domain.KindGig, g.Slug)
	}
	if g.Slug == "" {
		g.Slug = g.ID
	}
	return g
}

// deriveID returns a stable ID so repeated imports of a record without one
// address the same row.
func deriveID(kind domain.Kind, key string) string {
	return uuid.NewSHA1(idNamespace, []byte(string(kind)+":"+key)).String()
}

// count truncates f to an int no smaller than least.
func count(f float64, least int) int {
	f = finite(f)
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	if n := int(f); n > least {
		return n
	}
	return least
}

// finite maps ±Inf to 0; normalized numbers are never NaN.
func finite(f float64) float64 {
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Fragment normalizes every record of in and returns them in import shape.
// Records of unknown kind are dropped and counted, along with entries the
// codec could not read as records.
func (n *Normalizer) Fragment(in *domain.Fragment) (*domain.Fragment, int) {
	out := domain.NewFragment()
	skipped := in.Invalid
	for _, raw := range in.Records {
		kind, ok := n.Kind(raw)
		switch {
		case !ok:
			skipped++
		case kind == domain.KindGig:
			g := n.Gig(raw)
			out.Add(g.ToRecord())
		default:
			p := n.Post(raw)
			out.Add(p.ToRecord())
		}
	}
	return out, skipped
}
