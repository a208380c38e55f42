package gigs

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"gigsafe/internal/domain"
)

func fixture() []domain.Gig {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Gig{
		{ID: "a", Title: "Logo design", Description: "Modern logos", Category: "design", Price: 50, Rating: 4.8, Reviews: 10, DeliveryDays: 3, Tags: []string{"branding"}, CreatedAt: base},
		{ID: "b", Title: "Website build", Description: "Landing page with logo", Category: "dev", Price: 300, Rating: 4.2, Reviews: 4, DeliveryDays: 10, Featured: true, CreatedAt: base.Add(48 * time.Hour)},
		{ID: "c", Title: "Brand kit", Description: "Colors and fonts", Category: "design", Price: 120, Rating: 4.8, Reviews: 30, DeliveryDays: 5, Tags: []string{"Logo"}, CreatedAt: base.Add(24 * time.Hour)},
		{ID: "d", Title: "SEO audit", Description: "Full audit", Category: "marketing", Price: 50, Rating: 3.9, Reviews: 2, DeliveryDays: 1, CreatedAt: base.Add(72 * time.Hour)},
	}
}

func ids(gigs []domain.Gig) []string {
	out := make([]string, 0, len(gigs))
	for _, g := range gigs {
		out = append(out, g.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []string
		total  int
	}{
		{"no filter relevance", Filter{}, []string{"b", "a", "c", "d"}, 4},
		{"query scores title over tags over description", Filter{Query: "LOGO"}, []string{"a", "c", "b"}, 3},
		{"category", Filter{Category: "Design"}, []string{"a", "c"}, 2},
		{"price range", Filter{MinPrice: 60, MaxPrice: 200}, []string{"c"}, 1},
		{"min rating", Filter{MinRating: 4.5, Sort: SortPriceAsc}, []string{"a", "c"}, 2},
		{"max delivery", Filter{MaxDeliveryDays: 3, Sort: SortDelivery}, []string{"d", "a"}, 2},
		{"featured only", Filter{FeaturedOnly: true}, []string{"b"}, 1},
		{"price asc ties by id", Filter{Sort: SortPriceAsc}, []string{"a", "d", "c", "b"}, 4},
		{"price desc", Filter{Sort: SortPriceDesc}, []string{"b", "c", "a", "d"}, 4},
		{"rating then reviews", Filter{Sort: SortRating}, []string{"c", "a", "b", "d"}, 4},
		{"newest", Filter{Sort: SortNewest}, []string{"d", "b", "c", "a"}, 4},
		{"limit", Filter{Sort: SortPriceAsc, Limit: 2}, []string{"a", "d"}, 4},
		{"offset", Filter{Sort: SortPriceAsc, Limit: 2, Offset: 3}, []string{"b"}, 4},
		{"offset past end", Filter{Offset: 10}, []string{}, 4},
		{"negative offset starts at zero", Filter{Sort: SortPriceAsc, Limit: 2, Offset: -5}, []string{"a", "d"}, 4},
		{"no match", Filter{Query: "plumbing"}, []string{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Apply(fixture(), tt.filter)
			if diff := cmp.Diff(tt.want, ids(res.Items)); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.total, res.Total)
		})
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	in := fixture()
	before := ids(in)
	Apply(in, Filter{Sort: SortPriceDesc})
	assert.Equal(t, before, ids(in))
}

func TestApplyEmpty(t *testing.T) {
	res := Apply(nil, Filter{})
	assert.NotNil(t, res.Items)
	assert.Zero(t, res.Total)
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Filter
	}{
		{"empty", "", Filter{Sort: SortRelevance, Limit: DefaultLimit}},
		{
			"full",
			"q=+logo+&category=Design&min_price=10&max_price=99.5&min_rating=4&max_delivery_days=7&featured=yes&sort=PRICE_ASC&limit=5&offset=10",
			Filter{Query: "logo", Category: "design", MinPrice: 10, MaxPrice: 99.5, MinRating: 4, MaxDeliveryDays: 7, FeaturedOnly: true, Sort: SortPriceAsc, Limit: 5, Offset: 10},
		},
		{
			"malformed values degrade",
			"min_price=abc&max_price=-5&min_rating=NaN&featured=maybe&sort=cheapest&limit=zero&offset=-3",
			Filter{Sort: SortRelevance, Limit: DefaultLimit},
		},
		{"limit capped", "limit=5000", Filter{Sort: SortRelevance, Limit: MaxLimit}},
		{"rating capped", "min_rating=9", Filter{Sort: SortRelevance, MinRating: 5, Limit: DefaultLimit}},
		{"swapped price range", "min_price=100&max_price=20", Filter{Sort: SortRelevance, MinPrice: 20, MaxPrice: 100, Limit: DefaultLimit}},
		{"hex number", "max_delivery_days=0x3", Filter{Sort: SortRelevance, MaxDeliveryDays: 3, Limit: DefaultLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatal(err)
			}
			got := ParseFilter(q)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseFilter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, SortRating, ParseSort(" Rating "))
	assert.Equal(t, SortRelevance, ParseSort(""))
	assert.Equal(t, SortRelevance, ParseSort("random"))
}
