// Package gigs filters, sorts and paginates marketplace listings in memory.
package gigs

import (
	"cmp"
	"math"
	"net/url"
	"slices"
	"strings"

	"gigsafe/internal/domain"
	"gigsafe/internal/safe"
)

// Sort orders a result set.
type Sort string

const (
	SortRelevance Sort = "relevance"
	SortPriceAsc  Sort = "price_asc"
	SortPriceDesc Sort = "price_desc"
	SortRating    Sort = "rating"
	SortNewest    Sort = "newest"
	SortDelivery  Sort = "delivery"
)

const (
	// DefaultLimit applies when a query names no limit
	DefaultLimit = 20
	// MaxLimit caps the page size
	MaxLimit = 100
)

// ParseSort converts a string to Sort, defaulting to relevance.
func ParseSort(s string) Sort {
	switch v := Sort(strings.ToLower(strings.TrimSpace(s))); v {
	case SortPriceAsc, SortPriceDesc, SortRating, SortNewest, SortDelivery:
		return v
	default:
		return SortRelevance
	}
}

// Filter narrows and orders a gig listing. Zero values do not filter.
type Filter struct {
	Query           string  `json:"query,omitempty"`
	Category        string  `json:"category,omitempty"`
	MinPrice        float64 `json:"min_price,omitempty"`
	MaxPrice        float64 `json:"max_price,omitempty"`
	MinRating       float64 `json:"min_rating,omitempty"`
	MaxDeliveryDays int     `json:"max_delivery_days,omitempty"`
	FeaturedOnly    bool    `json:"featured_only,omitempty"`
	Sort            Sort    `json:"sort"`
	Limit           int     `json:"limit"`
	Offset          int     `json:"offset"`
}

// Result is one page of matches.
type Result struct {
	Items []domain.Gig `json:"items"`
	Total int          `json:"total"`
}

// ParseFilter reads a filter from query parameters. Every value passes
// through safe normalization, so malformed input degrades to "no filter"
// instead of failing.
func ParseFilter(q url.Values) Filter {
	get := func(keys ...string) any {
		for _, k := range keys {
			if q.Has(k) {
				return q.Get(k)
			}
		}
		return nil
	}

	f := Filter{
		Query:           safe.Text(get("q", "query")),
		Category:        strings.ToLower(safe.Text(get("category"))),
		MinPrice:        positive(safe.Number(get("min_price"))),
		MaxPrice:        positive(safe.Number(get("max_price"))),
		MinRating:       min(positive(safe.Number(get("min_rating"))), 5),
		MaxDeliveryDays: int(min(positive(safe.Number(get("max_delivery_days", "delivery"))), 365)),
		FeaturedOnly:    safe.Boolean(get("featured")),
		Sort:            ParseSort(safe.Text(get("sort"))),
		Limit:           int(min(positive(safe.NumberOr(get("limit"), DefaultLimit)), MaxLimit)),
		Offset:          int(min(positive(safe.Number(get("offset"))), 1<<31-1)),
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.MaxPrice > 0 && f.MaxPrice < f.MinPrice {
		f.MinPrice, f.MaxPrice = f.MaxPrice, f.MinPrice
	}
	return f
}

// Match reports whether a gig passes every filter criterion.
func (f Filter) Match(g domain.Gig) bool {
	if f.Category != "" && !strings.EqualFold(g.Category, f.Category) {
		return false
	}
	if f.MinPrice > 0 && g.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && g.Price > f.MaxPrice {
		return false
	}
	if g.Rating < f.MinRating {
		return false
	}
	if f.MaxDeliveryDays > 0 && g.DeliveryDays > f.MaxDeliveryDays {
		return false
	}
	if f.FeaturedOnly && !g.Featured {
		return false
	}
	return f.Query == "" || relevance(g, strings.ToLower(f.Query)) > 0
}

// Apply filters, sorts and paginates gigs. The input is not modified.
// Total counts matches before pagination.
func Apply(gigs []domain.Gig, f Filter) Result {
	query := strings.ToLower(f.Query)

	type scored struct {
		gig   domain.Gig
		score int
	}
	matches := make([]scored, 0, len(gigs))
	for _, g := range gigs {
		if f.Match(g) {
			matches = append(matches, scored{gig: g, score: relevance(g, query)})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		var c int
		switch f.Sort {
		case SortPriceAsc:
			c = cmp.Compare(a.gig.Price, b.gig.Price)
		case SortPriceDesc:
			c = cmp.Compare(b.gig.Price, a.gig.Price)
		case SortRating:
			c = cmp.Or(cmp.Compare(b.gig.Rating, a.gig.Rating), cmp.Compare(b.gig.Reviews, a.gig.Reviews))
		case SortNewest:
			c = b.gig.CreatedAt.Compare(a.gig.CreatedAt)
		case SortDelivery:
			c = cmp.Compare(a.gig.DeliveryDays, b.gig.DeliveryDays)
		default:
			c = cmp.Or(
				cmp.Compare(b.score, a.score),
				compareBool(b.gig.Featured, a.gig.Featured),
				cmp.Compare(b.gig.Rating, a.gig.Rating),
			)
		}
		return cmp.Or(c, cmp.Compare(a.gig.ID, b.gig.ID))
	})

	res := Result{Items: []domain.Gig{}, Total: len(matches)}
	offset := max(f.Offset, 0)
	if offset >= len(matches) {
		return res
	}
	end := len(matches)
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	for _, m := range matches[offset:end] {
		res.Items = append(res.Items, m.gig)
	}
	return res
}

// relevance scores a gig against a lower-cased query: title hits weigh
// most, then tags, then description. An empty query scores 1.
func relevance(g domain.Gig, query string) int {
	if query == "" {
		return 1
	}
	score := 0
	if strings.Contains(strings.ToLower(g.Title), query) {
		score += 3
	}
	for _, tag := range g.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			score += 2
			break
		}
	}
	if strings.Contains(strings.ToLower(g.Description), query) {
		score++
	}
	return score
}

func positive(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	default:
		return -1
	}
}
