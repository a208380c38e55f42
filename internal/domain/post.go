package domain

import (
	"strings"
	"time"
)

// Kind identifies what a record describes.
type Kind string

const (
	KindPost Kind = "post"
	KindGig  Kind = "gig"
)

// PostType is the editorial flavor of a post.
type PostType string

const (
	PostTypeGuide      PostType = "guide"
	PostTypeReview     PostType = "review"
	PostTypeComparison PostType = "comparison"
	PostTypeArticle    PostType = "article"
)

// ParseKind converts a string to Kind. Unknown values report false.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "post", "guide", "review", "comparison", "article":
		return KindPost, true
	case "gig", "service":
		return KindGig, true
	default:
		return "", false
	}
}

// ParsePostType converts a string to PostType, defaulting to article.
func ParsePostType(s string) PostType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "guide":
		return PostTypeGuide
	case "review":
		return PostTypeReview
	case "comparison":
		return PostTypeComparison
	default:
		return PostTypeArticle
	}
}

// Author is the byline attached to a post.
type Author struct {
	Name        string   `json:"name" yaml:"name"`
	Image       string   `json:"image" yaml:"image"`
	Bio         string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	SocialLinks []string `json:"social_links" yaml:"social_links"`
}

// Post is a normalized long-form page.
type Post struct {
	ID            string    `json:"id"`
	Slug          string    `json:"slug"`
	Locale        string    `json:"locale"`
	Type          PostType  `json:"type"`
	Category      string    `json:"category,omitempty"`
	Title         string    `json:"title"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	ContentFormat string    `json:"content_format"`
	FeatureImage  string    `json:"feature_image"`
	Tags          []string  `json:"tags"`
	Author        Author    `json:"author"`
	Views         int       `json:"views"`
	ReadTime      int       `json:"read_time"`
	Featured      bool      `json:"featured"`
	Published     bool      `json:"published"`
	PublishedAt   time.Time `json:"published_at"`
	Fingerprint   string    `json:"fingerprint,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key returns the locale-scoped lookup key of the post.
func (p *Post) Key() string {
	return p.Locale + "/" + p.Slug
}

// ToRecord converts the post back to the raw record shape accepted on
// import, so an export can be re-imported unchanged.
func (p *Post) ToRecord() RawRecord {
	rec := RawRecord{
		"kind":           string(KindPost),
		"id":             p.ID,
		"slug":           p.Slug,
		"locale":         p.Locale,
		"type":           string(p.Type),
		"title":          p.Title,
		"excerpt":        p.Excerpt,
		"content":        p.Content,
		"content_format": p.ContentFormat,
		"feature_image":  p.FeatureImage,
		"tags":           stringsToAny(p.Tags),
		"views":          p.Views,
		"read_time":      p.ReadTime,
		"featured":       p.Featured,
		"published":      p.Published,
		"author": map[string]any{
			"name":         p.Author.Name,
			"image":        p.Author.Image,
			"bio":          p.Author.Bio,
			"social_links": stringsToAny(p.Author.SocialLinks),
		},
	}
	if p.Category != "" {
		rec["category"] = p.Category
	}
	if !p.PublishedAt.IsZero() {
		rec["published_at"] = p.PublishedAt.UTC().Format(time.RFC3339Nano)
	}
	return rec
}

func stringsToAny(in []string) []any {
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}
