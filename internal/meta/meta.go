// Package meta builds page metadata (title, description, Open Graph tags
// and JSON-LD) for posts and gigs.
package meta

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"gigsafe/internal/content"
	"gigsafe/internal/domain"
	"gigsafe/internal/safe"
)

const descriptionLength = 160

// Builder renders metadata against one site and one set of registry defaults.
type Builder struct {
	site     domain.Site
	defaults safe.Defaults
}

// NewBuilder creates a metadata builder
func NewBuilder(site domain.Site, defaults safe.Defaults) *Builder {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	return &Builder{site: site, defaults: defaults}
}

// Build returns post metadata using the built-in registry defaults
func Build(p domain.Post, site domain.Site) domain.PageMeta {
	return NewBuilder(site, safe.Registry()).Post(p)
}

// BuildGig returns gig metadata using the built-in registry defaults
func BuildGig(g domain.Gig, site domain.Site) domain.PageMeta {
	return NewBuilder(site, safe.Registry()).Gig(g)
}

// Post builds the metadata of a post page.
func (b *Builder) Post(p domain.Post) domain.PageMeta {
	locale := safe.TextOr(p.Locale, b.site.DefaultLocale)
	canonical := b.url(locale, string(p.Type), p.Slug)

	description := p.Excerpt
	if description == "" || description == b.defaults.Excerpt {
		if p.Content != "" && p.Content != b.defaults.Content {
			description = content.Excerpt(p.Content, descriptionLength)
		}
	}
	description = safe.TextOr(description, b.defaults.Excerpt)

	image := p.FeatureImage
	if image == "" || image == b.defaults.FeatureImage {
		image = b.defaults.OGImage
	}
	image = b.absolute(image)

	author := map[string]any{
		"@type":  "Person",
		"name":   p.Author.Name,
		"image":  b.absolute(p.Author.Image),
		"sameAs": nonNil(p.Author.SocialLinks),
	}

	ld := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         p.Title,
		"description":      description,
		"image":            image,
		"author":           author,
		"wordCount":        content.WordCount(p.Content),
		"timeRequired":     fmt.Sprintf("PT%dM", max(p.ReadTime, 1)),
		"inLanguage":       locale,
		"mainEntityOfPage": canonical,
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  b.site.Name,
		},
	}
	if p.Category != "" {
		ld["articleSection"] = p.Category
	}
	if len(p.Tags) > 0 {
		ld["keywords"] = strings.Join(p.Tags, ", ")
	}
	if !p.PublishedAt.IsZero() {
		ld["datePublished"] = p.PublishedAt.UTC().Format(time.RFC3339)
	}
	if modified := latest(p.UpdatedAt, p.PublishedAt); !modified.IsZero() {
		ld["dateModified"] = modified.UTC().Format(time.RFC3339)
	}

	return domain.PageMeta{
		Title:       b.title(p.Title),
		Description: description,
		Canonical:   canonical,
		OGImage:     image,
		OGType:      "article",
		Locale:      locale,
		SiteName:    b.site.Name,
		JSONLD:      ld,
	}
}

// Gig builds the metadata of a gig page.
func (b *Builder) Gig(g domain.Gig) domain.PageMeta {
	canonical := b.url("gigs", g.Slug)

	description := content.Excerpt(g.Description, descriptionLength)
	description = safe.TextOr(description, b.defaults.Excerpt)

	image := g.Image
	if image == "" {
		image = b.defaults.CategoryImage
	}
	image = b.absolute(image)

	ld := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Service",
		"name":        g.Title,
		"description": description,
		"image":       image,
		"url":         canonical,
		"offers": map[string]any{
			"@type":         "Offer",
			"price":         fmt.Sprintf("%.2f", g.Price),
			"priceCurrency": safe.TextOr(b.site.Currency, "USD"),
		},
	}
	if g.Category != "" {
		ld["category"] = g.Category
	}
	if g.Seller != "" {
		ld["provider"] = map[string]any{"@type": "Person", "name": g.Seller}
	}
	if g.Reviews > 0 {
		ld["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": g.Rating,
			"reviewCount": g.Reviews,
			"bestRating":  5,
			"worstRating": 0,
		}
	}

	return domain.PageMeta{
		Title:       b.title(g.Title),
		Description: description,
		Canonical:   canonical,
		OGImage:     image,
		OGType:      "website",
		Locale:      b.site.DefaultLocale,
		SiteName:    b.site.Name,
		JSONLD:      ld,
	}
}

func (b *Builder) title(t string) string {
	t = safe.TextOr(t, b.defaults.Title)
	if b.site.Name == "" {
		return t
	}
	return t + " | " + b.site.Name
}

// url joins escaped path segments onto the base URL, skipping empty ones.
func (b *Builder) url(segments ...string) string {
	var sb strings.Builder
	sb.WriteString(b.site.BaseURL)
	for _, s := range segments {
		if s == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	return sb.String()
}

// absolute resolves a site-relative path against the base URL. Absolute and
// protocol-relative URLs are returned unchanged.
func (b *Builder) absolute(ref string) string {
	if ref == "" || strings.HasPrefix(ref, "//") {
		return ref
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return b.site.BaseURL + "/" + strings.TrimLeft(ref, "/")
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
