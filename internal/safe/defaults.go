package safe

import "slices"

// Defaults is the fallback table used when upstream content is missing or
// invalid.
type Defaults struct {
	FeatureImage      string   `json:"feature_image" yaml:"feature_image"`
	AuthorImage       string   `json:"author_image" yaml:"author_image"`
	OGImage           string   `json:"og_image" yaml:"og_image"`
	CategoryImage     string   `json:"category_image" yaml:"category_image"`
	AuthorName        string   `json:"author_name" yaml:"author_name"`
	AuthorSocialLinks []string `json:"author_social_links" yaml:"author_social_links"`
	Title             string   `json:"title" yaml:"title"`
	Excerpt           string   `json:"excerpt" yaml:"excerpt"`
	Content           string   `json:"content" yaml:"content"`
	ContentFormat     string   `json:"content_format" yaml:"content_format"`
	Views             int      `json:"views" yaml:"views"`
	ReadTime          int      `json:"read_time" yaml:"read_time"`
}

// registry is the process-wide table. It is never written after init.
var registry = Defaults{
	FeatureImage:      "/images/default-feature.jpg",
	AuthorImage:       "/images/default-author.jpg",
	OGImage:           "/images/default-og.jpg",
	CategoryImage:     "/images/default-category.jpg",
	AuthorName:        "Editorial Team",
	AuthorSocialLinks: []string{},
	Title:             "Untitled",
	Excerpt:           "No excerpt available.",
	Content:           "Content coming soon.",
	ContentFormat:     "markdown",
	Views:             0,
	ReadTime:          5,
}

// Registry returns a copy of the built-in defaults.
func Registry() Defaults {
	return registry.clone()
}

// NewDefaults returns the built-in defaults with every non-empty override
// applied. Blank strings and non-positive counters in overrides are ignored,
// so image paths and the author name stay non-empty.
func NewDefaults(overrides Defaults) Defaults {
	d := registry.clone()

	override := func(dst *string, v string) {
		if s, ok := text(v); ok {
			*dst = s
		}
	}
	override(&d.FeatureImage, overrides.FeatureImage)
	override(&d.AuthorImage, overrides.AuthorImage)
	override(&d.OGImage, overrides.OGImage)
	override(&d.CategoryImage, overrides.CategoryImage)
	override(&d.AuthorName, overrides.AuthorName)
	override(&d.Title, overrides.Title)
	override(&d.Excerpt, overrides.Excerpt)
	override(&d.Content, overrides.Content)
	override(&d.ContentFormat, overrides.ContentFormat)

	if links := Strings(overrides.AuthorSocialLinks); len(links) > 0 {
		d.AuthorSocialLinks = links
	}
	if overrides.Views > 0 {
		d.Views = overrides.Views
	}
	if overrides.ReadTime > 0 {
		d.ReadTime = overrides.ReadTime
	}
	return d
}

func (d Defaults) clone() Defaults {
	d.AuthorSocialLinks = slices.Clone(d.AuthorSocialLinks)
	if d.AuthorSocialLinks == nil {
		d.AuthorSocialLinks = []string{}
	}
	return d
}
