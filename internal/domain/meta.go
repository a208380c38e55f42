package domain

// PageMeta is the <head> metadata of a rendered page.
type PageMeta struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Canonical   string         `json:"canonical"`
	OGImage     string         `json:"og_image"`
	OGType      string         `json:"og_type"`
	Locale      string         `json:"locale"`
	SiteName    string         `json:"site_name"`
	JSONLD      map[string]any `json:"json_ld"`
}

// Site holds the site-wide values metadata is built against.
type Site struct {
	Name          string
	BaseURL       string
	DefaultLocale string
	Currency      string
}
