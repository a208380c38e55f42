package config

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version" mapstructure:"version"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Site     SiteConfig     `yaml:"site" mapstructure:"site"`
	Content  ContentConfig  `yaml:"content" mapstructure:"content"`
	Defaults DefaultsConfig `yaml:"defaults" mapstructure:"defaults"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the HTTP listener
type ServerConfig struct {
	Addr        string   `yaml:"addr" mapstructure:"addr"`
	CORSOrigins []string `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SiteConfig holds the public site identity used for metadata
type SiteConfig struct {
	Name          string   `yaml:"name" mapstructure:"name"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	DefaultLocale string   `yaml:"default_locale" mapstructure:"default_locale"`
	Locales       []string `yaml:"locales" mapstructure:"locales"`
	Currency      string   `yaml:"currency" mapstructure:"currency"`
}

// ContentConfig points at the directory of content files
type ContentConfig struct {
	Dir   string `yaml:"dir,omitempty" mapstructure:"dir"`
	Watch bool   `yaml:"watch" mapstructure:"watch"`
}

// DefaultsConfig overrides entries of the fallback registry. Blank values
// keep the built-in default.
type DefaultsConfig struct {
	FeatureImage      string   `yaml:"feature_image,omitempty" mapstructure:"feature_image"`
	AuthorImage       string   `yaml:"author_image,omitempty" mapstructure:"author_image"`
	OGImage           string   `yaml:"og_image,omitempty" mapstructure:"og_image"`
	CategoryImage     string   `yaml:"category_image,omitempty" mapstructure:"category_image"`
	AuthorName        string   `yaml:"author_name,omitempty" mapstructure:"author_name"`
	AuthorSocialLinks []string `yaml:"author_social_links,omitempty" mapstructure:"author_social_links"`
	Title             string   `yaml:"title,omitempty" mapstructure:"title"`
	Excerpt           string   `yaml:"excerpt,omitempty" mapstructure:"excerpt"`
	Content           string   `yaml:"content,omitempty" mapstructure:"content"`
	ContentFormat     string   `yaml:"content_format,omitempty" mapstructure:"content_format"`
	Views             int      `yaml:"views,omitempty" mapstructure:"views"`
	ReadTime          int      `yaml:"read_time,omitempty" mapstructure:"read_time"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	Dev   bool   `yaml:"dev" mapstructure:"dev"`
}
