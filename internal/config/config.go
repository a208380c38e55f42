// Package config provides configuration management for gigsafe.
//
// Values are layered in this order, later layers winning:
//  1. built-in defaults (DefaultConfig)
//  2. the config file, if one is found
//  3. GIGSAFE_* environment variables (GIGSAFE_SERVER_ADDR, GIGSAFE_SITE_BASE_URL, ...)
//
// Config file locations (priority order, searched through viper):
//  1. $GIGSAFE_CONFIG
//  2. ./gigsafe.yaml
//  3. $XDG_CONFIG_HOME/gigsafe/config.yaml
//  4. ~/.config/gigsafe/config.yaml
//  5. /etc/gigsafe/config.yaml
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"gigsafe/internal/domain"
	"gigsafe/internal/safe"
)

// EnvPrefix is the prefix for environment overrides
const EnvPrefix = "GIGSAFE"

var (
	// ErrInvalidBaseURL is returned when site.base_url is not an absolute http(s) URL
	ErrInvalidBaseURL = errors.New("site.base_url must be an absolute http(s) URL")
	// ErrUnknownLogLevel is returned for a log.level zap does not know
	ErrUnknownLogLevel = errors.New("unknown log level")
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides apply in both cases.
func Load() (*Config, string, error) {
	return LoadFromPath(FindConfigPath())
}

// LoadFromPath loads config from a specific path. An empty path loads
// defaults plus environment overrides only.
func LoadFromPath(path string) (*Config, string, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, path, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// newViper builds a viper instance seeded with every known key so that
// environment variables can override keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("site.name", d.Site.Name)
	v.SetDefault("site.base_url", d.Site.BaseURL)
	v.SetDefault("site.default_locale", d.Site.DefaultLocale)
	v.SetDefault("site.locales", d.Site.Locales)
	v.SetDefault("site.currency", d.Site.Currency)
	v.SetDefault("content.dir", d.Content.Dir)
	v.SetDefault("content.watch", d.Content.Watch)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dev", d.Log.Dev)

	for _, key := range []string{
		"feature_image", "author_image", "og_image", "category_image",
		"author_name", "title", "excerpt", "content", "content_format",
	} {
		v.SetDefault("defaults."+key, "")
	}
	v.SetDefault("defaults.author_social_links", []string{})
	v.SetDefault("defaults.views", 0)
	v.SetDefault("defaults.read_time", 0)

	return v
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Server:   ServerConfig{Addr: ":3000"},
		Database: DatabaseConfig{Path: "./gigsafe.db"},
		Site: SiteConfig{
			Name:          "gigsafe",
			BaseURL:       "http://localhost:3000",
			DefaultLocale: "en",
			Locales:       []string{"en"},
			Currency:      "USD",
		},
		Log: LogConfig{Level: "info"},
	}
}

// applyDefaults fills in missing values with defaults. Config values pass
// through the same normalization as content, so blank or whitespace-only
// entries behave as if unset.
func (c *Config) applyDefaults() {
	d := DefaultConfig()

	if c.Version == 0 {
		c.Version = d.Version
	}
	c.Server.Addr = safe.TextOr(c.Server.Addr, d.Server.Addr)
	c.Server.CORSOrigins = safe.Strings(c.Server.CORSOrigins)
	c.Database.Path = safe.TextOr(c.Database.Path, d.Database.Path)

	c.Site.Name = safe.TextOr(c.Site.Name, d.Site.Name)
	c.Site.BaseURL = strings.TrimRight(safe.TextOr(c.Site.BaseURL, d.Site.BaseURL), "/")
	c.Site.DefaultLocale = strings.ToLower(safe.TextOr(c.Site.DefaultLocale, d.Site.DefaultLocale))
	c.Site.Currency = strings.ToUpper(safe.TextOr(c.Site.Currency, d.Site.Currency))

	locales := safe.Strings(c.Site.Locales)
	for i := range locales {
		locales[i] = strings.ToLower(locales[i])
	}
	if !slices.Contains(locales, c.Site.DefaultLocale) {
		locales = append([]string{c.Site.DefaultLocale}, locales...)
	}
	c.Site.Locales = locales

	c.Content.Dir = safe.Text(c.Content.Dir)
	c.Log.Level = strings.ToLower(safe.TextOr(c.Log.Level, d.Log.Level))
}

// Validate reports configuration that cannot be served
func (c *Config) Validate() error {
	u, err := url.Parse(c.Site.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.Site.BaseURL)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLogLevel, c.Log.Level)
	}

	return nil
}

// SiteInfo returns the site identity used for page metadata
func (c *Config) SiteInfo() domain.Site {
	return domain.Site{
		Name:          c.Site.Name,
		BaseURL:       c.Site.BaseURL,
		DefaultLocale: c.Site.DefaultLocale,
		Currency:      c.Site.Currency,
	}
}

// SafeDefaults returns the fallback registry with configured overrides applied
func (c *Config) SafeDefaults() safe.Defaults {
	d := c.Defaults
	return safe.NewDefaults(safe.Defaults{
		FeatureImage:      d.FeatureImage,
		AuthorImage:       d.AuthorImage,
		OGImage:           d.OGImage,
		CategoryImage:     d.CategoryImage,
		AuthorName:        d.AuthorName,
		AuthorSocialLinks: d.AuthorSocialLinks,
		Title:             d.Title,
		Excerpt:           d.Excerpt,
		Content:           d.Content,
		ContentFormat:     d.ContentFormat,
		Views:             d.Views,
		ReadTime:          d.ReadTime,
	})
}

// HasLocale reports whether the site serves the given locale
func (c *Config) HasLocale(locale string) bool {
	return slices.Contains(c.Site.Locales, strings.ToLower(locale))
}
