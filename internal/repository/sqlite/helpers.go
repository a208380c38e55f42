package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"gigsafe/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// nullToTime converts sql.NullTime to time.Time, zero when NULL
func nullToTime(nt sql.NullTime) time.Time {
	if nt.Valid {
		return nt.Time.UTC()
	}
	return time.Time{}
}

// nullToBool converts sql.NullInt64 to bool (0 = false, non-zero = true)
func nullToBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// timeToNull converts a zero time to NULL
func timeToNull(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

// boolToInt stores booleans as 0/1
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// unmarshalStrings decodes a JSON string list column. NULL and empty
// columns yield an empty, non-nil slice.
func unmarshalStrings(ns sql.NullString) ([]string, error) {
	out := []string{}
	if !ns.Valid || ns.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// marshalStrings encodes a string list column, storing nil as "[]"
func marshalStrings(s []string) (string, error) {
	if s == nil {
		s = []string{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ============================================================================
// Schema Evolution Guide
// ============================================================================
//
// To add a new column to the posts table:
// 1. Add field to postRow struct (below)
// 2. Update scanArgs() - APPEND to end to match column order
// 3. Update postColumns constant - APPEND to end
// 4. Update toDomain() to map new field to domain.Post
// 5. Update postInsertArgs() and the upsert statement
// 6. Add the column to the CREATE TABLE in sqlite.go migrate()
// 7. Update relevant tests
//
// CRITICAL: Column order must match between:
// - postColumns constant
// - scanArgs() return slice
// - postInsertArgs() and the INSERT column list
//
// Same pattern applies to gigs.

// ============================================================================
// Post Row Scanner
// ============================================================================

// postRow holds all columns from a post query for scanning
type postRow struct {
	ID                string
	Locale            string
	Slug              string
	Type              string
	Category          sql.NullString
	Title             string
	Excerpt           string
	Content           string
	ContentFormat     string
	FeatureImage      string
	TagsJSON          sql.NullString
	AuthorName        string
	AuthorImage       string
	AuthorBio         sql.NullString
	AuthorSocialsJSON sql.NullString
	Views             int
	ReadTime          int
	Featured          sql.NullInt64
	Published         sql.NullInt64
	PublishedAt       sql.NullTime
	Fingerprint       sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match postColumns order exactly
func (r *postRow) scanArgs() []any {
	return []any{
		&r.ID,                // 1
		&r.Locale,            // 2
		&r.Slug,              // 3
		&r.Type,              // 4
		&r.Category,          // 5
		&r.Title,             // 6
		&r.Excerpt,           // 7
		&r.Content,           // 8
		&r.ContentFormat,     // 9
		&r.FeatureImage,      // 10
		&r.TagsJSON,          // 11
		&r.AuthorName,        // 12
		&r.AuthorImage,       // 13
		&r.AuthorBio,         // 14
		&r.AuthorSocialsJSON, // 15
		&r.Views,             // 16
		&r.ReadTime,          // 17
		&r.Featured,          // 18
		&r.Published,         // 19
		&r.PublishedAt,       // 20
		&r.Fingerprint,       // 21
		&r.CreatedAt,         // 22
		&r.UpdatedAt,         // 23
	}
}

// toDomain converts the scanned row to a domain.Post
func (r *postRow) toDomain() (*domain.Post, error) {
	post := &domain.Post{
		ID:            r.ID,
		Locale:        r.Locale,
		Slug:          r.Slug,
		Type:          domain.PostType(r.Type),
		Category:      nullToString(r.Category),
		Title:         r.Title,
		Excerpt:       r.Excerpt,
		Content:       r.Content,
		ContentFormat: r.ContentFormat,
		FeatureImage:  r.FeatureImage,
		Author: domain.Author{
			Name:  r.AuthorName,
			Image: r.AuthorImage,
			Bio:   nullToString(r.AuthorBio),
		},
		Views:       r.Views,
		ReadTime:    r.ReadTime,
		Featured:    nullToBool(r.Featured),
		Published:   nullToBool(r.Published),
		PublishedAt: nullToTime(r.PublishedAt),
		Fingerprint: nullToString(r.Fingerprint),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}

	var err error
	if post.Tags, err = unmarshalStrings(r.TagsJSON); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if post.Author.SocialLinks, err = unmarshalStrings(r.AuthorSocialsJSON); err != nil {
		return nil, fmt.Errorf("unmarshal social links: %w", err)
	}

	return post, nil
}

// postColumns returns the SELECT column list for post queries
const postColumns = `id, locale, slug, type, category, title, excerpt, content,
	content_format, feature_image, tags, author_name, author_image, author_bio,
	author_social_links, views, read_time, featured, published, published_at,
	fingerprint, created_at, updated_at`

// postInsertArgs returns the values for postColumns in order
func postInsertArgs(p *domain.Post) ([]any, error) {
	tags, err := marshalStrings(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	socials, err := marshalStrings(p.Author.SocialLinks)
	if err != nil {
		return nil, fmt.Errorf("marshal social links: %w", err)
	}

	return []any{
		p.ID,
		p.Locale,
		p.Slug,
		string(p.Type),
		stringToNull(p.Category),
		p.Title,
		p.Excerpt,
		p.Content,
		p.ContentFormat,
		p.FeatureImage,
		tags,
		p.Author.Name,
		p.Author.Image,
		stringToNull(p.Author.Bio),
		socials,
		p.Views,
		p.ReadTime,
		boolToInt(p.Featured),
		boolToInt(p.Published),
		timeToNull(p.PublishedAt),
		stringToNull(p.Fingerprint),
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	}, nil
}

// ============================================================================
// Gig Row Scanner
// ============================================================================

// gigRow holds all columns from a gig query for scanning
type gigRow struct {
	ID           string
	Slug         string
	Title        string
	Description  string
	Category     string
	Image        string
	Seller       string
	Price        float64
	Rating       float64
	Reviews      int
	DeliveryDays int
	Featured     sql.NullInt64
	TagsJSON     sql.NullString
	CreatedAt    sql.NullTime
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match gigColumns order exactly
func (r *gigRow) scanArgs() []any {
	return []any{
		&r.ID,           // 1
		&r.Slug,         // 2
		&r.Title,        // 3
		&r.Description,  // 4
		&r.Category,     // 5
		&r.Image,        // 6
		&r.Seller,       // 7
		&r.Price,        // 8
		&r.Rating,       // 9
		&r.Reviews,      // 10
		&r.DeliveryDays, // 11
		&r.Featured,     // 12
		&r.TagsJSON,     // 13
		&r.CreatedAt,    // 14
	}
}

// toDomain converts the scanned row to a domain.Gig
func (r *gigRow) toDomain() (*domain.Gig, error) {
	gig := &domain.Gig{
		ID:           r.ID,
		Slug:         r.Slug,
		Title:        r.Title,
		Description:  r.Description,
		Category:     r.Category,
		Image:        r.Image,
		Seller:       r.Seller,
		Price:        r.Price,
		Rating:       r.Rating,
		Reviews:      r.Reviews,
		DeliveryDays: r.DeliveryDays,
		Featured:     nullToBool(r.Featured),
		CreatedAt:    nullToTime(r.CreatedAt),
	}

	var err error
	if gig.Tags, err = unmarshalStrings(r.TagsJSON); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}

	return gig, nil
}

// gigColumns returns the SELECT column list for gig queries
const gigColumns = `id, slug, title, description, category, image, seller,
	price, rating, reviews, delivery_days, featured, tags, created_at`

// gigInsertArgs returns the values for gigColumns in order
func gigInsertArgs(g *domain.Gig) ([]any, error) {
	tags, err := marshalStrings(g.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	return []any{
		g.ID,
		g.Slug,
		g.Title,
		g.Description,
		g.Category,
		g.Image,
		g.Seller,
		g.Price,
		g.Rating,
		g.Reviews,
		g.DeliveryDays,
		boolToInt(g.Featured),
		tags,
		timeToNull(g.CreatedAt),
	}, nil
}
