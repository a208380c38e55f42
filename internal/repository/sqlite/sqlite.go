// Package sqlite implements repository.Repository on SQLite using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gigsafe/internal/domain"
	"gigsafe/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// every connection to :memory: is a separate database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		locale TEXT NOT NULL,
		slug TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT,
		title TEXT NOT NULL,
		excerpt TEXT NOT NULL,
		content TEXT NOT NULL,
		content_format TEXT NOT NULL,
		feature_image TEXT NOT NULL,
		tags JSON NOT NULL DEFAULT '[]',
		author_name TEXT NOT NULL,
		author_image TEXT NOT NULL,
		author_bio TEXT,
		author_social_links JSON NOT NULL DEFAULT '[]',
		views INTEGER NOT NULL DEFAULT 0,
		read_time INTEGER NOT NULL DEFAULT 1,
		featured INTEGER NOT NULL DEFAULT 0,
		published INTEGER NOT NULL DEFAULT 1,
		published_at DATETIME,
		fingerprint TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (locale, slug)
	);

	CREATE TABLE IF NOT EXISTS gigs (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		image TEXT NOT NULL,
		seller TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		rating REAL NOT NULL DEFAULT 0,
		reviews INTEGER NOT NULL DEFAULT 0,
		delivery_days INTEGER NOT NULL DEFAULT 1,
		featured INTEGER NOT NULL DEFAULT 0,
		tags JSON NOT NULL DEFAULT '[]',
		created_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_posts_locale ON posts(locale, published);
	CREATE INDEX IF NOT EXISTS idx_posts_category ON posts(category);
	CREATE INDEX IF NOT EXISTS idx_gigs_slug ON gigs(slug);
	CREATE INDEX IF NOT EXISTS idx_gigs_category ON gigs(category);
	`

	_, err := r.db.Exec(schema)
	return err
}

// ============================================================================
// Posts
// ============================================================================

// UpsertPost inserts or replaces a post by ID. The stored creation time is
// kept on update and written back to post.
func (r *Repository) UpsertPost(ctx context.Context, post *domain.Post) error {
	now := r.now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	args, err := postInsertArgs(post)
	if err != nil {
		return err
	}

	query := `INSERT INTO posts (` + postColumns + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT(id) DO UPDATE SET
			locale = excluded.locale,
			slug = excluded.slug,
			type = excluded.type,
			category = excluded.category,
			title = excluded.title,
			excerpt = excluded.excerpt,
			content = excluded.content,
			content_format = excluded.content_format,
			feature_image = excluded.feature_image,
			tags = excluded.tags,
			author_name = excluded.author_name,
			author_image = excluded.author_image,
			author_bio = excluded.author_bio,
			author_social_links = excluded.author_social_links,
			views = excluded.views,
			read_time = excluded.read_time,
			featured = excluded.featured,
			published = excluded.published,
			published_at = excluded.published_at,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert post %s: %w", post.ID, err)
	}

	var created time.Time
	if err := r.db.QueryRowContext(ctx, `SELECT created_at FROM posts WHERE id = ?`, post.ID).Scan(&created); err != nil {
		return fmt.Errorf("failed to read back post %s: %w", post.ID, err)
	}
	post.CreatedAt = created.UTC()

	return nil
}

// GetPost retrieves a post by locale and slug
func (r *Repository) GetPost(ctx context.Context, locale, slug string) (*domain.Post, error) {
	var row postRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE locale = ? AND slug = ?`,
		locale, slug,
	).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %s/%s: %w", locale, slug, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return row.toDomain()
}

// ListPosts returns one page of posts, newest first, and the total number
// of matches.
func (r *Repository) ListPosts(ctx context.Context, q repository.PostQuery) ([]domain.Post, int, error) {
	var (
		where []string
		args  []any
	)
	if q.Locale != "" {
		where = append(where, "locale = ?")
		args = append(args, q.Locale)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(q.Type))
	}
	if q.Category != "" {
		where = append(where, "category = ?")
		args = append(args, q.Category)
	}
	if q.FeaturedOnly {
		where = append(where, "featured = 1")
	}
	if !q.IncludeDrafts {
		where = append(where, "published = 1")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	query := `SELECT ` + postColumns + ` FROM posts` + clause +
		` ORDER BY COALESCE(published_at, created_at) DESC, id ASC`
	switch {
	case q.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, max(q.Offset, 0))
	case q.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, q.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]domain.Post, 0)
	for rows.Next() {
		var row postRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan post: %w", err)
		}
		post, err := row.toDomain()
		if err != nil {
			return nil, 0, fmt.Errorf("post %s: %w", row.ID, err)
		}
		posts = append(posts, *post)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, total, nil
}

// DeletePost removes a post by ID
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("post %s: %w", id, repository.ErrNotFound)
	}
	return nil
}

// PostFingerprint returns the stored content fingerprint of a post
func (r *Repository) PostFingerprint(ctx context.Context, id string) (string, error) {
	var fp sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT fingerprint FROM posts WHERE id = ?`, id).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("post %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get fingerprint: %w", err)
	}
	return nullToString(fp), nil
}

// ============================================================================
// Gigs
// ============================================================================

// UpsertGig inserts or replaces a gig by ID
func (r *Repository) UpsertGig(ctx context.Context, gig *domain.Gig) error {
	if gig.CreatedAt.IsZero() {
		gig.CreatedAt = r.now().UTC()
	}

	args, err := gigInsertArgs(gig)
	if err != nil {
		return err
	}

	query := `INSERT INTO gigs (` + gigColumns + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT(id) DO UPDATE SET
			slug = excluded.slug,
			title = excluded.title,
			description = excluded.description,
			category = excluded.category,
			image = excluded.image,
			seller = excluded.seller,
			price = excluded.price,
			rating = excluded.rating,
			reviews = excluded.reviews,
			delivery_days = excluded.delivery_days,
			featured = excluded.featured,
			tags = excluded.tags,
			created_at = COALESCE(gigs.created_at, excluded.created_at)`

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert gig %s: %w", gig.ID, err)
	}
	return nil
}

// GetGig retrieves a gig by ID or slug
func (r *Repository) GetGig(ctx context.Context, idOrSlug string) (*domain.Gig, error) {
	var row gigRow
	err := r.db.QueryRowContext(ctx,
		`SELECT `+gigColumns+` FROM gigs WHERE id = ? OR slug = ? ORDER BY id = ? DESC LIMIT 1`,
		idOrSlug, idOrSlug, idOrSlug,
	).Scan(row.scanArgs()...)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("gig %s: %w", idOrSlug, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gig: %w", err)
	}

	return row.toDomain()
}

// ListGigs returns every gig ordered by ID
func (r *Repository) ListGigs(ctx context.Context) ([]domain.Gig, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+gigColumns+` FROM gigs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query gigs: %w", err)
	}
	defer rows.Close()

	gigs := make([]domain.Gig, 0)
	for rows.Next() {
		var row gigRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan gig: %w", err)
		}
		gig, err := row.toDomain()
		if err != nil {
			return nil, fmt.Errorf("gig %s: %w", row.ID, err)
		}
		gigs = append(gigs, *gig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gigs: %w", err)
	}

	return gigs, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
