package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/lifeflow-api/internal/models"
)

const contentColumns = `id, kind, title, slug, content, excerpt, image_url, author_id, published, published_at, created_at, updated_at`

// ContentRepository persists blog posts and news articles.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Create inserts a post. A slug taken within the kind yields ErrDuplicate.
func (r *ContentRepository) Create(ctx context.Context, post *models.ContentPost) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	const query = `INSERT INTO content_posts (` + contentColumns + `)
        VALUES (:id, :kind, :title, :slug, :content, :excerpt, :image_url, :author_id, :published, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create content post: %w", err)
	}
	return nil
}

// Update replaces every editable field of the post.
func (r *ContentRepository) Update(ctx context.Context, post *models.ContentPost) error {
	post.UpdatedAt = time.Now().UTC()
	const query = `UPDATE content_posts SET title = :title, slug = :slug, content = :content, excerpt = :excerpt, image_url = :image_url,
        published = :published, published_at = :published_at, updated_at = :updated_at WHERE id = :id AND kind = :kind`
	res, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update content post: %w", err)
	}
	return expectOneRow(res, "update content post")
}

// Delete removes a post.
func (r *ContentRepository) Delete(ctx context.Context, kind models.PostKind, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM content_posts WHERE id = $1 AND kind = $2`, id, kind)
	if err != nil {
		return fmt.Errorf("delete content post: %w", err)
	}
	return expectOneRow(res, "delete content post")
}

// FindByID returns a post of the given kind or sql.ErrNoRows.
func (r *ContentRepository) FindByID(ctx context.Context, kind models.PostKind, id string) (*models.ContentPost, error) {
	const query = `SELECT ` + contentColumns + ` FROM content_posts WHERE id = $1 AND kind = $2`
	var post models.ContentPost
	if err := r.db.GetContext(ctx, &post, query, id, kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content post: %w", err)
	}
	return &post, nil
}

// FindPublishedBySlug returns a published post or sql.ErrNoRows.
func (r *ContentRepository) FindPublishedBySlug(ctx context.Context, kind models.PostKind, slug string) (*models.ContentPost, error) {
	const query = `SELECT ` + contentColumns + ` FROM content_posts WHERE kind = $1 AND slug = $2 AND published = TRUE`
	var post models.ContentPost
	if err := r.db.GetContext(ctx, &post, query, kind, slug); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find content post by slug: %w", err)
	}
	return &post, nil
}

// List returns posts of a kind. Published listings are ordered by published_at, the rest by created_at.
func (r *ContentRepository) List(ctx context.Context, kind models.PostKind, publishedOnly bool) ([]models.ContentPost, error) {
	query := `SELECT ` + contentColumns + ` FROM content_posts WHERE kind = $1`
	if publishedOnly {
		query += ` AND published = TRUE ORDER BY published_at DESC`
	} else {
		query += ` ORDER BY created_at DESC`
	}
	posts := []models.ContentPost{}
	if err := r.db.SelectContext(ctx, &posts, query, kind); err != nil {
		return nil, fmt.Errorf("list content posts: %w", err)
	}
	return posts, nil
}

// SlugExists reports whether another post of the kind already uses slug.
func (r *ContentRepository) SlugExists(ctx context.Context, kind models.PostKind, slug, excludeID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM content_posts WHERE kind = $1 AND slug = $2 AND id::text <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, kind, slug, excludeID); err != nil {
		return false, fmt.Errorf("check content slug: %w", err)
	}
	return exists, nil
}
