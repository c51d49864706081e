package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/repository"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
	"github.com/noah-isme/lifeflow-api/pkg/slug"
)

const maxSlugAttempts = 50

type contentRepository interface {
	Create(ctx context.Context, post *models.ContentPost) error
	Update(ctx context.Context, post *models.ContentPost) error
	Delete(ctx context.Context, kind models.PostKind, id string) error
	FindByID(ctx context.Context, kind models.PostKind, id string) (*models.ContentPost, error)
	FindPublishedBySlug(ctx context.Context, kind models.PostKind, slug string) (*models.ContentPost, error)
	List(ctx context.Context, kind models.PostKind, publishedOnly bool) ([]models.ContentPost, error)
	SlugExists(ctx context.Context, kind models.PostKind, slug, excludeID string) (bool, error)
}

// ContentService publishes blog posts and news articles.
type ContentService struct {
	repo      contentRepository
	audit     AuditRecorder
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewContentService constructs a ContentService.
func NewContentService(repo contentRepository, audit AuditRecorder, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if audit == nil {
		audit = nopAuditRecorder{}
	}
	return &ContentService{
		repo:      repo,
		audit:     audit,
		markdown:  goldmark.New(),
		policy:    bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// ListPublished returns published posts of a kind, most recently published first.
func (s *ContentService) ListPublished(ctx context.Context, kind models.PostKind) ([]models.ContentPost, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content kind")
	}
	posts, err := s.repo.List(ctx, kind, true)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list posts")
	}
	return posts, nil
}

// ListAll returns every post of a kind, newest first.
func (s *ContentService) ListAll(ctx context.Context, kind models.PostKind) ([]models.ContentPost, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content kind")
	}
	posts, err := s.repo.List(ctx, kind, false)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list posts")
	}
	return posts, nil
}

// GetPublished returns a published post with its sanitised HTML body.
func (s *ContentService) GetPublished(ctx context.Context, kind models.PostKind, postSlug string) (*models.RenderedPost, error) {
	if !kind.Valid() || !slug.Valid(postSlug) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
	}
	post, err := s.repo.FindPublishedBySlug(ctx, kind, postSlug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}
	html, err := s.render(post.Content)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render post")
	}
	return &models.RenderedPost{ContentPost: *post, HTML: html}, nil
}

// Create stores a new post authored by the session user.
func (s *ContentService) Create(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, req dto.SavePostRequest) (*models.ContentPost, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content kind")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}

	postSlug, err := s.uniqueSlug(ctx, kind, req.Title, "")
	if err != nil {
		return nil, err
	}
	post := &models.ContentPost{
		Kind:     kind,
		Title:    req.Title,
		Slug:     postSlug,
		AuthorID: claims.UserID,
	}
	s.apply(post, req, nil)

	if err := s.repo.Create(ctx, post); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		}
		return nil, appErrors.Internal(err, "failed to create post")
	}
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionPostCreate, string(kind), post.ID, nil))
	return post, nil
}

// Update replaces every editable field of a post. The slug follows the title.
func (s *ContentService) Update(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, id string, req dto.SavePostRequest) (*models.ContentPost, error) {
	if !claims.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown content kind")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid post payload")
	}

	post, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to load post")
	}

	if post.Title != req.Title {
		postSlug, err := s.uniqueSlug(ctx, kind, req.Title, post.ID)
		if err != nil {
			return nil, err
		}
		post.Slug = postSlug
	}
	post.Title = req.Title
	s.apply(post, req, post.PublishedAt)

	if err := s.repo.Update(ctx, post); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, appErrors.Clone(appErrors.ErrConflict, "slug already in use")
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return nil, appErrors.Internal(err, "failed to update post")
	}
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionPostUpdate, string(kind), post.ID, nil))
	return post, nil
}

// Delete removes a post.
func (s *ContentService) Delete(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, id string) error {
	if !claims.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "post not found")
		}
		return appErrors.Internal(err, "failed to delete post")
	}
	s.audit.Record(ctx, auditEntry(claims, models.AuditActionPostDelete, string(kind), id, nil))
	return nil
}

// apply copies the payload onto post. published_at is kept while the post stays
// published, stamped when it becomes published and cleared when it is unpublished.
func (s *ContentService) apply(post *models.ContentPost, req dto.SavePostRequest, publishedAt *time.Time) {
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.ImageURL = req.ImageURL
	post.Published = req.Published
	switch {
	case !req.Published:
		post.PublishedAt = nil
	case publishedAt != nil:
		post.PublishedAt = publishedAt
	default:
		now := s.now().UTC()
		post.PublishedAt = &now
	}
}

func (s *ContentService) uniqueSlug(ctx context.Context, kind models.PostKind, title, excludeID string) (string, error) {
	base := slug.Make(title)
	if base == "" {
		base = string(kind)
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := slug.WithSuffix(base, n)
		taken, err := s.repo.SlugExists(ctx, kind, candidate, excludeID)
		if err != nil {
			return "", appErrors.Internal(err, "failed to check slug")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "too many posts share this title")
}

func (s *ContentService) render(source string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return string(s.policy.SanitizeBytes(buf.Bytes())), nil
}
