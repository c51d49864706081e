package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/internal/validation"
	appErrors "github.com/noah-isme/lifeflow-api/pkg/errors"
)

type memoryContentRepo struct {
	posts map[string]*models.ContentPost
	seq   int
}

func newMemoryContentRepo() *memoryContentRepo {
	return &memoryContentRepo{posts: map[string]*models.ContentPost{}}
}

func (m *memoryContentRepo) Create(_ context.Context, post *models.ContentPost) error {
	m.seq++
	post.ID = "post-" + string(rune('0'+m.seq))
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *memoryContentRepo) Update(_ context.Context, post *models.ContentPost) error {
	if _, ok := m.posts[post.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *post
	m.posts[post.ID] = &clone
	return nil
}

func (m *memoryContentRepo) Delete(_ context.Context, _ models.PostKind, id string) error {
	if _, ok := m.posts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.posts, id)
	return nil
}

func (m *memoryContentRepo) FindByID(_ context.Context, kind models.PostKind, id string) (*models.ContentPost, error) {
	p, ok := m.posts[id]
	if !ok || p.Kind != kind {
		return nil, sql.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (m *memoryContentRepo) FindPublishedBySlug(_ context.Context, kind models.PostKind, slug string) (*models.ContentPost, error) {
	for _, p := range m.posts {
		if p.Kind == kind && p.Slug == slug && p.Published {
			clone := *p
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryContentRepo) List(_ context.Context, kind models.PostKind, publishedOnly bool) ([]models.ContentPost, error) {
	out := []models.ContentPost{}
	for _, p := range m.posts {
		if p.Kind == kind && (!publishedOnly || p.Published) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memoryContentRepo) SlugExists(_ context.Context, kind models.PostKind, slug, excludeID string) (bool, error) {
	for _, p := range m.posts {
		if p.Kind == kind && p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func newTestContentService(repo *memoryContentRepo) *ContentService {
	svc := NewContentService(repo, nil, validation.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestCreatePostDerivesSlugWithSuffix(t *testing.T) {
	repo := newMemoryContentRepo()
	svc := newTestContentService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, adminClaims, models.PostKindBlog, dto.SavePostRequest{Title: "  Why Donate Blood?! ", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "why-donate-blood", first.Slug)
	assert.Nil(t, first.PublishedAt)

	second, err := svc.Create(ctx, adminClaims, models.PostKindBlog, dto.SavePostRequest{Title: "Why donate blood", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "why-donate-blood-2", second.Slug)

	news, err := svc.Create(ctx, adminClaims, models.PostKindNews, dto.SavePostRequest{Title: "Why donate blood", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "why-donate-blood", news.Slug)
}

func TestCreatePostRequiresAdmin(t *testing.T) {
	svc := newTestContentService(newMemoryContentRepo())
	_, err := svc.Create(context.Background(), donorClaims, models.PostKindBlog, dto.SavePostRequest{Title: "x", Content: "y"})
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}

func TestPublishedAtFollowsPublishedFlag(t *testing.T) {
	repo := newMemoryContentRepo()
	svc := newTestContentService(repo)
	ctx := context.Background()

	post, err := svc.Create(ctx, adminClaims, models.PostKindNews, dto.SavePostRequest{Title: "Camp", Content: "c", Published: true})
	require.NoError(t, err)
	require.NotNil(t, post.PublishedAt)
	stamped := *post.PublishedAt

	svc.now = func() time.Time { return stamped.Add(time.Hour) }
	post, err = svc.Update(ctx, adminClaims, models.PostKindNews, post.ID, dto.SavePostRequest{Title: "Camp", Content: "edited", Published: true})
	require.NoError(t, err)
	assert.Equal(t, stamped, *post.PublishedAt)
	assert.Equal(t, "camp", post.Slug)

	post, err = svc.Update(ctx, adminClaims, models.PostKindNews, post.ID, dto.SavePostRequest{Title: "Camp moved", Content: "edited"})
	require.NoError(t, err)
	assert.Nil(t, post.PublishedAt)
	assert.Equal(t, "camp-moved", post.Slug)
}

func TestGetPublishedRendersSanitisedHTML(t *testing.T) {
	repo := newMemoryContentRepo()
	svc := newTestContentService(repo)
	ctx := context.Background()

	body := "# Heading\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1)) and **bold**"
	_, err := svc.Create(ctx, adminClaims, models.PostKindBlog, dto.SavePostRequest{Title: "Safety", Content: body, Published: true})
	require.NoError(t, err)

	rendered, err := svc.GetPublished(ctx, models.PostKindBlog, "safety")
	require.NoError(t, err)
	assert.Contains(t, rendered.HTML, "<h1>Heading</h1>")
	assert.Contains(t, rendered.HTML, "<strong>bold</strong>")
	assert.NotContains(t, rendered.HTML, "<script>")
	assert.NotContains(t, rendered.HTML, "javascript:")
}

func TestGetPublishedHidesDrafts(t *testing.T) {
	repo := newMemoryContentRepo()
	svc := newTestContentService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, adminClaims, models.PostKindBlog, dto.SavePostRequest{Title: "Draft", Content: "c"})
	require.NoError(t, err)

	_, err = svc.GetPublished(ctx, models.PostKindBlog, "draft")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = svc.GetPublished(ctx, models.PostKindBlog, "Not A Slug")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestUnknownKindIsNotFound(t *testing.T) {
	svc := newTestContentService(newMemoryContentRepo())
	_, err := svc.ListPublished(context.Background(), models.PostKind("events"))
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestDeletePost(t *testing.T) {
	repo := newMemoryContentRepo()
	svc := newTestContentService(repo)
	ctx := context.Background()

	post, err := svc.Create(ctx, adminClaims, models.PostKindBlog, dto.SavePostRequest{Title: "Gone", Content: "c"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, adminClaims, models.PostKindBlog, post.ID))
	assert.ErrorIs(t, svc.Delete(ctx, adminClaims, models.PostKindBlog, post.ID), appErrors.ErrNotFound)
}
