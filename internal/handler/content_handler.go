package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/lifeflow-api/internal/dto"
	"github.com/noah-isme/lifeflow-api/internal/models"
	"github.com/noah-isme/lifeflow-api/pkg/response"
)

type contentService interface {
	ListPublished(ctx context.Context, kind models.PostKind) ([]models.ContentPost, error)
	ListAll(ctx context.Context, kind models.PostKind) ([]models.ContentPost, error)
	GetPublished(ctx context.Context, kind models.PostKind, slug string) (*models.RenderedPost, error)
	Create(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, req dto.SavePostRequest) (*models.ContentPost, error)
	Update(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, id string, req dto.SavePostRequest) (*models.ContentPost, error)
	Delete(ctx context.Context, claims *models.JWTClaims, kind models.PostKind, id string) error
}

// ContentHandler serves blog posts and news articles.
type ContentHandler struct {
	service contentService
}

// NewContentHandler constructs a ContentHandler.
func NewContentHandler(service contentService) *ContentHandler {
	return &ContentHandler{service: service}
}

func postKind(c *gin.Context) models.PostKind {
	return models.PostKind(c.Param("kind"))
}

// ListPublished godoc
// @Summary List published posts
// @Tags Content
// @Produce json
// @Param kind path string true "blog or news"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{kind} [get]
func (h *ContentHandler) ListPublished(c *gin.Context) {
	posts, err := h.service.ListPublished(c.Request.Context(), postKind(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// GetPublished godoc
// @Summary Read a published post
// @Description Returns the post with its markdown rendered to sanitised HTML
// @Tags Content
// @Produce json
// @Param kind path string true "blog or news"
// @Param slug path string true "Post slug"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /posts/{kind}/{slug} [get]
func (h *ContentHandler) GetPublished(c *gin.Context) {
	post, err := h.service.GetPublished(c.Request.Context(), postKind(c), c.Param("slug"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// AdminList godoc
// @Summary List all posts
// @Tags Admin
// @Produce json
// @Param kind path string true "blog or news"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/posts/{kind} [get]
func (h *ContentHandler) AdminList(c *gin.Context) {
	posts, err := h.service.ListAll(c.Request.Context(), postKind(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, posts, nil)
}

// Create godoc
// @Summary Create a post
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "blog or news"
// @Param payload body dto.SavePostRequest true "Post"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/posts/{kind} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	var req dto.SavePostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := h.service.Create(c.Request.Context(), claims, postKind(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, post)
}

// Update godoc
// @Summary Replace a post
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "blog or news"
// @Param id path string true "Post ID"
// @Param payload body dto.SavePostRequest true "Post"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/posts/{kind}/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "post")
	if !ok {
		return
	}
	var req dto.SavePostRequest
	if !bindJSON(c, &req, "invalid post payload") {
		return
	}

	post, err := h.service.Update(c.Request.Context(), claims, postKind(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, post, nil)
}

// Delete godoc
// @Summary Delete a post
// @Tags Admin
// @Param kind path string true "blog or news"
// @Param id path string true "Post ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /admin/posts/{kind}/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "post")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), claims, postKind(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
