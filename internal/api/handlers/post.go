package handlers

import (
	"net/http"
	"time"

	"github.com/atriumcms/atrium/internal/api/middleware"
	"github.com/atriumcms/atrium/internal/audit"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/atriumcms/atrium/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostHandler serves the blog module.
type PostHandler struct {
	db *gorm.DB
}

// NewPostHandler creates the blog handler.
func NewPostHandler(db *gorm.DB) *PostHandler {
	return &PostHandler{db: db}
}

// ListPublished godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param category query string false "Filter by category slug"
// @Param tag query string false "Filter by tag slug"
// @Success 200 {array} models.Post
// @Router /posts [get]
func (h *PostHandler) ListPublished(c *gin.Context) {
	query := h.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("published_at IS NOT NULL").Order("published_at DESC")

	if slug := c.Query("category"); slug != "" {
		query = query.Joins("JOIN categories ON categories.id = posts.category_id").
			Where("categories.slug = ?", slug)
	}
	if slug := c.Query("tag"); slug != "" {
		query = query.Joins("JOIN post_tags ON post_tags.post_id = posts.id").
			Joins("JOIN tags ON tags.id = post_tags.tag_id").
			Where("tags.slug = ?", slug)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetBySlug godoc
// @Summary Get a published post by slug
// @Tags posts
// @Produce json
// @Param slug path string true "Post slug"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse
// @Router /posts/{slug} [get]
func (h *PostHandler) GetBySlug(c *gin.Context) {
	var post models.Post
	err := h.db.Preload("Author").Preload("Category").Preload("Tags").
		Where("slug = ? AND published_at IS NOT NULL", c.Param("slug")).
		First(&post).Error
	if err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, post)
}

// ListAll godoc
// @Summary List all posts including drafts
// @Tags posts
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Post
// @Router /admin/posts [get]
func (h *PostHandler) ListAll(c *gin.Context) {
	var posts []models.Post
	if err := h.db.Preload("Author").Preload("Category").Preload("Tags").
		Order("created_at DESC").Find(&posts).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// PostRequest carries post create/update input.
type PostRequest struct {
	Title      string   `json:"title" binding:"required"`
	Slug       string   `json:"slug"`
	Excerpt    string   `json:"excerpt"`
	Body       string   `json:"body"`
	CoverImage string   `json:"cover_image"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"` // tag slugs
}

// Create godoc
// @Summary Create a draft post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param post body PostRequest true "Post content"
// @Success 201 {object} models.Post
// @Failure 409 {object} ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	author, _ := middleware.CurrentUser(c)

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	post := models.Post{
		Title:      req.Title,
		Slug:       slug,
		Excerpt:    req.Excerpt,
		Body:       req.Body,
		CoverImage: req.CoverImage,
		AuthorID:   author.ID,
		CategoryID: req.CategoryID,
	}
	if err := h.db.Create(&post).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "slug already in use"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.attachTags(&post, req.Tags); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// Update godoc
// @Summary Update a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c *gin.Context) {
	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	post.Title = req.Title
	if req.Slug != "" {
		post.Slug = req.Slug
	}
	post.Excerpt = req.Excerpt
	post.Body = req.Body
	post.CoverImage = req.CoverImage
	post.CategoryID = req.CategoryID

	if err := h.db.Save(&post).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "slug already in use"})
			return
		}
		respondError(c, err)
		return
	}

	if err := h.attachTags(&post, req.Tags); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

// SetPublished godoc
// @Summary Publish or unpublish a post
// @Tags posts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id}/publish [put]
func (h *PostHandler) SetPublished(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	action := audit.ActionUnpublishPost
	if req.Published {
		action = audit.ActionPublishPost
		if post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
	} else {
		post.PublishedAt = nil
	}

	if err := h.db.Save(&post).Error; err != nil {
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, actor.ID, action, "post:"+post.Slug, nil)
	c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Soft-delete a post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c *gin.Context) {
	var post models.Post
	if err := h.db.First(&post, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	if err := h.db.Delete(&post).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// attachTags replaces the post's tag set with the tags named by slug.
// Unknown slugs are rejected; nil leaves the set unchanged.
func (h *PostHandler) attachTags(post *models.Post, slugs []string) error {
	if slugs == nil {
		return nil
	}
	slugs = uniqueStrings(slugs)

	var tags []models.Tag
	if len(slugs) > 0 {
		if err := h.db.Where("slug IN ?", slugs).Find(&tags).Error; err != nil {
			return err
		}
		if len(tags) != len(slugs) {
			return &service.ValidationError{Message: "unknown tag"}
		}
	}
	return h.db.Model(post).Association("Tags").Replace(&tags)
}
