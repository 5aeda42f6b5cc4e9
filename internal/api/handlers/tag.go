package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/atriumcms/atrium/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TagHandler serves tag CRUD.
type TagHandler struct {
	db *gorm.DB
}

// NewTagHandler creates the tag handler.
func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// List godoc
// @Summary List tags
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Router /tags [get]
func (h *TagHandler) List(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.Order("name").Find(&tags).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// TagRequest carries tag create input.
type TagRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

// Create godoc
// @Summary Create a tag
// @Tags tags
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param tag body TagRequest true "Tag details"
// @Success 201 {object} models.Tag
// @Failure 409 {object} ErrorResponse
// @Router /tags [post]
func (h *TagHandler) Create(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	tag := models.Tag{Name: req.Name, Slug: slug}
	if err := h.db.Create(&tag).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "tag already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// Delete godoc
// @Summary Soft-delete a tag
// @Tags tags
// @Security BearerAuth
// @Param id path int true "Tag ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /tags/{id} [delete]
func (h *TagHandler) Delete(c *gin.Context) {
	var tag models.Tag
	if err := h.db.First(&tag, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	if err := h.db.Delete(&tag).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
