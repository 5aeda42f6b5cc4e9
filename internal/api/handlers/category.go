package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/atriumcms/atrium/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD.
type CategoryHandler struct {
	db *gorm.DB
}

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{db: db}
}

// List godoc
// @Summary List categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Order("name").Find(&categories).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// CategoryRequest carries category create/update input.
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Create godoc
// @Summary Create a category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param category body CategoryRequest true "Category details"
// @Success 201 {object} models.Category
// @Failure 409 {object} ErrorResponse
// @Router /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}

	category := models.Category{Name: req.Name, Slug: slug, Description: req.Description}
	if err := h.db.Create(&category).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "category already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Update godoc
// @Summary Update a category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	var category models.Category
	if err := h.db.First(&category, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	category.Name = req.Name
	if req.Slug != "" {
		category.Slug = req.Slug
	}
	category.Description = req.Description

	if err := h.db.Save(&category).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "category already exists"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete godoc
// @Summary Soft-delete a category
// @Tags categories
// @Security BearerAuth
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	var category models.Category
	if err := h.db.First(&category, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	// Detach posts rather than orphan them against a deleted category
	if err := h.db.Model(&models.Post{}).Where("category_id = ?", category.ID).
		Update("category_id", nil).Error; err != nil {
		respondError(c, err)
		return
	}
	if err := h.db.Delete(&category).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
