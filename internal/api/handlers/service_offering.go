package handlers

import (
	"net/http"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/atriumcms/atrium/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ServiceHandler serves the services module.
type ServiceHandler struct {
	db *gorm.DB
}

// NewServiceHandler creates the services handler.
func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

// List godoc
// @Summary List service entries
// @Tags services
// @Produce json
// @Success 200 {array} models.ServiceOffering
// @Router /services [get]
func (h *ServiceHandler) List(c *gin.Context) {
	var services []models.ServiceOffering
	if err := h.db.Order("sort_order, title").Find(&services).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, services)
}

// ServiceRequest carries service create/update input.
type ServiceRequest struct {
	Title     string `json:"title" binding:"required"`
	Slug      string `json:"slug"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// Create godoc
// @Summary Create a service entry
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param service body ServiceRequest true "Service details"
// @Success 201 {object} models.ServiceOffering
// @Failure 409 {object} ErrorResponse
// @Router /services [post]
func (h *ServiceHandler) Create(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	svc := models.ServiceOffering{
		Title:     req.Title,
		Slug:      slug,
		Summary:   req.Summary,
		Body:      req.Body,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}
	if err := h.db.Create(&svc).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "service slug already in use"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// Update godoc
// @Summary Update a service entry
// @Tags services
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Service ID"
// @Success 200 {object} models.ServiceOffering
// @Failure 404 {object} ErrorResponse
// @Router /services/{id} [put]
func (h *ServiceHandler) Update(c *gin.Context) {
	var svc models.ServiceOffering
	if err := h.db.First(&svc, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	svc.Title = req.Title
	if req.Slug != "" {
		svc.Slug = req.Slug
	}
	svc.Summary = req.Summary
	svc.Body = req.Body
	svc.Icon = req.Icon
	svc.SortOrder = req.SortOrder

	if err := h.db.Save(&svc).Error; err != nil {
		if service.IsDuplicate(err) {
			respondError(c, &service.ConflictError{Message: "service slug already in use"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// Delete godoc
// @Summary Soft-delete a service entry
// @Tags services
// @Security BearerAuth
// @Param id path int true "Service ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /services/{id} [delete]
func (h *ServiceHandler) Delete(c *gin.Context) {
	var svc models.ServiceOffering
	if err := h.db.First(&svc, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	if err := h.db.Delete(&svc).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
