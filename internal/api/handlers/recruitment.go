package handlers

import (
	"net/http"
	"time"

	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RecruitmentHandler serves job postings.
type RecruitmentHandler struct {
	db *gorm.DB
}

// NewRecruitmentHandler creates the recruitment handler.
func NewRecruitmentHandler(db *gorm.DB) *RecruitmentHandler {
	return &RecruitmentHandler{db: db}
}

// ListOpen godoc
// @Summary List open job postings
// @Tags recruitments
// @Produce json
// @Success 200 {array} models.Recruitment
// @Router /recruitments [get]
func (h *RecruitmentHandler) ListOpen(c *gin.Context) {
	var postings []models.Recruitment
	err := h.db.Where("open = ?", true).
		Where("closes_at IS NULL OR closes_at > ?", time.Now()).
		Order("created_at DESC").Find(&postings).Error
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postings)
}

// ListAll godoc
// @Summary List all job postings including closed ones
// @Tags recruitments
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Recruitment
// @Router /admin/recruitments [get]
func (h *RecruitmentHandler) ListAll(c *gin.Context) {
	var postings []models.Recruitment
	if err := h.db.Order("created_at DESC").Find(&postings).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, postings)
}

// RecruitmentRequest carries job posting create/update input.
type RecruitmentRequest struct {
	Title          string     `json:"title" binding:"required"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	Description    string     `json:"description"`
	Open           *bool      `json:"open"`
	ClosesAt       *time.Time `json:"closes_at"`
}

// Create godoc
// @Summary Create a job posting
// @Tags recruitments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param posting body RecruitmentRequest true "Posting details"
// @Success 201 {object} models.Recruitment
// @Router /recruitments [post]
func (h *RecruitmentHandler) Create(c *gin.Context) {
	var req RecruitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	posting := models.Recruitment{
		Title:          req.Title,
		Location:       req.Location,
		EmploymentType: req.EmploymentType,
		Description:    req.Description,
		Open:           true,
		ClosesAt:       req.ClosesAt,
	}
	if req.Open != nil {
		posting.Open = *req.Open
	}
	if err := h.db.Create(&posting).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, posting)
}

// Update godoc
// @Summary Update a job posting
// @Tags recruitments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Posting ID"
// @Success 200 {object} models.Recruitment
// @Failure 404 {object} ErrorResponse
// @Router /recruitments/{id} [put]
func (h *RecruitmentHandler) Update(c *gin.Context) {
	var posting models.Recruitment
	if err := h.db.First(&posting, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	var req RecruitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	posting.Title = req.Title
	posting.Location = req.Location
	posting.EmploymentType = req.EmploymentType
	posting.Description = req.Description
	posting.ClosesAt = req.ClosesAt
	if req.Open != nil {
		posting.Open = *req.Open
	}

	if err := h.db.Save(&posting).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posting)
}

// Delete godoc
// @Summary Soft-delete a job posting
// @Tags recruitments
// @Security BearerAuth
// @Param id path int true "Posting ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /recruitments/{id} [delete]
func (h *RecruitmentHandler) Delete(c *gin.Context) {
	var posting models.Recruitment
	if err := h.db.First(&posting, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	if err := h.db.Delete(&posting).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
