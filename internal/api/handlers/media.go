package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/atriumcms/atrium/internal/api/middleware"
	"github.com/atriumcms/atrium/internal/audit"
	"github.com/atriumcms/atrium/internal/models"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaHandler serves media uploads and metadata. Files live on disk under
// mediaDir; rows carry the metadata and the generated stored name.
type MediaHandler struct {
	db       *gorm.DB
	mediaDir string
}

// NewMediaHandler creates the media handler and ensures the storage dir exists.
func NewMediaHandler(db *gorm.DB, mediaDir string) (*MediaHandler, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return nil, err
	}
	return &MediaHandler{db: db, mediaDir: mediaDir}, nil
}

func (h *MediaHandler) withURL(m *models.Media) *models.Media {
	m.URL = "/uploads/" + m.StoredName
	return m
}

// List godoc
// @Summary List media assets
// @Tags media
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.Media
// @Router /media [get]
func (h *MediaHandler) List(c *gin.Context) {
	var assets []models.Media
	if err := h.db.Order("created_at DESC").Find(&assets).Error; err != nil {
		respondError(c, err)
		return
	}
	for i := range assets {
		h.withURL(&assets[i])
	}
	c.JSON(http.StatusOK, assets)
}

// Get godoc
// @Summary Get media metadata
// @Tags media
// @Security BearerAuth
// @Produce json
// @Param id path int true "Media ID"
// @Success 200 {object} models.Media
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	var asset models.Media
	if err := h.db.First(&asset, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, h.withURL(&asset))
}

// Upload godoc
// @Summary Upload a media asset
// @Tags media
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} models.Media
// @Failure 400 {object} ErrorResponse
// @Router /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	uploader, _ := middleware.CurrentUser(c)

	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file field")
		return
	}

	// Random stored name; the original name survives only as metadata
	storedName := uuid.NewString() + filepath.Ext(file.Filename)
	dest := filepath.Join(h.mediaDir, storedName)
	if err := c.SaveUploadedFile(file, dest); err != nil {
		respondError(c, err)
		return
	}

	asset := models.Media{
		FileName:   filepath.Base(file.Filename),
		StoredName: storedName,
		MimeType:   file.Header.Get("Content-Type"),
		SizeBytes:  file.Size,
		UploaderID: uploader.ID,
	}
	if err := h.db.Create(&asset).Error; err != nil {
		os.Remove(dest)
		respondError(c, err)
		return
	}

	audit.LogAction(h.db, uploader.ID, audit.ActionUploadMedia, "media:"+storedName,
		map[string]interface{}{"file_name": asset.FileName, "size": asset.SizeBytes})
	c.JSON(http.StatusCreated, h.withURL(&asset))
}

// Delete godoc
// @Summary Delete a media asset and its file
// @Tags media
// @Security BearerAuth
// @Param id path int true "Media ID"
// @Success 200 {object} map[string]bool
// @Failure 404 {object} ErrorResponse
// @Router /media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)

	var asset models.Media
	if err := h.db.First(&asset, c.Param("id")).Error; err != nil {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.db.Delete(&asset).Error; err != nil {
		respondError(c, err)
		return
	}
	// The metadata row is already gone; a failed file removal is logged,
	// not surfaced
	if err := os.Remove(filepath.Join(h.mediaDir, asset.StoredName)); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove media file", "file", asset.StoredName, "error", err)
	}

	audit.LogAction(h.db, actor.ID, audit.ActionDeleteMedia, "media:"+asset.StoredName, nil)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
