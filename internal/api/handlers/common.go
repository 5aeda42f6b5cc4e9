package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/atriumcms/atrium/internal/auth"
	"github.com/atriumcms/atrium/internal/service"
	"github.com/gin-gonic/gin"
)

// Version is set via ldflags at build time
var Version = "dev"

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respondError maps service-layer errors to the HTTP taxonomy. Raw store
// and internal errors never reach the client.
func respondError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: validation.Message})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{Message: conflict.Message})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "not found"})
	default:
		slog.Error("Internal error", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// uniqueStrings drops repeated entries, preserving first-seen order.
func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// HealthCheck godoc
// @Summary Health check
// @Tags info
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}
