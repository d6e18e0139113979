package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/mood-journal/internal/domain/auth"
	"github.com/yanqian/mood-journal/internal/domain/journal"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	authSvc    auth.Service
	journalSvc journal.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(authSvc auth.Service, journalSvc journal.Service, logger *slog.Logger) *Handler {
	return &Handler{
		authSvc:    authSvc,
		journalSvc: journalSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
