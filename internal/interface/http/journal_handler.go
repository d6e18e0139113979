package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/mood-journal/internal/domain/journal"
	apperrors "github.com/yanqian/mood-journal/pkg/errors"
)

// CreateEntry stores a journal entry and its emotion analysis.
func (h *Handler) CreateEntry(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req journal.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	entry, err := h.journalSvc.CreateEntry(c.Request.Context(), claims.UserID, req)
	if err != nil {
		abortWithError(c, fromDomain(err, "create_entry_failed"))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// ListEntries returns one page of entries, newest first.
func (h *Handler) ListEntries(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "limit must be an integer", err))
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "offset must be an integer", err))
		return
	}
	page, err := h.journalSvc.ListEntries(c.Request.Context(), claims.UserID, journal.ListRequest{
		Tag:    c.Query("tag"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		abortWithError(c, fromDomain(err, "list_entries_failed"))
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetEntry returns one entry owned by the caller.
func (h *Handler) GetEntry(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	entry, err := h.journalSvc.GetEntry(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, fromDomain(err, "get_entry_failed"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// UpdateEntry edits content or tags.
func (h *Handler) UpdateEntry(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	var req journal.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, badRequest(err))
		return
	}
	entry, err := h.journalSvc.UpdateEntry(c.Request.Context(), claims.UserID, id, req)
	if err != nil {
		abortWithError(c, fromDomain(err, "update_entry_failed"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// AnalyzeEntry re-runs emotion analysis on an entry.
func (h *Handler) AnalyzeEntry(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	entry, err := h.journalSvc.ReanalyzeEntry(c.Request.Context(), claims.UserID, id)
	if err != nil {
		abortWithError(c, fromDomain(err, "analyze_entry_failed"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteEntry removes an entry.
func (h *Handler) DeleteEntry(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	id, ok := entryID(c)
	if !ok {
		return
	}
	if err := h.journalSvc.DeleteEntry(c.Request.Context(), claims.UserID, id); err != nil {
		abortWithError(c, fromDomain(err, "delete_entry_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTags returns the caller's tags with usage counts.
func (h *Handler) ListTags(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	tags, err := h.journalSvc.ListTags(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomain(err, "list_tags_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"tags": tags})
}

// Dashboard returns the aggregated emotion dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	dashboard, err := h.journalSvc.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomain(err, "dashboard_failed"))
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

// Export writes the caller's journal to archive storage.
func (h *Handler) Export(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	result, err := h.journalSvc.Export(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, fromDomain(err, "export_failed"))
		return
	}
	c.JSON(http.StatusCreated, result)
}

func entryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, "invalid entry id", err))
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
