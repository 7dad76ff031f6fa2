package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/response"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/services"
)

// ExplanationHandler serves article CRUD plus the display-time endpoints.
// GET :id returns the stored plain markdown; GET :id/rendered is the only
// place link overlays exist.
type ExplanationHandler struct {
	log   *logger.Logger
	expls services.ExplanationService
}

func NewExplanationHandler(log *logger.Logger, expls services.ExplanationService) *ExplanationHandler {
	return &ExplanationHandler{
		log:   log.With("handler", "ExplanationHandler"),
		expls: expls,
	}
}

// POST /api/explanations
func (h *ExplanationHandler) Create(c *gin.Context) {
	var in services.CreateExplanationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	expl, err := h.expls.Create(c.Request.Context(), in)
	if err != nil {
		h.log.Error("Create failed", "error", err, "title", in.Title)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"explanation": expl})
}

// GET /api/explanations
func (h *ExplanationHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)
	expls, err := h.expls.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error("List failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"explanations": expls})
}

// GET /api/explanations/:id
func (h *ExplanationHandler) Get(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	expl, err := h.expls.Get(c.Request.Context(), explID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"explanation": expl})
}

// PATCH /api/explanations/:id
func (h *ExplanationHandler) Update(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	var in services.UpdateExplanationInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	expl, err := h.expls.Update(c.Request.Context(), explID, in)
	if err != nil {
		h.log.Error("Update failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"explanation": expl})
}

type updateContentRequest struct {
	Content string `json:"content"`
}

// PUT /api/explanations/:id/content
func (h *ExplanationHandler) UpdateContent(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	var in updateContentRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	expl, err := h.expls.Update(c.Request.Context(), explID, services.UpdateExplanationInput{Content: &in.Content})
	if err != nil {
		h.log.Error("UpdateContent failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"explanation": expl})
}

// DELETE /api/explanations/:id
func (h *ExplanationHandler) Delete(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	if err := h.expls.Delete(c.Request.Context(), explID); err != nil {
		h.log.Error("Delete failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/explanations/:id/rendered
func (h *ExplanationHandler) Render(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	rendered, err := h.expls.Render(c.Request.Context(), explID)
	if err != nil {
		h.log.Error("Render failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, rendered)
}

// GET /api/explanations/:id/links
func (h *ExplanationHandler) Links(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	rendered, err := h.expls.Render(c.Request.Context(), explID)
	if err != nil {
		h.log.Error("Links failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"links":            rendered.Links,
		"snapshot_version": rendered.SnapshotVersion,
		"degraded":         rendered.Degraded,
	})
}

// POST /api/explanations/:id/heading-links/rebuild
func (h *ExplanationHandler) RebuildHeadingLinks(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	if err := h.expls.RegenerateHeadingLinks(c.Request.Context(), explID); err != nil {
		h.log.Error("RebuildHeadingLinks failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rebuilt": true})
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
