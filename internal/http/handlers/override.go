package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/response"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/services"
)

// OverrideHandler manages per-explanation linking overrides. The term in the
// URL or body is matched case-insensitively against dictionary keys.
type OverrideHandler struct {
	log       *logger.Logger
	overrides services.OverrideService
}

func NewOverrideHandler(log *logger.Logger, overrides services.OverrideService) *OverrideHandler {
	return &OverrideHandler{
		log:       log.With("handler", "OverrideHandler"),
		overrides: overrides,
	}
}

// PUT /api/explanations/:id/overrides
func (h *OverrideHandler) Put(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	var in services.OverrideInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	override, err := h.overrides.Put(c.Request.Context(), explID, in)
	if err != nil {
		h.log.Error("Put override failed", "error", err, "explanation_id", explID, "term", in.Term)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"override": override})
}

// GET /api/explanations/:id/overrides
func (h *OverrideHandler) List(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	rows, err := h.overrides.List(c.Request.Context(), explID)
	if err != nil {
		h.log.Error("List overrides failed", "error", err, "explanation_id", explID)
		respondServiceError(c, err)
		return
	}
	byTerm := make(map[string]*types.TermOverride, len(rows))
	for _, row := range rows {
		byTerm[row.TermLower] = row
	}
	response.RespondOK(c, gin.H{"overrides": byTerm})
}

// DELETE /api/explanations/:id/overrides/:term
func (h *OverrideHandler) Delete(c *gin.Context) {
	explID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_explanation_id", err)
		return
	}
	term := c.Param("term")
	if err := h.overrides.Delete(c.Request.Context(), explID, term); err != nil {
		h.log.Error("Delete override failed", "error", err, "explanation_id", explID, "term", term)
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}
