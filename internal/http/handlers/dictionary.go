package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/response"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/services"
)

// DictionaryHandler exposes term/alias administration and the snapshot
// diagnostics. Every mutation behind it rebuilds the snapshot before the
// response goes out, so a 200 means the new dictionary is already live.
type DictionaryHandler struct {
	log  *logger.Logger
	dict services.DictionaryService
}

func NewDictionaryHandler(log *logger.Logger, dict services.DictionaryService) *DictionaryHandler {
	return &DictionaryHandler{
		log:  log.With("handler", "DictionaryHandler"),
		dict: dict,
	}
}

// POST /api/terms
func (h *DictionaryHandler) CreateTerm(c *gin.Context) {
	var in services.CreateTermInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	term, err := h.dict.CreateTerm(c.Request.Context(), in)
	if err != nil {
		h.log.Error("CreateTerm failed", "error", err, "canonical_term", in.CanonicalTerm)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"term": term})
}

// GET /api/terms
func (h *DictionaryHandler) ListTerms(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	terms, err := h.dict.ListTerms(c.Request.Context(), includeInactive)
	if err != nil {
		h.log.Error("ListTerms failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"terms": terms})
}

// GET /api/terms/:id
func (h *DictionaryHandler) GetTerm(c *gin.Context) {
	termID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_term_id", err)
		return
	}
	term, err := h.dict.GetTerm(c.Request.Context(), termID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"term": term})
}

// PATCH /api/terms/:id
func (h *DictionaryHandler) UpdateTerm(c *gin.Context) {
	termID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_term_id", err)
		return
	}
	var in services.UpdateTermInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	term, err := h.dict.UpdateTerm(c.Request.Context(), termID, in)
	if err != nil {
		h.log.Error("UpdateTerm failed", "error", err, "term_id", termID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"term": term})
}

// DELETE /api/terms/:id
func (h *DictionaryHandler) DeleteTerm(c *gin.Context) {
	termID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_term_id", err)
		return
	}
	if err := h.dict.DeleteTerm(c.Request.Context(), termID); err != nil {
		h.log.Error("DeleteTerm failed", "error", err, "term_id", termID)
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

type addAliasRequest struct {
	Alias string `json:"alias"`
}

// POST /api/terms/:id/aliases
func (h *DictionaryHandler) AddAlias(c *gin.Context) {
	termID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_term_id", err)
		return
	}
	var in addAliasRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	alias, err := h.dict.AddAlias(c.Request.Context(), termID, in.Alias)
	if err != nil {
		h.log.Error("AddAlias failed", "error", err, "term_id", termID, "alias", in.Alias)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"alias": alias})
}

// DELETE /api/aliases/:id
func (h *DictionaryHandler) DeleteAlias(c *gin.Context) {
	aliasID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_alias_id", err)
		return
	}
	if err := h.dict.DeleteAlias(c.Request.Context(), aliasID); err != nil {
		h.log.Error("DeleteAlias failed", "error", err, "alias_id", aliasID)
		respondServiceError(c, err)
		return
	}
	response.RespondNoContent(c)
}

// GET /api/dictionary/snapshot
func (h *DictionaryHandler) GetSnapshot(c *gin.Context) {
	snap, err := h.dict.CurrentSnapshot(c.Request.Context())
	if err != nil {
		h.log.Error("GetSnapshot failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snap})
}

// POST /api/dictionary/rebuild
func (h *DictionaryHandler) RebuildSnapshot(c *gin.Context) {
	snap, err := h.dict.RebuildSnapshot(c.Request.Context())
	if err != nil {
		h.log.Error("RebuildSnapshot failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snap})
}
