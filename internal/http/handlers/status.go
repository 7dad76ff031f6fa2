package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/http/response"
)

// statusForError maps service error codes onto HTTP statuses. Uncoded errors
// fall through to 500 with a generic wire code.
func statusForError(err error) (int, string) {
	code := linking.CodeOf(err)
	switch code {
	case linking.CodeValidation:
		return http.StatusBadRequest, string(code)
	case linking.CodeInvalidOverride, linking.CodeMalformedContent:
		return http.StatusUnprocessableEntity, string(code)
	case linking.CodeNotFound:
		return http.StatusNotFound, string(code)
	case linking.CodeConflict, linking.CodeStaleSnapshot:
		return http.StatusConflict, string(code)
	case linking.CodeRetryable, linking.CodeDictionaryUnavailable:
		return http.StatusServiceUnavailable, string(code)
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func respondServiceError(c *gin.Context, err error) {
	status, code := statusForError(err)
	response.RespondError(c, status, code, err)
}
