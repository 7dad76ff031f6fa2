package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation maps to 400",
			err:        linking.NewError(linking.CodeValidation, "dictionary.CreateTerm", "canonical_term is required", nil),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation",
		},
		{
			name:       "invalid override maps to 422",
			err:        linking.NewError(linking.CodeInvalidOverride, "override.Put", "custom_title requires a title", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "invalid_override",
		},
		{
			name:       "malformed content maps to 422",
			err:        linking.NewError(linking.CodeMalformedContent, "explanation.Render", "content is not valid UTF-8", nil),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "malformed_content",
		},
		{
			name:       "not found maps to 404",
			err:        linking.NewError(linking.CodeNotFound, "explanation.Get", "explanation not found", nil),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "conflict maps to 409",
			err:        linking.NewError(linking.CodeConflict, "dictionary.CreateTerm", "term already exists", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "stale snapshot maps to 409",
			err:        linking.NewError(linking.CodeStaleSnapshot, "dictionary.GetSnapshot", "cached version behind store", nil),
			wantStatus: http.StatusConflict,
			wantCode:   "stale_snapshot",
		},
		{
			name:       "retryable maps to 503",
			err:        linking.NewError(linking.CodeRetryable, "dictionary.RebuildSnapshot", "rebuild raced a concurrent mutation", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "retryable",
		},
		{
			name:       "dictionary unavailable maps to 503",
			err:        linking.NewError(linking.CodeDictionaryUnavailable, "dictionary.GetSnapshot", "store unreachable", nil),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "dictionary_unavailable",
		},
		{
			name:       "uncoded error maps to 500",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
		{
			name:       "wrapped cause keeps the outer code",
			err:        linking.Wrap(linking.CodeNotFound, "override.Delete", errors.New("record not found")),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, code := statusForError(tc.err)
			if status != tc.wantStatus {
				t.Fatalf("status = %d, want %d", status, tc.wantStatus)
			}
			if code != tc.wantCode {
				t.Fatalf("code = %q, want %q", code, tc.wantCode)
			}
		})
	}
}
