package dberr

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

func TestMapError_Nil(t *testing.T) {
	if got := MapError("op", nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestMapError_Passthrough(t *testing.T) {
	in := linking.NewError(linking.CodeInvalidOverride, "overrides.put", "bad override", nil)
	out := MapError("other.op", in)
	if out != in {
		t.Fatalf("expected passthrough, got %v", out)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_DuplicatedKey(t *testing.T) {
	err := MapError("op", gorm.ErrDuplicatedKey)
	if linking.CodeOf(err) != linking.CodeConflict {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_PgUniqueViolation(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23505"})
	if linking.CodeOf(err) != linking.CodeConflict {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_PgForeignKey(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "23503"})
	if linking.CodeOf(err) != linking.CodeValidation {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_PgSerialization(t *testing.T) {
	err := MapError("op", &pgconn.PgError{Code: "40001"})
	if linking.CodeOf(err) != linking.CodeRetryable {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_ContextCanceled(t *testing.T) {
	err := MapError("op", context.Canceled)
	if linking.CodeOf(err) != linking.CodeRetryable {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_MessageSniffing(t *testing.T) {
	err := MapError("op", errors.New(`duplicate key value violates unique constraint "idx_canonical_term_lower"`))
	if linking.CodeOf(err) != linking.CodeConflict {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}

func TestMapError_Default(t *testing.T) {
	err := MapError("op", errors.New("something unexpected"))
	if linking.CodeOf(err) != linking.CodeInternal {
		t.Fatalf("code = %s", linking.CodeOf(err))
	}
}
