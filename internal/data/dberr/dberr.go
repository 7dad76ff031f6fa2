// Package dberr maps storage-layer failures onto linking error codes.
package dberr

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

// MapError translates gorm/driver failures into the canonical linking codes so
// callers never branch on driver-specific errors.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*linking.Error); ok {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return linking.Wrap(linking.CodeNotFound, op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return linking.Wrap(linking.CodeConflict, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return linking.Wrap(linking.CodeRetryable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return linking.Wrap(linking.CodeConflict, op, err) // unique_violation
		case "23503":
			return linking.Wrap(linking.CodeValidation, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return linking.Wrap(linking.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "already exists"):
		return linking.Wrap(linking.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return linking.Wrap(linking.CodeRetryable, op, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "unexpected eof"):
		return linking.Wrap(linking.CodeRetryable, op, err)
	default:
		return linking.Wrap(linking.CodeInternal, op, err)
	}
}
