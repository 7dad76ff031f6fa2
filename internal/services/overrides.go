package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/dberr"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type OverrideInput struct {
	Term                  string `json:"term"`
	OverrideType          string `json:"override_type"`
	CustomStandaloneTitle string `json:"custom_standalone_title"`
}

// OverrideService manages per-article linking overrides. Overrides are
// validated at write time so the render path can apply them without
// re-checking shape.
type OverrideService interface {
	Put(ctx context.Context, explanationID uuid.UUID, in OverrideInput) (*types.TermOverride, error)
	List(ctx context.Context, explanationID uuid.UUID) ([]*types.TermOverride, error)
	Delete(ctx context.Context, explanationID uuid.UUID, term string) error

	// OverrideMap is the render-path form, keyed by lowercased term.
	OverrideMap(dbc dbctx.Context, explanationID uuid.UUID) (map[string]linking.OverrideEntry, error)
}

type overrideService struct {
	db        *gorm.DB
	log       *logger.Logger
	overrides repos.OverrideRepo
	expls     repos.ExplanationRepo
}

func NewOverrideService(
	db *gorm.DB,
	baseLog *logger.Logger,
	overrides repos.OverrideRepo,
	expls repos.ExplanationRepo,
) OverrideService {
	return &overrideService{
		db:        db,
		log:       baseLog.With("service", "OverrideService"),
		overrides: overrides,
		expls:     expls,
	}
}

func (s *overrideService) Put(ctx context.Context, explanationID uuid.UUID, in OverrideInput) (*types.TermOverride, error) {
	const op = "overrides.put"

	term := strings.TrimSpace(in.Term)
	title := strings.TrimSpace(in.CustomStandaloneTitle)
	overrideType := linking.OverrideType(strings.TrimSpace(in.OverrideType))

	if term == "" {
		return nil, linking.NewError(linking.CodeInvalidOverride, op, "term is required", nil)
	}
	switch overrideType {
	case linking.OverrideDisabled:
		if title != "" {
			return nil, linking.NewError(linking.CodeInvalidOverride, op, "disabled override cannot carry a custom title", nil)
		}
	case linking.OverrideCustomTitle:
		if title == "" {
			return nil, linking.NewError(linking.CodeInvalidOverride, op, "custom_title override requires custom_standalone_title", nil)
		}
	default:
		return nil, linking.NewError(linking.CodeInvalidOverride, op,
			fmt.Sprintf("unknown override_type %q", in.OverrideType), nil)
	}

	row := &types.TermOverride{
		ExplanationID:         explanationID,
		Term:                  term,
		OverrideType:          string(overrideType),
		CustomStandaloneTitle: title,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		expl, err := s.expls.GetByID(dbc, explanationID)
		if err != nil {
			return err
		}
		if expl == nil {
			return linking.NewError(linking.CodeNotFound, op, "explanation not found", nil)
		}
		return s.overrides.Upsert(dbc, row)
	})
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return row, nil
}

func (s *overrideService) List(ctx context.Context, explanationID uuid.UUID) ([]*types.TermOverride, error) {
	const op = "overrides.list"
	rows, err := s.overrides.ListByExplanationID(dbctx.Context{Ctx: ctx}, explanationID)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	return rows, nil
}

func (s *overrideService) Delete(ctx context.Context, explanationID uuid.UUID, term string) error {
	const op = "overrides.delete"

	termLower := strings.ToLower(strings.TrimSpace(term))
	if termLower == "" {
		return linking.NewError(linking.CodeValidation, op, "term is required", nil)
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.overrides.GetByExplanationAndTerm(dbc, explanationID, termLower)
		if err != nil {
			return err
		}
		if row == nil {
			return linking.NewError(linking.CodeNotFound, op, "override not found", nil)
		}
		return s.overrides.DeleteByExplanationAndTerm(dbc, explanationID, termLower)
	})
	if err != nil {
		return dberr.MapError(op, err)
	}
	return nil
}

func (s *overrideService) OverrideMap(dbc dbctx.Context, explanationID uuid.UUID) (map[string]linking.OverrideEntry, error) {
	const op = "overrides.map"

	rows, err := s.overrides.ListByExplanationID(dbc, explanationID)
	if err != nil {
		return nil, dberr.MapError(op, err)
	}
	out := make(map[string]linking.OverrideEntry, len(rows))
	for _, row := range rows {
		out[row.TermLower] = linking.OverrideEntry{
			Term:                  row.TermLower,
			Type:                  linking.OverrideType(row.OverrideType),
			CustomStandaloneTitle: row.CustomStandaloneTitle,
		}
	}
	return out, nil
}
