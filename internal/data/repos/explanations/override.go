package explanations

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type OverrideRepo interface {
	Upsert(dbc dbctx.Context, row *types.TermOverride) error

	GetByExplanationAndTerm(dbc dbctx.Context, explanationID uuid.UUID, termLower string) (*types.TermOverride, error)
	ListByExplanationID(dbc dbctx.Context, explanationID uuid.UUID) ([]*types.TermOverride, error)

	DeleteByExplanationAndTerm(dbc dbctx.Context, explanationID uuid.UUID, termLower string) error
	DeleteByExplanationIDs(dbc dbctx.Context, explanationIDs []uuid.UUID) error
}

type overrideRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOverrideRepo(db *gorm.DB, baseLog *logger.Logger) OverrideRepo {
	return &overrideRepo{db: db, log: baseLog.With("repo", "OverrideRepo")}
}

func (r *overrideRepo) Upsert(dbc dbctx.Context, row *types.TermOverride) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ExplanationID == uuid.Nil || strings.TrimSpace(row.Term) == "" {
		return nil
	}
	now := time.Now().UTC()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.TermLower = strings.ToLower(strings.TrimSpace(row.Term))
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "explanation_id"}, {Name: "term_lower"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"term",
				"override_type",
				"custom_standalone_title",
				"updated_at",
			}),
		}).
		Create(row).Error
}

func (r *overrideRepo) GetByExplanationAndTerm(dbc dbctx.Context, explanationID uuid.UUID, termLower string) (*types.TermOverride, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	termLower = strings.ToLower(strings.TrimSpace(termLower))
	if explanationID == uuid.Nil || termLower == "" {
		return nil, nil
	}
	var row types.TermOverride
	err := transaction.WithContext(dbc.Ctx).
		Where("explanation_id = ? AND term_lower = ?", explanationID, termLower).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *overrideRepo) ListByExplanationID(dbc dbctx.Context, explanationID uuid.UUID) ([]*types.TermOverride, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.TermOverride{}
	if explanationID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("explanation_id = ?", explanationID).
		Order("term_lower ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *overrideRepo) DeleteByExplanationAndTerm(dbc dbctx.Context, explanationID uuid.UUID, termLower string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	termLower = strings.ToLower(strings.TrimSpace(termLower))
	if explanationID == uuid.Nil || termLower == "" {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("explanation_id = ? AND term_lower = ?", explanationID, termLower).
		Delete(&types.TermOverride{}).Error
}

func (r *overrideRepo) DeleteByExplanationIDs(dbc dbctx.Context, explanationIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(explanationIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("explanation_id IN ?", explanationIDs).
		Delete(&types.TermOverride{}).Error
}
