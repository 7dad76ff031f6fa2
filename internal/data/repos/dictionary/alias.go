package dictionary

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type AliasRepo interface {
	Create(dbc dbctx.Context, rows []*types.TermAlias) ([]*types.TermAlias, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TermAlias, error)
	GetByAliasLower(dbc dbctx.Context, aliasLower string) (*types.TermAlias, error)
	ListByTermIDs(dbc dbctx.Context, termIDs []uuid.UUID) ([]*types.TermAlias, error)

	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	DeleteByTermIDs(dbc dbctx.Context, termIDs []uuid.UUID) error
}

type aliasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return &aliasRepo{db: db, log: baseLog.With("repo", "AliasRepo")}
}

func (r *aliasRepo) Create(dbc dbctx.Context, rows []*types.TermAlias) ([]*types.TermAlias, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.TermAlias{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.AliasTermLower = strings.ToLower(row.AliasTerm)
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *aliasRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.TermAlias, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.TermAlias
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
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

func (r *aliasRepo) GetByAliasLower(dbc dbctx.Context, aliasLower string) (*types.TermAlias, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	aliasLower = strings.ToLower(strings.TrimSpace(aliasLower))
	if aliasLower == "" {
		return nil, nil
	}
	var row types.TermAlias
	err := transaction.WithContext(dbc.Ctx).
		Where("alias_term_lower = ?", aliasLower).
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

func (r *aliasRepo) ListByTermIDs(dbc dbctx.Context, termIDs []uuid.UUID) ([]*types.TermAlias, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.TermAlias{}
	if len(termIDs) == 0 {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("term_id IN ?", termIDs).
		Order("alias_term_lower ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aliasRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.TermAlias{}).Error
}

func (r *aliasRepo) DeleteByTermIDs(dbc dbctx.Context, termIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(termIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("term_id IN ?", termIDs).
		Delete(&types.TermAlias{}).Error
}
