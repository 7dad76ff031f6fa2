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

type TermRepo interface {
	Create(dbc dbctx.Context, rows []*types.CanonicalTerm) ([]*types.CanonicalTerm, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalTerm, error)
	GetByIDWithAliases(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalTerm, error)
	GetByTermLower(dbc dbctx.Context, termLower string) (*types.CanonicalTerm, error)
	List(dbc dbctx.Context, includeInactive bool) ([]*types.CanonicalTerm, error)
	ListActiveWithAliases(dbc dbctx.Context) ([]*types.CanonicalTerm, error)

	Update(dbc dbctx.Context, row *types.CanonicalTerm) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type termRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return &termRepo{db: db, log: baseLog.With("repo", "TermRepo")}
}

func (r *termRepo) Create(dbc dbctx.Context, rows []*types.CanonicalTerm) ([]*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.CanonicalTerm{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CanonicalTermLower = strings.ToLower(row.CanonicalTerm)
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
		row.UpdatedAt = now
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *termRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.CanonicalTerm
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

func (r *termRepo) GetByIDWithAliases(dbc dbctx.Context, id uuid.UUID) (*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.CanonicalTerm
	err := transaction.WithContext(dbc.Ctx).
		Preload("Aliases").
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

func (r *termRepo) GetByTermLower(dbc dbctx.Context, termLower string) (*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	termLower = strings.ToLower(strings.TrimSpace(termLower))
	if termLower == "" {
		return nil, nil
	}
	var row types.CanonicalTerm
	err := transaction.WithContext(dbc.Ctx).
		Where("canonical_term_lower = ?", termLower).
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

func (r *termRepo) List(dbc dbctx.Context, includeInactive bool) ([]*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.CanonicalTerm{}
	q := transaction.WithContext(dbc.Ctx).Order("canonical_term_lower ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) ListActiveWithAliases(dbc dbctx.Context) ([]*types.CanonicalTerm, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.CanonicalTerm{}
	err := transaction.WithContext(dbc.Ctx).
		Preload("Aliases").
		Where("is_active = ?", true).
		Order("canonical_term_lower ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *termRepo) Update(dbc dbctx.Context, row *types.CanonicalTerm) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	row.CanonicalTermLower = strings.ToLower(row.CanonicalTerm)
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.CanonicalTerm{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"canonical_term":       row.CanonicalTerm,
			"canonical_term_lower": row.CanonicalTermLower,
			"standalone_title":     row.StandaloneTitle,
			"description":          row.Description,
			"is_active":            row.IsActive,
			"updated_at":           row.UpdatedAt,
		}).Error
}

func (r *termRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.CanonicalTerm{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *termRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.CanonicalTerm{}).Error
}
