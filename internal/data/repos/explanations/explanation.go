package explanations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type ExplanationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Explanation) ([]*types.Explanation, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Explanation, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Explanation, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Explanation, error)
	ListIDsNeedingHeadingLinks(dbc dbctx.Context, limit int) ([]uuid.UUID, error)

	Update(dbc dbctx.Context, row *types.Explanation) error
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error

	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type explanationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExplanationRepo(db *gorm.DB, baseLog *logger.Logger) ExplanationRepo {
	return &explanationRepo{db: db, log: baseLog.With("repo", "ExplanationRepo")}
}

func (r *explanationRepo) Create(dbc dbctx.Context, rows []*types.Explanation) ([]*types.Explanation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.Explanation{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
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

func (r *explanationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Explanation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Explanation
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

func (r *explanationRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Explanation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Explanation{}
	if len(ids) == 0 {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *explanationRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Explanation, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Explanation{}
	q := transaction.WithContext(dbc.Ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListIDsNeedingHeadingLinks returns articles whose heading title set is
// pending, oldest edits first.
func (r *explanationRepo) ListIDsNeedingHeadingLinks(dbc dbctx.Context, limit int) ([]uuid.UUID, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []uuid.UUID{}
	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Explanation{}).
		Where("heading_links_built_at IS NULL").
		Order("updated_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *explanationRepo) Update(dbc dbctx.Context, row *types.Explanation) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	row.UpdatedAt = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Explanation{}).
		Where("id = ?", row.ID).
		Updates(map[string]interface{}{
			"title":      row.Title,
			"content":    row.Content,
			"metadata":   row.Metadata,
			"updated_at": row.UpdatedAt,
		}).Error
}

func (r *explanationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Explanation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *explanationRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Delete(&types.Explanation{}).Error
}
