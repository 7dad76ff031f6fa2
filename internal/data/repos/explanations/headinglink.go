package explanations

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type HeadingLinkRepo interface {
	Create(dbc dbctx.Context, rows []*types.HeadingLink) ([]*types.HeadingLink, error)

	ListByExplanationID(dbc dbctx.Context, explanationID uuid.UUID) ([]*types.HeadingLink, error)

	ReplaceForExplanation(dbc dbctx.Context, explanationID uuid.UUID, rows []*types.HeadingLink) error
	DeleteByExplanationIDs(dbc dbctx.Context, explanationIDs []uuid.UUID) error
}

type headingLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHeadingLinkRepo(db *gorm.DB, baseLog *logger.Logger) HeadingLinkRepo {
	return &headingLinkRepo{db: db, log: baseLog.With("repo", "HeadingLinkRepo")}
}

func (r *headingLinkRepo) Create(dbc dbctx.Context, rows []*types.HeadingLink) ([]*types.HeadingLink, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(rows) == 0 {
		return []*types.HeadingLink{}, nil
	}
	now := time.Now().UTC()
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.HeadingTextLower = strings.ToLower(row.HeadingText)
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *headingLinkRepo) ListByExplanationID(dbc dbctx.Context, explanationID uuid.UUID) ([]*types.HeadingLink, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.HeadingLink{}
	if explanationID == uuid.Nil {
		return out, nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("explanation_id = ?", explanationID).
		Order("position ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceForExplanation swaps the full heading link set for one article.
// Callers run it inside a transaction so a render never observes the window
// between delete and insert.
func (r *headingLinkRepo) ReplaceForExplanation(dbc dbctx.Context, explanationID uuid.UUID, rows []*types.HeadingLink) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if explanationID == uuid.Nil {
		return nil
	}
	err := transaction.WithContext(dbc.Ctx).
		Where("explanation_id = ?", explanationID).
		Delete(&types.HeadingLink{}).Error
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.ExplanationID = explanationID
		row.HeadingTextLower = strings.ToLower(row.HeadingText)
		row.Position = i
		if row.CreatedAt.IsZero() {
			row.CreatedAt = now
		}
	}
	return transaction.WithContext(dbc.Ctx).Create(&rows).Error
}

func (r *headingLinkRepo) DeleteByExplanationIDs(dbc dbctx.Context, explanationIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(explanationIDs) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Where("explanation_id IN ?", explanationIDs).
		Delete(&types.HeadingLink{}).Error
}
