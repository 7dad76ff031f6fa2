package dictionary

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

// SnapshotRepo manages the single authoritative dictionary snapshot row.
// Every rebuild writes through UpsertData, whose ON CONFLICT arm bumps the
// version in the same statement, so the version is a strictly increasing
// counter no matter how many writers race.
type SnapshotRepo interface {
	Get(dbc dbctx.Context) (*types.TermSnapshot, error)
	GetVersion(dbc dbctx.Context) (int64, error)
	UpsertData(dbc dbctx.Context, data datatypes.JSON) (int64, error)
}

type snapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return &snapshotRepo{db: db, log: baseLog.With("repo", "SnapshotRepo")}
}

func (r *snapshotRepo) Get(dbc dbctx.Context) (*types.TermSnapshot, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var row types.TermSnapshot
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", types.SnapshotRowID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

func (r *snapshotRepo) GetVersion(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	versions := []int64{}
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.TermSnapshot{}).
		Where("id = ?", types.SnapshotRowID).
		Pluck("version", &versions).Error
	if err != nil {
		return 0, err
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

func (r *snapshotRepo) UpsertData(dbc dbctx.Context, data datatypes.JSON) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now().UTC()
	row := &types.TermSnapshot{
		ID:        types.SnapshotRowID,
		Version:   1,
		Data:      data,
		UpdatedAt: now,
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"version":    gorm.Expr("term_snapshot.version + 1"),
					"data":       data,
					"updated_at": now,
				}),
			},
			clause.Returning{Columns: []clause.Column{{Name: "version"}}},
		).
		Create(row).Error
	if err != nil {
		return 0, err
	}
	return row.Version, nil
}
