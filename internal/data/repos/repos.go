package repos

import (
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/dictionary"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/explanations"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type TermRepo = dictionary.TermRepo
type AliasRepo = dictionary.AliasRepo
type SnapshotRepo = dictionary.SnapshotRepo

type ExplanationRepo = explanations.ExplanationRepo
type HeadingLinkRepo = explanations.HeadingLinkRepo
type OverrideRepo = explanations.OverrideRepo

func NewTermRepo(db *gorm.DB, baseLog *logger.Logger) TermRepo {
	return dictionary.NewTermRepo(db, baseLog)
}

func NewAliasRepo(db *gorm.DB, baseLog *logger.Logger) AliasRepo {
	return dictionary.NewAliasRepo(db, baseLog)
}

func NewSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SnapshotRepo {
	return dictionary.NewSnapshotRepo(db, baseLog)
}

func NewExplanationRepo(db *gorm.DB, baseLog *logger.Logger) ExplanationRepo {
	return explanations.NewExplanationRepo(db, baseLog)
}

func NewHeadingLinkRepo(db *gorm.DB, baseLog *logger.Logger) HeadingLinkRepo {
	return explanations.NewHeadingLinkRepo(db, baseLog)
}

func NewOverrideRepo(db *gorm.DB, baseLog *logger.Logger) OverrideRepo {
	return explanations.NewOverrideRepo(db, baseLog)
}
