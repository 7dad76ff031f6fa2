package app

import (
	"gorm.io/gorm"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/logger"
)

type Repos struct {
	Term        repos.TermRepo
	Alias       repos.AliasRepo
	Snapshot    repos.SnapshotRepo
	Explanation repos.ExplanationRepo
	HeadingLink repos.HeadingLinkRepo
	Override    repos.OverrideRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Term:        repos.NewTermRepo(db, log),
		Alias:       repos.NewAliasRepo(db, log),
		Snapshot:    repos.NewSnapshotRepo(db, log),
		Explanation: repos.NewExplanationRepo(db, log),
		HeadingLink: repos.NewHeadingLinkRepo(db, log),
		Override:    repos.NewOverrideRepo(db, log),
	}
}
