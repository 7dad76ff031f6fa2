package domain

import (
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/dictionary"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/explanations"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

type CanonicalTerm = dictionary.CanonicalTerm
type TermAlias = dictionary.TermAlias
type TermSnapshot = dictionary.TermSnapshot

type Explanation = explanations.Explanation
type HeadingLink = explanations.HeadingLink
type TermOverride = explanations.TermOverride

type ResolvedLink = linking.ResolvedLink
type TermEntry = linking.TermEntry
type SnapshotView = linking.SnapshotView
type OverrideEntry = linking.OverrideEntry

const (
	OverrideCustomTitle = linking.OverrideCustomTitle
	OverrideDisabled    = linking.OverrideDisabled

	SnapshotRowID = dictionary.SnapshotRowID
)
