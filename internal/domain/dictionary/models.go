package dictionary

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CanonicalTerm is one curated dictionary entry. Terms are soft-disabled via
// IsActive rather than deleted so alias and override rows keep their referent.
type CanonicalTerm struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CanonicalTerm      string    `gorm:"column:canonical_term;not null" json:"canonical_term"`
	CanonicalTermLower string    `gorm:"column:canonical_term_lower;not null;uniqueIndex:idx_canonical_term_lower" json:"canonical_term_lower"`
	StandaloneTitle    string    `gorm:"column:standalone_title;not null" json:"standalone_title"`
	Description        string    `gorm:"column:description;type:text" json:"description,omitempty"`
	IsActive           bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time `gorm:"not null" json:"updated_at"`

	Aliases []TermAlias `gorm:"foreignKey:TermID;references:ID" json:"aliases,omitempty"`
}

func (CanonicalTerm) TableName() string { return "canonical_term" }

// TermAlias maps an alternate surface form to one canonical term. The lowercase
// form is globally unique so no two canonical terms can claim the same alias.
type TermAlias struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TermID         uuid.UUID `gorm:"type:uuid;column:term_id;not null;index" json:"term_id"`
	AliasTerm      string    `gorm:"column:alias_term;not null" json:"alias_term"`
	AliasTermLower string    `gorm:"column:alias_term_lower;not null;uniqueIndex:idx_alias_term_lower" json:"alias_term_lower"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
}

func (TermAlias) TableName() string { return "term_alias" }

// TermSnapshot is the single versioned, alias-resolved dictionary view. There is
// exactly one logical row (ID 1); Data maps term_lower to its canonical term and
// standalone title. Version moves by exactly one per successful rebuild and is
// only ever bumped through an atomic read-modify-write in the store.
type TermSnapshot struct {
	ID        int            `gorm:"primaryKey" json:"id"`
	Version   int64          `gorm:"column:version;not null" json:"version"`
	Data      datatypes.JSON `gorm:"column:data" json:"data"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (TermSnapshot) TableName() string { return "term_snapshot" }

// SnapshotRowID is the fixed primary key of the single snapshot row.
const SnapshotRowID = 1
