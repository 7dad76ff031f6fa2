package explanations

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Explanation is one generated long-form article. Content is plain markdown and
// never carries link markup; links are overlaid at render time.
//
// HeadingLinksBuiltAt is NULL while the article's heading title set is
// pending (never built, or invalidated by an edit that changed the heading
// structure). The repair worker keys off it; a zero-heading article still
// gets stamped so it is not swept again.
type Explanation struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title               string         `gorm:"column:title;not null" json:"title"`
	Content             string         `gorm:"column:content;type:text" json:"content"`
	Metadata            datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	HeadingLinksBuiltAt *time.Time     `gorm:"column:heading_links_built_at;index" json:"heading_links_built_at,omitempty"`
	CreatedAt           time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time      `gorm:"not null" json:"updated_at"`
}

func (Explanation) TableName() string { return "explanation" }

// HeadingLink stores the pre-computed standalone title for one H2/H3 heading of
// one explanation. Rows are written once at creation time and deleted wholesale
// when the explanation's heading set changes; they are never recomputed on the
// render path.
type HeadingLink struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExplanationID    uuid.UUID `gorm:"type:uuid;column:explanation_id;not null;index;uniqueIndex:idx_heading_link_expl_text,priority:1" json:"explanation_id"`
	HeadingText      string    `gorm:"column:heading_text;not null" json:"heading_text"`
	HeadingTextLower string    `gorm:"column:heading_text_lower;not null;uniqueIndex:idx_heading_link_expl_text,priority:2" json:"heading_text_lower"`
	StandaloneTitle  string    `gorm:"column:standalone_title;not null" json:"standalone_title"`
	Position         int       `gorm:"column:position;not null" json:"position"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (HeadingLink) TableName() string { return "heading_link" }

// TermOverride is a per-explanation exception layered over the global
// dictionary: either disable a term for this explanation or substitute a custom
// standalone title. Unique per (explanation, lowercase term).
type TermOverride struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExplanationID         uuid.UUID `gorm:"type:uuid;column:explanation_id;not null;index;uniqueIndex:idx_term_override_expl_term,priority:1" json:"explanation_id"`
	Term                  string    `gorm:"column:term;not null" json:"term"`
	TermLower             string    `gorm:"column:term_lower;not null;uniqueIndex:idx_term_override_expl_term,priority:2" json:"term_lower"`
	OverrideType          string    `gorm:"column:override_type;not null" json:"override_type"`
	CustomStandaloneTitle string    `gorm:"column:custom_standalone_title" json:"custom_standalone_title,omitempty"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}

func (TermOverride) TableName() string { return "term_override" }
