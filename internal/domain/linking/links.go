package linking

// LinkSource records which layer produced a resolved link.
type LinkSource string

const (
	SourceHeading LinkSource = "heading"
	SourceTerm    LinkSource = "term"
)

// ResolvedLink is one clickable span computed for a single render. Offsets are
// byte positions into the original stored content, half-open [Start, End).
// Never persisted; discarded once the overlay is applied.
type ResolvedLink struct {
	Term            string     `json:"term"`
	StartIndex      int        `json:"start_index"`
	EndIndex        int        `json:"end_index"`
	StandaloneTitle string     `json:"standalone_title"`
	Source          LinkSource `json:"source"`
}

// TermEntry is one alias-resolved dictionary entry inside a snapshot.
type TermEntry struct {
	CanonicalTerm   string `json:"canonical_term"`
	StandaloneTitle string `json:"standalone_title"`
}

// SnapshotView is the denormalized, versioned dictionary view handed to the
// matcher and resolver as a value. Data is keyed by lowercase term. Treated as
// immutable once constructed; the version number is the sole freshness authority.
type SnapshotView struct {
	Version int64                `json:"version"`
	Data    map[string]TermEntry `json:"data"`
}

// OverrideType selects how a per-explanation override modifies a matched term.
type OverrideType string

const (
	OverrideCustomTitle OverrideType = "custom_title"
	OverrideDisabled    OverrideType = "disabled"
)

// OverrideEntry is the resolver-facing shape of one per-explanation override.
type OverrideEntry struct {
	Term                  string       `json:"term"`
	Type                  OverrideType `json:"override_type"`
	CustomStandaloneTitle string       `json:"custom_standalone_title,omitempty"`
}
