package linker

import (
	"sort"
	"strings"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

// HeadingTitle is a persisted heading-to-title assignment for one article,
// in document order.
type HeadingTitle struct {
	Text            string
	StandaloneTitle string
}

// ResolveInput carries everything link resolution needs. Matcher may be nil
// when no dictionary snapshot is available, in which case only heading links
// are resolved.
type ResolveInput struct {
	Content      string
	Snapshot     linking.SnapshotView
	Matcher      *Matcher
	HeadingLinks []HeadingTitle
	Overrides    map[string]linking.OverrideEntry
}

type candidate struct {
	start     int
	end       int
	term      string
	canonical string
	entry     linking.TermEntry
}

type span struct {
	start int
	end   int
}

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// ResolveLinks computes the full set of links for one article's content. It
// is a pure function of its input: stored content is never modified, and the
// same input always yields the same links, ordered by start offset, with
// pairwise disjoint spans.
//
// Heading links take priority: their spans become exclusion zones that term
// matches cannot enter. Term candidates are then reduced to the first
// occurrence of each canonical term, taken longest-first so a longer term
// claims its span before any shorter term contained in it. A disabled
// override removes its link from the output but still consumes the term's
// occurrence and span.
func ResolveLinks(in ResolveInput) []linking.ResolvedLink {
	var links []linking.ResolvedLink
	var taken []span

	// Heading links first. Stored rows pair with extracted headings by
	// case-insensitive text in document order; rows whose heading no longer
	// exists are dropped, headings without a stored row get no link.
	rowsByText := map[string][]HeadingTitle{}
	for _, row := range in.HeadingLinks {
		key := strings.ToLower(row.Text)
		rowsByText[key] = append(rowsByText[key], row)
	}
	for _, h := range ExtractHeadings(in.Content) {
		key := strings.ToLower(h.Text)
		rows := rowsByText[key]
		if len(rows) == 0 {
			continue
		}
		rowsByText[key] = rows[1:]
		links = append(links, linking.ResolvedLink{
			Term:            h.Text,
			StartIndex:      h.Start,
			EndIndex:        h.End,
			StandaloneTitle: rows[0].StandaloneTitle,
			Source:          linking.SourceHeading,
		})
		taken = append(taken, span{start: h.Start, end: h.End})
	}

	if in.Matcher != nil {
		for _, c := range selectCandidates(in, taken) {
			if !c.accepted {
				continue
			}
			links = append(links, linking.ResolvedLink{
				Term:            in.Content[c.start:c.end],
				StartIndex:      c.start,
				EndIndex:        c.end,
				StandaloneTitle: c.title,
				Source:          linking.SourceTerm,
			})
		}
	}

	sort.Slice(links, func(i, j int) bool { return links[i].StartIndex < links[j].StartIndex })
	return links
}

type resolved struct {
	candidate
	accepted bool
	title    string
}

// selectCandidates runs the term side of resolution: exclusion-zone
// filtering, first-occurrence reduction, longest-first overlap walk and
// override application.
func selectCandidates(in ResolveInput, taken []span) []resolved {
	var candidates []candidate
	for _, m := range in.Matcher.Find(in.Content) {
		ms := span{start: m.Start, end: m.End}
		excluded := false
		for _, z := range taken {
			if ms.overlaps(z) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}
		entry, ok := in.Snapshot.Data[m.Term]
		if !ok {
			continue
		}
		canonical := strings.ToLower(entry.CanonicalTerm)
		if canonical == "" {
			canonical = m.Term
		}
		candidates = append(candidates, candidate{
			start:     m.Start,
			end:       m.End,
			term:      m.Term,
			canonical: canonical,
			entry:     entry,
		})
	}

	// Each canonical term links at most once, at its earliest occurrence.
	// At equal start offsets the longer surface form wins, so an alias never
	// shadows the full term it sits inside.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end-a.start > b.end-b.start
	})
	firstSeen := map[string]bool{}
	first := candidates[:0]
	for _, c := range candidates {
		if firstSeen[c.canonical] {
			continue
		}
		firstSeen[c.canonical] = true
		first = append(first, c)
	}

	// Longer terms claim their spans before shorter ones; a candidate that
	// overlaps an already-claimed span is discarded, not retried elsewhere.
	sort.Slice(first, func(i, j int) bool {
		a, b := first[i], first[j]
		if a.end-a.start != b.end-b.start {
			return a.end-a.start > b.end-b.start
		}
		return a.start < b.start
	})

	out := make([]resolved, 0, len(first))
	accepted := append([]span(nil), taken...)
	for _, c := range first {
		cs := span{start: c.start, end: c.end}
		blocked := false
		for _, a := range accepted {
			if cs.overlaps(a) {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		accepted = append(accepted, cs)

		r := resolved{candidate: c, accepted: true}
		r.title = c.entry.StandaloneTitle
		if r.title == "" {
			r.title = c.entry.CanonicalTerm
		}
		if ov, ok := in.Overrides[c.term]; ok {
			switch ov.Type {
			case linking.OverrideDisabled:
				r.accepted = false
			case linking.OverrideCustomTitle:
				if ov.CustomStandaloneTitle != "" {
					r.title = ov.CustomStandaloneTitle
				}
			}
		}
		out = append(out, r)
	}
	return out
}
