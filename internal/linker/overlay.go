package linker

import (
	"net/url"
	"sort"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

// DefaultLinkRoute is the reader-facing route that renders a standalone
// explanation for a linked title.
const DefaultLinkRoute = "/standalone-title"

// LinkTarget builds the href for a resolved link. The title travels as a
// query parameter so titles with slashes or markdown-significant characters
// survive the round trip.
func LinkTarget(route, standaloneTitle string) string {
	if route == "" {
		route = DefaultLinkRoute
	}
	return route + "?t=" + url.QueryEscape(standaloneTitle)
}

// ApplyLinks returns content with markdown link markup inserted for every
// resolved link. The input content is never mutated and stored content is
// never rewritten; the overlay exists only in the returned copy.
//
// Links are inserted in descending start order, so earlier offsets stay
// valid while later ones are rewritten. The overlay is all-or-nothing: if
// any link is out of bounds, inverted, or overlaps a neighbor, the original
// content is returned unchanged rather than a partially linked rendering.
func ApplyLinks(content string, links []linking.ResolvedLink, route string) string {
	if len(links) == 0 {
		return content
	}

	ordered := append([]linking.ResolvedLink(nil), links...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].StartIndex > ordered[j].StartIndex })

	for i, l := range ordered {
		if l.StartIndex < 0 || l.EndIndex > len(content) || l.StartIndex >= l.EndIndex {
			return content
		}
		if i > 0 && l.EndIndex > ordered[i-1].StartIndex {
			return content
		}
	}

	out := content
	for _, l := range ordered {
		text := out[l.StartIndex:l.EndIndex]
		out = out[:l.StartIndex] + "[" + text + "](" + LinkTarget(route, l.StandaloneTitle) + ")" + out[l.EndIndex:]
	}
	return out
}
