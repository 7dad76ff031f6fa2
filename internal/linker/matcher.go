// Package linker computes display-time cross-reference links for explanation
// content. Stored content stays plain; everything here operates on values and
// returns new values.
package linker

import (
	"sort"
	"unicode"
	"unicode/utf8"
)

// Match is one occurrence of a dictionary term in content. Offsets are byte
// positions into the original content, half-open [Start, End). Term is the
// matched pattern in lowercase form.
type Match struct {
	Start int
	End   int
	Term  string
}

// Matcher finds every occurrence of every term in a single pass over the
// content (Aho–Corasick). Construction cost is proportional to the total
// length of all terms; a search costs one scan of the content plus the number
// of matches, independent of dictionary size. A Matcher is immutable after
// construction and safe for concurrent use; one is built per snapshot version.
type Matcher struct {
	nodes []acNode
	terms []string
}

type acNode struct {
	next map[byte]int32
	fail int32
	out  []int32
}

// NewMatcher builds a matcher from the given term set. Terms are matched
// case-insensitively (ASCII folding) and deduplicated; empty terms are
// ignored.
func NewMatcher(terms []string) *Matcher {
	folded := make([]string, 0, len(terms))
	seen := make(map[string]bool, len(terms))
	for _, t := range terms {
		f := foldASCII(t)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		folded = append(folded, f)
	}
	sort.Strings(folded)

	m := &Matcher{
		nodes: []acNode{{next: map[byte]int32{}}},
		terms: folded,
	}
	for i, term := range folded {
		m.insert(term, int32(i))
	}
	m.buildFailureLinks()
	return m
}

// Size reports how many distinct terms the matcher was built from.
func (m *Matcher) Size() int { return len(m.terms) }

func (m *Matcher) insert(term string, idx int32) {
	cur := int32(0)
	for i := 0; i < len(term); i++ {
		b := term[i]
		nxt, ok := m.nodes[cur].next[b]
		if !ok {
			m.nodes = append(m.nodes, acNode{next: map[byte]int32{}})
			nxt = int32(len(m.nodes) - 1)
			m.nodes[cur].next[b] = nxt
		}
		cur = nxt
	}
	m.nodes[cur].out = append(m.nodes[cur].out, idx)
}

func (m *Matcher) buildFailureLinks() {
	queue := make([]int32, 0, len(m.nodes))
	for _, child := range m.nodes[0].next {
		m.nodes[child].fail = 0
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for b, v := range m.nodes[u].next {
			f := m.nodes[u].fail
			for f != 0 {
				if _, ok := m.nodes[f].next[b]; ok {
					break
				}
				f = m.nodes[f].fail
			}
			if nxt, ok := m.nodes[f].next[b]; ok && nxt != v {
				m.nodes[v].fail = nxt
			} else {
				m.nodes[v].fail = 0
			}
			m.nodes[v].out = append(m.nodes[v].out, m.nodes[m.nodes[v].fail].out...)
			queue = append(queue, v)
		}
	}
}

// Find returns every word-boundary-valid occurrence of any term in content,
// ordered by end position. A match is valid only when the characters adjacent
// to its span are neither alphanumeric nor a hyphen joining it into a larger
// hyphenated word; a hyphen inside the matched term itself is part of the
// pattern and does not break the match.
func (m *Matcher) Find(content string) []Match {
	if len(m.terms) == 0 || content == "" {
		return nil
	}
	folded := foldASCIIBytes(content)
	var matches []Match
	state := int32(0)
	for i := 0; i < len(folded); i++ {
		b := folded[i]
		for state != 0 {
			if _, ok := m.nodes[state].next[b]; ok {
				break
			}
			state = m.nodes[state].fail
		}
		if nxt, ok := m.nodes[state].next[b]; ok {
			state = nxt
		}
		for _, idx := range m.nodes[state].out {
			term := m.terms[idx]
			start := i + 1 - len(term)
			end := i + 1
			if boundaryOK(content, start, end) {
				matches = append(matches, Match{Start: start, End: end, Term: term})
			}
		}
	}
	return matches
}

// boundaryOK applies the word-boundary rule to a candidate span.
func boundaryOK(content string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(content[:start])
		if isWordRune(r) || r == '-' {
			return false
		}
	}
	if end < len(content) {
		r, _ := utf8.DecodeRuneInString(content[end:])
		if isWordRune(r) || r == '-' {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func foldASCII(s string) string {
	return string(foldASCIIBytes(s))
}

func foldASCIIBytes(s string) []byte {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return b
}
