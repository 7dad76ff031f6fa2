package linker

import "strings"

// Heading is one section heading found in markdown content. Start and End are
// byte offsets of the heading text itself (marker and surrounding whitespace
// excluded), half-open.
type Heading struct {
	Level int
	Text  string
	Start int
	End   int
}

// ExtractHeadings scans markdown content for level-2 and level-3 ATX headings
// and returns them in document order. Lines inside fenced code blocks are
// ignored. Top-level titles (H1) and deeper levels are not link targets and
// are skipped.
func ExtractHeadings(content string) []Heading {
	var headings []Heading
	inFence := false
	offset := 0
	for offset < len(content) {
		next := len(content)
		line := content[offset:]
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
			next = offset + i + 1
		}

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		} else if !inFence {
			if h, ok := parseHeadingLine(offset, line); ok {
				headings = append(headings, h)
			}
		}
		offset = next
	}
	return headings
}

func parseHeadingLine(lineStart int, line string) (Heading, bool) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level < 2 || level > 3 {
		return Heading{}, false
	}
	rest := line[level:]
	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return Heading{}, false
	}

	// Trim leading whitespace, then optional closing hashes and trailing
	// whitespace, keeping track of byte positions inside the line.
	textStart := level
	for textStart < len(line) && (line[textStart] == ' ' || line[textStart] == '\t') {
		textStart++
	}
	textEnd := len(line)
	for textEnd > textStart && (line[textEnd-1] == ' ' || line[textEnd-1] == '\t' || line[textEnd-1] == '\r') {
		textEnd--
	}
	for textEnd > textStart && line[textEnd-1] == '#' {
		textEnd--
	}
	for textEnd > textStart && (line[textEnd-1] == ' ' || line[textEnd-1] == '\t') {
		textEnd--
	}
	if textEnd <= textStart {
		return Heading{}, false
	}
	return Heading{
		Level: level,
		Text:  line[textStart:textEnd],
		Start: lineStart + textStart,
		End:   lineStart + textEnd,
	}, true
}

// HeadingTexts returns the heading texts of content in document order.
func HeadingTexts(content string) []string {
	hs := ExtractHeadings(content)
	texts := make([]string, len(hs))
	for i, h := range hs {
		texts[i] = h.Text
	}
	return texts
}

// HeadingsChanged reports whether the heading structure of two content
// versions differs. The comparison is ordered and case-insensitive: a
// reordering, addition, removal, or rename all count as a change, while pure
// body edits and heading case changes do not.
func HeadingsChanged(oldContent, newContent string) bool {
	oldTexts := HeadingTexts(oldContent)
	newTexts := HeadingTexts(newContent)
	if len(oldTexts) != len(newTexts) {
		return true
	}
	for i := range oldTexts {
		if !strings.EqualFold(oldTexts[i], newTexts[i]) {
			return true
		}
	}
	return false
}
