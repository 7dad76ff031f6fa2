package services

import (
	"context"
	"strings"
)

// TitleProvider produces the reader-facing standalone title for one heading
// of one article. Titles are computed once, when heading links are written,
// never on the render path.
type TitleProvider interface {
	TitleFor(ctx context.Context, explanationTitle, headingText string) (string, error)
}

// genericHeadings are section names that mean nothing out of context; their
// standalone titles get the article title prepended.
var genericHeadings = map[string]bool{
	"overview":     true,
	"introduction": true,
	"background":   true,
	"summary":      true,
	"conclusion":   true,
	"details":      true,
	"examples":     true,
	"history":      true,
	"references":   true,
	"limitations":  true,
}

type staticTitleProvider struct{}

// NewStaticTitleProvider returns the deterministic default provider. A
// model-backed provider can replace it without touching the write path.
func NewStaticTitleProvider() TitleProvider {
	return staticTitleProvider{}
}

func (staticTitleProvider) TitleFor(_ context.Context, explanationTitle, headingText string) (string, error) {
	heading := strings.TrimSpace(headingText)
	article := strings.TrimSpace(explanationTitle)
	if heading == "" {
		return article, nil
	}
	if article == "" {
		return heading, nil
	}
	lower := strings.ToLower(heading)
	if genericHeadings[lower] || strings.Contains(strings.ToLower(article), lower) {
		return article + ": " + heading, nil
	}
	return heading, nil
}
