package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
)

func SeedTerm(tb testing.TB, ctx context.Context, tx *gorm.DB, term, title string) *types.CanonicalTerm {
	tb.Helper()
	row := &types.CanonicalTerm{
		ID:                 uuid.New(),
		CanonicalTerm:      term,
		CanonicalTermLower: strings.ToLower(term),
		StandaloneTitle:    title,
		IsActive:           true,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed term: %v", err)
	}
	return row
}

func SeedAlias(tb testing.TB, ctx context.Context, tx *gorm.DB, termID uuid.UUID, alias string) *types.TermAlias {
	tb.Helper()
	row := &types.TermAlias{
		ID:             uuid.New(),
		TermID:         termID,
		AliasTerm:      alias,
		AliasTermLower: strings.ToLower(alias),
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed alias: %v", err)
	}
	return row
}

func SeedExplanation(tb testing.TB, ctx context.Context, tx *gorm.DB, title, content string) *types.Explanation {
	tb.Helper()
	row := &types.Explanation{
		ID:      uuid.New(),
		Title:   title,
		Content: content,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed explanation: %v", err)
	}
	return row
}

func SeedHeadingLink(tb testing.TB, ctx context.Context, tx *gorm.DB, explanationID uuid.UUID, text, title string, position int) *types.HeadingLink {
	tb.Helper()
	row := &types.HeadingLink{
		ID:               uuid.New(),
		ExplanationID:    explanationID,
		HeadingText:      text,
		HeadingTextLower: strings.ToLower(text),
		StandaloneTitle:  title,
		Position:         position,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed heading link: %v", err)
	}
	return row
}

func SeedOverride(tb testing.TB, ctx context.Context, tx *gorm.DB, explanationID uuid.UUID, term, overrideType, customTitle string) *types.TermOverride {
	tb.Helper()
	row := &types.TermOverride{
		ID:                    uuid.New(),
		ExplanationID:         explanationID,
		Term:                  term,
		TermLower:             strings.ToLower(term),
		OverrideType:          overrideType,
		CustomStandaloneTitle: customTitle,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed override: %v", err)
	}
	return row
}
