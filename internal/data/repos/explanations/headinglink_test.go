package explanations

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

func TestHeadingLinkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewHeadingLinkRepo(db, testutil.Logger(t))

	expl := testutil.SeedExplanation(t, dbc.Ctx, tx, "Gradient Descent", "## Overview\n## Details\n")

	if _, err := repo.Create(dbc, []*types.HeadingLink{
		{ExplanationID: expl.ID, HeadingText: "Overview", StandaloneTitle: "Overview of Gradient Descent", Position: 0},
		{ExplanationID: expl.ID, HeadingText: "Details", StandaloneTitle: "Gradient Descent in Detail", Position: 1},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rows, err := repo.ListByExplanationID(dbc, expl.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListByExplanationID: err=%v len=%d", err, len(rows))
	}
	if rows[0].HeadingTextLower != "overview" || rows[1].HeadingTextLower != "details" {
		t.Fatalf("ListByExplanationID order: %+v", rows)
	}

	if err := repo.ReplaceForExplanation(dbc, expl.ID, []*types.HeadingLink{
		{HeadingText: "Fresh Heading", StandaloneTitle: "Fresh Title"},
	}); err != nil {
		t.Fatalf("ReplaceForExplanation: %v", err)
	}
	rows, err = repo.ListByExplanationID(dbc, expl.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByExplanationID after replace: err=%v len=%d", err, len(rows))
	}
	if rows[0].HeadingText != "Fresh Heading" || rows[0].Position != 0 || rows[0].ExplanationID != expl.ID {
		t.Fatalf("ReplaceForExplanation row: %+v", rows[0])
	}

	if err := repo.ReplaceForExplanation(dbc, expl.ID, nil); err != nil {
		t.Fatalf("ReplaceForExplanation(empty): %v", err)
	}
	if rows, _ := repo.ListByExplanationID(dbc, expl.ID); len(rows) != 0 {
		t.Fatalf("ReplaceForExplanation(empty) left rows: %+v", rows)
	}

	if _, err := repo.Create(dbc, []*types.HeadingLink{
		{ExplanationID: expl.ID, HeadingText: "Overview", StandaloneTitle: "T", Position: 0},
	}); err != nil {
		t.Fatalf("Create(second): %v", err)
	}
	if err := repo.DeleteByExplanationIDs(dbc, []uuid.UUID{expl.ID}); err != nil {
		t.Fatalf("DeleteByExplanationIDs: %v", err)
	}
	if rows, _ := repo.ListByExplanationID(dbc, expl.ID); len(rows) != 0 {
		t.Fatalf("DeleteByExplanationIDs left rows: %+v", rows)
	}
}
