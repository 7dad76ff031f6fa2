package explanations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

func TestExplanationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewExplanationRepo(db, testutil.Logger(t))

	first := &types.Explanation{Title: "Gradient Descent", Content: "## Overview\nbody\n"}
	second := &types.Explanation{Title: "Backpropagation", Content: "plain body"}

	if _, err := repo.Create(dbc, []*types.Explanation{first, second}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == uuid.Nil || first.CreatedAt.IsZero() {
		t.Fatalf("Create did not fill id/timestamps: %+v", first)
	}

	if got, err := repo.GetByID(dbc, first.ID); err != nil || got == nil || got.Title != "Gradient Descent" {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}
	if rows, err := repo.GetByIDs(dbc, []uuid.UUID{first.ID, second.ID}); err != nil || len(rows) != 2 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc, 10, 0); err != nil || len(rows) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc, 1, 0); err != nil || len(rows) != 1 {
		t.Fatalf("List(limit): err=%v len=%d", err, len(rows))
	}

	first.Content = "## Overview\nrewritten\n"
	if err := repo.Update(dbc, first); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(dbc, first.ID); got == nil || got.Content != "## Overview\nrewritten\n" {
		t.Fatalf("Update not persisted: %+v", got)
	}

	if err := repo.UpdateFields(dbc, second.ID, map[string]interface{}{"metadata": datatypes.JSON([]byte(`{"model":"test"}`))}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}

	if ids, err := repo.ListIDsNeedingHeadingLinks(dbc, 10); err != nil || len(ids) != 2 {
		t.Fatalf("ListIDsNeedingHeadingLinks: ids=%v err=%v", ids, err)
	}
	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"heading_links_built_at": time.Now().UTC()}); err != nil {
		t.Fatalf("UpdateFields(built_at): %v", err)
	}
	if ids, err := repo.ListIDsNeedingHeadingLinks(dbc, 10); err != nil || len(ids) != 1 || ids[0] != second.ID {
		t.Fatalf("ListIDsNeedingHeadingLinks after stamp: ids=%v err=%v", ids, err)
	}
	if err := repo.UpdateFields(dbc, first.ID, map[string]interface{}{"heading_links_built_at": nil}); err != nil {
		t.Fatalf("UpdateFields(clear): %v", err)
	}
	if ids, err := repo.ListIDsNeedingHeadingLinks(dbc, 10); err != nil || len(ids) != 2 {
		t.Fatalf("ListIDsNeedingHeadingLinks after clear: ids=%v err=%v", ids, err)
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{second.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, _ := repo.GetByID(dbc, second.ID); got != nil {
		t.Fatalf("DeleteByIDs left row: %+v", got)
	}
}
