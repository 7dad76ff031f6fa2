package dictionary

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

func TestTermRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewTermRepo(db, testutil.Logger(t))

	ml := &types.CanonicalTerm{CanonicalTerm: "Machine Learning", StandaloneTitle: "Machine Learning", IsActive: true}
	nn := &types.CanonicalTerm{CanonicalTerm: "Neural Network", StandaloneTitle: "Neural Network", IsActive: true}
	retired := &types.CanonicalTerm{CanonicalTerm: "Retired Term", StandaloneTitle: "Retired", IsActive: false}

	if _, err := repo.Create(dbc, []*types.CanonicalTerm{ml, nn, retired}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ml.ID == uuid.Nil || ml.CanonicalTermLower != "machine learning" {
		t.Fatalf("Create did not fill id/lower: %+v", ml)
	}

	if got, err := repo.GetByID(dbc, ml.ID); err != nil || got == nil || got.ID != ml.ID {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if got, err := repo.GetByID(dbc, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID(missing): got=%v err=%v", got, err)
	}
	if got, err := repo.GetByTermLower(dbc, "MACHINE LEARNING"); err != nil || got == nil || got.ID != ml.ID {
		t.Fatalf("GetByTermLower: got=%v err=%v", got, err)
	}

	if rows, err := repo.List(dbc, false); err != nil || len(rows) != 2 {
		t.Fatalf("List(active): err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.List(dbc, true); err != nil || len(rows) != 3 {
		t.Fatalf("List(all): err=%v len=%d", err, len(rows))
	}

	aliases := NewAliasRepo(db, testutil.Logger(t))
	if _, err := aliases.Create(dbc, []*types.TermAlias{{TermID: ml.ID, AliasTerm: "ML"}}); err != nil {
		t.Fatalf("alias Create: %v", err)
	}
	rows, err := repo.ListActiveWithAliases(dbc)
	if err != nil || len(rows) != 2 {
		t.Fatalf("ListActiveWithAliases: err=%v len=%d", err, len(rows))
	}
	if rows[0].CanonicalTermLower != "machine learning" || len(rows[0].Aliases) != 1 || rows[0].Aliases[0].AliasTermLower != "ml" {
		t.Fatalf("ListActiveWithAliases: rows[0]=%+v", rows[0])
	}
	if got, err := repo.GetByIDWithAliases(dbc, ml.ID); err != nil || got == nil || len(got.Aliases) != 1 {
		t.Fatalf("GetByIDWithAliases: got=%v err=%v", got, err)
	}

	ml.StandaloneTitle = "Intro to Machine Learning"
	if err := repo.Update(dbc, ml); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, _ := repo.GetByID(dbc, ml.ID); got == nil || got.StandaloneTitle != "Intro to Machine Learning" {
		t.Fatalf("Update not persisted: %+v", got)
	}

	if err := repo.UpdateFields(dbc, nn.ID, map[string]interface{}{"is_active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if rows, _ := repo.List(dbc, false); len(rows) != 1 {
		t.Fatalf("List after deactivate: len=%d", len(rows))
	}

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{retired.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if got, _ := repo.GetByID(dbc, retired.ID); got != nil {
		t.Fatalf("DeleteByIDs left row: %+v", got)
	}
}
