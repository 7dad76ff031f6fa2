package dictionary

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

func TestSnapshotRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewSnapshotRepo(db, testutil.Logger(t))

	if v, err := repo.GetVersion(dbc); err != nil || v != 0 {
		t.Fatalf("GetVersion(empty): v=%d err=%v", v, err)
	}
	if row, err := repo.Get(dbc); err != nil || row != nil {
		t.Fatalf("Get(empty): row=%v err=%v", row, err)
	}

	v1, err := repo.UpsertData(dbc, datatypes.JSON([]byte(`{"ml":{"canonical_term":"machine learning","standalone_title":"Machine Learning"}}`)))
	if err != nil || v1 != 1 {
		t.Fatalf("UpsertData(first): v=%d err=%v", v1, err)
	}

	v2, err := repo.UpsertData(dbc, datatypes.JSON([]byte(`{}`)))
	if err != nil || v2 != 2 {
		t.Fatalf("UpsertData(second): v=%d err=%v", v2, err)
	}

	if v, err := repo.GetVersion(dbc); err != nil || v != 2 {
		t.Fatalf("GetVersion: v=%d err=%v", v, err)
	}

	row, err := repo.Get(dbc)
	if err != nil || row == nil || row.Version != 2 {
		t.Fatalf("Get: row=%+v err=%v", row, err)
	}
	if string(row.Data) != "{}" {
		t.Fatalf("Get data: %s", row.Data)
	}
}
