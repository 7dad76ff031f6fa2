package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/platform/dbctx"
)

func newOverrideService(t *testing.T) OverrideService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewOverrideService(db, log, repos.NewOverrideRepo(db, log), repos.NewExplanationRepo(db, log))
}

func TestOverrideServiceRejectsMalformedOverrides(t *testing.T) {
	svc := newOverrideService(t)
	ctx := context.Background()
	explID := uuid.New()

	cases := []struct {
		name string
		in   OverrideInput
	}{
		{"empty term", OverrideInput{Term: "  ", OverrideType: "disabled"}},
		{"unknown type", OverrideInput{Term: "cnn", OverrideType: "mute"}},
		{"disabled with title", OverrideInput{Term: "cnn", OverrideType: "disabled", CustomStandaloneTitle: "CNN"}},
		{"custom_title without title", OverrideInput{Term: "cnn", OverrideType: "custom_title"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Put(ctx, explID, tc.in)
			if linking.CodeOf(err) != linking.CodeInvalidOverride {
				t.Fatalf("Put: want=%s got=%v", linking.CodeInvalidOverride, err)
			}
		})
	}
}

func TestOverrideServicePutListDelete(t *testing.T) {
	svc := newOverrideService(t)
	db := testutil.DB(t)
	ctx := context.Background()

	if _, err := svc.Put(ctx, uuid.New(), OverrideInput{Term: "rnn", OverrideType: "disabled"}); linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("Put on missing explanation: want=%s got=%v", linking.CodeNotFound, err)
	}

	expl := testutil.SeedExplanation(t, ctx, db, "Recurrent Networks", "RNN bodies remember.")

	if _, err := svc.Put(ctx, expl.ID, OverrideInput{Term: "RNN", OverrideType: "disabled"}); err != nil {
		t.Fatalf("Put(disabled): %v", err)
	}
	if _, err := svc.Put(ctx, expl.ID, OverrideInput{Term: "GRU", OverrideType: "custom_title", CustomStandaloneTitle: "Gated Recurrent Units"}); err != nil {
		t.Fatalf("Put(custom_title): %v", err)
	}

	rows, err := svc.List(ctx, expl.ID)
	if err != nil || len(rows) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(rows))
	}
	if rows[0].TermLower != "gru" || rows[1].TermLower != "rnn" {
		t.Fatalf("List order: %+v", rows)
	}

	// Re-putting the same term replaces instead of duplicating.
	if _, err := svc.Put(ctx, expl.ID, OverrideInput{Term: "rnn", OverrideType: "custom_title", CustomStandaloneTitle: "Recurrent Neural Network"}); err != nil {
		t.Fatalf("Put(replace): %v", err)
	}
	m, err := svc.OverrideMap(dbctx.Context{Ctx: ctx}, expl.ID)
	if err != nil || len(m) != 2 {
		t.Fatalf("OverrideMap: err=%v map=%+v", err, m)
	}
	if m["rnn"].Type != linking.OverrideCustomTitle || m["rnn"].CustomStandaloneTitle != "Recurrent Neural Network" {
		t.Fatalf("OverrideMap rnn entry: %+v", m["rnn"])
	}
	if m["gru"].Type != linking.OverrideCustomTitle {
		t.Fatalf("OverrideMap gru entry: %+v", m["gru"])
	}

	if err := svc.Delete(ctx, expl.ID, "RNN"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, expl.ID, "rnn"); linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("Delete twice: want=%s got=%v", linking.CodeNotFound, err)
	}
	if rows, _ := svc.List(ctx, expl.ID); len(rows) != 1 {
		t.Fatalf("List after delete: %+v", rows)
	}
}
