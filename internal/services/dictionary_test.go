package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	types "github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

// newDictionaryService wires a service against the shared test database with
// a cache that never hits, so every read exercises the store path.
func newDictionaryService(t *testing.T) DictionaryService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewDictionaryService(
		db,
		log,
		repos.NewTermRepo(db, log),
		repos.NewAliasRepo(db, log),
		repos.NewSnapshotRepo(db, log),
		NewSnapshotCache(nil, log, "", 0),
	)
}

func TestDictionaryServiceCreateTermBumpsSnapshotVersion(t *testing.T) {
	svc := newDictionaryService(t)
	ctx := context.Background()

	before, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}

	row, err := svc.CreateTerm(ctx, CreateTermInput{
		CanonicalTerm:   "Gradient Descent",
		StandaloneTitle: "Gradient Descent (Optimization)",
		Description:     "Iterative first-order optimizer.",
		Aliases:         []string{"GD"},
	})
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}
	if row.ID == uuid.Nil || len(row.Aliases) != 1 || row.Aliases[0].AliasTermLower != "gd" {
		t.Fatalf("CreateTerm row: %+v", row)
	}

	after, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot after create: %v", err)
	}
	if after.Version != before.Version+1 {
		t.Fatalf("snapshot version: want=%d got=%d", before.Version+1, after.Version)
	}
	entry, ok := after.Data["gradient descent"]
	if !ok || entry.StandaloneTitle != "Gradient Descent (Optimization)" {
		t.Fatalf("canonical entry: ok=%v entry=%+v", ok, entry)
	}
	alias, ok := after.Data["gd"]
	if !ok || alias.CanonicalTerm != "Gradient Descent" || alias.StandaloneTitle != "Gradient Descent (Optimization)" {
		t.Fatalf("alias entry: ok=%v entry=%+v", ok, alias)
	}

	if _, err := svc.CreateTerm(ctx, CreateTermInput{CanonicalTerm: "No Title"}); linking.CodeOf(err) != linking.CodeValidation {
		t.Fatalf("CreateTerm without title: want=%s got=%v", linking.CodeValidation, err)
	}
	if _, err := svc.CreateTerm(ctx, CreateTermInput{
		CanonicalTerm:   "gradient descent",
		StandaloneTitle: "Duplicate",
	}); linking.CodeOf(err) != linking.CodeConflict {
		t.Fatalf("CreateTerm duplicate: want=%s got=%v", linking.CodeConflict, err)
	}
}

func TestDictionaryServiceAliasRules(t *testing.T) {
	svc := newDictionaryService(t)
	ctx := context.Background()

	vanishing, err := svc.CreateTerm(ctx, CreateTermInput{CanonicalTerm: "Vanishing Gradient", StandaloneTitle: "Vanishing Gradient Problem"})
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}
	exploding, err := svc.CreateTerm(ctx, CreateTermInput{CanonicalTerm: "Exploding Gradient", StandaloneTitle: "Exploding Gradient Problem"})
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}

	if _, err := svc.AddAlias(ctx, exploding.ID, "vanishing gradient"); linking.CodeOf(err) != linking.CodeConflict {
		t.Fatalf("AddAlias shadowing canonical: want=%s got=%v", linking.CodeConflict, err)
	}
	if _, err := svc.AddAlias(ctx, exploding.ID, "   "); linking.CodeOf(err) != linking.CodeValidation {
		t.Fatalf("AddAlias empty: want=%s got=%v", linking.CodeValidation, err)
	}
	if _, err := svc.AddAlias(ctx, uuid.New(), "orphan alias"); linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("AddAlias missing term: want=%s got=%v", linking.CodeNotFound, err)
	}

	alias, err := svc.AddAlias(ctx, vanishing.ID, "gradient vanishing")
	if err != nil {
		t.Fatalf("AddAlias: %v", err)
	}
	snap, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}
	if snap.Data["gradient vanishing"].CanonicalTerm != "Vanishing Gradient" {
		t.Fatalf("alias not in snapshot: %+v", snap.Data["gradient vanishing"])
	}

	if err := svc.DeleteAlias(ctx, alias.ID); err != nil {
		t.Fatalf("DeleteAlias: %v", err)
	}
	snap, err = svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot after delete: %v", err)
	}
	if _, ok := snap.Data["gradient vanishing"]; ok {
		t.Fatalf("deleted alias still in snapshot")
	}
	if err := svc.DeleteAlias(ctx, alias.ID); linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("DeleteAlias twice: want=%s got=%v", linking.CodeNotFound, err)
	}
}

func TestDictionaryServiceDeactivationDropsTermFromSnapshot(t *testing.T) {
	svc := newDictionaryService(t)
	ctx := context.Background()

	row, err := svc.CreateTerm(ctx, CreateTermInput{
		CanonicalTerm:   "Dropout Layer",
		StandaloneTitle: "Dropout Regularization",
		Aliases:         []string{"dropout trick"},
	})
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}

	inactive := false
	if _, err := svc.UpdateTerm(ctx, row.ID, UpdateTermInput{IsActive: &inactive}); err != nil {
		t.Fatalf("UpdateTerm(deactivate): %v", err)
	}
	snap, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}
	if _, ok := snap.Data["dropout layer"]; ok {
		t.Fatalf("inactive term still in snapshot")
	}
	if _, ok := snap.Data["dropout trick"]; ok {
		t.Fatalf("alias of inactive term still in snapshot")
	}

	active := true
	title := "Dropout (Regularization)"
	if _, err := svc.UpdateTerm(ctx, row.ID, UpdateTermInput{IsActive: &active, StandaloneTitle: &title}); err != nil {
		t.Fatalf("UpdateTerm(reactivate): %v", err)
	}
	snap, err = svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot after reactivate: %v", err)
	}
	if snap.Data["dropout layer"].StandaloneTitle != "Dropout (Regularization)" {
		t.Fatalf("reactivated entry: %+v", snap.Data["dropout layer"])
	}
	if snap.Data["dropout trick"].CanonicalTerm != "Dropout Layer" {
		t.Fatalf("reactivated alias entry: %+v", snap.Data["dropout trick"])
	}
}

func TestDictionaryServiceDeleteTermCascades(t *testing.T) {
	svc := newDictionaryService(t)
	ctx := context.Background()

	row, err := svc.CreateTerm(ctx, CreateTermInput{
		CanonicalTerm:   "Weight Decay",
		StandaloneTitle: "Weight Decay (L2)",
		Aliases:         []string{"l2 penalty"},
	})
	if err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}

	if err := svc.DeleteTerm(ctx, row.ID); err != nil {
		t.Fatalf("DeleteTerm: %v", err)
	}
	if _, err := svc.GetTerm(ctx, row.ID); linking.CodeOf(err) != linking.CodeNotFound {
		t.Fatalf("GetTerm after delete: want=%s got=%v", linking.CodeNotFound, err)
	}
	snap, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}
	if _, ok := snap.Data["weight decay"]; ok {
		t.Fatalf("deleted term still in snapshot")
	}
	if _, ok := snap.Data["l2 penalty"]; ok {
		t.Fatalf("alias of deleted term still in snapshot")
	}
}

func TestDictionaryServiceCurrentSnapshotHealsCorruptRow(t *testing.T) {
	svc := newDictionaryService(t)
	db := testutil.DB(t)
	ctx := context.Background()

	if _, err := svc.CreateTerm(ctx, CreateTermInput{CanonicalTerm: "Layer Normalization", StandaloneTitle: "Layer Normalization"}); err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}
	before, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}

	// Scramble the stored payload with JSON of the wrong shape.
	err = db.WithContext(ctx).
		Model(&types.TermSnapshot{}).
		Where("id = ?", types.SnapshotRowID).
		Update("data", datatypes.JSON([]byte(`"scrambled"`))).Error
	if err != nil {
		t.Fatalf("corrupt snapshot row: %v", err)
	}

	healed, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot after corruption: %v", err)
	}
	if healed.Version != before.Version+1 {
		t.Fatalf("heal version: want=%d got=%d", before.Version+1, healed.Version)
	}
	if _, ok := healed.Data["layer normalization"]; !ok {
		t.Fatalf("healed snapshot missing term: %+v", healed.Data)
	}
}

func TestDictionaryServiceRebuildSnapshotIsExplicit(t *testing.T) {
	svc := newDictionaryService(t)
	ctx := context.Background()

	before, err := svc.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}
	rebuilt, err := svc.RebuildSnapshot(ctx)
	if err != nil {
		t.Fatalf("RebuildSnapshot: %v", err)
	}
	if rebuilt.Version != before.Version+1 {
		t.Fatalf("rebuild version: want=%d got=%d", before.Version+1, rebuilt.Version)
	}
	if len(rebuilt.Data) != len(before.Data) {
		t.Fatalf("rebuild changed data: want=%d terms got=%d", len(before.Data), len(rebuilt.Data))
	}
}

// scriptedCache serves one scripted Get result and records every Put, so
// tests can pin which read paths touch the edge cache.
type scriptedCache struct {
	view linking.SnapshotView
	hit  bool
	err  error
	puts []linking.SnapshotView
}

func (c *scriptedCache) Get(context.Context, int64) (linking.SnapshotView, bool, error) {
	return c.view, c.hit, c.err
}

func (c *scriptedCache) Put(_ context.Context, view linking.SnapshotView) error {
	c.puts = append(c.puts, view)
	return nil
}

func (c *scriptedCache) Invalidate(context.Context) error { return nil }

func TestDictionaryServiceCurrentSnapshotVersionGatesCache(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	seed := newDictionaryService(t)
	if _, err := seed.CreateTerm(ctx, CreateTermInput{CanonicalTerm: "Skip Connection", StandaloneTitle: "Skip Connections"}); err != nil {
		t.Fatalf("CreateTerm: %v", err)
	}
	store, err := seed.CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot: %v", err)
	}

	withCache := func(cache SnapshotCache) DictionaryService {
		return NewDictionaryService(db, log,
			repos.NewTermRepo(db, log),
			repos.NewAliasRepo(db, log),
			repos.NewSnapshotRepo(db, log),
			cache)
	}

	// An entry at the authoritative version is served as-is, without loading
	// the snapshot row or refreshing the cache.
	marked := linking.SnapshotView{Version: store.Version, Data: map[string]linking.TermEntry{
		"cache marker": {CanonicalTerm: "cache marker", StandaloneTitle: "Cache Marker"},
	}}
	hit := &scriptedCache{view: marked, hit: true}
	got, err := withCache(hit).CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot(hit): %v", err)
	}
	if _, ok := got.Data["cache marker"]; !ok || len(hit.puts) != 0 {
		t.Fatalf("cache hit not served: data=%+v puts=%d", got.Data, len(hit.puts))
	}

	// A miss falls back to the store and refreshes the entry.
	miss := &scriptedCache{}
	got, err = withCache(miss).CurrentSnapshot(ctx)
	if err != nil {
		t.Fatalf("CurrentSnapshot(miss): %v", err)
	}
	if got.Version != store.Version || len(got.Data) != len(store.Data) {
		t.Fatalf("miss did not load store view: got=%+v want=%+v", got, store)
	}
	if len(miss.puts) != 1 || miss.puts[0].Version != store.Version {
		t.Fatalf("miss did not refresh cache: %+v", miss.puts)
	}

	// A failing cache read degrades to the store, never to an error.
	broken := &scriptedCache{err: errors.New("redis down")}
	got, err = withCache(broken).CurrentSnapshot(ctx)
	if err != nil || got.Version != store.Version {
		t.Fatalf("CurrentSnapshot(broken cache): view=%+v err=%v", got, err)
	}
}
