package services

import (
	"testing"

	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/data/repos/testutil"
	"github.com/alcmdbackup/explainanythingbackup-sub001/internal/domain/linking"
)

func TestMatcherRegistryReusesCompiledAutomaton(t *testing.T) {
	reg := NewMatcherRegistry(testutil.Logger(t), 0)

	view := linking.SnapshotView{Version: 41, Data: map[string]linking.TermEntry{
		"relu": {CanonicalTerm: "ReLU", StandaloneTitle: "ReLU Activation"},
	}}
	first := reg.MatcherFor(view)
	second := reg.MatcherFor(view)
	if first != second {
		t.Fatalf("same version compiled twice")
	}
	matches := first.Find("relu is simple")
	if len(matches) != 1 || matches[0].Term != "relu" || matches[0].Start != 0 || matches[0].End != 4 {
		t.Fatalf("compiled matcher misses: %+v", matches)
	}
}

func TestMatcherRegistryRecompilesForNewVersion(t *testing.T) {
	reg := NewMatcherRegistry(testutil.Logger(t), 0)

	old := linking.SnapshotView{Version: 7, Data: map[string]linking.TermEntry{
		"relu": {CanonicalTerm: "ReLU"},
	}}
	next := linking.SnapshotView{Version: 8, Data: map[string]linking.TermEntry{
		"relu": {CanonicalTerm: "ReLU"},
		"gelu": {CanonicalTerm: "GELU"},
	}}

	if reg.MatcherFor(old) == reg.MatcherFor(next) {
		t.Fatalf("new version reused old automaton")
	}
	if got := reg.MatcherFor(next).Size(); got != 2 {
		t.Fatalf("recompiled size: want=2 got=%d", got)
	}
	// The old version stays usable while cached.
	if got := reg.MatcherFor(old).Size(); got != 1 {
		t.Fatalf("old version size: want=1 got=%d", got)
	}
}
