package dataplane

import (
	"testing"

	"github.com/omarluq/apimgr-sidecar/internal/rollout"
)

func TestStateGetReturnsEmptyBeforeFirstCommit(t *testing.T) {
	t.Parallel()

	s := NewState()
	snap := s.Get()

	if snap.RolloutID != "" {
		t.Errorf("expected empty rollout id before first commit, got %q", snap.RolloutID)
	}
	if len(snap.Configs) != 0 {
		t.Errorf("expected no configs before first commit, got %d", len(snap.Configs))
	}
}

func TestStateStoreThenGetRoundTrips(t *testing.T) {
	t.Parallel()

	s := NewState()
	configs := []rollout.WeightedConfig{
		{ConfigID: "cfg-1", Blob: []byte("a"), Percent: 70},
		{ConfigID: "cfg-2", Blob: []byte("b"), Percent: 30},
	}

	s.Store("r1", configs)
	snap := s.Get()

	if snap.RolloutID != "r1" {
		t.Errorf("RolloutID = %q, want r1", snap.RolloutID)
	}
	if len(snap.Configs) != 2 {
		t.Fatalf("expected 2 configs, got %d", len(snap.Configs))
	}
}

func TestStateStoreReplacesPreviousSnapshotAtomically(t *testing.T) {
	t.Parallel()

	s := NewState()
	s.Store("r1", []rollout.WeightedConfig{{ConfigID: "cfg-1", Percent: 100}})
	s.Store("r2", []rollout.WeightedConfig{{ConfigID: "cfg-2", Percent: 100}})

	snap := s.Get()
	if snap.RolloutID != "r2" {
		t.Errorf("expected the later commit to win, got rollout id %q", snap.RolloutID)
	}
}
