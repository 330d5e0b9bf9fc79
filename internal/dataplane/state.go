// Package dataplane is a minimal consumer of the Configuration Manager's
// commit callback: it holds the last-committed rollout and lets a request
// path pick one of its weighted configs. Neither file here is part of the
// Configuration Manager itself — both are the kind of host-process glue
// the commit callback is built to drive (spec.md §1 Non-goals: CM
// publishes the weighted set, it does not select from it).
package dataplane

import (
	"sync/atomic"

	"github.com/omarluq/apimgr-sidecar/internal/rollout"
)

// Snapshot is one committed rollout: its id and the ordered weighted
// configs it resolved to.
type Snapshot struct {
	RolloutID string
	Configs   []rollout.WeightedConfig
}

// State is an atomically-swapped holder for the most recently committed
// Snapshot, adapted from the teacher's config.Runtime lock-free
// atomic.Pointer pattern. Store is called from the Configuration Manager's
// commit callback; Get is called on the request path.
type State struct {
	ptr atomic.Pointer[Snapshot]
}

// NewState returns an empty State; Get returns the zero Snapshot until the
// first commit arrives.
func NewState() *State {
	s := &State{}
	s.ptr.Store(&Snapshot{})
	return s
}

// Store atomically replaces the held snapshot. Call this directly as a
// configmanager.CommitCallback: Store(rolloutID, configs) matches that
// signature exactly.
func (s *State) Store(rolloutID string, configs []rollout.WeightedConfig) {
	s.ptr.Store(&Snapshot{RolloutID: rolloutID, Configs: configs})
}

// Get returns the current snapshot. The returned Configs slice is the one
// handed to Store by the committing caller and must be treated as
// read-only; configmanager already hands Store a defensive copy.
func (s *State) Get() Snapshot {
	return *s.ptr.Load()
}
