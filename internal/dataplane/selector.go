package dataplane

import (
	"sync"

	"github.com/omarluq/apimgr-sidecar/internal/rollout"
)

// ErrNoConfigs is returned by Select when the held snapshot has no configs
// yet, i.e. the Configuration Manager has not committed once.
var ErrNoConfigs = errNoConfigs{}

type errNoConfigs struct{}

func (errNoConfigs) Error() string { return "dataplane: no configs committed yet" }

// Selector picks one WeightedConfig per call using the Nginx smooth
// weighted round-robin algorithm, adapted from the teacher's
// router.WeightedRoundRobinRouter. Where that router balances across
// healthy providers, this balances across a rollout's percentage-weighted
// configs: the same three-step algorithm, a different pool.
type Selector struct {
	state *State

	mu             sync.Mutex
	currentWeights []int
	lastRolloutID  string
}

// NewSelector builds a Selector reading from state.
func NewSelector(state *State) *Selector {
	return &Selector{state: state}
}

// Select returns the next config according to the smooth weighted
// round-robin schedule. A config with Percent <= 0 is treated as weight 1,
// matching the teacher's getEffectiveWeight default.
func (s *Selector) Select() (rollout.WeightedConfig, error) {
	snapshot := s.state.Get()
	if len(snapshot.Configs) == 0 {
		return rollout.WeightedConfig{}, ErrNoConfigs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snapshot.RolloutID != s.lastRolloutID {
		s.currentWeights = make([]int, len(snapshot.Configs))
		s.lastRolloutID = snapshot.RolloutID
	}

	total := 0
	for _, c := range snapshot.Configs {
		total += effectiveWeight(c)
	}

	for i, c := range snapshot.Configs {
		s.currentWeights[i] += effectiveWeight(c)
	}

	maxIdx := 0
	maxWeight := s.currentWeights[0]
	for i := 1; i < len(s.currentWeights); i++ {
		if s.currentWeights[i] > maxWeight {
			maxIdx = i
			maxWeight = s.currentWeights[i]
		}
	}

	s.currentWeights[maxIdx] -= total

	return snapshot.Configs[maxIdx], nil
}

func effectiveWeight(c rollout.WeightedConfig) int {
	if c.Percent <= 0 {
		return 1
	}
	return c.Percent
}
