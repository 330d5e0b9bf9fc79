package configmanager

// Trigger is the outcome of a single tick's decision (spec.md §4.6 step 3,
// §9 decide(n, obs, current) -> Trigger).
type Trigger int

const (
	// TriggerSkip means no outbound HTTP happens this tick.
	TriggerSkip Trigger = iota
	// TriggerRolloutsOnly means no data-plane signal has arrived yet, so the
	// rollout listing is probed; apply() escalates to the config fetch in
	// the same tick if the listed id differs from the current one.
	TriggerRolloutsOnly
	// TriggerFull means fetch the rollout listing and, if its id differs
	// from the current one, every config it references.
	TriggerFull
)

// String names the trigger for logging.
func (t Trigger) String() string {
	switch t {
	case TriggerSkip:
		return "skip"
	case TriggerRolloutsOnly:
		return "rollouts_only"
	case TriggerFull:
		return "full"
	default:
		return "unknown"
	}
}

// decide is the pure function at the heart of C6/C7 (spec.md §4.6 step 3,
// §9). n is the pending request count sampled and reset at tick start; obs
// is the data-plane-observed rollout id (empty if never observed); current
// is the rollout id CM has already committed.
//
//   - n == 0: idle sidecar, skip entirely regardless of obs (§4.6 step 2,
//     the idle-silence rule, P4/P5).
//   - obs != "" and obs == current: the data plane has already caught up to
//     what CM committed, nothing to do (P5).
//   - obs != "" and obs != current: the data plane has observed a rollout
//     CM hasn't committed yet — go straight for the full fetch.
//   - obs == "": no rollout signal has ever arrived from the data plane;
//     probe the rollout listing; apply() collapses the two-tick dance into
//     one tick and downloads the configs at once if the listed id differs
//     from current.
func decide(n int, obs, current string) Trigger {
	if n == 0 {
		return TriggerSkip
	}
	if obs != "" {
		if obs == current {
			return TriggerSkip
		}
		return TriggerFull
	}
	return TriggerRolloutsOnly
}
