package configmanager

// applierState names the serialization domain's state machine from spec.md
// §9: Idle when nothing is in flight, AwaitingRollouts while the rollout
// listing call is outstanding, AwaitingConfigs while the per-config_id
// fan-out is outstanding. The per-config_id scoreboard itself lives in
// rollout.FetchAll (a mo.Option[[]byte] slot per entry); this state machine
// only tracks which phase of one apply sequence is in progress.
type applierState int

const (
	stateIdle applierState = iota
	stateAwaitingRollouts
	stateAwaitingConfigs
)

func (s applierState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateAwaitingRollouts:
		return "awaiting_rollouts"
	case stateAwaitingConfigs:
		return "awaiting_configs"
	default:
		return "unknown"
	}
}
