// Package configmanager implements the Configuration Manager's core control
// loop: the refresh loop (C6), the change-detection policy (C7), and the
// rollout applier (C5). It is a rollout-aware, self-refreshing config
// loader — it decides when to poll, fans a config download out and back in
// atomically, and fires a commit callback exactly once per distinct
// rollout id it successfully applies.
package configmanager

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/omarluq/apimgr-sidecar/internal/cmenv"
	"github.com/omarluq/apimgr-sidecar/internal/rollout"
)

// RolloutFetcher is component C3's surface, as consumed by the applier.
type RolloutFetcher interface {
	Fetch(ctx context.Context) (rollout.Rollout, error)
}

// GlobalContext is the subset of component C2 the refresh loop reads at
// tick time: the data-plane-observed rollout id (spec.md §4.6 step 3).
type GlobalContext interface {
	RolloutID() string
}

// CommitCallback is invoked exactly once per distinct rollout id the
// applier successfully commits. It receives a defensive copy of the
// committed configs, never the manager's internal slice (spec.md §3
// invariant 3, §4.5 step 3e).
type CommitCallback func(rolloutID string, configs []rollout.WeightedConfig)

// Manager is the Configuration Manager: C5 (Apply), C6 (the refresh loop),
// and C7 (change-detection) combined behind one cooperative serialization
// domain (spec.md §5). All mutable state below mu is private to that
// domain; pendingRequestCount is the one field touched from outside it,
// via a plain atomic counter.
type Manager struct {
	env            cmenv.Environment
	globalCtx      GlobalContext
	rolloutFetcher RolloutFetcher
	configFetcher  rollout.ConfigBlobFetcher
	commit         CommitCallback
	logger         *zerolog.Logger
	interval       time.Duration

	pendingRequestCount atomic.Int64

	mu               sync.Mutex
	state            applierState
	inFlight         bool
	stopped          bool
	currentRolloutID string
	currentConfigs   []rollout.WeightedConfig

	timer cmenv.Timer
}

// New builds a Manager. It does not start the refresh loop — call Init for
// that. currentRolloutID may be primed with set_current_rollout_id (spec.md
// §6) via SetCurrentRolloutID before Init, for tests that need to start
// from a non-empty state.
func New(
	env cmenv.Environment,
	globalCtx GlobalContext,
	rolloutFetcher RolloutFetcher,
	configFetcher rollout.ConfigBlobFetcher,
	interval time.Duration,
	commit CommitCallback,
	logger *zerolog.Logger,
) *Manager {
	return &Manager{
		env:            env,
		globalCtx:      globalCtx,
		rolloutFetcher: rolloutFetcher,
		configFetcher:  configFetcher,
		commit:         commit,
		logger:         logger,
		interval:       interval,
		state:          stateIdle,
	}
}

// SetCurrentRolloutID primes the current rollout id before Init, for tests
// (spec.md §6 set_current_rollout_id, test-only priming).
func (m *Manager) SetCurrentRolloutID(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentRolloutID = id
}

// CountRequests increments the pending request counter by n. Called by the
// data-plane filter on every inbound request; this is what makes an idle
// sidecar silent (spec.md §4.6, the idle-silence rule).
func (m *Manager) CountRequests(n int64) {
	m.pendingRequestCount.Add(n)
}

// Init starts the periodic refresh loop.
func (m *Manager) Init() {
	m.mu.Lock()
	m.stopped = false
	m.mu.Unlock()

	m.timer = m.env.StartPeriodicTimer(m.interval, m.tick)
}

// Stop halts the refresh loop. In-flight HTTP may still complete, but the
// commit callback will not fire for it — a stopped Manager's apply is a
// no-op once it observes the stopped flag (spec.md §5 cancellation
// semantics).
func (m *Manager) Stop() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

// tick implements C6's per-tick decision and dispatch (spec.md §4.6). It
// runs on the timer's own goroutine; apply() is dispatched synchronously
// from here so that two ticks can never run the applier concurrently with
// each other — the in-flight guard inside apply() additionally protects
// against a tick overlapping a still-running previous apply.
func (m *Manager) tick() {
	n := int(m.pendingRequestCount.Swap(0))

	m.mu.Lock()
	current := m.currentRolloutID
	stopped := m.stopped
	m.mu.Unlock()

	if stopped {
		return
	}

	obs := m.globalCtx.RolloutID()
	trigger := decide(n, obs, current)

	if trigger == TriggerSkip {
		return
	}

	m.apply(context.Background(), trigger)
}

// apply is component C5 (spec.md §4.5). Exactly one apply runs at a time
// per Manager; a concurrent call while one is already in flight returns
// immediately with no effect, regardless of its own trigger class.
func (m *Manager) apply(ctx context.Context, trigger Trigger) {
	m.mu.Lock()
	if m.inFlight || m.stopped {
		m.mu.Unlock()
		return
	}
	m.inFlight = true
	m.state = stateAwaitingRollouts
	currentRolloutID := m.currentRolloutID
	m.mu.Unlock()

	// sequenceID ties every log line this apply sequence emits together;
	// it is pure observability and never affects the decision (spec.md
	// §11.5) or the committed state.
	sequenceID := uuid.NewString()

	ro, err := m.rolloutFetcher.Fetch(ctx)
	if err != nil {
		m.logWarn(sequenceID, "rollout fetch failed, retrying next tick", err)
		m.clearInFlight()
		return
	}

	if ro.RolloutID == currentRolloutID {
		// Nothing changed; no download, no callback (spec.md §4.5 step 3b,
		// §4.7 same-id tick).
		m.clearInFlight()
		return
	}

	// A RolloutsOnly trigger (no data-plane signal yet) escalates to the
	// full download within this same tick once the listed id differs from
	// the committed one, exactly as a Full trigger does.

	if sum := lo.SumBy(ro.Percentages, func(p rollout.PercentageEntry) int { return p.Percent }); sum != 100 {
		// Percentages are transport, not a quota CM enforces (spec.md §12
		// supplement 1) — logged, never rejected.
		m.logPercentageSumWarn(sequenceID, ro.RolloutID, sum)
	}

	m.mu.Lock()
	m.state = stateAwaitingConfigs
	m.mu.Unlock()

	committed, err := rollout.FetchAll(ctx, m.configFetcher, ro.Percentages)
	if err != nil {
		// Partial download failure: common case is transient propagation
		// lag, logged at info rather than warn (spec.md §7). State is left
		// untouched; the next tick retries from scratch.
		m.logInfo(sequenceID, "partial config download failed, retrying next tick", err)
		m.clearInFlight()
		return
	}

	m.mu.Lock()
	m.currentRolloutID = ro.RolloutID
	m.currentConfigs = committed
	m.inFlight = false
	m.state = stateIdle
	stopped := m.stopped
	m.mu.Unlock()

	if stopped {
		return
	}

	if m.logger != nil {
		m.logger.Info().
			Str("sequence_id", sequenceID).
			Str("rollout_id", ro.RolloutID).
			Int("config_count", len(committed)).
			Msg("rollout committed")
	}

	// Defensive copy: the callback must never observe a slice the manager
	// might mutate on a later tick (spec.md §3 invariant 3).
	snapshot := make([]rollout.WeightedConfig, len(committed))
	copy(snapshot, committed)
	m.commit(ro.RolloutID, snapshot)
}

func (m *Manager) clearInFlight() {
	m.mu.Lock()
	m.inFlight = false
	m.state = stateIdle
	m.mu.Unlock()
}

func (m *Manager) logWarn(sequenceID, msg string, err error) {
	if m.logger != nil {
		m.logger.Warn().Str("sequence_id", sequenceID).Err(err).Msg(msg)
	}
}

func (m *Manager) logInfo(sequenceID, msg string, err error) {
	if m.logger != nil {
		m.logger.Info().Str("sequence_id", sequenceID).Err(err).Msg(msg)
	}
}

func (m *Manager) logPercentageSumWarn(sequenceID, rolloutID string, sum int) {
	if m.logger != nil {
		m.logger.Warn().
			Str("sequence_id", sequenceID).
			Str("rollout_id", rolloutID).
			Int("percentage_sum", sum).
			Msg("rollout percentages do not sum to 100, committing anyway")
	}
}

// CurrentRolloutID returns the rollout id most recently committed, or "" if
// none has been committed yet.
func (m *Manager) CurrentRolloutID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentRolloutID
}

// CurrentConfigs returns a copy of the most recently committed configs.
func (m *Manager) CurrentConfigs() []rollout.WeightedConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]rollout.WeightedConfig, len(m.currentConfigs))
	copy(out, m.currentConfigs)
	return out
}
