// Package mood implements the per-entity guarded mood state machine: a data
// transition table with a wildcard reset row, a state-derived response
// modifier projection, and lazily evaluated time-based auto-transitions.
package mood

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region config

// Config holds the auto-transition thresholds.
type Config struct {
	// VolatileAfter is how long an entity may sit continuously in a
	// volatile state (playful, analytical) before time_elapsed fires.
	VolatileAfter time.Duration
	// IdleResetAfter is how long an entity may go without any interaction
	// before universal_reset fires.
	IdleResetAfter time.Duration
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		VolatileAfter:  2 * time.Hour,
		IdleResetAfter: 6 * time.Hour,
	}
}

// #endregion config

// #region machine

// Machine applies guarded transitions to one entity's state. It is the only
// component allowed to mutate an EntityState.
type Machine struct {
	st  *EntityState
	cfg Config
	now func() time.Time
}

// NewMachine wraps an entity state. The state is mutated in place.
func NewMachine(st *EntityState, cfg Config) *Machine {
	return &Machine{st: st, cfg: cfg, now: time.Now}
}

// NewMachineAt is NewMachine with an injected clock, for tests and replay.
func NewMachineAt(st *EntityState, cfg Config, now func() time.Time) *Machine {
	return &Machine{st: st, cfg: cfg, now: now}
}

// State returns the wrapped entity state.
func (m *Machine) State() *EntityState {
	return m.st
}

// #endregion machine

// #region apply

// Apply attempts the transition for trg from the current state. Every call
// counts as an interaction whether or not a transition fires. On a table
// match it snapshots Previous, moves Current, bumps TransitionCount, resets
// EnteredAt, re-bases Intensity on the destination profile, and merges ctx
// into the accumulated context. On a miss the state is left untouched and
// Apply returns false.
func (m *Machine) Apply(trg trigger.Trigger, ctx map[string]any) bool {
	now := m.now()
	m.st.InteractionCount++
	m.st.LastInteractionAt = now

	to, ok := lookup(m.st.Current, trg)
	if !ok {
		return false
	}

	m.st.Previous = m.st.Current
	m.st.Current = to
	m.st.TransitionCount++
	m.st.EnteredAt = now
	m.st.Intensity = clamp01(profiles[to].Intensity)

	if m.st.Context == nil {
		m.st.Context = map[string]any{}
	}
	for k, v := range ctx {
		m.st.Context[k] = v
	}

	return true
}

// #endregion apply

// #region touch

// TouchInteraction refreshes the idle clock without counting an
// interaction. Used for stimuli that classify to no trigger.
func (m *Machine) TouchInteraction() {
	m.st.LastInteractionAt = m.now()
}

// #endregion touch

// #region modifiers

// Modifiers returns the response-modifier projection for the current state.
func (m *Machine) Modifiers() Modifiers {
	return ProfileFor(m.st.Current)
}

// #endregion modifiers

// #region auto-transition

// AutoTrigger reports the time-based trigger due at now, if any. Purely
// advisory: callers apply it through Apply. Idle reset wins over the
// volatile-state timeout when both are due. An entity already in guarded
// never gets the idle reset: applying it would bump TransitionCount for a
// transition that changes nothing.
func (m *Machine) AutoTrigger(now time.Time) (trigger.Trigger, bool) {
	if m.cfg.IdleResetAfter > 0 &&
		m.st.Current != StateGuarded &&
		now.Sub(m.st.LastInteractionAt) >= m.cfg.IdleResetAfter {
		return trigger.TriggerUniversalReset, true
	}
	if m.cfg.VolatileAfter > 0 &&
		volatile(m.st.Current) &&
		now.Sub(m.st.EnteredAt) >= m.cfg.VolatileAfter {
		return trigger.TriggerTimeElapsed, true
	}
	return "", false
}

func volatile(s State) bool {
	return s == StatePlayful || s == StateAnalytical
}

// #endregion auto-transition

// #region helpers

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion helpers
