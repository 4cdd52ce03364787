package mood

import "time"

// #region state

// State is one of the five fixed mood states.
type State string

const (
	StateGuarded    State = "guarded" // initial
	StateVulnerable State = "vulnerable"
	StatePlayful    State = "playful"
	StateAnalytical State = "analytical"
	StateWithdrawn  State = "withdrawn"
)

// Known reports whether s is a member of the fixed state set.
func (s State) Known() bool {
	switch s {
	case StateGuarded, StateVulnerable, StatePlayful, StateAnalytical, StateWithdrawn:
		return true
	}
	return false
}

// #endregion state

// #region entity-state

// EntityState is the authoritative per-entity mood snapshot. It is mutated
// only through Machine and persisted after every successful transition.
type EntityState struct {
	EntityID          string
	Current           State
	Previous          State // empty until the first transition
	EnteredAt         time.Time
	TransitionCount   uint64
	InteractionCount  uint64
	Intensity         float64 // [0, 1]
	Context           map[string]any
	LastInteractionAt time.Time
}

// NewEntityState returns a fresh entity in the initial state with zero
// counters.
func NewEntityState(entityID string, now time.Time) *EntityState {
	return &EntityState{
		EntityID:          entityID,
		Current:           StateGuarded,
		EnteredAt:         now,
		Intensity:         profiles[StateGuarded].Intensity,
		Context:           map[string]any{},
		LastInteractionAt: now,
	}
}

// Clone returns a deep copy, used when handing snapshots across the
// cache boundary.
func (st *EntityState) Clone() *EntityState {
	cp := *st
	cp.Context = make(map[string]any, len(st.Context))
	for k, v := range st.Context {
		cp.Context[k] = v
	}
	return &cp
}

// #endregion entity-state
