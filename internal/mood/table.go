package mood

// #region imports
import (
	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region rule-key

type ruleKey struct {
	From State
	On   trigger.Trigger
}

// #endregion rule-key

// #region transition-table

// transitions is the authoritative (sourceState, trigger) → destination
// table. Pairs absent from it (and from the wildcard row) are no-ops.
var transitions = map[ruleKey]State{
	{StateGuarded, trigger.TriggerDistress}:        StateVulnerable,
	{StateGuarded, trigger.TriggerPlayful}:         StatePlayful,
	{StateGuarded, trigger.TriggerAnalysisRequest}: StateAnalytical,

	{StateVulnerable, trigger.TriggerProfoundQuestion}: StateAnalytical,
	{StateVulnerable, trigger.TriggerPlayful}:          StatePlayful,
	{StateVulnerable, trigger.TriggerSilenceRequest}:   StateWithdrawn,

	{StatePlayful, trigger.TriggerDistress}:        StateVulnerable,
	{StatePlayful, trigger.TriggerAnalysisRequest}: StateAnalytical,
	{StatePlayful, trigger.TriggerTimeElapsed}:     StateGuarded,

	{StateAnalytical, trigger.TriggerPlayful}:     StatePlayful,
	{StateAnalytical, trigger.TriggerDistress}:    StateVulnerable,
	{StateAnalytical, trigger.TriggerTimeElapsed}: StateGuarded,

	{StateWithdrawn, trigger.TriggerHighEngagement}:   StateGuarded,
	{StateWithdrawn, trigger.TriggerProfoundQuestion}: StateAnalytical,
}

// wildcards are valid from every source state. Checked only after a
// specific-state lookup misses.
var wildcards = map[trigger.Trigger]State{
	trigger.TriggerUniversalReset: StateGuarded,
}

// #endregion transition-table

// #region lookup

// lookup resolves (from, on) against the table, falling back to the
// wildcard row.
func lookup(from State, on trigger.Trigger) (State, bool) {
	if to, ok := transitions[ruleKey{from, on}]; ok {
		return to, true
	}
	if to, ok := wildcards[on]; ok {
		return to, true
	}
	return "", false
}

// #endregion lookup
