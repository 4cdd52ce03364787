// Package replay runs recorded stimulus fixtures through a fresh engine
// with an injected clock, for regression checks on the transition table and
// the listener cascade.
package replay

// #region imports
import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/engine"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/sentiment"
	"github.com/danielpatrickdp/disposition-engine/internal/store"
)

// #endregion

// #region result-types

// Result is the final snapshot of one entity after a replay run.
type Result struct {
	EntityID    string
	Final       *mood.EntityState
	RewardTotal int
	Chapter     int
}

// Summary aggregates a replay run.
type Summary struct {
	Results         []Result
	IgnoredTriggers uint64
	Mismatches      []string
}

// OK reports whether every expectation held.
func (s Summary) OK() bool {
	return len(s.Mismatches) == 0
}

// #endregion result-types

// #region run

// Run replays a fixture through a fresh in-memory engine. Stimuli are fed
// in order and the engine's clock tracks each stimulus timestamp, so
// time-based auto-transitions fire exactly as they would have live.
func Run(ctx context.Context, f Fixture, engCfg engine.Config, actCfg engine.ActivityConfig) (Summary, error) {
	b := bus.New(0)
	mem := store.NewMemory()

	eng := engine.New(b, mem, sentiment.NewLexical(), engCfg)
	act := engine.NewActivity(b, actCfg)
	rewards := engine.NewRewards(b)
	narrative := engine.NewNarrative(b)

	var clock time.Time
	now := func() time.Time { return clock }
	eng.SetClock(now)
	act.SetClock(now)

	seen := map[string]bool{}
	for i, s := range f.Stimuli {
		clock = s.At
		seen[s.EntityID] = true
		if err := eng.HandleMessage(ctx, s.EntityID, s.Text); err != nil {
			return Summary{}, fmt.Errorf("stimulus %d: %w", i, err)
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	sum := Summary{IgnoredTriggers: eng.IgnoredTriggers()}
	for _, id := range ids {
		st, err := eng.StateFor(ctx, id)
		if err != nil {
			return Summary{}, fmt.Errorf("final state %s: %w", id, err)
		}
		sum.Results = append(sum.Results, Result{
			EntityID:    id,
			Final:       st,
			RewardTotal: rewards.Total(id),
			Chapter:     narrative.Chapter(id),
		})
	}

	sum.Mismatches = check(f.Expected, sum.Results)
	return sum, nil
}

// #endregion run

// #region check

func check(expected []Expectation, results []Result) []string {
	byID := make(map[string]Result, len(results))
	for _, r := range results {
		byID[r.EntityID] = r
	}

	var mismatches []string
	for _, exp := range expected {
		r, ok := byID[exp.EntityID]
		if !ok {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: no stimuli seen for expected entity", exp.EntityID))
			continue
		}
		if exp.State != "" && string(r.Final.Current) != exp.State {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: state %s, want %s", exp.EntityID, r.Final.Current, exp.State))
		}
		if exp.TransitionCount != nil && r.Final.TransitionCount != *exp.TransitionCount {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: transition_count %d, want %d",
					exp.EntityID, r.Final.TransitionCount, *exp.TransitionCount))
		}
		if exp.InteractionCount != nil && r.Final.InteractionCount != *exp.InteractionCount {
			mismatches = append(mismatches,
				fmt.Sprintf("%s: interaction_count %d, want %d",
					exp.EntityID, r.Final.InteractionCount, *exp.InteractionCount))
		}
	}
	return mismatches
}

// #endregion check
