package engine

// #region imports
import (
	"context"
	"fmt"
	"sync"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region points

const basePoints = 5

// destinationBonus rewards transitions by where they land.
var destinationBonus = map[mood.State]int{
	mood.StateVulnerable: 10,
	mood.StatePlayful:    8,
	mood.StateAnalytical: 6,
}

// reEngageBonus rewards pulling an entity out of withdrawal.
const reEngageBonus = 20

// #endregion points

// #region rewards

// Rewards keeps a per-entity point ledger, fed exclusively by StateChanged
// events. It owns the ledger; downstream listeners react to RewardGranted
// rather than reading it mid-cascade.
type Rewards struct {
	bus *bus.Bus

	mu     sync.Mutex
	totals map[string]int
}

// NewRewards constructs the ledger and subscribes it to StateChanged.
func NewRewards(b *bus.Bus) *Rewards {
	r := &Rewards{
		bus:    b,
		totals: make(map[string]int),
	}
	b.Subscribe(bus.KindStateChanged, r.onStateChanged)
	return r
}

// Total returns the accumulated points for one entity.
func (r *Rewards) Total(entityID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals[entityID]
}

// #endregion rewards

// #region on-state-changed

func (r *Rewards) onStateChanged(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.StateChanged)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	points := basePoints + destinationBonus[ev.To]
	reason := fmt.Sprintf("transition to %s", ev.To)
	if ev.From == mood.StateWithdrawn && ev.Trigger == trigger.TriggerHighEngagement {
		points += reEngageBonus
		reason = "re-engaged from withdrawn"
	}

	r.mu.Lock()
	r.totals[ev.Entity] += points
	total := r.totals[ev.Entity]
	r.mu.Unlock()

	return r.bus.Publish(ctx, bus.RewardGranted{
		Entity: ev.Entity,
		Points: points,
		Total:  total,
		Reason: reason,
	})
}

// #endregion on-state-changed
