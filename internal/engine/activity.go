package engine

// #region imports
import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region config

// ActivityConfig tunes burst detection.
type ActivityConfig struct {
	Window    time.Duration // rolling window size
	Threshold int           // messages within Window that count as a burst
}

// DefaultActivityConfig returns the reference burst parameters.
func DefaultActivityConfig() ActivityConfig {
	return ActivityConfig{
		Window:    90 * time.Second,
		Threshold: 5,
	}
}

// #endregion config

// #region activity

// Activity keeps a short rolling window of recent interaction timestamps
// per entity and classifies bursts as high engagement. It owns its window
// state exclusively and feeds its classification back through the bus.
type Activity struct {
	bus *bus.Bus
	cfg ActivityConfig
	now func() time.Time

	mu      sync.Mutex
	windows map[string][]time.Time
}

// NewActivity constructs the watcher and subscribes it to MessageReceived.
func NewActivity(b *bus.Bus, cfg ActivityConfig) *Activity {
	a := &Activity{
		bus:     b,
		cfg:     cfg,
		now:     time.Now,
		windows: make(map[string][]time.Time),
	}
	b.Subscribe(bus.KindMessageReceived, a.onMessage)
	return a
}

// SetClock injects a clock for tests and replay.
func (a *Activity) SetClock(now func() time.Time) {
	a.now = now
}

// #endregion activity

// #region on-message

func (a *Activity) onMessage(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.MessageReceived)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	burst := a.record(ev.Entity, ev.At)
	if !burst {
		return nil
	}

	return a.bus.Publish(ctx, bus.TriggerDetected{
		Entity:  ev.Entity,
		Trigger: trigger.TriggerHighEngagement,
		Source:  "activity",
	})
}

// record appends one timestamp, trims the window, and reports whether a
// burst fired. The window is cleared on a burst so one sustained streak
// produces one trigger.
func (a *Activity) record(entityID string, at time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := at.Add(-a.cfg.Window)
	win := a.windows[entityID]
	kept := win[:0]
	for _, ts := range win {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, at)

	if len(kept) >= a.cfg.Threshold {
		a.windows[entityID] = nil
		return true
	}
	a.windows[entityID] = kept
	return false
}

// #endregion on-message
