package engine

// #region imports
import (
	"context"
	"fmt"
	"sync"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
)

// #endregion

// #region chapters

// pointsPerChapter is the reward total needed to advance one chapter.
const pointsPerChapter = 50

var chapterNames = []string{
	"first words",
	"thin ice",
	"common ground",
	"letting the guard down",
	"inner weather",
}

func chapterName(chapter int) string {
	if chapter <= 0 {
		return ""
	}
	if chapter > len(chapterNames) {
		return chapterNames[len(chapterNames)-1]
	}
	return chapterNames[chapter-1]
}

// #endregion chapters

// #region narrative

// Narrative tracks per-entity story progression off the reward ledger's
// outcome events. Cross-listener dependency runs through RewardGranted, not
// through the Rewards struct.
type Narrative struct {
	bus *bus.Bus

	mu       sync.Mutex
	chapters map[string]int
}

// NewNarrative constructs the tracker and subscribes it to RewardGranted.
func NewNarrative(b *bus.Bus) *Narrative {
	n := &Narrative{
		bus:      b,
		chapters: make(map[string]int),
	}
	b.Subscribe(bus.KindRewardGranted, n.onReward)
	return n
}

// Chapter returns the current chapter for one entity.
func (n *Narrative) Chapter(entityID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chapters[entityID]
}

// #endregion narrative

// #region on-reward

func (n *Narrative) onReward(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.RewardGranted)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	chapter := ev.Total / pointsPerChapter

	n.mu.Lock()
	prev := n.chapters[ev.Entity]
	if chapter > prev {
		n.chapters[ev.Entity] = chapter
	}
	n.mu.Unlock()

	if chapter <= prev {
		return nil
	}

	return n.bus.Publish(ctx, bus.MilestoneReached{
		Entity:  ev.Entity,
		Name:    chapterName(chapter),
		Chapter: chapter,
	})
}

// #endregion on-reward
