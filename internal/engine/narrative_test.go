package engine

import (
	"context"
	"testing"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
)

func publishReward(t *testing.T, b *bus.Bus, entity string, points, total int) {
	t.Helper()
	evt := bus.RewardGranted{Entity: entity, Points: points, Total: total, Reason: "test"}
	if err := b.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish RewardGranted: %v", err)
	}
}

func TestNarrativeChapterCrossing(t *testing.T) {
	b := bus.New(0)
	n := NewNarrative(b)

	var milestones []bus.MilestoneReached
	b.Subscribe(bus.KindMilestoneReached, func(ctx context.Context, evt bus.Event) error {
		milestones = append(milestones, evt.(bus.MilestoneReached))
		return nil
	})

	publishReward(t, b, "u-1", 15, 15)
	publishReward(t, b, "u-1", 25, 40)
	if len(milestones) != 0 {
		t.Fatalf("milestone before 50 points: %+v", milestones)
	}

	publishReward(t, b, "u-1", 13, 53)
	if len(milestones) != 1 {
		t.Fatalf("milestones = %d, want 1", len(milestones))
	}
	if milestones[0].Chapter != 1 || milestones[0].Name != "first words" {
		t.Errorf("milestone = %+v", milestones[0])
	}
	if n.Chapter("u-1") != 1 {
		t.Errorf("Chapter = %d, want 1", n.Chapter("u-1"))
	}

	// Staying within the same chapter does not re-announce it.
	publishReward(t, b, "u-1", 11, 64)
	if len(milestones) != 1 {
		t.Fatalf("milestone re-announced: %+v", milestones)
	}
}

func TestNarrativeSkipsIntermediateChapters(t *testing.T) {
	b := bus.New(0)
	n := NewNarrative(b)

	var milestones []bus.MilestoneReached
	b.Subscribe(bus.KindMilestoneReached, func(ctx context.Context, evt bus.Event) error {
		milestones = append(milestones, evt.(bus.MilestoneReached))
		return nil
	})

	// A single large grant can jump more than one chapter; only the
	// latest is announced.
	publishReward(t, b, "u-1", 120, 120)
	if len(milestones) != 1 || milestones[0].Chapter != 2 {
		t.Fatalf("milestones = %+v, want single chapter-2 milestone", milestones)
	}
	if milestones[0].Name != "thin ice" {
		t.Errorf("name = %q", milestones[0].Name)
	}
	if n.Chapter("u-1") != 2 {
		t.Errorf("Chapter = %d, want 2", n.Chapter("u-1"))
	}
}

func TestChapterNameBounds(t *testing.T) {
	if got := chapterName(0); got != "" {
		t.Errorf("chapterName(0) = %q", got)
	}
	if got := chapterName(5); got != "inner weather" {
		t.Errorf("chapterName(5) = %q", got)
	}
	// Past the named arc the last name sticks.
	if got := chapterName(9); got != "inner weather" {
		t.Errorf("chapterName(9) = %q", got)
	}
}
