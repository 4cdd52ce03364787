package engine

// #region imports
import (
	"context"
	"fmt"
	"log"

	"github.com/danielpatrickdp/disposition-engine/internal/bus"
	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region on-message-auto

// onMessageAuto runs the lazy auto-transition check before anything else
// handles the stimulus: if the entity sat in a volatile state too long, or
// idled past the reset threshold, the due trigger is published and its
// cascade completes before the message's own classification runs.
func (e *Engine) onMessageAuto(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.MessageReceived)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	ent, err := e.loadOrCreate(ctx, ev.Entity)
	if err != nil {
		return err
	}

	m := mood.NewMachineAt(ent.st, e.cfg.Mood, e.now)
	if trg, due := m.AutoTrigger(ev.At); due {
		log.Printf("[MOOD] auto trigger entity=%s trigger=%s", ev.Entity, trg)
		if err := e.bus.Publish(ctx, bus.TriggerDetected{
			Entity:  ev.Entity,
			Trigger: trg,
			Source:  "auto",
		}); err != nil {
			return err
		}
	}

	// Refresh the idle clock even when this stimulus classifies to nothing.
	m.TouchInteraction()
	e.persist(ctx, ent)
	return nil
}

// #endregion on-message-auto

// #region on-message-classify

// onMessageClassify maps the stimulus text to at most one trigger and hands
// it back through the bus — never by calling the machine directly.
func (e *Engine) onMessageClassify(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.MessageReceived)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	trg, matched := trigger.Classify(ev.Text, trigger.Signals{
		Sentiment:    ev.Sentiment,
		HasSentiment: ev.HasSentiment,
	})
	if !matched {
		return nil
	}

	ctxMap := map[string]any{}
	if ev.HasSentiment {
		ctxMap["sentiment"] = ev.Sentiment
	}

	return e.bus.Publish(ctx, bus.TriggerDetected{
		Entity:  ev.Entity,
		Trigger: trg,
		Source:  "message",
		Context: ctxMap,
	})
}

// #endregion on-message-classify

// #region on-trigger

// onTrigger is the single writer of mood state. A table match commits the
// transition, persists it, and announces StateChanged; a miss is a
// documented no-op that still counts the interaction.
func (e *Engine) onTrigger(ctx context.Context, evt bus.Event) error {
	ev, ok := evt.(bus.TriggerDetected)
	if !ok {
		return fmt.Errorf("unexpected event %T", evt)
	}

	ent, err := e.loadOrCreate(ctx, ev.Entity)
	if err != nil {
		return err
	}

	m := mood.NewMachineAt(ent.st, e.cfg.Mood, e.now)
	from := ent.st.Current

	if !m.Apply(ev.Trigger, ev.Context) {
		e.ignored.Add(1)
		log.Printf("[MOOD] trigger ignored entity=%s state=%s trigger=%s",
			ev.Entity, from, ev.Trigger)
		e.persist(ctx, ent)
		return e.bus.Publish(ctx, bus.TriggerIgnored{
			Entity:  ev.Entity,
			State:   from,
			Trigger: ev.Trigger,
		})
	}

	log.Printf("[MOOD] transition entity=%s %s → %s on %s (count=%d)",
		ev.Entity, from, ent.st.Current, ev.Trigger, ent.st.TransitionCount)
	e.persist(ctx, ent)

	return e.bus.Publish(ctx, bus.StateChanged{
		Entity:          ev.Entity,
		From:            from,
		To:              ent.st.Current,
		Trigger:         ev.Trigger,
		TransitionCount: ent.st.TransitionCount,
	})
}

// #endregion on-trigger
