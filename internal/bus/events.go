package bus

// #region imports
import (
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/mood"
	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

// #endregion

// #region kind

// Kind identifies an event variant. Subscription is keyed by Kind.
type Kind string

const (
	KindMessageReceived  Kind = "message.received"
	KindTriggerDetected  Kind = "trigger.detected"
	KindStateChanged     Kind = "state.changed"
	KindTriggerIgnored   Kind = "trigger.ignored"
	KindRewardGranted    Kind = "reward.granted"
	KindMilestoneReached Kind = "milestone.reached"
)

// #endregion kind

// #region event-interface

// Event is a closed tagged union; every variant carries an entity id plus
// variant-specific payload fields. The unexported marker keeps the union
// closed to this package.
type Event interface {
	Kind() Kind
	EntityID() string
	isEvent()
}

// #endregion event-interface

// #region variants

// MessageReceived is published by inbound adapters for each raw stimulus.
type MessageReceived struct {
	Entity       string
	Text         string
	Sentiment    float64
	HasSentiment bool
	At           time.Time
}

func (MessageReceived) Kind() Kind         { return KindMessageReceived }
func (e MessageReceived) EntityID() string { return e.Entity }
func (MessageReceived) isEvent()           {}

// TriggerDetected asks the mood listener to attempt a transition. Source
// distinguishes classified stimuli from auto-transitions and activity bursts.
type TriggerDetected struct {
	Entity  string
	Trigger trigger.Trigger
	Source  string // "message" | "auto" | "activity"
	Context map[string]any
}

func (TriggerDetected) Kind() Kind         { return KindTriggerDetected }
func (e TriggerDetected) EntityID() string { return e.Entity }
func (TriggerDetected) isEvent()           {}

// StateChanged announces a committed transition.
type StateChanged struct {
	Entity          string
	From            mood.State
	To              mood.State
	Trigger         trigger.Trigger
	TransitionCount uint64
}

func (StateChanged) Kind() Kind         { return KindStateChanged }
func (e StateChanged) EntityID() string { return e.Entity }
func (StateChanged) isEvent()           {}

// TriggerIgnored announces a (state, trigger) pair absent from the table.
type TriggerIgnored struct {
	Entity  string
	State   mood.State
	Trigger trigger.Trigger
}

func (TriggerIgnored) Kind() Kind         { return KindTriggerIgnored }
func (e TriggerIgnored) EntityID() string { return e.Entity }
func (TriggerIgnored) isEvent()           {}

// RewardGranted is published by the reward listener after a transition.
type RewardGranted struct {
	Entity string
	Points int
	Total  int
	Reason string
}

func (RewardGranted) Kind() Kind         { return KindRewardGranted }
func (e RewardGranted) EntityID() string { return e.Entity }
func (RewardGranted) isEvent()           {}

// MilestoneReached is published by the narrative listener when progress
// crosses a chapter boundary.
type MilestoneReached struct {
	Entity  string
	Name    string
	Chapter int
}

func (MilestoneReached) Kind() Kind         { return KindMilestoneReached }
func (e MilestoneReached) EntityID() string { return e.Entity }
func (MilestoneReached) isEvent()           {}

// #endregion variants

// #region validate

// validate rejects malformed events before dispatch. The type switch is
// exhaustive over the closed union.
func validate(evt Event) error {
	if evt == nil {
		return ErrInvalidEvent
	}
	if evt.EntityID() == "" {
		return ErrInvalidEvent
	}
	switch evt.(type) {
	case MessageReceived, TriggerDetected, StateChanged,
		TriggerIgnored, RewardGranted, MilestoneReached:
		return nil
	}
	return ErrInvalidEvent
}

// #endregion validate
