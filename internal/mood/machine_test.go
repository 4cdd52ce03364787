package mood

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/disposition-engine/internal/trigger"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func newTestMachine(t *testing.T, at time.Time) (*Machine, *EntityState) {
	t.Helper()
	st := NewEntityState("e1", at)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(at))
	return m, st
}

func TestApplyTransitionTable(t *testing.T) {
	tests := []struct {
		name string
		from State
		on   trigger.Trigger
		want State
		ok   bool
	}{
		{"guarded-distress", StateGuarded, trigger.TriggerDistress, StateVulnerable, true},
		{"guarded-playful", StateGuarded, trigger.TriggerPlayful, StatePlayful, true},
		{"guarded-analysis", StateGuarded, trigger.TriggerAnalysisRequest, StateAnalytical, true},
		{"guarded-silence-rejected", StateGuarded, trigger.TriggerSilenceRequest, StateGuarded, false},
		{"guarded-profound-rejected", StateGuarded, trigger.TriggerProfoundQuestion, StateGuarded, false},

		{"vulnerable-profound", StateVulnerable, trigger.TriggerProfoundQuestion, StateAnalytical, true},
		{"vulnerable-playful", StateVulnerable, trigger.TriggerPlayful, StatePlayful, true},
		{"vulnerable-silence", StateVulnerable, trigger.TriggerSilenceRequest, StateWithdrawn, true},
		{"vulnerable-distress-rejected", StateVulnerable, trigger.TriggerDistress, StateVulnerable, false},

		{"playful-distress", StatePlayful, trigger.TriggerDistress, StateVulnerable, true},
		{"playful-analysis", StatePlayful, trigger.TriggerAnalysisRequest, StateAnalytical, true},
		{"playful-elapsed", StatePlayful, trigger.TriggerTimeElapsed, StateGuarded, true},
		{"playful-silence-rejected", StatePlayful, trigger.TriggerSilenceRequest, StatePlayful, false},

		{"analytical-playful", StateAnalytical, trigger.TriggerPlayful, StatePlayful, true},
		{"analytical-distress", StateAnalytical, trigger.TriggerDistress, StateVulnerable, true},
		{"analytical-elapsed", StateAnalytical, trigger.TriggerTimeElapsed, StateGuarded, true},

		{"withdrawn-engagement", StateWithdrawn, trigger.TriggerHighEngagement, StateGuarded, true},
		{"withdrawn-profound", StateWithdrawn, trigger.TriggerProfoundQuestion, StateAnalytical, true},
		{"withdrawn-distress-rejected", StateWithdrawn, trigger.TriggerDistress, StateWithdrawn, false},
		{"withdrawn-playful-rejected", StateWithdrawn, trigger.TriggerPlayful, StateWithdrawn, false},

		// Wildcard reset from every state.
		{"reset-guarded", StateGuarded, trigger.TriggerUniversalReset, StateGuarded, true},
		{"reset-vulnerable", StateVulnerable, trigger.TriggerUniversalReset, StateGuarded, true},
		{"reset-playful", StatePlayful, trigger.TriggerUniversalReset, StateGuarded, true},
		{"reset-analytical", StateAnalytical, trigger.TriggerUniversalReset, StateGuarded, true},
		{"reset-withdrawn", StateWithdrawn, trigger.TriggerUniversalReset, StateGuarded, true},

		{"unknown-trigger", StateGuarded, trigger.Trigger("nonsense"), StateGuarded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
			m, st := newTestMachine(t, at)
			st.Current = tt.from

			got := m.Apply(tt.on, nil)
			if got != tt.ok {
				t.Fatalf("Apply = %v, want %v", got, tt.ok)
			}
			if st.Current != tt.want {
				t.Errorf("state = %s, want %s", st.Current, tt.want)
			}
			if tt.ok && st.Previous != tt.from {
				t.Errorf("previous = %s, want %s", st.Previous, tt.from)
			}
			if !tt.ok && st.TransitionCount != 0 {
				t.Errorf("rejected trigger bumped transition count to %d", st.TransitionCount)
			}
			// Every call is an interaction, matched or not.
			if st.InteractionCount != 1 {
				t.Errorf("interaction count = %d, want 1", st.InteractionCount)
			}
		})
	}
}

func TestApplyCounters(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, st := newTestMachine(t, at)

	calls := []struct {
		on trigger.Trigger
		ok bool
	}{
		{trigger.TriggerDistress, true},        // guarded → vulnerable
		{trigger.TriggerDistress, false},       // rejected in vulnerable
		{trigger.TriggerPlayful, true},         // vulnerable → playful
		{trigger.TriggerSilenceRequest, false}, // rejected in playful
		{trigger.TriggerAnalysisRequest, true}, // playful → analytical
		{trigger.TriggerHighEngagement, false}, // rejected in analytical
		{trigger.TriggerUniversalReset, true},  // wildcard → guarded
	}

	var wantTransitions uint64
	for i, c := range calls {
		got := m.Apply(c.on, nil)
		if got != c.ok {
			t.Fatalf("call %d (%s): Apply = %v, want %v", i, c.on, got, c.ok)
		}
		if c.ok {
			wantTransitions++
		}
	}

	if st.InteractionCount != uint64(len(calls)) {
		t.Errorf("interaction count = %d, want %d", st.InteractionCount, len(calls))
	}
	if st.TransitionCount != wantTransitions {
		t.Errorf("transition count = %d, want %d", st.TransitionCount, wantTransitions)
	}
}

func TestUniversalResetIdempotent(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, st := newTestMachine(t, at)

	for i := 0; i < 2; i++ {
		if !m.Apply(trigger.TriggerUniversalReset, nil) {
			t.Fatalf("reset %d rejected", i)
		}
		if st.Current != StateGuarded {
			t.Fatalf("reset %d: state = %s, want guarded", i, st.Current)
		}
	}
	if st.TransitionCount != 2 {
		t.Errorf("transition count = %d, want 2", st.TransitionCount)
	}
}

func TestApplyContextMergePersists(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, st := newTestMachine(t, at)

	m.Apply(trigger.TriggerDistress, map[string]any{"sentiment": -0.7, "topic": "work"})
	m.Apply(trigger.TriggerPlayful, map[string]any{"sentiment": 0.4})

	if st.Context["topic"] != "work" {
		t.Errorf("context entry dropped across transitions: %v", st.Context)
	}
	if st.Context["sentiment"] != 0.4 {
		t.Errorf("context entry not overwritten: %v", st.Context["sentiment"])
	}
}

func TestApplyIntensityBounds(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, st := newTestMachine(t, at)

	triggers := []trigger.Trigger{
		trigger.TriggerDistress, trigger.TriggerPlayful,
		trigger.TriggerAnalysisRequest, trigger.TriggerUniversalReset,
	}
	for _, trg := range triggers {
		m.Apply(trg, nil)
		if st.Intensity < 0 || st.Intensity > 1 {
			t.Fatalf("intensity %f out of [0,1] after %s", st.Intensity, trg)
		}
	}
}

func TestApplyResetsEnteredAt(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)

	later := start.Add(45 * time.Minute)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(later))
	if !m.Apply(trigger.TriggerDistress, nil) {
		t.Fatal("transition rejected")
	}
	if !st.EnteredAt.Equal(later) {
		t.Errorf("entered at = %v, want %v", st.EnteredAt, later)
	}
}

func TestAutoTriggerVolatileTimeout(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(start))
	m.Apply(trigger.TriggerPlayful, nil)

	// Under threshold: nothing due.
	if trg, due := m.AutoTrigger(start.Add(time.Hour)); due {
		t.Fatalf("unexpected auto trigger %s at 1h", trg)
	}

	// Past threshold in a volatile state: time_elapsed.
	trg, due := m.AutoTrigger(start.Add(2*time.Hour + time.Minute))
	if !due || trg != trigger.TriggerTimeElapsed {
		t.Fatalf("got (%q, %v), want (time_elapsed, true)", trg, due)
	}
}

func TestAutoTriggerNonVolatileState(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(start))
	m.Apply(trigger.TriggerDistress, nil) // vulnerable, not volatile

	if trg, due := m.AutoTrigger(start.Add(3 * time.Hour)); due {
		t.Fatalf("unexpected auto trigger %s from vulnerable", trg)
	}
}

func TestAutoTriggerIdleReset(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(start))
	m.Apply(trigger.TriggerDistress, nil) // vulnerable

	// Idle past the reset threshold wins over everything.
	trg, due := m.AutoTrigger(start.Add(7 * time.Hour))
	if !due || trg != trigger.TriggerUniversalReset {
		t.Fatalf("got (%q, %v), want (universal_reset, true)", trg, due)
	}
}

func TestAutoTriggerIdleResetNotFromGuarded(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(start))

	if trg, due := m.AutoTrigger(start.Add(48 * time.Hour)); due {
		t.Fatalf("idle reset should not churn the initial state, got %s", trg)
	}
}

func TestScenarioDistressPlayfulTimeout(t *testing.T) {
	// Guarded → distress → Vulnerable → playful → Playful → 2h idle →
	// time_elapsed → Guarded.
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("u-42", start)
	clock := start
	m := NewMachineAt(st, DefaultConfig(), func() time.Time { return clock })

	if !m.Apply(trigger.TriggerDistress, nil) || st.Current != StateVulnerable {
		t.Fatalf("step 1: state = %s", st.Current)
	}
	if st.TransitionCount != 1 {
		t.Fatalf("step 1: transition count = %d", st.TransitionCount)
	}

	clock = clock.Add(time.Minute)
	if !m.Apply(trigger.TriggerPlayful, nil) || st.Current != StatePlayful {
		t.Fatalf("step 2: state = %s", st.Current)
	}
	if st.TransitionCount != 2 {
		t.Fatalf("step 2: transition count = %d", st.TransitionCount)
	}

	clock = clock.Add(2*time.Hour + time.Minute)
	trg, due := m.AutoTrigger(clock)
	if !due || trg != trigger.TriggerTimeElapsed {
		t.Fatalf("step 3: got (%q, %v)", trg, due)
	}
	if !m.Apply(trg, nil) || st.Current != StateGuarded {
		t.Fatalf("step 3: state = %s", st.Current)
	}
	if st.TransitionCount != 3 {
		t.Fatalf("step 3: transition count = %d", st.TransitionCount)
	}
}

func TestScenarioWithdrawnIgnoresDistress(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m, st := newTestMachine(t, at)
	st.Current = StateWithdrawn

	if m.Apply(trigger.TriggerDistress, nil) {
		t.Fatal("distress should be rejected in withdrawn")
	}
	if st.Current != StateWithdrawn {
		t.Fatalf("state = %s, want withdrawn", st.Current)
	}
	if st.InteractionCount != 1 {
		t.Fatalf("interaction count = %d, want 1", st.InteractionCount)
	}
}

func TestModifiersPerState(t *testing.T) {
	states := []State{StateGuarded, StateVulnerable, StatePlayful, StateAnalytical, StateWithdrawn}
	seen := map[string]bool{}
	for _, s := range states {
		mods := ProfileFor(s)
		if mods.Tone == "" {
			t.Errorf("%s: empty tone", s)
		}
		if mods.Formality < 0 || mods.Formality > 1 {
			t.Errorf("%s: formality %f out of range", s, mods.Formality)
		}
		if mods.Intensity < 0 || mods.Intensity > 1 {
			t.Errorf("%s: intensity %f out of range", s, mods.Intensity)
		}
		if len(mods.KeywordHints) == 0 {
			t.Errorf("%s: no keyword hints", s)
		}
		if seen[mods.Tone] {
			t.Errorf("%s: tone %q reused across states", s, mods.Tone)
		}
		seen[mods.Tone] = true
	}

	// Unknown states fall back to the guarded profile.
	if got := ProfileFor(State("bogus")); got.Tone != ProfileFor(StateGuarded).Tone {
		t.Errorf("unknown state profile = %+v", got)
	}
}

func TestModifiersNoAliasing(t *testing.T) {
	a := ProfileFor(StatePlayful)
	a.KeywordHints[0] = "mutated"
	b := ProfileFor(StatePlayful)
	if b.KeywordHints[0] == "mutated" {
		t.Fatal("ProfileFor leaked a shared hint slice")
	}
}

func TestTouchInteraction(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	st := NewEntityState("e1", start)
	later := start.Add(time.Hour)
	m := NewMachineAt(st, DefaultConfig(), fixedClock(later))

	m.TouchInteraction()
	if !st.LastInteractionAt.Equal(later) {
		t.Errorf("last interaction = %v, want %v", st.LastInteractionAt, later)
	}
	if st.InteractionCount != 0 {
		t.Errorf("touch should not count an interaction, got %d", st.InteractionCount)
	}
}

func TestCloneIsDeep(t *testing.T) {
	st := NewEntityState("e1", time.Now())
	st.Context["k"] = "v"
	cp := st.Clone()
	cp.Context["k"] = "changed"
	if st.Context["k"] != "v" {
		t.Fatal("Clone shares the context map")
	}
}
