package replay

// #region imports
import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// #endregion

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	Stimuli     []Stimulus    `json:"stimuli"`
	Expected    []Expectation `json:"expected"`
}

// Stimulus is one recorded inbound message.
type Stimulus struct {
	EntityID string    `json:"entity_id"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// Expectation pins the final state of one entity after the run.
type Expectation struct {
	EntityID         string  `json:"entity_id"`
	State            string  `json:"state"`
	TransitionCount  *uint64 `json:"transition_count,omitempty"`
	InteractionCount *uint64 `json:"interaction_count,omitempty"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and validates a fixture file.
func LoadFixture(path string) (Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}

	if len(f.Stimuli) == 0 {
		return Fixture{}, fmt.Errorf("fixture has no stimuli")
	}
	for i, s := range f.Stimuli {
		if s.EntityID == "" {
			return Fixture{}, fmt.Errorf("stimulus %d: missing entity_id", i)
		}
		if s.At.IsZero() {
			return Fixture{}, fmt.Errorf("stimulus %d: missing at timestamp", i)
		}
	}

	return f, nil
}

// #endregion load
