package mood

// #region length

// Length is the target response-length class for presentation collaborators.
type Length string

const (
	LengthShort    Length = "short"
	LengthModerate Length = "moderate"
	LengthLong     Length = "long"
)

// #endregion length

// #region modifiers

// Modifiers is the state-derived projection consumed by presentation
// collaborators. Reading it has no side effects.
type Modifiers struct {
	Tone           string
	Formality      float64 // [0, 1]
	Intensity      float64 // [0, 1]
	ResponseLength Length
	KeywordHints   []string
}

// #endregion modifiers

// #region profiles

var profiles = map[State]Modifiers{
	StateGuarded: {
		Tone:           "reserved",
		Formality:      0.7,
		Intensity:      0.3,
		ResponseLength: LengthShort,
		KeywordHints:   []string{"perhaps", "we'll see", "careful"},
	},
	StateVulnerable: {
		Tone:           "open",
		Formality:      0.2,
		Intensity:      0.8,
		ResponseLength: LengthLong,
		KeywordHints:   []string{"honestly", "i trust you", "it means a lot"},
	},
	StatePlayful: {
		Tone:           "teasing",
		Formality:      0.1,
		Intensity:      0.7,
		ResponseLength: LengthModerate,
		KeywordHints:   []string{"hehe", "oh really", "your move"},
	},
	StateAnalytical: {
		Tone:           "measured",
		Formality:      0.8,
		Intensity:      0.4,
		ResponseLength: LengthLong,
		KeywordHints:   []string{"consider", "on the other hand", "precisely"},
	},
	StateWithdrawn: {
		Tone:           "distant",
		Formality:      0.9,
		Intensity:      0.1,
		ResponseLength: LengthShort,
		KeywordHints:   []string{"fine", "if you say so", "..."},
	},
}

// ProfileFor returns the fixed modifier record for a state. Unknown states
// fall back to the guarded profile so presentation never sees a zero value.
func ProfileFor(s State) Modifiers {
	p, ok := profiles[s]
	if !ok {
		p = profiles[StateGuarded]
	}
	hints := make([]string, len(p.KeywordHints))
	copy(hints, p.KeywordHints)
	p.KeywordHints = hints
	return p
}

// #endregion profiles
