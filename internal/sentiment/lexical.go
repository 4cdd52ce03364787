package sentiment

// #region imports
import (
	"context"
	"strings"
)

// #endregion

// #region lexicons

var positiveWords = map[string]struct{}{
	"love": {}, "great": {}, "happy": {}, "wonderful": {}, "good": {},
	"amazing": {}, "fun": {}, "sweet": {}, "glad": {}, "excited": {},
	"thanks": {}, "thank": {}, "beautiful": {}, "best": {}, "nice": {},
	"awesome": {}, "cool": {}, "yay": {},
}

var negativeWords = map[string]struct{}{
	"hate": {}, "awful": {}, "sad": {}, "terrible": {}, "bad": {},
	"angry": {}, "lonely": {}, "scared": {}, "worst": {}, "tired": {},
	"hurt": {}, "miserable": {}, "cry": {}, "crying": {}, "afraid": {},
	"horrible": {}, "sick": {}, "ugh": {},
}

// #endregion lexicons

// #region lexical

// Lexical is a zero-dependency Scorer: (positive - negative) hits over
// total tokens, stretched into [-1, 1]. Crude, but it keeps classification
// context-aware when the sidecar is unreachable.
type Lexical struct{}

// NewLexical returns the fallback scorer.
func NewLexical() Lexical {
	return Lexical{}
}

// Score never fails.
func (Lexical) Score(_ context.Context, text string) (float64, error) {
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) == 0 {
		return 0, nil
	}

	var pos, neg int
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,!?;:'\"()")
		if _, ok := positiveWords[tok]; ok {
			pos++
		}
		if _, ok := negativeWords[tok]; ok {
			neg++
		}
	}

	// Stretch so a single hit in a short message registers.
	score := 4 * float64(pos-neg) / float64(len(tokens))
	return clampScore(score), nil
}

// #endregion lexical
