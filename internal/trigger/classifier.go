// Package trigger classifies free-text stimuli into discrete mood triggers
// via fixed-priority keyword rules. No model call, no I/O, no state.
package trigger

// #region imports
import (
	"strings"
)

// #endregion

// #region keywords

// silenceKeywords come first: the system must always be disengageable.
var silenceKeywords = []string{
	"leave me alone", "stop talking", "be quiet", "go away",
	"i need space", "need some space", "stop messaging", "don't talk to me",
	"do not talk to me", "silence", "shut up", "enough for today",
}

var distressKeywords = []string{
	"i'm scared", "i am scared", "i'm afraid", "sad", "depressed",
	"crying", "hurt", "lonely", "anxious", "panic", "overwhelmed",
	"can't cope", "cannot cope", "falling apart", "heartbroken",
	"miserable", "hopeless", "help me", "i feel awful", "terrified",
	"worthless", "everything is wrong",
}

var profoundKeywords = []string{
	"meaning of life", "meaning of", "why do we exist", "why are we here",
	"what happens when we die", "consciousness", "do you have a soul",
	"free will", "what is love", "purpose of", "are you real",
	"do you dream", "what are we", "is anything real", "the universe",
	"mortality", "existence",
}

var playfulKeywords = []string{
	"haha", "hehe", "lol", "lmao", "tease", "teasing", "flirt",
	"wink", ";)", "cute", "cutie", "play a game", "let's play",
	"silly", "joke", "funny", "giggle", "kiss", "adorable", "xoxo",
}

var analysisKeywords = []string{
	"analyze", "analyse", "break down", "break it down", "explain why",
	"explain how", "what do you think about", "your opinion on",
	"evaluate", "assess", "compare", "pros and cons", "reason through",
	"walk me through", "give me an analysis",
}

// #endregion keywords

// #region mild-emotional

// mildEmotionalKeywords alone are too weak to signal distress; a strongly
// negative upstream sentiment score tips them over.
var mildEmotionalKeywords = []string{
	"down", "tired", "rough day", "bad day", "not okay", "not great",
	"could be better", "exhausted", "meh",
}

// distressSentimentFloor is the sentiment at or below which mild emotional
// language classifies as distress.
const distressSentimentFloor = -0.5

// #endregion mild-emotional

// #region classify

// Classify maps a stimulus text plus optional signals to at most one trigger.
// Rule priority is fixed: silence, distress, profound question, playful,
// analysis request. First match wins; no match returns ok=false.
func Classify(text string, sig Signals) (Trigger, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return "", false
	}

	if containsAny(lower, silenceKeywords) {
		return TriggerSilenceRequest, true
	}
	if containsAny(lower, distressKeywords) {
		return TriggerDistress, true
	}
	// Context-sensitive: mild emotional language + strongly negative
	// sentiment reads as distress.
	if sig.HasSentiment && sig.Sentiment <= distressSentimentFloor && containsAny(lower, mildEmotionalKeywords) {
		return TriggerDistress, true
	}
	if containsAny(lower, profoundKeywords) || hasProfoundStem(lower) {
		return TriggerProfoundQuestion, true
	}
	if containsAny(lower, playfulKeywords) {
		return TriggerPlayful, true
	}
	if containsAny(lower, analysisKeywords) {
		return TriggerAnalysisRequest, true
	}

	return "", false
}

// #endregion classify

// #region helpers

func containsAny(lower string, kws []string) bool {
	for _, kw := range kws {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var profoundStems = []string{
	"what is the point of", "do you ever wonder", "i wonder if",
	"what does it mean to",
}

func hasProfoundStem(lower string) bool {
	for _, stem := range profoundStems {
		if strings.HasPrefix(lower, stem) {
			return true
		}
	}
	return false
}

// #endregion helpers
