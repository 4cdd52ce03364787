package trigger

// #region trigger

// Trigger is a discrete classification of a stimulus, used to look up a
// mood transition.
type Trigger string

const (
	TriggerSilenceRequest   Trigger = "silence_request"
	TriggerDistress         Trigger = "distress"
	TriggerProfoundQuestion Trigger = "profound_question"
	TriggerPlayful          Trigger = "playful"
	TriggerAnalysisRequest  Trigger = "analysis_request"
	TriggerTimeElapsed      Trigger = "time_elapsed"
	TriggerHighEngagement   Trigger = "high_engagement"
	TriggerUniversalReset   Trigger = "universal_reset"
)

// #endregion trigger

// #region signals

// Signals carries optional structured context supplied by the upstream
// ingestion collaborator. Classify never computes sentiment itself.
type Signals struct {
	Sentiment    float64 // [-1, 1]
	HasSentiment bool
}

// #endregion signals
