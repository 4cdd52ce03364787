package bus

import "context"

// #region stimulus-id

type stimulusKey struct{}

// WithStimulusID tags ctx with the correlation id of one external stimulus.
// Every event in the resulting cascade shares it.
func WithStimulusID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, stimulusKey{}, id)
}

// StimulusIDFrom returns the stimulus id carried by ctx, or "".
func StimulusIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(stimulusKey{}).(string)
	return id
}

// #endregion stimulus-id
