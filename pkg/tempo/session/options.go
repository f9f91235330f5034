package session

import "context"

type OptionKey string

const FiringOptionKey OptionKey = "firing"

// WithFiring attaches the identity of the firing that started a run.
func WithFiring(ctx context.Context, f Firing) context.Context {
	return context.WithValue(ctx, FiringOptionKey, f)
}

// FiringFrom returns the firing attached by WithFiring.
func FiringFrom(ctx context.Context) (Firing, bool) {
	f, ok := ctx.Value(FiringOptionKey).(Firing)
	return f, ok
}
