package queue

import "context"

// Job handles one message type.
type Job interface {
	Name() string

	// Type is the message type routed to this job.
	Type() string

	Handle(ctx context.Context, payload interface{}) error
}

type ctxKey struct{}

// WithMessageID stores the id of the message being handled.
func WithMessageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// MessageID returns the id of the message being handled, or "".
func MessageID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
