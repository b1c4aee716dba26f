package context

import "context"

// Current describes the request being served. It travels in the request
// context so loggers and services below the handlers can reach it.
type Current struct {
	RequestID string
	ClientIP  string
	Method    string
	Path      string
	UserAgent string
	// SessionID is the weather lookup session, when the request names one.
	SessionID string
}

type contextKey string

const currentKey contextKey = "current"

func WithCurrent(ctx context.Context, current *Current) context.Context {
	return context.WithValue(ctx, currentKey, current)
}

func FromContext(ctx context.Context) (*Current, bool) {
	current, ok := ctx.Value(currentKey).(*Current)
	return current, ok && current != nil
}

// GetCurrent never returns nil.
func GetCurrent(ctx context.Context) *Current {
	if current, ok := FromContext(ctx); ok {
		return current
	}

	return &Current{}
}

func RequestID(ctx context.Context) string {
	return GetCurrent(ctx).RequestID
}
