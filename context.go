package dynload

import "context"

type contextKey struct{}

// WithLoader returns a child context that carries l.
func WithLoader(ctx context.Context, l *Loader) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext retrieves the Loader from ctx, or nil if none is present.
func FromContext(ctx context.Context) *Loader {
	l, _ := ctx.Value(contextKey{}).(*Loader)
	return l
}
