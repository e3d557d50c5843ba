package loader

import "context"

type contextKey struct{}

// NewContext attaches a request's loader set to the context.
func NewContext(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext extracts the request's loader set, nil when absent.
func FromContext(ctx context.Context) *Loaders {
	l, _ := ctx.Value(contextKey{}).(*Loaders)
	return l
}
