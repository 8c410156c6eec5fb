package dynload

import "context"

// Injector fetches and executes the resource at url. It returns nil once the
// resource has executed, which usually means it published its artifact into a
// Namespace, or an error describing why it could not.
type Injector interface {
	Inject(ctx context.Context, url string) error
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(ctx context.Context, url string) error

func (f InjectorFunc) Inject(ctx context.Context, url string) error {
	return f(ctx, url)
}
