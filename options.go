package dynload

import "log/slog"

// Option configures a Loader created by NewLoader.
type Option func(*Loader)

// WithObserver attaches an Observer that receives hit, miss, dedup, retry and
// settlement events for the lifetime of the loader.
func WithObserver(o Observer) Option {
	return func(l *Loader) {
		l.observer = o
	}
}

// WithLogger sets the logger that receives load diagnostics. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithCache makes the loader share c instead of creating its own. Loaders
// that share a cache but not a registry may load the same URL concurrently;
// share both to get one load per URL.
func WithCache(c *Cache) Option {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

// WithRegistry makes the loader share r instead of creating its own. Loaders
// sharing r join each other's in-flight loads.
func WithRegistry(r *Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r
		}
	}
}
