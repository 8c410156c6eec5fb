package httpinject

import (
	"log/slog"
	"net/http"
)

// Option configures an Injector created by New.
type Option func(*Injector)

// WithClient sets the HTTP client used for fetches. Timeouts belong on the
// client; the loader never cancels an injection.
func WithClient(c *http.Client) Option {
	return func(i *Injector) {
		if c != nil {
			i.client = c
		}
	}
}

// WithMaxBytes limits the size of a fetched body. Non-positive values keep
// DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(i *Injector) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// WithLogger sets the injector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Injector) {
		if logger != nil {
			i.logger = logger
		}
	}
}
