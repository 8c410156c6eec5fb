package dynload

import (
	"context"
	"log/slog"
)

// Loader loads resources through an Injector, coalescing concurrent requests
// for the same URL and caching successes for its lifetime.
type Loader struct {
	injector Injector

	cache    *Cache
	registry *Registry

	observer Observer
	logger   *slog.Logger
}

// NewLoader returns a Loader that loads resources with injector.
func NewLoader(injector Injector, opts ...Option) *Loader {
	if injector == nil {
		panic("dynload: nil injector")
	}
	l := &Loader{
		injector: injector,
		cache:    NewCache(),
		registry: NewRegistry(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cache returns the loader's resource cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Registry returns the loader's in-flight registry.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// Load starts loading r and returns a handle that settles once the load is
// done. It never blocks on the injector.
//
// If r.URL is already in flight the existing handle is returned, so the
// caller shares its outcome, including the name it was started with. If r.URL
// is cached the handle is already settled with r.Name.
//
// The load is detached from ctx cancellation and always runs to completion;
// ctx only carries values to the injector. Use Pending.Wait to bound how long
// to wait.
func (l *Loader) Load(ctx context.Context, r Resource) *Pending {
	if r.Retry < 0 {
		r.Retry = 0
	}

	p, state := l.registry.claim(r.URL, l.cache)
	switch state {
	case claimJoined:
		l.emit(EventDedup, r, nil)
		return p
	case claimCached:
		p = newPending(r.URL)
		p.settle(Outcome{Name: r.Name, Success: true}, nil)
		l.emit(EventHit, r, nil)
		return p
	}

	go l.run(context.WithoutCancel(ctx), p, r)
	return p
}

// run drives the retry chain for p until it settles. p stays registered for
// the whole chain, so callers arriving between attempts join it.
func (l *Loader) run(ctx context.Context, p *Pending, r Resource) {
	for attempt := 1; ; attempt++ {
		l.emit(EventMiss, r, nil)
		err := l.inject(ctx, r.URL)
		if err == nil {
			l.registry.complete(r.URL, r.Name, l.cache, p)

			l.emit(EventSuccess, r, nil)
			p.settle(Outcome{Name: r.Name, Success: true}, nil)
			return
		}

		if r.Retry > 0 {
			r.Retry--
			l.logger.DebugContext(ctx, "retrying resource load",
				"name", r.Name, "url", r.URL, "attempt", attempt, "retries_left", r.Retry, "error", err)
			l.emit(EventRetry, r, err)
			continue
		}

		l.registry.abandon(r.URL, p)

		if r.Severity == SeverityFatal {
			l.emit(EventFatal, r, err)
			p.settle(Outcome{Name: r.Name}, &LoadError{URL: r.URL, Name: r.Name, Attempts: attempt, Err: err})
			return
		}

		l.logger.WarnContext(ctx, "resource load failed",
			"name", r.Name, "url", r.URL, "attempts", attempt, "error", err)
		l.emit(EventFailure, r, err)
		p.settle(Outcome{Name: r.Name, Success: false}, nil)
		return
	}
}

// inject calls the injector, turning a panic into an error so that every
// handle settles.
func (l *Loader) inject(ctx context.Context, url string) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = &PanicError{Value: v}
		}
	}()
	return l.injector.Inject(ctx, url)
}

func (l *Loader) emit(event Event, r Resource, err error) {
	if l.observer == nil {
		return
	}
	l.observer.On(EventData{
		Event: event,
		URL:   r.URL,
		Name:  r.Name,
		Retry: r.Retry,
		Err:   err,
	})
}
