package dynload

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Batch is an ordered set of resources loaded together.
type Batch struct {
	Resources []Resource
	// Retry is the default retry budget for resources whose own Retry is zero
	// and not marked RetrySet.
	Retry int
}

// Result holds the artifacts of the resources in a batch that loaded
// successfully, keyed by name. Resources that failed without being fatal are
// simply absent.
type Result struct {
	Components map[string]any
}

// CoordinatorOption configures a Coordinator created by NewCoordinator.
type CoordinatorOption func(*Coordinator)

// WithCoordinatorLogger sets the coordinator's logger. Defaults to
// slog.Default().
func WithCoordinatorLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator loads batches of resources through a Loader and collects their
// artifacts from a Namespace.
type Coordinator struct {
	loader    *Loader
	namespace Namespace
	logger    *slog.Logger
}

// NewCoordinator returns a Coordinator reading artifacts from ns.
func NewCoordinator(loader *Loader, ns Namespace, opts ...CoordinatorOption) *Coordinator {
	if loader == nil {
		panic("dynload: nil loader")
	}
	if ns == nil {
		panic("dynload: nil namespace")
	}
	c := &Coordinator{
		loader:    loader,
		namespace: ns,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadAll starts a load for every resource in b, in order, and waits for all
// of them. If any resource fails fatally, LoadAll returns its *LoadError
// unchanged as soon as it is known and no components; other loads keep
// running and their successes stay cached.
//
// A resource that loaded but whose name the namespace does not know is
// reported with a nil artifact.
func (c *Coordinator) LoadAll(ctx context.Context, b Batch) (Result, error) {
	pending := make([]*Pending, len(b.Resources))
	for i, r := range b.Resources {
		if r.Retry == 0 && !r.RetrySet {
			r.Retry = b.Retry
		}
		pending[i] = c.loader.Load(ctx, r)
	}

	outcomes := make([]Outcome, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pending {
		g.Go(func() error {
			o, err := p.Wait(gctx)
			if err != nil {
				return err
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	components := make(map[string]any, len(outcomes))
	for _, o := range outcomes {
		if !o.Success {
			continue
		}
		artifact, ok := c.namespace.Lookup(o.Name)
		if !ok {
			c.logger.DebugContext(ctx, "loaded resource published no artifact", "name", o.Name)
		}
		components[o.Name] = artifact
	}
	return Result{Components: components}, nil
}
