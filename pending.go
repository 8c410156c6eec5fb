package dynload

import "context"

// Pending is a handle to a load that settles asynchronously. All callers that
// were coalesced onto the same load hold the same *Pending.
type Pending struct {
	url     string
	done    chan struct{}
	outcome Outcome
	err     error
}

func newPending(url string) *Pending {
	return &Pending{url: url, done: make(chan struct{})}
}

// settle must be called exactly once.
func (p *Pending) settle(outcome Outcome, err error) {
	p.outcome = outcome
	p.err = err
	close(p.done)
}

// URL returns the URL being loaded.
func (p *Pending) URL() string {
	return p.url
}

// Done returns a channel that is closed once the load has settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the load settles and returns its outcome. A non-nil error
// is either a *LoadError for a fatal failure or ctx.Err(). Giving up on the
// wait does not stop the load.
func (p *Pending) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-p.done:
		return p.outcome, p.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
