// Package httpinject implements a dynload.Injector that fetches resources over
// HTTP and hands their bodies to an Executor.
//
// Concurrent fetches of the same URL through one Injector share a single HTTP
// request, even when they come from different loaders.
package httpinject

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxBytes is the default limit on a fetched resource body.
const DefaultMaxBytes int64 = 8 << 20

// ErrTooLarge is returned when a resource body exceeds the configured limit.
var ErrTooLarge = errors.New("resource body exceeds size limit")

// Script is a fetched resource, ready to be executed.
type Script struct {
	URL         string
	ContentType string
	Body        []byte
}

// Executor runs a fetched resource.
type Executor interface {
	Execute(ctx context.Context, script Script) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, script Script) error

func (f ExecutorFunc) Execute(ctx context.Context, script Script) error { return f(ctx, script) }

// StatusError means the server answered with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Injector fetches resources with an http.Client and executes them.
type Injector struct {
	client   *http.Client
	exec     Executor
	maxBytes int64
	logger   *slog.Logger
	group    singleflight.Group
}

// New returns an Injector that executes fetched resources with exec.
func New(exec Executor, opts ...Option) *Injector {
	if exec == nil {
		panic("httpinject: nil executor")
	}
	i := &Injector{
		client:   http.DefaultClient,
		exec:     exec,
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject fetches url and executes it.
func (i *Injector) Inject(ctx context.Context, url string) error {
	v, err, shared := i.group.Do(url, func() (any, error) {
		return i.fetch(ctx, url)
	})
	if err != nil {
		return err
	}
	script := v.(Script)
	i.logger.DebugContext(ctx, "fetched resource",
		"url", url, "bytes", len(script.Body), "content_type", script.ContentType, "shared", shared)

	if err := i.exec.Execute(ctx, script); err != nil {
		return fmt.Errorf("execute %s: %w", url, err)
	}
	return nil
}

func (i *Injector) fetch(ctx context.Context, url string) (Script, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Script{}, fmt.Errorf("build request for %s: %w", url, err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return Script{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return Script{}, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBytes+1))
	if err != nil {
		return Script{}, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > i.maxBytes {
		return Script{}, fmt.Errorf("fetch %s: %w (%d bytes)", url, ErrTooLarge, i.maxBytes)
	}

	return Script{
		URL:         url,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
