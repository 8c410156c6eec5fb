package dynload_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probablyarth/dynload-go"
)

type module struct{ id string }

// publishing returns an injector that publishes name -> artifact for every
// URL in ok and fails every other URL.
func publishing(ns *dynload.Artifacts, ok map[string]string, artifacts map[string]any) *stubInjector {
	return newStub(func(_ context.Context, url string, _ int) error {
		name, found := ok[url]
		if !found {
			return errBoom
		}
		ns.Set(name, artifacts[name])
		return nil
	})
}

func newCoordinator(inj dynload.Injector, ns dynload.Namespace) (*dynload.Loader, *dynload.Coordinator) {
	loader := dynload.NewLoader(inj, dynload.WithLogger(quietLogger()))
	return loader, dynload.NewCoordinator(loader, ns, dynload.WithCoordinatorLogger(quietLogger()))
}

func TestLoadAllAssemblesSuccessfulComponents(t *testing.T) {
	ns := dynload.NewArtifacts()
	moduleA := &module{id: "a"}
	inj := publishing(ns, map[string]string{"a.js": "A"}, map[string]any{"A": moduleA})
	_, coord := newCoordinator(inj, ns)

	res, err := coord.LoadAll(context.Background(), dynload.Batch{Resources: []dynload.Resource{
		{URL: "a.js", Name: "A"},
		{URL: "b.js", Name: "B"},
	}})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"A": moduleA}, res.Components)
	assert.NotContains(t, res.Components, "B")
}

func TestLoadAllFatalDeniesComponents(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := publishing(ns, map[string]string{"a.js": "A"}, map[string]any{"A": &module{id: "a"}})
	loader, coord := newCoordinator(inj, ns)

	res, err := coord.LoadAll(context.Background(), dynload.Batch{Resources: []dynload.Resource{
		{URL: "a.js", Name: "A"},
		{URL: "b.js", Name: "B", Severity: dynload.SeverityFatal},
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Nil(t, res.Components)

	var loadErr *dynload.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "B", loadErr.Name)

	// The fatal error does not roll back the other resource's success.
	assert.Eventually(t, func() bool { return loader.Cache().Has("a.js") }, 5*time.Second, 10*time.Millisecond)
}

func TestLoadAllFatalDoesNotWaitForSlowResources(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	ns := dynload.NewArtifacts()
	inj := newStub(func(_ context.Context, url string, _ int) error {
		if url == "slow.js" {
			<-release
			return nil
		}
		return errBoom
	})
	_, coord := newCoordinator(inj, ns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := coord.LoadAll(ctx, dynload.Batch{Resources: []dynload.Resource{
		{URL: "slow.js", Name: "Slow"},
		{URL: "bad.js", Name: "Bad", Severity: dynload.SeverityFatal},
	}})
	var loadErr *dynload.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "bad.js", loadErr.URL)
}

func TestLoadAllAppliesBatchRetry(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := newStub(fail)
	_, coord := newCoordinator(inj, ns)

	res, err := coord.LoadAll(context.Background(), dynload.Batch{
		Retry: 2,
		Resources: []dynload.Resource{
			{URL: "default.js", Name: "Default"},
			{URL: "own.js", Name: "Own", Retry: 1},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Components)

	assert.Equal(t, 3, inj.Calls("default.js"))
	assert.Equal(t, 2, inj.Calls("own.js"))
}

func TestLoadAllKeepsExplicitZeroRetry(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := newStub(fail)
	_, coord := newCoordinator(inj, ns)

	res, err := coord.LoadAll(context.Background(), dynload.Batch{
		Retry: 2,
		Resources: []dynload.Resource{
			{URL: "x.js", Name: "X", RetrySet: true},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Components)
	assert.Equal(t, 1, inj.Calls("x.js"))
}

func TestLoadAllCoalescesDuplicateURLs(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := publishing(ns, map[string]string{"a.js": "A"}, map[string]any{"A": "moduleA"})
	_, coord := newCoordinator(inj, ns)

	res, err := coord.LoadAll(context.Background(), dynload.Batch{Resources: []dynload.Resource{
		{URL: "a.js", Name: "A"},
		{URL: "a.js", Name: "A"},
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": "moduleA"}, res.Components)
	assert.Equal(t, 1, inj.Calls("a.js"))
}

func TestLoadAllReusesCacheAcrossBatches(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := publishing(ns, map[string]string{"a.js": "A"}, map[string]any{"A": "moduleA"})
	_, coord := newCoordinator(inj, ns)
	ctx := context.Background()

	_, err := coord.LoadAll(ctx, dynload.Batch{Resources: []dynload.Resource{{URL: "a.js", Name: "A"}}})
	require.NoError(t, err)

	// Aliasing: the cached URL is reported under the new caller's name.
	ns.Set("Alias", "aliased")
	res, err := coord.LoadAll(ctx, dynload.Batch{Resources: []dynload.Resource{{URL: "a.js", Name: "Alias"}}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Alias": "aliased"}, res.Components)
	assert.Equal(t, 1, inj.Calls("a.js"))
}

func TestLoadAllMissingArtifactIsNil(t *testing.T) {
	_, coord := newCoordinator(newStub(succeed), dynload.NewArtifacts())

	res, err := coord.LoadAll(context.Background(), dynload.Batch{Resources: []dynload.Resource{
		{URL: "a.js", Name: "A"},
	}})
	require.NoError(t, err)
	require.Contains(t, res.Components, "A")
	assert.Nil(t, res.Components["A"])
}

func TestLoadAllHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	inj := newStub(func(context.Context, string, int) error {
		<-release
		return nil
	})
	_, coord := newCoordinator(inj, dynload.NewArtifacts())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := coord.LoadAll(ctx, dynload.Batch{Resources: []dynload.Resource{{URL: "a.js", Name: "A"}}})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoadAllEmptyBatch(t *testing.T) {
	_, coord := newCoordinator(newStub(succeed), dynload.NewArtifacts())

	res, err := coord.LoadAll(context.Background(), dynload.Batch{})
	require.NoError(t, err)
	assert.Empty(t, res.Components)
}

func TestLoadAllConcurrentBatches(t *testing.T) {
	ns := dynload.NewArtifacts()
	inj := publishing(ns, map[string]string{"a.js": "A", "b.js": "B"}, map[string]any{"A": 1, "B": 2})
	_, coord := newCoordinator(inj, ns)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	results := make([]dynload.Result, n)
	errs := make([]error, n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = coord.LoadAll(context.Background(), dynload.Batch{Resources: []dynload.Resource{
				{URL: "a.js", Name: "A"},
				{URL: "b.js", Name: "B"},
			}})
		}(i)
	}
	wg.Wait()

	for i := range n {
		require.NoError(t, errs[i])
		assert.Equal(t, map[string]any{"A": 1, "B": 2}, results[i].Components)
	}
	assert.Equal(t, 1, inj.Calls("a.js"))
	assert.Equal(t, 1, inj.Calls("b.js"))
}

func TestComponentsTyped(t *testing.T) {
	moduleA := &module{id: "a"}
	typed, err := dynload.Components[*module](dynload.Result{Components: map[string]any{
		"A":     moduleA,
		"Empty": nil,
	}})
	require.NoError(t, err)
	assert.Same(t, moduleA, typed["A"])
	assert.Contains(t, typed, "Empty")
	assert.Nil(t, typed["Empty"])

	_, err = dynload.Components[*module](dynload.Result{Components: map[string]any{"A": "not a module"}})
	var mismatch *dynload.TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "A", mismatch.Name)
	assert.Equal(t, "*dynload_test.module", mismatch.Expected)
	assert.Equal(t, "string", mismatch.Actual)
}

func TestArtifactTyped(t *testing.T) {
	ns := dynload.NewArtifacts()
	ns.Set("count", 42)

	v, ok, err := dynload.Artifact[int](ns, "count")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok, err = dynload.Artifact[int](ns, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = dynload.Artifact[string](dynload.NamespaceFunc(ns.Lookup), "count")
	assert.True(t, ok)
	assert.Error(t, err)
}
