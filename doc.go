// Package dynload loads remote executable resources on demand.
//
// A resource is identified by its URL and referenced by a logical name. The
// [Loader] makes sure only one load per URL is in flight at any time:
// concurrent callers asking for the same URL share a single [Pending] handle
// and therefore the same outcome. Successful loads are remembered in a
// [Cache] for the lifetime of the process, so later requests for the same URL
// settle immediately without touching the [Injector] again.
//
//	loader := dynload.NewLoader(injector)
//
//	p := loader.Load(ctx, dynload.Resource{
//		URL:   "https://cdn.example.com/widgets.yaml",
//		Name:  "widgets",
//		Retry: 2,
//	})
//	outcome, err := p.Wait(ctx)
//
// Failed loads are retried while the resource still has retry budget. Once the
// budget is exhausted, a resource with [SeverityFatal] settles with a
// [*LoadError]; any other resource logs a warning and settles with an
// unsuccessful [Outcome].
//
// A [Coordinator] loads a whole [Batch] at once and collects the artifacts the
// loaded resources published into a [Namespace]:
//
//	res, err := dynload.NewCoordinator(loader, artifacts).LoadAll(ctx, batch)
//
// A cached URL settles with the name given by the current caller, not the
// name it was first loaded under. This lets one URL be aliased under several
// logical names, which can be surprising when reading results.
package dynload
