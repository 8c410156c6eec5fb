package server

import (
	"cmp"
	"errors"
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/oklog/ulid/v2"

	"github.com/probablyarth/dynload-go"
	"github.com/probablyarth/dynload-go/bundle"
	"github.com/probablyarth/dynload-go/manifest"
)

type componentResponse struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
	Source  string `json:"source,omitempty"`
}

type batchResponse struct {
	ID         string              `json:"id"`
	Components []componentResponse `json:"components"`
	Missing    []string            `json:"missing"`
}

type errorResponse struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

type cacheEntry struct {
	URL  string `json:"url"`
	Name string `json:"name"`
}

type cacheResponse struct {
	Resources []cacheEntry `json:"resources"`
	InFlight  int          `json:"in_flight"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// handleLoadBatch loads the manifest in the request body and reports which
// components became available.
func (s *Server) handleLoadBatch(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxManifestBytes)
	m, err := manifest.Parse(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	batch, err := m.Batch()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}
	if batch.Retry == 0 {
		batch.Retry = s.retry
	}

	ctx := c.Request().Context()
	id := ulid.Make().String()
	logger := s.logger.With("batch_id", id)
	logger.Info("loading batch", "resources", len(batch.Resources), "retry", batch.Retry)

	coord := dynload.NewCoordinator(dynload.FromContext(ctx), s.ns, dynload.WithCoordinatorLogger(logger))
	res, err := coord.LoadAll(ctx, batch)
	if err != nil {
		logger.Error("batch failed", "error", err)
		status := http.StatusInternalServerError
		var loadErr *dynload.LoadError
		if errors.As(err, &loadErr) {
			status = http.StatusBadGateway
		}
		return c.JSON(status, errorResponse{ID: id, Error: err.Error()})
	}

	resp := batchResponse{
		ID:         id,
		Components: make([]componentResponse, 0, len(res.Components)),
		Missing:    []string{},
	}
	for name, artifact := range res.Components {
		comp := componentResponse{Name: name}
		if b, ok := artifact.(*bundle.Bundle); ok {
			comp.Version = b.Version
			comp.Source = b.Source
		}
		resp.Components = append(resp.Components, comp)
	}
	slices.SortFunc(resp.Components, func(a, b componentResponse) int {
		return cmp.Compare(a.Name, b.Name)
	})
	for _, r := range batch.Resources {
		if _, ok := res.Components[r.Name]; !ok && !slices.Contains(resp.Missing, r.Name) {
			resp.Missing = append(resp.Missing, r.Name)
		}
	}

	logger.Info("batch loaded", "components", len(resp.Components), "missing", len(resp.Missing))
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetCache(c echo.Context) error {
	cache := s.loader.Cache()
	resp := cacheResponse{
		Resources: []cacheEntry{},
		InFlight:  s.loader.Registry().Len(),
	}
	for _, url := range cache.URLs() {
		name, _ := cache.Name(url)
		resp.Resources = append(resp.Resources, cacheEntry{URL: url, Name: name})
	}
	return c.JSON(http.StatusOK, resp)
}
