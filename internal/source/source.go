// Package source loads a catalog series from its upstream and normalizes it
// into a series.Table.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/economic-index-etl/internal/metrics"
	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// PageFetcher downloads an HTML page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CubeFetcher downloads SIDRA observations for a table.
type CubeFetcher interface {
	Fetch(ctx context.Context, tableID int) ([]series.Observation, error)
}

// Source produces the normalized table for a series definition.
type Source interface {
	Load(ctx context.Context, def series.Definition) (*series.Table, error)
}

// HTMLSource scrapes a year-by-month table from a web page.
type HTMLSource struct {
	fetcher  PageFetcher
	selector string
	logger   *zap.Logger
}

// NewHTMLSource builds an HTMLSource. An empty selector uses series.DefaultTableSelector.
func NewHTMLSource(fetcher PageFetcher, selector string, logger *zap.Logger) *HTMLSource {
	if selector == "" {
		selector = series.DefaultTableSelector
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLSource{fetcher: fetcher, selector: selector, logger: logger}
}

// Load fetches def.Locator and normalizes the table found under the selector.
// An unreachable page is logged and surfaces as a structural parse error.
func (s *HTMLSource) Load(ctx context.Context, def series.Definition) (*series.Table, error) {
	if def.Locator == "" {
		return nil, fmt.Errorf("series %s: source url is required", def.Name)
	}

	start := time.Now()
	var reader io.Reader
	body, err := s.fetcher.Fetch(ctx, def.Locator)
	if err != nil {
		metrics.ObserveFetch(def.Locator, string(series.KindHTMLTable), "error", time.Since(start))
		s.logger.Warn("page unavailable",
			zap.String("series", def.Name),
			zap.String("url", def.Locator),
			zap.Error(err))
	} else {
		metrics.ObserveFetch(def.Locator, string(series.KindHTMLTable), "ok", time.Since(start))
		reader = bytes.NewReader(body)
	}

	rows, err := series.ExtractTable(reader, s.selector)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", def.Name, err)
	}
	table, err := series.NormalizeRows(rows)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", def.Name, err)
	}
	return table, nil
}

// SIDRASource loads a monthly cube from the SIDRA API.
type SIDRASource struct {
	fetcher CubeFetcher
	baseURL string
	minYear int
}

// NewSIDRASource builds a SIDRASource. minYear <= 0 uses series.MinCubeYear.
// baseURL only labels metrics.
func NewSIDRASource(fetcher CubeFetcher, baseURL string, minYear int) *SIDRASource {
	if minYear <= 0 {
		minYear = series.MinCubeYear
	}
	return &SIDRASource{fetcher: fetcher, baseURL: baseURL, minYear: minYear}
}

// Load fetches def.TableID and pivots it.
func (s *SIDRASource) Load(ctx context.Context, def series.Definition) (*series.Table, error) {
	if def.TableID == 0 {
		return nil, fmt.Errorf("series %s: sidra table id is required", def.Name)
	}

	start := time.Now()
	observations, err := s.fetcher.Fetch(ctx, def.TableID)
	if err != nil {
		metrics.ObserveFetch(s.baseURL, string(series.KindSIDRA), "error", time.Since(start))
		return nil, fmt.Errorf("series %s: %w", def.Name, err)
	}
	metrics.ObserveFetch(s.baseURL, string(series.KindSIDRA), "ok", time.Since(start))

	table, err := series.NormalizeObservations(observations, s.minYear)
	if err != nil {
		return nil, fmt.Errorf("series %s: %w", def.Name, err)
	}
	return table, nil
}

// Router dispatches to the source matching a definition's kind.
type Router struct {
	sources map[series.Kind]Source
}

// NewRouter registers html and sidra sources.
func NewRouter(html, sidra Source) *Router {
	return &Router{sources: map[series.Kind]Source{
		series.KindHTMLTable: html,
		series.KindSIDRA:     sidra,
	}}
}

// Load implements Source.
func (r *Router) Load(ctx context.Context, def series.Definition) (*series.Table, error) {
	src, ok := r.sources[def.Kind]
	if !ok || src == nil {
		return nil, fmt.Errorf("series %s: no source for kind %q", def.Name, def.Kind)
	}
	return src.Load(ctx, def)
}
