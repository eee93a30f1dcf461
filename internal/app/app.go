// Package app wires configuration into long-lived services and runs one
// publish pass over the configured series.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/economic-index-etl/internal/clock/system"
	"github.com/JakeFAU/economic-index-etl/internal/config"
	collyfetcher "github.com/JakeFAU/economic-index-etl/internal/fetcher/colly"
	"github.com/JakeFAU/economic-index-etl/internal/fetcher/sidra"
	"github.com/JakeFAU/economic-index-etl/internal/hash/sha256"
	"github.com/JakeFAU/economic-index-etl/internal/id/uuid"
	"github.com/JakeFAU/economic-index-etl/internal/ingest"
	"github.com/JakeFAU/economic-index-etl/internal/metrics"
	memorypub "github.com/JakeFAU/economic-index-etl/internal/publisher/memory"
	"github.com/JakeFAU/economic-index-etl/internal/publisher/pubsub"
	"github.com/JakeFAU/economic-index-etl/internal/retry"
	"github.com/JakeFAU/economic-index-etl/internal/series"
	"github.com/JakeFAU/economic-index-etl/internal/source"
	"github.com/JakeFAU/economic-index-etl/internal/state"
	"github.com/JakeFAU/economic-index-etl/internal/storage"
)

// IDGenerator issues run ids.
type IDGenerator interface {
	NewID() (string, error)
}

// App holds the services shared by a run.
type App struct {
	cfg          config.Config
	logger       *zap.Logger
	defs         []series.Definition
	destinations []ingest.Destination
	source       source.Source
	publisher    *ingest.Publisher
	ids          IDGenerator
	closers      []func() error
}

// New builds every provider named in cfg. It fails fast and releases whatever
// was already opened.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	store, closeStore, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init destination store: %w", err)
	}
	closers = append(closers, closeStore)
	logger.Info("destination store ready", zap.String("provider", cfg.Storage.Provider))

	states, releaseStates, err := state.New(ctx, cfg.State)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init state store: %w", err)
	}
	closers = append(closers, func() error { releaseStates(); return nil })
	logger.Info("state store ready", zap.String("provider", cfg.State.Provider))

	notifier, closeNotifier, err := newNotifier(ctx, cfg.Notify)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	closers = append(closers, closeNotifier)

	policy := retry.NewExponentialPolicy(retry.Config{
		MaxAttempts: cfg.HTTP.MaxAttempts,
		BaseDelay:   cfg.BackoffInitial(),
		MaxDelay:    cfg.BackoffMax(),
	})
	pages := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Timeout(),
	})
	cubes := sidra.New(sidra.Config{
		BaseURL:   cfg.Sources.SIDRABaseURL,
		UserAgent: cfg.HTTP.UserAgent,
		Timeout:   cfg.Timeout(),
	}, nil, policy, logger.Named("sidra"))
	router := source.NewRouter(
		source.NewHTMLSource(pages, cfg.Sources.HTMLSelector, logger.Named("html")),
		source.NewSIDRASource(cubes, cfg.Sources.SIDRABaseURL, cfg.Sources.MinYear),
	)

	publisher := ingest.New(
		store,
		states,
		notifier,
		sha256.New(),
		system.New(),
		ingest.Config{Topic: cfg.Notify.Topic},
		logger.Named("ingest"),
	)

	a, err := NewWithDeps(cfg, logger, router, publisher, uuid.New(), closers...)
	if err != nil {
		cleanup()
		return nil, err
	}
	return a, nil
}

// NewWithDeps assembles an App from prebuilt services, mainly for tests.
func NewWithDeps(
	cfg config.Config,
	logger *zap.Logger,
	src source.Source,
	publisher *ingest.Publisher,
	ids IDGenerator,
	closers ...func() error,
) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	destinations := make([]ingest.Destination, 0, len(cfg.Run.TargetBuckets))
	for _, bucket := range cfg.Run.TargetBuckets {
		destinations = append(destinations, ingest.Destination{Bucket: bucket, Path: cfg.Run.Path})
	}
	return &App{
		cfg:          cfg,
		logger:       logger,
		defs:         defs,
		destinations: destinations,
		source:       src,
		publisher:    publisher,
		ids:          ids,
		closers:      closers,
	}, nil
}

func newNotifier(ctx context.Context, cfg config.NotifyConfig) (ingest.Notifier, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, noop, nil
	case "memory":
		return memorypub.New(), noop, nil
	case "pubsub":
		pub, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return pub, pub.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown notify provider %q", cfg.Provider)
	}
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Run loads and publishes every configured series in order. A failing series
// or destination is logged and recorded; the rest still run. The returned
// error joins every failure.
func (a *App) Run(ctx context.Context) ([]ingest.Result, error) {
	runID, err := a.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("run id: %w", err)
	}
	logger := a.logger.With(zap.String("run_id", runID))
	logger.Info("run started",
		zap.Int("series", len(a.defs)),
		zap.Strings("buckets", a.cfg.Run.TargetBuckets),
		zap.String("path", a.cfg.Run.Path))

	var (
		results []ingest.Result
		errs    []error
	)
	for _, def := range a.defs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("run interrupted: %w", err))
			break
		}
		table, err := a.source.Load(ctx, def)
		if err != nil {
			metrics.ObserveSeriesFailure(def.Name)
			logger.Error("series failed", zap.String("series", def.Name), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		metrics.SetLatestPeriod(def.Name, table.Latest.Year*100+table.Latest.Month)
		logger.Debug("series loaded",
			zap.String("series", def.Name),
			zap.Int("rows", len(table.Rows)),
			zap.String("latest_period", table.Latest.String()))

		published := a.publisher.Publish(ctx, ingest.Job{RunID: runID, Series: def, Table: table}, a.destinations)
		results = append(results, published...)
		if err := ingest.Failed(published); err != nil {
			errs = append(errs, err)
		}
	}

	metrics.MarkRunFinished(time.Now())
	if err := metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
		logger.Warn("metrics push failed", zap.Error(err))
	}

	runErr := errors.Join(errs...)
	logger.Info("run finished", zap.Int("results", len(results)), zap.Bool("failed", runErr != nil))
	return results, runErr
}

// Close releases every service in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("error closing service", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
