package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/economic-index-etl/internal/artifact"
	"github.com/JakeFAU/economic-index-etl/internal/metrics"
)

// Config controls Publisher behavior.
type Config struct {
	// Topic receives ArtifactPublished events when a Notifier is configured.
	Topic string
}

// Publisher evaluates each destination independently and publishes when needed.
type Publisher struct {
	destinations DestinationStore
	states       StateStore
	notifier     Notifier
	hasher       Hasher
	clock        Clock
	cfg          Config
	logger       *zap.Logger
}

// New constructs a Publisher. notifier may be nil.
func New(
	destinations DestinationStore,
	states StateStore,
	notifier Notifier,
	hasher Hasher,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		destinations: destinations,
		states:       states,
		notifier:     notifier,
		hasher:       hasher,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// snapshot is computed once per job and shared read-only by every destination.
type snapshot struct {
	job     Job
	latest  string
	payload []byte
	digest  string
	runAt   time.Time
}

// Publish runs the publish decision for every destination in order. A failure on one
// destination is recorded in its Result and never stops the remaining ones.
func (p *Publisher) Publish(ctx context.Context, job Job, destinations []Destination) []Result {
	results := make([]Result, 0, len(destinations))
	snap, err := p.prepare(job)
	if err != nil {
		for _, dest := range destinations {
			result := p.fail(job, dest, StateUnknown, "", err)
			p.report(result)
			results = append(results, result)
		}
		return results
	}
	for _, dest := range destinations {
		result := p.publishOne(ctx, snap, dest)
		p.report(result)
		results = append(results, result)
	}
	return results
}

func (p *Publisher) prepare(job Job) (snapshot, error) {
	if job.Table == nil || job.Table.Latest.IsZero() {
		return snapshot{}, fmt.Errorf("series %s has no latest period", job.Series.Name)
	}
	payload, err := artifact.EncodeCSV(job.Table)
	if err != nil {
		return snapshot{}, err
	}
	digest, err := p.hasher.Hash(payload)
	if err != nil {
		return snapshot{}, fmt.Errorf("hash payload: %w", err)
	}
	return snapshot{
		job:     job,
		latest:  job.Table.Latest.String(),
		payload: payload,
		digest:  digest,
		runAt:   p.clock.Now().UTC(),
	}, nil
}

func (p *Publisher) publishOne(ctx context.Context, snap snapshot, dest Destination) Result {
	name := snap.job.Series.Name
	prefix := artifact.Prefix(dest.Bucket, dest.Path, name)
	target := artifact.Target(dest.Bucket, dest.Path, name)

	exists, err := p.destinations.ExistsUnderPrefix(ctx, dest.Bucket, prefix)
	if err != nil {
		return p.fail(snap.job, dest, StateUnknown, "", fmt.Errorf("check prefix %s: %w", prefix, err))
	}
	if !exists {
		return p.write(ctx, snap, dest, StateUninitialized, "", target)
	}

	stored, found, err := p.states.Get(ctx, snap.job.Series.StateID, target)
	if err != nil {
		return p.fail(snap.job, dest, StateUnknown, "", fmt.Errorf("read state %s: %w", target, err))
	}
	if !found {
		return p.write(ctx, snap, dest, StateInitializedNoState, "", target)
	}
	if stored.LastReferencePeriod == snap.latest {
		return Result{
			Series:       name,
			Destination:  dest,
			State:        StateUpToDate,
			Action:       ActionSkipped,
			StoredPeriod: stored.LastReferencePeriod,
			LatestPeriod: snap.latest,
		}
	}
	return p.write(ctx, snap, dest, StateStale, stored.LastReferencePeriod, target)
}

func (p *Publisher) write(
	ctx context.Context,
	snap snapshot,
	dest Destination,
	state DestinationState,
	storedPeriod string,
	target string,
) Result {
	job := snap.job
	key := artifact.ObjectKey(dest.Bucket, dest.Path, job.Series.Name, job.Table.Latest, snap.runAt)
	uri, err := p.destinations.PutObject(ctx, dest.Bucket, key, artifact.ContentType, snap.payload)
	if err != nil {
		return p.fail(job, dest, state, storedPeriod, fmt.Errorf("put object %s: %w", key, err))
	}

	executedAt := p.clock.Now().UTC()
	next := IngestionState{
		SeriesID:            job.Series.StateID,
		LastReferencePeriod: snap.latest,
		LastExecutionTime:   executedAt,
		TargetDestination:   target,
	}
	if err := p.states.Put(ctx, next); err != nil {
		result := p.fail(job, dest, state, storedPeriod, fmt.Errorf("write state %s: %w", target, err))
		result.Key = key
		result.URI = uri
		return result
	}

	result := Result{
		Series:       job.Series.Name,
		Destination:  dest,
		State:        state,
		Action:       ActionPublished,
		Key:          key,
		URI:          uri,
		StoredPeriod: storedPeriod,
		LatestPeriod: snap.latest,
		Digest:       snap.digest,
		Bytes:        len(snap.payload),
	}
	p.notify(ctx, job, result, executedAt)
	return result
}

func (p *Publisher) notify(ctx context.Context, job Job, result Result, at time.Time) {
	if p.notifier == nil {
		return
	}
	event := ArtifactPublished{
		RunID:           job.RunID,
		Series:          job.Series.Name,
		Bucket:          result.Destination.Bucket,
		Key:             result.Key,
		URI:             result.URI,
		ReferencePeriod: result.LatestPeriod,
		Digest:          result.Digest,
		PublishedAt:     at,
	}
	id, err := p.notifier.Publish(ctx, p.cfg.Topic, event)
	if err != nil {
		p.logger.Warn("publication notice failed",
			zap.String("series", job.Series.Name),
			zap.String("bucket", result.Destination.Bucket),
			zap.Error(err))
		return
	}
	p.logger.Debug("publication notice sent", zap.String("message_id", id))
}

func (p *Publisher) fail(job Job, dest Destination, state DestinationState, stored string, err error) Result {
	latest := ""
	if job.Table != nil && !job.Table.Latest.IsZero() {
		latest = job.Table.Latest.String()
	}
	return Result{
		Series:       job.Series.Name,
		Destination:  dest,
		State:        state,
		Action:       ActionFailed,
		StoredPeriod: stored,
		LatestPeriod: latest,
		Err:          err,
	}
}

func (p *Publisher) report(result Result) {
	metrics.ObservePublish(result.Series, string(result.State), string(result.Action), result.Bytes)
	fields := []zap.Field{
		zap.String("series", result.Series),
		zap.String("bucket", result.Destination.Bucket),
		zap.String("state", string(result.State)),
		zap.String("action", string(result.Action)),
		zap.String("stored_period", result.StoredPeriod),
		zap.String("latest_period", result.LatestPeriod),
	}
	switch result.Action {
	case ActionFailed:
		p.logger.Error(result.Status(), append(fields, zap.Error(result.Err))...)
	case ActionPublished:
		p.logger.Info(result.Status(), append(fields, zap.String("key", result.Key), zap.String("sha256", result.Digest))...)
	default:
		p.logger.Info(result.Status(), fields...)
	}
}

// Failed returns the errors of every failed result, joined.
func Failed(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Action == ActionFailed {
			errs = append(errs, fmt.Errorf("%s on %s: %w", r.Series, r.Destination, r.Err))
		}
	}
	return errors.Join(errs...)
}
