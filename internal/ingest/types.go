// Package ingest implements the incremental publisher: for every configured destination
// it decides whether the newest reference period still has to be written, writes the
// snapshot when needed and advances the stored ingestion state.
package ingest

import (
	"fmt"
	"time"

	"github.com/JakeFAU/economic-index-etl/internal/series"
)

// IngestionState is the durable "last processed" marker of a (series, destination) pair.
type IngestionState struct {
	SeriesID            string    `json:"series_id"`
	LastReferencePeriod string    `json:"reference_period"`
	LastExecutionTime   time.Time `json:"last_execution"`
	TargetDestination   string    `json:"target_bucket"`
}

// Destination is a bucket plus the sub-path prefix snapshots are written under.
type Destination struct {
	Bucket string
	Path   string
}

// String renders the destination as bucket/path.
func (d Destination) String() string {
	if d.Path == "" {
		return d.Bucket
	}
	return d.Bucket + "/" + d.Path
}

// Job is one series ready to publish.
type Job struct {
	RunID  string
	Series series.Definition
	Table  *series.Table
}

// DestinationState classifies a destination before the publish decision.
type DestinationState string

// Destination states, in evaluation order.
const (
	StateUnknown            DestinationState = "unknown"
	StateUninitialized      DestinationState = "uninitialized"
	StateInitializedNoState DestinationState = "initialized_no_state"
	StateUpToDate           DestinationState = "up_to_date"
	StateStale              DestinationState = "stale"
)

// Action is what the publisher did for a destination.
type Action string

// Publish outcomes.
const (
	ActionPublished Action = "published"
	ActionSkipped   Action = "skipped"
	ActionFailed    Action = "failed"
)

// Result is the isolated outcome of one destination.
type Result struct {
	Series       string
	Destination  Destination
	State        DestinationState
	Action       Action
	Key          string
	URI          string
	StoredPeriod string
	LatestPeriod string
	Digest       string
	Bytes        int
	Err          error
}

// Status renders a human-readable line describing the decision.
func (r Result) Status() string {
	switch r.Action {
	case ActionPublished:
		return fmt.Sprintf("%s: published %s to %s (%s, stored %q, latest %s)",
			r.Series, r.Key, r.Destination, r.State, r.StoredPeriod, r.LatestPeriod)
	case ActionSkipped:
		return fmt.Sprintf("%s: exit without changes on %s (last extracted %s, latest available %s)",
			r.Series, r.Destination, r.StoredPeriod, r.LatestPeriod)
	default:
		return fmt.Sprintf("%s: failed on %s (%s): %v", r.Series, r.Destination, r.State, r.Err)
	}
}

// ArtifactPublished is the notification payload sent after a successful publish.
type ArtifactPublished struct {
	RunID           string    `json:"run_id"`
	Series          string    `json:"series"`
	Bucket          string    `json:"bucket"`
	Key             string    `json:"key"`
	URI             string    `json:"uri"`
	ReferencePeriod string    `json:"reference_period"`
	Digest          string    `json:"sha256"`
	PublishedAt     time.Time `json:"published_at"`
}
