// Package state selects the durable store that records the last ingested
// reference period per (series, destination).
package state

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/JakeFAU/economic-index-etl/internal/ingest"
	"github.com/JakeFAU/economic-index-etl/internal/state/dynamodb"
	"github.com/JakeFAU/economic-index-etl/internal/state/memory"
	"github.com/JakeFAU/economic-index-etl/internal/state/postgres"
)

// Supported provider names.
const (
	ProviderDynamoDB = "dynamodb"
	ProviderPostgres = "postgres"
	ProviderMemory   = "memory"
)

// Config selects and configures a state backend.
type Config struct {
	Provider string          `mapstructure:"provider"`
	DynamoDB dynamodb.Config `mapstructure:"dynamodb"`
	Postgres postgres.Config `mapstructure:"postgres"`
}

// New constructs the configured backend and a function that releases it.
func New(ctx context.Context, cfg Config) (ingest.StateStore, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderDynamoDB:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.DynamoDB.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.DynamoDB.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		return dynamodb.New(awsCfg, cfg.DynamoDB), noop, nil
	case ProviderPostgres:
		store, err := postgres.NewStateStore(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case ProviderMemory:
		return memory.NewStateStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported state provider %q", cfg.Provider)
	}
}
