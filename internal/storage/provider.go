// Package storage selects the object store that receives published
// artifacts. Each backend lives in its own subpackage.
package storage

import (
	"context"
	"fmt"
	"strings"

	gcsapi "cloud.google.com/go/storage"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/JakeFAU/economic-index-etl/internal/storage/gcs"
	"github.com/JakeFAU/economic-index-etl/internal/storage/local"
	"github.com/JakeFAU/economic-index-etl/internal/storage/memory"
	"github.com/JakeFAU/economic-index-etl/internal/storage/s3"
)

// Supported provider names.
const (
	ProviderS3     = "s3"
	ProviderGCS    = "gcs"
	ProviderLocal  = "local"
	ProviderMemory = "memory"
)

// Store is implemented by every destination backend.
type Store interface {
	// ExistsUnderPrefix reports whether bucket holds at least one key starting with prefix.
	ExistsUnderPrefix(ctx context.Context, bucket, prefix string) (bool, error)
	// PutObject writes data at bucket/key and returns the object URI.
	PutObject(ctx context.Context, bucket, key, contentType string, data []byte) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Provider string       `mapstructure:"provider"`
	S3       s3.Config    `mapstructure:"s3"`
	Local    local.Config `mapstructure:"local"`
}

// Closer releases backend clients. It is a no-op for backends without one.
type Closer func() error

// New constructs the configured backend.
func New(ctx context.Context, cfg Config) (Store, Closer, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderS3:
		var opts []func(*awsconfig.LoadOptions) error
		if cfg.S3.Region != "" {
			opts = append(opts, awsconfig.WithRegion(cfg.S3.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		return s3.New(awsCfg, cfg.S3), noop, nil
	case ProviderGCS:
		client, err := gcsapi.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, client.Close, nil
	case ProviderLocal:
		store, err := local.New(cfg.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("create local store: %w", err)
		}
		return store, noop, nil
	case ProviderMemory:
		return memory.NewBlobStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
	}
}
