package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
run:
  path: /INDICES/
  series: [IPCA, INPC]
  target_buckets: [raw, " curated "]
sources:
  min_year: 2000
http:
  timeout_seconds: 45
  max_attempts: 3
  backoff_initial_ms: 100
  backoff_max_ms: 500
storage:
  provider: local
  local:
    base_dir: /tmp/buckets
state:
  provider: postgres
  postgres:
    dsn: postgres://etl@localhost/etl
notify:
  provider: pubsub
  project_id: proj
  topic: artifacts
logging:
  development: true
`)

	cfg, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Run.Path != "INDICES" {
		t.Fatalf("expected trimmed path INDICES, got %q", cfg.Run.Path)
	}
	if strings.Join(cfg.Run.TargetBuckets, ",") != "raw,curated" {
		t.Fatalf("expected trimmed buckets, got %v", cfg.Run.TargetBuckets)
	}
	if cfg.Storage.Provider != "local" || cfg.Storage.Local.BaseDir != "/tmp/buckets" {
		t.Fatalf("expected storage overrides, got %+v", cfg.Storage)
	}
	if cfg.State.Provider != "postgres" || cfg.State.Postgres.DSN == "" {
		t.Fatalf("expected state overrides, got %+v", cfg.State)
	}
	if cfg.State.Postgres.Table != "etl_execution_state" {
		t.Fatalf("expected default table, got %q", cfg.State.Postgres.Table)
	}
	if cfg.Sources.MinYear != 2000 || !cfg.Logging.Development {
		t.Fatalf("unexpected sources/logging: %+v %+v", cfg.Sources, cfg.Logging)
	}
	if got := cfg.Timeout(); got != 45*time.Second {
		t.Fatalf("expected timeout 45s, got %v", got)
	}
	if cfg.BackoffInitial() != 100*time.Millisecond || cfg.BackoffMax() != 500*time.Millisecond {
		t.Fatalf("unexpected backoff durations")
	}

	defs, err := cfg.Definitions()
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	if len(defs) != 2 || defs[0].TableID != 1737 || defs[1].TableID != 1736 {
		t.Fatalf("unexpected definitions: %+v", defs)
	}
}

func TestLoadDefaultsWithFlags(t *testing.T) {
	t.Parallel()

	flags := pflag.NewFlagSet("publish", pflag.ContinueOnError)
	flags.StringSlice("target-buckets", nil, "")
	flags.String("source-url", "", "")
	flags.String("path", "ECONOMIC", "")
	flags.StringSlice("series", []string{"IGPM"}, "")
	flags.Bool("debug", false, "")
	if err := flags.Parse([]string{
		"--target-buckets", "raw, work-area ,",
		"--source-url", "https://example.test/igpm",
		"--debug",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load("", flags)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if strings.Join(cfg.Run.TargetBuckets, "|") != "raw|work-area" {
		t.Fatalf("expected whitespace-stripped buckets, got %q", cfg.Run.TargetBuckets)
	}
	if cfg.Run.Path != "ECONOMIC" || strings.Join(cfg.Run.Series, ",") != "IGPM" || !cfg.Run.Debug {
		t.Fatalf("unexpected run config %+v", cfg.Run)
	}
	if cfg.Storage.Provider != "s3" || cfg.State.Provider != "dynamodb" {
		t.Fatalf("unexpected provider defaults %q %q", cfg.Storage.Provider, cfg.State.Provider)
	}
	if cfg.State.DynamoDB.Table != "etl_execution_state" {
		t.Fatalf("expected composite-key state table, got %q", cfg.State.DynamoDB.Table)
	}
	if cfg.HTTP.MaxAttempts != 5 || cfg.HTTP.UserAgent != "indexetl/1.0" {
		t.Fatalf("unexpected http defaults %+v", cfg.HTTP)
	}

	defs, err := cfg.Definitions()
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	if len(defs) != 1 || defs[0].Locator != "https://example.test/igpm" {
		t.Fatalf("expected source url override, got %+v", defs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() Config {
		return Config{
			Run: RunConfig{
				Path:          "ECONOMIC",
				Series:        []string{"IPCA"},
				TargetBuckets: []string{"raw"},
			},
			Sources: SourcesConfig{MinYear: 1994},
			HTTP:    HTTPConfig{TimeoutSeconds: 30, MaxAttempts: 5},
			Notify:  NotifyConfig{Provider: "none"},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no buckets", func(c *Config) { c.Run.TargetBuckets = nil }, "target_buckets"},
		{"no series", func(c *Config) { c.Run.Series = nil }, "run.series"},
		{"unknown series", func(c *Config) { c.Run.Series = []string{"SELIC"} }, "unknown series"},
		{"source url with many series", func(c *Config) {
			c.Run.Series = []string{"IPCA", "INPC"}
			c.Run.SourceURL = "https://example.test"
		}, "exactly one series"},
		{"html series without url", func(c *Config) { c.Run.Series = []string{"IGPM"} }, "source_url"},
		{"source url on sidra series", func(c *Config) { c.Run.SourceURL = "https://example.test" }, "only applies to html series"},
		{"source url on html series", func(c *Config) {
			c.Run.Series = []string{"IGPM"}
			c.Run.SourceURL = "https://example.test/igpm"
		}, ""},
		{"zero timeout", func(c *Config) { c.HTTP.TimeoutSeconds = 0 }, "timeout_seconds"},
		{"zero attempts", func(c *Config) { c.HTTP.MaxAttempts = 0 }, "max_attempts"},
		{"zero min year", func(c *Config) { c.Sources.MinYear = 0 }, "min_year"},
		{"pubsub without topic", func(c *Config) { c.Notify.Provider = "pubsub" }, "notify.topic"},
		{"unknown notifier", func(c *Config) { c.Notify.Provider = "smtp" }, "notify.provider"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestDefinitionsDeduplicates(t *testing.T) {
	t.Parallel()

	cfg := Config{Run: RunConfig{Series: []string{"ipca", "IPCA", "inpc"}}}
	defs, err := cfg.Definitions()
	if err != nil {
		t.Fatalf("Definitions() error = %v", err)
	}
	if len(defs) != 2 || defs[0].Name != "IPCA" || defs[1].Name != "INPC" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
}
