// Package config loads and validates ETL configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/JakeFAU/economic-index-etl/internal/series"
	"github.com/JakeFAU/economic-index-etl/internal/state"
	"github.com/JakeFAU/economic-index-etl/internal/storage"
)

// EnvPrefix namespaces environment overrides, e.g. INDEXETL_RUN_PATH.
const EnvPrefix = "INDEXETL"

// Config captures all knobs for a publish run.
type Config struct {
	Run     RunConfig      `mapstructure:"run"`
	Sources SourcesConfig  `mapstructure:"sources"`
	HTTP    HTTPConfig     `mapstructure:"http"`
	Storage storage.Config `mapstructure:"storage"`
	State   state.Config   `mapstructure:"state"`
	Notify  NotifyConfig   `mapstructure:"notify"`
	Metrics MetricsConfig  `mapstructure:"metrics"`
	Logging LoggingConfig  `mapstructure:"logging"`
}

// RunConfig selects what to publish and where.
type RunConfig struct {
	Path          string   `mapstructure:"path"`
	Series        []string `mapstructure:"series"`
	TargetBuckets []string `mapstructure:"target_buckets"`
	SourceURL     string   `mapstructure:"source_url"`
	Debug         bool     `mapstructure:"debug"`
}

// SourcesConfig tunes the upstream adapters.
type SourcesConfig struct {
	HTMLSelector string `mapstructure:"html_selector"`
	SIDRABaseURL string `mapstructure:"sidra_base_url"`
	MinYear      int    `mapstructure:"min_year"`
}

// HTTPConfig configures HTTP client retry behavior.
type HTTPConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	MaxAttempts      int    `mapstructure:"max_attempts"`
	BackoffInitialMs int    `mapstructure:"backoff_initial_ms"`
	BackoffMaxMs     int    `mapstructure:"backoff_max_ms"`
}

// NotifyConfig holds metadata for publication notices.
type NotifyConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// MetricsConfig points at an optional Pushgateway.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"target-buckets": "run.target_buckets",
	"source-url":     "run.source_url",
	"path":           "run.path",
	"series":         "run.series",
	"debug":          "run.debug",
}

// Load builds a Config from defaults, an optional file, the environment and
// any flags in flags that were set explicitly.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Run.Series = splitList(cfg.Run.Series)
	cfg.Run.TargetBuckets = splitList(cfg.Run.TargetBuckets)
	cfg.Run.Path = strings.Trim(strings.TrimSpace(cfg.Run.Path), "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run.path", "ECONOMIC")
	v.SetDefault("run.series", []string{"IGPM"})
	v.SetDefault("run.target_buckets", []string{})
	v.SetDefault("run.source_url", "")
	v.SetDefault("run.debug", false)
	v.SetDefault("sources.html_selector", series.DefaultTableSelector)
	v.SetDefault("sources.sidra_base_url", "https://apisidra.ibge.gov.br/values/")
	v.SetDefault("sources.min_year", series.MinCubeYear)
	v.SetDefault("http.user_agent", "indexetl/1.0")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_attempts", 5)
	v.SetDefault("http.backoff_initial_ms", 500)
	v.SetDefault("http.backoff_max_ms", 8000)
	v.SetDefault("storage.provider", storage.ProviderS3)
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.force_path_style", false)
	v.SetDefault("storage.local.base_dir", "data/buckets")
	v.SetDefault("state.provider", state.ProviderDynamoDB)
	v.SetDefault("state.dynamodb.table", "etl_execution_state")
	v.SetDefault("state.dynamodb.region", "")
	v.SetDefault("state.dynamodb.endpoint", "")
	v.SetDefault("state.postgres.dsn", "")
	v.SetDefault("state.postgres.table", "etl_execution_state")
	v.SetDefault("notify.provider", "none")
	v.SetDefault("notify.project_id", "")
	v.SetDefault("notify.topic", "")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "indexetl")
	v.SetDefault("logging.development", false)
}

// splitList trims entries, splits any that still contain commas and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if len(c.Run.TargetBuckets) == 0 {
		return fmt.Errorf("run.target_buckets must list at least one bucket")
	}
	if len(c.Run.Series) == 0 {
		return fmt.Errorf("run.series must list at least one series")
	}
	if c.Run.SourceURL != "" && len(c.Run.Series) != 1 {
		return fmt.Errorf("run.source_url requires exactly one series, got %d", len(c.Run.Series))
	}
	if _, err := c.Definitions(); err != nil {
		return err
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxAttempts <= 0 {
		return fmt.Errorf("http.max_attempts must be > 0")
	}
	if c.Sources.MinYear <= 0 {
		return fmt.Errorf("sources.min_year must be > 0")
	}
	switch strings.ToLower(c.Notify.Provider) {
	case "", "none", "memory":
	case "pubsub":
		if c.Notify.ProjectID == "" || c.Notify.Topic == "" {
			return fmt.Errorf("notify.project_id and notify.topic must be set when notify.provider is pubsub")
		}
	default:
		return fmt.Errorf("unknown notify.provider %q", c.Notify.Provider)
	}
	return nil
}

// Definitions resolves the configured series against the catalog, applying
// the source url override. HTML series must end up with a locator; SIDRA series
// are addressed by table id and take no override.
func (c Config) Definitions() ([]series.Definition, error) {
	seen := make(map[string]bool, len(c.Run.Series))
	defs := make([]series.Definition, 0, len(c.Run.Series))
	for _, name := range c.Run.Series {
		def, err := series.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("run.series: %w", err)
		}
		if seen[def.Name] {
			continue
		}
		seen[def.Name] = true
		if c.Run.SourceURL != "" {
			if def.Kind != series.KindHTMLTable {
				return nil, fmt.Errorf("series %s is read from sidra table %d; run.source_url only applies to html series",
					def.Name, def.TableID)
			}
			def.Locator = c.Run.SourceURL
		}
		if def.Kind == series.KindHTMLTable && def.Locator == "" {
			return nil, fmt.Errorf("series %s needs run.source_url (--source-url)", def.Name)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// BackoffInitial converts the first retry delay into a duration.
func (c Config) BackoffInitial() time.Duration {
	return time.Duration(c.HTTP.BackoffInitialMs) * time.Millisecond
}

// BackoffMax converts the retry delay cap into a duration.
func (c Config) BackoffMax() time.Duration {
	return time.Duration(c.HTTP.BackoffMaxMs) * time.Millisecond
}
