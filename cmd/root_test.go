package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/economic-index-etl/internal/config"
	"github.com/JakeFAU/economic-index-etl/internal/ingest"
)

type fakeApp struct {
	results []ingest.Result
	err     error
	ran     bool
	closed  bool
}

func (f *fakeApp) Run(context.Context) ([]ingest.Result, error) {
	f.ran = true
	return f.results, f.err
}

func (f *fakeApp) Logger() *zap.Logger { return zap.NewNop() }

func (f *fakeApp) Close() { f.closed = true }

func withFakeApp(t *testing.T, fake *fakeApp) *config.Config {
	t.Helper()
	var captured config.Config
	original := newApp
	newApp = func(_ context.Context, cfg config.Config, _ *zap.Logger) (App, error) {
		captured = cfg
		return fake, nil
	}
	t.Cleanup(func() { newApp = original })
	return &captured
}

func execute(args ...string) (string, error) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPublishCommandRunsApp(t *testing.T) {
	fake := &fakeApp{results: []ingest.Result{{
		Series:       "IPCA",
		Destination:  ingest.Destination{Bucket: "raw", Path: "ECONOMIC"},
		State:        ingest.StateUpToDate,
		Action:       ingest.ActionSkipped,
		StoredPeriod: "2024-02",
		LatestPeriod: "2024-02",
	}}}
	cfg := withFakeApp(t, fake)

	out, err := execute("publish", "--target-buckets", "raw, work-area", "--series", "IPCA,INPC", "--path", "INDICES")
	require.NoError(t, err)
	assert.True(t, fake.ran)
	assert.True(t, fake.closed)
	assert.Equal(t, []string{"raw", "work-area"}, cfg.Run.TargetBuckets)
	assert.Equal(t, []string{"IPCA", "INPC"}, cfg.Run.Series)
	assert.Equal(t, "INDICES", cfg.Run.Path)
	assert.Contains(t, out, "IPCA: exit without changes on raw/ECONOMIC")
}

func TestPublishCommandPropagatesRunError(t *testing.T) {
	fake := &fakeApp{err: errors.New("IPCA on raw/ECONOMIC: access denied")}
	withFakeApp(t, fake)

	_, err := execute("publish", "--target-buckets", "raw", "--series", "IPCA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
	assert.True(t, fake.closed, "services are released even when the run fails")
}

func TestPublishCommandRequiresBuckets(t *testing.T) {
	fake := &fakeApp{}
	withFakeApp(t, fake)

	_, err := execute("publish", "--series", "IPCA")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target_buckets")
	assert.False(t, fake.ran)
}

func TestPublishCommandSourceURLNeedsSingleSeries(t *testing.T) {
	withFakeApp(t, &fakeApp{})

	_, err := execute("publish", "--target-buckets", "raw", "--series", "IGPM,IPCA", "--source-url", "https://example.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one series")
}

func TestPublishCommandRejectsSourceURLForSIDRASeries(t *testing.T) {
	fake := &fakeApp{}
	withFakeApp(t, fake)

	_, err := execute("publish", "--target-buckets", "raw", "--series", "IPCA", "--source-url", "https://example.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only applies to html series")
	assert.False(t, fake.ran)
}

func TestSeriesCommandListsCatalog(t *testing.T) {
	original := newApp
	newApp = func(context.Context, config.Config, *zap.Logger) (App, error) {
		t.Fatal("series command must not build the app")
		return nil, nil
	}
	t.Cleanup(func() { newApp = original })

	out, err := execute("series")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, out, "sidra table 1737")
	assert.Contains(t, out, "--source-url")
}

func TestResolveAppWithoutServices(t *testing.T) {
	_, err := resolveApp(context.Background())
	assert.Error(t, err)
}
