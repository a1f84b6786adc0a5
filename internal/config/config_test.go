package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/transient/internal/retry"
	"github.com/vvka-141/transient/pkg/transient"
)

func TestLoad_AllFields(t *testing.T) {
	dir := t.TempDir()
	content := `default: db
strategies:
  - name: db
    kind: exponential
    retry_count: 5
    fast_first_retry: false
    min_backoff: 100ms
    max_backoff: 2s
    delta_backoff: 50ms
  - name: queue
    kind: incremental
    initial_interval: 200ms
    increment: 100ms
  - name: poll
    kind: fixed
    retry_count: 3
    interval: 1m30s
  - name: http
    kind: backoff
    initial_interval: 10ms
    max_interval: 1s
    multiplier: 2
    randomization_factor: 0.25

technologies:
  database-connection: db
  messaging-request: queue
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "db", cfg.Default)
	require.Len(t, cfg.Strategies, 4)
	db := cfg.Strategies[0]
	assert.Equal(t, "db", db.Name)
	assert.Equal(t, KindExponential, db.Kind)
	require.NotNil(t, db.RetryCount)
	assert.Equal(t, 5, *db.RetryCount)
	require.NotNil(t, db.FastFirstRetry)
	assert.False(t, *db.FastFirstRetry)
	assert.Equal(t, "100ms", db.MinBackoff)
	assert.Equal(t, "1m30s", cfg.Strategies[2].Interval)
	require.NotNil(t, cfg.Strategies[3].Multiplier)
	assert.Equal(t, 2.0, *cfg.Strategies[3].Multiplier)
	assert.Equal(t, "queue", cfg.Technologies[transient.TechnologyMessagingRequest])
}

func TestLoad_FileNotFound(t *testing.T) {
	cfg, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrConfigNotFound), "expected ErrConfigNotFound, got: %v", err)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{{invalid"), 0644))

	cfg, err := Load(dir)
	assert.ErrorIs(t, err, transient.ErrInvalidConfig)
	assert.Nil(t, cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(""), 0644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, Config{}, *cfg)
	assert.Equal(t, transient.DefaultStrategyName, cfg.DefaultName())
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{
			name:     "unknown_top_level_key",
			content:  "defaults: x\n",
			wantPath: "/",
		},
		{
			name:     "unknown_kind",
			content:  "strategies:\n  - name: a\n    kind: linear\n",
			wantPath: "/strategies/0/kind",
		},
		{
			name:     "missing_name",
			content:  "strategies:\n  - kind: fixed\n",
			wantPath: "/strategies/0",
		},
		{
			name:     "negative_retry_count",
			content:  "strategies:\n  - name: a\n    kind: fixed\n    retry_count: -1\n",
			wantPath: "/strategies/0/retry_count",
		},
		{
			name:     "bad_duration",
			content:  "strategies:\n  - name: a\n    kind: fixed\n    interval: soon\n",
			wantPath: "/strategies/0/interval",
		},
		{
			name:     "randomization_out_of_range",
			content:  "strategies:\n  - name: a\n    kind: backoff\n    randomization_factor: 2\n",
			wantPath: "/strategies/0/randomization_factor",
		},
		{
			name:     "technology_not_string",
			content:  "technologies:\n  cache: [a, b]\n",
			wantPath: "/technologies/cache",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, transient.ErrInvalidConfig)

			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
			var paths []string
			for _, v := range verrs {
				paths = append(paths, v.Path)
			}
			assert.Contains(t, paths, tt.wantPath)
		})
	}
}

func TestSchema_Embedded(t *testing.T) {
	assert.Contains(t, string(Schema()), `"strategies"`)
	_, err := getCompiledSchema()
	require.NoError(t, err)
}

func TestBuild_Defaults(t *testing.T) {
	r, err := Default().Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"default", "fixed", "incremental"}, r.Names())
	s, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, transient.DefaultStrategyName, s.Name())
}

func TestBuild_ConfiguredStrategies(t *testing.T) {
	cfg, err := Parse([]byte(`default: db
strategies:
  - name: db
    kind: fixed
    retry_count: 2
    interval: 250ms
  - name: fixed
    kind: fixed
    retry_count: 1
  - name: http
    kind: backoff
technologies:
  database-connection: db
`))
	require.NoError(t, err)

	r, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "default", "fixed", "http", "incremental"}, r.Names())

	s, err := r.ResolveForTechnology(transient.TechnologyDatabaseConnection)
	require.NoError(t, err)
	assert.Equal(t, "db", s.Name())
	assert.Equal(t, 2, s.RetryCount())

	// Configured strategy replaces the built-in of the same name.
	s, err = r.Resolve("fixed")
	require.NoError(t, err)
	assert.Equal(t, 1, s.RetryCount())

	s, err = r.Resolve("http")
	require.NoError(t, err)
	_, ok := s.(*retry.BackOffStrategy)
	assert.True(t, ok, "expected *retry.BackOffStrategy, got %T", s)
	assert.Equal(t, transient.DefaultRetryCount, s.RetryCount())
}

func TestBuild_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown_default", Config{Default: "ghost"}},
		{"technology_to_missing_strategy", Config{Technologies: map[string]string{"cache": "ghost"}}},
		{"duplicate", Config{Strategies: []StrategyConfig{{Name: "a", Kind: KindFixed}, {Name: "a", Kind: KindFixed}}}},
		{"unknown_kind", Config{Strategies: []StrategyConfig{{Name: "a", Kind: "linear"}}}},
		{"bad_duration", Config{Strategies: []StrategyConfig{{Name: "a", Kind: KindIncremental, Increment: "fast"}}}},
		{"max_below_min", Config{Strategies: []StrategyConfig{{Name: "a", Kind: KindExponential, MinBackoff: "2s", MaxBackoff: "1s"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cfg.Build()
			assert.ErrorIs(t, err, transient.ErrInvalidConfig)
		})
	}
}

// Strategies built from configuration behave like the ones built directly.
func TestBuild_RoundTrip(t *testing.T) {
	jitter := retry.WithJitterFunc(func() float64 { return 0.5 })

	tests := []struct {
		name   string
		doc    string
		direct func() (transient.BackoffStrategy, error)
	}{
		{
			name: "fixed",
			doc:  "strategies:\n  - name: s\n    kind: fixed\n    retry_count: 5\n    interval: 1s\n    fast_first_retry: false\n",
			direct: func() (transient.BackoffStrategy, error) {
				return retry.NewFixedInterval(5, time.Second, retry.WithFastFirstRetry(false))
			},
		},
		{
			name: "incremental",
			doc:  "strategies:\n  - name: s\n    kind: incremental\n    retry_count: 5\n    initial_interval: 5s\n    increment: 2s\n",
			direct: func() (transient.BackoffStrategy, error) {
				return retry.NewIncremental(5, 5*time.Second, 2*time.Second)
			},
		},
		{
			name: "exponential",
			doc:  "strategies:\n  - name: s\n    kind: exponential\n    retry_count: 8\n    min_backoff: 100ms\n    max_backoff: 5s\n    delta_backoff: 40ms\n",
			direct: func() (transient.BackoffStrategy, error) {
				return retry.NewExponentialBackoff(8, 100*time.Millisecond, 5*time.Second, 40*time.Millisecond, jitter)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			// Marshal and parse again so the document itself round-trips.
			data, err := Marshal(cfg)
			require.NoError(t, err)
			cfg, err = Parse(data)
			require.NoError(t, err)

			r, err := cfg.Build(jitter)
			require.NoError(t, err)
			fromConfig, err := r.Resolve("s")
			require.NoError(t, err)

			direct, err := tt.direct()
			require.NoError(t, err)

			assert.Equal(t, direct.RetryCount(), fromConfig.RetryCount())
			assert.Equal(t, direct.FastFirstRetry(), fromConfig.FastFirstRetry())

			got, want := fromConfig.NewDecision(), direct.NewDecision()
			for attempt := 0; attempt <= direct.RetryCount()+1; attempt++ {
				gotRetry, gotDelay := got(attempt, nil)
				wantRetry, wantDelay := want(attempt, nil)
				assert.Equal(t, wantRetry, gotRetry, "attempt %d", attempt)
				assert.Equal(t, wantDelay, gotDelay, "attempt %d", attempt)
			}
		})
	}
}
