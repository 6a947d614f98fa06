package intel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/resilience"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.95, cfg.Weight(model.SourceLocal))
	assert.Equal(t, 0.60, cfg.Weight(model.SourceHeuristic))
	assert.Equal(t, 0.5, cfg.Weight(model.Source("unknown")), "unknown sources get a conservative weight")

	assert.True(t, cfg.IsCritical(model.FieldCarrier))
	assert.True(t, cfg.IsCritical(model.FieldIsValid))
	assert.False(t, cfg.IsCritical(model.FieldTimezones))

	// Remote validators outrank the local parser for carrier data.
	require.NotEmpty(t, cfg.FieldPriorities[model.FieldCarrier])
	assert.Equal(t, model.SourceNumVerify, cfg.FieldPriorities[model.FieldCarrier][0])
	// Validity is the local parser's call first.
	assert.Equal(t, model.SourceLocal, cfg.FieldPriorities[model.FieldIsValid][0])
}

func TestRetryCategory_ToRetryConfig(t *testing.T) {
	rc := RetryCategory{
		MaxAttempts: 5,
		BaseDelayMS: 250,
		MaxDelayMS:  4000,
		Strategy:    string(resilience.StrategyLinear),
		Jitter:      true,
		TimeoutSecs: 7,
	}

	cfg := rc.ToRetryConfig()
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.BaseDelay)
	assert.Equal(t, 4*time.Second, cfg.MaxDelay)
	assert.Equal(t, resilience.StrategyLinear, cfg.Strategy)
	assert.True(t, cfg.Jitter)
	assert.Equal(t, 7*time.Second, cfg.Timeout)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "confidence.yaml")
	content := `
confidence:
  source_weights:
    pattern: 0.45
  field_priorities:
    carrier: [veriphone, numverify]
  scoring:
    single_source_penalty: 0.9
    pair_boost: 1.05
    many_boost: 1.2
    failure_penalty: 0.25
    low_quality_threshold: 35
  max_concurrency: 8
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, 0.45, cfg.Weight(model.SourceHeuristic))
	assert.Equal(t, model.SourceVeriphone, cfg.FieldPriorities[model.FieldCarrier][0])
	assert.Equal(t, 0.9, cfg.Scoring.SingleSourcePenalty)
	assert.Equal(t, 35.0, cfg.Scoring.LowQualityThreshold)
	assert.Equal(t, 8, cfg.MaxConcurrency)

	// Untouched keys keep their defaults.
	assert.Equal(t, 0.95, cfg.Weight(model.SourceLocal))
	assert.Equal(t, model.SourceLocal, cfg.FieldPriorities[model.FieldIsValid][0])
	assert.Equal(t, 3, cfg.Retry.Remote.MaxAttempts)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("confidence: [not: a map"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
