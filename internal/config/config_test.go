package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 20.0, cfg.Server.RateLimitRPS, 0.001)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 8, cfg.Batch.Concurrency)
	assert.Equal(t, int64(5), cfg.Amount.MinAmount)
	assert.Equal(t, int64(20), cfg.Amount.MinBareAmount)
	assert.Equal(t, int64(1_000_000), cfg.Amount.MaxAmount)
	assert.InDelta(t, 1.0, cfg.Category.MinScore, 0.001)
	assert.InDelta(t, 0.35, cfg.Urgency.ExplicitWeight, 0.001)
	assert.InDelta(t, 0.40, cfg.Urgency.ContextualWeight, 0.001)
	assert.InDelta(t, 0.40, cfg.Urgency.TemporalWeight, 0.001)
	assert.InDelta(t, 1.0, cfg.Urgency.SafetyWeight, 0.001)
	assert.InDelta(t, 0.30, cfg.Urgency.ConsequenceWeight, 0.001)
	assert.InDelta(t, 0.10, cfg.Urgency.EmotionalWeight, 0.001)
	assert.InDelta(t, 0.15, cfg.Urgency.MediumThreshold, 0.001)
	assert.InDelta(t, 0.40, cfg.Urgency.HighThreshold, 0.001)
	assert.InDelta(t, 0.70, cfg.Urgency.CriticalThreshold, 0.001)
	assert.InDelta(t, 0.5, cfg.Urgency.SafetyFloor, 0.001)
	assert.Empty(t, cfg.Corrections.RulesFile)
	assert.Empty(t, cfg.Corrections.Disabled)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  concurrency: 3
urgency:
  critical_threshold: 0.8
corrections:
  rules_file: rules.yaml
  disabled:
    - funeral_high
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Batch.Concurrency)
	assert.InDelta(t, 0.8, cfg.Urgency.CriticalThreshold, 0.001)
	assert.Equal(t, "rules.yaml", cfg.Corrections.RulesFile)
	assert.Equal(t, []string{"funeral_high"}, cfg.Corrections.Disabled)
	// Defaults still apply for unset values
	assert.InDelta(t, 0.40, cfg.Urgency.HighThreshold, 0.001)
	assert.Equal(t, int64(1_000_000), cfg.Amount.MaxAmount)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
batch:
  concurrency: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("INTAKE_LOG_LEVEL", "warn")
	t.Setenv("INTAKE_BATCH_CONCURRENCY", "12")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 12, cfg.Batch.Concurrency)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("INTAKE_SERVER_PORT", "3000")
	t.Setenv("INTAKE_AMOUNT_MAX_AMOUNT", "50000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, int64(50000), cfg.Amount.MaxAmount)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	cfg.Server.RateLimitRPS = 20
	cfg.Server.RateLimitBurst = 40
	cfg.Server.MaxBodyBytes = 1 << 20
	cfg.Batch.Concurrency = 8
	cfg.Amount.MinAmount = 5
	cfg.Amount.MinBareAmount = 20
	cfg.Amount.MaxAmount = 1_000_000
	cfg.Category.MinScore = 1
	return cfg
}

func TestValidate_AllModes(t *testing.T) {
	cfg := validDefaults()
	for _, mode := range []string{"extract", "batch", "serve"} {
		assert.NoError(t, cfg.Validate(mode), mode)
	}
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	// Port is irrelevant outside serve.
	assert.NoError(t, cfg.Validate("extract"))
}

func TestValidateServe_RateLimit(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.RateLimitBurst = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rate_limit_burst")

	cfg.Server.RateLimitRPS = 0
	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.Concurrency = 0
	err := cfg.Validate("batch")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "batch.concurrency must be between 1 and 64")

	cfg.Batch.Concurrency = 65
	err = cfg.Validate("batch")
	assert.Error(t, err)

	cfg.Batch.Concurrency = 64
	assert.NoError(t, cfg.Validate("batch"))
}

func TestValidateAmountBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Amount.MaxAmount = 1

	err := cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount.max_amount")

	cfg.Amount.MaxAmount = 1_000
	cfg.Amount.MinBareAmount = -1
	err = cfg.Validate("extract")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "amount minimums")
}
