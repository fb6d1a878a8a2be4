// Package config loads intake configuration from config.yaml and INTAKE_*
// environment variables.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config is the top-level configuration.
type Config struct {
	Log         LogConfig        `yaml:"log" mapstructure:"log"`
	Server      ServerConfig     `yaml:"server" mapstructure:"server"`
	Batch       BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Amount      AmountConfig     `yaml:"amount" mapstructure:"amount"`
	Category    CategoryConfig   `yaml:"category" mapstructure:"category"`
	Urgency     UrgencyConfig    `yaml:"urgency" mapstructure:"urgency"`
	Corrections CorrectionConfig `yaml:"corrections" mapstructure:"corrections"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP extraction server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	RateLimitRPS   float64  `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	CORSOrigins    []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// BatchConfig configures batch evaluation.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// AmountConfig bounds plausible goal amounts.
type AmountConfig struct {
	MinAmount     int64 `yaml:"min_amount" mapstructure:"min_amount"`
	MinBareAmount int64 `yaml:"min_bare_amount" mapstructure:"min_bare_amount"`
	MaxAmount     int64 `yaml:"max_amount" mapstructure:"max_amount"`
}

// CategoryConfig tunes the category classifier.
type CategoryConfig struct {
	MinScore float64 `yaml:"min_score" mapstructure:"min_score"`
}

// UrgencyConfig holds layer weights and level thresholds for urgency scoring.
type UrgencyConfig struct {
	ExplicitWeight    float64 `yaml:"explicit_weight" mapstructure:"explicit_weight"`
	ContextualWeight  float64 `yaml:"contextual_weight" mapstructure:"contextual_weight"`
	TemporalWeight    float64 `yaml:"temporal_weight" mapstructure:"temporal_weight"`
	SafetyWeight      float64 `yaml:"safety_weight" mapstructure:"safety_weight"`
	ConsequenceWeight float64 `yaml:"consequence_weight" mapstructure:"consequence_weight"`
	EmotionalWeight   float64 `yaml:"emotional_weight" mapstructure:"emotional_weight"`

	MediumThreshold   float64 `yaml:"medium_threshold" mapstructure:"medium_threshold"`
	HighThreshold     float64 `yaml:"high_threshold" mapstructure:"high_threshold"`
	CriticalThreshold float64 `yaml:"critical_threshold" mapstructure:"critical_threshold"`

	// SafetyFloor is the safety-layer score at or above which the overall
	// score is raised to CriticalThreshold.
	SafetyFloor float64 `yaml:"safety_floor" mapstructure:"safety_floor"`
	// MinContribution is the weighted value a layer needs to be listed in reasons.
	MinContribution float64 `yaml:"min_contribution" mapstructure:"min_contribution"`
}

// CorrectionConfig selects the correction stages.
type CorrectionConfig struct {
	// RulesFile replaces the built-in stages with stages loaded from YAML.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
	// Disabled lists stage IDs to drop from the active list.
	Disabled []string `yaml:"disabled" mapstructure:"disabled"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit_rps", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("batch.concurrency", 8)
	v.SetDefault("amount.min_amount", 5)
	v.SetDefault("amount.min_bare_amount", 20)
	v.SetDefault("amount.max_amount", 1_000_000)
	v.SetDefault("category.min_score", 1.0)
	v.SetDefault("urgency.explicit_weight", 0.35)
	v.SetDefault("urgency.contextual_weight", 0.40)
	v.SetDefault("urgency.temporal_weight", 0.40)
	v.SetDefault("urgency.safety_weight", 1.0)
	v.SetDefault("urgency.consequence_weight", 0.30)
	v.SetDefault("urgency.emotional_weight", 0.10)
	v.SetDefault("urgency.medium_threshold", 0.15)
	v.SetDefault("urgency.high_threshold", 0.40)
	v.SetDefault("urgency.critical_threshold", 0.70)
	v.SetDefault("urgency.safety_floor", 0.5)
	v.SetDefault("urgency.min_contribution", 0.02)
	v.SetDefault("corrections.rules_file", "")
	v.SetDefault("corrections.disabled", []string{})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
