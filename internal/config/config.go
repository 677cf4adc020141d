// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Serper     SerperConfig     `yaml:"serper" mapstructure:"serper"`
	Limits     LimitsConfig     `yaml:"limits" mapstructure:"limits"`
	Thresholds ThresholdsConfig `yaml:"thresholds" mapstructure:"thresholds"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// NotionConfig holds Notion API credentials, database IDs, and the
// optional per-deployment property-name overrides.
type NotionConfig struct {
	Token       string `yaml:"token" mapstructure:"token"`
	ArticlesDB  string `yaml:"articles_db" mapstructure:"articles_db"`
	DailyDB     string `yaml:"daily_db" mapstructure:"daily_db"`
	RulesDB     string `yaml:"rules_db" mapstructure:"rules_db"`
	TargetsDB   string `yaml:"targets_db" mapstructure:"targets_db"`
	AutoHeading string `yaml:"auto_heading" mapstructure:"auto_heading"`

	// Property overrides remap logical fields to deployment-specific
	// property names (and optionally types) in the external store.
	ArticleProperties map[string]PropertyOverride `yaml:"article_properties" mapstructure:"article_properties"`
	DailyProperties   map[string]PropertyOverride `yaml:"daily_properties" mapstructure:"daily_properties"`
}

// PropertyOverride renames a logical field's external property.
type PropertyOverride struct {
	Name string `yaml:"name" mapstructure:"name"`
	Type string `yaml:"type" mapstructure:"type"`
}

// Enabled reports whether synchronization is configured for the run.
// Absent credentials disable the synchronizer rather than failing the run.
func (n NotionConfig) Enabled() bool {
	return n.Token != "" && n.ArticlesDB != "" && n.DailyDB != ""
}

// SerperConfig holds Serper search API settings.
type SerperConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
	Gl  string `yaml:"gl" mapstructure:"gl"`
	Hl  string `yaml:"hl" mapstructure:"hl"`
}

// LimitsConfig bounds fetching and digest selection.
type LimitsConfig struct {
	Hours               int      `yaml:"hours" mapstructure:"hours"`
	MaxArticlesPerLabel int      `yaml:"max_articles_per_label" mapstructure:"max_articles_per_label"`
	DigestTopN          int      `yaml:"digest_top_n" mapstructure:"digest_top_n"`
	MinImportance       float64  `yaml:"min_importance" mapstructure:"min_importance"`
	ExcludeTypes        []string `yaml:"exclude_types" mapstructure:"exclude_types"`
	LabelPauseSecs      int      `yaml:"label_pause_secs" mapstructure:"label_pause_secs"`
}

// ThresholdsConfig maps importance scores to High/Medium/Low bands.
type ThresholdsConfig struct {
	High   float64 `yaml:"high" mapstructure:"high"`
	Medium float64 `yaml:"medium" mapstructure:"medium"`
}

// PathsConfig locates static configuration files and the audit log.
type PathsConfig struct {
	TargetsFile string `yaml:"targets_file" mapstructure:"targets_file"`
	RulesFile   string `yaml:"rules_file" mapstructure:"rules_file"`
	ScoringFile string `yaml:"scoring_file" mapstructure:"scoring_file"`
	AuditLog    string `yaml:"audit_log" mapstructure:"audit_log"`
}

// RetryConfig tunes external-call retry behavior.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NEWSBRIEF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("notion.auto_heading", "[AUTO]")
	v.SetDefault("serper.gl", "jp")
	v.SetDefault("serper.hl", "ja")
	v.SetDefault("limits.hours", 24)
	v.SetDefault("limits.max_articles_per_label", 5)
	v.SetDefault("limits.digest_top_n", 10)
	v.SetDefault("limits.min_importance", 0)
	v.SetDefault("limits.label_pause_secs", 1)
	v.SetDefault("thresholds.high", 4.0)
	v.SetDefault("thresholds.medium", 2.5)
	v.SetDefault("paths.targets_file", "config/targets.yml")
	v.SetDefault("paths.rules_file", "config/rules.yml")
	v.SetDefault("paths.scoring_file", "config/scoring.yml")
	v.SetDefault("paths.audit_log", "logs/notion_audit.jsonl")
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.initial_backoff_ms", 1000)
	v.SetDefault("retry.max_backoff_ms", 30000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)

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
