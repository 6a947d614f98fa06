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
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	NumVerify   NumVerifyConfig   `yaml:"numverify" mapstructure:"numverify"`
	AbstractAPI AbstractAPIConfig `yaml:"abstractapi" mapstructure:"abstractapi"`
	Veriphone   VeriphoneConfig   `yaml:"veriphone" mapstructure:"veriphone"`
	Lookup      LookupConfig      `yaml:"lookup" mapstructure:"lookup"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the investigation history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NumVerifyConfig holds NumVerify API settings.
type NumVerifyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AbstractAPIConfig holds Abstract phone validation API settings.
type AbstractAPIConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// VeriphoneConfig holds Veriphone API settings.
type VeriphoneConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LookupConfig tunes the aggregation engine.
type LookupConfig struct {
	// ConfidencePath optionally points at a YAML file overriding the
	// built-in confidence model.
	ConfidencePath string  `yaml:"confidence_path" mapstructure:"confidence_path"`
	RemoteRPS      float64 `yaml:"remote_rps" mapstructure:"remote_rps"`
	MaxConcurrency int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentNumbers int `yaml:"max_concurrent_numbers" mapstructure:"max_concurrent_numbers"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("OSINT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "osint.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_numbers", 5)
	v.SetDefault("lookup.remote_rps", 2)
	v.SetDefault("lookup.max_concurrency", 4)
	v.SetDefault("numverify.base_url", "https://api.apilayer.com/number_verification")
	v.SetDefault("abstractapi.base_url", "https://phonevalidation.abstractapi.com/v1")
	v.SetDefault("veriphone.base_url", "https://api.veriphone.io/v2")
	v.SetDefault("lookup.confidence_path", "")

	// AutomaticEnv only surfaces keys viper already knows about, so keys
	// without defaults need an explicit default for env-only values (like
	// OSINT_NUMVERIFY_KEY) to reach Unmarshal.
	v.SetDefault("numverify.key", "")
	v.SetDefault("abstractapi.key", "")
	v.SetDefault("veriphone.key", "")

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

// Validate checks the configuration for a given run mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Batch.MaxConcurrentNumbers < 1 || c.Batch.MaxConcurrentNumbers > 50 {
		problems = append(problems, "batch.max_concurrent_numbers must be between 1 and 50")
	}
	if c.Lookup.RemoteRPS < 0 {
		problems = append(problems, "lookup.remote_rps must be >= 0")
	}
	if c.Lookup.MaxConcurrency < 1 {
		problems = append(problems, "lookup.max_concurrency must be >= 1")
	}

	switch mode {
	case "lookup", "batch", "sources":
		// Offline sources always work; remote credentials are optional.
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "history", "stats":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
