package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/abuzz-labs/intel-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Chat      ChatConfig      `yaml:"chat" mapstructure:"chat"`
	Report    ReportConfig    `yaml:"report" mapstructure:"report"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key               string  `yaml:"key" mapstructure:"key"`
	ChatModel         string  `yaml:"chat_model" mapstructure:"chat_model"`
	DebriefModel      string  `yaml:"debrief_model" mapstructure:"debrief_model"`
	ChatMaxTokens     int64   `yaml:"chat_max_tokens" mapstructure:"chat_max_tokens"`
	DebriefMaxTokens  int64   `yaml:"debrief_max_tokens" mapstructure:"debrief_max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ChatConfig configures the conversational path.
type ChatConfig struct {
	MaxQuestionChars  int `yaml:"max_question_chars" mapstructure:"max_question_chars"`
	RetrieveCap       int `yaml:"retrieve_cap" mapstructure:"retrieve_cap"`
	DefaultWindowDays int `yaml:"default_window_days" mapstructure:"default_window_days"`
	SourceLimit       int `yaml:"source_limit" mapstructure:"source_limit"`
}

// ReportConfig configures the debrief path.
type ReportConfig struct {
	Cap        int `yaml:"cap" mapstructure:"cap"`
	WindowDays int `yaml:"window_days" mapstructure:"window_days"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks that the fields a command mode needs are present. Modes:
// "store" needs only a usable driver; "generate" additionally needs the
// Anthropic key; "serve" needs everything plus a listen port.
func (c *Config) Validate(mode string) error {
	switch c.Store.Driver {
	case "postgres", "sqlite":
	default:
		return eris.Errorf("config: unsupported store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		return eris.New("config: database URL is required (INTEL_STORE_DATABASE_URL)")
	}

	switch mode {
	case "store":
		return nil
	case "generate":
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic key is required (INTEL_ANTHROPIC_KEY)")
		}
		return nil
	case "serve":
		if c.Anthropic.Key == "" {
			return eris.New("config: anthropic key is required (INTEL_ANTHROPIC_KEY)")
		}
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return eris.Errorf("config: invalid server port %d", c.Server.Port)
		}
		return nil
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("anthropic.chat_model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.debrief_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.chat_max_tokens", 2000)
	v.SetDefault("anthropic.debrief_max_tokens", 4000)
	v.SetDefault("anthropic.requests_per_second", 2.0)
	v.SetDefault("chat.max_question_chars", 500)
	v.SetDefault("chat.retrieve_cap", 30)
	v.SetDefault("chat.default_window_days", 30)
	v.SetDefault("chat.source_limit", 10)
	v.SetDefault("report.cap", 50)
	v.SetDefault("report.window_days", 14)

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
