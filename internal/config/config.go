// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. It is loaded once at
// startup and treated as immutable afterward; components receive the
// sections they need explicitly.
type Config struct {
	DigiKey     DigiKeyConfig     `yaml:"digikey" mapstructure:"digikey"`
	Mouser      MouserConfig      `yaml:"mouser" mapstructure:"mouser"`
	Anthropic   AnthropicConfig   `yaml:"anthropic" mapstructure:"anthropic"`
	Replacement ReplacementConfig `yaml:"replacement" mapstructure:"replacement"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// DigiKeyConfig holds Digi-Key API credentials. Either a pre-issued
// access token or a client id/secret pair makes the provider usable;
// when both are present the token is used directly without an exchange.
type DigiKeyConfig struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	AccessToken  string `yaml:"access_token" mapstructure:"access_token"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	LocaleSite   string `yaml:"locale_site" mapstructure:"locale_site"`
	LocaleLang   string `yaml:"locale_language" mapstructure:"locale_language"`
}

// Configured reports whether Digi-Key lookups can be attempted.
func (c DigiKeyConfig) Configured() bool {
	if c.AccessToken != "" {
		return true
	}
	return c.ClientID != "" && c.ClientSecret != ""
}

// MouserConfig holds Mouser Search API credentials.
type MouserConfig struct {
	APIKey  string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// Configured reports whether Mouser lookups can be attempted.
func (c MouserConfig) Configured() bool {
	return c.APIKey != ""
}

// AnthropicConfig holds settings for the parameter-criticality ranker.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ReplacementConfig configures the iterative replacement search.
type ReplacementConfig struct {
	RecordCount int    `yaml:"record_count" mapstructure:"record_count"`
	MaxRounds   int    `yaml:"max_rounds" mapstructure:"max_rounds"`
	BaseMode    string `yaml:"base_mode" mapstructure:"base_mode"`
}

// ServerConfig configures the comparison HTTP server.
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
	v.SetEnvPrefix("PARTSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("digikey.base_url", "https://api.digikey.com")
	v.SetDefault("digikey.locale_site", "US")
	v.SetDefault("digikey.locale_language", "en")
	v.SetDefault("mouser.base_url", "https://api.mouser.com")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("replacement.record_count", 50)
	v.SetDefault("replacement.max_rounds", 12)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Legacy variable names, kept so existing .env files keep working.
	_ = v.BindEnv("digikey.client_id", "PARTSCOPE_DIGIKEY_CLIENT_ID", "DIGIKEY_CLIENT_ID")
	_ = v.BindEnv("digikey.client_secret", "PARTSCOPE_DIGIKEY_CLIENT_SECRET", "DIGIKEY_CLIENT_SECRET")
	_ = v.BindEnv("digikey.access_token", "PARTSCOPE_DIGIKEY_ACCESS_TOKEN", "DIGIKEY_ACCESS_TOKEN")
	_ = v.BindEnv("mouser.api_key", "PARTSCOPE_MOUSER_API_KEY", "MOUSER_API_KEY")
	_ = v.BindEnv("anthropic.key", "PARTSCOPE_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")

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
