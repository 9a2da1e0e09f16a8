// Package config handles loading and validating the finecho configuration.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the finecho daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Completion CompletionConfig `mapstructure:"completion"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Store      StoreConfig      `mapstructure:"store"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the REST/WebSocket transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Completion backends.
const (
	BackendOpenAI = "openai"
	BackendLocal  = "local"
	BackendGemini = "gemini"
	BackendNone   = "none"
)

// CompletionConfig selects and configures the LLM text-completion backend.
type CompletionConfig struct {
	Backend string        `mapstructure:"backend"` // "openai", "local", "gemini" or "none"
	Timeout time.Duration `mapstructure:"timeout"` // bound on a single remote call
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Local   LocalConfig   `mapstructure:"local"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Ollama /api/generate or an OpenAI-compatible /v1/chat/completions
	Model    string `mapstructure:"model"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // empty uses the public Gemini API
}

// AuthConfig configures bearer-token verification. Auth is disabled when
// JWTSecret is empty.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// Enabled reports whether requests must carry a valid bearer token.
func (a AuthConfig) Enabled() bool { return a.JWTSecret != "" }

// StoreConfig configures the in-memory data store.
type StoreConfig struct {
	SeedDemo bool `mapstructure:"seed_demo"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// A .env file in the working directory is loaded into the process environment
// first, if present. If configFile is non-empty it is used directly; otherwise
// the search order is ./finecho.yaml, ./configs/finecho.yaml, /etc/finecho/finecho.yaml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("completion.backend", BackendOpenAI)
	v.SetDefault("completion.timeout", 10*time.Second)
	v.SetDefault("completion.openai.api_key", "${OPENAI_API_KEY}")
	v.SetDefault("completion.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("completion.openai.model", "gpt-4o")
	v.SetDefault("completion.local.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("completion.local.model", "llama3")
	v.SetDefault("completion.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("completion.gemini.model", "gemini-2.0-flash")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("store.seed_demo", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("finecho")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/finecho")
	}

	// Environment variables: FINECHO_SERVER_HEALTH_PORT, FINECHO_COMPLETION_BACKEND, etc.
	v.SetEnvPrefix("FINECHO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional; env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${OPENAI_API_KEY}")
	cfg.Completion.OpenAI.APIKey = resolveEnvRef(cfg.Completion.OpenAI.APIKey)
	cfg.Completion.Gemini.APIKey = resolveEnvRef(cfg.Completion.Gemini.APIKey)
	cfg.Auth.JWTSecret = resolveEnvRef(cfg.Auth.JWTSecret)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports configuration that cannot produce a working daemon.
func (c *Config) Validate() error {
	switch c.Completion.Backend {
	case BackendOpenAI, BackendLocal, BackendGemini, BackendNone:
	default:
		return fmt.Errorf("invalid config: unknown completion backend %q", c.Completion.Backend)
	}
	if c.Completion.Timeout <= 0 {
		return fmt.Errorf("invalid config: completion.timeout must be positive, got %s", c.Completion.Timeout)
	}
	if c.Transports.HTTP.Enabled && c.Transports.HTTP.Port <= 0 {
		return fmt.Errorf("invalid config: transports.http.port must be positive")
	}
	if c.Transports.GRPC.Enabled && c.Transports.GRPC.Port <= 0 {
		return fmt.Errorf("invalid config: transports.grpc.port must be positive")
	}
	if !c.Transports.HTTP.Enabled && !c.Transports.GRPC.Enabled {
		return fmt.Errorf("invalid config: no transports enabled")
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string so secrets are never the literal reference.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
