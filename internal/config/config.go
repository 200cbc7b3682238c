// Package config loads process configuration from the environment, dotenv
// files and an optional umlgen.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/umlgen/internal/llm"
)

// MaxLLMTimeout caps the per-call timeout.
const MaxLLMTimeout = 60 * time.Second

// Config holds runtime configuration for every command.
type Config struct {
	AppEnv   string
	LogLevel string
	Port     string

	// DatabaseURL is a SQLite path or a postgres:// URL. Empty means the
	// default SQLite location.
	DatabaseURL string

	CORSOrigins []string

	// EvaluationModel overrides the model that scores exercises.
	EvaluationModel string

	LLM llm.Config

	// ConfigFile is the config file that was read, if any.
	ConfigFile string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// Load reads .env.local and .env from the working directory without
// overriding variables already set, then the environment and the config
// file. configFile may be empty to search ./umlgen.yaml and the user
// config directory.
func Load(configFile string) (Config, error) {
	loadDotenv(".")

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("port", "5000")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("llm.timeout", "45s")
	v.SetDefault("llm.max_attempts", 3)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.temperature", 0.7)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("umlgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "umlgen"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("llm.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid LLM_TIMEOUT: %w", err)
	}
	if timeout <= 0 || timeout > MaxLLMTimeout {
		return Config{}, fmt.Errorf("LLM_TIMEOUT must be in (0, %s], got %s", MaxLLMTimeout, timeout)
	}

	lc := llm.DefaultConfig()
	lc.OpenAI = llm.OpenAIConfig{
		APIKey:  v.GetString("openai.api_key"),
		BaseURL: v.GetString("openai.base_url"),
	}
	lc.Gemini = llm.GeminiConfig{
		APIKey:  v.GetString("gemini.api_key"),
		BaseURL: v.GetString("gemini.base_url"),
	}
	lc.Compatible = llm.CompatibleConfig{
		BaseURL: v.GetString("bisai.base_url"),
		APIKey:  v.GetString("bisai.api_key"),
	}
	lc.Anthropic = llm.AnthropicConfig{
		APIKey:  v.GetString("anthropic.api_key"),
		BaseURL: v.GetString("anthropic.base_url"),
	}
	lc.EnableMock = v.GetBool("llm.mock")
	lc.Timeout = timeout
	lc.Retry.MaxAttempts = v.GetInt("llm.max_attempts")
	lc.MaxTokens = v.GetInt("llm.max_tokens")
	lc.Temperature = v.GetFloat64("llm.temperature")

	if v.IsSet("models") {
		var models []llm.ModelEntry
		if err := v.UnmarshalKey("models", &models); err != nil {
			return Config{}, fmt.Errorf("parse models catalog: %w", err)
		}
		lc.Models = models
	}

	cfg := Config{
		AppEnv:          v.GetString("app.env"),
		LogLevel:        v.GetString("log.level"),
		Port:            v.GetString("port"),
		DatabaseURL:     v.GetString("database.url"),
		CORSOrigins:     splitList(v.GetString("cors.origins")),
		EvaluationModel: v.GetString("evaluation.model"),
		LLM:             lc,
		ConfigFile:      v.ConfigFileUsed(),
	}

	if cfg.LLM.Retry.MaxAttempts < 1 {
		return Config{}, fmt.Errorf("LLM_MAX_ATTEMPTS must be at least 1, got %d", cfg.LLM.Retry.MaxAttempts)
	}
	if cfg.LLM.MaxTokens <= 0 {
		return Config{}, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", cfg.LLM.MaxTokens)
	}

	return cfg, nil
}

// loadDotenv loads .env.local then .env from dir. Existing variables win,
// so .env.local takes precedence over .env.
func loadDotenv(dir string) {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(filepath.Join(dir, name))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
