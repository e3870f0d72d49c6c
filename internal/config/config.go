// Package config loads campaignforge configuration from the
// environment, optionally overlaid with a YAML config file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM provider names.
const (
	ProviderOllama    = "ollama"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderBedrock   = "bedrock"
	ProviderEndpoint  = "endpoint"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// LLM
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	ChatEndpoint    string `yaml:"chat_endpoint"`
	OllamaHost      string `yaml:"ollama_host"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	BedrockRegion   string `yaml:"bedrock_region"`

	// HTTP server
	ServerPort string `yaml:"server_port"`
	APIToken   string `yaml:"api_token"`

	// Wizard drafts
	PersistDrafts bool `yaml:"persist_drafts"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "campaignforge"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "main"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     getEnv("CAMPAIGNFORGE_LLM_PROVIDER", ProviderOllama),
		LLMModel:        getEnv("CAMPAIGNFORGE_LLM_MODEL", "llama3.1"),
		ChatEndpoint:    getEnv("CAMPAIGNFORGE_CHAT_ENDPOINT", ""),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		BedrockRegion:   getEnv("CAMPAIGNFORGE_BEDROCK_REGION", ""),

		ServerPort: getEnv("CAMPAIGNFORGE_SERVER_PORT", "8282"),
		APIToken:   getEnv("CAMPAIGNFORGE_API_TOKEN", ""),

		PersistDrafts: getEnv("CAMPAIGNFORGE_PERSIST_DRAFTS", "false") == "true",

		LogFile:  getEnv("CAMPAIGNFORGE_LOG_FILE", "/tmp/campaignforge.log"),
		LogLevel: parseLogLevel(getEnv("CAMPAIGNFORGE_LOG_LEVEL", "INFO")),
	}
}

// LoadFile overlays values from a YAML config file onto cfg. Only keys
// present in the file override; everything the file omits keeps the
// environment-derived value.
func LoadFile(cfg Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
