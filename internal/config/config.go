// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted in PROVIDER.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
	ProviderDemo   = "demo"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string

	// Provider selection happens here, once, at construction time.
	Provider string

	OllamaBaseURL string
	OllamaModel   string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	DemoText      string
	DemoChunkSize int
	DemoDelay     time.Duration

	RefineMaxIterations int

	DBPath     string
	ReportPath string

	Sandbox SandboxConfig
}

// SandboxConfig controls the isolated execution of generated code.
type SandboxConfig struct {
	Image   string
	Runtime string // Docker runtime: "" = default (runc), "runsc" = gVisor
	Timeout time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", ""),

		Provider: strings.ToLower(getEnv("PROVIDER", ProviderOllama)),

		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://127.0.0.1:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3.1:8b"),

		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		DemoText:      getEnv("DEMO_TEXT", ""),
		DemoChunkSize: getEnvInt("DEMO_CHUNK_SIZE", 1),
		DemoDelay:     getEnvDuration("DEMO_DELAY", 8*time.Millisecond),

		RefineMaxIterations: getEnvInt("REFINE_MAX_ITERATIONS", 2),

		DBPath:     getEnv("DB_PATH", "./data/eval.db"),
		ReportPath: getEnv("REPORT_PATH", "./outputs/eval_report.json"),

		Sandbox: SandboxConfig{
			Image:   getEnv("SANDBOX_IMAGE", "python:3.12-alpine"),
			Runtime: getEnv("SANDBOX_RUNTIME", ""),
			Timeout: getEnvDuration("SANDBOX_TIMEOUT", 12*time.Second),
		},
	}

	if getEnvBool("DEMO_MODE", false) {
		cfg.Provider = ProviderDemo
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	switch c.Provider {
	case ProviderOllama, ProviderOpenAI, ProviderDemo:
	default:
		return fmt.Errorf("PROVIDER must be one of ollama, openai, demo; got %q", c.Provider)
	}
	if c.Provider == ProviderOllama && c.OllamaBaseURL == "" {
		return fmt.Errorf("OLLAMA_BASE_URL cannot be empty")
	}
	if c.Provider == ProviderOpenAI && c.OpenAIBaseURL == "" {
		return fmt.Errorf("OPENAI_BASE_URL cannot be empty")
	}
	if c.DemoChunkSize <= 0 {
		return fmt.Errorf("DEMO_CHUNK_SIZE must be > 0")
	}
	if c.RefineMaxIterations <= 0 {
		return fmt.Errorf("REFINE_MAX_ITERATIONS must be > 0")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.Sandbox.Image == "" {
		return fmt.Errorf("SANDBOX_IMAGE cannot be empty")
	}
	if c.Sandbox.Timeout <= 0 {
		return fmt.Errorf("SANDBOX_TIMEOUT must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
