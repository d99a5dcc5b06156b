package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Provider != ProviderOllama {
		t.Errorf("Provider = %q, want ollama", cfg.Provider)
	}
	if cfg.RefineMaxIterations != 2 {
		t.Errorf("RefineMaxIterations = %d, want 2", cfg.RefineMaxIterations)
	}
	if cfg.Sandbox.Timeout != 12*time.Second {
		t.Errorf("Sandbox.Timeout = %v, want 12s", cfg.Sandbox.Timeout)
	}
}

func TestLoadDemoModeOverridesProvider(t *testing.T) {
	t.Setenv("PROVIDER", "openai")
	t.Setenv("DEMO_MODE", "1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != ProviderDemo {
		t.Errorf("Provider = %q, want demo when DEMO_MODE is set", cfg.Provider)
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "mystery")

	if _, err := Load(); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"empty port", func(c *Config) { c.Port = "" }, true},
		{"zero chunk size", func(c *Config) { c.DemoChunkSize = 0 }, true},
		{"zero iterations", func(c *Config) { c.RefineMaxIterations = 0 }, true},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"empty sandbox image", func(c *Config) { c.Sandbox.Image = "" }, true},
		{"zero sandbox timeout", func(c *Config) { c.Sandbox.Timeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
