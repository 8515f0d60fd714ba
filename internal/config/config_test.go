package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_DefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("unexpected default provider: %s", cfg.LLM.Provider)
	}
	if cfg.LLM.MaxContextMessages != 10 {
		t.Fatalf("unexpected default max_context_messages: %d", cfg.LLM.MaxContextMessages)
	}
	if cfg.LLM.MaxTokens != 300 {
		t.Fatalf("unexpected default max_tokens: %d", cfg.LLM.MaxTokens)
	}
	if cfg.LLM.MaxRetries != 2 {
		t.Fatalf("unexpected default max_retries: %d", cfg.LLM.MaxRetries)
	}
	if cfg.LLM.OpenAI.Model != "gpt-4o-mini" || cfg.LLM.OpenAI.FallbackModel != "gpt-4o" {
		t.Fatalf("unexpected openai model pair: %s / %s", cfg.LLM.OpenAI.Model, cfg.LLM.OpenAI.FallbackModel)
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.WindowSeconds != 60 {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9000"
llm:
  provider: deepseek
  max_context_messages: 4
  deepseek:
    api_key: sk-from-file
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.LLM.Provider != "deepseek" {
		t.Fatalf("unexpected provider: %s", cfg.LLM.Provider)
	}
	if cfg.LLM.MaxContextMessages != 4 {
		t.Fatalf("unexpected max_context_messages: %d", cfg.LLM.MaxContextMessages)
	}
	if cfg.LLM.DeepSeek.APIKey != "sk-from-file" {
		t.Fatalf("unexpected api key: %s", cfg.LLM.DeepSeek.APIKey)
	}
	// 文件未覆盖的值保持默认
	if cfg.LLM.MaxTokens != 300 {
		t.Fatalf("unexpected max_tokens: %d", cfg.LLM.MaxTokens)
	}
}

func TestLoad_EnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("LLM_GEMINI_API_KEY", "env-key")
	t.Setenv("SERVER_ALLOW_ORIGIN", "https://shop.example.com")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.LLM.Provider != "gemini" {
		t.Fatalf("unexpected provider: %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Gemini.APIKey != "env-key" {
		t.Fatalf("unexpected gemini key: %s", cfg.LLM.Gemini.APIKey)
	}
	if cfg.Server.AllowOrigin != "https://shop.example.com" {
		t.Fatalf("unexpected allow origin: %s", cfg.Server.AllowOrigin)
	}
}

func TestLoad_MalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [broken"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}
