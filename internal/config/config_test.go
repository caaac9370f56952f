package config

import "testing"

func validConfig() Config {
	return Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Addrs: []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{
			APIKey: "test-key",
			Model:  "test-embed-model",
		},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_MissingEmbeddingKey(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing embedding api key")
	}
}

func TestValidate_LLMModelRequiredWithKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = "llm-key"
	cfg.LLM.Model = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when llm key is set without a model")
	}
}

func TestValidate_LLMDisabledWithoutKey(t *testing.T) {
	cfg := validConfig()
	cfg.LLM.APIKey = ""
	cfg.LLM.Model = ""

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unconfigured llm must be allowed: %v", err)
	}
}

func TestValidate_NegativeMaxDistance(t *testing.T) {
	cfg := validConfig()
	cfg.Retrieval.MaxDistance = -0.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max_distance")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("expected WriteTimeoutSec=120, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Provider != "nebius" {
		t.Errorf("expected embedding provider 'nebius', got %q", cfg.Embedding.Provider)
	}
	if cfg.LLM.Temperature != 0.2 {
		t.Errorf("expected Temperature=0.2, got %g", cfg.LLM.Temperature)
	}
	if cfg.LLM.MaxTokens != 1024 {
		t.Errorf("expected MaxTokens=1024, got %d", cfg.LLM.MaxTokens)
	}
	if cfg.Retrieval.IndexName != "planagent:chunks:idx" {
		t.Errorf("expected default index name, got %q", cfg.Retrieval.IndexName)
	}
	if cfg.Retrieval.KeyPrefix != "planagent:chunk:" {
		t.Errorf("expected default key prefix, got %q", cfg.Retrieval.KeyPrefix)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.MaxPerPage != 2 {
		t.Errorf("expected MaxPerPage=2, got %d", cfg.Retrieval.MaxPerPage)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		LLM:      LLMConfig{Temperature: 0.7, MaxTokens: 256},
		Retrieval: RetrievalConfig{
			IndexName: "custom:idx", KeyPrefix: "custom:", TopK: 10, MaxPerPage: 3,
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.LLM.Temperature != 0.7 {
		t.Errorf("expected Temperature=0.7, got %g", cfg.LLM.Temperature)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Retrieval.KeyPrefix)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PLANAGENT_TEST_KEY", "secret")

	in := []byte("api_key: ${PLANAGENT_TEST_KEY}\nmodel: ${PLANAGENT_TEST_MODEL:-fallback-model}\n")
	out := string(expandEnvVars(in))

	if out != "api_key: secret\nmodel: fallback-model\n" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
