package config

import (
	"os"
	"testing"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if had {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	setEnv(t, "DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Error("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, "DATABASE_URL", "postgres://localhost/medmitra")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.DBMaxConns != 20 {
		t.Errorf("expected default max conns 20, got %d", cfg.DBMaxConns)
	}
	if cfg.BlobBackend != "memory" {
		t.Errorf("expected default blob backend memory, got %s", cfg.BlobBackend)
	}
	if !cfg.IsDev() {
		t.Error("expected development mode by default")
	}
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := &Config{Env: "production", BlobBackend: "memory"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing JWT_SECRET in production")
	}

	cfg.JWTSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_AssistantRequiresKey(t *testing.T) {
	cfg := &Config{Env: "development", BlobBackend: "memory", AssistantEnabled: true}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error when assistant enabled without GEMINI_API_KEY")
	}

	cfg.GeminiAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_MinioBackend(t *testing.T) {
	cfg := &Config{Env: "development", BlobBackend: "minio"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for minio backend without endpoint")
	}

	cfg.MinioEndpoint = "localhost:9000"
	cfg.MinioAccessKey = "ak"
	cfg.MinioSecretKey = "sk"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownBlobBackend(t *testing.T) {
	cfg := &Config{Env: "development", BlobBackend: "s3"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown blob backend")
	}
}
