package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Set required env vars for all subtests
	cleanup := setEnvs(t, map[string]string{
		"ASSEMBLYAI_API_KEY": "test-key",
		"STORE_URL":          "https://example.supabase.co/rest/v1",
		"STORE_KEY":          "store-secret",
	})
	defer cleanup()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Port != 5000 {
			t.Errorf("Port = %d, want 5000", cfg.Port)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
		}
		if cfg.ProviderBaseURL != "https://api.assemblyai.com" {
			t.Errorf("ProviderBaseURL = %q, want https://api.assemblyai.com", cfg.ProviderBaseURL)
		}
		if cfg.RateLimit != 100 {
			t.Errorf("RateLimit = %d, want 100", cfg.RateLimit)
		}
		if cfg.RateWindow != 15*time.Minute {
			t.Errorf("RateWindow = %v, want 15m", cfg.RateWindow)
		}
		if cfg.WriteTimeout != 150*time.Second {
			t.Errorf("WriteTimeout = %v, want 2m30s", cfg.WriteTimeout)
		}
		if cfg.MaxUploadMB != 32 {
			t.Errorf("MaxUploadMB = %d, want 32", cfg.MaxUploadMB)
		}
		if cfg.MQTTClientID != "scribe-relay" {
			t.Errorf("MQTTClientID = %q, want scribe-relay", cfg.MQTTClientID)
		}
	})

	t.Run("cli_overrides_take_priority", func(t *testing.T) {
		cfg, err := Load(Overrides{
			EnvFile:  "nonexistent.env",
			Port:     9090,
			LogLevel: "debug",
			StoreURL: "postgres://override/db",
		})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Port != 9090 {
			t.Errorf("Port = %d, want 9090", cfg.Port)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
		if cfg.StoreURL != "postgres://override/db" {
			t.Errorf("StoreURL = %q, want override", cfg.StoreURL)
		}
	})

	t.Run("env_vars_read", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.ProviderAPIKey != "test-key" {
			t.Errorf("ProviderAPIKey = %q, want test-key", cfg.ProviderAPIKey)
		}
		if cfg.StoreURL != "https://example.supabase.co/rest/v1" {
			t.Errorf("StoreURL = %q, want env value", cfg.StoreURL)
		}
		if cfg.StoreKey != "store-secret" {
			t.Errorf("StoreKey = %q, want store-secret", cfg.StoreKey)
		}
	})

	t.Run("empty_overrides_use_env", func(t *testing.T) {
		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		// Empty override fields should not overwrite env values
		if cfg.StoreURL != "https://example.supabase.co/rest/v1" {
			t.Errorf("StoreURL = %q, want env value", cfg.StoreURL)
		}
	})

	t.Run("cors_origins_split", func(t *testing.T) {
		inner := setEnvs(t, map[string]string{
			"CORS_ALLOW_ORIGINS": "https://a.example,https://b.example",
		})
		defer inner()

		cfg, err := Load(Overrides{EnvFile: "nonexistent.env"})
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(cfg.CORSOrigins) != 2 {
			t.Fatalf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
		}
		if cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
			t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
		}
	})
}

func TestLoadMissingRequired(t *testing.T) {
	cleanup := setEnvs(t, map[string]string{
		"ASSEMBLYAI_API_KEY": "",
		"STORE_URL":          "",
		"STORE_KEY":          "",
	})
	defer cleanup()
	os.Unsetenv("ASSEMBLYAI_API_KEY")
	os.Unsetenv("STORE_URL")
	os.Unsetenv("STORE_KEY")

	_, err := Load(Overrides{EnvFile: "nonexistent.env"})
	if err == nil {
		t.Error("expected error when required env vars are missing")
	}
}

// setEnvs sets environment variables and returns a cleanup function.
func setEnvs(t *testing.T, envs map[string]string) func() {
	t.Helper()
	originals := make(map[string]string)
	unset := make([]string, 0)

	for k, v := range envs {
		if orig, ok := os.LookupEnv(k); ok {
			originals[k] = orig
		} else {
			unset = append(unset, k)
		}
		os.Setenv(k, v)
	}

	return func() {
		for k, v := range originals {
			os.Setenv(k, v)
		}
		for _, k := range unset {
			os.Unsetenv(k)
		}
	}
}
