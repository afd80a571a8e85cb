package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ProviderAPIKey  string        `env:"ASSEMBLYAI_API_KEY,required"`
	ProviderBaseURL string        `env:"ASSEMBLYAI_BASE_URL" envDefault:"https://api.assemblyai.com"`
	ProviderModel   string        `env:"ASSEMBLYAI_MODEL"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"2m"`

	StoreURL string `env:"STORE_URL,required"`
	StoreKey string `env:"STORE_KEY,required"`

	Port        int           `env:"PORT" envDefault:"5000"`
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"1m"`
	// WriteTimeout must cover the full status-poll window (20 × 5s) plus slack,
	// or long transcriptions get cut off mid-response.
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"2m30s"`
	IdleTimeout  time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
	MaxUploadMB  int64         `env:"MAX_UPLOAD_MB" envDefault:"32"`

	RateLimit  int           `env:"RATE_LIMIT" envDefault:"100"`
	RateWindow time.Duration `env:"RATE_WINDOW" envDefault:"15m"`

	CORSOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	MQTTBrokerURL string `env:"MQTT_BROKER_URL"`
	MQTTTopic     string `env:"MQTT_TOPIC" envDefault:"scribe-relay/transcriptions"`
	MQTTClientID  string `env:"MQTT_CLIENT_ID" envDefault:"scribe-relay"`
	MQTTUsername  string `env:"MQTT_USERNAME"`
	MQTTPassword  string `env:"MQTT_PASSWORD"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Overrides holds CLI flag values that take priority over env vars.
type Overrides struct {
	EnvFile  string
	Port     int
	LogLevel string
	StoreURL string
}

// Load reads configuration from .env file, environment variables, and CLI overrides.
// Priority: CLI flags > environment variables > .env file > struct defaults.
func Load(overrides Overrides) (*Config, error) {
	// Load .env file (silent if missing)
	envFile := overrides.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		_ = godotenv.Load(envFile)
	}

	// Parse environment variables into config struct
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Apply CLI overrides (non-zero values win)
	if overrides.Port != 0 {
		cfg.Port = overrides.Port
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	if overrides.StoreURL != "" {
		cfg.StoreURL = overrides.StoreURL
	}

	return cfg, nil
}
