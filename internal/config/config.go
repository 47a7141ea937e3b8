// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds every tunable the service reads at startup. Base URLs default
// to the standard local Ollama endpoint and the public Open Library API.
type Config struct {
	Env  string `env:"ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	OllamaURL   string `env:"OLLAMA_URL" envDefault:"http://localhost:11434/api/generate"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3.2"`

	OpenLibraryURL string `env:"OPEN_LIBRARY_URL" envDefault:"https://openlibrary.org/search.json"`

	// GenerateTimeout bounds the non-streaming model call; the streaming
	// narration call is only bounded by the client connection.
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT" envDefault:"60s"`
	SearchTimeout   time.Duration `env:"SEARCH_TIMEOUT" envDefault:"15s"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	RateLimitInterval time.Duration `env:"RATE_LIMIT_INTERVAL" envDefault:"1s"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"3"`
	DailyQuota        int64         `env:"DAILY_QUOTA" envDefault:"2000"`
}

// Load reads .env.local when present, then parses the environment.
func Load() (*Config, error) {
	godotenv.Load(".env.local")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
