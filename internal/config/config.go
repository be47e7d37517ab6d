package config

import (
	"log"

	"github.com/caarlos0/env/v6"
)

// Config holds all runtime settings, parsed from the environment
type Config struct {
	Port           string `env:"PORT" envDefault:"3001"`
	UseMemoryStore bool   `env:"USE_MEMORY_STORE" envDefault:"false"`

	// Database
	DBHost string `env:"DB_HOST" envDefault:"localhost"`
	DBPort string `env:"DB_PORT" envDefault:"5432"`
	DBUser string `env:"DB_USER" envDefault:"postgres"`
	DBPass string `env:"DB_PASS"`
	DBName string `env:"DB_NAME" envDefault:"hr_assistant"`

	// Redis (optional; the app degrades to a no-op cache without it)
	RedisURL string `env:"REDIS_URL"`

	// Auth
	JWTSecret string `env:"JWT_SECRET,required"`

	// Completion service (OpenRouter-compatible)
	OpenRouterAPIKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterModel    string `env:"OPENROUTER_MODEL" envDefault:"deepseek/deepseek-r1-0528:free"`
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE" envDefault:"Chatbot RH"`

	// CORS
	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`
}

// New parses the configuration from the environment
func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
