package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the binaries read from the environment.
type Config struct {
	Environment string
	LogLevel    string
	Port        string

	DatabaseURL string
	JWTSecret   string

	GeminiAPIKey string
	GeminiModel  string

	R2AccessKey     string
	R2SecretKey     string
	R2Bucket        string
	R2Endpoint      string
	R2PublicBaseURL string

	// Base URL diners hit, used to build public menu links and QR images.
	PublicMenuBaseURL string
}

// Load reads configuration from the environment. Outside production a
// .env file is merged in first: local development keeps secrets in
// .env, deploys use real env vars.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnv("PORT", "8000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),

		R2AccessKey:     os.Getenv("R2_ACCESS_KEY"),
		R2SecretKey:     os.Getenv("R2_SECRET_KEY"),
		R2Bucket:        os.Getenv("R2_BUCKET_NAME"),
		R2Endpoint:      os.Getenv("R2_ENDPOINT"),
		R2PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),

		PublicMenuBaseURL: getEnv("PUBLIC_MENU_BASE_URL", "http://localhost:8000/m"),
	}

	required := map[string]string{
		"DATABASE_URL":   cfg.DatabaseURL,
		"JWT_SECRET":     cfg.JWTSecret,
		"GEMINI_API_KEY": cfg.GeminiAPIKey,
		"GEMINI_MODEL":   cfg.GeminiModel,
		"R2_ACCESS_KEY":  cfg.R2AccessKey,
		"R2_SECRET_KEY":  cfg.R2SecretKey,
		"R2_BUCKET_NAME": cfg.R2Bucket,
		"R2_ENDPOINT":    cfg.R2Endpoint,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("missing env var: %s", name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
