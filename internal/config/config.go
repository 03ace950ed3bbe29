package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration, read from the environment with
// an optional .env file for local runs.
type Config struct {
	HTTPAddr     string
	PostgresURL  string // empty selects the in-memory store
	ArtifactPath string

	SaveObservations bool // persist synthesized series through the recorder

	Synthetic      bool // seed the store with a generated series on startup
	SyntheticStart time.Time
	SyntheticEnd   time.Time
	Seed           int64

	TestFraction float64
}

// Load reads the configuration. A missing .env file is not an error;
// container deployments set real environment variables instead.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: skipping .env: %v", err)
	}

	return Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		PostgresURL:      getEnv("POSTGRES_URL", ""),
		ArtifactPath:     getEnv("MODEL_ARTIFACT_PATH", "data/model.json"),
		SaveObservations: getEnvBool("SAVE_OBSERVATIONS", false),
		Synthetic:        getEnvBool("SYNTHETIC_SEED", true),
		SyntheticStart:   getEnvDate("SYNTHETIC_START", "2025-01-01"),
		SyntheticEnd:     getEnvDate("SYNTHETIC_END", "2026-01-31"),
		Seed:             getEnvInt64("SYNTHETIC_RANDOM_SEED", 42),
		TestFraction:     getEnvFloat("TEST_FRACTION", 0.2),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("config: %s=%q is not a bool, using %v", key, v, fallback)
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("config: %s=%q is not a number, using %g", key, v, fallback)
		return fallback
	}
	return parsed
}

func getEnvDate(key, fallback string) time.Time {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	parsed, err := time.Parse("2006-01-02", v)
	if err != nil {
		parsed, _ = time.Parse("2006-01-02", fallback)
		log.Printf("config: %s=%q is not a date, using %s", key, v, fallback)
	}
	return parsed
}
