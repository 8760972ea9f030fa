package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	RopeIterationCount  int
	GravityX            float64
	GravityY            float64
	Gravity             float64
	TickRate            int
	BroadcastEveryTicks int
	SnapshotTTLSeconds  int
	MaxSessions         int
	MaxRopePoints       int

	// Security
	JWTSecret     string
	TokenTTLHours int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/ropesim?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		RopeIterationCount:  getEnvInt("ROPE_ITERATION_COUNT", 50),
		GravityX:            getEnvFloat("GRAVITY_X", 0),
		GravityY:            getEnvFloat("GRAVITY_Y", 1),
		Gravity:             getEnvFloat("GRAVITY", 980),
		TickRate:            getEnvInt("TICK_RATE", 60),
		BroadcastEveryTicks: getEnvInt("BROADCAST_EVERY_TICKS", 2),
		SnapshotTTLSeconds:  getEnvInt("SNAPSHOT_TTL_SECONDS", 3600),
		MaxSessions:         getEnvInt("MAX_SESSIONS", 32),
		MaxRopePoints:       getEnvInt("MAX_ROPE_POINTS", 512),

		// Security
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production"),
		TokenTTLHours: getEnvInt("TOKEN_TTL_HOURS", 12),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
