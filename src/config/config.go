package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	Port        string
	DatabaseURL string

	// Access tokens are issued by Supabase and signed with the project's JWT secret.
	JWTSecret   string
	JWTAudience string

	GoogleMapsAPIKey string
	GeocodeCacheTTL  time.Duration
	// Optional Redis shared by all instances for geocode results.
	RedisAddr string

	AllowedOrigins []string
	DemoMode       bool
	LogLevel       slog.Level
	LogJSON        bool

	// Empty disables the in-process monthly rollover.
	RolloverSchedule string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	return Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTSecret:        getEnv("SUPABASE_JWT_SECRET", ""),
		JWTAudience:      getEnv("SUPABASE_JWT_AUDIENCE", "authenticated"),
		GoogleMapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		GeocodeCacheTTL:  getEnvDuration("GEOCODE_CACHE_TTL", 24*time.Hour),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DemoMode:         getEnvBool("DEMO_MODE", false),
		LogLevel:         getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		LogJSON:          strings.EqualFold(getEnv("LOG_FORMAT", "text"), "json"),
		RolloverSchedule: getEnv("ROLLOVER_SCHEDULE", ""),
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	} else if u, err := url.Parse(c.DatabaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid DATABASE_URL: %v", err))
	} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		problems = append(problems, fmt.Sprintf("invalid DATABASE_URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
	}

	if c.JWTSecret == "" {
		problems = append(problems, "SUPABASE_JWT_SECRET is required")
	}

	if c.GeocodeCacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("invalid geocode cache ttl %v: must not be negative", c.GeocodeCacheTTL))
	}

	if c.RolloverSchedule != "" {
		if _, err := cron.ParseStandard(c.RolloverSchedule); err != nil {
			problems = append(problems, fmt.Sprintf("invalid ROLLOVER_SCHEDULE '%s': %v", c.RolloverSchedule, err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return fallback
	}
	return level
}
