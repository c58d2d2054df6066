package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	AppEnv            string
	Port              string
	GinMode           string
	DBDriver          string
	DatabaseURL       string
	JWTSecret         string
	JWTTTL            time.Duration
	TaxRate           float64
	ReservationWindow time.Duration
	LogLevel          string
	CORSOrigins       []string
	RateLimitRPS      int
	AdminEmail        string
	AdminPassword     string
	ShutdownTimeout   time.Duration
}

const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Load reads .env.<APP_ENV> (falling back to .env) and then the process
// environment.
func Load() (*Config, error) {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		GinMode:           getEnv("GIN_MODE", ""),
		DBDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		DatabaseURL:       getEnv("DATABASE_URL", "restaurant.db"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getDuration("JWT_TTL", 24*time.Hour),
		TaxRate:           getFloat("TAX_RATE", 0.10),
		ReservationWindow: getDuration("RESERVATION_WINDOW", 90*time.Minute),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSOrigins:       splitList(getEnv("CORS_ORIGINS", "http://127.0.0.1:5500")),
		RateLimitRPS:      getInt("RATE_LIMIT_RPS", 50),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.TaxRate <= 0 || c.TaxRate >= 1 {
		return fmt.Errorf("TAX_RATE must be between 0 and 1, got %v", c.TaxRate)
	}
	if c.ReservationWindow <= 0 {
		return fmt.Errorf("RESERVATION_WINDOW must be positive")
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsTest() bool {
	return c.AppEnv == "test"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.Printf("Invalid number for %s=%q, using %v", key, value, defaultValue)
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
