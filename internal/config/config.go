package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings read from the environment.
type Config struct {
	Env  string
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	JWTSecret       string
	StripeSecretKey string
	TokenCacheTTL   time.Duration

	ApplePayMerchantID  string
	ApplePayDisplayName string
	ApplePayDomain      string
	ApplePayCertFile    string
	ApplePayKeyFile     string
	ApplePayTimeout     time.Duration

	OTLPEndpoint string
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// Load reads the configuration from the environment.
func Load() Config {
	return Config{
		Env:  GetEnv("ENV", "development"),
		Port: GetEnv("PORT", "3000"),

		DBHost:     GetEnv("DB_HOST", "localhost"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     GetEnv("DB_USER", "postgres"),
		DBPassword: GetEnv("DB_PASSWORD", "postgres"),
		DBName:     GetEnv("DB_NAME", "paygate"),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetIntEnv("REDIS_DB", 0),

		JWTSecret:       GetEnv("JWT_SECRET", "paygate"),
		StripeSecretKey: GetEnv("STRIPE_SECRET_KEY", ""),
		TokenCacheTTL:   GetDurationEnv("TOKEN_CACHE_TTL", 10*time.Minute),

		ApplePayMerchantID:  GetEnv("APPLE_PAY_MERCHANT_ID", ""),
		ApplePayDisplayName: GetEnv("APPLE_PAY_DISPLAY_NAME", "Store"),
		ApplePayDomain:      GetEnv("APPLE_PAY_DOMAIN", ""),
		ApplePayCertFile:    GetEnv("APPLE_PAY_CERT_FILE", ""),
		ApplePayKeyFile:     GetEnv("APPLE_PAY_KEY_FILE", ""),
		ApplePayTimeout:     GetDurationEnv("APPLE_PAY_TIMEOUT", 30*time.Second),

		OTLPEndpoint: GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// IsProduction checks if the app runs in production mode.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetDurationEnv returns a duration environment variable or a default value.
func GetDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
