package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

type Config struct {
	DBHost string
	DBPort string
	DBUser string
	DBPass string
	DBName string

	DBConnectAttempts int
	DBRetryDelay      time.Duration

	RedisAddr string
	JWTSecret string
	Port      string

	CartTTL            time.Duration
	CheckoutSessionTTL time.Duration

	// per client IP
	RateLimit float64
	RateBurst int
}

// Load reads the process environment, after loading a .env file if one is
// present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg("No .env file, using process environment")
	}

	return &Config{
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPass:             getEnv("DB_PASS", ""),
		DBName:             getEnv("DB_NAME", "storefront"),
		DBConnectAttempts:  getInt("DB_CONNECT_ATTEMPTS", 10),
		DBRetryDelay:       getDuration("DB_RETRY_DELAY", 3*time.Second),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		Port:               getEnv("PORT", "8080"),
		CartTTL:            getDuration("CART_TTL", 72*time.Hour),
		CheckoutSessionTTL: getDuration("CHECKOUT_SESSION_TTL", 30*time.Minute),
		RateLimit:          getFloat("RATE_LIMIT", 10),
		RateBurst:          getInt("RATE_BURST", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Err(err).Msgf("Invalid %s %q, using %s", key, v, fallback)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Err(err).Msgf("Invalid %s %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().Err(err).Msgf("Invalid %s %q, using %g", key, v, fallback)
		return fallback
	}
	return f
}
