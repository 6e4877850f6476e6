package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr            string
	PostgresDSN         string
	AuthSecret          string
	EncryptionKey       string
	ExtendedCustodyDays int
	RateLimitRequests   int
	RateLimitWindow     time.Duration
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
}

func FromEnv() Config {
	return Config{
		HTTPAddr:            envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN:         os.Getenv("POSTGRES_DSN"),
		AuthSecret:          os.Getenv("AUTH_SECRET"),
		EncryptionKey:       os.Getenv("ENCRYPTION_KEY"),
		ExtendedCustodyDays: envInt("EXTENDED_CUSTODY_DAYS", 7),
		RateLimitRequests:   envInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:     envDuration("RATE_LIMIT_WINDOW", time.Minute),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             envInt("REDIS_DB", 0),
	}
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
