package main

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config collects the environment settings of the application.
type Config struct {
	DBPath             string
	DBDebug            bool
	HTTPPort           int
	CORSAllowedOrigins string
	RedisAddr          string
	CachePrefix        string
	CacheTTL           time.Duration
	TaskOwner          string
	NotificationTTL    time.Duration
	ShutdownTimeout    time.Duration
}

// loadConfig reads the configuration from the environment.
func loadConfig() Config {
	return Config{
		DBPath:             getEnv("DB_PATH", "tasks.db"),
		DBDebug:            getEnvBool("DB_DEBUG", false),
		HTTPPort:           getEnvInt("HTTP_PORT", 3000),
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		CachePrefix:        getEnv("CACHE_PREFIX", "tasks:"),
		CacheTTL:           getEnvDuration("CACHE_TTL", 5*time.Minute),
		TaskOwner:          getEnv("TASK_OWNER", "local"),
		NotificationTTL:    getEnvDuration("NOTIFICATION_TTL", 3*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
