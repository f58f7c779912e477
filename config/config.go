package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	Env            string
	AllowedOrigins []string

	DatabaseURL string

	TelegramBotToken string

	AutoClaimSweepInterval    time.Duration
	TrainingNotifyInterval    time.Duration
	NotifierRetries           int
	DisableBackgroundSweepers bool // для локальной отладки без фоновых задач
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "5300"),
		Env:            getEnv("APP_ENV", "development"),
		AllowedOrigins: getEnvAsSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		AutoClaimSweepInterval:    getEnvAsDuration("AUTO_CLAIM_SWEEP_INTERVAL", 5*time.Minute),
		TrainingNotifyInterval:    getEnvAsDuration("TRAINING_NOTIFY_INTERVAL", 5*time.Minute),
		NotifierRetries:           getEnvAsInt("NOTIFIER_RETRIES", 3),
		DisableBackgroundSweepers: getEnvAsBool("DISABLE_SWEEPERS", false),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvAsSlice(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
