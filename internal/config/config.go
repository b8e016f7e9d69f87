package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr           string        // LEADSYNC_ADDR, default ":8080"
	DBDriver       string        // DB_DRIVER, "postgres" or "sqlite", default "postgres"
	DatabaseURL    string        // DATABASE_URL
	BackendURL     string        // BACKEND_URL, the dashboard API that proxies the CRMs
	BackendToken   string        // BACKEND_TOKEN, optional bearer token
	RequestTimeout time.Duration // BACKEND_TIMEOUT, default 15s
	AMQPURL        string        // AMQP_URL, optional; notifications are not queued without it
	MailHost       string        // MAIL_HOST
	MailPort       int           // MAIL_PORT, default 587
	MailUser       string        // MAIL_USER
	MailPass       string        // MAIL_PASS
	MailFrom       string        // MAIL_FROM
	AlertEmail     string        // ALERT_EMAIL, operator address for failure alerts
	SessionIdleTTL time.Duration // SESSION_IDLE_TTL, default 30m
	SweepInterval  time.Duration // SESSION_SWEEP_INTERVAL, default 1m
	ConnectLimit   int           // CONNECT_RATE_LIMIT per minute per IP, default 10
	AllowedOrigins []string      // CORS_ORIGINS, comma separated
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		Addr:           envOr("LEADSYNC_ADDR", ":8080"),
		DBDriver:       envOr("DB_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		BackendURL:     strings.TrimRight(os.Getenv("BACKEND_URL"), "/"),
		BackendToken:   os.Getenv("BACKEND_TOKEN"),
		RequestTimeout: durationOr("BACKEND_TIMEOUT", 15*time.Second),
		AMQPURL:        os.Getenv("AMQP_URL"),
		MailHost:       os.Getenv("MAIL_HOST"),
		MailPort:       intOr("MAIL_PORT", 587),
		MailUser:       os.Getenv("MAIL_USER"),
		MailPass:       os.Getenv("MAIL_PASS"),
		MailFrom:       envOr("MAIL_FROM", "nao-responda@liguemedicina.com"),
		AlertEmail:     os.Getenv("ALERT_EMAIL"),
		SessionIdleTTL: durationOr("SESSION_IDLE_TTL", 30*time.Minute),
		SweepInterval:  durationOr("SESSION_SWEEP_INTERVAL", time.Minute),
		ConnectLimit:   intOr("CONNECT_RATE_LIMIT", 10),
		AllowedOrigins: listOr("CORS_ORIGINS", []string{"http://localhost:5173"}),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intOr(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func listOr(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
