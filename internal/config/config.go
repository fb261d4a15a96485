package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	AppEnv      string
	CORSOrigins []string

	ConnectorsHostname string
	ReplIdentity       string
	WebReplRenewal     string
	HubSpotToken       string
	HubSpotBaseURL     string
	HubSpotTimeout     time.Duration

	DatabaseURL        string
	SyncEventRetention time.Duration

	RabbitMQURL string

	Mail MailConfig

	RateLimitPerMinute int
}

type MailConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	From      string
	SalesTeam string
}

// Enabled reports whether lead notifications can be mailed.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.SalesTeam != ""
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AppEnv:             getEnv("APP_ENV", "production"),
		CORSOrigins:        splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ConnectorsHostname: getEnv("CONNECTORS_HOSTNAME", ""),
		ReplIdentity:       getEnv("REPL_IDENTITY", ""),
		WebReplRenewal:     getEnv("WEB_REPL_RENEWAL", ""),
		HubSpotToken:       getEnv("HUBSPOT_ACCESS_TOKEN", ""),
		HubSpotBaseURL:     getEnv("HUBSPOT_BASE_URL", "https://api.hubapi.com"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		Mail: MailConfig{
			Host:      getEnv("MAIL_HOST", ""),
			User:      getEnv("MAIL_USER", ""),
			Password:  getEnv("MAIL_PASS", ""),
			From:      getEnv("MAIL_FROM", "no-reply@brightforge.dev"),
			SalesTeam: getEnv("SALES_NOTIFY_EMAIL", ""),
		},
	}

	var err error
	if cfg.HubSpotTimeout, err = getDuration("HUBSPOT_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.SyncEventRetention, err = getDuration("SYNC_EVENT_RETENTION", 720*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Mail.Port, err = getInt("MAIL_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.HubSpotTimeout <= 0 {
		return fmt.Errorf("HUBSPOT_TIMEOUT must be positive")
	}
	if c.SyncEventRetention <= 0 {
		return fmt.Errorf("SYNC_EVENT_RETENTION must be positive")
	}
	return nil
}

func (c *Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
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
