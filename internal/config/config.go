package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config carries everything the parser, matcher, and handlers need so they
// never read the environment themselves.
type Config struct {
	DatabaseURL    string
	Port           string
	WebhookSecret  string
	TokenNamespace string   // namespace used when generating links, e.g. "dinkup"
	Namespaces     []string // whitelist recognized by the parser
	Activity       string   // leading word of link notes, e.g. "Pickleball"
	AdminHandle    string   // default venmo handle for pay links
}

func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		Port:           getEnvDefault("PORT", "8080"),
		WebhookSecret:  os.Getenv("WEBHOOK_SECRET"),
		TokenNamespace: getEnvDefault("TOKEN_NAMESPACE", "dinkup"),
		Activity:       getEnvDefault("ACTIVITY_NAME", "Pickleball"),
		AdminHandle:    os.Getenv("ADMIN_VENMO_HANDLE"),
	}

	cfg.Namespaces = []string{cfg.TokenNamespace, "pay", "payment", "session"}
	if extra := os.Getenv("TOKEN_NAMESPACES_EXTRA"); extra != "" {
		for _, ns := range strings.Split(extra, ",") {
			if ns = strings.TrimSpace(ns); ns != "" {
				cfg.Namespaces = append(cfg.Namespaces, ns)
			}
		}
	}

	if cfg.WebhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func InitDB(databaseURL string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	return db
}
