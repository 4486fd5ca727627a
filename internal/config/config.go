package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sngm3741/rank-relay/api/internal/infrastructure/paypal"
)

// JWTConfig defines issuer/secret pair for admin auth verification.
type JWTConfig struct {
	Issuer   string
	Audience string
	Secret   []byte
}

// Config holds runtime configuration shared across the application.
type Config struct {
	Addr                         string
	DiscordWebhookURL            string
	WebhookTimeout               time.Duration
	PayPalIPNURL                 string
	PayPalTimeout                time.Duration
	UploadDir                    string
	MaxUploadBytes               int64
	Timezone                     string
	AllowedOrigins               []string
	MongoURI                     string
	MongoDatabase                string
	MongoTimeout                 time.Duration
	FailedNotificationCollection string
	AdminJWT                     *JWTConfig
	ServerLog                    *log.Logger
}

// MongoEnabled reports whether the failed delivery log is configured.
func (c Config) MongoEnabled() bool {
	return strings.TrimSpace(c.MongoURI) != ""
}

// Load reads .env (if present) and environment variables and returns a fully populated Config.
func Load() Config {
	logger := log.New(os.Stdout, "[rank-relay] ", log.LstdFlags|log.Lshortfile)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Printf(".env の読み込みに失敗: %v", err)
	}

	addr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if addr == "" {
		addr = ":" + envOrDefault("PORT", "3000")
	}

	webhookURL := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK"))
	if webhookURL == "" {
		logger.Printf("DISCORD_WEBHOOK is not set; webhook deliveries will fail")
	}

	paypalURL := strings.TrimSpace(os.Getenv("PAYPAL_IPN_URL"))
	if paypalURL == "" {
		paypalURL = paypal.LiveEndpoint
		if parseBool("PAYPAL_SANDBOX") {
			paypalURL = paypal.SandboxEndpoint
		}
	}

	var adminJWT *JWTConfig
	if secret := strings.TrimSpace(os.Getenv("ADMIN_JWT_SECRET")); secret != "" {
		adminJWT = &JWTConfig{
			Issuer:   strings.TrimSpace(os.Getenv("ADMIN_JWT_ISSUER")),
			Audience: strings.TrimSpace(os.Getenv("ADMIN_JWT_AUDIENCE")),
			Secret:   []byte(secret),
		}
	}

	cfg := Config{
		Addr:                         addr,
		DiscordWebhookURL:            webhookURL,
		WebhookTimeout:               parseDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		PayPalIPNURL:                 paypalURL,
		PayPalTimeout:                parseDuration("PAYPAL_TIMEOUT", 10*time.Second),
		UploadDir:                    envOrDefault("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:               parseInt64("MAX_UPLOAD_BYTES", 8<<20),
		Timezone:                     envOrDefault("TIMEZONE", "Local"),
		AllowedOrigins:               parseList("API_ALLOWED_ORIGINS", []string{"*"}),
		MongoURI:                     strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:                envOrDefault("MONGO_DB", "rank-relay"),
		MongoTimeout:                 parseDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		FailedNotificationCollection: envOrDefault("FAILED_NOTIFICATION_COLLECTION", "failed_notifications"),
		AdminJWT:                     adminJWT,
		ServerLog:                    logger,
	}

	cfg.ServerLog.Printf("loaded config: addr=%q paypal=%q uploadDir=%q mongo=%t admin=%t",
		cfg.Addr, cfg.PayPalIPNURL, cfg.UploadDir, cfg.MongoEnabled(), cfg.AdminJWT != nil)

	return cfg
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseBool(key string) bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(key)), "true")
}

func parseList(key string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			values = append(values, part)
		}
	}

	if len(values) == 0 {
		return fallback
	}
	return values
}
