package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode    string
	Port       string
	Database   DatabaseConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	MFA        MFAConfig
	Session    SessionConfig
	Cookie     CookieConfig
	Notify     NotifyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds token signing configuration. Access and refresh secrets
// must be distinct: a leaked access secret must not allow forging refresh
// tokens.
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// EncryptionConfig holds the field encryption key (hex-encoded, 256-bit).
// Single-version and process-wide: rotating it invalidates all previously
// encrypted records.
type EncryptionConfig struct {
	Key string
}

// MFAConfig holds TOTP provisioning configuration
type MFAConfig struct {
	Issuer string
}

// SessionConfig holds the MFA handshake store configuration. When RedisAddr
// is set the handshake store runs on redis, otherwise in process memory.
type SessionConfig struct {
	TTLSeconds int
	RedisAddr  string
	RedisPass  string
	RedisDB    int
}

// CookieConfig holds refresh token cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// NotifyConfig holds admin verification email configuration
type NotifyConfig struct {
	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	From       string
	AdminEmail string
	BaseURL    string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	encryptionKey := getEnv("ENCRYPTION_KEY", "")
	if encryptionKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required (64 hex chars)")
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))
	sessionTTL, _ := strconv.Atoi(getEnv("MFA_SESSION_TTL_SECONDS", "300"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	cookieSecure, _ := strconv.ParseBool(getEnv("COOKIE_SECURE", "true"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASS", ""),
			DBName:   getEnv("DB_NAME", "health_service"),
		},
		JWT: JWTConfig{
			Secret:           getEnv("JWT_SECRET", "default_secret"),
			RefreshSecret:    getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
			AccessTokenMins:  accessMins,
			RefreshTokenDays: refreshDays,
		},
		Encryption: EncryptionConfig{
			Key: encryptionKey,
		},
		MFA: MFAConfig{
			Issuer: getEnv("MFA_ISSUER", "Health-service.click"),
		},
		Session: SessionConfig{
			TTLSeconds: sessionTTL,
			RedisAddr:  getEnv("REDIS_ADDR", ""),
			RedisPass:  getEnv("REDIS_PASS", ""),
			RedisDB:    redisDB,
		},
		Cookie: CookieConfig{
			Secure:   cookieSecure,
			SameSite: getEnv("COOKIE_SAMESITE", "None"),
			Domain:   getEnv("COOKIE_DOMAIN", ""),
		},
		Notify: NotifyConfig{
			SMTPHost:   getEnv("SMTP_HOST", ""),
			SMTPPort:   getEnv("SMTP_PORT", "587"),
			SMTPUser:   getEnv("SMTP_USER", ""),
			SMTPPass:   getEnv("SMTP_PASS", ""),
			From:       getEnv("NOTIFY_FROM", "no-reply@health-service.click"),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
			BaseURL:    getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		},
	}

	if config.JWT.Secret == config.JWT.RefreshSecret {
		log.Println("⚠️ JWT_SECRET and JWT_REFRESH_SECRET should not be identical")
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://health-service.click"
	}
	return origins
}
