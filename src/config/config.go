package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret          string
	Port               string
	DatabasePath       string
	LogLevel           string
	CSRFAuthKey        []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	MaxUploadSizeBytes int64
	FrontendBaseURL    string

	// Upstream economic calendar feed (plain-text, ForexFactory-style).
	// Empty disables the server-side refresh; pasted text still works.
	CalendarFeedURL string

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	VerificationEmailBaseURL string
	VerificationTokenExpiry  time.Duration

	PasswordResetBaseURL     string
	PasswordResetTokenExpiry time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	csrfAuthKeyStr := getEnv("CSRF_AUTH_KEY", "a-very-secure-32-byte-long-key-must-be-32-bytes!")
	if csrfAuthKeyStr == "a-very-secure-32-byte-long-key-must-be-32-bytes!" {
		log.Println("WARNING: Using default insecure CSRF_AUTH_KEY. Set CSRF_AUTH_KEY environment variable for production.")
	}
	if len(csrfAuthKeyStr) < 32 {
		log.Fatalf("FATAL: CSRF_AUTH_KEY must be at least 32 bytes long. Current length: %d", len(csrfAuthKeyStr))
	}

	accessTokenExpiry := getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute)
	refreshTokenExpiry := getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./fxjournal.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CSRFAuthKey:        []byte(csrfAuthKeyStr),
		AccessTokenExpiry:  accessTokenExpiry,
		RefreshTokenExpiry: refreshTokenExpiry,
		MaxUploadSizeBytes: maxUploadSizeBytes,
		FrontendBaseURL:    getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),

		CalendarFeedURL: getEnv("CALENDAR_FEED_URL", ""),

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "mock"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "FXJournal"),

		VerificationEmailBaseURL: getEnv("VERIFICATION_EMAIL_BASE_URL", "http://localhost:3000/verify-email"),
		VerificationTokenExpiry:  getEnvAsDuration("VERIFICATION_TOKEN_EXPIRY", 24*time.Hour),

		PasswordResetBaseURL:     getEnv("PASSWORD_RESET_BASE_URL", "http://localhost:3000/reset-password"),
		PasswordResetTokenExpiry: getEnvAsDuration("PASSWORD_RESET_TOKEN_EXPIRY", time.Hour),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" || Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN and MAILGUN_PRIVATE_API_KEY are required when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
		if Cfg.SenderEmail == "noreply@example.com" || Cfg.SenderEmail == "" {
			log.Fatalf("FATAL: SENDER_EMAIL must be configured properly when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, EmailProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
