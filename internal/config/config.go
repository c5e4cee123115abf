package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Crypto    CryptoConfig
	Storage   StorageConfig
	SMTP      SMTPConfig
	Messaging MessagingConfig
	Telemetry TelemetryConfig
}

type AppConfig struct {
	Port        string
	BaseURL     string
	Environment string
	LogFilePath string
	// NotificationLogPath keeps realtime delivery logs out of the main log.
	// Empty means use the main logger.
	NotificationLogPath string
	CorsAllowedOrigins  string
}

type DatabaseConfig struct {
	// Driver is "postgres" or "memory".
	Driver     string
	Connection string
}

type AuthConfig struct {
	JwtSecret              string
	JwtIssuer              string
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	RefreshCleanupInterval time.Duration
	PasswordMinLength      int
	PasswordHashCost       int
}

type CryptoConfig struct {
	// NoteEncryptionKey is a base64 encoded AES key (16, 24 or 32 bytes).
	NoteEncryptionKey string
}

type StorageConfig struct {
	// Driver is "local" or "s3".
	Driver         string
	LocalDir       string
	PublicPrefix   string
	AvatarMaxBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type MessagingConfig struct {
	NatsURL          string
	RedisURL         string
	MemberAddedTopic string
}

type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:                getEnv("APP_PORT", "3000"),
			BaseURL:             getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:         getEnv("GO_ENV", "development"),
			LogFilePath:         getEnv("LOG_FILE_PATH", "logs/app.log"),
			NotificationLogPath: getEnv("NOTIFICATION_LOG_PATH", "logs/notification.log"),
			CorsAllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JwtSecret:              getEnv("JWT_SECRET", ""),
			JwtIssuer:              getEnv("JWT_ISSUER", "collectify"),
			AccessTokenTTL:         getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTokenTTL:        getEnvAsDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			RefreshCleanupInterval: getEnvAsDuration("REFRESH_TOKEN_CLEANUP_INTERVAL", time.Hour),
			PasswordMinLength:      getEnvAsInt("PASSWORD_MIN_LENGTH", 4),
			PasswordHashCost:       getEnvAsInt("PASSWORD_HASH_COST", 10),
		},
		Crypto: CryptoConfig{
			NoteEncryptionKey: getEnv("NOTE_ENCRYPTION_KEY", ""),
		},
		Storage: StorageConfig{
			Driver:         getEnv("STORAGE_DRIVER", "local"),
			LocalDir:       getEnv("STORAGE_LOCAL_DIR", "./uploads"),
			PublicPrefix:   getEnv("STORAGE_PUBLIC_PREFIX", "/uploads"),
			AvatarMaxBytes: int64(getEnvAsInt("AVATAR_MAX_BYTES", 5*1024*1024)),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_BASE_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Collectify"),
		},
		Messaging: MessagingConfig{
			NatsURL:          getEnv("NATS_URL", ""),
			RedisURL:         getEnv("REDIS_URL", ""),
			MemberAddedTopic: getEnv("MEMBER_ADDED_TOPIC_NAME", "GROUP_MEMBER_ADDED"),
		},
		Telemetry: TelemetryConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "collectify-backend"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go duration strings ("15m", "168h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
