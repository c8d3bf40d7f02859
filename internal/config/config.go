package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig holds relational store connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string
}

// KafkaConfig holds broker and consumer-group settings.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// WebhookConfig holds the identity-provider webhook verification secret.
type WebhookConfig struct {
	SigningSecret string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port          string
	AppEnv        string
	MigrationsDir string
	DBConfig      DatabaseConfig
	JWTConfig     JWTConfig
	KafkaConfig   KafkaConfig
	WebhookConfig WebhookConfig
}

// Load reads configuration from BOOKING_-prefixed environment variables, with
// an optional .env file for local development.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("BOOKING")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // .env is optional

	v.SetDefault("SERVICE_PORT", "8083")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_GROUP_PREFIX", "stayloop.")

	cfg := &ServiceConfig{
		Port:          ":" + v.GetString("SERVICE_PORT"),
		AppEnv:        v.GetString("APP_ENV"),
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),
		DBConfig: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     strings.Split(v.GetString("KAFKA_BROKERS"), ","),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		WebhookConfig: WebhookConfig{
			SigningSecret: v.GetString("WEBHOOK_SIGNING_SECRET"),
		},
	}

	if cfg.DBConfig.DBName == "" {
		return nil, fmt.Errorf("BOOKING_DB_NAME is required")
	}
	if cfg.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("BOOKING_JWT_SECRET is required")
	}
	// Without it svix still constructs a verifier and every identity webhook
	// fails verification silently.
	if cfg.WebhookConfig.SigningSecret == "" {
		return nil, fmt.Errorf("BOOKING_WEBHOOK_SIGNING_SECRET is required")
	}

	return cfg, nil
}
