package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"demographics-api/internal/adapters/mailer"
	"demographics-api/internal/adapters/storage"
)

// Config holds all configuration for the application
type Config struct {
	Environment string `validate:"required"`
	Port        string `validate:"required"`
	LogLevel    string
	AWS         AWSConfig
	Table       TableConfig
	Notify      NotifyConfig
	SMTP        SMTPConfig
	JWT         JWTConfig
	RateLimit   RateLimitConfig
}

// AWSConfig holds AWS client configuration
type AWSConfig struct {
	Region          string `validate:"required"`
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// TableConfig holds demographics table configuration
type TableConfig struct {
	Name          string `validate:"required"`
	Backend       string `validate:"oneof=dynamodb sqlite memory"`
	SQLitePath    string
	ReadCapacity  int64 `validate:"gte=1"`
	WriteCapacity int64 `validate:"gte=1"`
}

// NotifyConfig holds table change notification configuration
type NotifyConfig struct {
	Transport string `validate:"oneof=ses smtp"`
	To        string `validate:"omitempty,email"`
	From      string `validate:"omitempty,email"`
	Subject   string `validate:"required"`
}

// SMTPConfig holds email configuration for the smtp transport
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// JWTConfig holds JWT configuration for the development gateway
type JWTConfig struct {
	Secret string
}

// RateLimitConfig holds rate limiting configuration for the development gateway
type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"gte=0"`
	Burst             int     `validate:"gte=0"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Set up Viper
	viper.AutomaticEnv()
	viper.SetDefault("PORT", "8081")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("TABLE_NAME", "demographics")
	viper.SetDefault("TABLE_BACKEND", "dynamodb")
	viper.SetDefault("SQLITE_PATH", "./data/demographics.db")
	viper.SetDefault("TABLE_READ_CAPACITY", 1)
	viper.SetDefault("TABLE_WRITE_CAPACITY", 1)
	viper.SetDefault("NOTIFY_TRANSPORT", "ses")
	viper.SetDefault("NOTIFY_SUBJECT", "DynamoDB Table Updated")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("RATE_LIMIT_RPS", 10)
	viper.SetDefault("RATE_LIMIT_BURST", 20)

	config := &Config{
		Environment: viper.GetString("ENVIRONMENT"),
		Port:        viper.GetString("PORT"),
		LogLevel:    viper.GetString("LOG_LEVEL"),
		AWS: AWSConfig{
			Region:          viper.GetString("AWS_REGION"),
			Endpoint:        viper.GetString("DYNAMODB_ENDPOINT"),
			AccessKeyID:     viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("AWS_SECRET_ACCESS_KEY"),
		},
		Table: TableConfig{
			Name:          viper.GetString("TABLE_NAME"),
			Backend:       strings.ToLower(viper.GetString("TABLE_BACKEND")),
			SQLitePath:    viper.GetString("SQLITE_PATH"),
			ReadCapacity:  viper.GetInt64("TABLE_READ_CAPACITY"),
			WriteCapacity: viper.GetInt64("TABLE_WRITE_CAPACITY"),
		},
		Notify: NotifyConfig{
			Transport: strings.ToLower(viper.GetString("NOTIFY_TRANSPORT")),
			To:        viper.GetString("NOTIFY_TO"),
			From:      viper.GetString("NOTIFY_FROM"),
			Subject:   viper.GetString("NOTIFY_SUBJECT"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// StorageConfig returns the table engine configuration
func (c *Config) StorageConfig() *storage.Config {
	return &storage.Config{
		Type:          c.Table.Backend,
		TableName:     c.Table.Name,
		Region:        c.AWS.Region,
		Endpoint:      c.AWS.Endpoint,
		AccessKeyID:   c.AWS.AccessKeyID,
		SecretKey:     c.AWS.SecretAccessKey,
		SQLitePath:    c.Table.SQLitePath,
		ReadCapacity:  c.Table.ReadCapacity,
		WriteCapacity: c.Table.WriteCapacity,
	}
}

// MailerConfig returns the mail transport configuration
func (c *Config) MailerConfig() *mailer.Config {
	return &mailer.Config{
		Transport: c.Notify.Transport,
		Region:    c.AWS.Region,
		SMTP: mailer.SMTPConfig{
			Host:     c.SMTP.Host,
			Port:     c.SMTP.Port,
			Username: c.SMTP.Username,
			Password: c.SMTP.Password,
		},
	}
}

// NewLogger creates the application logger. Lambda and production deployments
// log JSON, everything else logs text.
func NewLogger(c *Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if IsServerlessMode() || c.Environment == "production" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}

// GetEnv gets an environment variable with a fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
