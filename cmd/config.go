package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"INFO"`

	JWTSecret         string `env:"JWT_SECRET"`
	PaymentWebhookKey string `env:"PAYMENT_WEBHOOK_KEY"`

	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"campusdash.events"`

	DefaultPlatformFee    decimal.Decimal `env:"DEFAULT_PLATFORM_FEE_DOLLARS" envDefault:"0.50"`
	DeliveryRequestTTL    time.Duration   `env:"DELIVERY_REQUEST_TTL" envDefault:"10m"`
	ExpirySweepSchedule   string          `env:"EXPIRY_SWEEP_SCHEDULE" envDefault:"0 */5 * * * *"`
	QueueSnapshotSchedule string          `env:"QUEUE_SNAPSHOT_SCHEDULE" envDefault:"0 * * * * *"`
	TxMaxRetries          uint64          `env:"TX_MAX_RETRIES" envDefault:"5"`
}

// LoadConfig reads .env when present and then the process environment, which wins.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.DefaultPlatformFee.IsNegative() {
		return Config{}, errors.New("DEFAULT_PLATFORM_FEE_DOLLARS must not be negative")
	}
	return cfg, nil
}

// ValidateServe checks the settings only the serve command needs.
func (c Config) ValidateServe() error {
	var problems []error
	if c.JWTSecret == "" {
		problems = append(problems, errors.New("JWT_SECRET must be set"))
	}
	if c.PaymentWebhookKey == "" {
		problems = append(problems, errors.New("PAYMENT_WEBHOOK_KEY must be set"))
	}
	return errors.Join(problems...)
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
