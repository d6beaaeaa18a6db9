package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogEncoding string `env:"LOG_ENCODING" envDefault:"json"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"cleaning"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// RatePerMinute is in cents: 1000 is KES 10 per minute, KES 600 per hour.
	RatePerMinute int64 `env:"RATE_PER_MINUTE" envDefault:"1000"`

	WorkStartHour       int           `env:"WORK_START_HOUR" envDefault:"8"`
	WorkEndHour         int           `env:"WORK_END_HOUR" envDefault:"18"`
	TimeZone            string        `env:"TIME_ZONE" envDefault:"Africa/Nairobi"`
	StartTolerance      time.Duration `env:"START_TOLERANCE" envDefault:"30m"`
	TrackingSessionTTL  time.Duration `env:"TRACKING_SESSION_TTL" envDefault:"24h"`
	EventChannelPrefix  string        `env:"EVENT_CHANNEL_PREFIX" envDefault:"cleaning.events."`
	NotifierQueueSize   int           `env:"NOTIFIER_QUEUE_SIZE" envDefault:"1024"`
	NotifierWorkers     int           `env:"NOTIFIER_WORKERS" envDefault:"4"`
	NotifierMaxElapsed  time.Duration `env:"NOTIFIER_MAX_ELAPSED" envDefault:"2m"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"15s"`

	Mpesa MpesaConfig `envPrefix:"MPESA_"`

	PaymentPollSchedule   string        `env:"PAYMENT_POLL_SCHEDULE" envDefault:"@every 30s"`
	PaymentPollOlderThan  time.Duration `env:"PAYMENT_POLL_OLDER_THAN" envDefault:"1m"`
	PaymentExpirySchedule string        `env:"PAYMENT_EXPIRY_SCHEDULE" envDefault:"@every 1m"`
	PaymentExpiry         time.Duration `env:"PAYMENT_EXPIRY" envDefault:"10m"`
	PaymentJobBatchSize   int           `env:"PAYMENT_JOB_BATCH_SIZE" envDefault:"50"`
}

type MpesaConfig struct {
	BaseURL        string        `env:"BASE_URL" envDefault:"https://sandbox.safaricom.co.ke"`
	ConsumerKey    string        `env:"CONSUMER_KEY"`
	ConsumerSecret string        `env:"CONSUMER_SECRET"`
	ShortCode      string        `env:"SHORTCODE"`
	PassKey        string        `env:"PASSKEY"`
	CallbackURL    string        `env:"CALLBACK_URL"`
	ChargeTimeout  time.Duration `env:"CHARGE_TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads envFiles (missing files are skipped) without overriding variables that
// are already set, then parses the environment.
func LoadConfig(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// DSN is the PostgreSQL connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
