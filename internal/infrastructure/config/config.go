package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Mongo      MongoConfig
	Redis      RedisConfig
	SMTP       SMTPConfig
	Cloudinary CloudinaryConfig
	QR         QRConfig
	Queue      QueueConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=client_registry"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string        `env:"SMTP_HOST,     default=localhost"`
	Port     int           `env:"SMTP_PORT,     default=587"`
	From     string        `env:"SMTP_FROM,     default=no-reply@localhost"`
	Username string        `env:"SMTP_USER"`
	Password string        `env:"SMTP_PASS"`
	TLSMode  string        `env:"SMTP_TLS_MODE, default=auto"`
	Timeout  time.Duration `env:"SMTP_TIMEOUT,  default=15s"`
}

type CloudinaryConfig struct {
	URL     string        `env:"CLOUDINARY_URL"`
	Folder  string        `env:"CLOUDINARY_FOLDER,  default=clients"`
	Timeout time.Duration `env:"CLOUDINARY_TIMEOUT, default=30s"`
}

type QRConfig struct {
	Size int `env:"QR_SIZE, default=200"`
}

type QueueConfig struct {
	Workers int `env:"QUEUE_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
