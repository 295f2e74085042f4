package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const defaultGreeting = "Hello, I am your bot!"

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// Greeting is the fixed message dispatched to a resolved chat. The default
	// contains a comma, which envconfig tag defaults cannot express, so it is
	// applied in Load.
	Greeting string `env:"GREETING_TEXT"`

	SendTimeout time.Duration `env:"SEND_TIMEOUT, default=10s"`

	Telegram TelegramConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type TelegramConfig struct {
	Token       string `env:"BOT_TOKEN"`
	PollTimeout int    `env:"BOT_POLL_TIMEOUT, default=30"`
	Workers     int    `env:"BOT_WORKERS,      default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=qrnotify"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	if cfg.Greeting == "" {
		cfg.Greeting = defaultGreeting
	}
	return &cfg
}
