package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App        App
	Checker    Checker
	Postgres   Postgres
	Redis      Redis
	Telegram   Telegram
	Aliexpress Aliexpress
	Sheets     Sheets
	Server     Server
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"deals-bot"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
