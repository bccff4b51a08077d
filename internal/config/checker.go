package config

import "time"

type Checker struct {
	MinDiscountPercent   float64       `env:"MIN_DISCOUNT_PERCENT" envDefault:"10"`
	MaxDealsPerRun       int           `env:"MAX_DEALS_PER_RUN" envDefault:"10"`
	DuplicateCheckHours  int           `env:"DUPLICATE_CHECK_HOURS" envDefault:"24"`
	BatchSize            int           `env:"BATCH_SIZE" envDefault:"5"`
	BatchPause           time.Duration `env:"BATCH_PAUSE" envDefault:"2s"`
	MessageDelay         time.Duration `env:"MESSAGE_DELAY" envDefault:"3s"`
	CheckInterval        time.Duration `env:"CHECK_INTERVAL" envDefault:"6h"`
	CleanupRetentionDays int           `env:"CLEANUP_RETENTION_DAYS" envDefault:"90"`

	USDToBRLRate   float64 `env:"USD_TO_BRL_RATE" envDefault:"5.0"`
	UseExchangeAPI bool    `env:"USE_EXCHANGE_RATE_API" envDefault:"false"`
	ExchangeAPIURL string  `env:"EXCHANGE_RATE_API_URL" envDefault:"https://api.exchangerate-api.com/v4/latest/USD"`
}

func (c Checker) DuplicateWindow() time.Duration {
	return time.Duration(c.DuplicateCheckHours) * time.Hour
}

func (c Checker) CleanupRetention() time.Duration {
	return time.Duration(c.CleanupRetentionDays) * 24 * time.Hour
}
