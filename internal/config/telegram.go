package config

type Telegram struct {
	BotToken  string `env:"TELEGRAM_BOT_TOKEN,required" json:"-"`
	ChannelID string `env:"TELEGRAM_CHANNEL_ID,required"`
	AdminID   int64  `env:"TELEGRAM_ADMIN_ID,required"`
}
