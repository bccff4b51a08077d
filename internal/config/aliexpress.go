package config

type Aliexpress struct {
	APIURL     string `env:"ALIEXPRESS_API_URL" envDefault:"https://api-sg.aliexpress.com/sync"`
	AppKey     string `env:"ALIEXPRESS_APP_KEY,required"`
	AppSecret  string `env:"ALIEXPRESS_APP_SECRET,required" json:"-"`
	TrackingID string `env:"ALIEXPRESS_TRACKING_ID,required"`
	Currency   string `env:"ALIEXPRESS_TARGET_CURRENCY" envDefault:"BRL"`
	Language   string `env:"ALIEXPRESS_TARGET_LANGUAGE" envDefault:"en"`
	Country    string `env:"ALIEXPRESS_COUNTRY" envDefault:"BR"`
}
