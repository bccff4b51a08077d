package entity

import "time"

// SentDeal is a published deal as recorded in the history store.
type SentDeal struct {
	ID                int64
	ProductName       string
	ProductLink       string
	OriginalPrice     float64
	DealPrice         float64
	DiscountPercent   float64
	AffiliateLink     string
	SentAt            time.Time
	TelegramMessageID *int64
	IsActive          bool
	Category          string
	Section           string
	ProductID         string
}

// AgeHours is the time elapsed since the deal was published.
func (d SentDeal) AgeHours() float64 {
	return time.Since(d.SentAt).Hours()
}

// DealsSummary aggregates the published deals of a period.
type DealsSummary struct {
	PeriodHours int            `json:"period_hours"`
	TotalDeals  int            `json:"total_deals"`
	AvgDiscount float64        `json:"avg_discount"`
	MinDiscount float64        `json:"min_discount"`
	MaxDiscount float64        `json:"max_discount"`
	ByCategory  map[string]int `json:"by_category"`
}
