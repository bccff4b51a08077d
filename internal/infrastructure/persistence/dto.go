package persistence

import (
	"time"

	"deals_bot/internal/domain/entity"
)

type sentDealSchema struct {
	ID                int64     `db:"id"`
	ProductName       string    `db:"product_name"`
	ProductLink       string    `db:"product_link"`
	OriginalPrice     float64   `db:"original_price"`
	DealPrice         float64   `db:"deal_price"`
	DiscountPercent   float64   `db:"discount_percent"`
	AffiliateLink     string    `db:"affiliate_link"`
	SentAt            time.Time `db:"sent_at"`
	TelegramMessageID *int64    `db:"telegram_message_id"`
	IsActive          bool      `db:"is_active"`
	Category          string    `db:"category"`
	Section           string    `db:"section"`
	ProductID         string    `db:"product_id"`
}

func (s sentDealSchema) toDomain() entity.SentDeal {
	return entity.SentDeal{
		ID:                s.ID,
		ProductName:       s.ProductName,
		ProductLink:       s.ProductLink,
		OriginalPrice:     s.OriginalPrice,
		DealPrice:         s.DealPrice,
		DiscountPercent:   s.DiscountPercent,
		AffiliateLink:     s.AffiliateLink,
		SentAt:            s.SentAt,
		TelegramMessageID: s.TelegramMessageID,
		IsActive:          s.IsActive,
		Category:          s.Category,
		Section:           s.Section,
		ProductID:         s.ProductID,
	}
}

type summarySchema struct {
	Count       int      `db:"count"`
	AvgDiscount *float64 `db:"avg_discount"`
	MinDiscount *float64 `db:"min_discount"`
	MaxDiscount *float64 `db:"max_discount"`
}

type categoryCountSchema struct {
	Category string `db:"category"`
	Count    int    `db:"count"`
}
