package server

import (
	"time"

	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/rest"
)

func newRESTDeal(deal entity.SentDeal) rest.Deal {
	return rest.Deal{
		ID:                deal.ID,
		ProductName:       deal.ProductName,
		ProductLink:       deal.ProductLink,
		OriginalPrice:     deal.OriginalPrice,
		DealPrice:         deal.DealPrice,
		DiscountPercent:   deal.DiscountPercent,
		AffiliateLink:     deal.AffiliateLink,
		SentAt:            deal.SentAt.Format(time.RFC3339),
		TelegramMessageID: deal.TelegramMessageID,
		Category:          deal.Category,
		Section:           deal.Section,
		ProductID:         deal.ProductID,
	}
}

func newRESTSummary(summary entity.DealsSummary) rest.DealsSummary {
	return rest.DealsSummary{
		PeriodHours: summary.PeriodHours,
		TotalDeals:  summary.TotalDeals,
		AvgDiscount: summary.AvgDiscount,
		MinDiscount: summary.MinDiscount,
		MaxDiscount: summary.MaxDiscount,
		ByCategory:  summary.ByCategory,
	}
}
