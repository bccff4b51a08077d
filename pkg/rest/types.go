// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

type Deal struct {
	ID                int64   `json:"id"`
	ProductName       string  `json:"productName"`
	ProductLink       string  `json:"productLink"`
	OriginalPrice     float64 `json:"originalPrice"`
	DealPrice         float64 `json:"dealPrice"`
	DiscountPercent   float64 `json:"discountPercent"`
	AffiliateLink     string  `json:"affiliateLink"`
	SentAt            string  `json:"sentAt"`
	TelegramMessageID *int64  `json:"telegramMessageId,omitempty"`
	Category          string  `json:"category,omitempty"`
	Section           string  `json:"section,omitempty"`
	ProductID         string  `json:"productId,omitempty"`
}

type DealsSummary struct {
	PeriodHours int            `json:"periodHours"`
	TotalDeals  int            `json:"totalDeals"`
	AvgDiscount float64        `json:"avgDiscount"`
	MinDiscount float64        `json:"minDiscount"`
	MaxDiscount float64        `json:"maxDiscount"`
	ByCategory  map[string]int `json:"byCategory"`
}

type DiscountSettings struct {
	MinDiscountPercent float64 `json:"minDiscountPercent" validate:"required,gt=0,lt=100"`
}

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`
}

// ErrorCode Код ошибки
type ErrorCode string
