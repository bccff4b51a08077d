package entity

import "time"

// Deal is a qualified price drop, ready for publication.
type Deal struct {
	Product Product

	CurrentPrice    float64 // as listed, in ListedCurrency
	ListedCurrency  string
	CurrentLanded   float64 // landed BRL after import tax
	OriginalPrice   float64 // reference landed BRL
	DiscountPercent float64
	DiscountAmount  float64 // BRL
	Currency        string  // display currency, always BRL

	AffiliateLink string
	ProductID     string
	ImageURL      string
	Title         string

	CheckedAt time.Time
}
