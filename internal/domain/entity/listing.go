package entity

// Listing is the typed view of a marketplace product detail response.
// Fetched fresh per evaluation, never cached beyond one run.
type Listing struct {
	ProductID     string
	SalePrice     float64 // in Currency
	OriginalPrice float64
	Currency      string
	Title         string
	ImageURL      string
}
