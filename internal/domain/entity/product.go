package entity

// Product is a single catalog row from the spreadsheet export. Immutable once
// read; the marketplace link doubles as the dedup identity.
type Product struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Section        string  `json:"section"`
	BasePrice      float64 `json:"base_price"`  // landed BRL, 0 when unknown
	FinalPrice     float64 `json:"final_price"` // landed BRL, 0 when unknown
	TaxRate        float64 `json:"tax_rate"`    // informational only
	AliexpressLink string  `json:"aliexpress_link"`
	Description    string  `json:"description,omitempty"`
	Availability   string  `json:"availability,omitempty"`
	ReviewLink     string  `json:"review_link,omitempty"`
}

// ReferencePrice returns the landed price new offers are compared against:
// the final price when known, else the base price, else 0.
func (p Product) ReferencePrice() float64 {
	if p.FinalPrice > 0 {
		return p.FinalPrice
	}
	return p.BasePrice
}
