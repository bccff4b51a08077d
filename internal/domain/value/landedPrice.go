package value

// LandedPrice is a price decomposition in BRL after applying the import tax.
// Pure value, no identity.
type LandedPrice struct {
	Base  float64
	Tax   float64
	Total float64
}
