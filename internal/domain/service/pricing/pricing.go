// Package pricing implements the Brazilian import-tax model for foreign
// marketplace prices. All functions are pure: the exchange rate is always an
// explicit argument, never ambient state.
package pricing

import "deals_bot/internal/domain/value"

const (
	lowTierLimit = 50.0
	lowTierRate  = 0.44
	highTierRate = 0.92
	highTierBase = 20.0
)

// ImportTax returns the import tax in USD for a USD price.
//
// The schedule is piecewise: purchases up to $50 are taxed at a flat 44%;
// above $50 the effective formula is 92% minus a $20 rebate, floored at zero
// (the crossover makes prices just above $21.74 effectively tax-free under
// the high tier, which never applies there).
func ImportTax(usdPrice float64) float64 {
	if usdPrice <= 0 {
		return 0
	}

	if usdPrice <= lowTierLimit {
		return usdPrice * lowTierRate
	}

	tax := usdPrice*highTierRate - highTierBase
	if tax < 0 {
		return 0
	}

	return tax
}

// Landed converts a USD price into a landed BRL price under the given
// exchange rate: base and tax are converted separately, total is their sum.
func Landed(usdPrice, usdToBRL float64) value.LandedPrice {
	taxUSD := ImportTax(usdPrice)

	base := usdPrice * usdToBRL
	tax := taxUSD * usdToBRL

	return value.LandedPrice{
		Base:  base,
		Tax:   tax,
		Total: base + tax,
	}
}
