package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"deals_bot/internal/domain/service/pricing"
	"deals_bot/pkg/tests"
)

func TestImportTax(t *testing.T) {
	testCases := []struct {
		name     string
		usdPrice float64
		tax      float64
	}{
		{name: "zero price", usdPrice: 0, tax: 0},
		{name: "negative price", usdPrice: -10, tax: 0},
		{name: "low tier", usdPrice: 30, tax: 13.2},
		{name: "low tier boundary", usdPrice: 50, tax: 22},
		{name: "high tier", usdPrice: 75, tax: 49},
		{name: "high tier round", usdPrice: 100, tax: 72},
		{name: "high tier floored at zero", usdPrice: 50.01, tax: 50.01*0.92 - 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.tax, pricing.ImportTax(tc.usdPrice), 1e-9)
		})
	}
}

// The high-tier formula crosses zero near $21.74, but that tier only applies
// above $50, so the floor never fires in practice for valid low prices.
func TestImportTaxCrossover(t *testing.T) {
	rq := require.New(t)

	rq.InDelta(0.0, max(0, 21.74*0.92-20), 1e-2)
	rq.InDelta(21.74*0.44, pricing.ImportTax(21.74), 1e-9)
}

func TestLanded(t *testing.T) {
	rq := require.New(t)

	landed := pricing.Landed(100, 5.0)

	rq.InDelta(500.0, landed.Base, 1e-9)
	rq.InDelta(360.0, landed.Tax, 1e-9)
	rq.InDelta(860.0, landed.Total, 1e-9)
}

func TestLandedDeterministic(t *testing.T) {
	rq := require.New(t)

	random := tests.NewRandomizer()

	for i := 0; i < 100; i++ {
		price := random.Float64() * 200
		rate := 4 + random.Float64()*2

		first := pricing.Landed(price, rate)
		rq.Equal(first, pricing.Landed(price, rate))

		// the breakdown always adds up
		rq.InDelta(first.Total, first.Base+first.Tax, 1e-9)
		rq.GreaterOrEqual(first.Tax, 0.0)
	}
}

func TestLandedZeroPrice(t *testing.T) {
	rq := require.New(t)

	landed := pricing.Landed(0, 5.0)

	rq.Zero(landed.Base)
	rq.Zero(landed.Tax)
	rq.Zero(landed.Total)
}
