package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"deals_bot/internal/domain"
	"deals_bot/pkg/errcodes"
)

const sampleCSV = `IEMs até R$100,,,,,,,,
Produto,Assinatura Sonora,Disponibilidade,Preço Base,Impostos,Preço Final,Review,Link,Descrição
KZ EDX Pro,V-shape,Em estoque,"R$ 89,90","44%","R$ 129,45",https://youtu.be/abc,https://www.aliexpress.com/item/1005001234567890.html,Bom custo
Moondrop Chu II,Neutro,Em estoque,"R$ 1.234,56",-,-,-,https://pt.aliexpress.com/item/1005009876543210.html,
Sem link,Neutro,Em estoque,"R$ 50,00",,,,https://mercadolivre.com.br/x,
,,,,,,,,
IEMs até R$300,,,,,,,,
Produto,Assinatura Sonora,Disponibilidade,Preço Base,Impostos,Preço Final,Review,Link,Descrição
Truthear Hexa,Neutro,Em estoque,https://youtu.be/wrong-cell,"92%","R$ 999,00",-,https://www.aliexpress.com/item/1005005555555555.html,
`

func testReader(t *testing.T, body string) *Reader {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	reader := NewReader(Config{
		SpreadsheetID: "test-sheet",
		SheetGIDs:     map[string]int{"EARPHONES": 0},
	}, srv.Client())

	return reader.WithBaseURL(srv.URL)
}

func TestProducts(t *testing.T) {
	rq := require.New(t)

	products, err := testReader(t, sampleCSV).Products(context.Background())
	rq.NoError(err)
	rq.Len(products, 3, "rows without a marketplace link must be dropped")

	kz := products[0]
	rq.Equal("KZ EDX Pro", kz.Name)
	rq.Equal("EARPHONES", kz.Category)
	rq.Equal("IEMs até R$100", kz.Section)
	rq.InDelta(89.90, kz.BasePrice, 1e-9)
	rq.InDelta(129.45, kz.FinalPrice, 1e-9)
	rq.InDelta(44, kz.TaxRate, 1e-9)
	rq.Equal("https://www.aliexpress.com/item/1005001234567890.html", kz.AliexpressLink)
	rq.Equal("Em estoque", kz.Availability)
	rq.Equal("https://youtu.be/abc", kz.ReviewLink)
	rq.InDelta(129.45, kz.ReferencePrice(), 1e-9)

	chu := products[1]
	rq.InDelta(1234.56, chu.BasePrice, 1e-9, "thousands dot and decimal comma")
	rq.Zero(chu.FinalPrice, "dash reads as unknown")
	rq.InDelta(1234.56, chu.ReferencePrice(), 1e-9, "falls back to base price")

	hexa := products[2]
	rq.Equal("IEMs até R$300", hexa.Section)
	rq.Zero(hexa.BasePrice, "URL in a price cell reads as 0")
	rq.InDelta(999, hexa.FinalPrice, 1e-9)
}

func TestProductsHTMLResponse(t *testing.T) {
	_, err := testReader(t, "<!DOCTYPE html><html><body>sign in</body></html>").Products(context.Background())

	require.Error(t, err)
	require.True(t, domain.HasCode(err, errcodes.CatalogUnreadable))
}

func TestProductsEmptySheet(t *testing.T) {
	_, err := testReader(t, "").Products(context.Background())

	require.Error(t, err)
	require.True(t, domain.HasCode(err, errcodes.CatalogUnreadable))
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"R$ 89,90", 89.90},
		{"R$ 1.234,56", 1234.56},
		{"1234.56", 1234.56},
		{"89,9", 89.9},
		{"-", 0},
		{"", 0},
		{"https://youtu.be/abc", 0},
		{"www.example.com", 0},
		{"não sei", 0},
	}

	for _, tc := range cases {
		require.InDelta(t, tc.want, parsePrice(tc.in), 1e-9, "parsePrice(%q)", tc.in)
	}
}

func TestIsSectionRow(t *testing.T) {
	rq := require.New(t)

	rq.True(isSectionRow([]string{"IEMs até R$100", "", ""}, "iems até r$100"))
	rq.False(isSectionRow([]string{"KZ EDX", "", "", "R$ 89,90"}, "kz edx"), "a price cell means a product row")
	rq.False(isSectionRow([]string{"KZ EDX", "https://aliexpress.com/item/1.html"}, "kz edx"))
	rq.False(isSectionRow([]string{"-"}, "-"))
	rq.False(isSectionRow([]string{"Produto", "Link"}, "produto"))
}
