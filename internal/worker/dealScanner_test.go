package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"deals_bot/internal/domain"
	"deals_bot/internal/domain/entity"
	"deals_bot/internal/domain/service/checker"
	"deals_bot/internal/domain/service/resolver"
	"deals_bot/internal/domain/value"
	"deals_bot/pkg/errcodes"
)

type fakeCatalog struct {
	products []entity.Product
	err      error
}

func (f *fakeCatalog) Products(context.Context) ([]entity.Product, error) {
	return f.products, f.err
}

type fakeHistory struct {
	mu sync.Mutex

	recentLinks map[string]bool
	lookupErr   error

	recorded     []entity.Deal
	priceChecks  int
	cleanupCalls int
}

func (f *fakeHistory) WasSentRecently(_ context.Context, link string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recentLinks[link], f.lookupErr
}

func (f *fakeHistory) Record(_ context.Context, deal entity.Deal, _ int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, deal)
	return int64(len(f.recorded)), nil
}

func (f *fakeHistory) RecordPriceCheck(context.Context, string, float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceChecks++
	return nil
}

func (f *fakeHistory) CleanupOld(context.Context, time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleanupCalls++
	return 0, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []entity.Deal
	err  error
}

func (f *fakeNotifier) SendDeal(_ context.Context, deal entity.Deal) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.sent = append(f.sent, deal)
	return int64(100 + len(f.sent)), nil
}

// scanGateway serves listings keyed by product ID. failID simulates one
// broken lookup.
type scanGateway struct {
	mu       sync.Mutex
	listings map[string]entity.Listing
	failID   string
	calls    int
}

func (g *scanGateway) ProductDetail(_ context.Context, id string) (entity.Listing, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if id == g.failID {
		return entity.Listing{}, domain.NewError(errcodes.Transient, "boom")
	}

	listing, ok := g.listings[id]
	if !ok {
		return entity.Listing{}, domain.NewError(errcodes.ProductNotFound, "product not found")
	}
	return listing, nil
}

func (g *scanGateway) GenerateLink(_ context.Context, _ string) (string, error) {
	return "https://s.click.aliexpress.com/e/_aff", nil
}

type fixedRates struct{ rate float64 }

func (f fixedRates) Rate(context.Context) float64 { return f.rate }

// catalogProduct builds a product whose landed price yields the wanted
// discount against a 200 BRL reference at rate 5.0.
func catalogProduct(i int, discountPercent float64) (entity.Product, entity.Listing) {
	id := fmt.Sprintf("100500000000000%d", i)

	const reference = 200.0
	landed := reference * (1 - discountPercent/100)

	// landed(p, 5) for p <= 50 is p*5*1.44
	usd := landed / 5.0 / 1.44

	product := entity.Product{
		Name:           fmt.Sprintf("Product %d", i),
		FinalPrice:     reference,
		AliexpressLink: fmt.Sprintf("https://www.aliexpress.com/item/%s.html", id),
	}
	listing := entity.Listing{ProductID: id, SalePrice: usd, Currency: "USD", Title: product.Name}

	return product, listing
}

func newScanner(products []entity.Product, gateway *scanGateway, history *fakeHistory, notif *fakeNotifier, cfg Config) *DealScanner {
	chk := checker.New(gateway, resolver.New(nil), fixedRates{rate: 5.0})
	return NewDealScanner(&fakeCatalog{products: products}, chk, history, notif, cfg)
}

func TestFilterBest(t *testing.T) {
	scanner := &DealScanner{}

	deals := []entity.Deal{
		{DiscountPercent: 12},
		{DiscountPercent: 45},
		{DiscountPercent: 8},
		{DiscountPercent: 30},
	}

	best := scanner.FilterBest(deals, 2, 10)

	require.Len(t, best, 2)
	require.InDelta(t, 45, best[0].DiscountPercent, 1e-9)
	require.InDelta(t, 30, best[1].DiscountPercent, 1e-9)

	// input order untouched
	require.InDelta(t, 12, deals[0].DiscountPercent, 1e-9)
}

func TestRejectionLabelCarriesGatewayErrorKind(t *testing.T) {
	rq := require.New(t)

	rq.Equal("below_threshold", rejectionLabel(checker.Outcome{Reason: value.ReasonBelowThreshold}))

	rq.Equal("lookup_failed:RateLimited", rejectionLabel(checker.Outcome{
		Reason: value.ReasonLookupFailed,
		Err:    domain.NewError(errcodes.RateLimited, "api call limit"),
	}))

	rq.Equal("lookup_failed:ProductNotFound", rejectionLabel(checker.Outcome{
		Reason: value.ReasonLookupFailed,
		Err:    domain.NewError(errcodes.ProductNotFound, "no products"),
	}))
}

func TestFilterBestThreshold(t *testing.T) {
	scanner := &DealScanner{}

	deals := []entity.Deal{
		{DiscountPercent: 12},
		{DiscountPercent: 45},
		{DiscountPercent: 8},
	}

	best := scanner.FilterBest(deals, 10, 15)

	require.Len(t, best, 1)
	require.InDelta(t, 45, best[0].DiscountPercent, 1e-9)
}

func TestFilterBestStable(t *testing.T) {
	scanner := &DealScanner{}

	deals := []entity.Deal{
		{Title: "first", DiscountPercent: 20},
		{Title: "second", DiscountPercent: 20},
	}

	best := scanner.FilterBest(deals, 10, 0)

	require.Equal(t, "first", best[0].Title)
	require.Equal(t, "second", best[1].Title)
}

func TestRunOncePublishesBestDeals(t *testing.T) {
	rq := require.New(t)

	gateway := &scanGateway{listings: map[string]entity.Listing{}}

	var products []entity.Product
	for i, discount := range []float64{12, 45, 8, 30} {
		product, listing := catalogProduct(i, discount)
		products = append(products, product)
		gateway.listings[listing.ProductID] = listing
	}

	history := &fakeHistory{}
	notif := &fakeNotifier{}

	scanner := newScanner(products, gateway, history, notif, Config{
		BatchSize:        2,
		MaxDealsPerRun:   2,
		DuplicateWindow:  24 * time.Hour,
		CleanupRetention: 90 * 24 * time.Hour,
	})

	stats, err := scanner.RunOnce(context.Background())
	rq.NoError(err)

	rq.Equal(4, stats.ProductsChecked)
	rq.Equal(3, stats.DealsFound, "8%% is below the default threshold")
	rq.Equal(2, stats.DealsSent)

	rq.Len(notif.sent, 2)
	rq.InDelta(45, notif.sent[0].DiscountPercent, 0.1)
	rq.InDelta(30, notif.sent[1].DiscountPercent, 0.1)

	rq.Len(history.recorded, 2)
	rq.Equal(2, history.priceChecks)
	rq.Equal(1, history.cleanupCalls)
}

func TestEvaluateAllSkipsRecentlySent(t *testing.T) {
	rq := require.New(t)

	gateway := &scanGateway{listings: map[string]entity.Listing{}}

	productA, listingA := catalogProduct(1, 30)
	productB, listingB := catalogProduct(2, 20)
	gateway.listings[listingA.ProductID] = listingA
	gateway.listings[listingB.ProductID] = listingB

	history := &fakeHistory{recentLinks: map[string]bool{productA.AliexpressLink: true}}

	scanner := newScanner([]entity.Product{productA, productB}, gateway, history, &fakeNotifier{}, Config{
		DuplicateWindow: 24 * time.Hour,
	})

	deals, err := scanner.EvaluateAll(context.Background(), []entity.Product{productA, productB})
	rq.NoError(err)

	rq.Len(deals, 1)
	rq.Equal(productB.Name, deals[0].Product.Name)
	rq.Equal(1, gateway.calls, "a recently sent product must not hit the network")
}

func TestEvaluateAllOneFailureDoesNotAbort(t *testing.T) {
	rq := require.New(t)

	gateway := &scanGateway{listings: map[string]entity.Listing{}}

	var products []entity.Product
	for i := range 3 {
		product, listing := catalogProduct(i, 30)
		products = append(products, product)
		gateway.listings[listing.ProductID] = listing
	}
	gateway.failID = "1005000000000001"

	scanner := newScanner(products, gateway, &fakeHistory{}, &fakeNotifier{}, Config{BatchSize: 2})

	deals, err := scanner.EvaluateAll(context.Background(), products)
	rq.NoError(err)
	rq.Len(deals, 2)
}

func TestEvaluateAllCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	product, _ := catalogProduct(1, 30)
	scanner := newScanner([]entity.Product{product}, &scanGateway{}, &fakeHistory{}, &fakeNotifier{}, Config{})

	_, err := scanner.EvaluateAll(ctx, []entity.Product{product})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunOnceCatalogError(t *testing.T) {
	chk := checker.New(&scanGateway{}, resolver.New(nil), fixedRates{rate: 5.0})
	scanner := NewDealScanner(
		&fakeCatalog{err: errors.New("sheet unreachable")},
		chk,
		&fakeHistory{},
		&fakeNotifier{},
		Config{},
	)

	_, err := scanner.RunOnce(context.Background())
	require.Error(t, err)
}

func TestRunOnceSendFailureContinues(t *testing.T) {
	rq := require.New(t)

	gateway := &scanGateway{listings: map[string]entity.Listing{}}
	product, listing := catalogProduct(1, 30)
	gateway.listings[listing.ProductID] = listing

	history := &fakeHistory{}
	notif := &fakeNotifier{err: errors.New("telegram down")}

	scanner := newScanner([]entity.Product{product}, gateway, history, notif, Config{})

	stats, err := scanner.RunOnce(context.Background())
	rq.NoError(err)
	rq.Equal(1, stats.DealsFound)
	rq.Zero(stats.DealsSent)
	rq.Empty(history.recorded, "a failed send must not be recorded")
}
