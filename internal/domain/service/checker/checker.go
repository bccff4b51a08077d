// Package checker evaluates catalog products against live marketplace prices
// and decides whether a price drop qualifies as a publishable deal.
package checker

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"deals_bot/internal/domain/entity"
	"deals_bot/internal/domain/service/pricing"
	"deals_bot/internal/domain/service/resolver"
	"deals_bot/internal/domain/value"
)

const (
	defaultMinDiscountPercent = 10.0
	domesticCurrency          = "BRL"

	seenTTL = time.Hour
)

// Gateway is the price lookup side of the affiliate API. Errors carry one of
// the errcodes gateway kinds (RateLimited, AuthInvalid, ProductNotFound,
// Transient).
type Gateway interface {
	ProductDetail(ctx context.Context, productID string) (entity.Listing, error)
	GenerateLink(ctx context.Context, targetURL string) (string, error)
}

// Rates yields the current USD→BRL exchange rate. The checker snapshots it
// once per evaluation so a single deal never mixes two rates.
type Rates interface {
	Rate(ctx context.Context) float64
}

// Outcome is the tagged result of one evaluation: either a qualified deal or
// a rejection reason. Err, when set, is the underlying lookup failure and is
// only ever used for logging.
type Outcome struct {
	Product entity.Product
	Deal    *entity.Deal
	Reason  value.RejectReason
	Err     error
}

func (o Outcome) Qualified() bool {
	return o.Deal != nil
}

type Checker struct {
	gateway  Gateway
	resolver *resolver.Resolver
	rates    Rates

	// minDiscountBits holds the threshold as float bits. It is mutable at
	// runtime while evaluations are in flight, hence the atomic.
	minDiscountBits atomic.Uint64

	// seen guards against the same link qualifying twice within one run
	// when the catalog contains duplicates.
	seen *cache.Cache
}

func New(gateway Gateway, res *resolver.Resolver, rates Rates) *Checker {
	c := &Checker{
		gateway:  gateway,
		resolver: res,
		rates:    rates,
		seen:     cache.New(seenTTL, seenTTL),
	}
	c.minDiscountBits.Store(math.Float64bits(defaultMinDiscountPercent))

	return c
}

func (c *Checker) WithDiscountThreshold(percent float64) *Checker {
	c.SetDiscountThreshold(percent)
	return c
}

// MinDiscountPercent returns the active qualification threshold.
func (c *Checker) MinDiscountPercent() float64 {
	return math.Float64frombits(c.minDiscountBits.Load())
}

// SetDiscountThreshold changes the threshold at runtime (admin command,
// settings API). Safe to call while a run is evaluating.
func (c *Checker) SetDiscountThreshold(percent float64) {
	if percent > 0 {
		c.minDiscountBits.Store(math.Float64bits(percent))
	}
}

// ResetRun clears the per-run duplicate guard. The batch runner calls it at
// the start of every run.
func (c *Checker) ResetRun() {
	c.seen.Flush()
}

// Evaluate runs one product through the full pipeline:
// resolve → lookup → price → threshold → link. Every gate rejects with a
// reason instead of failing; only the final state constructs a Deal.
func (c *Checker) Evaluate(ctx context.Context, product entity.Product) Outcome {
	reject := func(reason value.RejectReason, err error) Outcome {
		return Outcome{Product: product, Reason: reason, Err: err}
	}

	if _, dup := c.seen.Get(product.AliexpressLink); dup {
		return reject(value.ReasonDuplicate, nil)
	}
	c.seen.Set(product.AliexpressLink, true, cache.DefaultExpiration)

	productID := c.resolver.Resolve(ctx, product.AliexpressLink)
	if productID == "" {
		return reject(value.ReasonUnresolvable, nil)
	}

	listing, err := c.gateway.ProductDetail(ctx, productID)
	if err != nil {
		return reject(value.ReasonLookupFailed, err)
	}

	if listing.SalePrice <= 0 {
		return reject(value.ReasonInvalidPrice, nil)
	}

	// Rate snapshot: read once, used for the whole evaluation.
	rate := c.rates.Rate(ctx)

	// The tax schedule is defined in USD. A listing already priced in BRL
	// is mapped back to its USD equivalent first, so it is not converted
	// twice.
	usdPrice := listing.SalePrice
	if strings.EqualFold(listing.Currency, domesticCurrency) {
		usdPrice = listing.SalePrice / rate
	}

	landed := pricing.Landed(usdPrice, rate)

	reference := product.ReferencePrice()
	if reference <= 0 {
		return reject(value.ReasonNoReference, nil)
	}

	if landed.Total >= reference {
		return reject(value.ReasonNotCheaper, nil)
	}

	discountAmount := reference - landed.Total
	discountPercent := discountAmount / reference * 100

	if discountPercent < c.MinDiscountPercent() {
		return reject(value.ReasonBelowThreshold, nil)
	}

	affiliateLink := c.outboundLink(ctx, product, productID)
	if affiliateLink == "" {
		return reject(value.ReasonNoLink, nil)
	}

	title := listing.Title
	if title == "" {
		title = product.Name
	}

	deal := &entity.Deal{
		Product:         product,
		CurrentPrice:    listing.SalePrice,
		ListedCurrency:  listing.Currency,
		CurrentLanded:   landed.Total,
		OriginalPrice:   reference,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		Currency:        domesticCurrency,
		AffiliateLink:   affiliateLink,
		ProductID:       productID,
		ImageURL:        listing.ImageURL,
		Title:           title,
		CheckedAt:       time.Now(),
	}

	return Outcome{Product: product, Deal: deal}
}

// outboundLink asks the gateway for an affiliate link and falls back to the
// product's own link, but only when that fallback is an absolute URL.
func (c *Checker) outboundLink(ctx context.Context, product entity.Product, productID string) string {
	target := fmt.Sprintf("https://www.aliexpress.com/item/%s.html", productID)

	link, err := c.gateway.GenerateLink(ctx, target)
	if err != nil || !isAbsoluteURL(link) {
		link = product.AliexpressLink
	}

	if link == "-" || !isAbsoluteURL(link) {
		return ""
	}

	return link
}

func isAbsoluteURL(link string) bool {
	return strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://")
}
