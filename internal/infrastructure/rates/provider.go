package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"deals_bot/internal/domain"
	"deals_bot/pkg/errcodes"
	"deals_bot/pkg/logx"
)

const (
	defaultEndpoint = "https://api.exchangerate-api.com/v4/latest/USD"
	fetchTimeout    = 5 * time.Second

	cacheKey = "rates:usd_brl"
	cacheTTL = time.Hour
)

type Config struct {
	Endpoint    string
	DefaultRate float64
	UseAPI      bool
}

// Provider supplies the USD to BRL conversion rate. It falls back to the
// configured default whenever the remote source is disabled or unreachable, so
// Rate never fails.
type Provider struct {
	cfg        Config
	httpClient *http.Client
	cache      *redis.Client
}

// NewProvider builds a provider. cache may be nil, then every Rate call with
// UseAPI enabled goes to the remote source.
func NewProvider(cfg Config, httpClient *http.Client, cache *redis.Client) *Provider {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}

	return &Provider{
		cfg:        cfg,
		httpClient: httpClient,
		cache:      cache,
	}
}

// Rate returns the current USD to BRL rate. The value is a snapshot: callers
// use one returned value for a whole evaluation.
func (p *Provider) Rate(ctx context.Context) float64 {
	if !p.cfg.UseAPI {
		return p.cfg.DefaultRate
	}

	if rate, ok := p.cached(ctx); ok {
		return rate
	}

	rate, err := p.fetch(ctx)
	if err != nil {
		logger(ctx).Warn("failed to fetch exchange rate, using default", logx.Error(err))
		return p.cfg.DefaultRate
	}

	p.store(ctx, rate)

	return rate
}

// Refresh drops the cached rate and fetches a fresh one.
func (p *Provider) Refresh(ctx context.Context) (float64, error) {
	if p.cache != nil {
		if err := p.cache.Del(ctx, cacheKey).Err(); err != nil {
			logger(ctx).Warn("failed to drop cached rate", logx.Error(err))
		}
	}

	rate, err := p.fetch(ctx)
	if err != nil {
		return 0, err
	}

	p.store(ctx, rate)

	return rate, nil
}

func (p *Provider) cached(ctx context.Context) (float64, bool) {
	if p.cache == nil {
		return 0, false
	}

	val, err := p.cache.Get(ctx, cacheKey).Result()
	if err != nil {
		return 0, false
	}

	rate, err := strconv.ParseFloat(val, 64)
	if err != nil || rate <= 0 {
		return 0, false
	}

	return rate, true
}

func (p *Provider) store(ctx context.Context, rate float64) {
	if p.cache == nil {
		return
	}

	if err := p.cache.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), cacheTTL).Err(); err != nil {
		logger(ctx).Warn("failed to cache exchange rate", logx.Error(err))
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

func (p *Provider) fetch(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.Endpoint, nil)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.RateUnavailable, "failed to build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.RateUnavailable, "rate source unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, domain.NewError(
			errcodes.RateUnavailable,
			fmt.Sprintf("rate source returned status %d", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.RateUnavailable, "failed to read rate response")
	}

	var parsed ratesResponse
	if err := jsoniter.Unmarshal(body, &parsed); err != nil {
		return 0, domain.WrapError(err, errcodes.RateUnavailable, "failed to decode rate response")
	}

	rate, ok := parsed.Rates["BRL"]
	if !ok || rate <= 0 {
		return 0, domain.NewError(errcodes.RateUnavailable, "no BRL rate in response")
	}

	return rate, nil
}
