package worker

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deals_bot/internal/domain"
	"deals_bot/internal/domain/entity"
	"deals_bot/internal/domain/service/checker"
	"deals_bot/pkg/logx"
)

// Catalog supplies the products to check.
type Catalog interface {
	Products(ctx context.Context) ([]entity.Product, error)
}

// History is the published-deals store used for pre-filtering and recording.
type History interface {
	WasSentRecently(ctx context.Context, productLink string, window time.Duration) (bool, error)
	Record(ctx context.Context, deal entity.Deal, messageID int64) (int64, error)
	RecordPriceCheck(ctx context.Context, productLink string, price float64) error
	CleanupOld(ctx context.Context, retention time.Duration) (int64, error)
}

// Notifier publishes qualified deals.
type Notifier interface {
	SendDeal(ctx context.Context, deal entity.Deal) (int64, error)
}

type Config struct {
	BatchSize        int
	BatchPause       time.Duration
	MessageDelay     time.Duration
	MaxDealsPerRun   int
	DuplicateWindow  time.Duration
	CleanupRetention time.Duration
}

// RunStats summarizes a completed check run.
type RunStats struct {
	ProductsChecked int
	DealsFound      int
	DealsSent       int
	Duration        time.Duration
}

// DealScanner drives the whole check: load the catalog, evaluate products in
// bounded batches, rank the survivors and publish the best.
type DealScanner struct {
	catalog  Catalog
	checker  *checker.Checker
	history  History
	notifier Notifier

	cfg Config

	mu        sync.Mutex
	running   bool
	lastStats *RunStats
	lastRunAt time.Time
}

// ErrRunInProgress is returned when a check run overlaps an active one.
var ErrRunInProgress = errors.New("a check run is already in progress")

func NewDealScanner(
	catalog Catalog,
	chk *checker.Checker,
	history History,
	notifier Notifier,
	cfg Config,
) *DealScanner {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5
	}
	if cfg.MaxDealsPerRun <= 0 {
		cfg.MaxDealsPerRun = 10
	}

	return &DealScanner{
		catalog:  catalog,
		checker:  chk,
		history:  history,
		notifier: notifier,
		cfg:      cfg,
	}
}

// RunOnce executes one full check cycle and returns its stats. One failed
// product or send never aborts the run; only catalog and context failures do.
func (s *DealScanner) RunOnce(ctx context.Context) (RunStats, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return RunStats{}, ErrRunInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()

	logger(ctx).Info("starting deals check")

	products, err := s.catalog.Products(ctx)
	if err != nil {
		return RunStats{}, err
	}

	stats := RunStats{ProductsChecked: len(products)}

	deals, err := s.EvaluateAll(ctx, products)
	if err != nil {
		return stats, err
	}

	stats.DealsFound = len(deals)

	best := s.FilterBest(deals, s.cfg.MaxDealsPerRun, s.checker.MinDiscountPercent())

	for i, deal := range best {
		if i > 0 && s.cfg.MessageDelay > 0 {
			if err := sleepCtx(ctx, s.cfg.MessageDelay); err != nil {
				return stats, err
			}
		}

		if err := s.publish(ctx, deal); err != nil {
			logger(ctx).Error(
				"failed to publish deal",
				slog.String(logx.FieldProduct, deal.Product.Name),
				logx.Error(err),
			)
			continue
		}

		stats.DealsSent++
	}

	if s.cfg.CleanupRetention > 0 {
		if removed, err := s.history.CleanupOld(ctx, s.cfg.CleanupRetention); err != nil {
			logger(ctx).Warn("history cleanup failed", logx.Error(err))
		} else if removed > 0 {
			logger(ctx).Info("history cleanup done", slog.Int64("removed", removed))
		}
	}

	stats.Duration = time.Since(start)

	logger(ctx).Info(
		"deals check completed",
		slog.Int("products-checked", stats.ProductsChecked),
		slog.Int("deals-found", stats.DealsFound),
		slog.Int("deals-sent", stats.DealsSent),
		slog.Int64(logx.FieldDurationMs, stats.Duration.Milliseconds()),
	)

	runsTotal.Inc()
	dealsFound.Add(float64(stats.DealsFound))
	dealsSent.Add(float64(stats.DealsSent))

	s.mu.Lock()
	s.lastStats = &stats
	s.lastRunAt = time.Now()
	s.mu.Unlock()

	return stats, nil
}

// IsRunning reports whether a check run is active.
func (s *DealScanner) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastRun returns the stats of the most recent completed run, if any.
func (s *DealScanner) LastRun() (RunStats, time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastStats == nil {
		return RunStats{}, time.Time{}, false
	}
	return *s.lastStats, s.lastRunAt, true
}

// EvaluateAll checks the products in batches. Within a batch the lookups run
// concurrently; between batches there is a fixed pause so the marketplace API
// is not hammered. Results keep the catalog order.
func (s *DealScanner) EvaluateAll(ctx context.Context, products []entity.Product) ([]entity.Deal, error) {
	s.checker.ResetRun()

	toCheck := s.prefilter(ctx, products)

	logger(ctx).Info("evaluating products", slog.Int("count", len(toCheck)))

	outcomes := make([]checker.Outcome, len(toCheck))

	for offset := 0; offset < len(toCheck); offset += s.cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := offset + s.cfg.BatchSize
		if end > len(toCheck) {
			end = len(toCheck)
		}

		g, gCtx := errgroup.WithContext(ctx)
		for i := offset; i < end; i++ {
			g.Go(func() error {
				outcomes[i] = s.checker.Evaluate(gCtx, toCheck[i])
				return nil
			})
		}
		// Evaluate never returns an error, rejections are outcomes.
		_ = g.Wait()

		if end < len(toCheck) && s.cfg.BatchPause > 0 {
			if err := sleepCtx(ctx, s.cfg.BatchPause); err != nil {
				return nil, err
			}
		}
	}

	var deals []entity.Deal
	for _, outcome := range outcomes {
		if outcome.Qualified() {
			deals = append(deals, *outcome.Deal)
			continue
		}

		productsRejected.WithLabelValues(rejectionLabel(outcome)).Inc()

		attrs := []any{
			slog.String(logx.FieldProduct, outcome.Product.Name),
			slog.String(logx.FieldReason, outcome.Reason.String()),
		}
		if code, ok := domain.GetCode(outcome.Err); ok {
			attrs = append(attrs, slog.String(logx.FieldCode, code.String()))
		}
		if outcome.Err != nil {
			attrs = append(attrs, logx.Error(outcome.Err))
		}
		logger(ctx).Debug("product rejected", attrs...)
	}

	return deals, nil
}

// rejectionLabel qualifies lookup failures with the gateway error kind, so
// rate-limit rejections count apart from auth and not-found ones.
func rejectionLabel(outcome checker.Outcome) string {
	if code, ok := domain.GetCode(outcome.Err); ok {
		return outcome.Reason.String() + ":" + code.String()
	}
	return outcome.Reason.String()
}

// FilterBest keeps deals at or above minDiscount, ranks them best first and
// truncates to max. The sort is stable so equal discounts keep their catalog
// order.
func (s *DealScanner) FilterBest(deals []entity.Deal, max int, minDiscount float64) []entity.Deal {
	best := make([]entity.Deal, 0, len(deals))
	for _, deal := range deals {
		if deal.DiscountPercent >= minDiscount {
			best = append(best, deal)
		}
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].DiscountPercent > best[j].DiscountPercent
	})

	if max > 0 && len(best) > max {
		best = best[:max]
	}

	return best
}

// prefilter drops products already published within the duplicate window,
// before any network call is made for them. A failing history read lets the
// product through rather than silently dropping it.
func (s *DealScanner) prefilter(ctx context.Context, products []entity.Product) []entity.Product {
	if s.cfg.DuplicateWindow <= 0 {
		return products
	}

	kept := make([]entity.Product, 0, len(products))

	for _, product := range products {
		if product.AliexpressLink == "" {
			continue
		}

		sent, err := s.history.WasSentRecently(ctx, product.AliexpressLink, s.cfg.DuplicateWindow)
		if err != nil {
			logger(ctx).Warn(
				"history lookup failed, checking anyway",
				slog.String(logx.FieldProduct, product.Name),
				logx.Error(err),
			)
		}
		if sent {
			continue
		}

		kept = append(kept, product)
	}

	return kept
}

func (s *DealScanner) publish(ctx context.Context, deal entity.Deal) error {
	messageID, err := s.notifier.SendDeal(ctx, deal)
	if err != nil {
		return err
	}

	if _, err := s.history.Record(ctx, deal, messageID); err != nil {
		logger(ctx).Error(
			"deal sent but not recorded",
			slog.String(logx.FieldProduct, deal.Product.Name),
			logx.Error(err),
		)
	}

	if err := s.history.RecordPriceCheck(ctx, deal.Product.AliexpressLink, deal.CurrentLanded); err != nil {
		logger(ctx).Warn("failed to record price check", logx.Error(err))
	}

	logger(ctx).Info(
		"deal published",
		slog.String(logx.FieldProduct, deal.Product.Name),
		slog.Float64(logx.FieldDiscount, deal.DiscountPercent),
		slog.Int64(logx.FieldMessageID, messageID),
	)

	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
