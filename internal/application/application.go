package application

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mymmrac/telego"
	"golang.org/x/sync/errgroup"

	"deals_bot/internal/config"
	"deals_bot/internal/domain/service/checker"
	"deals_bot/internal/domain/service/resolver"
	"deals_bot/internal/infrastructure/aliexpress"
	"deals_bot/internal/infrastructure/notifier"
	"deals_bot/internal/infrastructure/persistence"
	"deals_bot/internal/infrastructure/rates"
	"deals_bot/internal/infrastructure/sheets"
	"deals_bot/internal/server"
	"deals_bot/internal/transport/bot"
	"deals_bot/internal/transport/bot/handler"
	"deals_bot/internal/worker"
	"deals_bot/pkg/application/connectors"
	"deals_bot/pkg/application/modules"
	"deals_bot/pkg/httpx"
	"deals_bot/pkg/logx"
	"deals_bot/pkg/middlewarex"
)

const (
	httpServerReadHeaderTimeout = 5 * time.Second
	externalHTTPTimeout         = 30 * time.Second
	logFieldMaxLen              = 2048
)

func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// Connectors.
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}

	redis := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := redis.Client(ctx)
	defer redis.Close(ctx)

	repo := persistence.NewSentDealRepository(db)

	// One logging HTTP client for every external call.
	masker := logx.NewSensitiveDataMasker()
	externalClient := &http.Client{
		Transport: httpx.NewLoggingRoundTripper(
			http.DefaultTransport,
			httpx.WithSensitiveDataMasker(masker),
			httpx.WithLogFieldMaxLen(logFieldMaxLen),
		),
		Timeout: externalHTTPTimeout,
	}

	// Domain services.
	ratesProvider := rates.NewProvider(rates.Config{
		Endpoint:    cfg.Checker.ExchangeAPIURL,
		DefaultRate: cfg.Checker.USDToBRLRate,
		UseAPI:      cfg.Checker.UseExchangeAPI,
	}, externalClient, redisClient)

	gateway := aliexpress.NewClient(aliexpress.Config{
		APIURL:         cfg.Aliexpress.APIURL,
		AppKey:         cfg.Aliexpress.AppKey,
		AppSecret:      cfg.Aliexpress.AppSecret,
		TrackingID:     cfg.Aliexpress.TrackingID,
		TargetCurrency: cfg.Aliexpress.Currency,
		TargetLanguage: cfg.Aliexpress.Language,
		Country:        cfg.Aliexpress.Country,
	}, externalClient)

	res := resolver.New(aliexpress.NewExpander(externalClient))

	chk := checker.New(gateway, res, ratesProvider).
		WithDiscountThreshold(cfg.Checker.MinDiscountPercent)

	catalog := sheets.NewReader(sheets.Config{
		SpreadsheetID: cfg.Sheets.SpreadsheetID,
		SheetGIDs:     cfg.Sheets.SheetGIDs,
	}, externalClient)

	// Telegram: one client shared by the channel notifier and the admin bot.
	tgBot, err := telego.NewBot(cfg.Telegram.BotToken)
	if err != nil {
		return fmt.Errorf("telego.NewBot: %w", err)
	}

	channel := notifier.NewTelegramBot(tgBot, parseChatID(cfg.Telegram.ChannelID), ratesProvider)

	scanner := worker.NewDealScanner(catalog, chk, repo, channel, worker.Config{
		BatchSize:        cfg.Checker.BatchSize,
		BatchPause:       cfg.Checker.BatchPause,
		MessageDelay:     cfg.Checker.MessageDelay,
		MaxDealsPerRun:   cfg.Checker.MaxDealsPerRun,
		DuplicateWindow:  cfg.Checker.DuplicateWindow(),
		CleanupRetention: cfg.Checker.CleanupRetention(),
	})

	commandHandler := handler.New(scanner, chk, repo, channel, cfg.Checker.DuplicateWindow())

	adminBot, err := bot.New(tgBot, cfg.Telegram.AdminID, commandHandler)
	if err != nil {
		return fmt.Errorf("bot.New: %w", err)
	}

	// Modules.
	g, gCtx := errgroup.WithContext(ctx)

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Server.ProbeListenAddress,
	}.Run(gCtx, g)

	modules.MetricServer{
		ListenAddress: cfg.Server.MetricsListenAddress,
	}.Run(gCtx, g)

	modules.HTTPServer{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}.Run(gCtx, g, newHTTPServer(gCtx, cfg.Server.ListenAddress, repo, chk, masker))

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(gCtx, g,
		modules.AsynqQueues{"default": 1},
		modules.AsynqHandler{Pattern: worker.TaskDealsCheck, Handle: scanner.HandleDealsCheck},
	)

	modules.AsynqScheduler{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(gCtx, g, modules.AsynqScheduleEntry{
		Spec: "@every " + cfg.Checker.CheckInterval.String(),
		Task: worker.NewDealsCheckTask(),
	})

	g.Go(func() error {
		if err := adminBot.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("adminBot.Run: %w", err)
		}
		return nil
	})

	logger(ctx).Info("application started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

func newHTTPServer(
	ctx context.Context,
	listenAddress string,
	repo *persistence.SentDealRepository,
	chk *checker.Checker,
	masker logx.SensitiveDataMasker,
) *http.Server {
	router := chi.NewRouter()

	router.Use(
		middlewarex.Recovery,
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	server.NewServer(server.NewDealsServer(repo), server.NewSettingsServer(chk)).RegisterRoutes(router)

	//nolint:exhaustruct
	return &http.Server{
		Addr:              listenAddress,
		Handler:           router,
		ReadHeaderTimeout: httpServerReadHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

// parseChatID accepts either a numeric chat ID or a public channel username.
func parseChatID(raw string) telego.ChatID {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return telego.ChatID{ID: id}
	}

	if !strings.HasPrefix(raw, "@") {
		raw = "@" + raw
	}

	return telego.ChatID{Username: raw}
}
