package persistence_test

import (
	"context"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"deals_bot/internal/domain/entity"
	"deals_bot/internal/infrastructure/persistence"
	"deals_bot/pkg/dbtest"
)

// Runs only against a disposable database: set PG_TEST_DSN to enable.
func testDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN is not set")
	}

	db, err := sqlx.Connect("pgx", dsn)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })

	require.NoError(t, dbtest.MigrateFromFile(db, "../../../migrations/0001_init.sql"))

	_, err = db.Exec(`TRUNCATE sent_deals, price_history`)
	require.NoError(t, err)

	return db
}

func testDeal(link string) entity.Deal {
	return entity.Deal{
		Product: entity.Product{
			Name:           "Test Earphone",
			Category:       "EARPHONES",
			Section:        "in-ears",
			AliexpressLink: link,
		},
		CurrentLanded:   120,
		OriginalPrice:   145,
		DiscountPercent: 17.24,
		DiscountAmount:  25,
		Currency:        "BRL",
		AffiliateLink:   "https://s.click.aliexpress.com/e/_aff",
		ProductID:       "1005007431129955",
		CheckedAt:       time.Now(),
	}
}

func TestSentDealRepository(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	repo := persistence.NewSentDealRepository(testDB(t))

	link := "https://www.aliexpress.com/item/1005007431129955.html"

	id, err := repo.Record(ctx, testDeal(link), 42)
	rq.NoError(err)
	rq.NotZero(id)

	sent, err := repo.WasSentRecently(ctx, link, 24*time.Hour)
	rq.NoError(err)
	rq.True(sent)

	sent, err = repo.WasSentRecently(ctx, link, time.Nanosecond)
	rq.NoError(err)
	rq.False(sent, "a record outside the window must not match")

	sent, err = repo.WasSentRecently(ctx, "https://www.aliexpress.com/item/1005000000000000.html", 24*time.Hour)
	rq.NoError(err)
	rq.False(sent)

	active, err := repo.ActiveDeals(ctx, 48*time.Hour)
	rq.NoError(err)
	rq.Len(active, 1)
	rq.Equal("Test Earphone", active[0].ProductName)
	rq.NotNil(active[0].TelegramMessageID)
	rq.EqualValues(42, *active[0].TelegramMessageID)

	summary, err := repo.Summary(ctx, 24*time.Hour)
	rq.NoError(err)
	rq.Equal(1, summary.TotalDeals)
	rq.InDelta(17.24, summary.AvgDiscount, 1e-9)
	rq.Equal(map[string]int{"EARPHONES": 1}, summary.ByCategory)

	rq.NoError(repo.MarkInactive(ctx, id))

	active, err = repo.ActiveDeals(ctx, 48*time.Hour)
	rq.NoError(err)
	rq.Empty(active)

	rq.NoError(repo.RecordPriceCheck(ctx, link, 120))

	removed, err := repo.CleanupOld(ctx, time.Nanosecond)
	rq.NoError(err)
	rq.EqualValues(1, removed)
}

func TestMarkInactiveMissingDeal(t *testing.T) {
	rq := require.New(t)

	repo := persistence.NewSentDealRepository(testDB(t))

	rq.Error(repo.MarkInactive(context.Background(), 999999))
}
