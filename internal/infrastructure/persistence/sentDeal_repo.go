package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"deals_bot/internal/domain"
	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/errcodes"
)

// SentDealRepository is the deals history store over Postgres.
type SentDealRepository struct {
	db *sqlx.DB
}

func NewSentDealRepository(db *sqlx.DB) *SentDealRepository {
	return &SentDealRepository{db: db}
}

// withTx runs fn inside a transaction.
func (r *SentDealRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// WasSentRecently reports whether a deal for the link was published within
// the window. This is the pre-filter read used before any network call.
func (r *SentDealRepository) WasSentRecently(ctx context.Context, productLink string, window time.Duration) (bool, error) {
	query := `
		SELECT id FROM sent_deals
		WHERE product_link = $1 AND sent_at > $2
		ORDER BY sent_at DESC
		LIMIT 1`

	cutoff := time.Now().Add(-window)

	var id int64
	if err := r.db.GetContext(ctx, &id, query, productLink, cutoff); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to query recent deals")
	}

	return true, nil
}

// Record persists a published deal together with its Telegram message ID and
// returns the new record's ID.
func (r *SentDealRepository) Record(ctx context.Context, deal entity.Deal, messageID int64) (int64, error) {
	query := `
		INSERT INTO sent_deals
			(product_name, product_link, original_price, deal_price,
			 discount_percent, affiliate_link, telegram_message_id,
			 category, section, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var msgID *int64
	if messageID != 0 {
		msgID = &messageID
	}

	var id int64
	err := r.db.GetContext(ctx, &id, query,
		deal.Product.Name,
		deal.Product.AliexpressLink,
		deal.OriginalPrice,
		deal.CurrentLanded,
		deal.DiscountPercent,
		deal.AffiliateLink,
		msgID,
		deal.Product.Category,
		deal.Product.Section,
		deal.ProductID,
	)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to record sent deal")
	}

	return id, nil
}

// MarkInactive flags a published deal as no longer current.
func (r *SentDealRepository) MarkInactive(ctx context.Context, dealID int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE sent_deals SET is_active = FALSE WHERE id = $1`, dealID)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to mark deal inactive")
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to read rows affected")
		}

		if affected == 0 {
			return domain.NewError(errcodes.DealNotFound, "deal not found")
		}

		return nil
	})
}

// ActiveDeals returns still-active deals published within the window, newest
// first.
func (r *SentDealRepository) ActiveDeals(ctx context.Context, window time.Duration) ([]entity.SentDeal, error) {
	query := `
		SELECT id, product_name, product_link, original_price, deal_price,
		       discount_percent, affiliate_link, sent_at,
		       telegram_message_id, is_active, category, section, product_id
		FROM sent_deals
		WHERE is_active = TRUE AND sent_at > $1
		ORDER BY sent_at DESC`

	cutoff := time.Now().Add(-window)

	var schemas []sentDealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, cutoff); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get active deals")
	}

	deals := make([]entity.SentDeal, 0, len(schemas))
	for _, s := range schemas {
		deals = append(deals, s.toDomain())
	}

	return deals, nil
}

// Summary aggregates the deals published within the window.
func (r *SentDealRepository) Summary(ctx context.Context, window time.Duration) (entity.DealsSummary, error) {
	cutoff := time.Now().Add(-window)

	var stats summarySchema
	err := r.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS count,
		       AVG(discount_percent) AS avg_discount,
		       MIN(discount_percent) AS min_discount,
		       MAX(discount_percent) AS max_discount
		FROM sent_deals
		WHERE sent_at > $1`, cutoff)
	if err != nil {
		return entity.DealsSummary{}, domain.WrapError(err, errcodes.InternalServerError, "failed to aggregate deals")
	}

	var byCategory []categoryCountSchema
	err = r.db.SelectContext(ctx, &byCategory, `
		SELECT category, COUNT(*) AS count
		FROM sent_deals
		WHERE sent_at > $1
		GROUP BY category`, cutoff)
	if err != nil {
		return entity.DealsSummary{}, domain.WrapError(err, errcodes.InternalServerError, "failed to group deals by category")
	}

	summary := entity.DealsSummary{
		PeriodHours: int(window.Hours()),
		TotalDeals:  stats.Count,
		ByCategory:  make(map[string]int, len(byCategory)),
	}

	if stats.AvgDiscount != nil {
		summary.AvgDiscount = *stats.AvgDiscount
	}
	if stats.MinDiscount != nil {
		summary.MinDiscount = *stats.MinDiscount
	}
	if stats.MaxDiscount != nil {
		summary.MaxDiscount = *stats.MaxDiscount
	}

	for _, c := range byCategory {
		summary.ByCategory[c.Category] = c.Count
	}

	return summary, nil
}

// RecordPriceCheck appends a price observation for a product link.
func (r *SentDealRepository) RecordPriceCheck(ctx context.Context, productLink string, price float64) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO price_history (product_link, price) VALUES ($1, $2)`,
		productLink, price,
	)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to record price check")
	}

	return nil
}

// CleanupOld deactivates deals and drops price observations older than the
// retention period. Returns the number of removed price rows.
func (r *SentDealRepository) CleanupOld(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)

	var removed int64

	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM price_history WHERE checked_at < $1`, cutoff)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to delete old price history")
		}

		removed, err = res.RowsAffected()
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to read rows affected")
		}

		if _, err := tx.ExecContext(ctx, `UPDATE sent_deals SET is_active = FALSE WHERE sent_at < $1`, cutoff); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to deactivate old deals")
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}
