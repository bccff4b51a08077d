package handler

import (
	"context"
	"time"

	"deals_bot/internal/domain/entity"
	"deals_bot/internal/domain/service/checker"
	"deals_bot/internal/worker"
)

type history interface {
	ActiveDeals(ctx context.Context, window time.Duration) ([]entity.SentDeal, error)
}

type channelNotifier interface {
	SendSummary(ctx context.Context, deals []entity.SentDeal) error
}

// Handler implements the admin commands.
type Handler struct {
	scanner  *worker.DealScanner
	checker  *checker.Checker
	history  history
	notifier channelNotifier

	summaryWindow time.Duration
}

func New(
	scanner *worker.DealScanner,
	chk *checker.Checker,
	history history,
	notifier channelNotifier,
	summaryWindow time.Duration,
) *Handler {
	if summaryWindow <= 0 {
		summaryWindow = 24 * time.Hour
	}

	return &Handler{
		scanner:       scanner,
		checker:       chk,
		history:       history,
		notifier:      notifier,
		summaryWindow: summaryWindow,
	}
}
