package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"git.appkode.ru/pub/go/failure"

	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/errcodes"
	"deals_bot/pkg/httpx/reply"
	"deals_bot/pkg/lox"
)

const (
	defaultWindowHours = 24
	maxWindowHours     = 24 * 90
)

type dealsHistory interface {
	ActiveDeals(ctx context.Context, window time.Duration) ([]entity.SentDeal, error)
	Summary(ctx context.Context, window time.Duration) (entity.DealsSummary, error)
}

type DealsServer struct {
	history dealsHistory
}

func NewDealsServer(history dealsHistory) DealsServer {
	return DealsServer{
		history: history,
	}
}

func (s DealsServer) getV1DealsActive(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	window, err := windowFromQuery(r)
	if err != nil {
		return err
	}

	deals, err := s.history.ActiveDeals(ctx, window)
	if err != nil {
		return fmt.Errorf("history.ActiveDeals: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, lox.Map(deals, newRESTDeal))

	return nil
}

func (s DealsServer) getV1DealsSummary(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	window, err := windowFromQuery(r)
	if err != nil {
		return err
	}

	summary, err := s.history.Summary(ctx, window)
	if err != nil {
		return fmt.Errorf("history.Summary: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSummary(summary))

	return nil
}

// windowFromQuery reads the optional "hours" query parameter.
func windowFromQuery(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("hours")
	if raw == "" {
		return defaultWindowHours * time.Hour, nil
	}

	hours, err := strconv.Atoi(raw)
	if err != nil || hours <= 0 || hours > maxWindowHours {
		return 0, failure.NewInvalidArgumentError(
			fmt.Sprintf("invalid hours value %q", raw),
			failure.WithCode(errcodes.InvalidWindow),
			failure.WithDescription("hours must be a positive integer up to 2160"),
		)
	}

	return time.Duration(hours) * time.Hour, nil
}
