package aliexpress

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"deals_bot/internal/domain"
	"deals_bot/pkg/errcodes"
	"deals_bot/pkg/logx"
)

const expandTimeout = 15 * time.Second

// Expander resolves short affiliate links by following their redirects to the
// final product page URL.
type Expander struct {
	httpClient *http.Client
}

func NewExpander(httpClient *http.Client) *Expander {
	return &Expander{httpClient: httpClient}
}

// Expand fetches the short link and returns the URL it lands on.
func (e *Expander) Expand(ctx context.Context, shortURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, expandTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, shortURL, nil)
	if err != nil {
		return "", domain.WrapError(err, errcodes.Transient, "failed to build request")
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(err, errcodes.Transient, "failed to expand short link")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(
			errcodes.Transient,
			fmt.Sprintf("unexpected status %d expanding short link", resp.StatusCode),
		)
	}

	finalURL := resp.Request.URL.String()

	logger(ctx).Debug(
		"expanded short link",
		slog.String(logx.FieldLink, shortURL),
		slog.String("resolved", finalURL),
	)

	return finalURL, nil
}
