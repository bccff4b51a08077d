package sheets

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"deals_bot/internal/domain"
	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/errcodes"
	"deals_bot/pkg/logx"
)

const fetchTimeout = 30 * time.Second

var numericCellRe = regexp.MustCompile(`^\d+[.,]?\d*$`)

type Config struct {
	SpreadsheetID string
	// SheetGIDs maps a category name to the sheet tab it lives on.
	SheetGIDs map[string]int
}

// Reader loads the product catalog from a published spreadsheet's CSV export.
type Reader struct {
	cfg        Config
	httpClient *http.Client
	baseURL    string
}

func NewReader(cfg Config, httpClient *http.Client) *Reader {
	if len(cfg.SheetGIDs) == 0 {
		cfg.SheetGIDs = map[string]int{"EARPHONES": 0}
	}

	return &Reader{
		cfg:        cfg,
		httpClient: httpClient,
		baseURL:    fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export", cfg.SpreadsheetID),
	}
}

// WithBaseURL overrides the export endpoint. Used in tests.
func (r *Reader) WithBaseURL(baseURL string) *Reader {
	r.baseURL = baseURL
	return r
}

// Products fetches every configured sheet and returns the rows that carry a
// marketplace link. Unreadable sheets are skipped with a warning so one broken
// tab does not hide the rest of the catalog.
func (r *Reader) Products(ctx context.Context) ([]entity.Product, error) {
	var all []entity.Product

	for category, gid := range r.cfg.SheetGIDs {
		content, err := r.fetchCSV(ctx, gid)
		if err != nil {
			logger(ctx).Warn(
				"failed to fetch catalog sheet",
				slog.String("category", category),
				slog.Int("gid", gid),
				logx.Error(err),
			)
			continue
		}

		products := parseCatalog(content, category)
		logger(ctx).Info(
			"loaded catalog sheet",
			slog.String("category", category),
			slog.Int("products", len(products)),
		)

		all = append(all, products...)
	}

	if len(all) == 0 {
		return nil, domain.NewError(errcodes.CatalogUnreadable, "no products in any sheet")
	}

	return all, nil
}

func (r *Reader) fetchCSV(ctx context.Context, gid int) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	url := fmt.Sprintf("%s?format=csv&gid=%d", r.baseURL, gid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.WrapError(err, errcodes.CatalogUnreadable, "failed to build request")
	}
	req.Header.Set("Accept", "text/csv,*/*")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", domain.WrapError(err, errcodes.CatalogUnreadable, "failed to fetch sheet")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", domain.NewError(
			errcodes.CatalogUnreadable,
			fmt.Sprintf("sheet export returned status %d", resp.StatusCode),
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(err, errcodes.CatalogUnreadable, "failed to read sheet body")
	}

	content := string(body)
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "<!DOCTYPE") || strings.HasPrefix(trimmed, "<html") {
		return "", domain.NewError(errcodes.CatalogUnreadable, "got HTML instead of CSV, is the spreadsheet public?")
	}

	return content, nil
}

// columnIndices maps the localized header row to cell positions. Defaults
// match the historical sheet layout.
type columnIndices struct {
	name         int
	availability int
	basePrice    int
	tax          int
	finalPrice   int
	review       int
	link         int
	description  int
}

func defaultColumns() columnIndices {
	return columnIndices{
		name:         0,
		availability: 2,
		basePrice:    3,
		tax:          4,
		finalPrice:   5,
		review:       6,
		link:         7,
		description:  8,
	}
}

func parseCatalog(content, category string) []entity.Product {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var products []entity.Product

	section := "default"
	cols := defaultColumns()
	headerSeen := false

	for {
		cells, err := reader.Read()
		if err != nil {
			break
		}

		if blankRow(cells) {
			continue
		}

		first := strings.ToLower(strings.TrimSpace(cells[0]))

		if isSectionRow(cells, first) {
			section = strings.TrimSpace(cells[0])
			continue
		}

		if first == "produto" {
			cols = headerColumns(cells)
			headerSeen = true
			continue
		}

		if !headerSeen {
			continue
		}

		name := cellAt(cells, cols.name)
		if name == "" || strings.EqualFold(name, "produto") {
			continue
		}

		link := cellAt(cells, cols.link)
		if !strings.Contains(strings.ToLower(link), "aliexpress") {
			continue
		}

		products = append(products, entity.Product{
			Name:           name,
			Category:       category,
			Section:        section,
			BasePrice:      parsePrice(cellAt(cells, cols.basePrice)),
			FinalPrice:     parsePrice(cellAt(cells, cols.finalPrice)),
			TaxRate:        parseTaxRate(cellAt(cells, cols.tax)),
			AliexpressLink: link,
			Description:    cellAt(cells, cols.description),
			Availability:   cellAt(cells, cols.availability),
			ReviewLink:     cellAt(cells, cols.review),
		})
	}

	return products
}

// isSectionRow detects the sparse label rows that group products, like
// "IEMs até R$100". A section row has few filled cells and neither a price
// nor a link.
func isSectionRow(cells []string, first string) bool {
	if first == "" || first == "-" || strings.HasPrefix(first, "produto") {
		return false
	}

	nonEmpty := 0
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			nonEmpty++
		}
	}
	if nonEmpty > 3 {
		return false
	}

	for i, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}

		lower := strings.ToLower(c)
		if strings.Contains(lower, "aliexpress") || strings.Contains(lower, "http") {
			return false
		}
		if i >= 1 && i <= 5 && (strings.Contains(lower, "r$") || numericCellRe.MatchString(c)) {
			return false
		}
	}

	return true
}

func headerColumns(cells []string) columnIndices {
	cols := defaultColumns()

	for idx, cell := range cells {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "produto":
			cols.name = idx
		case "disponibilidade":
			cols.availability = idx
		case "preço base", "preco base":
			cols.basePrice = idx
		case "impostos":
			cols.tax = idx
		case "preço final", "preco final":
			cols.finalPrice = idx
		case "review":
			cols.review = idx
		case "link":
			cols.link = idx
		case "descrição", "descricao":
			cols.description = idx
		}
	}

	return cols
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

// parsePrice reads a pt-BR formatted price like "R$ 1.234,56". Dashes, empty
// cells and URL cells (review links pasted in the wrong column) read as 0.
func parsePrice(s string) float64 {
	if s == "" || s == "-" {
		return 0
	}

	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return 0
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "R$", ""), " ", ""))

	lower := strings.ToLower(cleaned)
	if strings.HasPrefix(lower, "http") || strings.Contains(lower, "youtu") || strings.Contains(lower, "www.") {
		return 0
	}

	if strings.Contains(cleaned, ",") && strings.Contains(cleaned, ".") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	} else if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return v
}

func parseTaxRate(s string) float64 {
	if s == "" || s == "-" {
		return 0
	}

	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(s, "%", ""), ",", "."))

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return v
}
