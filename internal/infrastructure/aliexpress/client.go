package aliexpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"deals_bot/internal/domain"
	"deals_bot/internal/domain/entity"
	"deals_bot/pkg/errcodes"
)

const (
	methodProductDetail = "aliexpress.affiliate.productdetail.get"
	methodLinkGenerate  = "aliexpress.affiliate.link.generate"

	detailFields = "product_main_image_url,target_sale_price,product_title," +
		"target_sale_price_currency,target_original_price,target_original_price_currency"

	shareRedirectPrefix = "https://star.aliexpress.com/share/share.htm?&redirectUrl="
)

type Config struct {
	APIURL         string
	AppKey         string
	AppSecret      string
	TrackingID     string
	TargetCurrency string
	TargetLanguage string
	Country        string
}

// Client calls the affiliate open platform with signed requests.
type Client struct {
	cfg        Config
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type errorResponse struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

type productDetailResponse struct {
	Error    *errorResponse `json:"error_response"`
	Response struct {
		RespResult struct {
			RespCode int `json:"resp_code"`
			Result   struct {
				Products struct {
					Product []productPayload `json:"product"`
				} `json:"products"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_productdetail_get_response"`
}

type productPayload struct {
	Title             string      `json:"product_title"`
	MainImageURL      string      `json:"product_main_image_url"`
	SalePrice         json.Number `json:"target_sale_price"`
	OriginalPrice     json.Number `json:"target_original_price"`
	SalePriceCurrency string      `json:"target_sale_price_currency"`
}

type linkGenerateResponse struct {
	Error    *errorResponse `json:"error_response"`
	Response struct {
		RespResult struct {
			RespCode int `json:"resp_code"`
			Result   struct {
				PromotionLinks struct {
					PromotionLink []struct {
						PromotionLink string `json:"promotion_link"`
					} `json:"promotion_link"`
				} `json:"promotion_links"`
			} `json:"result"`
		} `json:"resp_result"`
	} `json:"aliexpress_affiliate_link_generate_response"`
}

// ProductDetail fetches current pricing for one product.
func (c *Client) ProductDetail(ctx context.Context, productID string) (entity.Listing, error) {
	body, err := c.execute(ctx, methodProductDetail, map[string]string{
		"fields":          detailFields,
		"product_ids":     productID,
		"target_currency": c.cfg.TargetCurrency,
		"target_language": c.cfg.TargetLanguage,
		"tracking_id":     c.cfg.TrackingID,
		"country":         c.cfg.Country,
	})
	if err != nil {
		return entity.Listing{}, err
	}

	var resp productDetailResponse
	if err := jsoniter.Unmarshal(body, &resp); err != nil {
		return entity.Listing{}, domain.WrapError(err, errcodes.Transient, "failed to decode product detail response")
	}

	if resp.Error != nil {
		return entity.Listing{}, c.classifyError(ctx, resp.Error)
	}

	if resp.Response.RespResult.RespCode != http.StatusOK {
		return entity.Listing{}, domain.NewError(
			errcodes.Transient,
			fmt.Sprintf("unexpected response code %d", resp.Response.RespResult.RespCode),
		)
	}

	products := resp.Response.RespResult.Result.Products.Product
	if len(products) == 0 {
		return entity.Listing{}, domain.NewError(errcodes.ProductNotFound, "product not found")
	}

	p := products[0]

	currency := p.SalePriceCurrency
	if currency == "" {
		currency = c.cfg.TargetCurrency
	}

	return entity.Listing{
		ProductID:     productID,
		SalePrice:     parsePrice(p.SalePrice),
		OriginalPrice: parsePrice(p.OriginalPrice),
		Currency:      currency,
		Title:         p.Title,
		ImageURL:      p.MainImageURL,
	}, nil
}

// GenerateLink produces a tracked promotion link for the target URL.
func (c *Client) GenerateLink(ctx context.Context, targetURL string) (string, error) {
	sourceURL := targetURL
	if !strings.Contains(targetURL, "star.aliexpress.com") {
		sourceURL = shareRedirectPrefix + targetURL
	}

	body, err := c.execute(ctx, methodLinkGenerate, map[string]string{
		"promotion_link_type": "0",
		"source_values":       sourceURL,
		"tracking_id":         c.cfg.TrackingID,
	})
	if err != nil {
		return "", err
	}

	var resp linkGenerateResponse
	if err := jsoniter.Unmarshal(body, &resp); err != nil {
		return "", domain.WrapError(err, errcodes.Transient, "failed to decode link generate response")
	}

	if resp.Error != nil {
		return "", c.classifyError(ctx, resp.Error)
	}

	if resp.Response.RespResult.RespCode != http.StatusOK {
		return "", domain.NewError(
			errcodes.Transient,
			fmt.Sprintf("unexpected response code %d", resp.Response.RespResult.RespCode),
		)
	}

	links := resp.Response.RespResult.Result.PromotionLinks.PromotionLink
	if len(links) == 0 || links[0].PromotionLink == "" {
		return "", domain.NewError(errcodes.Transient, "no promotion link in response")
	}

	return links[0].PromotionLink, nil
}

// execute signs the business parameters together with the system ones and
// POSTs the request as a form.
func (c *Client) execute(ctx context.Context, method string, params map[string]string) ([]byte, error) {
	all := map[string]string{
		"method":      method,
		"app_key":     c.cfg.AppKey,
		"sign_method": "sha256",
		"timestamp":   strconv.FormatInt(c.now().UnixMilli(), 10),
	}
	for k, v := range params {
		all[k] = v
	}
	all["sign"] = sign(all, c.cfg.AppSecret)

	form := make(url.Values, len(all))
	for k, v := range all {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, domain.WrapError(err, errcodes.Transient, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.Transient, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.Transient, "failed to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, domain.NewError(
			errcodes.Transient,
			fmt.Sprintf("unexpected status %d", resp.StatusCode),
		)
	}

	return body, nil
}

func (c *Client) classifyError(ctx context.Context, apiErr *errorResponse) error {
	msg := strings.ToLower(apiErr.Msg)

	switch {
	case strings.Contains(apiErr.Code, "ApiCallLimit") || strings.Contains(msg, "frequency"):
		return domain.NewError(errcodes.RateLimited, "api call limit reached")
	case strings.Contains(msg, "signature") || apiErr.Code == "400" || apiErr.Code == "401":
		logger(ctx).Warn(
			"signature rejected, the app may not be approved for production",
			slog.String("code", apiErr.Code),
		)
		return domain.NewError(errcodes.AuthInvalid, "invalid app credentials")
	default:
		return domain.NewError(
			errcodes.Transient,
			fmt.Sprintf("api error %s: %s", apiErr.Code, apiErr.Msg),
		)
	}
}

func parsePrice(n json.Number) float64 {
	s := n.String()
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return v
}
