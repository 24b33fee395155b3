package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the dhan api base url.
	BaseURL = "https://api.dhan.co"

	// intradayPath is the intraday historical chart endpoint.
	intradayPath = "/v2/charts/intraday"
	// quotePath is the market feed quote endpoint.
	quotePath = "/v2/marketfeed/quote"

	// dayLayout is the format layout for request date ranges.
	dayLayout = "2006-01-02"

	// maxTruncatedBody is the maximum number of response body bytes kept
	// when reporting a provider rejection.
	maxTruncatedBody = 200

	// requestTimeout bounds every outbound provider call.
	requestTimeout = time.Second * 5
)

// DhanConfig represents the configuration for the dhan client.
type DhanConfig struct {
	// ClientID is the dhan client id.
	ClientID string
	// AccessToken is the dhan api access token.
	AccessToken string
	// BaseURL is the dhan api base url.
	BaseURL string
}

// DhanClient represents the DhanHQ API client.
type DhanClient struct {
	cfg   *DhanConfig
	httpc http.Client
}

// Ensure the dhan client implements the MarketFetcher interface.
var _ shared.MarketFetcher = (*DhanClient)(nil)

// NewDhanClient instantiates a new dhan client.
func NewDhanClient(cfg *DhanConfig) (*DhanClient, error) {
	if cfg.ClientID == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("dhan credentials cannot be empty strings")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = BaseURL
	}

	return &DhanClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: requestTimeout},
	}, nil
}

// post issues an authenticated post request to the provider and classifies
// transport and provider level failures.
func (c *DhanClient) post(ctx context.Context, path string, payload any) (gjson.Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshalling request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("access-token", c.cfg.AccessToken)
	req.Header.Set("client-id", c.cfg.ClientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		if isTimeout(err) {
			return gjson.Result{}, shared.NewMarketError(shared.TransportTimeout,
				"requesting "+path, err)
		}

		return gjson.Result{}, fmt.Errorf("requesting %s: %w", path, err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		mErr := shared.NewMarketError(shared.ProviderRejected,
			truncate(respBody, maxTruncatedBody), nil)
		mErr.Status = resp.StatusCode
		return gjson.Result{}, mErr
	}

	data := gjson.ParseBytes(respBody)

	// The provider flags failures on otherwise successful responses. These are
	// not retried since the request itself (eg. a bad date range) is at fault.
	if data.Get("status").String() == "failure" || data.Get("errorCode").Exists() {
		message := data.Get("message").String()
		if message == "" {
			message = data.Get("errorCode").String()
		}

		return gjson.Result{}, shared.NewMarketError(shared.ProviderError, message, nil)
	}

	return data, nil
}

// FetchIndexIntraday fetches intraday candle data for the provided instrument.
func (c *DhanClient) FetchIndexIntraday(ctx context.Context, market string, interval shared.Interval, start time.Time, end time.Time) (gjson.Result, error) {
	instrument, err := shared.FindInstrument(market)
	if err != nil {
		return gjson.Result{}, err
	}

	payload := map[string]string{
		"securityId":      instrument.SecurityID,
		"exchangeSegment": instrument.ExchangeSegment,
		"instrument":      "INDEX",
		"interval":        interval.String(),
		"fromDate":        start.Format(dayLayout),
		"toDate":          end.Format(dayLayout),
	}

	data, err := c.post(ctx, intradayPath, payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetching intraday data for %s: %w", market, err)
	}

	return data, nil
}

// FetchQuote fetches the current quote for the provided instrument.
func (c *DhanClient) FetchQuote(ctx context.Context, market string) (gjson.Result, error) {
	instrument, err := shared.FindInstrument(market)
	if err != nil {
		return gjson.Result{}, err
	}

	payload := map[string][]string{
		instrument.ExchangeSegment: {instrument.SecurityID},
	}

	data, err := c.post(ctx, quotePath, payload)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetching quote for %s: %w", market, err)
	}

	return data, nil
}

// LastPrice extracts the last traded price for the provided instrument from a
// quote payload.
func LastPrice(payload gjson.Result, instrument shared.Instrument) (float64, error) {
	price := payload.Get("data." + instrument.ExchangeSegment + "." + instrument.SecurityID + ".last_price")
	if !price.Exists() {
		return 0, shared.NewMarketError(shared.MalformedPayload,
			"no last price for "+instrument.Name, nil)
	}

	return price.Float(), nil
}

// isTimeout checks whether the provided transport error is a timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}

// truncate bounds the provided body to at most n bytes.
func truncate(body []byte, n int) string {
	if len(body) > n {
		body = body[:n]
	}

	return string(body)
}
