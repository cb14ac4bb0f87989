// Package alphavantage implements the upstream market-data client: URL
// construction for the query API, fetching with caching and rate limiting,
// and parsing of the per-function JSON documents into domain records.
package alphavantage

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"github.com/valuehound/stockval/internal/infra"
	"github.com/valuehound/stockval/pkg/models"
)

// Function is an Alpha Vantage query API function.
type Function string

const (
	FuncTimeSeriesDailyAdjusted   Function = "TIME_SERIES_DAILY_ADJUSTED"
	FuncTimeSeriesWeeklyAdjusted  Function = "TIME_SERIES_WEEKLY_ADJUSTED"
	FuncTimeSeriesMonthlyAdjusted Function = "TIME_SERIES_MONTHLY_ADJUSTED"
	FuncOverview                  Function = "OVERVIEW"
	FuncIncomeStatement           Function = "INCOME_STATEMENT"
	FuncBalanceSheet              Function = "BALANCE_SHEET"
	FuncCashFlow                  Function = "CASH_FLOW"
)

// rootKey is the top-level JSON key holding the payload for a function.
// OVERVIEW has no envelope: the root object is the record itself.
func (f Function) rootKey() string {
	switch f {
	case FuncTimeSeriesDailyAdjusted:
		return "Time Series (Daily)"
	case FuncTimeSeriesWeeklyAdjusted:
		return "Weekly Adjusted Time Series"
	case FuncTimeSeriesMonthlyAdjusted:
		return "Monthly Adjusted Time Series"
	case FuncIncomeStatement, FuncBalanceSheet, FuncCashFlow:
		return "annualReports"
	default:
		return ""
	}
}

// OutputSize selects the length of a time series response.
type OutputSize string

const (
	OutputSizeFull    OutputSize = "full"
	OutputSizeCompact OutputSize = "compact"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	CacheTTL   time.Duration
	RatePerMin int
}

// Client fetches and parses Alpha Vantage documents. Responses are cached
// per function+symbol and outbound requests are paced to the API quota.
type Client struct {
	http    *resty.Client
	apiKey  string
	cache   *infra.Cache
	limiter *infra.RateLimiter
}

// NewClient creates a client for the given upstream.
func NewClient(opts Options) *Client {
	httpClient := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		apiKey:  opts.APIKey,
		cache:   infra.NewCache(opts.CacheTTL),
		limiter: infra.NewRateLimiter(opts.RatePerMin, time.Minute),
	}
}

// get performs a query API call, serving repeat requests from cache.
// URL shape: <base>/query?function=<FN>&symbol=<SYM>&apikey=<KEY>[&outputsize=<size>].
func (c *Client) get(ctx context.Context, fn Function, symbol string, size OutputSize) ([]byte, error) {
	cacheKey := string(fn) + ":" + symbol + ":" + string(size)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]byte), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("function", string(fn)).
		SetQueryParam("symbol", symbol).
		SetQueryParam("apikey", c.apiKey)
	if size != "" {
		req.SetQueryParam("outputsize", string(size))
	}

	resp, err := req.Get("/query")
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s for %s", fn, symbol)
	}
	if resp.StatusCode() != 200 {
		return nil, &ErrUpstreamHTTP{Status: resp.StatusCode()}
	}

	body := resp.Body()
	c.cache.Set(cacheKey, body)
	return body, nil
}

// MonthlyAdjusted returns the monthly adjusted close series, oldest first.
func (c *Client) MonthlyAdjusted(ctx context.Context, symbol string) ([]models.PricePoint, error) {
	body, err := c.get(ctx, FuncTimeSeriesMonthlyAdjusted, symbol, "")
	if err != nil {
		return nil, err
	}
	return ParsePriceSeries(symbol, body, FuncTimeSeriesMonthlyAdjusted)
}

// Overview returns the company overview record.
func (c *Client) Overview(ctx context.Context, symbol string) (models.Overview, error) {
	body, err := c.get(ctx, FuncOverview, symbol, "")
	if err != nil {
		return models.Overview{}, err
	}
	return ParseOverview(symbol, body)
}

// IncomeStatements returns the annual income statement periods.
func (c *Client) IncomeStatements(ctx context.Context, symbol string) ([]models.IncomeStatement, error) {
	body, err := c.get(ctx, FuncIncomeStatement, symbol, "")
	if err != nil {
		return nil, err
	}
	return ParseIncomeStatements(symbol, body, FuncIncomeStatement)
}

// BalanceSheets returns the annual balance sheet periods.
func (c *Client) BalanceSheets(ctx context.Context, symbol string) ([]models.BalanceSheet, error) {
	body, err := c.get(ctx, FuncBalanceSheet, symbol, "")
	if err != nil {
		return nil, err
	}
	return ParseBalanceSheets(symbol, body, FuncBalanceSheet)
}

// CashFlows returns the annual cash flow statement periods.
func (c *Client) CashFlows(ctx context.Context, symbol string) ([]models.CashFlow, error) {
	body, err := c.get(ctx, FuncCashFlow, symbol, "")
	if err != nil {
		return nil, err
	}
	return ParseCashFlows(symbol, body, FuncCashFlow)
}
