package iex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fairvalue/internal/contracts"
	"github.com/wonny/fairvalue/pkg/config"
	"github.com/wonny/fairvalue/pkg/httputil"
	"github.com/wonny/fairvalue/pkg/logger"
	"github.com/wonny/fairvalue/pkg/redis"
)

// TreasurySeries is the 10-year constant maturity treasury series
const TreasurySeries = "DGS10"

// ResponseCache stores decoded provider responses as JSON.
// *redis.Cache and *memcache.Cache both satisfy it.
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Client handles communication with the IEX Cloud API
// ⭐ SSOT: IEX API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	baseURL    string

	cache       ResponseCache
	statsTTL    time.Duration
	treasuryTTL time.Duration
}

var _ contracts.Gateway = (*Client)(nil)

// NewClient creates a new IEX client from the immutable startup config
func NewClient(cfg *config.Config, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		logger:      log.WithModule("iex"),
		apiKey:      cfg.IEX.APIKey,
		baseURL:     strings.TrimRight(cfg.IEX.BaseURL, "/"),
		statsTTL:    cfg.Cache.StatsTTL,
		treasuryTTL: cfg.Cache.TreasuryTTL,
	}
}

// WithCache enables response caching for company stats and the treasury rate
func (c *Client) WithCache(cache ResponseCache) *Client {
	c.cache = cache
	return c
}

// FetchIncomeStatement GET /stock/{ticker}/income
func (c *Client) FetchIncomeStatement(ctx context.Context, ticker string, period contracts.Period, last int) ([]contracts.ReportedIncome, error) {
	path, err := stockPath(ticker, "income")
	if err != nil {
		return nil, err
	}
	params, err := periodParams(period, last)
	if err != nil {
		return nil, err
	}

	var resp incomeResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Income) == 0 {
		return nil, fmt.Errorf("%w: no income statements for %s", contracts.ErrProviderData, ticker)
	}

	out := make([]contracts.ReportedIncome, len(resp.Income))
	for i, row := range resp.Income {
		out[i] = row.toContract()
	}
	return out, nil
}

// FetchBalanceSheet GET /stock/{ticker}/balance-sheet (most recent row)
func (c *Client) FetchBalanceSheet(ctx context.Context, ticker string, period contracts.Period) (contracts.BalanceSheet, error) {
	path, err := stockPath(ticker, "balance-sheet")
	if err != nil {
		return contracts.BalanceSheet{}, err
	}
	params, err := periodParams(period, 0)
	if err != nil {
		return contracts.BalanceSheet{}, err
	}

	var resp balanceSheetResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return contracts.BalanceSheet{}, err
	}
	if len(resp.BalanceSheet) == 0 {
		return contracts.BalanceSheet{}, fmt.Errorf("%w: no balance sheet for %s", contracts.ErrProviderData, ticker)
	}

	row := resp.BalanceSheet[0]
	return contracts.BalanceSheet{
		LongTermDebt:            row.LongTermDebt,
		TotalCurrentLiabilities: row.TotalCurrentLiabilities,
	}, nil
}

// FetchCompanyStats GET /stock/{ticker}/stats
func (c *Client) FetchCompanyStats(ctx context.Context, ticker string) (contracts.CompanyFundamentals, error) {
	path, err := stockPath(ticker, "stats")
	if err != nil {
		return contracts.CompanyFundamentals{}, err
	}

	key := redis.StatsKey(ticker)
	var cached contracts.CompanyFundamentals
	if c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	var resp statsResponse
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return contracts.CompanyFundamentals{}, err
	}

	stats := resp.toContract()
	c.cacheSet(ctx, key, stats, c.statsTTL)
	return stats, nil
}

// FetchTreasuryRate GET /time-series/treasury/DGS10?last=1 (percent)
func (c *Client) FetchTreasuryRate(ctx context.Context) (float64, error) {
	key := redis.TreasuryKey(TreasurySeries)
	var cached float64
	if c.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	params := url.Values{}
	params.Set("last", "1")

	var points []treasuryPoint
	if err := c.get(ctx, "/time-series/treasury/"+TreasurySeries, params, &points); err != nil {
		return 0, err
	}
	if len(points) == 0 {
		return 0, fmt.Errorf("%w: empty treasury series %s", contracts.ErrProviderData, TreasurySeries)
	}

	rate := points[0].Value
	c.cacheSet(ctx, key, rate, c.treasuryTTL)
	return rate, nil
}

// FetchEstimates GET /stock/{ticker}/estimates (provider order, most recent first)
func (c *Client) FetchEstimates(ctx context.Context, ticker string, period contracts.Period, last int) ([]contracts.ConsensusEstimate, error) {
	path, err := stockPath(ticker, "estimates")
	if err != nil {
		return nil, err
	}
	params, err := periodParams(period, last)
	if err != nil {
		return nil, err
	}

	var resp estimatesResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Estimates) == 0 {
		return nil, fmt.Errorf("%w: no consensus estimates for %s", contracts.ErrProviderData, ticker)
	}

	out := make([]contracts.ConsensusEstimate, len(resp.Estimates))
	for i, row := range resp.Estimates {
		out[i] = row.toContract()
	}
	return out, nil
}

// get performs one authenticated GET and decodes the JSON body into dest
// Failures are classified into ErrNetwork / ErrProviderStatus / ErrDeserialization.
func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("token", c.apiKey)

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", contracts.ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &contracts.ProviderStatusError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %s: %v", contracts.ErrDeserialization, path, err)
	}

	return nil
}

// cacheGet never fails a fetch; cache errors are logged and treated as a miss
func (c *Client) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if c.cache == nil {
		return false
	}
	found, err := c.cache.Get(ctx, key, dest)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		return false
	}
	if found {
		c.logger.WithField("key", key).Debug("Cache hit")
	}
	return found
}

func (c *Client) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil || ttl <= 0 {
		return
	}
	if err := c.cache.Set(ctx, key, value, ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}

func stockPath(ticker, resource string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return "", fmt.Errorf("%w: empty ticker symbol", contracts.ErrProviderData)
	}
	return fmt.Sprintf("/stock/%s/%s", url.PathEscape(symbol), resource), nil
}

func periodParams(period contracts.Period, last int) (url.Values, error) {
	p, err := contracts.ParsePeriod(string(period))
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("period", string(p))
	if last > 0 {
		params.Set("last", strconv.Itoa(last))
	}
	return params, nil
}
