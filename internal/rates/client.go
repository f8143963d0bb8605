// Package rates реализует клиент агрегатора funding rates.
//
// Источник отдаёт сырые значения ставок по всем биржам одним ответом;
// клиент нормализует их к 8h-эквиваленту в каноническом знаке
// (положительная ставка = лонги платят шортам) и кэширует результат.
package rates

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"fundingarb/internal/config"
	"fundingarb/internal/exchange"
	"fundingarb/pkg/retry"
	"fundingarb/pkg/utils"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Делитель сырого значения ставки: 25 -> 25/10_000 = 0.0025 (0.25%)
const RateDivisor = 10_000

// Делитель для приведения часовых ставок к 8h-эквиваленту
const HourlyTo8hDivisor = 8

// FundingRate - нормализованная ставка по одной бирже и символу
type FundingRate struct {
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	RawValue float64 `json:"raw_value"`
	Rate     float64 `json:"rate"` // 8h-эквивалент, канонический знак
}

// ExchangeInfo - сведения о бирже из фида
type ExchangeInfo struct {
	Name     string `json:"name"`
	Display  string `json:"display"`
	Interval int    `json:"interval"`
}

// Response - разобранный и нормализованный ответ фида
type Response struct {
	Symbols      []string       `json:"symbols"`
	Exchanges    []ExchangeInfo `json:"exchanges"`
	FundingRates []FundingRate  `json:"funding_rates"`
	FetchedAt    time.Time      `json:"fetched_at"`
}

// FeedError - ошибка фида после исчерпания всех попыток.
// Для решающего цикла фатальна: без ставок цикл не имеет смысла.
type FeedError struct {
	Attempts int
	Err      error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("funding feed failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *FeedError) Unwrap() error {
	return e.Err
}

// rawResponse - форма сырого JSON фида
type rawResponse struct {
	Symbols   []string `json:"symbols"`
	Exchanges struct {
		ExchangeNames []struct {
			Name     string `json:"name"`
			Display  string `json:"display"`
			Interval *int   `json:"interval"`
		} `json:"exchange_names"`
	} `json:"exchanges"`
	FundingRates map[string]map[string]jsoniter.RawMessage `json:"funding_rates"`
}

// Client - HTTP клиент фида с кэшем
type Client struct {
	url        string
	maxRetries int
	retryDelay time.Duration
	cacheTTL   time.Duration

	hourly    map[string]bool
	canonical map[string]bool

	httpClient *http.Client
	logger     *utils.Logger

	mu    sync.Mutex
	cache *Response
}

// NewClient создаёт клиент по конфигурации
func NewClient(cfg config.RatesConfig, logger *utils.Logger) *Client {
	hourly := make(map[string]bool, len(cfg.HourlyExchanges))
	for _, ex := range cfg.HourlyExchanges {
		hourly[ex] = true
	}
	canonical := make(map[string]bool, len(cfg.CanonicalSignExchanges))
	for _, ex := range cfg.CanonicalSignExchanges {
		canonical[ex] = true
	}

	httpCfg := exchange.DefaultHTTPClientConfig()
	httpCfg.TotalTimeout = cfg.Timeout

	return &Client{
		url:        cfg.BaseURL + "/funding",
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		cacheTTL:   cfg.CacheTTL,
		hourly:     hourly,
		canonical:  canonical,
		httpClient: exchange.NewHTTPClient(httpCfg).GetClient(),
		logger:     logger.WithComponent("rates"),
	}
}

// Fetch возвращает нормализованные ставки.
// При force=false свежий кэш (моложе TTL) возвращается без запроса.
func (c *Client) Fetch(ctx context.Context, force bool) (*Response, error) {
	c.mu.Lock()
	if !force && c.cache != nil {
		elapsed := time.Since(c.cache.FetchedAt)
		if elapsed < c.cacheTTL {
			cached := c.cache
			c.mu.Unlock()
			c.logger.Debug("cache hit", utils.Float64("age_sec", elapsed.Seconds()))
			return cached, nil
		}
	}
	c.mu.Unlock()

	raw, err := c.requestWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	resp := c.parse(raw)

	c.mu.Lock()
	c.cache = resp
	c.mu.Unlock()

	return resp, nil
}

// GetRate возвращает ставку конкретной биржи и символа, nil если не найдена
func (c *Client) GetRate(ctx context.Context, exchange, symbol string, force bool) (*FundingRate, error) {
	resp, err := c.Fetch(ctx, force)
	if err != nil {
		return nil, err
	}
	for i := range resp.FundingRates {
		fr := &resp.FundingRates[i]
		if fr.Exchange == exchange && fr.Symbol == symbol {
			return fr, nil
		}
	}
	return nil, nil
}

// RatesBySymbols возвращает ставки всех бирж по указанным символам
func (c *Client) RatesBySymbols(ctx context.Context, symbols []string, force bool) ([]FundingRate, error) {
	resp, err := c.Fetch(ctx, force)
	if err != nil {
		return nil, err
	}
	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}
	var out []FundingRate
	for _, fr := range resp.FundingRates {
		if want[fr.Symbol] {
			out = append(out, fr)
		}
	}
	return out, nil
}

// InvalidateCache явно сбрасывает кэш
func (c *Client) InvalidateCache() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()
}

func (c *Client) requestWithRetry(ctx context.Context) (*rawResponse, error) {
	attempt := 0
	cfg := retry.FixedConfig(c.maxRetries, c.retryDelay)
	cfg.RetryIf = retry.RetryIfNotContext
	cfg.OnRetry = func(n int, err error, delay time.Duration) {
		c.logger.Warn("funding feed request failed",
			utils.Int("attempt", n),
			utils.Int("max_retries", c.maxRetries),
			utils.Err(err),
		)
	}

	raw, err := retry.DoWithResult(ctx, func() (*rawResponse, error) {
		attempt++
		return c.doRequest(ctx)
	}, cfg)
	if err != nil {
		return nil, &FeedError{Attempts: attempt, Err: err}
	}
	return raw, nil
}

func (c *Client) doRequest(ctx context.Context) (*rawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, retry.Permanent(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &raw, nil
}

// parse нормализует сырой ответ: делитель, приведение часовых ставок
// к 8h и выравнивание знака к канонической конвенции
func (c *Client) parse(raw *rawResponse) *Response {
	exchanges := make([]ExchangeInfo, 0, len(raw.Exchanges.ExchangeNames))
	for _, ex := range raw.Exchanges.ExchangeNames {
		interval := 8
		if ex.Interval != nil {
			interval = *ex.Interval
		}
		exchanges = append(exchanges, ExchangeInfo{
			Name:     ex.Name,
			Display:  ex.Display,
			Interval: interval,
		})
	}

	var rates []FundingRate
	for exName, symbolRates := range raw.FundingRates {
		isHourly := c.hourly[exName]
		flipSign := len(c.canonical) > 0 && !c.canonical[exName]
		for sym, rawVal := range symbolRates {
			var val float64
			if err := json.Unmarshal(rawVal, &val); err != nil {
				continue
			}
			rate := val / RateDivisor
			if isHourly {
				rate /= HourlyTo8hDivisor
			}
			if flipSign {
				rate = -rate
			}
			rates = append(rates, FundingRate{
				Exchange: exName,
				Symbol:   sym,
				RawValue: val,
				Rate:     rate,
			})
		}
	}

	return &Response{
		Symbols:      raw.Symbols,
		Exchanges:    exchanges,
		FundingRates: rates,
		FetchedAt:    time.Now(),
	}
}
