package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fundingarb/internal/exchange"
	"fundingarb/pkg/ratelimit"
	"fundingarb/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const bybitBaseURL = "https://api.bybit.com"

// Лимит публичных эндпоинтов v5: держимся заметно ниже
// биржевого порога, burst покрывает один цикл сбора.
const (
	bybitRequestsPerSecond = 10
	bybitBurst             = 20
)

// BybitAdapter - доступ к публичным рыночным данным Bybit v5.
// Используется гибридным шлюзом для OI и верха стакана;
// funding-ставка дублирует агрегатор и нужна как fallback.
type BybitAdapter struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	logger     *utils.Logger
}

// NewBybitAdapter создает адаптер на глобальном HTTP клиенте
func NewBybitAdapter(logger *utils.Logger) *BybitAdapter {
	return &BybitAdapter{
		baseURL:    bybitBaseURL,
		httpClient: exchange.GetGlobalHTTPClient().GetClient(),
		limiter:    ratelimit.NewRateLimiter(bybitRequestsPerSecond, bybitBurst),
		logger:     logger.WithComponent("bybit_adapter"),
	}
}

// bybitSymbol конвертирует внутреннюю нотацию "BTC/USDT:USDT" в "BTCUSDT"
func bybitSymbol(internal string) string {
	s := internal
	if idx := strings.Index(s, ":"); idx >= 0 {
		s = s[:idx]
	}
	return strings.ReplaceAll(s, "/", "")
}

// DefaultAdapters возвращает адаптеры для бирж из списка, у которых
// есть реализация прямого доступа к рыночным данным.
func DefaultAdapters(exchanges []string, logger *utils.Logger) map[string]Adapter {
	adapters := make(map[string]Adapter)
	for _, ex := range exchanges {
		if ex == "bybit" {
			adapters[ex] = NewBybitAdapter(logger)
		}
	}
	return adapters
}

type bybitTicker struct {
	fundingRate       float64
	markPrice         float64
	openInterestValue float64
	bid               float64
	ask               float64
	nextFundingTime   *time.Time
}

// FetchFundingRate возвращает текущую ставку и mark price инструмента
func (a *BybitAdapter) FetchFundingRate(ctx context.Context, symbol string) (FundingInfo, error) {
	t, err := a.fetchTicker(ctx, symbol)
	if err != nil {
		return FundingInfo{}, err
	}
	return FundingInfo{
		Rate:            t.fundingRate,
		MarkPrice:       t.markPrice,
		NextFundingTime: t.nextFundingTime,
	}, nil
}

// FetchOpenInterestUSD возвращает открытый интерес инструмента в USD
func (a *BybitAdapter) FetchOpenInterestUSD(ctx context.Context, symbol string) (float64, error) {
	t, err := a.fetchTicker(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return t.openInterestValue, nil
}

// FetchOrderbookTop возвращает лучшие bid/ask инструмента
func (a *BybitAdapter) FetchOrderbookTop(ctx context.Context, symbol string) (OrderbookTop, error) {
	params := map[string]string{
		"category": "linear",
		"symbol":   bybitSymbol(symbol),
		"limit":    "1",
	}

	body, err := a.doRequest(ctx, "/v5/market/orderbook", params)
	if err != nil {
		return OrderbookTop{}, err
	}

	var resp struct {
		Result struct {
			Bids [][]string `json:"b"`
			Asks [][]string `json:"a"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return OrderbookTop{}, err
	}

	var top OrderbookTop
	if len(resp.Result.Bids) > 0 {
		top.Bid, _ = strconv.ParseFloat(resp.Result.Bids[0][0], 64)
	}
	if len(resp.Result.Asks) > 0 {
		top.Ask, _ = strconv.ParseFloat(resp.Result.Asks[0][0], 64)
	}
	return top, nil
}

func (a *BybitAdapter) fetchTicker(ctx context.Context, symbol string) (bybitTicker, error) {
	params := map[string]string{
		"category": "linear",
		"symbol":   bybitSymbol(symbol),
	}

	body, err := a.doRequest(ctx, "/v5/market/tickers", params)
	if err != nil {
		return bybitTicker{}, err
	}

	var resp struct {
		Result struct {
			List []struct {
				FundingRate       string `json:"fundingRate"`
				MarkPrice         string `json:"markPrice"`
				OpenInterestValue string `json:"openInterestValue"`
				Bid1Price         string `json:"bid1Price"`
				Ask1Price         string `json:"ask1Price"`
				NextFundingTime   string `json:"nextFundingTime"`
			} `json:"list"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return bybitTicker{}, err
	}

	if len(resp.Result.List) == 0 {
		return bybitTicker{}, fmt.Errorf("ticker not found for %s", symbol)
	}

	raw := resp.Result.List[0]
	var t bybitTicker
	t.fundingRate, _ = strconv.ParseFloat(raw.FundingRate, 64)
	t.markPrice, _ = strconv.ParseFloat(raw.MarkPrice, 64)
	t.openInterestValue, _ = strconv.ParseFloat(raw.OpenInterestValue, 64)
	t.bid, _ = strconv.ParseFloat(raw.Bid1Price, 64)
	t.ask, _ = strconv.ParseFloat(raw.Ask1Price, 64)

	if ms, err := strconv.ParseInt(raw.NextFundingTime, 10, 64); err == nil && ms > 0 {
		next := utils.FromUnixMillis(ms)
		t.nextFundingTime = &next
	}

	return t, nil
}

func (a *BybitAdapter) doRequest(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	reqURL := a.baseURL + endpoint
	if encoded := query.Encode(); encoded != "" {
		reqURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bybit: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		RetCode int    `json:"retCode"`
		RetMsg  string `json:"retMsg"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if envelope.RetCode != 0 {
		return nil, fmt.Errorf("bybit: retCode %d: %s", envelope.RetCode, envelope.RetMsg)
	}

	return body, nil
}
