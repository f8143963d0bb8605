package marketdata

import (
	"context"
	"time"

	"fundingarb/internal/config"
	"fundingarb/internal/models"
	"fundingarb/internal/universe"
	"fundingarb/pkg/utils"
)

// HybridGateway объединяет два источника: funding-ставки берутся одним
// запросом из агрегатора, OI и верх стакана - из биржевых адаптеров.
// Ошибки адаптера по отдельному инструменту не валят сбор: поле
// остаётся пустым, цикл продолжается.
type HybridGateway struct {
	source   RateSource
	adapters map[string]Adapter
	selector *universe.Selector
	cfg      config.UniverseConfig
	logger   *utils.Logger
}

// NewHybridGateway создаёт гибридный шлюз
func NewHybridGateway(source RateSource, adapters map[string]Adapter, selector *universe.Selector, cfg config.UniverseConfig, logger *utils.Logger) *HybridGateway {
	return &HybridGateway{
		source:   source,
		adapters: adapters,
		selector: selector,
		cfg:      cfg,
		logger:   logger.WithComponent("marketdata"),
	}
}

// GetFundingSnapshots: ставка из фида, OI/стакан из адаптера,
// mark price = середина спреда при наличии обеих котировок
func (g *HybridGateway) GetFundingSnapshots(ctx context.Context, exchanges, symbols []string) ([]models.FundingSnapshot, error) {
	resp, err := g.source.Fetch(ctx, false)
	if err != nil {
		return nil, err
	}

	exchangeSet := make(map[string]bool, len(exchanges))
	for _, ex := range exchanges {
		exchangeSet[ex] = true
	}
	feedToInternal := make(map[string]string, len(symbols))
	for _, s := range symbols {
		feedToInternal[InternalToFeedSymbol(s)] = s
	}

	// Индекс ставок фида по (биржа, внутренний символ)
	type key struct{ exchange, symbol string }
	rateIndex := make(map[key]float64)
	for _, fr := range resp.FundingRates {
		internalExchange := FeedToInternalExchange(fr.Exchange)
		if !exchangeSet[internalExchange] {
			continue
		}
		internalSymbol, ok := feedToInternal[fr.Symbol]
		if !ok {
			continue
		}
		rateIndex[key{internalExchange, internalSymbol}] = fr.Rate
	}

	now := time.Now().UTC()
	var snapshots []models.FundingSnapshot
	for _, exchange := range exchanges {
		adapter := g.adapters[exchange]
		for _, symbol := range symbols {
			rate, ok := rateIndex[key{exchange, symbol}]
			if !ok {
				continue
			}

			snapshot := models.FundingSnapshot{
				Exchange:    exchange,
				Symbol:      symbol,
				Timestamp:   now,
				FundingRate: rate,
			}

			if adapter != nil {
				if oi, err := adapter.FetchOpenInterestUSD(ctx, symbol); err != nil {
					g.logger.Warn("open interest fetch failed",
						utils.Exchange(exchange), utils.Symbol(symbol), utils.Err(err))
				} else {
					snapshot.OpenInterestUSD = oi
				}

				if top, err := adapter.FetchOrderbookTop(ctx, symbol); err != nil {
					g.logger.Warn("orderbook fetch failed",
						utils.Exchange(exchange), utils.Symbol(symbol), utils.Err(err))
				} else if top.Bid > 0 && top.Ask > 0 {
					bid, ask := top.Bid, top.Ask
					snapshot.Bid = &bid
					snapshot.Ask = &ask
					snapshot.MarkPrice = (bid + ask) / 2
				}
			}

			snapshots = append(snapshots, snapshot)
		}
	}

	g.logger.Info("hybrid snapshots collected", utils.Int("count", len(snapshots)))
	return snapshots, nil
}

// GetOrderbookTops возвращает верх стакана из адаптера биржи
func (g *HybridGateway) GetOrderbookTops(ctx context.Context, exchange string, symbols []string) (map[string]OrderbookTop, error) {
	adapter := g.adapters[exchange]
	if adapter == nil {
		g.logger.Warn("no adapter for exchange", utils.Exchange(exchange))
		return map[string]OrderbookTop{}, nil
	}

	out := make(map[string]OrderbookTop, len(symbols))
	for _, symbol := range symbols {
		top, err := adapter.FetchOrderbookTop(ctx, symbol)
		if err != nil {
			g.logger.Warn("orderbook fetch failed",
				utils.Exchange(exchange), utils.Symbol(symbol), utils.Err(err))
			out[symbol] = OrderbookTop{}
			continue
		}
		out[symbol] = top
	}
	return out, nil
}

// TopSymbols делегирует отбор динамическому селектору
func (g *HybridGateway) TopSymbols(ctx context.Context, size int, minFRDiff float64) ([]string, error) {
	return topSymbols(ctx, g.selector, g.cfg, size, minFRDiff)
}
