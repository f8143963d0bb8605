package marketdata

import (
	"context"
	"time"

	"fundingarb/internal/config"
	"fundingarb/internal/models"
	"fundingarb/internal/rates"
	"fundingarb/internal/universe"
	"fundingarb/pkg/utils"
)

// DefaultOpenInterestUSD используется шлюзом без биржевых адаптеров:
// фид ставок не отдаёт OI, подставляется консервативное значение.
const DefaultOpenInterestUSD = 5_000_000

// RateSource - источник нормализованных ставок
type RateSource interface {
	Fetch(ctx context.Context, force bool) (*rates.Response, error)
}

// RatesGateway строит снапшоты только из агрегатора ставок.
// OI/цены недоступны: mark_price = 0, bid/ask = nil.
type RatesGateway struct {
	source    RateSource
	selector  *universe.Selector
	cfg       config.UniverseConfig
	defaultOI float64
	logger    *utils.Logger
}

// NewRatesGateway создаёт шлюз поверх фида ставок
func NewRatesGateway(source RateSource, selector *universe.Selector, cfg config.UniverseConfig, logger *utils.Logger) *RatesGateway {
	return &RatesGateway{
		source:    source,
		selector:  selector,
		cfg:       cfg,
		defaultOI: DefaultOpenInterestUSD,
		logger:    logger.WithComponent("marketdata"),
	}
}

// GetFundingSnapshots переводит ставки фида в FundingSnapshot
// по запрошенным биржам и символам (внутренняя нотация)
func (g *RatesGateway) GetFundingSnapshots(ctx context.Context, exchanges, symbols []string) ([]models.FundingSnapshot, error) {
	resp, err := g.source.Fetch(ctx, false)
	if err != nil {
		return nil, err
	}

	exchangeSet := make(map[string]bool, len(exchanges))
	for _, ex := range exchanges {
		exchangeSet[ex] = true
	}
	feedSymbols := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		feedSymbols[InternalToFeedSymbol(s)] = true
	}

	now := time.Now().UTC()
	var snapshots []models.FundingSnapshot
	for _, fr := range resp.FundingRates {
		internalExchange := FeedToInternalExchange(fr.Exchange)
		if !exchangeSet[internalExchange] {
			continue
		}
		if !feedSymbols[fr.Symbol] {
			continue
		}

		snapshots = append(snapshots, models.FundingSnapshot{
			Exchange:        internalExchange,
			Symbol:          FeedToInternalSymbol(fr.Symbol),
			Timestamp:       now,
			FundingRate:     fr.Rate,
			OpenInterestUSD: g.defaultOI,
		})
	}

	g.logger.Info("snapshots collected",
		utils.Int("count", len(snapshots)),
		utils.Int("exchanges", len(exchanges)),
		utils.Int("symbols", len(symbols)),
	)
	return snapshots, nil
}

// GetOrderbookTops: фид ставок не отдаёт стакан
func (g *RatesGateway) GetOrderbookTops(ctx context.Context, exchange string, symbols []string) (map[string]OrderbookTop, error) {
	g.logger.Warn("orderbook tops unavailable without exchange adapters",
		utils.Exchange(exchange),
	)
	return map[string]OrderbookTop{}, nil
}

// TopSymbols делегирует отбор динамическому селектору
func (g *RatesGateway) TopSymbols(ctx context.Context, size int, minFRDiff float64) ([]string, error) {
	return topSymbols(ctx, g.selector, g.cfg, size, minFRDiff)
}

// topSymbols - общая логика отбора для обоих шлюзов:
// топ-N символов селектора, затем квалификация по минимальной
// межбиржевой FR-разнице (пропускается в one-exchange режиме).
func topSymbols(ctx context.Context, selector *universe.Selector, cfg config.UniverseConfig, size int, minFRDiff float64) ([]string, error) {
	snapshot, err := selector.Select(ctx, false)
	if err != nil {
		return nil, err
	}

	feedSymbols := snapshot.Symbols
	if size > 0 && len(feedSymbols) > size {
		feedSymbols = feedSymbols[:size]
	}

	if minFRDiff > 0 && !cfg.AllowSingleExchangePairs {
		qualified := make(map[string]bool)
		for _, c := range snapshot.PairCandidates {
			if c.FRDiff >= minFRDiff {
				qualified[symbolOfIdentity(c.IdentityA)] = true
			}
		}
		filtered := make([]string, 0, len(feedSymbols))
		for _, s := range feedSymbols {
			if qualified[s] {
				filtered = append(filtered, s)
			}
		}
		feedSymbols = filtered
	}

	out := make([]string, 0, len(feedSymbols))
	for _, s := range feedSymbols {
		out = append(out, FeedToInternalSymbol(s))
	}
	return out, nil
}

// symbolOfIdentity извлекает символ из "exchange:symbol"
func symbolOfIdentity(identity string) string {
	for i := 0; i < len(identity); i++ {
		if identity[i] == ':' {
			return identity[i+1:]
		}
	}
	return identity
}
