// Package universe реализует динамический отбор торгуемой вселенной
// по дисперсии funding-ставок между биржами.
package universe

import (
	"context"
	"sort"

	"fundingarb/internal/config"
	"fundingarb/internal/models"
	"fundingarb/internal/rates"
	"fundingarb/pkg/utils"
)

// RateSource - источник нормализованных funding-ставок
type RateSource interface {
	Fetch(ctx context.Context, force bool) (*rates.Response, error)
}

// Selector отбирает топ-N символов по max |разница ставок| между биржами
// и извлекает сырые пары "биржа:символ" для генерации сигналов.
type Selector struct {
	cfg    config.UniverseConfig
	source RateSource
	logger *utils.Logger
}

// NewSelector создаёт селектор с опциональным ограничением по биржам
func NewSelector(cfg config.UniverseConfig, source RateSource, logger *utils.Logger) *Selector {
	return &Selector{
		cfg:    cfg,
		source: source,
		logger: logger.WithComponent("universe"),
	}
}

// Select выполняет полный цикл отбора:
//  1. получить ставки (с учётом кэша источника);
//  2. отфильтровать по целевым биржам;
//  3. оценить символы и отобрать топ-N;
//  4. извлечь пары-кандидаты для отобранных символов.
//
// Пустой вход даёт пустой снапшот без ошибки.
func (s *Selector) Select(ctx context.Context, forceRefresh bool) (*models.UniverseSnapshot, error) {
	resp, err := s.source.Fetch(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}

	filtered := s.filterRates(resp.FundingRates)
	bySymbol := groupBySymbol(filtered)
	scores := s.scoreSymbols(bySymbol)

	var selected []models.SymbolScore
	if s.cfg.AllowSingleExchangePairs {
		selected = s.selectSingleExchange(scores, filtered)
	} else {
		selected = s.selectCrossExchange(scores)
	}

	symbols := make([]string, 0, len(selected))
	scoreMap := make(map[string]models.SymbolScore, len(selected))
	for _, sc := range selected {
		symbols = append(symbols, sc.Symbol)
		scoreMap[sc.Symbol] = sc
	}

	candidates := extractPairCandidates(bySymbol, symbols)

	s.logger.Info("universe selected",
		utils.Int("selected", len(symbols)),
		utils.Int("scored", len(scores)),
	)

	return &models.UniverseSnapshot{
		Symbols:        symbols,
		Scores:         scoreMap,
		PairCandidates: candidates,
	}, nil
}

// SymbolsForCycle возвращает только список отобранных символов
func (s *Selector) SymbolsForCycle(ctx context.Context, forceRefresh bool) ([]string, error) {
	snapshot, err := s.Select(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return snapshot.Symbols, nil
}

func (s *Selector) filterRates(all []rates.FundingRate) []rates.FundingRate {
	if len(s.cfg.Exchanges) == 0 {
		return all
	}
	target := make(map[string]bool, len(s.cfg.Exchanges))
	for _, ex := range s.cfg.Exchanges {
		target[ex] = true
	}
	out := make([]rates.FundingRate, 0, len(all))
	for _, fr := range all {
		if target[fr.Exchange] {
			out = append(out, fr)
		}
	}
	return out
}

func groupBySymbol(all []rates.FundingRate) map[string][]rates.FundingRate {
	grouped := make(map[string][]rates.FundingRate)
	for _, fr := range all {
		grouped[fr.Symbol] = append(grouped[fr.Symbol], fr)
	}
	return grouped
}

// scoreSymbols оценивает символы:
//   - max_fr_spread: максимальная |разница ставок| между биржами
//     (размер арбитражной возможности);
//   - exchange_count: покрытие биржами;
//   - avg_abs_rate: средняя |ставка| (ориентир funding-дохода).
//
// Символы с числом бирж ниже минимума (2 кросс / 1 single-exchange)
// отбрасываются.
func (s *Selector) scoreSymbols(bySymbol map[string][]rates.FundingRate) map[string]models.SymbolScore {
	minExchanges := 2
	if s.cfg.AllowSingleExchangePairs {
		minExchanges = 1
	}

	scores := make(map[string]models.SymbolScore)
	for symbol, symbolRates := range bySymbol {
		if len(symbolRates) < minExchanges {
			continue
		}

		var maxSpread float64
		for i := 0; i < len(symbolRates); i++ {
			for j := i + 1; j < len(symbolRates); j++ {
				spread := utils.Abs(symbolRates[i].Rate - symbolRates[j].Rate)
				if spread > maxSpread {
					maxSpread = spread
				}
			}
		}

		var sumAbs float64
		for _, fr := range symbolRates {
			sumAbs += utils.Abs(fr.Rate)
		}

		scores[symbol] = models.SymbolScore{
			Symbol:        symbol,
			MaxFRSpread:   maxSpread,
			ExchangeCount: len(symbolRates),
			AvgAbsRate:    sumAbs / float64(len(symbolRates)),
		}
	}
	return scores
}

// selectCrossExchange сортирует по (max_fr_spread убыв., exchange_count убыв.)
// и берёт топ-N
func (s *Selector) selectCrossExchange(scores map[string]models.SymbolScore) []models.SymbolScore {
	sorted := make([]models.SymbolScore, 0, len(scores))
	for _, sc := range scores {
		sorted = append(sorted, sc)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].MaxFRSpread != sorted[j].MaxFRSpread {
			return sorted[i].MaxFRSpread > sorted[j].MaxFRSpread
		}
		if sorted[i].ExchangeCount != sorted[j].ExchangeCount {
			return sorted[i].ExchangeCount > sorted[j].ExchangeCount
		}
		// Стабилизация порядка при равных оценках
		return sorted[i].Symbol < sorted[j].Symbol
	})

	if len(sorted) > s.cfg.Size {
		sorted = sorted[:s.cfg.Size]
	}
	return sorted
}

// selectSingleExchange балансирует вселенную по знаку ставки:
// до N/2 символов с положительной ставкой (по убыванию), остаток
// добирается из отрицательных (по возрастанию, то есть |rate| убыв.).
func (s *Selector) selectSingleExchange(scores map[string]models.SymbolScore, filtered []rates.FundingRate) []models.SymbolScore {
	rateMap := make(map[string]float64, len(filtered))
	for _, fr := range filtered {
		rateMap[fr.Symbol] = fr.Rate
	}

	var positive, negative []models.SymbolScore
	for _, sc := range scores {
		if rateMap[sc.Symbol] >= 0 {
			positive = append(positive, sc)
		} else {
			negative = append(negative, sc)
		}
	}

	sort.Slice(positive, func(i, j int) bool {
		ri, rj := rateMap[positive[i].Symbol], rateMap[positive[j].Symbol]
		if ri != rj {
			return ri > rj
		}
		return positive[i].Symbol < positive[j].Symbol
	})
	sort.Slice(negative, func(i, j int) bool {
		ri, rj := rateMap[negative[i].Symbol], rateMap[negative[j].Symbol]
		if ri != rj {
			return ri < rj
		}
		return negative[i].Symbol < negative[j].Symbol
	})

	half := s.cfg.Size / 2
	if half > len(positive) {
		half = len(positive)
	}
	selected := make([]models.SymbolScore, 0, s.cfg.Size)
	selected = append(selected, positive[:half]...)

	remaining := s.cfg.Size - len(selected)
	if remaining > len(negative) {
		remaining = len(negative)
	}
	selected = append(selected, negative[:remaining]...)
	return selected
}

// extractPairCandidates возвращает все попарные комбинации бирж
// по каждому отобранному символу, отсортированные по FR-разнице убыв.
func extractPairCandidates(bySymbol map[string][]rates.FundingRate, selected []string) []models.RawPairCandidate {
	var candidates []models.RawPairCandidate
	for _, symbol := range selected {
		symbolRates := bySymbol[symbol]
		for i := 0; i < len(symbolRates); i++ {
			for j := i + 1; j < len(symbolRates); j++ {
				a, b := symbolRates[i], symbolRates[j]
				candidates = append(candidates, models.RawPairCandidate{
					IdentityA: a.Exchange + ":" + a.Symbol,
					IdentityB: b.Exchange + ":" + b.Symbol,
					FRDiff:    utils.Abs(a.Rate - b.Rate),
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].FRDiff != candidates[j].FRDiff {
			return candidates[i].FRDiff > candidates[j].FRDiff
		}
		if candidates[i].IdentityA != candidates[j].IdentityA {
			return candidates[i].IdentityA < candidates[j].IdentityA
		}
		return candidates[i].IdentityB < candidates[j].IdentityB
	})
	return candidates
}
