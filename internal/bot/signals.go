package bot

import (
	"fmt"
	"sort"

	"fundingarb/internal/config"
	"fundingarb/internal/models"
	"fundingarb/pkg/utils"
)

// Веса факторов pair_score. Сумма равна 1.0.
const (
	weightCorrelation   = 0.30
	weightBetaStability = 0.25
	weightLiquidity     = 0.20
	weightATRStability  = 0.15
	weightMeanReversion = 0.10
)

// Границы клампа beta при расчёте сайзинга.
const (
	betaClampMin = 0.1
	betaClampMax = 10.0
)

// SizingContext - контекст сайзинга новых позиций на текущий цикл.
type SizingContext struct {
	CapitalUSD float64 `json:"capital_usd"`
}

// SignalEngine строит кандидатов на парный funding-арбитраж и отбирает
// из них торговые намерения. Держит только счётчики персистентности
// между циклами; все рыночные данные приходят снаружи каждый цикл.
type SignalEngine struct {
	signalsCfg config.SignalsConfig
	riskCfg    config.RiskConfig
	execCfg    config.ExecutionConfig

	// Минимальный спред ставок для входа (порог вселенной действует
	// и в статическом режиме).
	frDiffMin float64

	// Счётчик подряд отобранных циклов по pair_id.
	// Ключ пары, не попавшей в кандидаты текущего цикла, сбрасывается в 0.
	persistence map[string]int

	logger *utils.Logger
}

// NewSignalEngine создает движок сигналов.
func NewSignalEngine(cfg *config.Config, logger *utils.Logger) *SignalEngine {
	if logger == nil {
		logger = utils.L()
	}
	return &SignalEngine{
		signalsCfg:  cfg.Signals,
		riskCfg:     cfg.Risk,
		execCfg:     cfg.Execution,
		frDiffMin:   cfg.Universe.FRDiffMin,
		persistence: make(map[string]int),
		logger:      logger.WithComponent("signals"),
	}
}

// ============================================================
// Построение кандидатов
// ============================================================

// BuildPairCandidates строит кандидатов из снапшотов текущего цикла.
//
// Пара проходит, если:
// - ноги на разных биржах или с разными символами;
// - обе ставки ненулевые и противоположного знака;
// - liquidity score (худшая нога) не ниже порога.
//
// Персистентность считается по кандидатам: счётчик растёт только для
// пар, прошедших все фильтры, а ключи вне кандидатов текущего цикла
// обнуляются. Неликвидная пара серию не копит - иначе она входила бы
// на первом же ликвидном принте.
func (e *SignalEngine) BuildPairCandidates(
	snapshots []models.FundingSnapshot,
	features map[models.FeatureKey]models.PairFeatures,
) []models.PairCandidate {
	candidates := make([]models.PairCandidate, 0)
	seen := make(map[string]bool, len(snapshots))

	for i := 0; i < len(snapshots); i++ {
		for j := i + 1; j < len(snapshots); j++ {
			a, b := snapshots[i], snapshots[j]

			if a.Symbol == b.Symbol && a.Exchange == b.Exchange {
				continue
			}
			if a.FundingRate == 0 || b.FundingRate == 0 {
				continue
			}
			// Интересны только противоположные знаки ставок
			if a.FundingRate*b.FundingRate >= 0 {
				continue
			}

			liquidity := e.liquidityScore(a, b)
			if liquidity < e.signalsCfg.MinLiquidityScore {
				continue
			}

			pairID := models.SnapshotPairID(a, b)
			e.persistence[pairID]++
			seen[pairID] = true
			persistence := e.persistence[pairID]

			pf, ok := features[models.NewFeatureKey(a.Symbol, b.Symbol)]
			if !ok {
				pf = models.NeutralPairFeatures()
			}

			pairScore := e.pairScore(pf, liquidity)
			frDiff := utils.Abs(a.FundingRate - b.FundingRate)
			edgeBps := utils.RateToBps(frDiff) - e.signalsCfg.TakerCostBps

			candidates = append(candidates, models.PairCandidate{
				PairID:          pairID,
				SymbolA:         a.Symbol,
				ExchangeA:       a.Exchange,
				SymbolB:         b.Symbol,
				ExchangeB:       b.Exchange,
				FRDiff:          frDiff,
				Persistence:     persistence,
				LiquidityScore:  liquidity,
				PairScore:       pairScore,
				Beta:            pf.Beta,
				ExpectedEdgeBps: edgeBps,
				ReasonCodes: []string{
					"FR_OPPOSITE_SIGN",
					fmt.Sprintf("PERSIST_%d", persistence),
					fmt.Sprintf("SCORE_%.3f", pairScore),
				},
			})
		}
	}

	// Пары вне кандидатов этого цикла теряют накопленную серию.
	// Ключ остаётся в карте со значением 0.
	for pairID := range e.persistence {
		if !seen[pairID] {
			e.persistence[pairID] = 0
		}
	}

	return candidates
}

// liquidityScore возвращает min(1, oi/floor) худшей из двух ног.
// При нулевом либо отрицательном пороге ликвидность считается полной.
func (e *SignalEngine) liquidityScore(a, b models.FundingSnapshot) float64 {
	floor := e.signalsCfg.MinOpenInterestUSD
	if floor <= 0 {
		return 1.0
	}
	scoreA := utils.Min(1.0, a.OpenInterestUSD/floor)
	scoreB := utils.Min(1.0, b.OpenInterestUSD/floor)
	return utils.Min(scoreA, scoreB)
}

// pairScore - взвешенная оценка качества пары в [0,1].
// Каждый фактор клампится перед взвешиванием, результат
// округляется до 6 знаков для стабильной сериализации.
func (e *SignalEngine) pairScore(pf models.PairFeatures, liquidity float64) float64 {
	score := weightCorrelation*utils.Clamp(pf.Correlation, 0, 1) +
		weightBetaStability*utils.Clamp(pf.BetaStability, 0, 1) +
		weightLiquidity*utils.Clamp(liquidity, 0, 1) +
		weightATRStability*utils.Clamp(pf.ATRRatioStability, 0, 1) +
		weightMeanReversion*utils.Clamp(pf.MeanReversionScore, 0, 1)
	return utils.RoundTo(score, 1e-6)
}

// PersistenceCount возвращает текущий счётчик для pair_id (для тестов
// и диагностики).
func (e *SignalEngine) PersistenceCount(pairID string) int {
	return e.persistence[pairID]
}

// ============================================================
// Отбор намерений
// ============================================================

// SelectEntries фильтрует кандидатов по порогам, ранжирует их и строит
// торговые намерения с рассчитанным сайзингом.
//
// В статусе HALT_NEW новые входы не создаются. В статусе REDUCE плечо
// намерения ограничивается normal leverage cap.
func (e *SignalEngine) SelectEntries(
	candidates []models.PairCandidate,
	riskStatus string,
	snapshotsByID map[string]models.FundingSnapshot,
	sizing SizingContext,
) []models.TradeIntent {
	if riskStatus == models.RiskStatusHaltNew {
		return nil
	}

	leverage := e.riskCfg.MaxLeverage
	if riskStatus == models.RiskStatusReduce {
		leverage = e.riskCfg.NormalLeverageCap
	}

	eligible := make([]models.PairCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.FRDiff < e.frDiffMin {
			continue
		}
		if c.Persistence < e.signalsCfg.MinPersistenceWindows {
			continue
		}
		if c.PairScore < e.signalsCfg.MinPairScore {
			continue
		}
		if c.ExpectedEdgeBps < e.signalsCfg.ExpectedEdgeMinBps {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].ExpectedEdgeBps != eligible[j].ExpectedEdgeBps {
			return eligible[i].ExpectedEdgeBps > eligible[j].ExpectedEdgeBps
		}
		return eligible[i].PairScore > eligible[j].PairScore
	})

	if max := e.signalsCfg.MaxNewPositionsPerCycle; max >= 0 && len(eligible) > max {
		eligible = eligible[:max]
	}

	intents := make([]models.TradeIntent, 0, len(eligible))
	for _, c := range eligible {
		snapA, okA := snapshotsByID[c.ExchangeA+":"+c.SymbolA]
		snapB, okB := snapshotsByID[c.ExchangeB+":"+c.SymbolB]
		if !okA || !okB {
			e.logger.Warn("candidate snapshot missing, skipping",
				utils.PairID(c.PairID))
			continue
		}

		intent := e.buildIntent(c, snapA, snapB, leverage, sizing)
		intents = append(intents, intent)
	}

	return intents
}

// buildIntent строит намерение с дельта-нейтральным сайзингом.
//
// База ограничена max notional per pair и 40% капитала (но не меньше
// 20 USD). Нога B масштабируется на beta, чтобы долларовые дельты ног
// совпадали. Обе ноги дотягиваются до минимального ордерного значения
// биржи с запасом 10%, если какая-то из них слишком мала.
func (e *SignalEngine) buildIntent(
	c models.PairCandidate,
	snapA, snapB models.FundingSnapshot,
	leverage float64,
	sizing SizingContext,
) models.TradeIntent {
	base := utils.Min(e.riskCfg.MaxNotionalPerPairUSD,
		utils.Max(20.0, sizing.CapitalUSD*0.40))

	notionalA := base * 0.5
	notionalB := notionalA / utils.Clamp(c.Beta, betaClampMin, betaClampMax)

	markA := utils.Max(snapA.MarkPrice, 1e-9)
	markB := utils.Max(snapB.MarkPrice, 1e-9)

	qtyA := notionalA / markA
	qtyB := notionalB / markB

	// Дотягиваем обе ноги до минимального ордерного значения
	minValue := utils.Min(qtyA*markA, qtyB*markB)
	if minOrder := e.execCfg.MinOrderValueUSD; minValue < minOrder && minValue > 0 {
		scale := minOrder * 1.1 / minValue
		qtyA *= scale
		qtyB *= scale
	}

	// Сторона ноги - получатель funding: при положительной ставке
	// платят лонги, значит встаём в шорт.
	sideA := models.SideBuy
	if snapA.FundingRate > 0 {
		sideA = models.SideSell
	}
	sideB := models.SideBuy
	if snapB.FundingRate > 0 {
		sideB = models.SideSell
	}

	reasons := make([]string, 0, len(c.ReasonCodes)+1)
	reasons = append(reasons, c.ReasonCodes...)
	reasons = append(reasons, fmt.Sprintf("EDGE_%.1fbps", c.ExpectedEdgeBps))

	return models.TradeIntent{
		PairID: c.PairID,
		LegA: models.TradeLeg{
			Exchange:  c.ExchangeA,
			Symbol:    c.SymbolA,
			Side:      sideA,
			Qty:       qtyA,
			OrderType: models.OrderTypeMarket,
		},
		LegB: models.TradeLeg{
			Exchange:  c.ExchangeB,
			Symbol:    c.SymbolB,
			Side:      sideB,
			Qty:       qtyB,
			OrderType: models.OrderTypeMarket,
		},
		Leverage:    leverage,
		ReasonCodes: reasons,
	}
}
