// Package features оценивает характеристики пары инструментов
// по категорийным эвристикам: корреляция, бета, стабильность беты,
// стабильность ATR-отношения и скор возврата к среднему.
package features

import (
	"strings"

	"fundingarb/internal/models"
)

// Категории инструментов
var symbolCategories = map[string][]string{
	"BTC":         {"BTC", "WBTC"},
	"ETH":         {"ETH", "WETH", "STETH", "RETH"},
	"SOL":         {"SOL", "MSOL", "JSOL"},
	"LAYER1":      {"AVAX", "FTM", "ATOM", "NEAR", "DOT", "ADA"},
	"LAYER2":      {"ARB", "OP", "MATIC", "METIS"},
	"MAJOR_ALT":   {"XRP", "LTC", "BCH", "LINK", "UNI"},
	"NEW_L1":      {"SUI", "APT", "SEI", "TIA"},
	"DEFI":        {"AAVE", "MKR", "CRV", "SNX", "COMP"},
	"DEPIN_INFRA": {"FIL", "INJ", "AR", "HNT"},
	"MEME":        {"DOGE", "SHIB", "PEPE", "WIF", "BONK", "FLOKI"},
	"AI":          {"FET", "AGIX", "RNDR", "TAO"},
	"GAMING":      {"AXS", "SAND", "MANA", "IMX", "GALA"},
	"STABLE":      {"USDT", "USDC", "DAI", "BUSD", "TUSD", "STBL"},
}

// Родственные категории: ожидается умеренная корреляция
var relatedCategories = map[string][]string{
	"BTC":         {"LAYER1", "MAJOR_ALT"},
	"ETH":         {"LAYER2", "DEFI"},
	"SOL":         {"NEW_L1"},
	"LAYER1":      {"BTC", "LAYER2", "NEW_L1"},
	"LAYER2":      {"ETH", "LAYER1"},
	"MAJOR_ALT":   {"BTC", "LAYER1"},
	"NEW_L1":      {"SOL", "LAYER1"},
	"DEFI":        {"ETH"},
	"DEPIN_INFRA": {"LAYER1"},
}

// Профиль волатильности категории
var volatilityProfile = map[string]string{
	"BTC":         "low",
	"ETH":         "low",
	"SOL":         "medium",
	"LAYER1":      "medium",
	"LAYER2":      "medium",
	"MAJOR_ALT":   "medium",
	"NEW_L1":      "high",
	"DEFI":        "medium",
	"DEPIN_INFRA": "medium",
	"MEME":        "high",
	"AI":          "high",
	"GAMING":      "high",
	"STABLE":      "very_low",
}

// Относительная волатильность профиля, используется при оценке беты
var volRatios = map[string]float64{
	"very_low": 0.2,
	"low":      0.5,
	"medium":   1.0,
	"high":     2.0,
}

var volOrder = []string{"very_low", "low", "medium", "high"}

// Estimator - категорийный оценщик характеристик пары
type Estimator struct {
	symbolToCategory map[string]string
}

// NewEstimator строит оценщик с обратным индексом символ -> категория
func NewEstimator() *Estimator {
	index := make(map[string]string)
	for category, symbols := range symbolCategories {
		for _, symbol := range symbols {
			index[strings.ToUpper(symbol)] = category
		}
	}
	return &Estimator{symbolToCategory: index}
}

// NormalizeSymbol приводит символ к базовой форме: "BTC/USDT:USDT" -> "BTC"
func NormalizeSymbol(symbol string) string {
	s := symbol
	if i := strings.Index(s, "/"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "-"); i >= 0 {
		s = s[:i]
	}
	return strings.ToUpper(s)
}

func (e *Estimator) category(symbol string) string {
	return e.symbolToCategory[NormalizeSymbol(symbol)]
}

func related(catA, catB string) bool {
	for _, c := range relatedCategories[catA] {
		if c == catB {
			return true
		}
	}
	for _, c := range relatedCategories[catB] {
		if c == catA {
			return true
		}
	}
	return false
}

// estimateCorrelation оценивает корреляцию ценовых движений в [0, 1]
func (e *Estimator) estimateCorrelation(symbolA, symbolB string) float64 {
	catA := e.category(symbolA)
	catB := e.category(symbolB)

	// Одна категория: высокая корреляция
	if catA == catB && catA != "" {
		return 0.85
	}

	// Родственные категории: средняя корреляция
	if catA != "" && catB != "" && related(catA, catB) {
		return 0.60
	}

	// Стейблкоины почти не коррелируют с остальными
	if catA == "STABLE" || catB == "STABLE" {
		return 0.05
	}

	return 0.35
}

// estimateBeta оценивает бету: beta = (sigma_b / sigma_a) * rho,
// где sigma берётся из профиля волатильности
func (e *Estimator) estimateBeta(symbolA, symbolB string, correlation float64) float64 {
	volA := profileOf(e.category(symbolA))
	volB := profileOf(e.category(symbolB))

	sigmaA := volRatios[volA]
	sigmaB := volRatios[volB]

	beta := (sigmaB / sigmaA) * correlation

	// Реалистичный диапазон
	if beta < 0.1 {
		return 0.1
	}
	if beta > 3.0 {
		return 3.0
	}
	return beta
}

func (e *Estimator) estimateBetaStability(symbolA, symbolB string, correlation float64) float64 {
	catA := e.category(symbolA)
	catB := e.category(symbolB)

	if catA == catB && catA != "" {
		return 0.80
	}

	if catA != "" && catB != "" && related(catA, catB) {
		return 0.60
	}

	if catA == "STABLE" || catB == "STABLE" {
		return 0.20
	}

	if v := correlation * 0.8; v > 0.3 {
		return v
	}
	return 0.3
}

func (e *Estimator) estimateATRRatioStability(symbolA, symbolB string) float64 {
	volA := profileOf(e.category(symbolA))
	volB := profileOf(e.category(symbolB))

	if volA == volB {
		return 0.85
	}

	idxA := volIndex(volA)
	idxB := volIndex(volB)
	if idxA < 0 || idxB < 0 {
		return 0.50
	}

	diff := idxA - idxB
	if diff < 0 {
		diff = -diff
	}
	switch diff {
	case 1:
		return 0.60
	case 2:
		return 0.40
	default:
		return 0.20
	}
}

// estimateMeanReversion: чем выше корреляция, тем быстрее расхождение
// цен возвращается к среднему
func (e *Estimator) estimateMeanReversion(symbolA, symbolB string, correlation float64) float64 {
	catA := e.category(symbolA)
	catB := e.category(symbolB)

	if catA == catB && catA != "" {
		switch profileOf(catA) {
		case "very_low":
			return 0.90
		case "low":
			return 0.75
		case "medium":
			return 0.65
		default:
			return 0.50
		}
	}

	if correlation > 0.7 {
		return 0.70
	}
	if correlation > 0.5 {
		return 0.55
	}
	if v := correlation * 0.8; v > 0.30 {
		return v
	}
	return 0.30
}

// Estimate возвращает полный набор характеристик пары
func (e *Estimator) Estimate(symbolA, symbolB string) models.PairFeatures {
	correlation := e.estimateCorrelation(symbolA, symbolB)
	return models.PairFeatures{
		Correlation:        correlation,
		Beta:               e.estimateBeta(symbolA, symbolB, correlation),
		BetaStability:      e.estimateBetaStability(symbolA, symbolB, correlation),
		ATRRatioStability:  e.estimateATRRatioStability(symbolA, symbolB),
		MeanReversionScore: e.estimateMeanReversion(symbolA, symbolB, correlation),
	}
}

func profileOf(category string) string {
	if v, ok := volatilityProfile[category]; ok {
		return v
	}
	return "medium"
}

func volIndex(profile string) int {
	for i, v := range volOrder {
		if v == profile {
			return i
		}
	}
	return -1
}
