package models

import (
	"sort"
	"time"
)

// FundingSnapshot представляет срез рыночных данных по одному инструменту
// на одной бирже. Создаётся заново каждый цикл и не мутируется.
//
// Знак funding_rate канонический: положительная ставка означает,
// что лонги платят шортам (шорт получает funding).
type FundingSnapshot struct {
	Exchange        string     `json:"exchange"`
	Symbol          string     `json:"symbol"`
	Timestamp       time.Time  `json:"timestamp"`
	FundingRate     float64    `json:"funding_rate"`      // доля за 8h-окно (0.0025 = 0.25%)
	NextFundingTime *time.Time `json:"next_funding_time,omitempty"`
	OpenInterestUSD float64    `json:"open_interest_usd"` // открытый интерес в USD
	MarkPrice       float64    `json:"mark_price"`
	Bid             *float64   `json:"bid,omitempty"` // лучшая цена покупки (если известна)
	Ask             *float64   `json:"ask,omitempty"` // лучшая цена продажи (если известна)
}

// Identity возвращает идентичность снапшота в формате "exchange:symbol".
func (s FundingSnapshot) Identity() string {
	return s.Exchange + ":" + s.Symbol
}

// PairID строит стабильный симметричный идентификатор пары ног.
// Порядок аргументов не влияет на результат: обе идентичности
// сортируются лексикографически и соединяются через "|".
func PairID(identityA, identityB string) string {
	if identityA > identityB {
		identityA, identityB = identityB, identityA
	}
	return identityA + "|" + identityB
}

// SnapshotPairID возвращает pair_id для двух снапшотов.
func SnapshotPairID(a, b FundingSnapshot) string {
	return PairID(a.Identity(), b.Identity())
}

// FeatureKey - неупорядоченный ключ пары символов для поиска PairFeatures.
type FeatureKey struct {
	SymbolA string
	SymbolB string
}

// NewFeatureKey создаёт ключ с канонической сортировкой символов.
func NewFeatureKey(symbolA, symbolB string) FeatureKey {
	pair := []string{symbolA, symbolB}
	sort.Strings(pair)
	return FeatureKey{SymbolA: pair[0], SymbolB: pair[1]}
}
