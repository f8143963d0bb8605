package models

// PairFeatures описывает статистическую связь цен двух символов.
// Все факторы, кроме beta, интерпретируются в диапазоне [0,1]
// (при использовании клампятся); beta не ограничена, но клампится
// при сайзинге.
type PairFeatures struct {
	Correlation        float64 `json:"correlation"`
	Beta               float64 `json:"beta"`
	BetaStability      float64 `json:"beta_stability"`
	ATRRatioStability  float64 `json:"atr_ratio_stability"`
	MeanReversionScore float64 `json:"mean_reversion_score"`
}

// NeutralPairFeatures возвращает нейтральные значения по умолчанию,
// используемые когда для пары нет рассчитанных признаков.
func NeutralPairFeatures() PairFeatures {
	return PairFeatures{
		Correlation:        0.5,
		Beta:               1.0,
		BetaStability:      0.5,
		ATRRatioStability:  0.5,
		MeanReversionScore: 0.5,
	}
}

// PairCandidate - кандидат на funding-арбитраж между двумя ногами
// с противоположным знаком ставки.
type PairCandidate struct {
	PairID          string   `json:"pair_id"`
	SymbolA         string   `json:"symbol_a"`
	ExchangeA       string   `json:"exchange_a"`
	SymbolB         string   `json:"symbol_b"`
	ExchangeB       string   `json:"exchange_b"`
	FRDiff          float64  `json:"fr_diff"`           // |rate_a - rate_b|
	Persistence     int      `json:"persistence"`       // подряд наблюдаемых циклов
	LiquidityScore  float64  `json:"liquidity_score"`   // min(1, oi/floor) худшей ноги
	PairScore       float64  `json:"pair_score"`        // взвешенная оценка [0,1]
	Beta            float64  `json:"beta"`
	ExpectedEdgeBps float64  `json:"expected_edge_bps"` // после вычета taker-издержек
	ReasonCodes     []string `json:"reason_codes"`
}
