package models

// SymbolScore - сводка дисперсии funding-ставок символа между биржами.
type SymbolScore struct {
	Symbol        string  `json:"symbol"`
	MaxFRSpread   float64 `json:"max_fr_spread"`  // максимальная попарная |разница ставок|
	ExchangeCount int     `json:"exchange_count"` // на скольких биржах наблюдается символ
	AvgAbsRate    float64 `json:"avg_abs_rate"`   // средняя |ставка|
}

// RawPairCandidate - сырой кандидат "биржа:символ x биржа:символ" из
// селектора юниверса, ещё до проверки знака и ликвидности.
type RawPairCandidate struct {
	IdentityA string  `json:"identity_a"` // "exchange:symbol"
	IdentityB string  `json:"identity_b"`
	FRDiff    float64 `json:"fr_diff"`
}

// UniverseSnapshot - результат динамического отбора юниверса.
// Пересобирается при каждом вызове селектора, нигде не хранится.
type UniverseSnapshot struct {
	Symbols        []string               `json:"symbols"` // упорядоченный список
	Scores         map[string]SymbolScore `json:"scores"`
	PairCandidates []RawPairCandidate     `json:"pair_candidates"` // отсортированы по FRDiff убыв.
}
