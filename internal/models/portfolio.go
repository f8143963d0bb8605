package models

// Статусы риск-движка (state machine по просадке)
const (
	RiskStatusNormal  = "NORMAL"   // обычный режим
	RiskStatusReduce  = "REDUCE"   // сниженный лимит плеча
	RiskStatusHaltNew = "HALT_NEW" // новые входы заблокированы
)

// Причины блокировки pre-trade проверки
const (
	BlockReasonHaltNew       = "HALT_NEW_ACTIVE"
	BlockReasonTotalNotional = "TOTAL_NOTIONAL_LIMIT"
	BlockReasonLeverage      = "LEVERAGE_LIMIT"

	// BlockReasonExchangePrefix + имя биржи, например "EXCHANGE_LIMIT:bybit"
	BlockReasonExchangePrefix = "EXCHANGE_LIMIT:"
)

// PortfolioState - внешний снимок портфеля, передаётся вызывающим
// кодом каждый цикл. Ядро его не хранит и не мутирует.
type PortfolioState struct {
	Equity            float64            `json:"equity"`
	PeakEquity        float64            `json:"peak_equity"`
	GrossNotionalUSD  float64            `json:"gross_notional_usd"`
	NetDeltaUSD       float64            `json:"net_delta_usd"`
	ExchangeNotionals map[string]float64 `json:"exchange_notionals"`
}

// RiskState - производное состояние риска на текущий цикл.
type RiskState struct {
	Equity        float64 `json:"equity"`
	DrawdownPct   float64 `json:"dd_pct"`
	GrossLeverage float64 `json:"gross_leverage"`
	NetDelta      float64 `json:"net_delta"`
	Status        string  `json:"status"`
}
