package models

import "time"

// Коды ошибок исполнения интента
const (
	ErrCodeDuplicateIntent = "DUPLICATE_INTENT"
	ErrCodeLegAFailed      = "LEG_A_FAILED"
	ErrCodeLegBFailed      = "LEG_B_FAILED"
)

// Компенсирующие действия координатора
const (
	RecoveryLegAFlattened     = "LEG_A_FLATTENED"
	RecoveryLegAFlattenFailed = "LEG_A_FLATTEN_FAILED"
)

// OrderResult - результат размещения одной ноги.
type OrderResult struct {
	Success  bool    `json:"success"`
	OrderID  string  `json:"order_id,omitempty"`
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Qty      float64 `json:"qty"`
	AvgPrice float64 `json:"avg_price,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// ExecutionResult - результат исполнения одного интента.
//
// RecoveryAction заполняется только при LEG_B_FAILED и описывает
// выполненную компенсацию. LEG_A_FLATTEN_FAILED означает остаточную
// направленную позицию - наиболее критичный исход.
type ExecutionResult struct {
	Success        bool          `json:"success"`
	PairID         string        `json:"pair_id"`
	LegResults     []OrderResult `json:"leg_results"`
	Error          string        `json:"error,omitempty"`
	RecoveryAction string        `json:"recovery_action,omitempty"`
}

// FlattenScopeAll - экстренное закрытие всего учёта; любое другое
// значение scope трактуется как конкретный pair_id.
const FlattenScopeAll = "all"

// FlattenResult - итог экстренного закрытия открытых пар.
type FlattenResult struct {
	Success     bool              `json:"success"`
	ClosedPairs []string          `json:"closed_pairs"`
	Failures    map[string]string `json:"failures"`
}

// OpenPairPosition - учётная запись открытой парной позиции.
// Владелец - исполнительный координатор.
type OpenPairPosition struct {
	PairID   string    `json:"pair_id"`
	LegA     TradeLeg  `json:"leg_a"`
	LegB     TradeLeg  `json:"leg_b"`
	OpenedAt time.Time `json:"opened_at"`
}
