package models

// Стороны ордера
const (
	SideBuy  = "buy"  // покупка (лонг-нога либо закрытие шорта)
	SideSell = "sell" // продажа (шорт-нога либо закрытие лонга)
)

// Типы ордера
const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// TradeLeg - одна нога парной сделки.
type TradeLeg struct {
	Exchange   string  `json:"exchange"`
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	Qty        float64 `json:"qty"`
	OrderType  string  `json:"order_type"`
	ReduceOnly bool    `json:"reduce_only"`
}

// Opposite возвращает reduce-only ногу, закрывающую данную:
// та же биржа/символ/количество, обратная сторона.
func (l TradeLeg) Opposite() TradeLeg {
	side := SideSell
	if l.Side == SideSell {
		side = SideBuy
	}
	return TradeLeg{
		Exchange:   l.Exchange,
		Symbol:     l.Symbol,
		Side:       side,
		Qty:        l.Qty,
		OrderType:  l.OrderType,
		ReduceOnly: true,
	}
}

// TradeIntent - атомарное намерение открыть обе ноги пары.
// Либо существуют обе ноги, либо ни одной.
type TradeIntent struct {
	PairID      string   `json:"pair_id"`
	LegA        TradeLeg `json:"leg_a"`
	LegB        TradeLeg `json:"leg_b"`
	Leverage    float64  `json:"leverage"`
	ReasonCodes []string `json:"reason_codes"`
}
