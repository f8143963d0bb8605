// Package exchange предоставляет контракт исполнительного клиента бирж.
package exchange

import (
	"context"
	"time"
)

// OrderRequest - запрос на размещение одного ордера
type OrderRequest struct {
	Exchange      string  `json:"exchange"`
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`       // "buy" или "sell"
	Qty           float64 `json:"qty"`        // количество в монетах актива
	OrderType     string  `json:"order_type"` // "market" или "limit"
	ReduceOnly    bool    `json:"reduce_only"`
	ClientOrderID string  `json:"client_order_id"` // уникален per attempt
}

// Order - подтверждение размещения
type Order struct {
	ID           string    `json:"id"`
	Exchange     string    `json:"exchange"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	Qty          float64   `json:"qty"`
	AvgFillPrice float64   `json:"avg_fill_price"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

// Client - исполнительный клиент. Единственная операция, которая нужна
// парному координатору: разместить ордер и узнать результат.
type Client interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// ExchangeError представляет ошибку от биржи
type ExchangeError struct {
	Exchange string
	Code     string
	Message  string
	Original error
}

func (e *ExchangeError) Error() string {
	return e.Exchange + ": " + e.Message
}

// Unwrap возвращает оригинальную ошибку для поддержки errors.Is() и errors.As()
func (e *ExchangeError) Unwrap() error {
	return e.Original
}

// Order status constants
const (
	OrderStatusFilled   = "filled"
	OrderStatusRejected = "rejected"
)
