package exchange

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// PaperClient - внутрипамятный исполнительный клиент.
//
// Исполняет любой ордер по заданной цене, без стакана и задержек.
// Для тестирования сценариев отказов поддерживает инъекцию ошибок
// по ключу "exchange:symbol" с ограничением числа срабатываний.
type PaperClient struct {
	mu sync.Mutex

	prices   map[string]float64 // "exchange:symbol" -> цена исполнения
	failures map[string]*failureRule
	orders   []OrderRequest // журнал принятых ордеров, в порядке поступления
	seq      int
}

type failureRule struct {
	err       error
	remaining int // -1 = всегда
}

// NewPaperClient создаёт клиент с дефолтной ценой исполнения 1.0
func NewPaperClient() *PaperClient {
	return &PaperClient{
		prices:   make(map[string]float64),
		failures: make(map[string]*failureRule),
	}
}

// SetPrice задаёт цену исполнения инструмента
func (c *PaperClient) SetPrice(exchange, symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prices[exchange+":"+symbol] = price
}

// FailNext заставляет следующие n ордеров по инструменту завершаться
// ошибкой err; n < 0 означает отказывать всегда
func (c *PaperClient) FailNext(exchange, symbol string, n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[exchange+":"+symbol] = &failureRule{err: err, remaining: n}
}

// Orders возвращает копию журнала принятых ордеров
func (c *PaperClient) Orders() []OrderRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]OrderRequest, len(c.orders))
	copy(out, c.orders)
	return out
}

// PlaceOrder исполняет ордер немедленно либо возвращает
// инъецированную ошибку
func (c *PaperClient) PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := req.Exchange + ":" + req.Symbol
	if rule, ok := c.failures[key]; ok && rule.remaining != 0 {
		if rule.remaining > 0 {
			rule.remaining--
		}
		return nil, &ExchangeError{
			Exchange: req.Exchange,
			Code:     "REJECTED",
			Message:  fmt.Sprintf("order rejected: %v", rule.err),
			Original: rule.err,
		}
	}

	price, ok := c.prices[key]
	if !ok {
		price = 1.0
	}

	c.orders = append(c.orders, req)
	c.seq++

	return &Order{
		ID:           fmt.Sprintf("paper-%d", c.seq),
		Exchange:     req.Exchange,
		Symbol:       req.Symbol,
		Side:         req.Side,
		Qty:          req.Qty,
		AvgFillPrice: price,
		Status:       OrderStatusFilled,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
