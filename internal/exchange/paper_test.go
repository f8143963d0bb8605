package exchange

import (
	"context"
	"errors"
	"testing"
)

func TestPaperClient_PlaceOrder(t *testing.T) {
	c := NewPaperClient()
	c.SetPrice("binance", "BTC/USDT:USDT", 65000)

	order, err := c.PlaceOrder(context.Background(), OrderRequest{
		Exchange:      "binance",
		Symbol:        "BTC/USDT:USDT",
		Side:          "sell",
		Qty:           0.1,
		OrderType:     "market",
		ClientOrderID: "test-1",
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	if order.AvgFillPrice != 65000 {
		t.Errorf("fill price = %v, want configured 65000", order.AvgFillPrice)
	}
	if order.Status != OrderStatusFilled {
		t.Errorf("status = %q, want filled", order.Status)
	}
	if order.ID == "" {
		t.Error("order id must be assigned")
	}

	orders := c.Orders()
	if len(orders) != 1 || orders[0].ClientOrderID != "test-1" {
		t.Errorf("order journal mismatch: %+v", orders)
	}
}

func TestPaperClient_DefaultPrice(t *testing.T) {
	c := NewPaperClient()
	order, err := c.PlaceOrder(context.Background(), OrderRequest{
		Exchange: "bybit", Symbol: "ETH/USDT:USDT", Side: "buy", Qty: 1,
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.AvgFillPrice != 1.0 {
		t.Errorf("default fill price = %v, want 1.0", order.AvgFillPrice)
	}
}

func TestPaperClient_FailureInjection(t *testing.T) {
	c := NewPaperClient()
	injected := errors.New("insufficient margin")
	c.FailNext("binance", "BTC/USDT:USDT", 2, injected)

	req := OrderRequest{Exchange: "binance", Symbol: "BTC/USDT:USDT", Side: "buy", Qty: 1}

	for i := 0; i < 2; i++ {
		_, err := c.PlaceOrder(context.Background(), req)
		var exErr *ExchangeError
		if !errors.As(err, &exErr) {
			t.Fatalf("attempt %d: expected *ExchangeError, got %v", i, err)
		}
		if !errors.Is(err, injected) {
			t.Errorf("attempt %d: injected error must be unwrappable", i)
		}
	}

	// Третья попытка проходит
	if _, err := c.PlaceOrder(context.Background(), req); err != nil {
		t.Fatalf("third attempt must succeed: %v", err)
	}

	// Отказавшие ордера не попадают в журнал
	if got := len(c.Orders()); got != 1 {
		t.Errorf("journal length = %d, want 1", got)
	}
}

func TestPaperClient_AlwaysFail(t *testing.T) {
	c := NewPaperClient()
	c.FailNext("binance", "BTC/USDT:USDT", -1, errors.New("down"))

	req := OrderRequest{Exchange: "binance", Symbol: "BTC/USDT:USDT", Side: "buy", Qty: 1}
	for i := 0; i < 5; i++ {
		if _, err := c.PlaceOrder(context.Background(), req); err == nil {
			t.Fatalf("attempt %d must fail", i)
		}
	}
}

func TestPaperClient_ContextCancelled(t *testing.T) {
	c := NewPaperClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.PlaceOrder(ctx, OrderRequest{Exchange: "binance", Symbol: "BTC/USDT:USDT"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
