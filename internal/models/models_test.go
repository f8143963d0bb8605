package models

import "testing"

func TestPairIDSymmetric(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{
			name: "already ordered",
			a:    "binance:BTC/USDT:USDT",
			b:    "bybit:BTC/USDT:USDT",
			want: "binance:BTC/USDT:USDT|bybit:BTC/USDT:USDT",
		},
		{
			name: "reversed order",
			a:    "bybit:BTC/USDT:USDT",
			b:    "binance:BTC/USDT:USDT",
			want: "binance:BTC/USDT:USDT|bybit:BTC/USDT:USDT",
		},
		{
			name: "cross symbol",
			a:    "okx:WBTC/USDT:USDT",
			b:    "okx:BTC/USDT:USDT",
			want: "okx:BTC/USDT:USDT|okx:WBTC/USDT:USDT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PairID(tt.a, tt.b); got != tt.want {
				t.Errorf("PairID(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSnapshotPairID(t *testing.T) {
	a := FundingSnapshot{Exchange: "bybit", Symbol: "ETH/USDT:USDT"}
	b := FundingSnapshot{Exchange: "binance", Symbol: "ETH/USDT:USDT"}

	if got, want := SnapshotPairID(a, b), SnapshotPairID(b, a); got != want {
		t.Errorf("SnapshotPairID not symmetric: %q vs %q", got, want)
	}
	if got := SnapshotPairID(a, b); got != "binance:ETH/USDT:USDT|bybit:ETH/USDT:USDT" {
		t.Errorf("unexpected pair id %q", got)
	}
}

func TestNewFeatureKeyCanonical(t *testing.T) {
	k1 := NewFeatureKey("WBTC/USDT:USDT", "BTC/USDT:USDT")
	k2 := NewFeatureKey("BTC/USDT:USDT", "WBTC/USDT:USDT")

	if k1 != k2 {
		t.Errorf("feature keys differ: %+v vs %+v", k1, k2)
	}
	if k1.SymbolA != "BTC/USDT:USDT" {
		t.Errorf("expected sorted first symbol, got %s", k1.SymbolA)
	}
}

func TestTradeLegOpposite(t *testing.T) {
	leg := TradeLeg{
		Exchange:  "binance",
		Symbol:    "BTC/USDT:USDT",
		Side:      SideSell,
		Qty:       0.004,
		OrderType: OrderTypeMarket,
	}

	opp := leg.Opposite()

	if opp.Side != SideBuy {
		t.Errorf("expected buy side, got %s", opp.Side)
	}
	if !opp.ReduceOnly {
		t.Error("expected reduce-only closing leg")
	}
	if opp.Exchange != leg.Exchange || opp.Symbol != leg.Symbol || opp.Qty != leg.Qty {
		t.Errorf("closing leg must mirror instrument and qty: %+v", opp)
	}

	// Обратная сторона для лонга
	if got := opp.Opposite().Side; got != SideSell {
		t.Errorf("expected sell side, got %s", got)
	}
}

func TestNeutralPairFeatures(t *testing.T) {
	f := NeutralPairFeatures()

	if f.Beta != 1.0 {
		t.Errorf("expected neutral beta 1.0, got %f", f.Beta)
	}
	for name, v := range map[string]float64{
		"correlation":          f.Correlation,
		"beta_stability":       f.BetaStability,
		"atr_ratio_stability":  f.ATRRatioStability,
		"mean_reversion_score": f.MeanReversionScore,
	} {
		if v != 0.5 {
			t.Errorf("expected neutral %s 0.5, got %f", name, v)
		}
	}
}

func TestSnapshotIdentity(t *testing.T) {
	s := FundingSnapshot{Exchange: "gate", Symbol: "SOL/USDT:USDT"}
	if got := s.Identity(); got != "gate:SOL/USDT:USDT" {
		t.Errorf("unexpected identity %q", got)
	}
}
