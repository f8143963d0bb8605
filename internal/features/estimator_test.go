package features

import (
	"math"
	"testing"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ============================================================
// Тесты NormalizeSymbol
// ============================================================

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BTC", "BTC"},
		{"btc", "BTC"},
		{"BTC/USDT:USDT", "BTC"},
		{"ETH/USDT", "ETH"},
		{"SOL-PERP", "SOL"},
		{"doge/usdt:usdt", "DOGE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeSymbol(tt.input); got != tt.expected {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты корреляции
// ============================================================

func TestEstimate_Correlation(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name     string
		symbolA  string
		symbolB  string
		expected float64
	}{
		{"same category", "BTC", "WBTC", 0.85},
		{"same category normalized", "ETH/USDT:USDT", "STETH", 0.85},
		{"related categories", "BTC", "XRP", 0.60},
		{"related reverse direction", "ARB", "ETH", 0.60},
		{"stable vs other", "USDT", "DOGE", 0.05},
		{"unrelated known categories", "DOGE", "AAVE", 0.35},
		{"unknown symbols", "FOO", "BAR", 0.35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Estimate(tt.symbolA, tt.symbolB)
			if !floatEquals(f.Correlation, tt.expected) {
				t.Errorf("correlation(%s, %s) = %v, want %v",
					tt.symbolA, tt.symbolB, f.Correlation, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты беты
// ============================================================

func TestEstimate_Beta(t *testing.T) {
	e := NewEstimator()

	// Одинаковый профиль волатильности: beta = correlation
	f := e.Estimate("BTC", "WBTC")
	if !floatEquals(f.Beta, 0.85) {
		t.Errorf("same-profile beta = %v, want 0.85", f.Beta)
	}

	// low -> high: (2.0/0.5) * 0.35 = 1.4
	f = e.Estimate("BTC", "DOGE")
	if !floatEquals(f.Beta, 1.4) {
		t.Errorf("low->high beta = %v, want 1.4", f.Beta)
	}

	// Бета клампится снизу: very_low/high со слабой корреляцией
	f = e.Estimate("PEPE", "USDT")
	if f.Beta < 0.1 {
		t.Errorf("beta below floor: %v", f.Beta)
	}

	// Все беты в диапазоне [0.1, 3.0]
	symbols := []string{"BTC", "ETH", "SOL", "DOGE", "USDT", "SUI", "FOO"}
	for _, a := range symbols {
		for _, b := range symbols {
			f := e.Estimate(a, b)
			if f.Beta < 0.1 || f.Beta > 3.0 {
				t.Errorf("beta(%s, %s) = %v outside [0.1, 3.0]", a, b, f.Beta)
			}
		}
	}
}

// ============================================================
// Тесты стабильности и возврата к среднему
// ============================================================

func TestEstimate_BetaStability(t *testing.T) {
	e := NewEstimator()

	if f := e.Estimate("BTC", "WBTC"); !floatEquals(f.BetaStability, 0.80) {
		t.Errorf("same category stability = %v, want 0.80", f.BetaStability)
	}
	if f := e.Estimate("BTC", "XRP"); !floatEquals(f.BetaStability, 0.60) {
		t.Errorf("related category stability = %v, want 0.60", f.BetaStability)
	}
	if f := e.Estimate("USDT", "DOGE"); !floatEquals(f.BetaStability, 0.20) {
		t.Errorf("stable-pair stability = %v, want 0.20", f.BetaStability)
	}
	// Фолбэк: max(0.3, 0.35*0.8) = 0.3
	if f := e.Estimate("DOGE", "AAVE"); !floatEquals(f.BetaStability, 0.30) {
		t.Errorf("fallback stability = %v, want 0.30", f.BetaStability)
	}
}

func TestEstimate_ATRRatioStability(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name     string
		symbolA  string
		symbolB  string
		expected float64
	}{
		{"same profile", "BTC", "ETH", 0.85},
		{"adjacent profiles", "BTC", "SOL", 0.60},
		{"two levels apart", "BTC", "DOGE", 0.40},
		{"extreme distance", "USDT", "DOGE", 0.20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Estimate(tt.symbolA, tt.symbolB)
			if !floatEquals(f.ATRRatioStability, tt.expected) {
				t.Errorf("atr stability(%s, %s) = %v, want %v",
					tt.symbolA, tt.symbolB, f.ATRRatioStability, tt.expected)
			}
		})
	}
}

func TestEstimate_MeanReversion(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name     string
		symbolA  string
		symbolB  string
		expected float64
	}{
		{"same low-vol category", "BTC", "WBTC", 0.75},
		{"same very-low category", "USDT", "USDC", 0.90},
		{"same medium category", "AAVE", "MKR", 0.65},
		{"same high category", "DOGE", "PEPE", 0.50},
		{"high correlation cross-category", "BTC", "XRP", 0.55},
		{"default", "DOGE", "AAVE", 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Estimate(tt.symbolA, tt.symbolB)
			if !floatEquals(f.MeanReversionScore, tt.expected) {
				t.Errorf("mean reversion(%s, %s) = %v, want %v",
					tt.symbolA, tt.symbolB, f.MeanReversionScore, tt.expected)
			}
		})
	}
}
