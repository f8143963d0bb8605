package utils

import (
	"math"
	"testing"
)

// ============================================================
// Тесты Clamp
// ============================================================

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		{"inside range", 0.5, 0, 1, 0.5},
		{"below min", -0.5, 0, 1, 0},
		{"above max", 1.5, 0, 1, 1},
		{"at min", 0, 0, 1, 0},
		{"at max", 1, 0, 1, 1},

		// Диапазон беты при расчёте нотионала второй ноги
		{"beta below floor", 0.05, 0.1, 10, 0.1},
		{"beta above cap", 25, 0.1, 10, 10},
		{"beta typical", 1.2, 0.1, 10, 1.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.value, tt.min, tt.max)
			if !floatEquals(result, tt.expected) {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v",
					tt.value, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты RoundTo
// ============================================================

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		step     float64
		expected float64
	}{
		{"exact match", 0.55, 1e-6, 0.55},
		{"round down", 0.5500004, 1e-6, 0.55},
		{"round up", 0.1234567, 1e-6, 0.123457},
		{"zero step", 0.123, 0, 0.123},
		{"negative step", 0.123, -0.001, 0.123},
		{"coarse step", 12345.6789, 0.01, 12345.68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundTo(tt.value, tt.step)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RoundTo(%v, %v) = %v, want %v",
					tt.value, tt.step, result, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты DrawdownPct
// ============================================================

func TestDrawdownPct(t *testing.T) {
	tests := []struct {
		name     string
		equity   float64
		peak     float64
		expected float64
	}{
		{"no drawdown", 10000, 10000, 0},
		{"eleven percent", 8900, 10000, 11},
		{"sixteen percent", 8400, 10000, 16},
		{"equity above peak", 11000, 10000, 0},
		{"zero peak", 5000, 0, 0},
		{"negative peak", 5000, -100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := DrawdownPct(tt.equity, tt.peak)
			if !floatEquals(result, tt.expected) {
				t.Errorf("DrawdownPct(%v, %v) = %v, want %v",
					tt.equity, tt.peak, result, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты RateToBps
// ============================================================

func TestRateToBps(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{"quarter percent", 0.0025, 25},
		{"one bps", 0.0001, 1},
		{"zero", 0, 0},
		{"negative", -0.0003, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RateToBps(tt.rate)
			if !floatEquals(result, tt.expected) {
				t.Errorf("RateToBps(%v) = %v, want %v", tt.rate, result, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты Abs / Min / Max
// ============================================================

func TestAbsMinMax(t *testing.T) {
	if Abs(-1.5) != 1.5 {
		t.Errorf("Abs(-1.5) = %v, want 1.5", Abs(-1.5))
	}
	if Abs(1.5) != 1.5 {
		t.Errorf("Abs(1.5) = %v, want 1.5", Abs(1.5))
	}
	if Min(1, 2) != 1 {
		t.Errorf("Min(1, 2) = %v, want 1", Min(1, 2))
	}
	if Max(1, 2) != 2 {
		t.Errorf("Max(1, 2) = %v, want 2", Max(1, 2))
	}
}

// floatEquals сравнивает float64 с допуском
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
