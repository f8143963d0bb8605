package utils

import (
	"math"
)

// math.go - математические утилиты для funding-арбитража
//
// Все функции являются чистыми (pure functions) без побочных эффектов.

// Clamp ограничивает значение диапазоном [min, max].
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// RoundTo округляет значение к ближайшему кратному step.
//
// Используется для стабилизации скоринговых величин (step = 1e-6),
// чтобы результат не зависел от порядка накопления float-ошибок.
//
// Параметры:
//   - value: исходное значение
//   - step: шаг округления
//
// Возвращает:
//   - Округлённое значение; если step <= 0, исходное значение
//
// Примеры:
//   - RoundTo(0.5500004, 1e-6) = 0.55
//   - RoundTo(0.1234567, 1e-6) = 0.123457
func RoundTo(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	return math.Round(value/step) * step
}

// DrawdownPct расчитывает текущую просадку в процентах от пикового equity.
//
// Формула:
//
//	dd (%) = (peak - equity) / peak × 100
//
// Параметры:
//   - equity: текущий капитал
//   - peak: пиковый капитал
//
// Возвращает:
//   - Просадку в процентах (отрицательная просадка обрезается до 0)
//   - 0 если peak <= 0
func DrawdownPct(equity, peak float64) float64 {
	if peak <= 0 {
		return 0
	}
	dd := (peak - equity) / peak * 100
	if dd < 0 {
		return 0
	}
	return dd
}

// RateToBps переводит долю (например, разницу funding rate) в базисные пункты.
//
// Примеры:
//   - RateToBps(0.0025) = 25
//   - RateToBps(0.0001) = 1
func RateToBps(rate float64) float64 {
	return rate * 10_000
}

// Abs возвращает абсолютное значение числа.
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает минимум из двух чисел.
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// Max возвращает максимум из двух чисел.
func Max(a, b float64) float64 {
	return math.Max(a, b)
}
