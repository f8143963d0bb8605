package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики решающего цикла
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации воронки цикла
//   (snapshots → candidates → intents → executed)
// - Alertmanager: алерты на FLATTEN_FAIL и статус HALT_NEW

// ============ Метрики цикла ============

// CyclesTotal - количество завершённых решающих циклов
var CyclesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "core",
		Name:      "cycles_total",
		Help:      "Total number of decision cycles",
	},
	[]string{"result"}, // ok, feed_error
)

// CycleDuration - длительность одного цикла
var CycleDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "fundingarb",
		Subsystem: "core",
		Name:      "cycle_duration_seconds",
		Help:      "Decision cycle duration in seconds",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
)

// CandidatesPerCycle - количество кандидатов за цикл
var CandidatesPerCycle = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "fundingarb",
		Subsystem: "core",
		Name:      "candidates_per_cycle",
		Help:      "Number of pair candidates produced per cycle",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
	},
)

// IntentsPerCycle - количество отобранных намерений за цикл
var IntentsPerCycle = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: "fundingarb",
		Subsystem: "core",
		Name:      "intents_per_cycle",
		Help:      "Number of trade intents selected per cycle",
		Buckets:   []float64{0, 1, 2, 3, 5, 10},
	},
)

// ============ Метрики исполнения ============

// PairsExecuted - исполненные пары по результату
var PairsExecuted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "execution",
		Name:      "pairs_total",
		Help:      "Total pair executions by result",
	},
	[]string{"result"}, // success, leg_a_failed, leg_b_failed, duplicate
)

// IntentsBlocked - заблокированные pre-trade проверкой намерения
var IntentsBlocked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "risk",
		Name:      "intents_blocked_total",
		Help:      "Trade intents blocked by pre-trade checks",
	},
	[]string{"reason"},
)

// LegRetries - неудачные попытки размещения ноги
var LegRetries = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "execution",
		Name:      "leg_retries_total",
		Help:      "Failed leg placement attempts",
	},
)

// FlattenFailures - неудачные компенсации: остаточный направленный риск
var FlattenFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "execution",
		Name:      "flatten_failures_total",
		Help:      "Failed leg A flatten attempts leaving directional exposure",
	},
)

// ============ Метрики состояния ============

// OpenPairs - текущее количество открытых парных позиций
var OpenPairs = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "fundingarb",
		Subsystem: "execution",
		Name:      "open_pairs",
		Help:      "Current number of open pair positions",
	},
)

// RiskStatusGauge - текущий статус риск-машины (0 NORMAL, 1 REDUCE, 2 HALT_NEW)
var RiskStatusGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "fundingarb",
		Subsystem: "risk",
		Name:      "status",
		Help:      "Risk machine status: 0 NORMAL, 1 REDUCE, 2 HALT_NEW",
	},
)

// DrawdownGauge - текущая просадка в процентах
var DrawdownGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "fundingarb",
		Subsystem: "risk",
		Name:      "drawdown_pct",
		Help:      "Current drawdown from peak equity in percent",
	},
)

// FeedFetches - запросы к агрегатору ставок
var FeedFetches = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "fundingarb",
		Subsystem: "rates",
		Name:      "feed_fetches_total",
		Help:      "Funding feed fetches by result",
	},
	[]string{"result"}, // ok, error
)

// ============ Хелперы записи ============

// RecordCycle записывает итог цикла.
func RecordCycle(result string, durationSeconds float64, candidates, intents int) {
	CyclesTotal.WithLabelValues(result).Inc()
	CycleDuration.Observe(durationSeconds)
	CandidatesPerCycle.Observe(float64(candidates))
	IntentsPerCycle.Observe(float64(intents))
}

// RecordExecution записывает результат исполнения пары.
func RecordExecution(result string) {
	PairsExecuted.WithLabelValues(result).Inc()
}

// RecordFeedFetch записывает обращение цикла к фиду ставок.
func RecordFeedFetch(result string) {
	FeedFetches.WithLabelValues(result).Inc()
}

// RecordRiskState обновляет gauge-метрики риска.
func RecordRiskState(status string, ddPct float64) {
	var v float64
	switch status {
	case "REDUCE":
		v = 1
	case "HALT_NEW":
		v = 2
	}
	RiskStatusGauge.Set(v)
	DrawdownGauge.Set(ddPct)
}
