package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fundingarb/internal/config"
	"fundingarb/internal/features"
	"fundingarb/internal/marketdata"
	"fundingarb/internal/models"
	"fundingarb/internal/rates"
	"fundingarb/pkg/utils"
)

// Orchestrator связывает конвейер решающего цикла:
// вселенная → снапшоты → кандидаты → риск → отбор → исполнение.
//
// Сам цикл не имеет состояния между запусками, кроме счётчиков
// персистентности внутри SignalEngine и учёта позиций в Coordinator.
type Orchestrator struct {
	cfg       *config.Config
	gateway   marketdata.Gateway
	signals   *SignalEngine
	risk      *RiskService
	execution *Coordinator
	estimator *features.Estimator

	notificationChan chan<- *models.Notification
	logger           *utils.Logger
}

// NewOrchestrator создает оркестратор цикла.
func NewOrchestrator(
	cfg *config.Config,
	gateway marketdata.Gateway,
	signals *SignalEngine,
	risk *RiskService,
	execution *Coordinator,
	notifChan chan<- *models.Notification,
	logger *utils.Logger,
) *Orchestrator {
	if logger == nil {
		logger = utils.L()
	}
	return &Orchestrator{
		cfg:              cfg,
		gateway:          gateway,
		signals:          signals,
		risk:             risk,
		execution:        execution,
		estimator:        features.NewEstimator(),
		notificationChan: notifChan,
		logger:           logger.WithComponent("orchestrator"),
	}
}

// ============================================================
// Решающий цикл
// ============================================================

// RunCycle выполняет один полный цикл.
//
// Отказ фида ставок (после исчерпания retry) фатален для цикла:
// возвращается ошибка, ни одного ордера не размещается. Частичные
// отказы точечных данных деградируются внутри gateway.
func (o *Orchestrator) RunCycle(
	ctx context.Context,
	portfolio models.PortfolioState,
	marketFeatures map[models.FeatureKey]models.PairFeatures,
) (*models.CycleResult, error) {
	started := time.Now()

	symbols, err := o.cycleSymbols(ctx)
	if err != nil {
		return nil, o.failCycle(err)
	}

	snapshots, err := o.gateway.GetFundingSnapshots(ctx, o.cfg.Universe.Exchanges, symbols)
	if err != nil {
		return nil, o.failCycle(err)
	}
	RecordFeedFetch("ok")

	snapshotIndex := make(map[string]models.FundingSnapshot, len(snapshots))
	for _, s := range snapshots {
		snapshotIndex[s.Identity()] = s
	}

	if len(marketFeatures) == 0 {
		marketFeatures = o.estimateFeatures(snapshots)
	}

	candidates := o.signals.BuildPairCandidates(snapshots, marketFeatures)
	riskState := o.risk.Evaluate(portfolio)
	RecordRiskState(riskState.Status, riskState.DrawdownPct)

	intents := o.signals.SelectEntries(candidates, riskState.Status, snapshotIndex,
		SizingContext{CapitalUSD: portfolio.Equity})

	executed := 0
	blocked := 0
	for _, intent := range intents {
		markA := snapshotIndex[intent.LegA.Exchange+":"+intent.LegA.Symbol].MarkPrice
		markB := snapshotIndex[intent.LegB.Exchange+":"+intent.LegB.Symbol].MarkPrice

		check := o.risk.EnforcePretrade(intent, riskState, portfolio, markA, markB)
		if !check.Allowed {
			blocked++
			IntentsBlocked.WithLabelValues(blockReasonLabel(check.Reason)).Inc()
			o.logger.Warn("intent blocked by pre-trade check",
				utils.PairID(intent.PairID),
				utils.Reason(check.Reason))
			o.notifyBlock(intent.PairID, check.Reason)
			continue
		}

		result := o.execution.ExecutePair(ctx, intent)
		RecordExecution(executionResultLabel(result))
		if result.Success {
			executed++
		}
		if result.RecoveryAction == models.RecoveryLegAFlattenFailed {
			FlattenFailures.Inc()
		}
	}
	OpenPairs.Set(float64(len(o.execution.OpenPositions())))

	rebalanced := false
	if o.shouldRebalance(portfolio) {
		o.execution.RebalanceOpenPositions(ctx)
		rebalanced = true
	}

	RecordCycle("ok", time.Since(started).Seconds(), len(candidates), len(intents))
	o.logger.Info("cycle complete",
		utils.Int("snapshots", len(snapshots)),
		utils.Int("candidates", len(candidates)),
		utils.Int("intents", len(intents)),
		utils.Int("executed", executed),
		utils.Int("blocked", blocked),
		utils.RiskStatus(riskState.Status))

	return &models.CycleResult{
		Timestamp:  time.Now().UTC(),
		Candidates: len(candidates),
		Intents:    len(intents),
		Executed:   executed,
		Blocked:    blocked,
		Rebalanced: rebalanced,
	}, nil
}

// cycleSymbols возвращает торгуемые символы цикла: статический список
// либо динамический отбор по дисперсии ставок.
func (o *Orchestrator) cycleSymbols(ctx context.Context) ([]string, error) {
	if o.cfg.Universe.Mode == "static" {
		return o.cfg.Universe.StaticSymbols, nil
	}
	return o.gateway.TopSymbols(ctx, o.cfg.Universe.Size, o.cfg.Universe.FRDiffMin)
}

// estimateFeatures строит эвристические признаки для всех пар снапшотов,
// когда рассчитанных признаков не передали.
func (o *Orchestrator) estimateFeatures(
	snapshots []models.FundingSnapshot,
) map[models.FeatureKey]models.PairFeatures {
	out := make(map[models.FeatureKey]models.PairFeatures)
	for i := 0; i < len(snapshots); i++ {
		for j := i + 1; j < len(snapshots); j++ {
			key := models.NewFeatureKey(snapshots[i].Symbol, snapshots[j].Symbol)
			if _, ok := out[key]; ok {
				continue
			}
			out[key] = o.estimator.Estimate(snapshots[i].Symbol, snapshots[j].Symbol)
		}
	}
	return out
}

// shouldRebalance проверяет дельта-порог ребаланса.
func (o *Orchestrator) shouldRebalance(portfolio models.PortfolioState) bool {
	if portfolio.Equity <= 0 {
		return false
	}
	deltaPct := utils.Abs(portfolio.NetDeltaUSD) / portfolio.Equity * 100
	return deltaPct >= o.cfg.Risk.DeltaThresholdPct
}

// failCycle записывает метрику и уведомление об отказе цикла.
func (o *Orchestrator) failCycle(err error) error {
	label := "error"
	var feedErr *rates.FeedError
	if errors.As(err, &feedErr) {
		label = "feed_error"
		RecordFeedFetch("error")
	}
	CyclesTotal.WithLabelValues(label).Inc()

	o.logger.Error("cycle aborted", utils.Err(err))
	if o.notificationChan != nil {
		notif := &models.Notification{
			Timestamp: time.Now().UTC(),
			Type:      models.NotificationTypeError,
			Severity:  models.SeverityError,
			Message:   fmt.Sprintf("Cycle aborted: %v", err),
		}
		select {
		case o.notificationChan <- notif:
		default:
		}
	}
	return err
}

// notifyBlock отправляет уведомление о заблокированном намерении.
func (o *Orchestrator) notifyBlock(pairID, reason string) {
	if o.notificationChan == nil {
		return
	}
	notif := &models.Notification{
		Timestamp: time.Now().UTC(),
		Type:      models.NotificationTypeRiskBlock,
		Severity:  models.SeverityWarn,
		PairID:    &pairID,
		Message:   fmt.Sprintf("Intent %s blocked: %s", pairID, reason),
		Meta:      map[string]interface{}{"reason": reason},
	}
	select {
	case o.notificationChan <- notif:
	default:
	}
}

// blockReasonLabel нормализует причину блокировки для метрики:
// имя биржи в EXCHANGE_LIMIT не раздувает кардинальность.
func blockReasonLabel(reason string) string {
	if strings.HasPrefix(reason, models.BlockReasonExchangePrefix) {
		return "EXCHANGE_LIMIT"
	}
	return reason
}

// executionResultLabel переводит результат исполнения в label метрики.
func executionResultLabel(result models.ExecutionResult) string {
	if result.Success {
		return "success"
	}
	switch result.Error {
	case models.ErrCodeDuplicateIntent:
		return "duplicate"
	case models.ErrCodeLegAFailed:
		return "leg_a_failed"
	case models.ErrCodeLegBFailed:
		return "leg_b_failed"
	default:
		return "failed"
	}
}
