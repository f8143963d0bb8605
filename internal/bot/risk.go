package bot

import (
	"fundingarb/internal/config"
	"fundingarb/internal/models"
	"fundingarb/pkg/utils"
)

// RiskCheckResult - результат pre-trade проверки одного намерения.
type RiskCheckResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// RiskService - риск-машина на основе просадки.
//
// Функции:
// - Расчет производного состояния риска (drawdown, leverage, delta)
// - Статусы NORMAL / REDUCE / HALT_NEW по порогам просадки
// - Pre-trade проверка лимитов перед каждым входом
//
// Сервис не хранит состояние: портфель приходит снаружи каждый цикл.
type RiskService struct {
	cfg    config.RiskConfig
	logger *utils.Logger
}

// NewRiskService создает риск-сервис.
func NewRiskService(cfg config.RiskConfig, logger *utils.Logger) *RiskService {
	if logger == nil {
		logger = utils.L()
	}
	return &RiskService{
		cfg:    cfg,
		logger: logger.WithComponent("risk"),
	}
}

// ============================================================
// Оценка состояния
// ============================================================

// Evaluate рассчитывает состояние риска из снимка портфеля.
//
// Просадка считается от peak equity и не бывает отрицательной.
// Статус монотонен по порогам: HALT_NEW с max drawdown stop,
// REDUCE с reduce mode drawdown, иначе NORMAL.
func (rs *RiskService) Evaluate(portfolio models.PortfolioState) models.RiskState {
	ddPct := utils.DrawdownPct(portfolio.Equity, portfolio.PeakEquity)

	var grossLeverage, netDelta float64
	if portfolio.Equity > 0 {
		grossLeverage = portfolio.GrossNotionalUSD / portfolio.Equity
		netDelta = portfolio.NetDeltaUSD / portfolio.Equity
	}

	status := models.RiskStatusNormal
	switch {
	case ddPct >= rs.cfg.MaxDrawdownStopPct:
		status = models.RiskStatusHaltNew
	case ddPct >= rs.cfg.ReduceModeDrawdownPct:
		status = models.RiskStatusReduce
	}

	if status != models.RiskStatusNormal {
		rs.logger.Warn("risk status elevated",
			utils.RiskStatus(status),
			utils.Drawdown(ddPct))
	}

	return models.RiskState{
		Equity:        portfolio.Equity,
		DrawdownPct:   ddPct,
		GrossLeverage: grossLeverage,
		NetDelta:      netDelta,
		Status:        status,
	}
}

// ============================================================
// Pre-trade проверки
// ============================================================

// EnforcePretrade проверяет намерение против лимитов. Проверки идут
// в фиксированном порядке и обрываются на первой нарушенной:
// HALT_NEW, общий notional, лимит биржи (нога A раньше B), плечо.
func (rs *RiskService) EnforcePretrade(
	intent models.TradeIntent,
	riskState models.RiskState,
	portfolio models.PortfolioState,
	markA, markB float64,
) RiskCheckResult {
	if riskState.Status == models.RiskStatusHaltNew {
		return RiskCheckResult{Allowed: false, Reason: models.BlockReasonHaltNew}
	}

	projectedPair := intent.LegA.Qty*markA + intent.LegB.Qty*markB
	projectedTotal := portfolio.GrossNotionalUSD + projectedPair

	if projectedTotal > rs.cfg.MaxTotalNotionalUSD {
		return RiskCheckResult{Allowed: false, Reason: models.BlockReasonTotalNotional}
	}

	legs := []struct {
		leg  models.TradeLeg
		mark float64
	}{
		{intent.LegA, markA},
		{intent.LegB, markB},
	}
	for _, l := range legs {
		exchangeTotal := portfolio.ExchangeNotionals[l.leg.Exchange] + l.leg.Qty*l.mark
		if exchangeTotal > rs.cfg.MaxNotionalPerExchangeUSD {
			return RiskCheckResult{
				Allowed: false,
				Reason:  models.BlockReasonExchangePrefix + l.leg.Exchange,
			}
		}
	}

	cap := rs.cfg.MaxLeverage
	if riskState.Status == models.RiskStatusReduce {
		cap = rs.cfg.NormalLeverageCap
	}
	var projectedLeverage float64
	if portfolio.Equity > 0 {
		projectedLeverage = projectedTotal / portfolio.Equity
	}
	if projectedLeverage > cap {
		return RiskCheckResult{Allowed: false, Reason: models.BlockReasonLeverage}
	}

	return RiskCheckResult{Allowed: true}
}
