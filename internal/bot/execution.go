package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fundingarb/internal/exchange"
	"fundingarb/internal/models"
	"fundingarb/pkg/utils"
)

// Coordinator исполняет парные намерения атомарно на уровне пары:
// либо открыты обе ноги, либо ни одной.
//
// Функции:
// - Идемпотентность по pair_id: повторный интент отклоняется
// - Retry каждой ноги с уникальным client_order_id на попытку
// - Компенсация: при провале ноги B нога A закрывается reduce-only
// - Учёт открытых позиций
// - Экстренное закрытие всех пар
type Coordinator struct {
	client       exchange.Client
	maxRetries   int
	retryBackoff time.Duration

	mu        sync.Mutex
	attempted map[string]bool
	positions map[string]models.OpenPairPosition

	notificationChan chan<- *models.Notification
	logger           *utils.Logger
}

// NewCoordinator создает координатор исполнения.
func NewCoordinator(
	client exchange.Client,
	maxRetries int,
	retryBackoff time.Duration,
	notifChan chan<- *models.Notification,
	logger *utils.Logger,
) *Coordinator {
	if logger == nil {
		logger = utils.L()
	}
	return &Coordinator{
		client:           client,
		maxRetries:       maxRetries,
		retryBackoff:     retryBackoff,
		attempted:        make(map[string]bool),
		positions:        make(map[string]models.OpenPairPosition),
		notificationChan: notifChan,
		logger:           logger.WithComponent("execution"),
	}
}

// OpenPositions возвращает копию карты открытых позиций.
func (c *Coordinator) OpenPositions() map[string]models.OpenPairPosition {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]models.OpenPairPosition, len(c.positions))
	for id, pos := range c.positions {
		out[id] = pos
	}
	return out
}

// ============================================================
// Исполнение пары
// ============================================================

// ExecutePair исполняет намерение: нога A, затем нога B.
//
// Провал ноги A - чистый no-op. Провал ноги B компенсируется
// reduce-only закрытием ноги A; если и компенсация провалилась,
// остаётся направленная позиция и отправляется критическое
// уведомление оператору.
func (c *Coordinator) ExecutePair(ctx context.Context, intent models.TradeIntent) models.ExecutionResult {
	c.mu.Lock()
	if c.attempted[intent.PairID] {
		c.mu.Unlock()
		return models.ExecutionResult{
			Success:    false,
			PairID:     intent.PairID,
			LegResults: []models.OrderResult{},
			Error:      models.ErrCodeDuplicateIntent,
		}
	}
	c.attempted[intent.PairID] = true
	c.mu.Unlock()

	legA := c.placeLeg(ctx, intent.LegA, intent.PairID+"-a")
	if !legA.Success {
		c.logger.Warn("leg A failed, pair abandoned",
			utils.PairID(intent.PairID),
			utils.Exchange(intent.LegA.Exchange),
			utils.Reason(legA.Error))
		c.notify(models.NotificationTypeLegFail, models.SeverityWarn, intent.PairID,
			fmt.Sprintf("Leg A failed on %s for %s: %s",
				intent.LegA.Exchange, intent.PairID, legA.Error), nil)
		return models.ExecutionResult{
			Success:    false,
			PairID:     intent.PairID,
			LegResults: []models.OrderResult{legA},
			Error:      models.ErrCodeLegAFailed,
		}
	}

	legB := c.placeLeg(ctx, intent.LegB, intent.PairID+"-b")
	if !legB.Success {
		// Закрываем ногу A, чтобы не остаться в направленной позиции
		closeA := c.placeLeg(ctx, intent.LegA.Opposite(), intent.PairID+"-flatten-a")
		recovery := models.RecoveryLegAFlattened
		if closeA.Success {
			c.notify(models.NotificationTypeLegFail, models.SeverityWarn, intent.PairID,
				fmt.Sprintf("Leg B failed on %s for %s, leg A flattened",
					intent.LegB.Exchange, intent.PairID), nil)
		} else {
			recovery = models.RecoveryLegAFlattenFailed
			c.logger.Error("flatten of leg A failed, directional exposure remains",
				utils.PairID(intent.PairID),
				utils.Exchange(intent.LegA.Exchange))
			c.notify(models.NotificationTypeFlattenFail, models.SeverityCritical, intent.PairID,
				fmt.Sprintf("Leg B failed and leg A flatten FAILED for %s: directional exposure on %s, manual intervention required",
					intent.PairID, intent.LegA.Exchange),
				map[string]interface{}{
					"exchange": intent.LegA.Exchange,
					"symbol":   intent.LegA.Symbol,
					"side":     intent.LegA.Side,
					"qty":      intent.LegA.Qty,
				})
		}
		return models.ExecutionResult{
			Success:        false,
			PairID:         intent.PairID,
			LegResults:     []models.OrderResult{legA, legB, closeA},
			Error:          models.ErrCodeLegBFailed,
			RecoveryAction: recovery,
		}
	}

	c.mu.Lock()
	c.positions[intent.PairID] = models.OpenPairPosition{
		PairID:   intent.PairID,
		LegA:     intent.LegA,
		LegB:     intent.LegB,
		OpenedAt: time.Now().UTC(),
	}
	c.mu.Unlock()

	c.logger.Info("pair opened",
		utils.PairID(intent.PairID),
		utils.Notional(intent.LegA.Qty*legA.AvgPrice+intent.LegB.Qty*legB.AvgPrice))
	c.notify(models.NotificationTypeOpen, models.SeverityInfo, intent.PairID,
		fmt.Sprintf("Opened pair %s (%s %s / %s %s)",
			intent.PairID, intent.LegA.Side, intent.LegA.Exchange,
			intent.LegB.Side, intent.LegB.Exchange), nil)

	return models.ExecutionResult{
		Success:    true,
		PairID:     intent.PairID,
		LegResults: []models.OrderResult{legA, legB},
	}
}

// placeLeg размещает одну ногу с повторами. Каждая попытка получает
// уникальный client_order_id вида "<base>-<attempt>", чтобы неудачная
// попытка не была принята биржей задним числом как дубликат.
func (c *Coordinator) placeLeg(ctx context.Context, leg models.TradeLeg, baseID string) models.OrderResult {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 && c.retryBackoff > 0 {
			select {
			case <-ctx.Done():
				return models.OrderResult{
					Success:  false,
					Exchange: leg.Exchange,
					Symbol:   leg.Symbol,
					Side:     leg.Side,
					Qty:      leg.Qty,
					Error:    ctx.Err().Error(),
				}
			case <-time.After(c.retryBackoff):
			}
		}

		clientOrderID := fmt.Sprintf("%s-%d", baseID, attempt)
		order, err := c.client.PlaceOrder(ctx, exchange.OrderRequest{
			Exchange:      leg.Exchange,
			Symbol:        leg.Symbol,
			Side:          leg.Side,
			Qty:           leg.Qty,
			OrderType:     leg.OrderType,
			ReduceOnly:    leg.ReduceOnly,
			ClientOrderID: clientOrderID,
		})
		if err != nil {
			lastErr = err
			LegRetries.Inc()
			c.logger.Warn("order attempt failed",
				utils.ClientOrderID(clientOrderID),
				utils.Exchange(leg.Exchange),
				utils.Err(err))
			continue
		}

		return models.OrderResult{
			Success:  true,
			OrderID:  order.ID,
			Exchange: leg.Exchange,
			Symbol:   leg.Symbol,
			Side:     leg.Side,
			Qty:      leg.Qty,
			AvgPrice: order.AvgFillPrice,
		}
	}

	errText := "UNKNOWN_ERROR"
	if lastErr != nil {
		errText = lastErr.Error()
	}
	return models.OrderResult{
		Success:  false,
		Exchange: leg.Exchange,
		Symbol:   leg.Symbol,
		Side:     leg.Side,
		Qty:      leg.Qty,
		Error:    errText,
	}
}

// ============================================================
// Ребаланс и экстренное закрытие
// ============================================================

// RebalanceOpenPositions - явный no-op: целевые размеры считает
// вызывающая сторона и подаёт их отдельными интентами.
func (c *Coordinator) RebalanceOpenPositions(ctx context.Context) []models.ExecutionResult {
	return nil
}

// EmergencyFlatten закрывает открытые пары reduce-only ордерами.
// Scope выбирает позиции: FlattenScopeAll закрывает весь учёт, любое
// другое значение трактуется как конкретный pair_id. Пара считается
// закрытой только если закрылись обе ноги; частично закрытые пары
// остаются в учёте и попадают в failures.
func (c *Coordinator) EmergencyFlatten(ctx context.Context, scope string) models.FlattenResult {
	c.mu.Lock()
	pairIDs := make([]string, 0, len(c.positions))
	for id := range c.positions {
		if scope == models.FlattenScopeAll || scope == id {
			pairIDs = append(pairIDs, id)
		}
	}
	c.mu.Unlock()

	result := models.FlattenResult{
		ClosedPairs: []string{},
		Failures:    map[string]string{},
	}

	for _, pairID := range pairIDs {
		c.mu.Lock()
		pos, ok := c.positions[pairID]
		c.mu.Unlock()
		if !ok {
			continue
		}

		legA := c.placeLeg(ctx, pos.LegA.Opposite(), pairID+"-emergency-a")
		legB := c.placeLeg(ctx, pos.LegB.Opposite(), pairID+"-emergency-b")

		if legA.Success && legB.Success {
			c.mu.Lock()
			delete(c.positions, pairID)
			c.mu.Unlock()
			result.ClosedPairs = append(result.ClosedPairs, pairID)
		} else {
			result.Failures[pairID] = "EMERGENCY_FLATTEN_FAILED"
			c.notify(models.NotificationTypeEmergency, models.SeverityCritical, pairID,
				fmt.Sprintf("Emergency flatten failed for %s", pairID), nil)
		}
	}

	result.Success = len(result.Failures) == 0
	if result.Success && len(result.ClosedPairs) > 0 {
		c.notify(models.NotificationTypeEmergency, models.SeverityWarn, "",
			fmt.Sprintf("Emergency flatten closed %d pairs", len(result.ClosedPairs)), nil)
	}
	return result
}

// notify отправляет уведомление без блокировки.
func (c *Coordinator) notify(notifType, severity, pairID, message string, meta map[string]interface{}) {
	if c.notificationChan == nil {
		return
	}

	notif := &models.Notification{
		Timestamp: time.Now().UTC(),
		Type:      notifType,
		Severity:  severity,
		Message:   message,
		Meta:      meta,
	}
	if pairID != "" {
		notif.PairID = &pairID
	}

	select {
	case c.notificationChan <- notif:
	default:
		// Канал заполнен
	}
}
