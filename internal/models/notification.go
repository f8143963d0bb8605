package models

import "time"

// Notification представляет уведомление о событии торгового ядра
type Notification struct {
	ID        int                    `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	Type      string                 `json:"type" db:"type"`         // OPEN, RISK_BLOCK, LEG_FAIL, FLATTEN_FAIL, EMERGENCY, ERROR
	Severity  string                 `json:"severity" db:"severity"` // info, warn, error, critical
	PairID    *string                `json:"pair_id,omitempty" db:"pair_id"`
	Message   string                 `json:"message" db:"message"`
	Meta      map[string]interface{} `json:"meta,omitempty" db:"meta"` // дополнительные данные (JSON в БД)
}

// Типы уведомлений
const (
	NotificationTypeOpen        = "OPEN"         // открыта парная позиция
	NotificationTypeRiskBlock   = "RISK_BLOCK"   // интент заблокирован pre-trade проверкой
	NotificationTypeLegFail     = "LEG_FAIL"     // нога не открылась (компенсация прошла либо не требовалась)
	NotificationTypeFlattenFail = "FLATTEN_FAIL" // компенсация не прошла: остаточный направленный риск
	NotificationTypeEmergency   = "EMERGENCY"    // экстренное закрытие позиций
	NotificationTypeError       = "ERROR"        // ошибка источника данных/API
)

// Уровни важности
const (
	SeverityInfo     = "info"
	SeverityWarn     = "warn"
	SeverityError    = "error"
	SeverityCritical = "critical" // требует немедленного вмешательства оператора
)
