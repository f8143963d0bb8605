package websocket

import (
	"time"

	"fundingarb/internal/models"
)

// MessageType определяет тип WebSocket сообщения
type MessageType string

// Типы WebSocket сообщений
const (
	// MessageTypeCycleUpdate - итог завершённого решающего цикла
	MessageTypeCycleUpdate MessageType = "cycleUpdate"

	// MessageTypeNotification - новое уведомление
	// Отправляется при событиях: открытие пары, блокировка риском,
	// отказ ноги, экстренное закрытие
	MessageTypeNotification MessageType = "notification"

	// MessageTypeRiskUpdate - состояние риск-машины
	// Отправляется каждый цикл
	MessageTypeRiskUpdate MessageType = "riskUpdate"

	// MessageTypePositionsUpdate - открытые парные позиции
	MessageTypePositionsUpdate MessageType = "positionsUpdate"
)

// BaseMessage - базовая структура для всех WebSocket сообщений
type BaseMessage struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

// CycleUpdateMessage - сообщение об итоге цикла
//
// Содержит воронку цикла: сколько кандидатов построено, сколько
// намерений отобрано, сколько исполнено и заблокировано.
type CycleUpdateMessage struct {
	BaseMessage
	Data *models.CycleResult `json:"data"`
}

// NotificationMessage - сообщение о новом уведомлении
type NotificationMessage struct {
	BaseMessage
	Data *models.Notification `json:"data"`
}

// RiskUpdateMessage - сообщение о состоянии риск-машины
type RiskUpdateMessage struct {
	BaseMessage
	Data *models.RiskState `json:"data"`
}

// PositionsUpdateMessage - сообщение с открытыми позициями
type PositionsUpdateMessage struct {
	BaseMessage
	Positions []models.OpenPairPosition `json:"positions"`
}

// ============ Фабричные функции для создания сообщений ============

// NewCycleUpdateMessage создает сообщение итога цикла
func NewCycleUpdateMessage(cycle *models.CycleResult) *CycleUpdateMessage {
	return &CycleUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeCycleUpdate,
			Timestamp: time.Now(),
		},
		Data: cycle,
	}
}

// NewNotificationMessage создает сообщение уведомления
func NewNotificationMessage(notif *models.Notification) *NotificationMessage {
	return &NotificationMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeNotification,
			Timestamp: time.Now(),
		},
		Data: notif,
	}
}

// NewRiskUpdateMessage создает сообщение состояния риска
func NewRiskUpdateMessage(state models.RiskState) *RiskUpdateMessage {
	return &RiskUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeRiskUpdate,
			Timestamp: time.Now(),
		},
		Data: &state,
	}
}

// NewPositionsUpdateMessage создает сообщение с открытыми позициями
func NewPositionsUpdateMessage(positions []models.OpenPairPosition) *PositionsUpdateMessage {
	return &PositionsUpdateMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypePositionsUpdate,
			Timestamp: time.Now(),
		},
		Positions: positions,
	}
}
