package handlers

import (
	"net/http"
	"strings"
	"time"

	"fundingarb/internal/models"
)

// NotificationStore - хранилище журнала уведомлений.
// Реализуется repository.NotificationRepository.
type NotificationStore interface {
	GetRecent(limit int) ([]*models.Notification, error)
	GetByTypes(types []string, limit int) ([]*models.Notification, error)
	DeleteOlderThan(age time.Duration) (int64, error)
}

// NotificationHandler отвечает за журнал событий торгового ядра
//
// Endpoints:
// - GET /api/v1/notifications - получение списка уведомлений
// - GET /api/v1/notifications?types=risk_block,flatten_fail - с фильтрацией по типам
// - GET /api/v1/notifications?limit=50 - с ограничением количества
// - DELETE /api/v1/notifications - очистка журнала
// - DELETE /api/v1/notifications?older_than=24h - очистка только старых записей
//
// Типы уведомлений:
// - OPEN: открыта парная позиция
// - RISK_BLOCK: интент заблокирован pre-trade проверкой
// - LEG_FAIL: нога не открылась
// - FLATTEN_FAIL: компенсация не прошла, остаточный направленный риск
// - EMERGENCY: экстренное закрытие позиций
// - ERROR: ошибка источника данных/API
type NotificationHandler struct {
	store NotificationStore
}

// NewNotificationHandler создает новый NotificationHandler с внедрением зависимости
func NewNotificationHandler(store NotificationStore) *NotificationHandler {
	return &NotificationHandler{store: store}
}

// GetNotificationsResponse представляет ответ списка уведомлений
type GetNotificationsResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int                    `json:"total"`
}

// GetNotifications возвращает список уведомлений с фильтрацией
//
// GET /api/v1/notifications
//
// Query параметры:
// - types (string): фильтр по типам через запятую (open,risk_block,leg_fail,flatten_fail,emergency,error)
// - limit (int): количество записей (по умолчанию 100, максимум 500)
//
// HTTP коды:
// - 200 OK: успешно, возвращает массив уведомлений
// - 500 Internal Server Error: ошибка сервера
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 100, 500)

	var types []string
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				types = append(types, strings.ToUpper(trimmed))
			}
		}
	}

	var (
		notifications []*models.Notification
		err           error
	)
	if len(types) > 0 {
		notifications, err = h.store.GetByTypes(types, limit)
	} else {
		notifications, err = h.store.GetRecent(limit)
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get notifications: "+err.Error())
		return
	}

	if notifications == nil {
		notifications = []*models.Notification{}
	}

	respondWithJSON(w, http.StatusOK, GetNotificationsResponse{
		Notifications: notifications,
		Total:         len(notifications),
	})
}

// ClearNotificationsResponse представляет ответ очистки уведомлений
type ClearNotificationsResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// ClearNotifications очищает журнал уведомлений
//
// DELETE /api/v1/notifications
//
// Query параметры:
//   - older_than (duration): удалить только записи старше указанного возраста,
//     например "24h" или "30m". Без параметра удаляется весь журнал.
//
// HTTP коды:
// - 200 OK: журнал успешно очищен
// - 400 Bad Request: некорректный older_than
// - 500 Internal Server Error: ошибка при очистке
func (h *NotificationHandler) ClearNotifications(w http.ResponseWriter, r *http.Request) {
	var age time.Duration
	if raw := r.URL.Query().Get("older_than"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid older_than duration: "+raw)
			return
		}
		age = parsed
	}

	deleted, err := h.store.DeleteOlderThan(age)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to clear notifications: "+err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, ClearNotificationsResponse{
		Message: "Notifications cleared successfully",
		Deleted: deleted,
	})
}
