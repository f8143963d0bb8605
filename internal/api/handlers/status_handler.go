package handlers

import (
	"net/http"
	"time"

	"fundingarb/internal/models"
)

// BotStateProvider отдает последние известные состояния ядра.
// Реализуется runtime-слоем, который обновляет снимок после каждого цикла.
type BotStateProvider interface {
	LatestRisk() models.RiskState
	LatestCycle() *models.CycleResult
}

// StatusHandler отвечает за общий статус бота
//
// Endpoints:
// - GET /api/v1/status - текущее состояние риск-машины и последний цикл
type StatusHandler struct {
	state     BotStateProvider
	positions PositionsProvider
	started   time.Time
}

// NewStatusHandler создает новый StatusHandler с внедрением зависимостей
func NewStatusHandler(state BotStateProvider, positions PositionsProvider) *StatusHandler {
	return &StatusHandler{
		state:     state,
		positions: positions,
		started:   time.Now(),
	}
}

// StatusResponse представляет ответ статуса бота
type StatusResponse struct {
	Risk          models.RiskState    `json:"risk"`
	LastCycle     *models.CycleResult `json:"last_cycle,omitempty"`
	OpenPairs     int                 `json:"open_pairs"`
	UptimeSeconds int64               `json:"uptime_seconds"`
}

// GetStatus возвращает текущее состояние бота
//
// GET /api/v1/status
//
// HTTP коды:
// - 200 OK: успешно
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	response := StatusResponse{
		Risk:          h.state.LatestRisk(),
		LastCycle:     h.state.LatestCycle(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	}
	if h.positions != nil {
		response.OpenPairs = len(h.positions.OpenPositions())
	}

	respondWithJSON(w, http.StatusOK, response)
}
