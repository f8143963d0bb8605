package handlers

import (
	"net/http"
	"time"

	"fundingarb/internal/models"
	"fundingarb/pkg/utils"
)

// CycleStore - хранилище журнала решающих циклов.
// Реализуется repository.CycleRepository.
type CycleStore interface {
	GetRecent(limit int) ([]*models.CycleResult, error)
	CountSince(since time.Time) (int, error)
}

// CycleHandler отвечает за журнал решающих циклов
//
// Endpoints:
// - GET /api/v1/cycles - последние циклы
// - GET /api/v1/cycles?limit=50 - с ограничением количества
type CycleHandler struct {
	cycles CycleStore
}

// NewCycleHandler создает новый CycleHandler с внедрением зависимости
func NewCycleHandler(cycles CycleStore) *CycleHandler {
	return &CycleHandler{cycles: cycles}
}

// GetCyclesResponse представляет ответ журнала циклов
type GetCyclesResponse struct {
	Cycles  []*models.CycleResult `json:"cycles"`
	Total   int                   `json:"total"`
	Last24h int                   `json:"last_24h"`
}

// GetCycles возвращает последние решающие циклы
//
// GET /api/v1/cycles
//
// Query параметры:
// - limit (int): количество записей (по умолчанию 50, максимум 500)
//
// HTTP коды:
// - 200 OK: успешно
// - 500 Internal Server Error: ошибка БД
func (h *CycleHandler) GetCycles(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50, 500)

	cycles, err := h.cycles.GetRecent(limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to get cycles: "+err.Error())
		return
	}

	last24h, err := h.cycles.CountSince(utils.GetLastNHours(24).Start)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to count cycles: "+err.Error())
		return
	}

	if cycles == nil {
		cycles = []*models.CycleResult{}
	}

	respondWithJSON(w, http.StatusOK, GetCyclesResponse{
		Cycles:  cycles,
		Total:   len(cycles),
		Last24h: last24h,
	})
}
