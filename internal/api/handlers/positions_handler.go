package handlers

import (
	"net/http"
	"sort"

	"fundingarb/internal/models"
)

// PositionsProvider отдает снимок открытых парных позиций.
// Реализуется исполнительным координатором.
type PositionsProvider interface {
	OpenPositions() map[string]models.OpenPairPosition
}

// PositionsHandler отвечает за просмотр открытых позиций
//
// Endpoints:
// - GET /api/v1/positions - список открытых парных позиций
type PositionsHandler struct {
	positions PositionsProvider
}

// NewPositionsHandler создает новый PositionsHandler с внедрением зависимости
func NewPositionsHandler(positions PositionsProvider) *PositionsHandler {
	return &PositionsHandler{positions: positions}
}

// GetPositionsResponse представляет ответ списка позиций
type GetPositionsResponse struct {
	Positions []models.OpenPairPosition `json:"positions"`
	Total     int                       `json:"total"`
}

// GetPositions возвращает открытые парные позиции
//
// GET /api/v1/positions
//
// Позиции отсортированы по идентификатору пары для стабильного вывода.
//
// HTTP коды:
// - 200 OK: успешно
func (h *PositionsHandler) GetPositions(w http.ResponseWriter, r *http.Request) {
	open := h.positions.OpenPositions()

	positions := make([]models.OpenPairPosition, 0, len(open))
	for _, pos := range open {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].PairID < positions[j].PairID
	})

	respondWithJSON(w, http.StatusOK, GetPositionsResponse{
		Positions: positions,
		Total:     len(positions),
	})
}
