package api

import (
	"net/http"

	"fundingarb/internal/api/handlers"
	"fundingarb/internal/api/middleware"
	"fundingarb/internal/websocket"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies содержит все зависимости для API handlers.
// Nil-поля отключают соответствующие маршруты (например, БД не подключена).
type Dependencies struct {
	State         handlers.BotStateProvider
	Positions     handlers.PositionsProvider
	Cycles        handlers.CycleStore
	Notifications handlers.NotificationStore
	Hub           *websocket.Hub
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Структура маршрутов:
//
// /api/v1/
//
//	├── GET /status - состояние риск-машины и последний цикл
//	├── GET /positions - открытые парные позиции
//	├── GET /cycles - журнал решающих циклов
//	├── GET /notifications - журнал событий
//	└── DELETE /notifications - очистка журнала событий
//
// /ws/
//
//	└── /stream - WebSocket для real-time обновлений
//
// /metrics - Prometheus метрики
// /health - health check
//
// Middleware применяется в следующем порядке:
// 1. Recovery (для всех маршрутов)
// 2. Logging (для всех маршрутов)
// 3. CORS (для всех маршрутов)
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	// Глобальные middleware (применяются ко всем маршрутам)
	router.Use(middleware.Recovery)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS)

	// Создание handlers с внедрением зависимостей
	var statusHandler *handlers.StatusHandler
	if deps != nil && deps.State != nil {
		statusHandler = handlers.NewStatusHandler(deps.State, deps.Positions)
	}

	var positionsHandler *handlers.PositionsHandler
	if deps != nil && deps.Positions != nil {
		positionsHandler = handlers.NewPositionsHandler(deps.Positions)
	}

	var cycleHandler *handlers.CycleHandler
	if deps != nil && deps.Cycles != nil {
		cycleHandler = handlers.NewCycleHandler(deps.Cycles)
	}

	var notificationHandler *handlers.NotificationHandler
	if deps != nil && deps.Notifications != nil {
		notificationHandler = handlers.NewNotificationHandler(deps.Notifications)
	}

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	if statusHandler != nil {
		api.HandleFunc("/status", statusHandler.GetStatus).Methods("GET")
	}

	if positionsHandler != nil {
		api.HandleFunc("/positions", positionsHandler.GetPositions).Methods("GET")
	}

	if cycleHandler != nil {
		api.HandleFunc("/cycles", cycleHandler.GetCycles).Methods("GET")
	}

	if notificationHandler != nil {
		api.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
		api.HandleFunc("/notifications", notificationHandler.ClearNotifications).Methods("DELETE")
	}

	// WebSocket route
	if deps != nil && deps.Hub != nil {
		hub := deps.Hub
		router.HandleFunc("/ws/stream", func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(hub, w, r)
		})
	}

	// Prometheus метрики
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
