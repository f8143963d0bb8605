package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fundingarb/internal/api"
	"fundingarb/internal/bot"
	"fundingarb/internal/config"
	"fundingarb/internal/exchange"
	"fundingarb/internal/marketdata"
	"fundingarb/internal/models"
	"fundingarb/internal/rates"
	"fundingarb/internal/repository"
	"fundingarb/internal/universe"
	"fundingarb/internal/websocket"
	"fundingarb/pkg/utils"

	_ "github.com/lib/pq"
)

// runtimeState хранит последний снимок состояния ядра для API.
// Обновляется циклом, читается handlers.
type runtimeState struct {
	mu    sync.RWMutex
	risk  models.RiskState
	cycle *models.CycleResult
}

func (s *runtimeState) LatestRisk() models.RiskState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.risk
}

func (s *runtimeState) LatestCycle() *models.CycleResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cycle
}

func (s *runtimeState) update(risk models.RiskState, cycle *models.CycleResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.risk = risk
	s.cycle = cycle
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load config", utils.Err(err))
	}

	// Инициализация логгера
	utils.InitGlobalLogger(utils.LogConfig{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
	})
	logger := utils.GetGlobalLogger()

	// База данных опциональна: без нее работают все маршруты,
	// кроме журналов циклов и уведомлений
	var (
		db        *sql.DB
		cycleRepo *repository.CycleRepository
		notifRepo *repository.NotificationRepository
	)
	if cfg.Database.Enabled {
		db, err = initDatabase(cfg)
		if err != nil {
			utils.Fatal("failed to connect to database", utils.Err(err))
		}
		defer db.Close()

		cycleRepo = repository.NewCycleRepository(db)
		notifRepo = repository.NewNotificationRepository(db)
		utils.Info("connected to database", utils.String("dsn", cfg.Database.DSNWithoutPassword()))
	}

	// Источник данных: агрегатор ставок + отбор вселенной.
	// При наличии биржевых адаптеров OI и стакан берутся напрямую.
	ratesClient := rates.NewClient(cfg.Rates, logger)
	selector := universe.NewSelector(cfg.Universe, ratesClient, logger)
	var gateway marketdata.Gateway = marketdata.NewRatesGateway(ratesClient, selector, cfg.Universe, logger)
	if adapters := marketdata.DefaultAdapters(cfg.Universe.Exchanges, logger); len(adapters) > 0 {
		gateway = marketdata.NewHybridGateway(ratesClient, adapters, selector, cfg.Universe, logger)
	}

	// Торговое ядро
	notifChan := make(chan *models.Notification, 128)
	signalEngine := bot.NewSignalEngine(cfg, logger)
	riskService := bot.NewRiskService(cfg.Risk, logger)
	coordinator := bot.NewCoordinator(
		exchange.NewPaperClient(),
		cfg.Execution.MaxRetries,
		cfg.Execution.RetryBackoff,
		notifChan,
		logger,
	)
	orchestrator := bot.NewOrchestrator(cfg, gateway, signalEngine, riskService, coordinator, notifChan, logger)

	// WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()

	state := &runtimeState{}

	// Настройка зависимостей для API
	deps := &api.Dependencies{
		State:     state,
		Positions: coordinator,
		Hub:       hub,
	}
	if cycleRepo != nil {
		deps.Cycles = cycleRepo
	}
	if notifRepo != nil {
		deps.Notifications = notifRepo
	}

	router := api.SetupRoutes(deps)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Фан-аут уведомлений: в WebSocket и, при наличии БД, в журнал
	var fanout sync.WaitGroup
	fanout.Add(1)
	go func() {
		defer fanout.Done()
		for notif := range notifChan {
			hub.BroadcastNotification(notif)
			if notifRepo != nil {
				if err := notifRepo.Create(notif); err != nil {
					utils.Warn("failed to persist notification", utils.Err(err))
				}
			}
		}
	}()

	// Решающий цикл
	var cycles sync.WaitGroup
	cycles.Add(1)
	go func() {
		defer cycles.Done()
		runCycleLoop(ctx, cfg, orchestrator, riskService, coordinator, hub, cycleRepo, state)
	}()

	go func() {
		utils.Info("starting server", utils.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Fatal("server failed", utils.Err(err))
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down")

	// Дожидаемся завершения цикла, затем закрываем канал уведомлений
	cycles.Wait()
	close(notifChan)
	fanout.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", utils.Err(err))
	}

	hub.Stop()
	exchange.CloseGlobalClient()

	utils.Info("server exited")
}

// runCycleLoop гоняет решающий цикл с заданным интервалом до отмены контекста.
//
// Портфель в paper-режиме статичен: капитал берется из конфигурации,
// нотионалы бирж не отслеживаются. Подключение живого портфеля сводится
// к замене источника PortfolioState перед вызовом RunCycle.
func runCycleLoop(
	ctx context.Context,
	cfg *config.Config,
	orchestrator *bot.Orchestrator,
	riskService *bot.RiskService,
	coordinator *bot.Coordinator,
	hub *websocket.Hub,
	cycleRepo *repository.CycleRepository,
	state *runtimeState,
) {
	ticker := time.NewTicker(cfg.Execution.CycleInterval)
	defer ticker.Stop()

	portfolio := models.PortfolioState{
		Equity:            cfg.Execution.CapitalUSD,
		PeakEquity:        cfg.Execution.CapitalUSD,
		ExchangeNotionals: map[string]float64{},
	}

	for {
		result, err := orchestrator.RunCycle(ctx, portfolio, nil)
		if err == nil {
			riskState := riskService.Evaluate(portfolio)
			state.update(riskState, result)

			hub.BroadcastCycle(result)
			hub.BroadcastRiskState(riskState)

			open := coordinator.OpenPositions()
			positions := make([]models.OpenPairPosition, 0, len(open))
			for _, pos := range open {
				positions = append(positions, pos)
			}
			hub.BroadcastPositions(positions)

			if cycleRepo != nil {
				if err := cycleRepo.Create(result); err != nil {
					utils.Warn("failed to persist cycle", utils.Err(err))
				}
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Настройка пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
