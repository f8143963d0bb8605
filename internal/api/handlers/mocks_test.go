package handlers

import (
	"time"

	"fundingarb/internal/models"
)

// ============ Mock implementations для тестов handlers ============

// MockBotState реализует BotStateProvider
type MockBotState struct {
	risk  models.RiskState
	cycle *models.CycleResult
}

func (m *MockBotState) LatestRisk() models.RiskState     { return m.risk }
func (m *MockBotState) LatestCycle() *models.CycleResult { return m.cycle }

// MockPositions реализует PositionsProvider
type MockPositions struct {
	positions map[string]models.OpenPairPosition
}

func (m *MockPositions) OpenPositions() map[string]models.OpenPairPosition {
	out := make(map[string]models.OpenPairPosition, len(m.positions))
	for k, v := range m.positions {
		out[k] = v
	}
	return out
}

// MockNotificationStore реализует NotificationStore
type MockNotificationStore struct {
	notifications []*models.Notification
	err           error
	deleted       int64

	lastTypes []string
	lastLimit int
	lastAge   time.Duration
	clearErr  error
}

func (m *MockNotificationStore) GetRecent(limit int) ([]*models.Notification, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.notifications) {
		limit = len(m.notifications)
	}
	return m.notifications[:limit], nil
}

func (m *MockNotificationStore) GetByTypes(types []string, limit int) ([]*models.Notification, error) {
	m.lastTypes = types
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	var out []*models.Notification
	for _, n := range m.notifications {
		if allowed[n.Type] {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNotificationStore) DeleteOlderThan(age time.Duration) (int64, error) {
	m.lastAge = age
	if m.clearErr != nil {
		return 0, m.clearErr
	}
	return m.deleted, nil
}

// MockCycleStore реализует CycleStore
type MockCycleStore struct {
	cycles []*models.CycleResult
	count  int
	err    error
}

func (m *MockCycleStore) GetRecent(limit int) ([]*models.CycleResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > len(m.cycles) {
		limit = len(m.cycles)
	}
	return m.cycles[:limit], nil
}

func (m *MockCycleStore) CountSince(since time.Time) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return m.count, nil
}
