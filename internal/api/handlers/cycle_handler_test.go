package handlers

import (
	stdjson "encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fundingarb/internal/models"
)

// ============ CycleHandler Tests ============

func TestCycleHandler_GetCycles(t *testing.T) {
	t.Run("returns recent cycles with 24h counter", func(t *testing.T) {
		store := &MockCycleStore{
			cycles: []*models.CycleResult{
				{Timestamp: time.Date(2026, 1, 15, 12, 5, 0, 0, time.UTC), Candidates: 3, Intents: 1, Executed: 1},
				{Timestamp: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC), Candidates: 2},
			},
			count: 288,
		}
		handler := NewCycleHandler(store)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cycles", nil)
		w := httptest.NewRecorder()

		handler.GetCycles(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, w.Code)
		}

		var response GetCyclesResponse
		if err := stdjson.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Total != 2 {
			t.Errorf("expected total 2, got %d", response.Total)
		}
		if response.Last24h != 288 {
			t.Errorf("expected last_24h 288, got %d", response.Last24h)
		}
		if response.Cycles[0].Executed != 1 {
			t.Errorf("expected first cycle executed 1, got %d", response.Cycles[0].Executed)
		}
	})

	t.Run("respects limit parameter", func(t *testing.T) {
		store := &MockCycleStore{cycles: []*models.CycleResult{
			{Candidates: 1}, {Candidates: 2}, {Candidates: 3},
		}}
		handler := NewCycleHandler(store)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cycles?limit=2", nil)
		w := httptest.NewRecorder()

		handler.GetCycles(w, req)

		var response GetCyclesResponse
		if err := stdjson.NewDecoder(w.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response.Total != 2 {
			t.Errorf("expected total 2, got %d", response.Total)
		}
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		store := &MockCycleStore{err: errors.New("db down")}
		handler := NewCycleHandler(store)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cycles", nil)
		w := httptest.NewRecorder()

		handler.GetCycles(w, req)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
	})
}
