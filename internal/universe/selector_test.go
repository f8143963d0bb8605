package universe

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"fundingarb/internal/config"
	"fundingarb/internal/rates"
	"fundingarb/pkg/utils"
)

// fakeSource отдаёт заранее заданные ставки
type fakeSource struct {
	rates []rates.FundingRate
	err   error
	calls int
}

func (f *fakeSource) Fetch(ctx context.Context, force bool) (*rates.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &rates.Response{
		FundingRates: f.rates,
		FetchedAt:    time.Now(),
	}, nil
}

func testLogger() *utils.Logger {
	return utils.InitLogger(utils.LogConfig{Level: "error", Output: "/dev/null"})
}

func rate(exchange, symbol string, r float64) rates.FundingRate {
	return rates.FundingRate{Exchange: exchange, Symbol: symbol, Rate: r}
}

func crossConfig(size int, exchanges ...string) config.UniverseConfig {
	return config.UniverseConfig{
		Size:      size,
		Exchanges: exchanges,
	}
}

// ============================================================
// Кросс-биржевой режим
// ============================================================

func TestSelect_CrossExchangeRanking(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		// BTC: spread 0.0030, 2 биржи
		rate("binance", "BTC", 0.0020),
		rate("bybit", "BTC", -0.0010),
		// ETH: spread 0.0010, 3 биржи
		rate("binance", "ETH", 0.0005),
		rate("bybit", "ETH", -0.0005),
		rate("hyperliquid", "ETH", 0.0),
		// SOL: spread 0.0050, 2 биржи
		rate("binance", "SOL", 0.0030),
		rate("bybit", "SOL", -0.0020),
	}}

	s := NewSelector(crossConfig(2, "binance", "bybit", "hyperliquid"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(snapshot.Symbols) != 2 {
		t.Fatalf("expected 2 symbols, got %d", len(snapshot.Symbols))
	}
	if snapshot.Symbols[0] != "SOL" || snapshot.Symbols[1] != "BTC" {
		t.Errorf("expected [SOL BTC] ordered by spread, got %v", snapshot.Symbols)
	}

	sol := snapshot.Scores["SOL"]
	if math.Abs(sol.MaxFRSpread-0.0050) > 1e-12 {
		t.Errorf("SOL spread = %v, want 0.0050", sol.MaxFRSpread)
	}
	if sol.ExchangeCount != 2 {
		t.Errorf("SOL exchange count = %d, want 2", sol.ExchangeCount)
	}
	if math.Abs(sol.AvgAbsRate-0.0025) > 1e-12 {
		t.Errorf("SOL avg abs rate = %v, want 0.0025", sol.AvgAbsRate)
	}
}

func TestSelect_TieBrokenByExchangeCount(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		// Одинаковый spread 0.0020, разное покрытие
		rate("binance", "BTC", 0.0010),
		rate("bybit", "BTC", -0.0010),
		rate("binance", "ETH", 0.0010),
		rate("bybit", "ETH", -0.0010),
		rate("hyperliquid", "ETH", 0.0),
	}}

	s := NewSelector(crossConfig(1, "binance", "bybit", "hyperliquid"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if snapshot.Symbols[0] != "ETH" {
		t.Errorf("tie must be broken by exchange count, got %v", snapshot.Symbols)
	}
}

func TestSelect_SingleExchangeSymbolExcludedInCrossMode(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "BTC", 0.0020),
		rate("bybit", "BTC", -0.0010),
		// XRP только на одной бирже
		rate("binance", "XRP", 0.0100),
	}}

	s := NewSelector(crossConfig(10, "binance", "bybit"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(snapshot.Symbols) != 1 || snapshot.Symbols[0] != "BTC" {
		t.Errorf("single-exchange symbol must be excluded, got %v", snapshot.Symbols)
	}
	if _, ok := snapshot.Scores["XRP"]; ok {
		t.Error("XRP must not be scored in cross mode")
	}
}

func TestSelect_TargetExchangeFilter(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "BTC", 0.0020),
		rate("bybit", "BTC", -0.0010),
		rate("okx", "BTC", 0.0090), // вне целевого набора
	}}

	s := NewSelector(crossConfig(10, "binance", "bybit"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	btc := snapshot.Scores["BTC"]
	if btc.ExchangeCount != 2 {
		t.Errorf("okx rate must be filtered out, exchange count = %d", btc.ExchangeCount)
	}
	if math.Abs(btc.MaxFRSpread-0.0030) > 1e-12 {
		t.Errorf("spread = %v, want 0.0030 without okx", btc.MaxFRSpread)
	}
}

func TestSelect_EmptyInput(t *testing.T) {
	source := &fakeSource{}

	s := NewSelector(crossConfig(10, "binance"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(snapshot.Symbols) != 0 {
		t.Errorf("expected empty universe, got %v", snapshot.Symbols)
	}
	if len(snapshot.PairCandidates) != 0 {
		t.Errorf("expected no candidates, got %d", len(snapshot.PairCandidates))
	}
}

func TestSelect_SourceErrorPropagates(t *testing.T) {
	feedErr := errors.New("feed down")
	source := &fakeSource{err: feedErr}

	s := NewSelector(crossConfig(10, "binance"), source, testLogger())
	_, err := s.Select(context.Background(), false)
	if !errors.Is(err, feedErr) {
		t.Fatalf("expected source error, got %v", err)
	}
}

// ============================================================
// Пары-кандидаты
// ============================================================

func TestSelect_PairCandidatesSortedByDiff(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "BTC", 0.0020),
		rate("bybit", "BTC", -0.0010),
		rate("hyperliquid", "BTC", 0.0005),
	}}

	s := NewSelector(crossConfig(10, "binance", "bybit", "hyperliquid"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// 3 биржи -> 3 попарные комбинации
	if len(snapshot.PairCandidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(snapshot.PairCandidates))
	}
	for i := 1; i < len(snapshot.PairCandidates); i++ {
		if snapshot.PairCandidates[i].FRDiff > snapshot.PairCandidates[i-1].FRDiff {
			t.Error("candidates must be sorted by fr_diff descending")
		}
	}

	top := snapshot.PairCandidates[0]
	if math.Abs(top.FRDiff-0.0030) > 1e-12 {
		t.Errorf("top candidate diff = %v, want 0.0030", top.FRDiff)
	}
}

func TestSelect_CandidatesOnlyForSelectedSymbols(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "BTC", 0.0050),
		rate("bybit", "BTC", -0.0050),
		rate("binance", "ETH", 0.0001),
		rate("bybit", "ETH", -0.0001),
	}}

	s := NewSelector(crossConfig(1, "binance", "bybit"), source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	for _, c := range snapshot.PairCandidates {
		if c.IdentityA != "binance:BTC" && c.IdentityB != "binance:BTC" {
			t.Errorf("candidate %v does not belong to the selected universe", c)
		}
	}
}

// ============================================================
// Single-exchange режим
// ============================================================

func TestSelect_SingleExchangeSplit(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "AAA", 0.0040),
		rate("binance", "BBB", 0.0020),
		rate("binance", "CCC", 0.0010),
		rate("binance", "DDD", -0.0050),
		rate("binance", "EEE", -0.0030),
		rate("binance", "FFF", -0.0010),
	}}

	cfg := config.UniverseConfig{
		Size:                     4,
		AllowSingleExchangePairs: true,
		Exchanges:                []string{"binance"},
	}
	s := NewSelector(cfg, source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// N/2 = 2 положительных по убыванию ставки, 2 отрицательных по возрастанию
	expected := []string{"AAA", "BBB", "DDD", "EEE"}
	if len(snapshot.Symbols) != len(expected) {
		t.Fatalf("expected %d symbols, got %v", len(expected), snapshot.Symbols)
	}
	for i, sym := range expected {
		if snapshot.Symbols[i] != sym {
			t.Errorf("symbols[%d] = %s, want %s (full: %v)", i, snapshot.Symbols[i], sym, snapshot.Symbols)
		}
	}
}

func TestSelect_SingleExchangeFewPositives(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "AAA", 0.0040),
		rate("binance", "DDD", -0.0050),
		rate("binance", "EEE", -0.0030),
		rate("binance", "FFF", -0.0010),
	}}

	cfg := config.UniverseConfig{
		Size:                     4,
		AllowSingleExchangePairs: true,
		Exchanges:                []string{"binance"},
	}
	s := NewSelector(cfg, source, testLogger())
	snapshot, err := s.Select(context.Background(), false)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// Положительных меньше половины: остаток добирается из отрицательных
	expected := []string{"AAA", "DDD", "EEE", "FFF"}
	for i, sym := range expected {
		if snapshot.Symbols[i] != sym {
			t.Errorf("symbols[%d] = %s, want %s (full: %v)", i, snapshot.Symbols[i], sym, snapshot.Symbols)
			break
		}
	}
}

// ============================================================
// SymbolsForCycle
// ============================================================

func TestSymbolsForCycle(t *testing.T) {
	source := &fakeSource{rates: []rates.FundingRate{
		rate("binance", "BTC", 0.0020),
		rate("bybit", "BTC", -0.0010),
	}}

	s := NewSelector(crossConfig(10, "binance", "bybit"), source, testLogger())
	symbols, err := s.SymbolsForCycle(context.Background(), false)
	if err != nil {
		t.Fatalf("SymbolsForCycle failed: %v", err)
	}
	if len(symbols) != 1 || symbols[0] != "BTC" {
		t.Errorf("expected [BTC], got %v", symbols)
	}
}
