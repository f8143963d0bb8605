package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newBufferLogger создаёт логгер, пишущий JSON в буфер
func newBufferLogger(buf *bytes.Buffer) *Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zapcore.EncoderConfig{
			MessageKey: "message",
			LevelKey:   "level",
		}),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	zl := zap.New(core)
	return &Logger{Logger: zl, sugar: zl.Sugar()}
}

// ============================================================
// Тесты InitLogger
// ============================================================

func TestInitLogger_NeverNil(t *testing.T) {
	configs := []LogConfig{
		{},
		{Level: "info", Format: "json"},
		{Level: "debug", Format: "text", Development: true},
		{Level: "warning"},
		{Level: "nonsense"},
		// несуществующая директория: fallback на stderr вместо паники
		{Level: "info", Output: "/nonexistent/directory/log.txt"},
	}

	for _, cfg := range configs {
		logger := InitLogger(cfg)
		if logger == nil || logger.Logger == nil || logger.sugar == nil {
			t.Fatalf("InitLogger(%+v) returned incomplete logger", cfg)
		}
	}
}

func TestInitLogger_FileOutput(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "logger_test_*.log")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	logger := InitLogger(LogConfig{
		Level:  "info",
		Format: "json",
		Output: tmpFile.Name(),
	})

	logger.Info("cycle finished", zap.Int("executed", 2))
	logger.Sync()

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(content) == 0 {
		t.Fatal("log file is empty")
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(content, &entry); err != nil {
		t.Errorf("log entry is not valid JSON: %v", err)
	}
	if entry["msg"] != "cycle finished" {
		t.Errorf("unexpected message: %v", entry["msg"])
	}
}

// ============================================================
// Тесты глобального логгера
// ============================================================

func TestGlobalLogger(t *testing.T) {
	globalMu.Lock()
	globalLogger = nil
	globalMu.Unlock()

	logger := GetGlobalLogger()
	if logger == nil {
		t.Fatal("GetGlobalLogger returned nil")
	}
	if GetGlobalLogger() != logger {
		t.Error("repeated GetGlobalLogger must return the same logger")
	}
	if L() != logger {
		t.Error("L() must return the global logger")
	}

	replacement := InitGlobalLogger(LogConfig{Level: "debug", Format: "text"})
	if GetGlobalLogger() != replacement {
		t.Error("InitGlobalLogger must install the new logger")
	}
}

// ============================================================
// Тесты parseLevel
// ============================================================

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"invalid", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

// ============================================================
// Тесты методов Logger
// ============================================================

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	child := logger.WithComponent("orchestrator").
		WithExchange("bybit").
		WithSymbol("BTC").
		WithPairID("binance:BTC|bybit:BTC")
	if child == logger {
		t.Fatal("With helpers must return a new logger")
	}

	child.Info("pair evaluated")
	child.Sync()

	output := buf.String()
	for _, want := range []string{
		`"component":"orchestrator"`,
		`"exchange":"bybit"`,
		`"symbol":"BTC"`,
		`"pair_id":"binance:BTC|bybit:BTC"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("field %s not found in output: %s", want, output)
		}
	}
}

// ============================================================
// Тесты глобальных функций логирования
// ============================================================

func TestGlobalLoggingFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetGlobalLogger(newBufferLogger(&buf))

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Error("error message")
	Infof("formatted %s %d", "cycle", 7)
	L().Sync()

	output := buf.String()
	for _, want := range []string{
		"debug message", "info message", "warn message",
		"error message", "formatted cycle 7",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("message %q not found in output", want)
		}
	}
}

// ============================================================
// Тесты конструкторов полей
// ============================================================

func TestFieldConstructors(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("leg placed",
		Exchange("bybit"),
		Symbol("BTC"),
		PairID("binance:BTC|bybit:BTC"),
		OrderID("order-456"),
		ClientOrderID("binance:BTC|bybit:BTC-a-0"),
		FundingRate(0.0001),
		FRDiff(0.003),
		EdgeBps(22),
		PairScore(0.62),
		Notional(12500),
		Qty(0.5),
		Price(25000.50),
		Side("sell"),
		RiskStatus("NORMAL"),
		Reason("TOTAL_NOTIONAL_LIMIT"),
		Drawdown(11.5),
		Component("execution"),
	)
	logger.Sync()

	output := buf.String()
	expectedFields := []string{
		"exchange", "pair_id", "order_id", "client_order_id",
		"funding_rate", "fr_diff", "edge_bps", "pair_score",
		"notional_usd", "qty", "price", "side",
		"risk_status", "reason", "dd_pct", "component",
	}
	for _, field := range expectedFields {
		if !strings.Contains(output, `"`+field+`"`) {
			t.Errorf("field %q not found in output: %s", field, output)
		}
	}
}

func TestReexportedFieldConstructors(t *testing.T) {
	fields := []zap.Field{
		String("k", "v"),
		Int("k", 42),
		Int64("k", 42),
		Float64("k", 3.14),
		Bool("k", true),
		Err(nil),
		Any("k", struct{}{}),
	}
	for i, f := range fields {
		if f.Key == "" && f.Type == zapcore.SkipType && i != 5 {
			t.Errorf("constructor %d produced an empty field", i)
		}
	}
}

// ============================================================
// Бенчмарки
// ============================================================

func BenchmarkLogger_Info(b *testing.B) {
	logger := InitLogger(LogConfig{
		Level:  "info",
		Format: "json",
		Output: "/dev/null",
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("cycle finished",
			Int("evaluated", 12),
			Int("executed", i%3),
		)
	}
}
