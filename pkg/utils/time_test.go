package utils

import (
	"testing"
	"time"
)

func TestGetDayStartFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "middle of day",
			input:    time.Date(2025, 6, 15, 14, 30, 45, 123456789, time.UTC),
			expected: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "already at midnight",
			input:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "last nanosecond of day",
			input:    time.Date(2025, 6, 15, 23, 59, 59, 999999999, time.UTC),
			expected: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "non-UTC input normalized",
			input:    time.Date(2025, 6, 15, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)),
			expected: time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetDayStartFrom(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("GetDayStartFrom(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetDayEndFrom(t *testing.T) {
	input := time.Date(2025, 6, 15, 14, 30, 45, 0, time.UTC)
	expected := time.Date(2025, 6, 15, 23, 59, 59, 999999999, time.UTC)

	if got := GetDayEndFrom(input); !got.Equal(expected) {
		t.Errorf("GetDayEndFrom(%v) = %v, want %v", input, got, expected)
	}
}

func TestTimeRangeContains(t *testing.T) {
	tr := TimeRange{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		time     time.Time
		expected bool
	}{
		{"inside", time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC), true},
		{"start is inclusive", tr.Start, true},
		{"end is exclusive", tr.End, false},
		{"before start", tr.Start.Add(-time.Nanosecond), false},
		{"after end", tr.End.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tr.Contains(tt.time); got != tt.expected {
				t.Errorf("Contains(%v) = %v, want %v", tt.time, got, tt.expected)
			}
		})
	}
}

func TestTimeRangeDuration(t *testing.T) {
	tr := TimeRange{
		Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC),
	}
	if got := tr.Duration(); got != 30*time.Hour {
		t.Errorf("Duration() = %v, want 30h", got)
	}
}

func TestGetLastNDays(t *testing.T) {
	tr := GetLastNDays(7)

	// диапазон включает начало первого дня и конец текущего
	days := int(tr.Duration().Hours()/24) + 1
	if days != 7 {
		t.Errorf("GetLastNDays(7) spans %d days, want 7", days)
	}
	if !tr.Contains(time.Now().UTC()) {
		t.Error("range must contain current time")
	}
}

func TestGetLastNHours(t *testing.T) {
	tr := GetLastNHours(24)

	if d := tr.Duration(); d < 24*time.Hour-time.Minute || d > 24*time.Hour+time.Minute {
		t.Errorf("GetLastNHours(24) spans %v, want ~24h", d)
	}

	// неположительный аргумент трактуется как 1
	if d := GetLastNHours(0).Duration(); d > time.Hour+time.Minute {
		t.Errorf("GetLastNHours(0) spans %v, want ~1h", d)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{840 * time.Millisecond, "840ms"},
		{45 * time.Second, "45s"},
		{5 * time.Minute, "5m"},
		{5*time.Minute + 30*time.Second, "5m30s"},
		{2 * time.Hour, "2h"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{2*time.Hour + 15*time.Minute + 40*time.Second, "2h15m"},
		{72 * time.Hour, "3d"},
		{74 * time.Hour, "3d2h"},
		{0, "0s"},
		{-5 * time.Minute, "5m"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.input); got != tt.expected {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestUnixMillis(t *testing.T) {
	before := time.Now().UnixMilli()
	got := UnixMillis()
	after := time.Now().UnixMilli()

	if got < before || got > after {
		t.Errorf("UnixMillis() = %d, expected between %d and %d", got, before, after)
	}
}

func TestFromUnixMillis(t *testing.T) {
	ts := FromUnixMillis(1767225600000)
	expected := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	if !ts.Equal(expected) {
		t.Errorf("FromUnixMillis(1767225600000) = %v, want %v", ts, expected)
	}
	if ts.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", ts.Location())
	}
}

func BenchmarkGetDayStartFrom(b *testing.B) {
	now := time.Now().UTC()
	for i := 0; i < b.N; i++ {
		GetDayStartFrom(now)
	}
}

func BenchmarkTimeRangeContains(b *testing.B) {
	tr := GetLastNDays(30)
	now := time.Now().UTC()
	for i := 0; i < b.N; i++ {
		tr.Contains(now)
	}
}
