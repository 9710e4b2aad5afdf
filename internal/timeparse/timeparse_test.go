package timeparse

import (
	"testing"
	"time"
)

// Monday 2025-03-10 08:00 UTC.
var now = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
		ok   bool
	}{
		{"empty", "", time.Time{}, false},
		{"plain text", "buy milk", time.Time{}, false},
		{"iso datetime", "ship it 2025-12-01T09:30 sharp", time.Date(2025, 12, 1, 9, 30, 0, 0, time.UTC), true},
		{"iso datetime seconds", "2025-12-01 09:30:15", time.Date(2025, 12, 1, 9, 30, 15, 0, time.UTC), true},
		{"iso date only", "due 2025-12-25 ok", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC), true},
		{"bare tomorrow", "call mom tomorrow", time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC), true},
		{"tomorrow at pm", "buy milk tomorrow at 5pm", time.Date(2025, 3, 11, 17, 0, 0, 0, time.UTC), true},
		{"tomorrow bare clock", "tomorrow 15:30", time.Date(2025, 3, 11, 15, 30, 0, 0, time.UTC), true},
		{"today at", "today at 22:15 please", time.Date(2025, 3, 10, 22, 15, 0, 0, time.UTC), true},
		{"next weekday", "review next friday", time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), true},
		{"next weekday wraps", "standup next monday", time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC), true},
		{"relative minutes", "ping me in 30 minutes", now.Add(30 * time.Minute), true},
		{"relative hours", "in 2 hours", now.Add(2 * time.Hour), true},
		{"relative days", "in 3 days", now.Add(72 * time.Hour), true},
		{"at clock future", "meet at 17:00", time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC), true},
		{"at clock past rolls over", "meet at 7:45am", time.Date(2025, 3, 11, 7, 45, 0, 0, time.UTC), true},
		{"bare am pm clock", "lunch 12pm works", time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC), true},
		{"midnight am", "flight 12am check-in", time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Extract(tt.text, now)
			if ok != tt.ok {
				t.Fatalf("Extract(%q) ok = %v, want %v", tt.text, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Fatalf("Extract(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractPrefersAbsoluteStamp(t *testing.T) {
	got, ok := Extract("tomorrow or 2026-01-02T08:00, whichever", now)
	if !ok {
		t.Fatal("expected a match")
	}
	want := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want ISO stamp %v", got, want)
	}
}
