package pacing

import (
	"context"
	"testing"
	"time"
)

func TestSleep(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name string
		ctx  context.Context
		d    time.Duration
		max  time.Duration
		min  time.Duration
	}{
		{"zero returns immediately", context.Background(), 0, 50 * time.Millisecond, 0},
		{"negative returns immediately", context.Background(), -time.Hour, 50 * time.Millisecond, 0},
		{"cancelled context returns early", cancelled, time.Hour, 50 * time.Millisecond, 0},
		{"waits the duration", context.Background(), 20 * time.Millisecond, time.Second, 20 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			Sleep(tt.ctx, tt.d)
			elapsed := time.Since(start)
			if elapsed > tt.max {
				t.Errorf("Sleep() took %v, want at most %v", elapsed, tt.max)
			}
			if elapsed < tt.min {
				t.Errorf("Sleep() took %v, want at least %v", elapsed, tt.min)
			}
		})
	}
}

func TestSleep_CancelMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	start := time.Now()
	Sleep(ctx, time.Hour)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep() took %v after cancel", elapsed)
	}
}

func TestBetween(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi time.Duration
	}{
		{"range", 3 * time.Second, 5 * time.Second},
		{"empty range", 2 * time.Second, 2 * time.Second},
		{"inverted range", 5 * time.Second, time.Second},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				got := Between(tt.lo, tt.hi)
				if tt.hi <= tt.lo {
					if got != tt.lo {
						t.Fatalf("Between(%v, %v) = %v, want %v", tt.lo, tt.hi, got, tt.lo)
					}
					continue
				}
				if got < tt.lo || got >= tt.hi {
					t.Fatalf("Between(%v, %v) = %v, out of range", tt.lo, tt.hi, got)
				}
			}
		})
	}
}
