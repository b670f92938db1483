package sound

import (
	"testing"
	"time"
)

func TestNextTickDelay(t *testing.T) {
	interval := 10 * time.Second
	tests := []struct {
		pos  time.Duration
		want time.Duration
	}{
		{0, 10 * time.Second},
		{3 * time.Second, 7 * time.Second},
		{9999 * time.Millisecond, time.Millisecond},
		{10 * time.Second, 10 * time.Second},
		{25500 * time.Millisecond, 4500 * time.Millisecond},
		{-time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := nextTickDelay(tt.pos, interval); got != tt.want {
			t.Errorf("nextTickDelay(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestNextTickDelay_CustomInterval(t *testing.T) {
	if got := nextTickDelay(1200*time.Millisecond, time.Second); got != 800*time.Millisecond {
		t.Errorf("nextTickDelay = %v, want 800ms", got)
	}
}
