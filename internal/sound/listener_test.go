package sound

import (
	"errors"
	"testing"
)

func TestListener_ReadyOnce(t *testing.T) {
	l := newListener(1, NewMockBackend(func(BackendEvent) {}), newCompletion(1))

	if got := l.handle(BackendEvent{Kind: EventReady}); got != actInsert {
		t.Fatalf("first ready = %v, want actInsert", got)
	}
	for range 3 {
		if got := l.handle(BackendEvent{Kind: EventReady}); got != actNone {
			t.Errorf("repeated ready = %v, want actNone", got)
		}
	}
	if !l.fired {
		t.Error("fired = false after ready")
	}
}

func TestListener_Transitions(t *testing.T) {
	tests := []struct {
		name   string
		loop   bool
		events []BackendEventKind
		want   action
		state  State
	}{
		{"end before ready", false, []BackendEventKind{EventEnded}, actNone, StatePreparing},
		{"end without loop", false, []BackendEventKind{EventReady, EventEnded}, actEmitEnded, StateEnded},
		{"end with loop", true, []BackendEventKind{EventReady, EventEnded}, actRestart, StatePlaying},
		{"error before ready", false, []BackendEventKind{EventError}, actFailPrepare, StateErrored},
		{"error after ready", false, []BackendEventKind{EventReady, EventError}, actFailPlayback, StateErrored},
		{"ready after error", false, []BackendEventKind{EventError, EventReady}, actNone, StateErrored},
		{"error after error", false, []BackendEventKind{EventError, EventError}, actNone, StateErrored},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newListener(1, NewMockBackend(func(BackendEvent) {}), newCompletion(1))
			l.loop = tt.loop

			var got action
			for _, kind := range tt.events {
				got = l.handle(BackendEvent{Kind: kind, Err: errors.New("x")})
			}
			if got != tt.want {
				t.Errorf("last action = %v, want %v", got, tt.want)
			}
			if l.state != tt.state {
				t.Errorf("state = %v, want %v", l.state, tt.state)
			}
		})
	}
}

func TestListener_ReleasedIgnoresEverything(t *testing.T) {
	l := newListener(1, NewMockBackend(func(BackendEvent) {}), newCompletion(1))
	l.handle(BackendEvent{Kind: EventReady})
	l.state = StateReleased

	for _, kind := range []BackendEventKind{EventReady, EventEnded, EventError} {
		if got := l.handle(BackendEvent{Kind: kind}); got != actNone {
			t.Errorf("%v after release = %v, want actNone", kind, got)
		}
	}
}

func TestWholeSeconds(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{0.999, 0},
		{12.5, 12},
		{60, 60},
	}
	for _, tt := range tests {
		if got := wholeSeconds(tt.in); got != tt.want {
			t.Errorf("wholeSeconds(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
