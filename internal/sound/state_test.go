package sound

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "Idle"},
		{StatePreparing, "Preparing"},
		{StatePlaying, "Playing"},
		{StateReleased, "Released"},
		{StateErrored, "Errored"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_Predicates(t *testing.T) {
	for _, s := range []State{StateReady, StatePlaying, StatePaused, StateStopped, StateEnded} {
		if !s.IsPrepared() {
			t.Errorf("%v.IsPrepared() = false", s)
		}
		if s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = true", s)
		}
	}
	for _, s := range []State{StateReleased, StateErrored} {
		if !s.IsTerminal() {
			t.Errorf("%v.IsTerminal() = false", s)
		}
	}
	if StatePreparing.IsPrepared() {
		t.Error("Preparing.IsPrepared() = true")
	}
}

func TestFocusChange_RoundTrip(t *testing.T) {
	for _, c := range []FocusChange{FocusGain, FocusLoss, FocusLossTransient, FocusLossTransientCanDuck} {
		got, ok := ParseFocusChange(c.String())
		if !ok || got != c {
			t.Errorf("ParseFocusChange(%q) = %v, %v", c.String(), got, ok)
		}
	}
	if _, ok := ParseFocusChange("duck"); ok {
		t.Error("ParseFocusChange(duck) ok")
	}
	if FocusGain.IsLoss() || !FocusLossTransientCanDuck.IsLoss() {
		t.Error("IsLoss mismatch")
	}
}

func TestSession_StreamType(t *testing.T) {
	tests := []struct {
		category string
		want     StreamType
		ok       bool
	}{
		{"", StreamDefault, false},
		{CategoryPlayback, StreamMusic, true},
		{CategoryAmbient, StreamNotification, true},
		{CategorySystem, StreamSystem, true},
		{"playback", StreamDefault, false},
	}
	for _, tt := range tests {
		got, ok := Session{Category: tt.category}.streamType()
		if got != tt.want || ok != tt.ok {
			t.Errorf("streamType(%q) = %v, %v; want %v, %v", tt.category, got, ok, tt.want, tt.ok)
		}
	}
	if DefaultSession().Exclusive() {
		t.Error("default session is exclusive")
	}
}
