package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/soundpool/internal/sound"
)

func TestErrorInfo(t *testing.T) {
	minusOne := -1
	tests := []struct {
		name string
		err  error
		want ErrorInfo
	}{
		{
			name: "resource error",
			err:  &sound.ResourceError{Code: -1, Message: "resource not found", Locator: "/x"},
			want: ErrorInfo{Code: &minusOne, Message: "resource not found"},
		},
		{
			name: "wrapped backend error",
			err:  fmt.Errorf("prepare: %w", &sound.BackendError{What: "bad header"}),
			want: ErrorInfo{What: "bad header"},
		},
		{
			name: "volume error",
			err:  &volumeError{err: errors.New("no mixer")},
			want: ErrorInfo{Code: &minusOne, Message: "no mixer"},
		},
		{
			name: "plain error",
			err:  sound.ErrReleased,
			want: ErrorInfo{Message: sound.ErrReleased.Error()},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, *errorInfo(tt.err))
		})
	}
}

func TestNewResponse_WireShape(t *testing.T) {
	resp, err := newResponse(7, BoolResponse{Value: true}, nil)
	require.NoError(t, err)
	line, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","id":7,"success":true,"data":{"value":true}}`, string(line))

	resp, err = newResponse(8, nil, &sound.BackendError{What: "boom"})
	require.NoError(t, err)
	line, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"response","id":8,"success":false,"error":{"what":"boom"}}`, string(line))
}

func TestNewPush_CarriesKey(t *testing.T) {
	push, err := newPush(sound.PlayingStateEvent{Key: 3, IsPlaying: false, CurrentTime: 61})
	require.NoError(t, err)
	line, err := json.Marshal(push)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"playing-state","data":{"key":3,"isPlaying":false,"currentTime":61}}`, string(line))
}

func TestDecodeData(t *testing.T) {
	var data TimeRequest
	require.NoError(t, decodeData(&Request{Cmd: CmdSetCurrentTime, Data: json.RawMessage(`{"key":2,"seconds":12.5}`)}, &data))
	assert.Equal(t, TimeRequest{Key: 2, Seconds: 12.5}, data)

	var empty KeyRequest
	require.NoError(t, decodeData(&Request{Cmd: CmdPlay}, &empty))
	assert.Zero(t, empty.Key)

	err := decodeData(&Request{Cmd: CmdPlay, Data: json.RawMessage(`{"key":"one"}`)}, &empty)
	assert.ErrorContains(t, err, "invalid play data")
}
