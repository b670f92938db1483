// Package ipc is the host bridge: newline-delimited JSON over a unix socket.
//
// Clients send requests and receive responses matched by id. Player events
// are pushed to every connection as they happen.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/llehouerou/soundpool/internal/sound"
)

// CommandType names a bridge command.
type CommandType string

const (
	CmdPrepare           CommandType = "prepare"
	CmdPlay              CommandType = "play"
	CmdPause             CommandType = "pause"
	CmdStop              CommandType = "stop"
	CmdRelease           CommandType = "release"
	CmdSetVolume         CommandType = "setVolume"
	CmdSetLooping        CommandType = "setLooping"
	CmdSetSpeed          CommandType = "setSpeed"
	CmdSetCurrentTime    CommandType = "setCurrentTime"
	CmdGetCurrentTime    CommandType = "getCurrentTime"
	CmdSetSpeakerphoneOn CommandType = "setSpeakerphoneOn"
	CmdSetCategory       CommandType = "setCategory"
	CmdGetSystemVolume   CommandType = "getSystemVolume"
	CmdSetSystemVolume   CommandType = "setSystemVolume"
	CmdFocus             CommandType = "focus"
	CmdList              CommandType = "list"
)

// Message types on the wire.
const (
	TypeResponse = "response"
	TypeEvent    = "event"
)

// Request is a client request.
type Request struct {
	ID   int64           `json:"id"`
	Cmd  CommandType     `json:"cmd"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ErrorInfo describes a failed command. Resource errors carry a code and a
// message, backend errors carry what.
type ErrorInfo struct {
	Code    *int   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	What    string `json:"what,omitempty"`
}

func (e *ErrorInfo) Error() string {
	switch {
	case e.What != "":
		return e.What
	case e.Code != nil:
		return fmt.Sprintf("%s (code %d)", e.Message, *e.Code)
	default:
		return e.Message
	}
}

// Response answers the request with the same id.
type Response struct {
	Type    string          `json:"type"`
	ID      int64           `json:"id"`
	Success bool            `json:"success"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Push is a server-initiated event.
type Push struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// message is the union the client decodes before dispatching on Type.
type message struct {
	Type    string          `json:"type"`
	ID      int64           `json:"id"`
	Success bool            `json:"success"`
	Error   *ErrorInfo      `json:"error,omitempty"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Request payloads.

type KeyRequest struct {
	Key int `json:"key"`
}

type PrepareOptions struct {
	UserAgent string            `json:"userAgent,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
}

type PrepareRequest struct {
	Path    string         `json:"path"`
	Key     int            `json:"key"`
	Options PrepareOptions `json:"options"`
}

type VolumeRequest struct {
	Key    int     `json:"key"`
	Volume float64 `json:"volume"`
}

type LoopingRequest struct {
	Key     int  `json:"key"`
	Looping bool `json:"looping"`
}

type SpeedRequest struct {
	Key   int     `json:"key"`
	Speed float64 `json:"speed"`
}

type TimeRequest struct {
	Key     int     `json:"key"`
	Seconds float64 `json:"seconds"`
}

type SpeakerphoneRequest struct {
	Key int  `json:"key"`
	On  bool `json:"on"`
}

type CategoryRequest struct {
	Category      string `json:"category"`
	MixWithOthers bool   `json:"mixWithOthers"`
}

type SystemVolumeRequest struct {
	Volume float64 `json:"volume"`
}

type FocusRequest struct {
	Change string `json:"change"`
}

// Response payloads.

type BoolResponse struct {
	Value bool `json:"value"`
}

type PrepareResponse struct {
	Duration         float64 `json:"duration"`
	NumberOfChannels int     `json:"numberOfChannels"`
	Title            string  `json:"title,omitempty"`
	Artist           string  `json:"artist,omitempty"`
	Album            string  `json:"album,omitempty"`
}

type CurrentTimeResponse struct {
	Seconds   float64 `json:"seconds"`
	IsPlaying bool    `json:"isPlaying"`
}

type SystemVolumeResponse struct {
	Volume float64 `json:"volume"`
}

type ListResponse struct {
	Players []sound.PlayerInfo `json:"players"`
}

// errorInfo maps a command failure to its wire form.
func errorInfo(err error) *ErrorInfo {
	var (
		resErr *sound.ResourceError
		bkErr  *sound.BackendError
		volErr *volumeError
	)
	switch {
	case errors.As(err, &resErr):
		code := resErr.Code
		return &ErrorInfo{Code: &code, Message: resErr.Message}
	case errors.As(err, &volErr):
		code := -1
		return &ErrorInfo{Code: &code, Message: volErr.Error()}
	case errors.As(err, &bkErr):
		return &ErrorInfo{What: bkErr.What}
	default:
		return &ErrorInfo{Message: err.Error()}
	}
}

func newResponse(id int64, data any, err error) (*Response, error) {
	resp := &Response{Type: TypeResponse, ID: id}
	if err != nil {
		resp.Error = errorInfo(err)
		return resp, nil
	}
	resp.Success = true
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		resp.Data = raw
	}
	return resp, nil
}

func newPush(e sound.Event) (*Push, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return &Push{Type: TypeEvent, Event: e.Name(), Data: raw}, nil
}

// decodeData unmarshals a request payload. A missing payload leaves v zero.
func decodeData(req *Request, v any) error {
	if len(req.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Data, v); err != nil {
		return fmt.Errorf("invalid %s data: %w", req.Cmd, err)
	}
	return nil
}
