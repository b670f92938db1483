package ipc

import (
	"context"
	"errors"
	"fmt"

	"github.com/llehouerou/soundpool/internal/sound"
)

var errNoFocusManager = errors.New("no focus manager")

func (s *Server) routes() map[CommandType]handlerFunc {
	return map[CommandType]handlerFunc{
		CmdPlay:              s.transport(s.ctl.Play),
		CmdPause:             s.transport(s.ctl.Pause),
		CmdStop:              s.transport(s.ctl.Stop),
		CmdRelease:           s.handleRelease,
		CmdSetVolume:         s.handleSetVolume,
		CmdSetLooping:        s.handleSetLooping,
		CmdSetSpeed:          s.handleSetSpeed,
		CmdSetCurrentTime:    s.handleSetCurrentTime,
		CmdGetCurrentTime:    s.handleGetCurrentTime,
		CmdSetSpeakerphoneOn: s.handleSpeakerphone,
		CmdSetCategory:       s.handleSetCategory,
		CmdGetSystemVolume:   s.handleGetSystemVolume,
		CmdSetSystemVolume:   s.handleSetSystemVolume,
		CmdFocus:             s.handleFocus,
		CmdList:              s.handleList,
	}
}

// startPrepare hands the prepare to the module. It returns as soon as the
// command is queued.
func (s *Server) startPrepare(req *Request) (*sound.Completion, error) {
	var data PrepareRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	return s.ctl.Prepare(data.Path, data.Key, sound.PrepareOptions{
		UserAgent: data.Options.UserAgent,
		Headers:   data.Options.Headers,
	}), nil
}

// awaitPrepare answers once the player is ready or has failed.
func awaitPrepare(ctx context.Context, c *sound.Completion) (any, error) {
	res, err := c.Wait(ctx)
	if err != nil {
		return nil, err
	}
	return PrepareResponse{
		Duration:         res.Duration,
		NumberOfChannels: res.NumberOfChannels,
		Title:            res.Title,
		Artist:           res.Artist,
		Album:            res.Album,
	}, nil
}

// transport adapts play, pause and stop, which answer with a boolean.
func (s *Server) transport(fn func(key int) bool) handlerFunc {
	return func(_ context.Context, req *Request) (any, error) {
		var data KeyRequest
		if err := decodeData(req, &data); err != nil {
			return nil, err
		}
		return BoolResponse{Value: fn(data.Key)}, nil
	}
}

func (s *Server) handleRelease(_ context.Context, req *Request) (any, error) {
	var data KeyRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.Release(data.Key)
	return nil, nil
}

func (s *Server) handleSetVolume(_ context.Context, req *Request) (any, error) {
	var data VolumeRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetVolume(data.Key, data.Volume)
	return nil, nil
}

func (s *Server) handleSetLooping(_ context.Context, req *Request) (any, error) {
	var data LoopingRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetLooping(data.Key, data.Looping)
	return nil, nil
}

func (s *Server) handleSetSpeed(_ context.Context, req *Request) (any, error) {
	var data SpeedRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetSpeed(data.Key, data.Speed)
	return nil, nil
}

func (s *Server) handleSetCurrentTime(_ context.Context, req *Request) (any, error) {
	var data TimeRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetCurrentTime(data.Key, data.Seconds)
	return nil, nil
}

func (s *Server) handleGetCurrentTime(_ context.Context, req *Request) (any, error) {
	var data KeyRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	sec, playing := s.ctl.CurrentTime(data.Key)
	return CurrentTimeResponse{Seconds: sec, IsPlaying: playing}, nil
}

func (s *Server) handleSpeakerphone(_ context.Context, req *Request) (any, error) {
	var data SpeakerphoneRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetSpeakerphoneOn(data.Key, data.On)
	return nil, nil
}

func (s *Server) handleSetCategory(_ context.Context, req *Request) (any, error) {
	var data CategoryRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	s.ctl.SetCategory(data.Category, data.MixWithOthers)
	return nil, nil
}

// volumeError carries the code the host expects for system volume failures.
type volumeError struct{ err error }

func (e *volumeError) Error() string { return e.err.Error() }
func (e *volumeError) Unwrap() error { return e.err }

func (s *Server) handleGetSystemVolume(_ context.Context, _ *Request) (any, error) {
	v, err := s.ctl.SystemVolume()
	if err != nil {
		return nil, &volumeError{err: err}
	}
	return SystemVolumeResponse{Volume: v}, nil
}

func (s *Server) handleSetSystemVolume(_ context.Context, req *Request) (any, error) {
	var data SystemVolumeRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	if err := s.ctl.SetSystemVolume(data.Volume); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleFocus(_ context.Context, req *Request) (any, error) {
	var data FocusRequest
	if err := decodeData(req, &data); err != nil {
		return nil, err
	}
	change, ok := sound.ParseFocusChange(data.Change)
	if !ok {
		return nil, fmt.Errorf("unknown focus change: %q", data.Change)
	}
	if s.focus == nil {
		return nil, errNoFocusManager
	}
	if !s.focus.Notify(change) {
		s.log.WithField("change", change).Debug("focus change with no holder")
	}
	return nil, nil
}

func (s *Server) handleList(_ context.Context, _ *Request) (any, error) {
	players := s.ctl.Players()
	if players == nil {
		players = []sound.PlayerInfo{}
	}
	return ListResponse{Players: players}, nil
}
