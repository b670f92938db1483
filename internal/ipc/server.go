package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/soundpool/internal/sound"
)

// connQueueSize bounds each connection's outgoing queue. Events are dropped
// when it is full; responses wait.
const connQueueSize = 256

// maxLineBytes caps a single request line.
const maxLineBytes = 1 << 20

// Controller is the player pool the bridge drives.
type Controller interface {
	Prepare(locator string, key int, opts sound.PrepareOptions) *sound.Completion
	Play(key int) bool
	Pause(key int) bool
	Stop(key int) bool
	Release(key int)
	SetVolume(key int, level float64)
	SetLooping(key int, looping bool)
	SetSpeed(key int, speed float64)
	SetCurrentTime(key int, seconds float64)
	CurrentTime(key int) (seconds float64, playing bool)
	SetSpeakerphoneOn(key int, on bool)
	SetCategory(category string, mixWithOthers bool)
	SystemVolume() (float64, error)
	SetSystemVolume(v float64) error
	Players() []sound.PlayerInfo
}

// FocusInjector delivers an external focus change to the current holder.
type FocusInjector interface {
	Notify(c sound.FocusChange) bool
}

// ServerConfig configures a Server.
type ServerConfig struct {
	Path       string
	Controller Controller
	Focus      FocusInjector       // optional; focus commands fail without it
	Events     *sound.Subscription // optional; events to broadcast
	Logger     logrus.FieldLogger
}

// Server accepts bridge connections on a unix socket.
type Server struct {
	path   string
	ctl    Controller
	focus  FocusInjector
	events *sound.Subscription
	log    logrus.FieldLogger

	listener net.Listener

	mu    sync.Mutex
	conns map[*conn]struct{}
	wg    sync.WaitGroup

	handlers map[CommandType]handlerFunc
}

type handlerFunc func(ctx context.Context, req *Request) (any, error)

// NewServer creates a server. Call Listen then Serve.
func NewServer(cfg ServerConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Server{
		path:   cfg.Path,
		ctl:    cfg.Controller,
		focus:  cfg.Focus,
		events: cfg.Events,
		log:    log.WithField("component", "ipc"),
		conns:  make(map[*conn]struct{}),
	}
	s.handlers = s.routes()
	return s
}

// Listen creates the socket, replacing a stale one, and restricts it to the
// current user.
func (s *Server) Listen() error {
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("removing stale socket: %w", err)
	}
	l, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0o600); err != nil {
		l.Close()
		return fmt.Errorf("setting socket permissions: %w", err)
	}
	s.listener = l
	s.log.WithField("path", s.path).Info("bridge listening")
	return nil
}

// Serve accepts connections until ctx is done, then closes every
// connection and removes the socket.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("ipc: Serve called before Listen")
	}

	if s.events != nil {
		s.wg.Add(1)
		go s.pump(ctx)
	}

	go func() {
		<-ctx.Done()
		s.listener.Close()
	}()

	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.log.WithError(err).Warn("accept failed")
			continue
		}
		s.accept(ctx, nc)
	}

	s.mu.Lock()
	for c := range s.conns {
		c.close()
	}
	count := len(s.conns)
	s.mu.Unlock()
	s.wg.Wait()

	if err := os.RemoveAll(s.path); err != nil {
		s.log.WithError(err).Warn("removing socket")
	}
	s.log.WithField("clients", count).Info("bridge stopped")
	return nil
}

// Clients returns the number of open connections.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) accept(ctx context.Context, nc net.Conn) {
	c := newConn(ctx, nc, s.log)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	total := len(s.conns)
	s.mu.Unlock()
	c.log.WithField("clients", total).Debug("client connected")

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		c.writeLoop()
	}()
	go func() {
		defer s.wg.Done()
		s.readLoop(c)
	}()
}

func (s *Server) drop(c *conn) {
	c.close()
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.log.Debug("client disconnected")
}

func (s *Server) readLoop(c *conn) {
	var pending sync.WaitGroup
	defer func() {
		c.close()
		pending.Wait()
		s.drop(c)
	}()

	sc := bufio.NewScanner(c.nc)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			c.log.WithError(err).Debug("invalid request")
			c.reply(&Response{Type: TypeResponse, Error: &ErrorInfo{Message: "invalid request format"}})
			continue
		}
		// Prepare is queued in arrival order but answers once the player is
		// ready, so later commands on the connection keep flowing.
		if req.Cmd == CmdPrepare {
			completion, err := s.startPrepare(&req)
			if err != nil {
				s.respond(c, &req, nil, err)
				continue
			}
			pending.Add(1)
			go func() {
				defer pending.Done()
				data, err := awaitPrepare(c.ctx, completion)
				s.respond(c, &req, data, err)
			}()
			continue
		}
		s.dispatch(c, &req)
	}
	if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		c.log.WithError(err).Debug("read failed")
	}
}

func (s *Server) dispatch(c *conn, req *Request) {
	var (
		data any
		err  error
	)
	h, ok := s.handlers[req.Cmd]
	if !ok {
		err = fmt.Errorf("unknown command: %q", req.Cmd)
	} else {
		data, err = h(c.ctx, req)
	}
	s.respond(c, req, data, err)
}

func (s *Server) respond(c *conn, req *Request, data any, err error) {
	log := c.log.WithFields(logrus.Fields{"id": req.ID, "cmd": req.Cmd})
	if err != nil {
		log.WithError(err).Debug("command failed")
	}

	resp, mErr := newResponse(req.ID, data, err)
	if mErr != nil {
		log.WithError(mErr).Error("encoding response")
		resp = &Response{Type: TypeResponse, ID: req.ID, Error: &ErrorInfo{Message: "internal error"}}
	}
	c.reply(resp)
}

// Emit broadcasts e to every connection. It never blocks.
func (s *Server) Emit(e sound.Event) {
	push, err := newPush(e)
	if err != nil {
		s.log.WithError(err).Error("encoding event")
		return
	}
	line, err := json.Marshal(push)
	if err != nil {
		s.log.WithError(err).Error("encoding event")
		return
	}

	s.mu.Lock()
	conns := lo.Keys(s.conns)
	s.mu.Unlock()
	for _, c := range conns {
		if !c.offer(line) {
			c.log.WithFields(logrus.Fields{"event": e.Name(), "key": e.PlayerKey()}).Warn("event dropped, client too slow")
		}
	}
}

// pump forwards the subscription's events to the connections.
func (s *Server) pump(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.events.Done:
			return
		case e := <-s.events.PlayingState:
			s.Emit(e)
		case e := <-s.events.Progress:
			s.Emit(e)
		}
	}
}

// conn is one client connection with its outgoing queue.
type conn struct {
	id     string
	nc     net.Conn
	ctx    context.Context
	cancel context.CancelFunc
	out    chan []byte
	log    logrus.FieldLogger
	once   sync.Once
}

func newConn(parent context.Context, nc net.Conn, log logrus.FieldLogger) *conn {
	ctx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	return &conn{
		id:     id,
		nc:     nc,
		ctx:    ctx,
		cancel: cancel,
		out:    make(chan []byte, connQueueSize),
		log:    log.WithField("conn", id),
	}
}

func (c *conn) close() {
	c.once.Do(func() {
		c.cancel()
		c.nc.Close()
	})
}

// offer queues line without blocking.
func (c *conn) offer(line []byte) bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
	}
	select {
	case c.out <- line:
		return true
	default:
		return false
	}
}

// reply queues a response, waiting for room.
func (c *conn) reply(resp *Response) {
	line, err := json.Marshal(resp)
	if err != nil {
		c.log.WithError(err).Error("encoding response")
		return
	}
	select {
	case c.out <- line:
	case <-c.ctx.Done():
	}
}

func (c *conn) writeLoop() {
	w := bufio.NewWriter(c.nc)
	for {
		select {
		case <-c.ctx.Done():
			return
		case line := <-c.out:
			if err := writeLine(w, line); err != nil {
				c.log.WithError(err).Debug("write failed")
				c.close()
				return
			}
			// Flush once the queue is drained.
			if len(c.out) == 0 {
				if err := w.Flush(); err != nil {
					c.log.WithError(err).Debug("write failed")
					c.close()
					return
				}
			}
		}
	}
}

func writeLine(w *bufio.Writer, line []byte) error {
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.WriteByte('\n')
}
