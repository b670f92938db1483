package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/samber/lo"
)

// ErrClientClosed is returned by calls on a closed client.
var ErrClientClosed = errors.New("ipc: client closed")

const clientEventBuffer = 256

// CallError is a command the daemon answered with success false.
type CallError struct {
	Cmd  CommandType
	Info ErrorInfo
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Cmd, e.Info.Error())
}

// Client talks to a running daemon.
type Client struct {
	nc     net.Conn
	nextID atomic.Int64

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[int64]chan *Response
	err     error

	events chan Push
	done   chan struct{}
}

// Dial connects to the daemon socket at path.
func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	nc, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	c := &Client{
		nc:      nc,
		pending: make(map[int64]chan *Response),
		events:  make(chan Push, clientEventBuffer),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events returns pushed player events. The channel closes with the client.
// Events are dropped when the channel is full.
func (c *Client) Events() <-chan Push { return c.events }

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} { return c.done }

// Close closes the connection.
func (c *Client) Close() error {
	err := c.nc.Close()
	<-c.done
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Call sends cmd with data and decodes the response data into out, which
// may be nil. A command failure is returned as *CallError.
func (c *Client) Call(ctx context.Context, cmd CommandType, data, out any) error {
	req := Request{ID: c.nextID.Add(1), Cmd: cmd}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", cmd, err)
		}
		req.Data = raw
	}

	ch := make(chan *Response, 1)
	c.mu.Lock()
	if c.err != nil {
		c.mu.Unlock()
		return c.err
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", cmd, err)
	}
	c.writeMu.Lock()
	_, err = c.nc.Write(append(line, '\n'))
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("sending %s: %w", cmd, err)
	}

	select {
	case resp := <-ch:
		if resp == nil {
			return c.closeErr()
		}
		if !resp.Success {
			info := ErrorInfo{}
			if resp.Error != nil {
				info = *resp.Error
			}
			return &CallError{Cmd: cmd, Info: info}
		}
		if out != nil && len(resp.Data) > 0 {
			if err := json.Unmarshal(resp.Data, out); err != nil {
				return fmt.Errorf("decoding %s response: %w", cmd, err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) closeErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	return ErrClientClosed
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)

	sc := bufio.NewScanner(c.nc)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for sc.Scan() {
		var msg message
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			continue
		}
		switch msg.Type {
		case TypeEvent:
			select {
			case c.events <- Push{Type: msg.Type, Event: msg.Event, Data: msg.Data}:
			default:
			}
		case TypeResponse:
			c.mu.Lock()
			ch, ok := c.pending[msg.ID]
			c.mu.Unlock()
			if ok {
				ch <- &Response{Type: msg.Type, ID: msg.ID, Success: msg.Success, Error: msg.Error, Data: msg.Data}
			}
		}
	}

	c.mu.Lock()
	c.err = ErrClientClosed
	waiting := lo.Values(c.pending)
	c.mu.Unlock()
	for _, ch := range waiting {
		select {
		case ch <- nil:
		default:
		}
	}
}

// Typed helpers for the common commands.

// Prepare loads path under key and waits until it is ready.
func (c *Client) Prepare(ctx context.Context, path string, key int, opts PrepareOptions) (PrepareResponse, error) {
	var out PrepareResponse
	err := c.Call(ctx, CmdPrepare, PrepareRequest{Path: path, Key: key, Options: opts}, &out)
	return out, err
}

// Transport sends play, pause or stop for key and returns the answer.
func (c *Client) Transport(ctx context.Context, cmd CommandType, key int) (bool, error) {
	var out BoolResponse
	err := c.Call(ctx, cmd, KeyRequest{Key: key}, &out)
	return out.Value, err
}

// CurrentTime returns the position of key.
func (c *Client) CurrentTime(ctx context.Context, key int) (CurrentTimeResponse, error) {
	var out CurrentTimeResponse
	err := c.Call(ctx, CmdGetCurrentTime, KeyRequest{Key: key}, &out)
	return out, err
}

// List returns the live players.
func (c *Client) List(ctx context.Context) (ListResponse, error) {
	var out ListResponse
	err := c.Call(ctx, CmdList, nil, &out)
	return out, err
}
