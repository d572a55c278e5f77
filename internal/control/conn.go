package control

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/sgbasaraner/libyee/internal/device"
	"github.com/sgbasaraner/libyee/internal/logging"
	"github.com/sgbasaraner/libyee/internal/protocol"
)

const (
	// ResponseBufferSize is the size of the single read performed per call.
	// No response of this protocol is larger.
	ResponseBufferSize = 2048

	// DefaultDialTimeout bounds Dial when the context has no deadline
	DefaultDialTimeout = 5 * time.Second
)

// Transport is the byte stream a Conn talks over, normally a *net.TCPConn
type Transport interface {
	io.Reader
	io.Writer
}

// IDSource supplies correlation identifiers, one per call
type IDSource interface {
	NextID() int16
}

// IDSourceFunc adapts a function to IDSource
type IDSourceFunc func() int16

// NextID calls f
func (f IDSourceFunc) NextID() int16 {
	return f()
}

type randomIDSource struct{}

func (randomIDSource) NextID() int16 {
	return int16(rand.Uint32())
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// Conn is the call dispatcher for one device. It owns a single transport
// and serializes calls on it: a second caller blocks until the first
// call's write and read have both finished.
type Conn struct {
	device       *device.Descriptor
	transport    Transport
	ids          IDSource
	readTimeout  time.Duration
	writeTimeout time.Duration
	dialTimeout  time.Duration

	// mu serializes exchanges on transport and guards ids
	mu sync.Mutex

	// closeMu guards closed. Close never takes mu, so it can abort a
	// call that is stuck waiting for a reply.
	closeMu sync.Mutex
	closed  bool
}

// Option configures a Conn
type Option func(*Conn)

// WithIDSource replaces the random correlation id source
func WithIDSource(ids IDSource) Option {
	return func(c *Conn) {
		c.ids = ids
	}
}

// WithReadTimeout bounds the wait for each response. Zero (the default)
// blocks until the device answers. Only honored when the transport has
// SetReadDeadline.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.readTimeout = d
	}
}

// WithWriteTimeout bounds each request write. Zero disables it.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.writeTimeout = d
	}
}

// WithDialTimeout bounds Dial
func WithDialTimeout(d time.Duration) Option {
	return func(c *Conn) {
		c.dialTimeout = d
	}
}

func newConn(d *device.Descriptor, opts []Option) *Conn {
	c := &Conn{
		device:      d,
		ids:         randomIDSource{},
		dialTimeout: DefaultDialTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewConn binds a dispatcher to an already open transport
func NewConn(d *device.Descriptor, transport Transport, opts ...Option) *Conn {
	c := newConn(d, opts)
	c.transport = transport
	return c
}

// Dial opens a TCP connection to the device's control address
func Dial(ctx context.Context, d *device.Descriptor, opts ...Option) (*Conn, error) {
	c := newConn(d, opts)

	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.Address)
	if err != nil {
		return nil, newIOError("", fmt.Sprintf("failed to connect to %s", d.Address), err)
	}

	c.transport = conn
	return c, nil
}

// Device returns the descriptor the connection was opened for
func (c *Conn) Device() *device.Descriptor {
	return c.device
}

// Close closes the transport if it can be closed. A call blocked on the
// transport returns an IO error once it is closed. Closing twice is a no-op.
func (c *Conn) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if closer, ok := c.transport.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Call performs one request/response exchange. Methods outside the
// device's capability set are rejected before the transport is touched.
// Nothing is retried; every failure comes back as a *CallError.
func (c *Conn) Call(method protocol.Method, args ...protocol.Arg) (*protocol.Response, error) {
	if !c.device.Supports(method) {
		return nil, &CallError{
			Kind:    ErrUnsupportedMethod,
			Method:  method.String(),
			Message: fmt.Sprintf("device %s does not support this method", c.device.ID),
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	id := c.ids.NextID()
	resp, err := c.exchange(id, method, args)
	logging.LogCall(c.device.Address, method.String(), id, time.Since(start), err)

	return resp, err
}

func (c *Conn) exchange(id int16, method protocol.Method, args []protocol.Arg) (*protocol.Response, error) {
	name := method.String()

	request := protocol.Encode(id, method, args)
	logging.LogRawBytes("Request", request)

	if c.writeTimeout > 0 {
		if wd, ok := c.transport.(writeDeadliner); ok {
			if err := wd.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return nil, newIOError(name, "failed to set write deadline", err)
			}
		}
	}

	if _, err := c.transport.Write(request); err != nil {
		return nil, newIOError(name, "write failed", err)
	}

	if c.readTimeout > 0 {
		if rd, ok := c.transport.(readDeadliner); ok {
			if err := rd.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
				return nil, newIOError(name, "failed to set read deadline", err)
			}
		}
	}

	buf := make([]byte, ResponseBufferSize)
	n, err := c.transport.Read(buf)
	if n == 0 && err != nil {
		return nil, newIOError(name, "read failed", err)
	}
	logging.LogRawBytes("Response", buf[:n])

	resp, err := protocol.Decode(buf[:n])
	if err != nil {
		switch e := err.(type) {
		case *protocol.ErrorReply:
			return nil, &CallError{Kind: ErrResponse, Method: name, Code: e.Code, Message: e.Message, Err: e}
		default:
			return nil, newParseError(name, err)
		}
	}

	if resp.ID != id {
		return nil, &CallError{
			Kind:    ErrSynchronization,
			Method:  name,
			Message: fmt.Sprintf("response id %d does not match request id %d", resp.ID, id),
		}
	}

	return resp, nil
}

// callStrings performs a call whose result is a string array
func (c *Conn) callStrings(method protocol.Method, args ...protocol.Arg) ([]string, error) {
	resp, err := c.Call(method, args...)
	if err != nil {
		return nil, err
	}

	values, err := resp.Strings()
	if err != nil {
		return nil, newParseError(method.String(), err)
	}
	return values, nil
}
