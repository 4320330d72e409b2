// Package channel mirrors protocol messages over a single ordered duplex
// transport. Sends are fire-and-forget: replies are not correlated, and the
// first transport failure is terminal.
package channel

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// ErrClosed is the cause reported after Close.
var ErrClosed = errors.New("channel closed")

// Handler processes inbound messages, one at a time, in arrival order.
type Handler interface {
	Handle(m *protocol.Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(m *protocol.Message)

// Handle calls f(m).
func (f HandlerFunc) Handle(m *protocol.Message) {
	f(m)
}

// Channel is the session's link to its peer. It implements ports.IntentSink.
type Channel struct {
	transport ports.Transport

	// queue is unbounded so Send never blocks the caller's event context.
	mu     sync.Mutex
	queue  [][]byte
	closed bool
	wake   chan struct{}

	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
	failOnce  sync.Once
	err       error

	onDisconnect func(error)
	logger       *slog.Logger
}

// Option configures the Channel.
type Option func(*Channel)

// WithLogger configures a logger for the Channel.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Channel) {
		c.logger = logger
	}
}

// OnDisconnect registers a callback fired once when the channel is lost.
func OnDisconnect(fn func(err error)) Option {
	return func(c *Channel) {
		c.onDisconnect = fn
	}
}

// New wraps transport and starts the writer.
func New(transport ports.Transport, opts ...Option) *Channel {
	c := &Channel{
		transport: transport,
		wake:      make(chan struct{}, 1),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.writeLoop()
	return c
}

// Send queues m for delivery and returns without waiting for the transport.
// Once the channel is closed or lost it returns domain.ErrDisconnected and
// nothing is queued.
func (c *Channel) Send(m *protocol.Message) error {
	frame, err := protocol.Encode(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed || c.Disconnected() {
		c.mu.Unlock()
		return domain.ErrDisconnected
	}
	c.queue = append(c.queue, frame)
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
	return nil
}

// Run reads and dispatches inbound messages until the transport fails or ctx
// is cancelled. Malformed frames are dropped. It returns the cause of the
// disconnection.
func (c *Channel) Run(ctx context.Context, h Handler) error {
	stop := context.AfterFunc(ctx, func() {
		c.fail(ctx.Err())
	})
	defer stop()

	for {
		frame, err := c.transport.ReadFrame()
		if err != nil {
			c.fail(err)
			return c.Err()
		}
		m, err := protocol.Decode(frame)
		if err != nil {
			c.logger.Debug("Dropping malformed frame", "err", err, "size", len(frame))
			continue
		}
		select {
		case <-c.done:
			return c.Err()
		default:
		}
		h.Handle(m)
	}
}

// Close flushes queued frames, then closes the transport.
func (c *Channel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.closeOnce.Do(func() { close(c.closing) })
	<-c.done
	return nil
}

// Done is closed when the channel is lost.
func (c *Channel) Done() <-chan struct{} {
	return c.done
}

// Err returns the cause of the disconnection, or nil while connected.
func (c *Channel) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Disconnected reports whether the channel is in its terminal state.
func (c *Channel) Disconnected() bool {
	return c.Err() != nil
}

func (c *Channel) writeLoop() {
	for {
		select {
		case <-c.wake:
		case <-c.closing:
		case <-c.done:
			return
		}
		for {
			frame, closed, ok := c.next()
			if !ok {
				if closed {
					c.fail(ErrClosed)
					return
				}
				break
			}
			if !c.write(frame) {
				return
			}
		}
	}
}

// next pops the oldest queued frame. When the queue is empty it reports
// whether Close was called, under the same lock Send enqueues with.
func (c *Channel) next() (frame []byte, closed bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		c.queue = nil
		return nil, c.closed, false
	}
	frame = c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return frame, false, true
}

// Pending returns the number of frames waiting for the transport.
func (c *Channel) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *Channel) write(frame []byte) bool {
	if err := c.transport.WriteFrame(frame); err != nil {
		c.fail(err)
		return false
	}
	return true
}

func (c *Channel) fail(err error) {
	c.failOnce.Do(func() {
		if err == nil {
			err = ErrClosed
		}
		c.err = err
		close(c.done)
		if cerr := c.transport.Close(); cerr != nil {
			c.logger.Debug("Transport close failed", "err", cerr)
		}
		if errors.Is(err, ErrClosed) {
			c.logger.Debug("Channel closed")
		} else {
			c.logger.Warn("Channel lost", "err", err)
		}
		if c.onDisconnect != nil {
			c.onDisconnect(err)
		}
	})
}
