package memory

import (
	"io"
	"sync"
)

// Conn is one end of an in-process frame pipe. It implements ports.Transport.
type Conn struct {
	in  <-chan []byte
	out chan<- []byte

	closed     chan struct{}
	peerClosed <-chan struct{}
	once       sync.Once
}

// Pipe returns two connected transports. Frames written on one end are read
// from the other in order. Each direction buffers up to buffer frames.
func Pipe(buffer int) (*Conn, *Conn) {
	ab := make(chan []byte, buffer)
	ba := make(chan []byte, buffer)
	aClosed := make(chan struct{})
	bClosed := make(chan struct{})

	a := &Conn{in: ba, out: ab, closed: aClosed, peerClosed: bClosed}
	b := &Conn{in: ab, out: ba, closed: bClosed, peerClosed: aClosed}
	return a, b
}

// ReadFrame returns the next frame. Frames already written by the peer are
// still delivered after it closed; then io.EOF is returned.
func (c *Conn) ReadFrame() ([]byte, error) {
	select {
	case f := <-c.in:
		return f, nil
	default:
	}

	select {
	case f := <-c.in:
		return f, nil
	case <-c.closed:
		return nil, io.ErrClosedPipe
	case <-c.peerClosed:
		select {
		case f := <-c.in:
			return f, nil
		default:
			return nil, io.EOF
		}
	}
}

// WriteFrame queues a copy of frame for the peer.
func (c *Conn) WriteFrame(frame []byte) error {
	select {
	case <-c.closed:
		return io.ErrClosedPipe
	case <-c.peerClosed:
		return io.ErrClosedPipe
	default:
	}

	f := append([]byte(nil), frame...)
	select {
	case c.out <- f:
		return nil
	case <-c.closed:
		return io.ErrClosedPipe
	case <-c.peerClosed:
		return io.ErrClosedPipe
	}
}

// Close closes this end. The peer sees io.EOF once it drained pending frames.
func (c *Conn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
