package ports

import "github.com/aretw0/patchbay/pkg/protocol"

// Transport is a single duplex stream of UTF-8 text frames.
// It must preserve send order. Any error is final: the stream is not reused.
type Transport interface {
	// ReadFrame blocks until the next frame arrives or the stream fails.
	ReadFrame() ([]byte, error)

	// WriteFrame sends one frame. It must not be called concurrently.
	WriteFrame(frame []byte) error

	// Close releases the stream and unblocks a pending ReadFrame.
	Close() error
}

// IntentSink receives the intents produced by local graph mutations.
type IntentSink interface {
	Send(m *protocol.Message) error
}

// IntentSinkFunc adapts a function to IntentSink.
type IntentSinkFunc func(m *protocol.Message) error

// Send calls f(m).
func (f IntentSinkFunc) Send(m *protocol.Message) error {
	return f(m)
}

// Discard is an IntentSink that drops every intent.
// Backends use it: their store is the source of truth and mirrors nobody.
var Discard IntentSink = IntentSinkFunc(func(*protocol.Message) error { return nil })
