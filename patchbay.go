package patchbay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/adapters/websocket"
	"github.com/aretw0/patchbay/pkg/channel"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/editor"
	"github.com/aretw0/patchbay/pkg/ports"
)

// Version is the patchbay release, overridden at build time with -ldflags.
var Version = "0.1.0"

// readyPoll is how often Connect checks for the backend greeting.
const readyPoll = 10 * time.Millisecond

// Editor is the high-level entry point for the patchbay library.
// It is an editor.Session whose event loop is already running.
type Editor struct {
	*editor.Session

	URL       string
	transport ports.Transport
	header    http.Header
	wsOpts    []websocket.Option
	opts      []editor.Option
	logger    *slog.Logger
	done      chan error
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithHooks registers presentation callbacks.
func WithHooks(hooks domain.Hooks) Option {
	return func(e *Editor) {
		e.opts = append(e.opts, editor.WithHooks(hooks))
	}
}

// WithNoticeTTL sets how long backend messages stay visible.
func WithNoticeTTL(d time.Duration) Option {
	return func(e *Editor) {
		e.opts = append(e.opts, editor.WithNoticeTTL(d))
	}
}

// WithHeader adds HTTP headers to the websocket handshake.
func WithHeader(h http.Header) Option {
	return func(e *Editor) {
		e.header = h
	}
}

// WithSocketOptions tunes the websocket connection.
func WithSocketOptions(opts ...websocket.Option) Option {
	return func(e *Editor) {
		e.wsOpts = append(e.wsOpts, opts...)
	}
}

// WithTransport injects a connected transport, bypassing the websocket dial.
func WithTransport(t ports.Transport) Option {
	return func(e *Editor) {
		e.transport = t
	}
}

// Connect dials the backend at url, starts the session and waits until the
// backend has greeted it. url may be empty when WithTransport is given.
func Connect(ctx context.Context, url string, opts ...Option) (*Editor, error) {
	e := &Editor{URL: url, logger: logging.NewNop(), done: make(chan error, 1)}
	for _, opt := range opts {
		opt(e)
	}

	if e.transport == nil {
		if url == "" {
			return nil, fmt.Errorf("url is required when no transport is provided")
		}
		conn, err := websocket.Dial(ctx, url, e.header, e.wsOpts...)
		if err != nil {
			return nil, err
		}
		e.transport = conn
	}

	e.Session = editor.New(e.transport, append([]editor.Option{editor.WithLogger(e.logger)}, e.opts...)...)
	go func() {
		e.done <- e.Session.Run(context.Background())
	}()

	ticker := time.NewTicker(readyPoll)
	defer ticker.Stop()
	for !e.Ready() {
		select {
		case <-ctx.Done():
			_ = e.Close()
			return nil, ctx.Err()
		case <-e.Session.Done():
			return nil, fmt.Errorf("backend went away before greeting: %w", e.Err())
		case <-ticker.C:
		}
	}
	e.logger.Info("Editor connected", "url", url, "kinds", len(e.Kinds()))
	return e, nil
}

// Wait blocks until the session ends and returns the cause. A session
// ended by Close returns nil.
func (e *Editor) Wait() error {
	err := <-e.done
	if errors.Is(err, channel.ErrClosed) {
		return nil
	}
	return err
}
