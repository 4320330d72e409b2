package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/catalog"
	"github.com/aretw0/patchbay/pkg/channel"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/google/uuid"
)

// Hub serves editor connections.
type Hub struct {
	catalog *catalog.Catalog
	library *library.Manager
	metrics *Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	conns map[string]*channel.Channel
}

// Option configures the Hub.
type Option func(*Hub)

// WithLogger configures a logger for the Hub and its hosts.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithMetrics enables metrics.
func WithMetrics(m *Metrics) Option {
	return func(h *Hub) {
		h.metrics = m
	}
}

// NewHub creates a Hub announcing cat and storing patches in lib.
func NewHub(cat *catalog.Catalog, lib *library.Manager, opts ...Option) *Hub {
	h := &Hub{
		catalog: cat,
		library: lib,
		logger:  logging.NewNop(),
		conns:   make(map[string]*channel.Channel),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Serve runs one connection until it is lost or ctx is done.
// A peer hanging up is not an error.
func (h *Hub) Serve(ctx context.Context, t ports.Transport) error {
	id := uuid.NewString()
	logger := h.logger.With("conn", id)

	ch := channel.New(t, channel.WithLogger(logger))
	host := NewHost(h.catalog, h.library, ch, WithHostLogger(logger), WithHostMetrics(h.metrics))

	h.add(id, ch)
	defer h.remove(id)
	logger.Info("Editor connected")

	if err := host.Start(); err != nil {
		_ = ch.Close()
		return err
	}
	err := ch.Run(ctx, channel.HandlerFunc(func(m *protocol.Message) {
		host.Handle(ctx, m)
	}))
	logger.Info("Editor disconnected", "cause", err)

	if errors.Is(err, io.EOF) || errors.Is(err, channel.ErrClosed) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (h *Hub) add(id string, ch *channel.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[id] = ch
	if h.metrics != nil {
		h.metrics.Sessions.Inc()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.conns[id]; !ok {
		return
	}
	delete(h.conns, id)
	if h.metrics != nil {
		h.metrics.Sessions.Dec()
	}
}

// Sessions returns the ids of the connected editors, sorted.
func (h *Hub) Sessions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.conns))
	for id := range h.conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close disconnects every editor.
func (h *Hub) Close() error {
	h.mu.Lock()
	conns := make([]*channel.Channel, 0, len(h.conns))
	for _, ch := range h.conns {
		conns = append(conns, ch)
	}
	h.mu.Unlock()

	for _, ch := range conns {
		_ = ch.Close()
	}
	return nil
}
