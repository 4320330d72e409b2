package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/catalog"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/aretw0/patchbay/pkg/naming"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// ErrUnrecognizedAction is reported for actions a backend does not accept.
var ErrUnrecognizedAction = errors.New("unrecognized Action")

// Host is the authoritative graph of one connection.
// It is not safe for concurrent use: messages are handled one at a time.
type Host struct {
	catalog *catalog.Catalog
	store   *graph.Store
	library *library.Manager
	out     ports.IntentSink
	metrics *Metrics
	logger  *slog.Logger
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithHostLogger configures a logger for the Host.
func WithHostLogger(logger *slog.Logger) HostOption {
	return func(h *Host) {
		h.logger = logger
	}
}

// WithHostMetrics records what the Host does in m.
func WithHostMetrics(m *Metrics) HostOption {
	return func(h *Host) {
		h.metrics = m
	}
}

// NewHost creates a Host whose replies go to out.
func NewHost(cat *catalog.Catalog, lib *library.Manager, out ports.IntentSink, opts ...HostOption) *Host {
	h := &Host{
		catalog: cat,
		library: lib,
		out:     out,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	// The host's graph is the source of truth: it mirrors nobody.
	h.store = graph.New(cat.Registry(), naming.NewAllocator(), ports.Discard, graph.WithLogger(h.logger))
	return h
}

// Start creates the engine and greets the editor.
func (h *Host) Start() error {
	if _, err := h.store.CreateEngine(domain.Display{}); err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	return h.out.Send(&protocol.Message{Action: protocol.ActionHello, KindInputs: h.catalog.KindInputs()})
}

// Handle applies one intent. A failure is sent back as a "message".
func (h *Host) Handle(ctx context.Context, m *protocol.Message) {
	err := h.apply(ctx, m)
	h.metrics.intent(m.Action, err)
	if err == nil {
		return
	}
	h.logger.Debug("Intent failed", "action", m.Action, "err", err)
	if serr := h.out.Send(&protocol.Message{Action: protocol.ActionMessage, Message: err.Error()}); serr != nil {
		h.logger.Debug("Failed to report error", "err", serr)
	}
}

func (h *Host) apply(ctx context.Context, m *protocol.Message) error {
	switch m.Action {
	case protocol.ActionNew:
		return h.create(m)
	case protocol.ActionConnect:
		return h.store.Connect(m.From, m.To, m.Input)
	case protocol.ActionDisconnect:
		return h.store.Disconnect(m.From, m.To, m.Input)
	case protocol.ActionSet:
		return h.store.SetValue(m.Name, m.Value)
	case protocol.ActionSetDisplay:
		if m.Display == nil {
			return fmt.Errorf("setDisplay %s: missing Display", m.Name)
		}
		return h.store.SetDisplay(m.Name, m.Display.Domain())
	case protocol.ActionDestroy:
		return h.destroy(m.Name)
	case protocol.ActionLoad:
		err := h.load(ctx, m.Name)
		h.metrics.patch(protocol.ActionLoad, err)
		return err
	case protocol.ActionSave:
		err := h.library.Save(ctx, m.Name, h.store.Snapshot())
		h.metrics.patch(protocol.ActionSave, err)
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		h.logger.Info("Patch saved", "patch", m.Name, "objects", h.store.Len())
		return nil
	default:
		return fmt.Errorf("%w: %v", ErrUnrecognizedAction, m.Action)
	}
}

func (h *Host) create(m *protocol.Message) error {
	if m.Kind == domain.EngineKind || m.Name == domain.EngineName {
		return fmt.Errorf("%w: there is only one engine", domain.ErrProtectedObject)
	}
	if h.store.Has(m.Name) {
		return fmt.Errorf("object %q already exists", m.Name)
	}
	w := &protocol.Object{Name: m.Name, Kind: m.Kind, Value: m.Value}
	if m.Display != nil {
		w.Display = *m.Display
	}
	_, err := h.store.Adopt(w)
	return err
}

// destroy removes the object and tells the editor about every edge it fed.
func (h *Host) destroy(name string) error {
	if !h.store.Has(name) {
		return fmt.Errorf("%w: %s", domain.ErrUnknownObject, name)
	}
	if err := h.store.Destroy(name); err != nil {
		return err
	}
	for _, c := range h.store.Unlink(name) {
		if err := h.out.Send(protocol.ConnectionMessage(protocol.ActionDisconnect, c)); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) load(ctx context.Context, name string) error {
	patch, err := h.library.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	rerr := h.store.ReplaceGraph(patch)
	if err := h.out.Send(&protocol.Message{Action: protocol.ActionSetGraph, Graph: h.store.Snapshot()}); err != nil {
		return err
	}
	h.logger.Info("Patch loaded", "patch", name, "objects", h.store.Len())
	if rerr != nil {
		return fmt.Errorf("load %s: some records were skipped: %w", name, rerr)
	}
	return nil
}

// Snapshot returns the authoritative graph in wire form.
func (h *Host) Snapshot() []*protocol.Object {
	return h.store.Snapshot()
}
