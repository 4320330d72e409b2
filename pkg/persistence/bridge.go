// Package persistence turns load and save requests into intents and applies
// the graph replay that answers a load.
package persistence

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
)

// ErrLoadCancelled is returned by Load when unsaved changes were not confirmed away.
var ErrLoadCancelled = errors.New("load cancelled: unsaved changes")

// Bridge sends load/save intents on behalf of a store.
type Bridge struct {
	store   *graph.Store
	sink    ports.IntentSink
	pending string
	current string
	logger  *slog.Logger
}

// Option configures the Bridge.
type Option func(*Bridge)

// WithLogger configures a logger for the Bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a bridge for store. Intents go to sink.
func New(store *graph.Store, sink ports.IntentSink, opts ...Option) *Bridge {
	b := &Bridge{
		store:  store,
		sink:   sink,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Load asks the backend for the patch saved under name.
// When the graph has unsaved changes confirm must approve discarding them.
// The store is rebuilt later, when the backend answers with its graph.
func (b *Bridge) Load(name string, confirm func() bool) error {
	if err := protocol.ValidatePatchName(name); err != nil {
		return err
	}
	if b.store.IsDirty() && (confirm == nil || !confirm()) {
		return ErrLoadCancelled
	}
	if err := b.sink.Send(&protocol.Message{Action: protocol.ActionLoad, Name: name}); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	b.store.MarkClean()
	b.pending = name
	b.logger.Info("Patch load requested", "patch", name)
	return nil
}

// Save asks the backend to store the current graph under name.
// Completion is not acknowledged; the graph is considered clean right away.
func (b *Bridge) Save(name string) error {
	if err := protocol.ValidatePatchName(name); err != nil {
		return err
	}
	if err := b.sink.Send(&protocol.Message{Action: protocol.ActionSave, Name: name}); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	b.store.MarkClean()
	b.current = name
	b.logger.Info("Patch save requested", "patch", name)
	return nil
}

// Apply rebuilds the store from a backend replay and marks it clean.
// Records that could not be applied are reported, the rest is kept.
func (b *Bridge) Apply(g []*protocol.Object) error {
	err := b.store.ReplaceGraph(g)
	b.store.MarkClean()
	if b.pending != "" {
		b.current = b.pending
		b.pending = ""
	}
	if err != nil {
		b.logger.Debug("Replay skipped records", "err", err)
	}
	return err
}

// IsDirty reports whether the graph has unsaved local changes.
func (b *Bridge) IsDirty() bool {
	return b.store.IsDirty()
}

// Current returns the name of the last loaded or saved patch, if any.
func (b *Bridge) Current() string {
	return b.current
}
