package graph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/naming"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/aretw0/patchbay/pkg/registry"
)

// Store is the mapping of object name to object state.
type Store struct {
	kinds   *registry.Registry
	names   *naming.Allocator
	sink    ports.IntentSink
	objects map[string]*domain.Object

	quiet     int  // > 0 while applying inbound or bulk changes
	replaying bool // fine-grained hooks are replaced by OnReplace
	dirty     bool

	// Where the engine goes when a replay does not carry one.
	engineDisplay domain.Display

	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Store.
type Option func(*Store)

// WithHooks registers change notifications for a presentation adapter.
func WithHooks(h domain.Hooks) Option {
	return func(s *Store) {
		s.hooks = h
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates an empty store. Intents of local mutations are sent to sink.
func New(kinds *registry.Registry, names *naming.Allocator, sink ports.IntentSink, opts ...Option) *Store {
	s := &Store{
		kinds:   kinds,
		names:   names,
		sink:    sink,
		objects: make(map[string]*domain.Object),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quiet runs fn with outward intents suppressed. Mutations made inside fn do
// not mark the graph dirty. Calls may be nested.
func (s *Store) Quiet(fn func() error) error {
	s.quiet++
	defer func() { s.quiet-- }()
	return fn()
}

// IsDirty reports whether the graph diverged from the last saved or loaded snapshot.
func (s *Store) IsDirty() bool {
	return s.dirty
}

// MarkClean records that the graph matches the backend's snapshot.
func (s *Store) MarkClean() {
	s.dirty = false
}

// send mirrors an intent unless the store is quiet.
func (s *Store) send(msgs ...*protocol.Message) error {
	if s.quiet > 0 {
		return nil
	}
	for _, m := range msgs {
		if err := s.sink.Send(m); err != nil {
			return fmt.Errorf("send %s: %w", m.Action, err)
		}
	}
	return nil
}

func (s *Store) touch() {
	if s.quiet == 0 {
		s.dirty = true
	}
}

func (s *Store) lookup(name string) (*domain.Object, error) {
	o, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownObject, name)
	}
	return o, nil
}

// Create places a new object of kind at display and announces it.
// The name is allocated from the kind; every input starts unconnected.
// The engine cannot be created this way: it exists implicitly.
func (s *Store) Create(kind string, display domain.Display) (*domain.Object, error) {
	if kind == domain.EngineKind {
		return nil, fmt.Errorf("%w: the engine is created by the backend greeting", domain.ErrProtectedObject)
	}
	slots, err := s.kinds.InputsFor(kind)
	if err != nil {
		return nil, err
	}

	o := domain.NewObject(s.names.Allocate(kind), kind, slots)
	o.Display = display

	if err := s.send(protocol.NewObjectMessage(o), protocol.SetDisplayMessage(o.Name, o.Display)); err != nil {
		return nil, err
	}

	s.objects[o.Name] = o
	s.touch()
	s.notifyAdded(o)
	s.logger.Debug("Object created", "name", o.Name, "kind", kind)
	return o.Clone(), nil
}

// CreateEngine instantiates the singleton engine without announcing it:
// its existence is backend-driven. If the engine exists it is returned as is.
func (s *Store) CreateEngine(display domain.Display) (*domain.Object, error) {
	if o, ok := s.objects[domain.EngineName]; ok {
		return o.Clone(), nil
	}
	slots, err := s.kinds.InputsFor(domain.EngineKind)
	if err != nil {
		return nil, err
	}

	o := domain.NewObject(domain.EngineName, domain.EngineKind, slots)
	o.Display = display
	s.engineDisplay = display
	s.objects[o.Name] = o
	s.notifyAdded(o)
	return o.Clone(), nil
}

// Adopt inserts an object whose identity was chosen elsewhere (a peer, the
// backend, a replay). Its name is observed so later allocations never collide
// with it. An existing object of the same name is silently overwritten.
// Edges carried by w are ignored; they are wired by Connect.
func (s *Store) Adopt(w *protocol.Object) (*domain.Object, error) {
	if w.Name == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrUnknownObject)
	}
	if (w.Kind == domain.EngineKind) != (w.Name == domain.EngineName) {
		return nil, fmt.Errorf("%w: %s of kind %s", domain.ErrProtectedObject, w.Name, w.Kind)
	}
	slots, err := s.kinds.InputsFor(w.Kind)
	if err != nil {
		return nil, err
	}
	s.names.Observe(w.Name)

	o := domain.NewObject(w.Name, w.Kind, slots)
	if w.Kind == domain.ValueKind {
		o.Value = w.Value
	}
	o.Display = w.Display.Domain()

	if _, exists := s.objects[o.Name]; exists {
		s.logger.Debug("Adopt overwrites existing object", "name", o.Name)
	}
	s.objects[o.Name] = o
	if o.IsEngine() {
		s.engineDisplay = o.Display
	}
	s.notifyAdded(o)
	return o.Clone(), nil
}

// Connect feeds input slot of object to from object from.
// Reconnecting an edge that already exists is a no-op. Replacing another
// source first tears the old edge down with an explicit disconnect.
func (s *Store) Connect(from, to, slot string) error {
	src, err := s.lookup(from)
	if err != nil {
		return err
	}
	dst, err := s.lookup(to)
	if err != nil {
		return err
	}
	cur, ok := dst.Inputs[slot]
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownSlot, to, slot)
	}
	if from == to {
		return fmt.Errorf("%w: %s", domain.ErrSelfConnection, to)
	}
	if src.IsEngine() {
		return fmt.Errorf("%w: the engine has no output", domain.ErrProtectedObject)
	}
	if cur == from {
		return nil
	}

	edge := domain.Connection{From: from, To: to, Input: slot}
	var msgs []*protocol.Message
	old := domain.Connection{From: cur, To: to, Input: slot}
	if cur != "" {
		msgs = append(msgs, protocol.ConnectionMessage(protocol.ActionDisconnect, old))
	}
	msgs = append(msgs, protocol.ConnectionMessage(protocol.ActionConnect, edge))
	if err := s.send(msgs...); err != nil {
		return err
	}

	dst.Inputs[slot] = from
	s.touch()
	if cur != "" {
		s.notifyDisconnect(old)
	}
	s.notifyConnect(edge)
	return nil
}

// Disconnect clears input slot of object to if it is currently fed by from.
// The source does not have to exist anymore: it may have been destroyed.
func (s *Store) Disconnect(from, to, slot string) error {
	dst, err := s.lookup(to)
	if err != nil {
		return err
	}
	cur, ok := dst.Inputs[slot]
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", domain.ErrUnknownSlot, to, slot)
	}
	if cur == "" || cur != from {
		return nil
	}

	edge := domain.Connection{From: from, To: to, Input: slot}
	if err := s.send(protocol.ConnectionMessage(protocol.ActionDisconnect, edge)); err != nil {
		return err
	}

	dst.Inputs[slot] = ""
	s.touch()
	s.notifyDisconnect(edge)
	return nil
}

// SetValue changes the scalar of a value object.
func (s *Store) SetValue(name string, v float64) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	if o.Kind != domain.ValueKind {
		return fmt.Errorf("%w: %s is a %s", domain.ErrInvalidKind, name, o.Kind)
	}
	if err := s.send(&protocol.Message{Action: protocol.ActionSet, Name: name, Value: v}); err != nil {
		return err
	}

	o.Value = v
	s.touch()
	if s.hooks.OnValue != nil && !s.replaying {
		s.hooks.OnValue(name, v)
	}
	return nil
}

// SetDisplay moves an object (or relabels it).
func (s *Store) SetDisplay(name string, d domain.Display) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := s.send(protocol.SetDisplayMessage(name, d)); err != nil {
		return err
	}

	o.Display = d
	if o.IsEngine() {
		s.engineDisplay = d
	}
	s.touch()
	if s.hooks.OnDisplay != nil && !s.replaying {
		s.hooks.OnDisplay(name, d)
	}
	return nil
}

// SetLabel changes the label shown for an object, keeping its position.
func (s *Store) SetLabel(name, label string) error {
	o, err := s.lookup(name)
	if err != nil {
		return err
	}
	d := o.Display
	d.Label = label
	return s.SetDisplay(name, d)
}

// Destroy removes an object. Destroying an absent object is a no-op.
// Inputs of other objects that referenced it are left alone: the backend owns
// the cascade and reports it with explicit disconnects.
func (s *Store) Destroy(name string) error {
	if name == domain.EngineName {
		return fmt.Errorf("%w: %s", domain.ErrProtectedObject, name)
	}
	o, ok := s.objects[name]
	if !ok {
		return nil
	}
	if o.IsEngine() {
		return fmt.Errorf("%w: %s", domain.ErrProtectedObject, name)
	}
	if err := s.send(&protocol.Message{Action: protocol.ActionDestroy, Name: name}); err != nil {
		return err
	}

	delete(s.objects, name)
	s.touch()
	if s.hooks.OnObjectRemoved != nil && !s.replaying {
		s.hooks.OnObjectRemoved(name)
	}
	return nil
}

// Unlink clears every input fed by name and returns the edges it removed.
// Nothing is sent: it is how the source of truth applies a deletion cascade.
func (s *Store) Unlink(name string) []domain.Connection {
	var removed []domain.Connection
	for _, o := range s.objects {
		for slot, from := range o.Inputs {
			if from != name {
				continue
			}
			o.Inputs[slot] = ""
			removed = append(removed, domain.Connection{From: name, To: o.Name, Input: slot})
		}
	}
	domain.SortConnections(removed)
	for _, c := range removed {
		s.notifyDisconnect(c)
	}
	return removed
}

// Clear forgets every object, the engine included, without sending anything.
func (s *Store) Clear() {
	for name := range s.objects {
		delete(s.objects, name)
		if s.hooks.OnObjectRemoved != nil && !s.replaying {
			s.hooks.OnObjectRemoved(name)
		}
	}
}

// ReplaceGraph rebuilds the store from a backend replay.
// Nothing is sent. All objects are inserted first, then every edge is wired,
// so forward references resolve. Records that cannot be applied (unknown kind,
// slot or source) are skipped and reported in the returned error; the rest of
// the graph is still rebuilt.
func (s *Store) ReplaceGraph(graph []*protocol.Object) error {
	var errs []error

	s.replaying = true
	_ = s.Quiet(func() error {
		s.Clear()
		for _, w := range graph {
			if w == nil {
				continue
			}
			if _, err := s.Adopt(w); err != nil {
				errs = append(errs, fmt.Errorf("object %q: %w", w.Name, err))
			}
		}
		if _, ok := s.objects[domain.EngineName]; !ok {
			if _, err := s.CreateEngine(s.engineDisplay); err != nil {
				errs = append(errs, fmt.Errorf("engine: %w", err))
			}
		}
		for _, w := range graph {
			if w == nil {
				continue
			}
			for _, slot := range sortedKeys(w.Input) {
				if err := s.Connect(w.Input[slot], w.Name, slot); err != nil {
					errs = append(errs, fmt.Errorf("edge %s -> %s.%s: %w", w.Input[slot], w.Name, slot, err))
				}
			}
		}
		return nil
	})
	s.replaying = false

	if s.hooks.OnReplace != nil {
		s.hooks.OnReplace(s.Objects())
	}
	s.logger.Debug("Graph replaced", "objects", len(s.objects), "skipped", len(errs))
	return errors.Join(errs...)
}

// Object returns a copy of the named object.
func (s *Store) Object(name string) (*domain.Object, bool) {
	o, ok := s.objects[name]
	if !ok {
		return nil, false
	}
	return o.Clone(), true
}

// Has reports whether name is in the store.
func (s *Store) Has(name string) bool {
	_, ok := s.objects[name]
	return ok
}

// Len returns the number of objects, the engine included.
func (s *Store) Len() int {
	return len(s.objects)
}

// Objects returns copies of every object, sorted by name.
func (s *Store) Objects() []*domain.Object {
	out := make([]*domain.Object, 0, len(s.objects))
	for _, name := range s.sortedNames() {
		out = append(out, s.objects[name].Clone())
	}
	return out
}

// Connections derives every edge of the graph.
func (s *Store) Connections() []domain.Connection {
	var conns []domain.Connection
	for _, o := range s.objects {
		for slot, from := range o.Inputs {
			if from != "" {
				conns = append(conns, domain.Connection{From: from, To: o.Name, Input: slot})
			}
		}
	}
	domain.SortConnections(conns)
	return conns
}

// Snapshot serializes the graph in wire form, sorted by name.
// ReplaceGraph(Snapshot()) reproduces the same graph.
func (s *Store) Snapshot() []*protocol.Object {
	out := make([]*protocol.Object, 0, len(s.objects))
	for _, name := range s.sortedNames() {
		out = append(out, protocol.ObjectFromDomain(s.objects[name]))
	}
	return out
}

func (s *Store) sortedNames() []string {
	names := make([]string, 0, len(s.objects))
	for n := range s.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Store) notifyAdded(o *domain.Object) {
	if s.hooks.OnObjectAdded != nil && !s.replaying {
		s.hooks.OnObjectAdded(o.Clone())
	}
}

func (s *Store) notifyConnect(c domain.Connection) {
	if s.hooks.OnConnect != nil && !s.replaying {
		s.hooks.OnConnect(c)
	}
}

func (s *Store) notifyDisconnect(c domain.Connection) {
	if s.hooks.OnDisconnect != nil && !s.replaying {
		s.hooks.OnDisconnect(c)
	}
}
