package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/patchbay/internal/logging"
	"github.com/aretw0/patchbay/pkg/channel"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/graph"
	"github.com/aretw0/patchbay/pkg/naming"
	"github.com/aretw0/patchbay/pkg/persistence"
	"github.com/aretw0/patchbay/pkg/ports"
	"github.com/aretw0/patchbay/pkg/protocol"
	"github.com/aretw0/patchbay/pkg/registry"
)

// DefaultNoticeTTL is how long a backend notice stays visible.
const DefaultNoticeTTL = 5 * time.Second

// Session is an editing session bound to one backend connection.
type Session struct {
	mu sync.Mutex

	kinds  *registry.Registry
	names  *naming.Allocator
	store  *graph.Store
	dup    *graph.Duplicator
	bridge *persistence.Bridge
	ch     *channel.Channel

	greeted       bool
	engineDisplay domain.Display
	dupOffset     domain.Display

	noticeTTL time.Duration
	notices   []domain.Notice
	noticeSeq int

	hooks  domain.Hooks
	logger *slog.Logger
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHooks registers change notifications for a presentation adapter.
func WithHooks(h domain.Hooks) Option {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithNoticeTTL sets how long notices are kept. Zero keeps them forever.
func WithNoticeTTL(d time.Duration) Option {
	return func(s *Session) {
		s.noticeTTL = d
	}
}

// WithEngineDisplay sets where the engine is placed after the greeting.
func WithEngineDisplay(d domain.Display) Option {
	return func(s *Session) {
		s.engineDisplay = d
	}
}

// WithDuplicateOffset sets how far clones are placed from their originals.
func WithDuplicateOffset(d domain.Display) Option {
	return func(s *Session) {
		s.dupOffset = d
	}
}

// New creates a session speaking over transport. Call Run to start
// processing what the backend sends.
func New(transport ports.Transport, opts ...Option) *Session {
	s := &Session{
		kinds:         registry.NewRegistry(),
		names:         naming.NewAllocator(),
		engineDisplay: domain.Display{Top: 300, Left: 200},
		dupOffset:     graph.DefaultOffset,
		noticeTTL:     DefaultNoticeTTL,
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ch = channel.New(transport,
		channel.WithLogger(s.logger),
		channel.OnDisconnect(s.disconnected),
	)
	s.store = graph.New(s.kinds, s.names, s.ch,
		graph.WithHooks(s.hooks),
		graph.WithLogger(s.logger),
	)
	s.dup = graph.NewDuplicator(s.store, graph.WithOffset(s.dupOffset))
	s.bridge = persistence.New(s.store, s.ch, persistence.WithLogger(s.logger))
	return s
}

// Run processes inbound messages until the channel is lost or ctx is done.
// The session is unusable afterwards.
func (s *Session) Run(ctx context.Context) error {
	return s.ch.Run(ctx, channel.HandlerFunc(s.Handle))
}

// Close flushes pending intents and closes the connection.
func (s *Session) Close() error {
	return s.ch.Close()
}

// Done is closed once the session has lost its channel.
func (s *Session) Done() <-chan struct{} {
	return s.ch.Done()
}

// Err returns why the channel was lost, or nil.
func (s *Session) Err() error {
	return s.ch.Err()
}

// Disconnected reports whether the session reached its terminal state.
func (s *Session) Disconnected() bool {
	return s.ch.Disconnected()
}

func (s *Session) disconnected(err error) {
	if s.hooks.OnDisconnected != nil {
		s.hooks.OnDisconnected(err)
	}
}

// usable is checked first by every command.
func (s *Session) usable() error {
	if s.ch.Disconnected() {
		return domain.ErrDisconnected
	}
	return nil
}

// Handle applies one inbound message. Messages that refer to unknown kinds,
// objects or slots are dropped. Unrecognized actions are ignored.
func (s *Session) Handle(m *protocol.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch m.Action {
	case protocol.ActionHello:
		err = s.greet(m.KindInputs)
	case protocol.ActionSetGraph:
		err = s.bridge.Apply(m.Graph)
	case protocol.ActionMessage:
		s.notify(m.Message)
	case protocol.ActionNew:
		err = s.store.Quiet(func() error {
			w := &protocol.Object{Name: m.Name, Kind: m.Kind, Value: m.Value}
			if m.Display != nil {
				w.Display = *m.Display
			}
			_, err := s.store.Adopt(w)
			return err
		})
	case protocol.ActionConnect:
		err = s.store.Quiet(func() error {
			return s.store.Connect(m.From, m.To, m.Input)
		})
	case protocol.ActionDisconnect:
		err = s.store.Quiet(func() error {
			return s.store.Disconnect(m.From, m.To, m.Input)
		})
	case protocol.ActionSet:
		err = s.store.Quiet(func() error {
			return s.store.SetValue(m.Name, m.Value)
		})
	case protocol.ActionSetDisplay:
		if m.Display == nil {
			break
		}
		err = s.store.Quiet(func() error {
			return s.store.SetDisplay(m.Name, m.Display.Domain())
		})
	case protocol.ActionDestroy:
		err = s.store.Quiet(func() error {
			if err := s.store.Destroy(m.Name); err != nil {
				return err
			}
			s.store.Unlink(m.Name)
			return nil
		})
	default:
		s.logger.Debug("Ignoring unrecognized action", "action", m.Action)
		return
	}
	if err != nil {
		s.logger.Debug("Inbound message dropped", "action", m.Action, "err", err)
	}
}

// greet registers the kinds announced by the backend and places the engine.
func (s *Session) greet(kindInputs map[string][]string) error {
	hasEngine := false
	for kind, inputs := range kindInputs {
		if s.kinds.Register(kind, inputs) {
			hasEngine = true
		}
	}
	s.greeted = true
	s.logger.Info("Backend greeting received", "kinds", len(kindInputs))
	if !hasEngine {
		return nil
	}
	if _, err := s.store.CreateEngine(s.engineDisplay); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// Ready reports whether the backend greeting has been received.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.greeted
}
