// Package fsm provides named-state machines with enter/exit hooks and
// generation-guarded continuations.
//
// A machine has at most one current state. A transition bumps the machine's
// generation, exits the current state, then enters the next one. Continuations
// issued through Guard, Notify or Defer capture the generation at issue time
// and do nothing if the machine has moved on by the time they run.
package fsm

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/telemetry"
)

var (
	// ErrUnknownState is the panic value (wrapped) for transitions to a state
	// that was never added.
	ErrUnknownState = errors.New("fsm: unknown state")
	// ErrDuplicateState is returned by AddState for a name already in use.
	ErrDuplicateState = errors.New("fsm: duplicate state")
)

type config struct {
	name   string
	parent Node
	logger *zap.Logger
	ctx    context.Context
}

// Option configures a Machine.
type Option func(*config)

// WithName names the machine in logs and spans.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithParent links a nested machine to its parent.
func WithParent(parent Node) Option {
	return func(c *config) { c.parent = parent }
}

// WithLogger sets the machine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithContext sets the context transition spans are started from.
func WithContext(ctx context.Context) Option {
	return func(c *config) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// Machine is a state machine over states of owner type T.
// It is not safe for concurrent use.
type Machine[T any] struct {
	name       string
	owner      T
	bus        *event.Bus
	parent     Node
	states     map[string]State[T]
	current    State[T]
	previous   string
	generation uint64
	logger     *zap.Logger
	ctx        context.Context
}

// New creates a machine with no states and no current state.
func New[T any](owner T, bus *event.Bus, opts ...Option) *Machine[T] {
	cfg := config{
		name:   "machine",
		logger: zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Machine[T]{
		name:   cfg.name,
		owner:  owner,
		bus:    bus,
		parent: cfg.parent,
		states: make(map[string]State[T]),
		logger: cfg.logger.With(zap.String("machine", cfg.name)),
		ctx:    cfg.ctx,
	}
}

// AddState registers states. Nothing is registered if any name is a duplicate.
func (m *Machine[T]) AddState(states ...State[T]) error {
	seen := make(map[string]bool, len(states))
	for _, s := range states {
		name := s.Name()
		if _, ok := m.states[name]; ok || seen[name] {
			return fmt.Errorf("%w: %q in %s", ErrDuplicateState, name, m.name)
		}
		seen[name] = true
	}
	for _, s := range states {
		m.states[s.Name()] = s
	}
	return nil
}

// HasState reports whether name is registered.
func (m *Machine[T]) HasState(name string) bool {
	_, ok := m.states[name]
	return ok
}

// StateNames returns the registered state names, sorted.
func (m *Machine[T]) StateNames() []string {
	names := make([]string, 0, len(m.states))
	for name := range m.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetCurrentState transitions to the named state: the current state's Exit
// completes before the next state's Enter begins. Transitioning to the current
// state exits and re-enters it.
//
// Requesting an unregistered state is a wiring defect and panics with an error
// wrapping ErrUnknownState; the current state is left untouched.
func (m *Machine[T]) SetCurrentState(name string) {
	next, ok := m.states[name]
	if !ok {
		panic(fmt.Errorf("%w: %q in %s", ErrUnknownState, name, m.name))
	}

	from := m.CurrentName()
	_, span := telemetry.Tracer("fsm").Start(m.ctx, "fsm.transition")
	defer span.End()

	m.generation++
	span.SetAttributes(
		attribute.String("fsm.machine", m.name),
		attribute.String("fsm.from", from),
		attribute.String("fsm.to", name),
		attribute.Int64("fsm.generation", int64(m.generation)),
	)
	m.logger.Debug("transition",
		zap.String("from", from),
		zap.String("to", name),
		zap.Uint64("generation", m.generation),
	)

	if prev := m.current; prev != nil {
		prev.Exit(m)
		m.previous = prev.Name()
	}
	m.current = next
	next.Enter(m)
}

// Stop exits the current state and leaves the machine with none. Pending
// continuations become stale.
func (m *Machine[T]) Stop() {
	m.generation++
	prev := m.current
	if prev == nil {
		return
	}
	m.logger.Debug("stop", zap.String("from", prev.Name()), zap.Uint64("generation", m.generation))
	prev.Exit(m)
	m.current = nil
	m.previous = prev.Name()
}

// Guard wraps next so that it only runs if no transition happened since
// Guard was called. A nil next yields a guarded no-op.
func (m *Machine[T]) Guard(next func()) func() {
	gen := m.generation
	issuer := m.CurrentName()
	return func() {
		if m.generation != gen {
			m.logger.Debug("stale continuation dropped",
				zap.String("issuer", issuer),
				zap.Uint64("issued", gen),
				zap.Uint64("generation", m.generation),
			)
			return
		}
		if next != nil {
			next()
		}
	}
}

// Notify triggers name on the bus with a guarded continuation. The bus runs
// the continuation once every waiting handler has released it.
func (m *Machine[T]) Notify(name event.Name, payload any, next func()) error {
	var done func()
	if next != nil {
		done = m.Guard(next)
	}
	return m.bus.Trigger(name, payload, done)
}

// Defer queues a guarded fn on the bus, to run on the next flush.
func (m *Machine[T]) Defer(fn func()) {
	m.bus.Defer(m.Guard(fn))
}

// Owner returns the machine's owner.
func (m *Machine[T]) Owner() T { return m.owner }

// Bus returns the machine's event bus.
func (m *Machine[T]) Bus() *event.Bus { return m.bus }

// Logger returns the machine's logger.
func (m *Machine[T]) Logger() *zap.Logger { return m.logger }

// Context returns the context transitions are traced under.
func (m *Machine[T]) Context() context.Context { return m.ctx }

// Current returns the current state, or nil.
func (m *Machine[T]) Current() State[T] { return m.current }

// CurrentName returns the current state's name, or "".
func (m *Machine[T]) CurrentName() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}

// Is reports whether name is the current state.
func (m *Machine[T]) Is(name string) bool {
	return m.current != nil && m.current.Name() == name
}

// PreviousName returns the name of the last exited state, or "".
func (m *Machine[T]) PreviousName() string { return m.previous }

// MachineName implements Node.
func (m *Machine[T]) MachineName() string { return m.name }

// Generation implements Node.
func (m *Machine[T]) Generation() uint64 { return m.generation }

// Parent implements Node.
func (m *Machine[T]) Parent() Node { return m.parent }
