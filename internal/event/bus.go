// Package event provides the engine's synchronous event bus.
//
// Handlers run on the caller's goroutine in registration order. A trigger may
// carry a continuation; handlers that need to pace the flow (a dialog waiting
// for acknowledgement, an animation) call Event.Wait and release the returned
// function later. The continuation runs once every waiter has released.
//
// The bus is not safe for concurrent use. The game loop owns it.
package event

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Handler receives a dispatched event.
type Handler func(ev *Event)

// Event is the value passed to handlers during a single Trigger call.
type Event struct {
	Name    Name
	Payload any

	dispatch *dispatch
}

// Wait registers the handler as a participant in the trigger's continuation.
// The continuation does not run until the returned release function is called.
// Calling release more than once has no effect.
func (e *Event) Wait() (release func()) {
	if e == nil || e.dispatch == nil {
		return func() {}
	}
	return e.dispatch.acquire()
}

// dispatch tracks outstanding waiters for one Trigger call.
type dispatch struct {
	done    func()
	pending int
	running bool
	fired   bool

	// held collects the releases acquired by the handler being invoked.
	held []func()
}

func (d *dispatch) acquire() func() {
	d.pending++
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		d.pending--
		d.settle()
	}
	d.held = append(d.held, release)
	return release
}

func (d *dispatch) settle() {
	if d.running || d.fired || d.pending > 0 {
		return
	}
	d.fired = true
	if d.done != nil {
		d.done()
	}
}

// Subscription is the handle returned by On. Dispose it to unsubscribe.
type Subscription struct {
	bus     *Bus
	name    Name
	owner   any
	handler Handler
	active  bool
}

// Name returns the event name the subscription listens to.
func (s *Subscription) Name() Name { return s.name }

// Owner returns the owner the subscription was registered with.
func (s *Subscription) Owner() any { return s.owner }

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool { return s != nil && s.active }

// Dispose removes the subscription from its bus. Safe to call repeatedly.
func (s *Subscription) Dispose() {
	if s == nil || !s.active {
		return
	}
	s.bus.remove(s.name, func(other *Subscription) bool { return other == s })
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used to report handler panics.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Bus dispatches named events to subscribed handlers.
type Bus struct {
	handlers map[Name][]*Subscription
	deferred []func()
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		handlers: make(map[Name][]*Subscription),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// On registers handler for name on behalf of owner. Owners must be comparable,
// in practice a pointer to the subscribing component.
func (b *Bus) On(name Name, handler Handler, owner any) *Subscription {
	sub := &Subscription{
		bus:     b,
		name:    name,
		owner:   owner,
		handler: handler,
		active:  true,
	}
	b.handlers[name] = append(b.handlers[name], sub)
	return sub
}

// Off removes every handler for name registered by owner.
func (b *Bus) Off(name Name, owner any) int {
	return b.remove(name, func(s *Subscription) bool { return s.owner == owner })
}

// OffAll removes every handler registered by owner, for all events.
func (b *Bus) OffAll(owner any) int {
	removed := 0
	for name := range b.handlers {
		removed += b.Off(name, owner)
	}
	return removed
}

// Count returns the number of active handlers for name.
func (b *Bus) Count(name Name) int {
	return len(b.handlers[name])
}

// remove drops matching subscriptions. The slice is rebuilt, never edited in
// place, so snapshots held by an in-flight Trigger stay intact.
func (b *Bus) remove(name Name, match func(*Subscription) bool) int {
	subs := b.handlers[name]
	if len(subs) == 0 {
		return 0
	}
	kept := make([]*Subscription, 0, len(subs))
	removed := 0
	for _, s := range subs {
		if match(s) {
			s.active = false
			removed++
			continue
		}
		kept = append(kept, s)
	}
	if len(kept) == 0 {
		delete(b.handlers, name)
	} else {
		b.handlers[name] = kept
	}
	return removed
}

// Trigger invokes the handlers registered for name with payload.
//
// done, when non-nil, runs exactly once after dispatch: immediately if no
// handler called Event.Wait, otherwise when the last waiter releases. A panic
// in one handler is recovered and reported in the returned error; the other
// handlers still run.
func (b *Bus) Trigger(name Name, payload any, done func()) error {
	subs := append([]*Subscription(nil), b.handlers[name]...)
	d := &dispatch{done: done, running: true}
	ev := &Event{Name: name, Payload: payload, dispatch: d}

	var errs []error
	for _, s := range subs {
		if !s.active {
			continue
		}
		if err := b.invoke(s, ev); err != nil {
			errs = append(errs, err)
		}
	}

	d.running = false
	d.settle()
	return errors.Join(errs...)
}

// invoke runs one handler. A handler that panics after Event.Wait cannot
// release, so its waits are dropped and the continuation is not held up.
func (b *Bus) invoke(s *Subscription, ev *Event) (err error) {
	d := ev.dispatch
	d.held = nil
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event %s: handler panic: %v", ev.Name, r)
			b.logger.Error("event handler panicked",
				zap.String("event", string(ev.Name)),
				zap.Any("panic", r),
			)
			for _, release := range d.held {
				release()
			}
		}
		d.held = nil
	}()
	s.handler(ev)
	return nil
}

// Defer queues fn to run on the next Flush. Use it to leave the current call
// stack before starting a transition from inside a dispatch.
func (b *Bus) Defer(fn func()) {
	if fn == nil {
		return
	}
	b.deferred = append(b.deferred, fn)
}

// Pending returns the number of deferred functions waiting for Flush.
func (b *Bus) Pending() int {
	return len(b.deferred)
}

// Flush runs deferred functions in FIFO order, including any queued while
// flushing, and returns how many ran. Panics are not recovered here.
func (b *Bus) Flush() int {
	ran := 0
	for len(b.deferred) > 0 {
		fn := b.deferred[0]
		b.deferred = b.deferred[1:]
		fn()
		ran++
	}
	b.deferred = nil
	return ran
}
