package game

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/fsm"
	"github.com/samdwyer/tilequest/internal/scene"
)

// ErrNoEncounter is returned when starting a combat without an encounter.
var ErrNoEncounter = errors.New("game: no encounter")

// OverworldOption configures an Overworld.
type OverworldOption func(*Overworld)

// WithOutcome sets the function applying a finished combat's result. It runs
// before the overworld returns to the map.
func WithOutcome(fn func(*combat.Result)) OverworldOption {
	return func(o *Overworld) { o.outcome = fn }
}

// WithCombatOptions adds options for every combat the overworld starts.
func WithCombatOptions(opts ...combat.Option) OverworldOption {
	return func(o *Overworld) { o.combatOpts = append(o.combatOpts, opts...) }
}

// WithOverworldLogger sets the overworld logger.
func WithOverworldLogger(logger *zap.Logger) OverworldOption {
	return func(o *Overworld) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithOverworldContext sets the context spans are started from.
func WithOverworldContext(ctx context.Context) OverworldOption {
	return func(o *Overworld) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// Overworld is the top-level mode machine. It pauses the scene while a
// combat runs and resumes it when the combat reports combat:end.
type Overworld struct {
	machine    *fsm.Machine[*Overworld]
	scene      *scene.Scene
	pending    *combat.Encounter
	active     *combat.Combat
	sub        *event.Subscription
	outcome    func(*combat.Result)
	combatOpts []combat.Option
	logger     *zap.Logger
	ctx        context.Context
}

// NewOverworld creates the overworld machine for s. Call Start to enter the
// map state.
func NewOverworld(s *scene.Scene, opts ...OverworldOption) *Overworld {
	o := &Overworld{
		scene:  s,
		logger: zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.machine = fsm.New(o, s.Bus(),
		fsm.WithName("overworld"),
		fsm.WithLogger(o.logger),
		fsm.WithContext(o.ctx),
	)
	if err := o.machine.AddState(mapState{}, combatState{}); err != nil {
		panic(err)
	}
	o.sub = s.Bus().On(event.CombatEnd, o.onCombatEnd, o)
	return o
}

// Start enters the map state.
func (o *Overworld) Start() {
	o.machine.SetCurrentState(StateMap)
}

// StartEncounter begins a combat for enc. A combat that is still running is
// stopped first; its outstanding continuations are dropped.
func (o *Overworld) StartEncounter(enc *combat.Encounter) (*combat.Combat, error) {
	if enc == nil {
		return nil, ErrNoEncounter
	}
	o.pending = enc
	o.machine.SetCurrentState(StateCombat)
	return o.active, nil
}

// Close stops any running combat and unsubscribes.
func (o *Overworld) Close() {
	o.sub.Dispose()
	o.machine.Stop()
}

// State returns the current state name.
func (o *Overworld) State() string { return o.machine.CurrentName() }

// Machine returns the underlying state machine.
func (o *Overworld) Machine() *fsm.Machine[*Overworld] { return o.machine }

// Combat returns the running combat, or nil.
func (o *Overworld) Combat() *combat.Combat { return o.active }

func (o *Overworld) newCombat(enc *combat.Encounter) *combat.Combat {
	opts := []combat.Option{
		combat.WithParent(o.machine),
		combat.WithLogger(o.logger),
		combat.WithContext(o.ctx),
	}
	return combat.New(enc, o.scene.Bus(), append(opts, o.combatOpts...)...)
}

func (o *Overworld) onCombatEnd(ev *event.Event) {
	res, ok := ev.Payload.(*combat.Result)
	if !ok || res == nil || res.Combat == nil {
		return
	}
	if res.Combat != o.active || !o.machine.Is(StateCombat) {
		o.logger.Debug("combat end from inactive combat ignored",
			zap.String("encounter", res.Combat.Encounter.ID),
		)
		return
	}
	o.logger.Debug("returning to map",
		zap.String("encounter", res.Combat.Encounter.ID),
		zap.Stringer("outcome", res.Outcome),
	)
	if o.outcome != nil {
		o.outcome(res)
	}
	o.machine.SetCurrentState(StateMap)
}
