package combat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/fsm"
	"github.com/samdwyer/tilequest/internal/telemetry"
)

var (
	// ErrNotInParty is returned when choosing for a combatant that is not a
	// living party member.
	ErrNotInParty = errors.New("combat: actor is not a living party member")
	// ErrInvalidTarget is returned when an attack target is not a living enemy.
	ErrInvalidTarget = errors.New("combat: target is not a living enemy")
)

// Encounter is the domain payload of a combat: who fights whom.
type Encounter struct {
	ID      string
	Name    string
	Party   []Combatant
	Enemies []Combatant
	Fixed   bool // Placed on the map rather than rolled at random

	// Rewards receives the spoils of a victory. Optional.
	Rewards Rewarder
}

// Rewarder is paid out when a battle is won and reports who levelled up.
type Rewarder interface {
	Reward(gold, exp int) []LevelUp
}

// LevelUp records a combatant reaching a new level.
type LevelUp struct {
	Name  string
	Level int
}

// Outcome is how a combat ended.
type Outcome int

const (
	OutcomeVictory Outcome = iota
	OutcomeDefeat
	OutcomeEscape
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// Result is the payload of the terminal notifications and of combat:end.
type Result struct {
	Combat  *Combat
	Outcome Outcome
	Gold    int // Victory only
	Exp     int // Victory only
	Rounds  int

	LevelUps []LevelUp
}

// Choice is one queued turn.
type Choice struct {
	Actor  Combatant
	Action Action
	Target Combatant
}

// Choices is the payload of combat:chooseAction. Handlers pick actions for
// party members; members left without a choice attack.
type Choices struct {
	Round   int
	Party   []Combatant // Living party members
	Enemies []Combatant // Living enemies
	chosen  map[Combatant]Choice
}

// Choose records actor's action for this round. target is only used for
// attacks; nil picks the first living enemy.
func (c *Choices) Choose(actor Combatant, action Action, target Combatant) error {
	if !slices.Contains(c.Party, actor) {
		return fmt.Errorf("%w: %s", ErrNotInParty, actor.GetName())
	}
	if action == ActionAttack && target != nil && !slices.Contains(c.Enemies, target) {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, target.GetName())
	}
	c.chosen[actor] = Choice{Actor: actor, Action: action, Target: target}
	return nil
}

// Chosen returns the choice recorded for actor.
func (c *Choices) Chosen(actor Combatant) (Choice, bool) {
	choice, ok := c.chosen[actor]
	return choice, ok
}

type options struct {
	parent   fsm.Node
	logger   *zap.Logger
	ctx      context.Context
	resolver *Resolver
}

// Option configures a Combat.
type Option func(*options)

// WithParent links the combat machine to the machine that started it.
func WithParent(parent fsm.Node) Option {
	return func(o *options) { o.parent = parent }
}

// WithLogger sets the combat logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithContext sets the context combat spans are started from.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithResolver sets the turn resolver.
func WithResolver(r *Resolver) Option {
	return func(o *options) {
		if r != nil {
			o.resolver = r
		}
	}
}

// Combat is one battle. It owns a nested state machine that starts in
// StateStarted and ends in one of the terminal states, after which combat:end
// is triggered exactly once.
type Combat struct {
	Encounter   *Encounter
	Round       int
	LastMessage string

	machine  *fsm.Machine[*Combat]
	resolver *Resolver
	queue    []Choice
	guarding map[Combatant]bool
	result   *Result
	ended    bool
	logger   *zap.Logger
	ctx      context.Context
}

// New creates a combat for enc publishing on bus. Call Start to begin.
func New(enc *Encounter, bus *event.Bus, opts ...Option) *Combat {
	o := options{
		logger: zap.NewNop(),
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.resolver == nil {
		o.resolver = NewResolver(rand.New(rand.NewSource(time.Now().UnixNano())))
	}

	c := &Combat{
		Encounter: enc,
		resolver:  o.resolver,
		guarding:  make(map[Combatant]bool),
		logger:    o.logger.With(zap.String("encounter", enc.ID)),
		ctx:       o.ctx,
	}
	c.machine = fsm.New(c, bus,
		fsm.WithName("combat"),
		fsm.WithParent(o.parent),
		fsm.WithLogger(c.logger),
		fsm.WithContext(o.ctx),
	)
	if err := c.machine.AddState(states()...); err != nil {
		panic(err)
	}
	return c
}

// Start enters StateStarted.
func (c *Combat) Start() {
	_, span := telemetry.Tracer("combat").Start(c.ctx, "combat.start")
	span.SetAttributes(
		attribute.String("encounter", c.Encounter.ID),
		attribute.Int("party_size", len(Alive(c.Encounter.Party))),
		attribute.Int("enemy_count", len(c.Encounter.Enemies)),
	)
	span.End()

	c.LastMessage = "Combat begins!"
	c.machine.SetCurrentState(StateStarted)
}

// Stop abandons the combat. Pending continuations go stale and combat:end is
// not triggered.
func (c *Combat) Stop() {
	c.machine.Stop()
}

// Machine returns the nested state machine.
func (c *Combat) Machine() *fsm.Machine[*Combat] { return c.machine }

// Resolver returns the turn resolver.
func (c *Combat) Resolver() *Resolver { return c.resolver }

// State returns the current state name.
func (c *Combat) State() string { return c.machine.CurrentName() }

// Result returns the outcome once a terminal state was reached, or nil.
func (c *Combat) Result() *Result { return c.result }

// Ended reports whether combat:end was triggered.
func (c *Combat) Ended() bool { return c.ended }

// Guarding reports whether cb guards this round.
func (c *Combat) Guarding(cb Combatant) bool { return c.guarding[cb] }

// Pending returns the number of queued turns left this round.
func (c *Combat) Pending() int { return len(c.queue) }

func (c *Combat) inParty(cb Combatant) bool {
	return slices.Contains(c.Encounter.Party, cb)
}

func (c *Combat) newChoices() *Choices {
	return &Choices{
		Round:   c.Round,
		Party:   Alive(c.Encounter.Party),
		Enemies: Alive(c.Encounter.Enemies),
		chosen:  make(map[Combatant]Choice),
	}
}

// queueTurns orders the round: party members in order, then enemies.
func (c *Combat) queueTurns(choices *Choices) {
	c.queue = c.queue[:0]
	for _, member := range Alive(c.Encounter.Party) {
		choice, ok := choices.Chosen(member)
		if !ok {
			choice = Choice{Actor: member, Action: ActionAttack}
		}
		c.queue = append(c.queue, choice)
	}
	for _, enemy := range Alive(c.Encounter.Enemies) {
		c.queue = append(c.queue, Choice{
			Actor:  enemy,
			Action: ActionAttack,
			Target: c.resolver.PickTarget(c.Encounter.Party),
		})
	}
}

// nextTurn pops the next executable turn, skipping fallen actors and
// retargeting attacks whose target fell.
func (c *Combat) nextTurn() (Choice, bool) {
	for len(c.queue) > 0 {
		choice := c.queue[0]
		c.queue = c.queue[1:]
		if !choice.Actor.IsAlive() {
			continue
		}
		if choice.Action == ActionAttack && (choice.Target == nil || !choice.Target.IsAlive()) {
			opponents := c.Encounter.Enemies
			if !c.inParty(choice.Actor) {
				opponents = c.Encounter.Party
			}
			alive := Alive(opponents)
			if len(alive) == 0 {
				continue
			}
			choice.Target = alive[0]
		}
		return choice, true
	}
	return Choice{}, false
}

func (c *Combat) resolveTurn(choice Choice) TurnResult {
	_, span := telemetry.Tracer("combat").Start(c.ctx, "combat.turn")
	defer span.End()

	var result TurnResult
	switch choice.Action {
	case ActionGuard:
		c.guarding[choice.Actor] = true
		result = c.resolver.Guard(choice.Actor)
	case ActionRun:
		result = c.resolver.Run(choice.Actor)
	default:
		result = c.resolver.Attack(choice.Actor, choice.Target, c.guarding[choice.Target])
		span.SetAttributes(
			attribute.String("target", choice.Target.GetName()),
			attribute.Int("damage", result.Damage),
		)
	}
	span.SetAttributes(
		attribute.String("actor", choice.Actor.GetName()),
		attribute.String("action", choice.Action.String()),
		attribute.Int("round", c.Round),
	)

	c.LastMessage = result.Message
	return result
}

// summarize builds the result for a terminal state. Victory awards the gold
// and experience of every defeated enemy to the encounter's Rewarder.
func (c *Combat) summarize(outcome Outcome) *Result {
	result := &Result{Combat: c, Outcome: outcome, Rounds: c.Round}
	if outcome != OutcomeVictory {
		return result
	}
	for _, enemy := range c.Encounter.Enemies {
		if b, ok := enemy.(Bounty); ok && !enemy.IsAlive() {
			result.Gold += b.GoldReward()
			result.Exp += b.ExpReward()
		}
	}
	if c.Encounter.Rewards != nil {
		result.LevelUps = c.Encounter.Rewards.Reward(result.Gold, result.Exp)
	}
	return result
}

// VictoryMessage describes a won battle's spoils and level-ups.
func (r *Result) VictoryMessage() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Victory! Found %d gold and earned %d experience.", r.Gold, r.Exp)
	for _, up := range r.LevelUps {
		fmt.Fprintf(&b, " %s reached level %d!", up.Name, up.Level)
	}
	return b.String()
}

// finish triggers combat:end once.
func (c *Combat) finish() {
	if c.ended {
		return
	}
	c.ended = true

	_, span := telemetry.Tracer("combat").Start(c.ctx, "combat.end")
	span.SetAttributes(
		attribute.String("outcome", c.result.Outcome.String()),
		attribute.Int("rounds", c.result.Rounds),
		attribute.Int("party_hp_remaining", totalHP(c.Encounter.Party)),
	)
	span.End()

	c.logger.Info("combat ended",
		zap.Stringer("outcome", c.result.Outcome),
		zap.Int("rounds", c.result.Rounds),
	)
	if err := c.machine.Bus().Trigger(event.CombatEnd, c.result, nil); err != nil {
		c.logger.Error("combat end handler failed", zap.Error(err))
	}
}

func (c *Combat) notify(name event.Name, payload any, next func()) {
	if err := c.machine.Notify(name, payload, next); err != nil {
		c.logger.Error("combat notification failed", zap.String("event", string(name)), zap.Error(err))
	}
}

func totalHP(combatants []Combatant) int {
	total := 0
	for _, cb := range combatants {
		total += cb.GetHP()
	}
	return total
}
