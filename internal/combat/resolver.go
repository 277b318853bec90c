package combat

import (
	"fmt"
	"math/rand"
)

// Action is what a combatant does on its turn.
type Action int

const (
	ActionAttack Action = iota
	ActionGuard
	ActionRun
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionGuard:
		return "guard"
	case ActionRun:
		return "run"
	default:
		return "unknown"
	}
}

// DefaultEscapeChance is the probability that running away succeeds.
const DefaultEscapeChance = 0.5

// TurnResult describes one resolved turn.
type TurnResult struct {
	Actor   Combatant
	Action  Action
	Target  Combatant
	Damage  int
	Escaped bool
	Message string
}

// Resolver calculates and applies turn outcomes.
type Resolver struct {
	rng          *rand.Rand
	EscapeChance float64
}

// NewResolver creates a resolver drawing random numbers from rng.
func NewResolver(rng *rand.Rand) *Resolver {
	return &Resolver{rng: rng, EscapeChance: DefaultEscapeChance}
}

// CalculateDamage returns the damage attacker deals to target without
// applying it: attack minus defense, at least 1, halved (at least 1) when the
// target is guarding.
func (r *Resolver) CalculateDamage(attacker, target Combatant, guarding bool) int {
	damage := attacker.GetAttack() - target.GetDefense()
	if damage < 1 {
		damage = 1
	}
	if guarding {
		damage = max(damage/2, 1)
	}
	return damage
}

// Attack applies an attack and describes it.
func (r *Resolver) Attack(attacker, target Combatant, guarding bool) TurnResult {
	damage := target.TakeDamage(r.CalculateDamage(attacker, target, guarding))
	msg := fmt.Sprintf("%s attacks %s for %d damage!", attacker.GetName(), target.GetName(), damage)
	if !target.IsAlive() {
		msg += fmt.Sprintf(" %s is defeated.", target.GetName())
	}
	return TurnResult{
		Actor:   attacker,
		Action:  ActionAttack,
		Target:  target,
		Damage:  damage,
		Message: msg,
	}
}

// Guard describes a guarding turn. The halving is applied by the caller.
func (r *Resolver) Guard(actor Combatant) TurnResult {
	return TurnResult{
		Actor:   actor,
		Action:  ActionGuard,
		Message: actor.GetName() + " guards.",
	}
}

// Run rolls an escape attempt.
func (r *Resolver) Run(actor Combatant) TurnResult {
	escaped := r.rng.Float64() < r.EscapeChance
	msg := actor.GetName() + " tries to run, but can't escape!"
	if escaped {
		msg = "The party runs away!"
	}
	return TurnResult{
		Actor:   actor,
		Action:  ActionRun,
		Escaped: escaped,
		Message: msg,
	}
}

// PickTarget returns a random living combatant, or nil.
func (r *Resolver) PickTarget(candidates []Combatant) Combatant {
	alive := Alive(candidates)
	if len(alive) == 0 {
		return nil
	}
	return alive[r.rng.Intn(len(alive))]
}
