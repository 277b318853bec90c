// Package combat provides the turn-based combat machine.
package combat

// Combatant is the interface for any entity that can participate in combat.
// Both party members and enemies implement this interface.
type Combatant interface {
	GetName() string
	IsAlive() bool

	GetHP() int
	GetMaxHP() int
	GetAttack() int
	GetDefense() int

	TakeDamage(amount int) int // Returns actual damage taken
	Heal(amount int) int       // Returns actual amount healed
}

// Bounty is implemented by combatants that award gold and experience when
// defeated.
type Bounty interface {
	GoldReward() int
	ExpReward() int
}

// Alive returns the living combatants, keeping order.
func Alive(combatants []Combatant) []Combatant {
	var out []Combatant
	for _, c := range combatants {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Defeated reports whether every combatant is down.
func Defeated(combatants []Combatant) bool {
	for _, c := range combatants {
		if c.IsAlive() {
			return false
		}
	}
	return true
}
