// Package game wires a play session together: the scene, the party, the
// overworld state machine and the terminal loop.
package game

import (
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/fsm"
)

// Overworld states.
const (
	// StateMap is free roaming; the scene is not paused.
	StateMap = "map"
	// StateCombat owns a running combat; the scene is paused.
	StateCombat = "combat"
)

type overworldMachine = fsm.Machine[*Overworld]

type mapState struct{}

func (mapState) Name() string { return StateMap }

func (mapState) Enter(m *overworldMachine) {
	m.Owner().scene.SetPaused(false)
}

func (mapState) Exit(*overworldMachine) {}

type combatState struct{}

func (combatState) Name() string { return StateCombat }

func (combatState) Enter(m *overworldMachine) {
	o := m.Owner()
	enc := o.pending
	o.pending = nil

	o.scene.SetPaused(true)
	c := o.newCombat(enc)
	o.active = c
	if err := m.Bus().Trigger(event.CombatBegin, c, nil); err != nil {
		m.Logger().Warn("combat begin handler failed", zap.Error(err))
	}
	c.Start()
}

// Exit stops a combat that has not ended, which makes its pending
// continuations stale.
func (combatState) Exit(m *overworldMachine) {
	o := m.Owner()
	if c := o.active; c != nil && !c.Ended() {
		c.Stop()
	}
	o.active = nil
}
