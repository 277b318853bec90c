package combat

import (
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/fsm"
)

// Combat state names.
const (
	StateStarted      = "Combat Started"
	StateChooseAction = "Choose Action"
	StateBeginTurn    = "Begin Turn"
	StateEndTurn      = "End Turn"
	StateVictory      = "Victory"
	StateDefeat       = "Defeat"
	StateEscape       = "Escape"
)

type machine = fsm.Machine[*Combat]

func states() []fsm.State[*Combat] {
	return []fsm.State[*Combat]{
		startedState{},
		chooseActionState{},
		beginTurnState{},
		endTurnState{},
		terminalState{name: StateVictory, outcome: OutcomeVictory, notice: event.CombatVictory},
		terminalState{name: StateDefeat, outcome: OutcomeDefeat, notice: event.CombatDefeat},
		terminalState{name: StateEscape, outcome: OutcomeEscape, notice: event.CombatEscape},
	}
}

// noExit is embedded by states with nothing to clean up.
type noExit struct{}

func (noExit) Exit(*machine) {}

// startedState announces the battle from a deferred call, so the parent's
// transition into combat finishes first.
type startedState struct{ noExit }

func (startedState) Name() string { return StateStarted }

func (startedState) Enter(m *machine) {
	c := m.Owner()
	m.Defer(func() {
		c.notify(event.CombatStart, c.Encounter, func() {
			m.SetCurrentState(StateChooseAction)
		})
	})
}

// chooseActionState asks for the party's actions for a new round. The
// request goes out from a deferred call, so the machine rests here until the
// next flush even when nobody waits on it.
type chooseActionState struct{ noExit }

func (chooseActionState) Name() string { return StateChooseAction }

func (chooseActionState) Enter(m *machine) {
	c := m.Owner()
	m.Defer(func() {
		c.Round++
		clear(c.guarding)
		choices := c.newChoices()
		c.notify(event.CombatChooseAction, choices, func() {
			c.queueTurns(choices)
			m.SetCurrentState(StateBeginTurn)
		})
	})
}

// beginTurnState resolves the next queued turn.
type beginTurnState struct{ noExit }

func (beginTurnState) Name() string { return StateBeginTurn }

func (beginTurnState) Enter(m *machine) {
	c := m.Owner()
	choice, ok := c.nextTurn()
	if !ok {
		m.Defer(func() { m.SetCurrentState(StateEndTurn) })
		return
	}

	result := c.resolveTurn(choice)
	next := StateEndTurn
	if result.Escaped {
		next = StateEscape
	}
	c.notify(event.CombatTurn, result, func() {
		m.SetCurrentState(next)
	})
}

// endTurnState decides what follows a turn.
type endTurnState struct{ noExit }

func (endTurnState) Name() string { return StateEndTurn }

func (endTurnState) Enter(m *machine) {
	c := m.Owner()
	m.Defer(func() {
		switch {
		case Defeated(c.Encounter.Enemies):
			m.SetCurrentState(StateVictory)
		case Defeated(c.Encounter.Party):
			m.SetCurrentState(StateDefeat)
		case len(c.queue) > 0:
			m.SetCurrentState(StateBeginTurn)
		default:
			m.SetCurrentState(StateChooseAction)
		}
	})
}

// terminalState ends the battle. No transition leaves it; once its notice is
// acknowledged the combat triggers combat:end and the parent takes over.
type terminalState struct {
	noExit
	name    string
	outcome Outcome
	notice  event.Name
}

func (s terminalState) Name() string { return s.name }

func (s terminalState) Enter(m *machine) {
	c := m.Owner()
	c.queue = nil
	c.result = c.summarize(s.outcome)
	switch s.outcome {
	case OutcomeVictory:
		c.LastMessage = c.result.VictoryMessage()
	case OutcomeDefeat:
		c.LastMessage = "Your party has been defeated!"
	}
	c.notify(s.notice, c.result, c.finish)
}
