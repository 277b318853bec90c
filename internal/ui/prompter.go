package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/feature"
)

// PromptKind tells how a prompt is answered.
type PromptKind int

const (
	// PromptNotice is acknowledged with enter or space.
	PromptNotice PromptKind = iota
	// PromptChoice is answered with a combat action key.
	PromptChoice
)

// Prompt is a message holding an engine continuation until answered.
type Prompt struct {
	Kind    PromptKind
	Text    string
	choices *combat.Choices
	release func()
}

// Prompter turns bus notifications into on-screen prompts. Notifications
// that carry a continuation are held with Event.Wait until the player
// answers.
type Prompter struct {
	bus     *event.Bus
	queue   []*Prompt
	message string
	logger  *zap.Logger
}

// NewPrompter subscribes to the feature and combat notifications on bus.
func NewPrompter(bus *event.Bus, logger *zap.Logger) *Prompter {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Prompter{bus: bus, logger: logger}

	bus.On(event.DialogEntered, p.onDialog, p)
	bus.On(event.StoreEntered, p.onStore, p)
	bus.On(event.TempleEntered, p.onTemple, p)
	for _, name := range []event.Name{event.DialogExited, event.StoreExited, event.TempleExited} {
		bus.On(name, p.clearMessage, p)
	}

	bus.On(event.CombatStart, p.onCombatStart, p)
	bus.On(event.CombatChooseAction, p.onChooseAction, p)
	bus.On(event.CombatTurn, p.onTurn, p)
	for _, name := range []event.Name{event.CombatVictory, event.CombatDefeat, event.CombatEscape} {
		bus.On(name, p.onOutcome, p)
	}
	return p
}

// Close unsubscribes. Held continuations are dropped.
func (p *Prompter) Close() {
	p.bus.OffAll(p)
	p.queue = nil
}

// Waiting reports whether a prompt awaits an answer.
func (p *Prompter) Waiting() bool {
	return len(p.queue) > 0
}

// Current returns the prompt awaiting an answer, or nil.
func (p *Prompter) Current() *Prompt {
	if len(p.queue) == 0 {
		return nil
	}
	return p.queue[0]
}

// Text returns the line to show: the current prompt, else the last feature
// message.
func (p *Prompter) Text() string {
	if cur := p.Current(); cur != nil {
		return cur.Text
	}
	return p.message
}

// SetMessage replaces the feature message.
func (p *Prompter) SetMessage(msg string) {
	p.message = msg
}

// HandleKey answers the current prompt. It returns false when no prompt is
// waiting, so the key can be used for movement.
func (p *Prompter) HandleKey(ev *tcell.EventKey) bool {
	cur := p.Current()
	if cur == nil {
		return false
	}
	switch cur.Kind {
	case PromptChoice:
		action, ok := actionKey(ev)
		if ok {
			p.Choose(action)
		}
	default:
		if ev.Key() == tcell.KeyEnter || (ev.Key() == tcell.KeyRune && ev.Rune() == ' ') {
			p.Acknowledge()
		}
	}
	return true
}

// Acknowledge releases the current prompt's continuation.
func (p *Prompter) Acknowledge() bool {
	if len(p.queue) == 0 {
		return false
	}
	cur := p.queue[0]
	p.queue = p.queue[1:]
	cur.release()
	return true
}

// Choose gives every living party member action and releases the choice
// prompt.
func (p *Prompter) Choose(action combat.Action) bool {
	cur := p.Current()
	if cur == nil || cur.Kind != PromptChoice {
		return false
	}
	for _, member := range cur.choices.Party {
		if err := cur.choices.Choose(member, action, nil); err != nil {
			p.logger.Warn("choice rejected", zap.String("member", member.GetName()), zap.Error(err))
		}
	}
	return p.Acknowledge()
}

func (p *Prompter) hold(ev *event.Event, kind PromptKind, text string, choices *combat.Choices) {
	p.queue = append(p.queue, &Prompt{
		Kind:    kind,
		Text:    text,
		choices: choices,
		release: ev.Wait(),
	})
}

func (p *Prompter) onDialog(ev *event.Event) {
	info, ok := ev.Payload.(feature.DialogInfo)
	if !ok {
		return
	}
	if info.Title == "" {
		p.message = info.Text
		return
	}
	p.message = info.Title + ": " + info.Text
}

func (p *Prompter) onStore(ev *event.Event) {
	store, ok := ev.Payload.(*feature.Store)
	if !ok {
		return
	}
	msg := "Welcome to " + store.Name + "."
	if len(store.Groups) > 0 {
		msg += " We deal in " + strings.Join(store.Groups, " and ") + "."
	}
	p.message = msg
}

func (p *Prompter) onTemple(ev *event.Event) {
	if temple, ok := ev.Payload.(*feature.Temple); ok {
		p.message = fmt.Sprintf("The temple offers rest for %d gold. Press h to rest.", temple.Cost)
	}
}

func (p *Prompter) clearMessage(*event.Event) {
	p.message = ""
}

func (p *Prompter) onCombatStart(ev *event.Event) {
	name := "Enemies"
	if enc, ok := ev.Payload.(*combat.Encounter); ok && enc.Name != "" {
		name = enc.Name
	}
	p.message = ""
	p.hold(ev, PromptNotice, name+" attack! [enter]", nil)
}

func (p *Prompter) onChooseAction(ev *event.Event) {
	choices, ok := ev.Payload.(*combat.Choices)
	if !ok {
		return
	}
	p.hold(ev, PromptChoice, fmt.Sprintf("Round %d: (a)ttack (g)uard (r)un", choices.Round), choices)
}

func (p *Prompter) onTurn(ev *event.Event) {
	if result, ok := ev.Payload.(combat.TurnResult); ok {
		p.hold(ev, PromptNotice, result.Message+" [enter]", nil)
	}
}

func (p *Prompter) onOutcome(ev *event.Event) {
	res, ok := ev.Payload.(*combat.Result)
	if !ok {
		return
	}
	var text string
	switch res.Outcome {
	case combat.OutcomeVictory:
		text = res.VictoryMessage()
	case combat.OutcomeDefeat:
		text = "Your party has fallen, but clings to life."
	default:
		text = "You got away."
	}
	p.hold(ev, PromptNotice, text+" [enter]", nil)
}

func actionKey(ev *tcell.EventKey) (combat.Action, bool) {
	if ev.Key() == tcell.KeyEnter {
		return combat.ActionAttack, true
	}
	if ev.Key() != tcell.KeyRune {
		return 0, false
	}
	switch ev.Rune() {
	case 'a', 'A':
		return combat.ActionAttack, true
	case 'g', 'G':
		return combat.ActionGuard, true
	case 'r', 'R':
		return combat.ActionRun, true
	}
	return 0, false
}
