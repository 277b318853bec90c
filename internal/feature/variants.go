package feature

import (
	"errors"
	"fmt"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// ErrMissingTarget is returned when a portal has no target map.
var ErrMissingTarget = errors.New("feature: portal has no target map")

// DialogInfo is the payload of dialog:entered.
type DialogInfo struct {
	Title string
	Text  string
	Icon  string
}

// Sign shows a short text when stepped on.
type Sign struct {
	Feature
	Text string
}

// Enter shows the sign text as a dialog.
func (s *Sign) Enter(*scene.Object) {
	s.trigger(event.DialogEntered, DialogInfo{Title: s.Host().Name, Text: s.Text})
}

// Exit hides the sign text.
func (s *Sign) Exit(*scene.Object) {
	s.trigger(event.DialogExited, s)
}

// Dialog opens a dialog with a title, text and icon.
type Dialog struct {
	Feature
	Info DialogInfo
}

// Enter opens the dialog.
func (d *Dialog) Enter(*scene.Object) {
	d.trigger(event.DialogEntered, d.Info)
}

// Exit closes the dialog.
func (d *Dialog) Exit(*scene.Object) {
	d.trigger(event.DialogExited, d)
}

// Store is a shop. Its inventory is selected by item groups and category.
type Store struct {
	Feature
	Name     string
	Groups   []string
	Category string
	Level    int
}

// Enter opens the shop.
func (s *Store) Enter(*scene.Object) {
	s.trigger(event.StoreEntered, s)
}

// Exit closes the shop.
func (s *Store) Exit(*scene.Object) {
	s.trigger(event.StoreExited, s)
}

// Temple heals the party for a fee.
type Temple struct {
	Feature
	Cost int
}

// Enter offers healing.
func (t *Temple) Enter(*scene.Object) {
	t.trigger(event.TempleEntered, t)
}

// Exit leaves the temple.
func (t *Temple) Exit(*scene.Object) {
	t.trigger(event.TempleExited, t)
}

// PortalRequest is the payload of portal:entered. A nil Target means the
// target map's start point.
type PortalRequest struct {
	Map    string
	Target *world.Point
}

// Portal sends the actor to another map.
type Portal struct {
	Feature
	Map    string
	Target *world.Point
}

// Connect fails when the portal has no target map.
func (p *Portal) Connect(host *scene.Object) error {
	if p.Map == "" {
		return fmt.Errorf("%w: %s", ErrMissingTarget, host)
	}
	return p.Feature.Connect(host)
}

// Enter requests travel.
func (p *Portal) Enter(*scene.Object) {
	p.trigger(event.PortalEntered, PortalRequest{Map: p.Map, Target: p.Target})
}

// Exit does nothing; travel replaces the scene.
func (p *Portal) Exit(*scene.Object) {}

// Encounter states.
const (
	StateArmed   = "armed"
	StateCleared = "cleared"
)

// EncounterRequest is the payload of encounter:triggered.
type EncounterRequest struct {
	ID    string // Encounter id; empty means a random encounter for Zone
	Zone  string
	Fixed *Encounter // Set for fixed encounters placed on the map
}

// Encounter is a fixed battle placed on the map. It fires once until
// cleared.
type Encounter struct {
	Feature
	ID      string
	cleared bool
}

// State implements scene.Stateful.
func (e *Encounter) State() string {
	if e.cleared {
		return StateCleared
	}
	return StateArmed
}

// SetState implements scene.Stateful.
func (e *Encounter) SetState(state string) error {
	switch state {
	case StateArmed:
		e.cleared = false
	case StateCleared:
		e.cleared = true
	default:
		return fmt.Errorf("feature: invalid encounter state %q", state)
	}
	return nil
}

// Cleared reports whether the encounter was won.
func (e *Encounter) Cleared() bool { return e.cleared }

// Enter starts the battle unless it was cleared.
func (e *Encounter) Enter(*scene.Object) {
	if e.cleared {
		return
	}
	e.trigger(event.EncounterTriggered, EncounterRequest{ID: e.ID, Fixed: e})
}

// Exit does nothing.
func (e *Encounter) Exit(*scene.Object) {}
