package event

// Name identifies an event on the bus. The string values are the contract
// with the UI layer and must not change.
type Name string

// Overworld mode switches.
const (
	CombatBegin Name = "combat:begin"
	CombatEnd   Name = "combat:end"
)

// Feature notifications.
const (
	StoreEntered       Name = "store:entered"
	StoreExited        Name = "store:exited"
	DialogEntered      Name = "dialog:entered"
	DialogExited       Name = "dialog:exited"
	TempleEntered      Name = "temple:entered"
	TempleExited       Name = "temple:exited"
	PortalEntered      Name = "portal:entered"
	EncounterTriggered Name = "encounter:triggered"
)

// Combat machine notifications. Each carries a continuation that advances
// the combat machine.
const (
	CombatStart        Name = "combat:start"
	CombatChooseAction Name = "combat:chooseAction"
	CombatTurn         Name = "combat:turn"
	CombatVictory      Name = "combat:victory"
	CombatDefeat       Name = "combat:defeat"
	CombatEscape       Name = "combat:escape"
)

// Scene and map lifecycle.
const (
	ObjectAdded   Name = "object:added"
	ObjectRemoved Name = "object:removed"
	MapLoaded     Name = "map:loaded"
	PlayerMoved   Name = "player:moved"
)
