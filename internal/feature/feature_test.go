package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/tilequest/internal/event"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		want    Kind
		wantErr bool
	}{
		{"sign", KindSign, false},
		{"Dialog", KindDialog, false},
		{" store ", KindStore, false},
		{"temple", KindTemple, false},
		{"portal", KindPortal, false},
		{"encounter", KindEncounter, false},
		{"block", KindBlock, false},
		{"combat", KindUnknown, true},
		{"", KindUnknown, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.name)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) = %v, %v, want %v (err %v)", tt.name, got, err, tt.want, tt.wantErr)
		}
		if err != nil {
			assert.ErrorIs(t, err, ErrUnknownKind)
		}
	}
}

func TestKindWalkable(t *testing.T) {
	for _, k := range []Kind{KindSign, KindDialog, KindStore, KindTemple, KindPortal, KindEncounter} {
		if !k.Walkable() {
			t.Errorf("%v.Walkable() = false, want true", k)
		}
	}
	for _, k := range []Kind{KindBlock, KindUnknown, Kind(99)} {
		if k.Walkable() {
			t.Errorf("%v.Walkable() = true, want false", k)
		}
	}
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestBuild(t *testing.T) {
	tests := []struct {
		def  world.ObjectDef
		kind Kind
	}{
		{world.ObjectDef{Name: "notice", Type: "sign", Properties: world.Properties{"text": "Keep out"}}, KindSign},
		{world.ObjectDef{Name: "elder", Type: "dialog", Properties: world.Properties{"title": "Elder", "text": "Hi"}}, KindDialog},
		{world.ObjectDef{Name: "armory", Type: "store", Properties: world.Properties{"groups": []any{"weapons"}, "level": 2}}, KindStore},
		{world.ObjectDef{Name: "shrine", Type: "temple", Properties: world.Properties{"cost": 15}}, KindTemple},
		{world.ObjectDef{Name: "gate", Type: "portal", Properties: world.Properties{"map": "cave"}}, KindPortal},
		{world.ObjectDef{Name: "boss", Type: "encounter"}, KindEncounter},
		{world.ObjectDef{Name: "rock", Type: "block"}, KindBlock},
		{world.ObjectDef{Name: "statue", Type: "statue"}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.def.Name, func(t *testing.T) {
			o := Build(tt.def)
			assert.Equal(t, ObjectKind, o.Kind)
			assert.Equal(t, tt.def.Name, o.Name)

			f, ok := scene.ComponentOf[Component](o)
			require.True(t, ok)
			assert.Equal(t, tt.kind, f.Kind())
			assert.Equal(t, tt.def.Type, f.TypeName())
		})
	}
}

func TestBuildReadsProperties(t *testing.T) {
	store, ok := scene.ComponentOf[*Store](Build(world.ObjectDef{
		Name: "armory", Type: "store", X: 4, Y: 5, Width: 2,
		Properties: world.Properties{"groups": []any{"weapons", "armor"}, "category": "gear", "level": 3},
	}))
	require.True(t, ok)
	assert.Equal(t, "armory", store.Name)
	assert.Equal(t, []string{"weapons", "armor"}, store.Groups)
	assert.Equal(t, "gear", store.Category)
	assert.Equal(t, 3, store.Level)

	o := Build(world.ObjectDef{Name: "gate", Type: "portal", X: 1, Y: 1,
		Properties: world.Properties{"map": "cave", "targetX": 7, "targetY": 8, "passable": true}})
	portal, ok := scene.ComponentOf[*Portal](o)
	require.True(t, ok)
	assert.Equal(t, "cave", portal.Map)
	assert.Equal(t, &world.Point{X: 7, Y: 8}, portal.Target)
	assert.True(t, portal.Passable())
}

func TestPortalWithoutMapFailsToConnect(t *testing.T) {
	s := scene.New(event.NewBus())
	err := s.AddObject(Build(world.ObjectDef{Name: "gate", Type: "portal"}))
	assert.ErrorIs(t, err, ErrMissingTarget)
	assert.Zero(t, s.Len())
}

func TestEnterTriggersWireEvents(t *testing.T) {
	bus := event.NewBus()
	s := scene.New(bus)
	var got []event.Name
	var payloads []any
	for _, name := range []event.Name{
		event.DialogEntered, event.DialogExited, event.StoreEntered, event.StoreExited,
		event.TempleEntered, event.PortalEntered,
	} {
		bus.On(name, func(ev *event.Event) {
			got = append(got, ev.Name)
			payloads = append(payloads, ev.Payload)
		}, nil)
	}

	dialog := Build(world.ObjectDef{Name: "elder", Type: "dialog", Properties: world.Properties{"title": "Elder", "text": "Hi", "icon": "elder.png"}})
	store := Build(world.ObjectDef{Name: "armory", Type: "store"})
	temple := Build(world.ObjectDef{Name: "shrine", Type: "temple"})
	portal := Build(world.ObjectDef{Name: "gate", Type: "portal", Properties: world.Properties{"map": "cave"}})
	for _, o := range []*scene.Object{dialog, store, temple, portal} {
		require.NoError(t, s.AddObject(o))
		in, ok := scene.ComponentOf[scene.Interactable](o)
		require.True(t, ok)
		in.Enter(nil)
		in.Exit(nil)
	}

	assert.Equal(t, []event.Name{
		event.DialogEntered, event.DialogExited,
		event.StoreEntered, event.StoreExited,
		event.TempleEntered,
		event.PortalEntered,
	}, got)
	assert.Equal(t, DialogInfo{Title: "Elder", Text: "Hi", Icon: "elder.png"}, payloads[0])
	assert.Equal(t, PortalRequest{Map: "cave"}, payloads[5])
}

func TestEncounterFiresUntilCleared(t *testing.T) {
	bus := event.NewBus()
	s := scene.New(bus)
	var reqs []EncounterRequest
	bus.On(event.EncounterTriggered, func(ev *event.Event) { reqs = append(reqs, ev.Payload.(EncounterRequest)) }, nil)

	o := Build(world.ObjectDef{Name: "boss", Type: "encounter", Properties: world.Properties{"id": "goblin-king"}})
	require.NoError(t, s.AddObject(o))
	enc, ok := scene.ComponentOf[*Encounter](o)
	require.True(t, ok)

	enc.Enter(nil)
	require.Len(t, reqs, 1)
	assert.Equal(t, "goblin-king", reqs[0].ID)
	assert.Same(t, enc, reqs[0].Fixed)

	var stateful scene.Stateful = enc
	require.NoError(t, stateful.SetState(StateCleared))
	assert.Equal(t, StateCleared, stateful.State())
	enc.Enter(nil)
	assert.Len(t, reqs, 1)

	assert.Error(t, enc.SetState("exploded"))
}
