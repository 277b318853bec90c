package ui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/tilequest/internal/combat"
	"github.com/samdwyer/tilequest/internal/entity"
	"github.com/samdwyer/tilequest/internal/feature"
	"github.com/samdwyer/tilequest/internal/gamedata"
	"github.com/samdwyer/tilequest/internal/player"
	"github.com/samdwyer/tilequest/internal/scene"
	"github.com/samdwyer/tilequest/internal/world"
)

// statusLines is the number of rows below the map view.
const statusLines = 3

// Frame is everything drawn in one render.
type Frame struct {
	Scene  *scene.Scene
	Party  *entity.Party
	Combat *combat.Combat // Nil outside combat
	Prompt string
}

// Renderer handles drawing the game to the screen.
type Renderer struct {
	screen *Screen
	colors map[string]tcell.Color
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen, colors: make(map[string]tcell.Color)}
}

// Render draws the map, its features, the party and the status lines.
func (r *Renderer) Render(f Frame) {
	r.screen.Clear()
	width, height := r.screen.Size()
	viewH := max(height-statusLines, 0)

	m := scene.ActiveMap(f.Scene)
	var origin world.Point
	if p, ok := scene.FindComponent[*player.Player](f.Scene); ok && m != nil {
		origin = camera(p.Position(), m, width, viewH)
	}

	if m != nil {
		r.drawMap(m, origin, width, viewH)
	}
	r.drawObjects(f.Scene, origin, width, viewH)

	r.drawParty(f.Party, viewH)
	if f.Combat != nil {
		r.drawCombat(f.Combat, viewH+1)
	}
	r.screen.DrawText(0, viewH+2, f.Prompt, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	r.screen.Show()
}

// camera returns the map point drawn at the top-left corner, keeping the
// player centered where the map is larger than the view.
func camera(at world.Point, m *world.TileMap, viewW, viewH int) world.Point {
	axis := func(pos, size, view int) int {
		if size <= view {
			return 0
		}
		return min(max(pos-view/2, 0), size-view)
	}
	return world.Pt(axis(at.X, m.Width, viewW), axis(at.Y, m.Height, viewH))
}

func (r *Renderer) drawMap(m *world.TileMap, origin world.Point, viewW, viewH int) {
	for sy := 0; sy < viewH; sy++ {
		for sx := 0; sx < viewW; sx++ {
			x, y := origin.X+sx, origin.Y+sy
			if !m.InBounds(x, y) {
				continue
			}
			style := tcell.StyleDefault.Foreground(r.color(m.ColorAt(x, y)))
			r.screen.SetContent(sx, sy, m.GlyphAt(x, y), style)
		}
	}
}

func (r *Renderer) drawObjects(s *scene.Scene, origin world.Point, viewW, viewH int) {
	var players []*scene.Object
	for _, o := range s.Objects() {
		if o.Kind == player.ObjectKind {
			players = append(players, o)
			continue
		}
		f, ok := scene.ComponentOf[feature.Component](o)
		if !ok {
			continue
		}
		glyph, color, visible := featureGlyph(f)
		if !visible {
			continue
		}
		b := o.Bounds()
		for y := b.Y; y < b.Y+b.Height; y++ {
			for x := b.X; x < b.X+b.Width; x++ {
				r.put(x-origin.X, y-origin.Y, viewW, viewH, glyph, tcell.StyleDefault.Foreground(color))
			}
		}
	}

	style := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	for _, o := range players {
		r.put(o.Point.X-origin.X, o.Point.Y-origin.Y, viewW, viewH, entity.Symbol, style)
	}
}

func (r *Renderer) put(x, y, viewW, viewH int, glyph rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= viewW || y >= viewH {
		return
	}
	r.screen.SetContent(x, y, glyph, style)
}

func (r *Renderer) drawParty(party *entity.Party, y int) {
	if party == nil {
		return
	}
	parts := []string{fmt.Sprintf("Gold %d", party.Gold)}
	for _, m := range party.Members {
		parts = append(parts, fmt.Sprintf("%s %c L%d %d/%d", m.Name, m.Symbol, m.Level, m.HP, m.MaxHP))
	}
	r.screen.DrawText(0, y, strings.Join(parts, " | "), tcell.StyleDefault.Foreground(tcell.ColorGreen))
}

func (r *Renderer) drawCombat(c *combat.Combat, y int) {
	parts := make([]string, 0, len(c.Encounter.Enemies))
	for _, e := range c.Encounter.Enemies {
		if e.IsAlive() {
			parts = append(parts, fmt.Sprintf("%s %d/%d", e.GetName(), e.GetHP(), e.GetMaxHP()))
		}
	}
	r.screen.DrawText(0, y, "vs "+strings.Join(parts, ", "), tcell.StyleDefault.Foreground(tcell.ColorRed))
}

func (r *Renderer) color(hex string) tcell.Color {
	if hex == "" {
		return tcell.ColorGray
	}
	if c, ok := r.colors[hex]; ok {
		return c
	}
	c, err := gamedata.ParseColor(hex)
	if err != nil {
		c = tcell.ColorGray
	}
	r.colors[hex] = c
	return c
}

// featureGlyph returns how a feature is drawn. Cleared encounters are hidden.
func featureGlyph(f feature.Component) (rune, tcell.Color, bool) {
	switch f.Kind() {
	case feature.KindSign:
		return '?', tcell.ColorWhite, true
	case feature.KindDialog:
		return '@', tcell.ColorAqua, true
	case feature.KindStore:
		return '$', tcell.ColorYellow, true
	case feature.KindTemple:
		return '+', tcell.ColorWhite, true
	case feature.KindPortal:
		return '>', tcell.ColorFuchsia, true
	case feature.KindEncounter:
		if enc, ok := f.(*feature.Encounter); ok && enc.Cleared() {
			return 0, 0, false
		}
		return 'X', tcell.ColorRed, true
	case feature.KindBlock:
		return '#', tcell.ColorGray, true
	default:
		return '*', tcell.ColorGray, true
	}
}
