package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/tilequest/internal/telemetry"
)

const (
	// Default generated map dimensions
	DefaultWidth  = 80
	DefaultHeight = 24

	// BSP parameters
	minRoomSize = 8  // Minimum room dimension
	maxRoomSize = 15 // Maximum room dimension
	minLeafSize = 10 // Minimum BSP leaf size before stopping split
)

// Tile ids used by generated maps.
const (
	TileFloor = 1
	TileWall  = 2
)

// Layer names used by generated maps.
const (
	LayerGround = "ground"
	LayerWalls  = "walls"
)

// generator carves a dungeon into a tile map.
type generator struct {
	m     *TileMap
	walls *Layer
	rng   *rand.Rand
}

// Generate builds a dungeon map using binary space partitioning. The ground
// layer is floor everywhere; the walls layer holds impassable wall tiles with
// rooms and corridors carved out of it. The same rng seed yields the same map.
func Generate(ctx context.Context, name string, width, height int, rng *rand.Rand) *TileMap {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "dungeon.generate")
	defer span.End()

	startTime := time.Now()

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	ground := &Layer{Name: LayerGround, Data: grid(width, height, TileFloor)}
	walls := &Layer{Name: LayerWalls, Data: grid(width, height, TileWall)}
	m := &TileMap{
		Name:   name,
		Width:  width,
		Height: height,
		Zone:   name,
		Tiles: map[int]Properties{
			TileFloor: {PropGlyph: ".", PropPassable: true},
			TileWall:  {PropGlyph: "#", PropPassable: false},
		},
		Layers: []*Layer{ground, walls},
	}
	g := &generator{m: m, walls: walls, rng: rng}

	// Start BSP with the entire map as root
	root := &bspNode{
		x:      1,
		y:      1,
		width:  width - 2,
		height: height - 2,
	}
	g.splitNode(root)
	g.createRooms(root)
	g.connectRooms(root)

	span.SetAttributes(
		attribute.String("map.name", name),
		attribute.Int("dungeon.width", width),
		attribute.Int("dungeon.height", height),
		attribute.Int("dungeon.room_count", len(m.Rooms)),
		attribute.Int64("dungeon.generation_ms", time.Since(startTime).Milliseconds()),
	)
	return m
}

func grid(width, height, id int) [][]int {
	data := make([][]int, height)
	for y := range data {
		data[y] = make([]int, width)
		for x := range data[y] {
			data[y][x] = id
		}
	}
	return data
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	room          *Rect
}

func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (g *generator) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	switch {
	case node.width > node.height && node.width >= minLeafSize*2:
		splitHorizontally = false
	case node.height >= minLeafSize*2:
		splitHorizontally = true
	case node.width >= minLeafSize*2:
		splitHorizontally = false
	default:
		return
	}

	size := node.width
	if splitHorizontally {
		size = node.height
	}
	lo, hi := minLeafSize, size-minLeafSize
	if hi <= lo {
		return
	}
	splitPos := lo + g.rng.Intn(hi-lo+1)

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	g.splitNode(node.left)
	g.splitNode(node.right)
}

// createRooms creates rooms in leaf nodes of the BSP tree.
func (g *generator) createRooms(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		g.createRooms(node.left)
		g.createRooms(node.right)
		return
	}

	roomWidth := minRoomSize + g.rng.Intn(max(1, min(maxRoomSize-minRoomSize+1, node.width-minRoomSize+1)))
	roomHeight := minRoomSize + g.rng.Intn(max(1, min(maxRoomSize-minRoomSize+1, node.height-minRoomSize+1)))

	// Ensure room fits within leaf
	roomWidth = min(roomWidth, node.width-2)
	roomHeight = min(roomHeight, node.height-2)
	if roomWidth < minRoomSize || roomHeight < minRoomSize {
		return
	}

	room := Rect{
		X:      node.x + 1 + g.rng.Intn(max(1, node.width-roomWidth-1)),
		Y:      node.y + 1 + g.rng.Intn(max(1, node.height-roomHeight-1)),
		Width:  roomWidth,
		Height: roomHeight,
	}
	node.room = &room
	g.m.Rooms = append(g.m.Rooms, room)

	for y := room.Y; y < room.Y+room.Height; y++ {
		for x := room.X; x < room.X+room.Width; x++ {
			g.carve(x, y)
		}
	}
}

// connectRooms connects sibling subtrees with corridors.
func (g *generator) connectRooms(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}
	g.connectRooms(node.left)
	g.connectRooms(node.right)

	left, right := roomOf(node.left), roomOf(node.right)
	if left != nil && right != nil {
		g.carveCorridor(left.Center(), right.Center())
	}
}

// roomOf returns any room from a subtree.
func roomOf(node *bspNode) *Rect {
	if node == nil {
		return nil
	}
	if node.room != nil {
		return node.room
	}
	if room := roomOf(node.left); room != nil {
		return room
	}
	return roomOf(node.right)
}

func (g *generator) carveCorridor(a, b Point) {
	// Randomly choose to go horizontal-then-vertical or vertical-then-horizontal
	if g.rng.Intn(2) == 0 {
		g.carveHorizontal(a.X, b.X, a.Y)
		g.carveVertical(a.Y, b.Y, b.X)
	} else {
		g.carveVertical(a.Y, b.Y, a.X)
		g.carveHorizontal(a.X, b.X, b.Y)
	}
}

func (g *generator) carveHorizontal(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		g.carve(x, y)
	}
}

func (g *generator) carveVertical(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		g.carve(x, y)
	}
}

// carve clears the wall at (x, y), leaving the border intact.
func (g *generator) carve(x, y int) {
	if x > 0 && x < g.m.Width-1 && y > 0 && y < g.m.Height-1 {
		g.walls.Data[y][x] = 0
	}
}
