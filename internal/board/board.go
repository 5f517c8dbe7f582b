// Package board holds the main board-game session: the 60-space map, dice,
// chance cards, and the turn state machine that sequences roll → move →
// resolve for each participant.
package board

import "github.com/partyboard/partyboard/internal/geo"

// TileKind is what happens when a token lands on a space.
type TileKind int

const (
	TileNormal TileKind = iota
	TileDestiny
	TileChance
	TileGame // entering a mini-game
	TileAddMoney
	TileDeductMoney
	TileShop
	TileStar
)

func (k TileKind) String() string {
	switch k {
	case TileNormal:
		return "normal"
	case TileDestiny:
		return "destiny"
	case TileChance:
		return "chance"
	case TileGame:
		return "game"
	case TileAddMoney:
		return "add_money"
	case TileDeductMoney:
		return "deduct_money"
	case TileShop:
		return "shop"
	case TileStar:
		return "star"
	default:
		return "unknown"
	}
}

const (
	// SpaceCount is fixed by the map asset.
	SpaceCount = 60
	tileSize   = 64.0
)

// Board is the static map: space coordinates and per-space tile kinds. All
// clients derive the identical board, so no layout data crosses the wire.
type Board struct {
	coords [SpaceCount]geo.Vec2
	kinds  [SpaceCount]TileKind
}

// NewBoard lays the 60 spaces around a square ring, 15 per side, and assigns
// tile kinds on a fixed repeating pattern.
func NewBoard() *Board {
	b := &Board{}

	const perSide = SpaceCount / 4
	i := 0
	for s := 0; s < perSide; s++ { // bottom edge, left to right
		b.coords[i] = geo.V(float64(s)*tileSize, 0)
		i++
	}
	for s := 0; s < perSide; s++ { // right edge, upward
		b.coords[i] = geo.V(float64(perSide)*tileSize, float64(s)*tileSize)
		i++
	}
	for s := 0; s < perSide; s++ { // top edge, right to left
		b.coords[i] = geo.V(float64(perSide-s)*tileSize, float64(perSide)*tileSize)
		i++
	}
	for s := 0; s < perSide; s++ { // left edge, downward
		b.coords[i] = geo.V(0, float64(perSide-s)*tileSize)
		i++
	}

	for i := range b.kinds {
		switch {
		case i == 0:
			b.kinds[i] = TileNormal // start space
		case i%15 == 7:
			b.kinds[i] = TileStar
		case i%12 == 5:
			b.kinds[i] = TileGame
		case i%6 == 2:
			b.kinds[i] = TileChance
		case i%6 == 4:
			b.kinds[i] = TileAddMoney
		case i%6 == 0:
			b.kinds[i] = TileDeductMoney
		case i%10 == 9:
			b.kinds[i] = TileShop
		default:
			b.kinds[i] = TileNormal
		}
	}
	return b
}

// Coord returns the space's position. Index wraps around the board.
func (b *Board) Coord(index int) geo.Vec2 {
	return b.coords[wrap(index)]
}

func (b *Board) Kind(index int) TileKind {
	return b.kinds[wrap(index)]
}

// Path returns one waypoint per space advanced, from (but excluding) the
// start space through the landing space. Feeding this to a movement buffer
// walks the token tile by tile.
func (b *Board) Path(from, steps int) []geo.Vec2 {
	if steps <= 0 {
		return nil
	}
	path := make([]geo.Vec2, 0, steps)
	for s := 1; s <= steps; s++ {
		path = append(path, b.Coord(from+s))
	}
	return path
}

func wrap(index int) int {
	index %= SpaceCount
	if index < 0 {
		index += SpaceCount
	}
	return index
}
