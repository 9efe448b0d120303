package sim

import "math"

// Arena dimensions in tile units. The arena is split along the x axis by a
// river at the center line; side 0 owns the low-x half, side 1 the high-x
// half, and every zone mirrors across the center.
const (
	ArenaWidth  = 32
	ArenaHeight = 18

	// CenterX is the mirror line between the two halves.
	CenterX = 16.0

	// River occupies two tile columns straddling the center line.
	riverMinX = 15
	riverMaxX = 16

	// Bridge rows cross the river.
	bridgeTopY    = 4
	bridgeBottomY = 13
)

// Tower placements for side 0; side 1 positions mirror across CenterX.
const (
	KingTowerX     = 2.5
	KingTowerY     = 9.0
	PrincessTowerX = 6.5
	PrincessTopY   = 4.5
	PrincessBotY   = 13.5
)

// TileClass is the classification of one arena tile.
type TileClass uint8

const (
	TileNormal TileClass = iota
	TileRiver
	TileBridge
	TileCrownZone
	TilePrincessZone
	TileBanned
)

func (c TileClass) String() string {
	switch c {
	case TileNormal:
		return "normal"
	case TileRiver:
		return "river"
	case TileBridge:
		return "bridge"
	case TileCrownZone:
		return "crown"
	case TilePrincessZone:
		return "princess"
	case TileBanned:
		return "banned"
	}
	return "unknown"
}

// Classify returns the class of the tile at integer coordinates (tx, ty).
// Anything outside the 32x18 grid is Banned.
func Classify(tx, ty int) TileClass {
	if tx < 0 || tx >= ArenaWidth || ty < 0 || ty >= ArenaHeight {
		return TileBanned
	}

	if tx >= riverMinX && tx <= riverMaxX {
		if ty == bridgeTopY || ty == bridgeBottomY {
			return TileBridge
		}
		return TileRiver
	}

	// Mirror onto the side-0 half so both sides share one set of formulas.
	mx := tx
	if tx > riverMaxX {
		mx = ArenaWidth - 1 - tx
	}

	// Crown zone: the footprint around the king tower.
	if mx >= 1 && mx <= 4 && ty >= 7 && ty <= 10 {
		return TileCrownZone
	}

	// Princess zones: footprints around the two forward towers.
	if mx >= 5 && mx <= 7 && (ty >= 3 && ty <= 5 || ty >= 12 && ty <= 14) {
		return TilePrincessZone
	}

	return TileNormal
}

// ClassifyAt classifies the tile containing a continuous position.
func ClassifyAt(x, y float64) TileClass {
	return Classify(int(math.Floor(x)), int(math.Floor(y)))
}

// Passable reports whether an entity with the given movement domain may
// occupy a tile of the given class. Air units ignore the river entirely;
// ground units need a bridge or a river-crossing capability. Banned tiles
// admit nobody.
func Passable(class TileClass, domain Domain, crossesRiver bool) bool {
	switch class {
	case TileBanned:
		return false
	case TileRiver:
		return domain == DomainAir || crossesRiver
	default:
		return true
	}
}

// PassableAt is Passable for the tile containing a continuous position.
func PassableAt(x, y float64, domain Domain, crossesRiver bool) bool {
	return Passable(ClassifyAt(x, y), domain, crossesRiver)
}

// OwnSide reports which side owns the tile column; the river belongs to
// neither (-1).
func OwnSide(tx int) int {
	if tx < riverMinX {
		return 0
	}
	if tx > riverMaxX {
		return 1
	}
	return -1
}

// KingPosition returns the king tower position for a side.
func KingPosition(side Side) (float64, float64) {
	if side == 0 {
		return KingTowerX, KingTowerY
	}
	return float64(ArenaWidth) - KingTowerX, KingTowerY
}

// PrincessPositions returns the two princess tower positions for a side.
func PrincessPositions(side Side) [2][2]float64 {
	x := PrincessTowerX
	if side == 1 {
		x = float64(ArenaWidth) - PrincessTowerX
	}
	return [2][2]float64{{x, PrincessTopY}, {x, PrincessBotY}}
}

// BridgeCenter returns the center of the bridge on the lane containing y.
func BridgeCenter(y float64) (float64, float64) {
	if y < ArenaHeight/2 {
		return CenterX, float64(bridgeTopY) + 0.5
	}
	return CenterX, float64(bridgeBottomY) + 0.5
}
