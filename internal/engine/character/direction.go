package character

import (
	"math/rand/v2"

	"github.com/Faultbox/casper/pkg/math"
)

// Direction is an 8-way compass facing. The vertical code always precedes
// the horizontal one ("SW", never "WS").
type Direction string

// Facing directions.
const (
	DirNone Direction = ""
	DirS    Direction = "S"
	DirSW   Direction = "SW"
	DirW    Direction = "W"
	DirNW   Direction = "NW"
	DirN    Direction = "N"
	DirNE   Direction = "NE"
	DirE    Direction = "E"
	DirSE   Direction = "SE"
)

// Directions lists the facings in sprite-sheet order.
var Directions = [8]Direction{DirS, DirSW, DirW, DirNW, DirN, DirNE, DirE, DirSE}

// DeadZone is the per-axis magnitude below which a component is ignored.
const DeadZone = 0.1

// Index returns the sprite-sheet index of d (S=0 ... SE=7), or -1 for DirNone
// and unknown codes.
func (d Direction) Index() int {
	for i, dir := range Directions {
		if dir == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the eight facings.
func (d Direction) Valid() bool {
	return d.Index() >= 0
}

// ResolveDirection maps a vector in screen space (Y down) to a facing.
// Each axis is checked against DeadZone on its own; if both are inside it
// the result is DirNone and callers keep their previous facing.
func ResolveDirection(v math.Vec2) Direction {
	var dir Direction
	if v.Y > DeadZone || v.Y < -DeadZone {
		if v.Y < 0 {
			dir += DirN
		} else {
			dir += DirS
		}
	}
	if v.X > DeadZone || v.X < -DeadZone {
		if v.X < 0 {
			dir += DirW
		} else {
			dir += DirE
		}
	}
	return dir
}

// RandomSouth returns SW, S or SE with equal probability.
func RandomSouth(r *rand.Rand) Direction {
	x := float32(r.IntN(3) - 1)
	return ResolveDirection(math.V2(x, 1))
}
