package stream

import (
	"fmt"
	"log"
	"math/rand"

	"tilestream.dev/internal/sim/geom"
)

// Axis is one of the four independent outward growth directions from the
// origin tile.
type Axis int

const (
	AxisPosX Axis = iota
	AxisNegX
	AxisPosZ
	AxisNegZ
)

// tickOrder is the fixed evaluation order within a tick. Backfill reads the
// perpendicular counters as they are at that moment, so the order is part of
// the observable behavior and must not change.
var tickOrder = [4]Axis{AxisPosX, AxisNegX, AxisPosZ, AxisNegZ}

func (a Axis) String() string {
	switch a {
	case AxisPosX:
		return "+X"
	case AxisNegX:
		return "-X"
	case AxisPosZ:
		return "+Z"
	case AxisNegZ:
		return "-Z"
	}
	return "?"
}

func (a Axis) Sign() float64 {
	if a == AxisNegX || a == AxisNegZ {
		return -1
	}
	return 1
}

// AlongX reports whether the axis grows along the X coordinate.
func (a Axis) AlongX() bool {
	return a == AxisPosX || a == AxisNegX
}

func perpendicular(a Axis) [2]Axis {
	if a.AlongX() {
		return [2]Axis{AxisPosZ, AxisNegZ}
	}
	return [2]Axis{AxisPosX, AxisNegX}
}

// DirectionState tracks one axis: the outward-most generated coordinate and
// how many tiles have been placed along it. Generated only increases; Edge
// moves away from the origin by exactly one tile extent per generation.
type DirectionState struct {
	Edge      float64
	Generated int
}

// TileRequest asks the scene layer to instantiate one tile. The streamer
// decides variant and position; it never touches the scene itself.
type TileRequest struct {
	Variant  string
	Pos      geom.Vec3
	Axis     Axis
	Backfill bool
}

// Streamer grows a rectangular tile grid around the origin, one axis at a
// time, as the observer approaches each edge.
type Streamer struct {
	origin     geom.Vec3
	tileExtent float64
	genDist    float64
	variants   []string

	dirs [4]DirectionState

	rng *rand.Rand
	log *log.Logger
}

func New(origin geom.Vec3, tileExtent, genDist float64, variants []string, rng *rand.Rand, logger *log.Logger) (*Streamer, error) {
	if tileExtent <= 0 {
		return nil, fmt.Errorf("stream: tile extent must be positive, got %v", tileExtent)
	}
	if genDist <= 0 {
		return nil, fmt.Errorf("stream: generation distance must be positive, got %v", genDist)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("stream: empty tile variant pool")
	}
	if rng == nil {
		return nil, fmt.Errorf("stream: nil rand source")
	}
	s := &Streamer{
		origin:     origin,
		tileExtent: tileExtent,
		genDist:    genDist,
		variants:   variants,
		rng:        rng,
		log:        logger,
	}
	for a := AxisPosX; a <= AxisNegZ; a++ {
		if a.AlongX() {
			s.dirs[a].Edge = origin.X
		} else {
			s.dirs[a].Edge = origin.Z
		}
	}
	return s, nil
}

// Tick evaluates all four axes against the observer position and returns the
// tile requests produced this tick, in generation order. An axis fires when
// the observer comes within the generation distance of the coordinate the
// next tile would occupy. Zero to four axes may fire; each fires at most
// once because a generation moves that coordinate a full tile extent away.
func (s *Streamer) Tick(observer geom.Vec3) []TileRequest {
	if observer.Y < s.origin.Y {
		// Observer fell below the origin plane: out of the world.
		return nil
	}
	var reqs []TileRequest
	for _, a := range tickOrder {
		coord := observer.X
		if !a.AlongX() {
			coord = observer.Z
		}
		next := s.dirs[a].Edge + a.Sign()*s.tileExtent
		if geom.AbsFloat(coord-next) < s.genDist {
			reqs = append(reqs, s.generate(a)...)
		}
	}
	return reqs
}

// generate advances one axis by a tile and emits the new edge tile plus the
// corner backfill for the perpendicular pair. Each perpendicular axis has
// Generated tiles already placed outward; combining the fresh edge with every
// one of those offsets keeps the overall grid a complete rectangle even
// though the axes grow independently.
func (s *Streamer) generate(a Axis) []TileRequest {
	if len(s.variants) == 0 {
		if s.log != nil {
			s.log.Printf("generate %s skipped: empty tile variant pool", a)
		}
		return nil
	}

	d := &s.dirs[a]
	d.Edge += a.Sign() * s.tileExtent
	d.Generated++

	reqs := []TileRequest{{
		Variant: s.pickVariant(),
		Pos:     s.tilePos(a, 0),
		Axis:    a,
	}}
	for _, p := range perpendicular(a) {
		for i := 1; i <= s.dirs[p].Generated; i++ {
			reqs = append(reqs, TileRequest{
				Variant:  s.pickVariant(),
				Pos:      s.tilePos(a, p.Sign()*float64(i)*s.tileExtent),
				Axis:     a,
				Backfill: true,
			})
		}
	}
	return reqs
}

// tilePos places a tile at the axis's current edge, offset along the
// perpendicular coordinate. perpOffset 0 is the straight-line tile at the
// origin's own perpendicular coordinate.
func (s *Streamer) tilePos(a Axis, perpOffset float64) geom.Vec3 {
	if a.AlongX() {
		return geom.Vec3{X: s.dirs[a].Edge, Y: s.origin.Y, Z: s.origin.Z + perpOffset}
	}
	return geom.Vec3{X: s.origin.X + perpOffset, Y: s.origin.Y, Z: s.dirs[a].Edge}
}

func (s *Streamer) pickVariant() string {
	return s.variants[s.rng.Intn(len(s.variants))]
}

// Dir returns a copy of one axis's state.
func (s *Streamer) Dir(a Axis) DirectionState {
	return s.dirs[a]
}

func (s *Streamer) Origin() geom.Vec3   { return s.origin }
func (s *Streamer) TileExtent() float64 { return s.tileExtent }

// GridKey maps a tile position onto integer grid coordinates relative to the
// origin tile. Used by the scene registry and state digest.
func (s *Streamer) GridKey(pos geom.Vec3) (gx, gz int) {
	gx = int(roundAway((pos.X - s.origin.X) / s.tileExtent))
	gz = int(roundAway((pos.Z - s.origin.Z) / s.tileExtent))
	return gx, gz
}

func roundAway(v float64) float64 {
	if v < 0 {
		return float64(int(v - 0.5))
	}
	return float64(int(v + 0.5))
}
