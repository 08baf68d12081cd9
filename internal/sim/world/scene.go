package world

import (
	"tilestream.dev/internal/sim/geom"
)

// TileKey is a tile's integer grid coordinate relative to the origin tile.
type TileKey struct {
	GX, GZ int
}

// Spawner is the instantiation collaborator: it turns a placement decision
// into a scene handle. It may fail (missing asset); the failed placement is
// skipped and generation continues.
type Spawner interface {
	Instantiate(kind, variant string, pos geom.Vec3, yaw float64) (uint64, error)
}

// Instantiation kinds.
const (
	KindTile   = "tile"
	KindObject = "object"
)

// handleSpawner is the default collaborator: it only assigns handles. A real
// engine binding would load assets here.
type handleSpawner struct {
	next uint64
}

func (s *handleSpawner) Instantiate(kind, variant string, pos geom.Vec3, yaw float64) (uint64, error) {
	s.next++
	return s.next, nil
}

// ObjectRecord is one placed object on a tile.
type ObjectRecord struct {
	Item   string
	Pos    geom.Vec3
	Yaw    float64
	Handle uint64
}

type Tile struct {
	Key     TileKey
	Variant string
	Pos     geom.Vec3
	Handle  uint64
	Hidden  bool
	Objects []ObjectRecord
}

// Scene tracks every instantiated tile in placement order. Tiles own their
// objects; the streamer never reaches into them.
type Scene struct {
	spawner Spawner
	tiles   map[TileKey]*Tile
	order   []TileKey
}

func NewScene(sp Spawner) *Scene {
	if sp == nil {
		sp = &handleSpawner{}
	}
	return &Scene{
		spawner: sp,
		tiles:   map[TileKey]*Tile{},
	}
}

func (s *Scene) Has(k TileKey) bool {
	_, ok := s.tiles[k]
	return ok
}

func (s *Scene) Tile(k TileKey) *Tile {
	return s.tiles[k]
}

func (s *Scene) Add(t *Tile) {
	s.tiles[t.Key] = t
	s.order = append(s.order, t.Key)
}

func (s *Scene) Len() int {
	return len(s.tiles)
}

// Keys returns tile keys in placement order.
func (s *Scene) Keys() []TileKey {
	out := make([]TileKey, len(s.order))
	copy(out, s.order)
	return out
}
