// Package decor partitions a tile's top face into non-overlapping square
// cells and hands out one random placement point per cell. One object per
// cell gives a locally even, blue-noise-like scatter without grid alignment.
package decor

import (
	"tilestream.dev/internal/sim/geom"
)

// ZoneConfig describes the cell layout of a tile's generation area.
// Offset percentages shrink the usable rectangle relative to the tile
// footprint so objects never spawn flush against a tile seam.
type ZoneConfig struct {
	SegmentSize         float64
	Gap                 float64
	HorizontalOffsetPct float64
	VerticalOffsetPct   float64
}

// Cell is one square segment of a zone. Occupied cells never free up for the
// lifetime of the owning tile.
type Cell struct {
	Center   geom.Vec3
	Occupied bool
}

// Zone is the generation area of a single tile: a dense xCount by zCount grid
// of cells inset from the tile footprint.
type Zone struct {
	segment        float64
	xCount, zCount int
	cells          []Cell
	free           []int
}

// BuildZone lays out the cell grid for one tile from its rendered bounds.
// Cells are placed at pitch segment+gap starting half a segment in from the
// inset rectangle's corner, all unoccupied.
func BuildZone(b geom.Bounds, cfg ZoneConfig) *Zone {
	insetW := b.Size.X * cfg.HorizontalOffsetPct / 100
	insetD := b.Size.Z * cfg.VerticalOffsetPct / 100

	z := &Zone{
		segment: cfg.SegmentSize,
		xCount:  cellCount(insetW, cfg.SegmentSize, cfg.Gap),
		zCount:  cellCount(insetD, cfg.SegmentSize, cfg.Gap),
	}

	pitch := cfg.SegmentSize + cfg.Gap
	minX := b.Center.X - insetW/2
	minZ := b.Center.Z - insetD/2
	y := b.Top()

	z.cells = make([]Cell, 0, z.xCount*z.zCount)
	z.free = make([]int, 0, z.xCount*z.zCount)
	for zi := 0; zi < z.zCount; zi++ {
		for xi := 0; xi < z.xCount; xi++ {
			z.cells = append(z.cells, Cell{Center: geom.Vec3{
				X: minX + cfg.SegmentSize/2 + float64(xi)*pitch,
				Y: y,
				Z: minZ + cfg.SegmentSize/2 + float64(zi)*pitch,
			}})
			z.free = append(z.free, len(z.cells)-1)
		}
	}
	return z
}

// cellCount greedily fits cells along one axis: keep subtracting a full pitch
// while at least half a segment of length remains. A trailing cell that fits
// by half or more is kept; visual density depends on this exact threshold.
func cellCount(length, segment, gap float64) int {
	if segment <= 0 || segment+gap <= 0 {
		return 0
	}
	count := 0
	for remaining := length; remaining >= segment/2; remaining -= segment + gap {
		count++
	}
	return count
}

func (z *Zone) CellCount() int       { return len(z.cells) }
func (z *Zone) Counts() (x, zc int)  { return z.xCount, z.zCount }
func (z *Zone) FreeCount() int       { return len(z.free) }
func (z *Zone) SegmentSize() float64 { return z.segment }
func (z *Zone) Cell(i int) Cell      { return z.cells[i] }
