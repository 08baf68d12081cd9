package decor

import (
	"log"
	"math/rand"

	"tilestream.dev/internal/sim/geom"
)

// Placement asks the scene layer to instantiate one object. Like tile
// requests, the partitioner only decides; instantiation is the caller's job.
type Placement struct {
	Item string
	Pos  geom.Vec3
	Yaw  float64
	Cell int
}

// PlaceObjects picks up to n unoccupied cells uniformly at random, marks each
// occupied, and returns one placement per cell: a uniform point inside the
// cell footprint with a uniform yaw in [0, 360). Runs short without error
// once the zone is full. An empty item pool skips population entirely.
func (z *Zone) PlaceObjects(n int, pool []string, rng *rand.Rand, logger *log.Logger) []Placement {
	if len(pool) == 0 {
		if logger != nil {
			logger.Printf("zone population skipped: empty item pool")
		}
		return nil
	}
	if n > len(z.free) {
		n = len(z.free)
	}

	out := make([]Placement, 0, n)
	for i := 0; i < n; i++ {
		fi := rng.Intn(len(z.free))
		ci := z.free[fi]
		z.free[fi] = z.free[len(z.free)-1]
		z.free = z.free[:len(z.free)-1]
		z.cells[ci].Occupied = true

		c := z.cells[ci].Center
		out = append(out, Placement{
			Item: pool[rng.Intn(len(pool))],
			Pos: geom.Vec3{
				X: c.X + (rng.Float64()-0.5)*z.segment,
				Y: c.Y,
				Z: c.Z + (rng.Float64()-0.5)*z.segment,
			},
			Yaw:  rng.Float64() * 360,
			Cell: ci,
		})
	}
	return out
}
