package world

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// stateDigest hashes the placed world: every tile, its visibility, and its
// objects in placement order. Two worlds fed the same seed and the same
// observer path must produce the same digest on every tick.
func (w *World) stateDigest() string {
	keys := w.scene.Keys()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].GX != keys[j].GX {
			return keys[i].GX < keys[j].GX
		}
		return keys[i].GZ < keys[j].GZ
	})

	h := sha256.New()
	for _, k := range keys {
		t := w.scene.Tile(k)
		fmt.Fprintf(h, "tile %d %d %s %.6f %.6f %.6f %v\n", k.GX, k.GZ, t.Variant, t.Pos.X, t.Pos.Y, t.Pos.Z, t.Hidden)
		for _, o := range t.Objects {
			fmt.Fprintf(h, "obj %s %.6f %.6f %.6f %.6f\n", o.Item, o.Pos.X, o.Pos.Y, o.Pos.Z, o.Yaw)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Scene exposes the placed-tile registry for read-only inspection.
func (w *World) Scene() *Scene { return w.scene }
