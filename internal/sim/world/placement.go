package world

import (
	"encoding/json"

	"tilestream.dev/internal/protocol"
	"tilestream.dev/internal/sim/decor"
	"tilestream.dev/internal/sim/geom"
	"tilestream.dev/internal/sim/stream"
)

// placeTile instantiates one requested tile, builds its zone and populates it
// with objects. Instantiation failures skip the single placement; the
// streamer's bookkeeping has already advanced and stays consistent.
func (w *World) placeTile(tick uint64, req stream.TileRequest) {
	gx, gz := w.streamer.GridKey(req.Pos)
	key := TileKey{GX: gx, GZ: gz}
	if w.scene.Has(key) {
		return
	}

	handle, err := w.scene.spawner.Instantiate(KindTile, req.Variant, req.Pos, 0)
	if err != nil {
		if w.log != nil {
			w.log.Printf("instantiate tile %s at (%d,%d): %v", req.Variant, gx, gz, err)
		}
		return
	}

	tile := &Tile{Key: key, Variant: req.Variant, Pos: req.Pos, Handle: handle}
	w.scene.Add(tile)
	w.pushEvent(protocol.Event{
		Tick:     tick,
		Type:     protocol.EventTilePlaced,
		Tile:     [2]int{gx, gz},
		Variant:  req.Variant,
		Pos:      [3]float64{req.Pos.X, req.Pos.Y, req.Pos.Z},
		Backfill: req.Backfill,
	})

	zone := decor.BuildZone(geom.Bounds{
		Center: req.Pos,
		Size:   geom.Vec3{X: w.cfg.TileExtent, Z: w.cfg.TileExtent},
	}, decor.ZoneConfig{
		SegmentSize:         w.cfg.SegmentSize,
		Gap:                 w.cfg.SegmentGap,
		HorizontalOffsetPct: w.cfg.HorizontalOffsetPct,
		VerticalOffsetPct:   w.cfg.VerticalOffsetPct,
	})
	w.zones[key] = zone

	for _, p := range zone.PlaceObjects(w.cfg.ObjectsPerTile, w.cfg.Items, w.rng, w.log) {
		oh, err := w.scene.spawner.Instantiate(KindObject, p.Item, p.Pos, p.Yaw)
		if err != nil {
			if w.log != nil {
				w.log.Printf("instantiate object %s on (%d,%d): %v", p.Item, gx, gz, err)
			}
			continue
		}
		tile.Objects = append(tile.Objects, ObjectRecord{Item: p.Item, Pos: p.Pos, Yaw: p.Yaw, Handle: oh})
		w.pushEvent(protocol.Event{
			Tick: tick,
			Type: protocol.EventObjectPlaced,
			Tile: [2]int{gx, gz},
			Item: p.Item,
			Pos:  [3]float64{p.Pos.X, p.Pos.Y, p.Pos.Z},
			Yaw:  p.Yaw,
		})
	}
}

// cullTiles toggles tile visibility against the hide distance. Pure
// bookkeeping over already-placed tiles; the streamer is not involved.
func (w *World) cullTiles(tick uint64) {
	if w.cfg.HideDistance <= 0 {
		return
	}
	for _, key := range w.scene.Keys() {
		t := w.scene.Tile(key)
		far := geom.DistXZ(t.Pos, w.observerPos) > w.cfg.HideDistance
		if far == t.Hidden {
			continue
		}
		t.Hidden = far
		typ := protocol.EventTileShown
		if far {
			typ = protocol.EventTileHidden
		}
		w.pushEvent(protocol.Event{
			Tick: tick,
			Type: typ,
			Tile: [2]int{key.GX, key.GZ},
			Pos:  [3]float64{t.Pos.X, t.Pos.Y, t.Pos.Z},
		})
	}
}

func (w *World) pushEvent(ev protocol.Event) {
	w.nextCursor++
	w.events = append(w.events, protocol.EventBatchItem{Cursor: w.nextCursor, Event: ev})
	if len(w.events) > w.cfg.EventBuffer {
		w.events = w.events[len(w.events)-w.cfg.EventBuffer:]
	}
	for _, s := range w.sinks {
		if err := s.WriteEvent(ev); err != nil && w.log != nil {
			w.log.Printf("event sink: %v", err)
		}
	}
}

// flushSessions sends each session the events past its cursor. A session with
// a full out queue keeps its cursor and catches up on a later tick.
func (w *World) flushSessions(tick uint64) {
	for _, s := range w.sessions {
		batch := w.eventsSince(s.cursor)
		if len(batch) == 0 {
			continue
		}
		msg := protocol.EventsMsg{
			Type:            protocol.TypeEvents,
			ProtocolVersion: protocol.Version,
			Tick:            tick,
			Events:          batch,
			NextCursor:      w.nextCursor,
		}
		b, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		select {
		case s.Out <- b:
			s.cursor = w.nextCursor
		default:
		}
	}
}

func (w *World) eventsSince(cursor uint64) []protocol.EventBatchItem {
	// The ring is cursor-ordered; find the first entry past the cursor.
	lo := 0
	hi := len(w.events)
	for lo < hi {
		mid := (lo + hi) / 2
		if w.events[mid].Cursor <= cursor {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(w.events) {
		return nil
	}
	out := make([]protocol.EventBatchItem, len(w.events)-lo)
	copy(out, w.events[lo:])
	return out
}
