// Package indexdb keeps a sqlite read-model of the placement event stream
// for the stats endpoint and offline inspection. It is write-behind and
// never feeds back into the sim, so losing it cannot affect determinism.
package indexdb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"tilestream.dev/internal/protocol"
)

type SQLiteIndex struct {
	db  *sql.DB
	log *log.Logger

	ch   chan protocol.Event
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

const schema = `
CREATE TABLE IF NOT EXISTS placements (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	tick        INTEGER NOT NULL,
	type        TEXT    NOT NULL,
	gx          INTEGER NOT NULL,
	gz          INTEGER NOT NULL,
	variant     TEXT,
	item        TEXT,
	x           REAL NOT NULL,
	y           REAL NOT NULL,
	z           REAL NOT NULL,
	yaw         REAL,
	backfill    INTEGER NOT NULL DEFAULT 0,
	recorded_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_placements_type ON placements(type);
CREATE INDEX IF NOT EXISTS idx_placements_tile ON placements(gx, gz);
`

func Open(path string, logger *log.Logger) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("indexdb schema: %w", err)
	}

	idx := &SQLiteIndex{
		db:  db,
		log: logger,
		ch:  make(chan protocol.Event, 1024),
	}
	idx.wg.Add(1)
	go idx.writer()
	return idx, nil
}

// WriteEvent implements world.EventSink. It never blocks the world loop: if
// the queue is full the event is counted as dropped and skipped.
func (x *SQLiteIndex) WriteEvent(ev protocol.Event) error {
	if x.closed.Load() {
		return nil
	}
	select {
	case x.ch <- ev:
	default:
		x.dropped.Add(1)
	}
	return nil
}

func (x *SQLiteIndex) Dropped() uint64 { return x.dropped.Load() }

func (x *SQLiteIndex) writer() {
	defer x.wg.Done()
	for ev := range x.ch {
		backfill := 0
		if ev.Backfill {
			backfill = 1
		}
		_, err := x.db.Exec(
			`INSERT INTO placements (tick, type, gx, gz, variant, item, x, y, z, yaw, backfill, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			ev.Tick, ev.Type, ev.Tile[0], ev.Tile[1], ev.Variant, ev.Item,
			ev.Pos[0], ev.Pos[1], ev.Pos[2], ev.Yaw, backfill,
			time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil && x.log != nil {
			x.log.Printf("indexdb insert: %v", err)
		}
	}
}

func (x *SQLiteIndex) Close() error {
	var err error
	x.once.Do(func() {
		x.closed.Store(true)
		close(x.ch)
		x.wg.Wait()
		err = x.db.Close()
	})
	return err
}

type Summary struct {
	Tiles    int64            `json:"tiles"`
	Backfill int64            `json:"backfill_tiles"`
	Objects  int64            `json:"objects"`
	Variants map[string]int64 `json:"variants"`
	Items    map[string]int64 `json:"items"`
	Dropped  uint64           `json:"dropped"`
}

// Summarize reads aggregate placement counts. Called from HTTP handlers, not
// the world loop.
func (x *SQLiteIndex) Summarize(ctx context.Context) (Summary, error) {
	s := Summary{
		Variants: map[string]int64{},
		Items:    map[string]int64{},
		Dropped:  x.dropped.Load(),
	}

	row := x.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*) FILTER (WHERE type = ?),
			COUNT(*) FILTER (WHERE type = ? AND backfill = 1),
			COUNT(*) FILTER (WHERE type = ?)
		 FROM placements`,
		protocol.EventTilePlaced, protocol.EventTilePlaced, protocol.EventObjectPlaced)
	if err := row.Scan(&s.Tiles, &s.Backfill, &s.Objects); err != nil {
		return s, err
	}

	rows, err := x.db.QueryContext(ctx,
		`SELECT variant, COUNT(*) FROM placements WHERE type = ? GROUP BY variant`,
		protocol.EventTilePlaced)
	if err != nil {
		return s, err
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		var n int64
		if err := rows.Scan(&v, &n); err != nil {
			return s, err
		}
		s.Variants[v] = n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}

	irows, err := x.db.QueryContext(ctx,
		`SELECT item, COUNT(*) FROM placements WHERE type = ? GROUP BY item`,
		protocol.EventObjectPlaced)
	if err != nil {
		return s, err
	}
	defer irows.Close()
	for irows.Next() {
		var v string
		var n int64
		if err := irows.Scan(&v, &n); err != nil {
			return s, err
		}
		s.Items[v] = n
	}
	return s, irows.Err()
}
