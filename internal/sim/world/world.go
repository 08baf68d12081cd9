package world

import (
	"fmt"
	"log"
	"math/rand"
	"sync/atomic"

	"tilestream.dev/internal/protocol"
	"tilestream.dev/internal/sim/decor"
	"tilestream.dev/internal/sim/geom"
	"tilestream.dev/internal/sim/stream"
	"tilestream.dev/internal/sim/tuning"
)

type WorldConfig struct {
	ID         string
	TickRateHz int
	Seed       int64

	Origin             geom.Vec3
	TileExtent         float64
	GenerationDistance float64
	HideDistance       float64
	TileVariants       []string

	ObjectsPerTile      int
	SegmentSize         float64
	SegmentGap          float64
	HorizontalOffsetPct float64
	VerticalOffsetPct   float64
	Items               []string

	// EventBuffer bounds the in-memory event ring served to sessions.
	EventBuffer int
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "world_1"
	}
	if c.TickRateHz <= 0 {
		c.TickRateHz = 10
	}
	if c.TileExtent <= 0 {
		c.TileExtent = 10
	}
	if c.GenerationDistance <= 0 {
		c.GenerationDistance = 2
	}
	if c.HideDistance <= 0 {
		c.HideDistance = 40
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 4096
	}
}

// FromTuning maps the tuning file onto a world config.
func FromTuning(id string, t tuning.Tuning) WorldConfig {
	return WorldConfig{
		ID:                  id,
		TickRateHz:          t.TickRateHz,
		Seed:                t.Seed,
		TileExtent:          t.TileExtent,
		GenerationDistance:  t.GenerationDistance,
		HideDistance:        t.HideDistance,
		TileVariants:        t.TileVariants,
		ObjectsPerTile:      t.ObjectsPerTile,
		SegmentSize:         t.SegmentSize,
		SegmentGap:          t.SegmentGap,
		HorizontalOffsetPct: t.HorizontalOffsetPct,
		VerticalOffsetPct:   t.VerticalOffsetPct,
		Items:               t.Items,
	}
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// MoveEnvelope carries an observer position update into the world loop.
type MoveEnvelope struct {
	ObserverID string
	Pos        geom.Vec3
}

// EventSink receives every placement event, off the hot path of session
// delivery. Used for the JSONL log and the sqlite index.
type EventSink interface {
	WriteEvent(ev protocol.Event) error
}

type session struct {
	ObserverID string
	Out        chan []byte
	cursor     uint64
}

// World is a single-threaded authoritative simulation. All state must be
// accessed only from the world loop goroutine (or via StepOnce in tests).
type World struct {
	cfg WorldConfig
	log *log.Logger
	rng *rand.Rand

	tick atomic.Uint64

	streamer *stream.Streamer
	scene    *Scene
	zones    map[TileKey]*decor.Zone

	// The first session to join becomes the driving observer; later sessions
	// are spectators that only receive events.
	observerID  string
	observerPos geom.Vec3
	hasObserver bool
	warnedInert bool

	sessions map[string]*session

	events     []protocol.EventBatchItem
	nextCursor uint64

	sinks []EventSink

	join  chan JoinRequest
	leave chan string
	moves chan MoveEnvelope
	stop  chan struct{}

	nextObserverNum atomic.Uint64
}

func New(cfg WorldConfig, logger *log.Logger) (*World, error) {
	return NewWithRand(cfg, logger, nil)
}

// NewWithRand lets tests supply a deterministic random source. A nil rng
// falls back to one seeded from cfg.Seed; all randomness (variant picks, cell
// picks, in-cell offsets, yaw) draws from this single source.
func NewWithRand(cfg WorldConfig, logger *log.Logger, rng *rand.Rand) (*World, error) {
	cfg.applyDefaults()
	if len(cfg.TileVariants) == 0 {
		return nil, fmt.Errorf("world: empty tile variant pool")
	}
	if len(cfg.Items) == 0 {
		return nil, fmt.Errorf("world: empty item pool")
	}
	if cfg.GenerationDistance >= cfg.TileExtent {
		return nil, fmt.Errorf("world: generation distance %v must be below tile extent %v", cfg.GenerationDistance, cfg.TileExtent)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}

	st, err := stream.New(cfg.Origin, cfg.TileExtent, cfg.GenerationDistance, cfg.TileVariants, rng, logger)
	if err != nil {
		return nil, err
	}

	w := &World{
		cfg:      cfg,
		log:      logger,
		rng:      rng,
		streamer: st,
		scene:    NewScene(nil),
		zones:    map[TileKey]*decor.Zone{},
		sessions: map[string]*session{},
		join:     make(chan JoinRequest, 16),
		leave:    make(chan string, 16),
		moves:    make(chan MoveEnvelope, 256),
		stop:     make(chan struct{}),
	}
	return w, nil
}

// SetSpawner replaces the instantiation collaborator. Must be called before
// the world loop starts.
func (w *World) SetSpawner(sp Spawner) {
	w.scene.spawner = sp
}

// AddEventSink attaches a placement event sink. Must be called before the
// world loop starts.
func (w *World) AddEventSink(s EventSink) {
	if s != nil {
		w.sinks = append(w.sinks, s)
	}
}

func (w *World) Config() WorldConfig { return w.cfg }
func (w *World) CurrentTick() uint64 { return w.tick.Load() }
func (w *World) TickRateHz() int     { return w.cfg.TickRateHz }
func (w *World) ID() string          { return w.cfg.ID }

func (w *World) Join() chan<- JoinRequest   { return w.join }
func (w *World) Leave() chan<- string       { return w.leave }
func (w *World) Moves() chan<- MoveEnvelope { return w.moves }

func (w *World) handleJoin(req JoinRequest) {
	id := fmt.Sprintf("O%d", w.nextObserverNum.Add(1))
	w.sessions[id] = &session{ObserverID: id, Out: req.Out, cursor: w.nextCursor}
	if w.observerID == "" {
		w.observerID = id
		if w.log != nil {
			w.log.Printf("observer %s (%s) drives generation", id, req.Name)
		}
	}
	if req.Resp != nil {
		req.Resp <- JoinResponse{Welcome: protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			ObserverID:      id,
			WorldParams: protocol.WorldParams{
				TickRateHz:         w.cfg.TickRateHz,
				Seed:               w.cfg.Seed,
				TileExtent:         w.cfg.TileExtent,
				GenerationDistance: w.cfg.GenerationDistance,
				HideDistance:       w.cfg.HideDistance,
				Origin:             [3]float64{w.cfg.Origin.X, w.cfg.Origin.Y, w.cfg.Origin.Z},
			},
		}}
	}
}

func (w *World) handleLeave(id string) {
	delete(w.sessions, id)
	if id == w.observerID {
		// The driving observer left; generation pauses until another joins.
		w.observerID = ""
		w.hasObserver = false
		for sid := range w.sessions {
			w.observerID = sid
			break
		}
	}
}
