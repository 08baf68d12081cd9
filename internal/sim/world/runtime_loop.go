package world

import (
	"context"
	"time"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingJoins []JoinRequest
	var pendingLeaves []string
	var pendingMoves []MoveEnvelope

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case m := <-w.moves:
			pendingMoves = append(pendingMoves, m)
		case <-ticker.C:
			w.step(pendingJoins, pendingLeaves, pendingMoves)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingMoves = pendingMoves[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick with the same ordering
// semantics as the server loop. Primarily for deterministic tests.
func (w *World) StepOnce(joins []JoinRequest, leaves []string, moves []MoveEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.step(joins, leaves, moves)
	return tick, w.stateDigest()
}

// step order: joins, leaves, position updates, generation, culling, delivery.
func (w *World) step(joins []JoinRequest, leaves []string, moves []MoveEnvelope) {
	tick := w.tick.Load()

	for _, j := range joins {
		w.handleJoin(j)
	}
	for _, id := range leaves {
		w.handleLeave(id)
	}
	for _, m := range moves {
		if m.ObserverID == w.observerID {
			w.observerPos = m.Pos
			w.hasObserver = true
		}
	}

	if w.hasObserver {
		for _, req := range w.streamer.Tick(w.observerPos) {
			w.placeTile(tick, req)
		}
		w.cullTiles(tick)
	} else if !w.warnedInert {
		if w.log != nil {
			w.log.Printf("no observer position yet; world stays inert")
		}
		w.warnedInert = true
	}

	w.flushSessions(tick)
	w.tick.Add(1)
}
