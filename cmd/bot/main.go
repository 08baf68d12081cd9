// A roaming observer: connects, then random-walks the ground plane so the
// server keeps streaming tiles. Useful for soak-testing generation.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"tilestream.dev/internal/protocol"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name  = flag.String("name", "walker", "observer name")
		speed = flag.Float64("speed", 1.5, "units moved per step")
		hz    = flag.Int("hz", 10, "steps per second")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 8},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil {
		logger.Fatalf("read WELCOME: %v", err)
	}
	logger.Printf("WELCOME observer_id=%s tile_extent=%v seed=%d",
		welcome.ObserverID, welcome.WorldParams.TileExtent, welcome.WorldParams.Seed)

	// Drain server events in the background, logging tile placements.
	go func() {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeEvents {
				continue
			}
			var ev protocol.EventsMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			for _, item := range ev.Events {
				if item.Event.Type == protocol.EventTilePlaced {
					logger.Printf("tile %v variant=%s backfill=%v", item.Event.Tile, item.Event.Variant, item.Event.Backfill)
				}
			}
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	pos := welcome.WorldParams.Origin
	heading := [2]float64{1, 0}

	ticker := time.NewTicker(time.Second / time.Duration(*hz))
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		// Mostly keep heading, occasionally turn.
		if rng.Float64() < 0.05 {
			switch rng.Intn(4) {
			case 0:
				heading = [2]float64{1, 0}
			case 1:
				heading = [2]float64{-1, 0}
			case 2:
				heading = [2]float64{0, 1}
			default:
				heading = [2]float64{0, -1}
			}
		}
		pos[0] += heading[0] * *speed
		pos[2] += heading[1] * *speed

		move := protocol.MoveMsg{
			Type:            protocol.TypeMove,
			ProtocolVersion: protocol.Version,
			Pos:             pos,
		}
		if err := conn.WriteJSON(move); err != nil {
			logger.Fatalf("send MOVE: %v", err)
		}
	}
}
