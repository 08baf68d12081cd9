package stream

import (
	"math"
	"math/rand"
	"testing"

	"tilestream.dev/internal/sim/geom"
)

func newTestStreamer(t *testing.T, origin geom.Vec3) *Streamer {
	t.Helper()
	s, err := New(origin, 10, 2, []string{"plain", "cracked"}, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_Validation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := New(geom.Vec3{}, 0, 2, []string{"a"}, rng, nil); err == nil {
		t.Fatalf("expected error for zero tile extent")
	}
	if _, err := New(geom.Vec3{}, 10, 0, []string{"a"}, rng, nil); err == nil {
		t.Fatalf("expected error for zero generation distance")
	}
	if _, err := New(geom.Vec3{}, 10, 2, nil, rng, nil); err == nil {
		t.Fatalf("expected error for empty variant pool")
	}
	if _, err := New(geom.Vec3{}, 10, 2, []string{"a"}, nil, nil); err == nil {
		t.Fatalf("expected error for nil rand source")
	}
}

func TestTick_InitialStateInert(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})
	if reqs := s.Tick(geom.Vec3{}); len(reqs) != 0 {
		t.Fatalf("expected no generation with observer at origin, got %d", len(reqs))
	}
	for a := AxisPosX; a <= AxisNegZ; a++ {
		if d := s.Dir(a); d.Generated != 0 || d.Edge != 0 {
			t.Fatalf("axis %s: unexpected state %+v", a, d)
		}
	}
}

// Extent 10, origin (0,0,0), distance 2: an observer at (9,0,0) is within 2
// of the next +X tile coordinate and triggers exactly one generation.
func TestTick_SingleAxisScenario(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})

	reqs := s.Tick(geom.Vec3{X: 9})
	if len(reqs) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(reqs))
	}
	r := reqs[0]
	if r.Axis != AxisPosX || r.Backfill {
		t.Fatalf("unexpected request %+v", r)
	}
	if r.Pos != (geom.Vec3{X: 10}) {
		t.Fatalf("expected tile at (10,0,0), got %+v", r.Pos)
	}
	if d := s.Dir(AxisPosX); d.Edge != 10 || d.Generated != 1 {
		t.Fatalf("expected edge=10 generated=1, got %+v", d)
	}
	for _, a := range []Axis{AxisNegX, AxisPosZ, AxisNegZ} {
		if d := s.Dir(a); d.Generated != 0 {
			t.Fatalf("axis %s should not have generated", a)
		}
	}
}

func TestTick_ThresholdBoundary(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})

	// Exactly at distance: |8 - 10| = 2, not strictly below 2.
	if reqs := s.Tick(geom.Vec3{X: 8}); len(reqs) != 0 {
		t.Fatalf("expected no fire at exact threshold, got %d", len(reqs))
	}
	// Just inside.
	if reqs := s.Tick(geom.Vec3{X: 8.01}); len(reqs) != 1 {
		t.Fatalf("expected fire just inside threshold")
	}
	// Same position again: the edge advanced a full extent, so no refire.
	if reqs := s.Tick(geom.Vec3{X: 8.01}); len(reqs) != 0 {
		t.Fatalf("expected at most one generation per axis per tick, got refire")
	}
}

func TestTick_FellOutOfWorld(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})
	if reqs := s.Tick(geom.Vec3{X: 9, Y: -0.5}); len(reqs) != 0 {
		t.Fatalf("expected no-op below origin plane")
	}
	if d := s.Dir(AxisPosX); d.Generated != 0 {
		t.Fatalf("state must not advance below origin plane")
	}
}

func TestTick_EdgeExactAfterN(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{X: 3, Z: -7})

	// Walk outward along -Z; each step stands just short of the next tile.
	for n := 1; n <= 8; n++ {
		obs := geom.Vec3{X: 3, Z: s.Dir(AxisNegZ).Edge - 10 + 1}
		reqs := s.Tick(obs)
		if len(reqs) != 1 {
			t.Fatalf("step %d: expected one request, got %d", n, len(reqs))
		}
		want := -7 - float64(n)*10
		if d := s.Dir(AxisNegZ); d.Edge != want || d.Generated != n {
			t.Fatalf("step %d: expected edge=%v generated=%d, got %+v", n, want, n, d)
		}
	}
}

// After +X then +Z generated once each, a -X generation must backfill
// (-10, 0, 10) so the grid stays a full rectangle.
func TestTick_BackfillCompletesRectangle(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})

	if reqs := s.Tick(geom.Vec3{X: 9}); len(reqs) != 1 {
		t.Fatalf("+X: expected one request")
	}
	reqs := s.Tick(geom.Vec3{Z: 9})
	if len(reqs) != 2 {
		t.Fatalf("+Z: expected edge tile plus one backfill, got %d", len(reqs))
	}
	if reqs[0].Pos != (geom.Vec3{Z: 10}) || reqs[0].Backfill {
		t.Fatalf("+Z edge tile wrong: %+v", reqs[0])
	}
	if reqs[1].Pos != (geom.Vec3{X: 10, Z: 10}) || !reqs[1].Backfill {
		t.Fatalf("+Z corner backfill wrong: %+v", reqs[1])
	}

	reqs = s.Tick(geom.Vec3{X: -9})
	if len(reqs) != 2 {
		t.Fatalf("-X: expected edge tile plus one backfill, got %d", len(reqs))
	}
	if reqs[0].Pos != (geom.Vec3{X: -10}) {
		t.Fatalf("-X edge tile wrong: %+v", reqs[0])
	}
	if reqs[1].Pos != (geom.Vec3{X: -10, Z: 10}) || !reqs[1].Backfill {
		t.Fatalf("-X corner backfill wrong: %+v", reqs[1])
	}
}

// Within one tick the axes run in the fixed order +X, -X, +Z, -Z, and
// backfill reads the perpendicular counts as they stand at that moment. A
// tick that fires +X and +Z together must backfill the corner from the +Z
// generation, not the +X one.
func TestTick_AxisOrderWithinTick(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})

	reqs := s.Tick(geom.Vec3{X: 9, Z: 9})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests (+X edge, +Z edge, corner), got %d", len(reqs))
	}
	if reqs[0].Pos != (geom.Vec3{X: 10}) || reqs[0].Axis != AxisPosX || reqs[0].Backfill {
		t.Fatalf("first request should be the +X edge tile: %+v", reqs[0])
	}
	if reqs[1].Pos != (geom.Vec3{Z: 10}) || reqs[1].Axis != AxisPosZ || reqs[1].Backfill {
		t.Fatalf("second request should be the +Z edge tile: %+v", reqs[1])
	}
	if reqs[2].Pos != (geom.Vec3{X: 10, Z: 10}) || reqs[2].Axis != AxisPosZ || !reqs[2].Backfill {
		t.Fatalf("third request should be the +Z corner backfill: %+v", reqs[2])
	}
}

// After any walk, the generated set plus the origin tile must form the
// complete rectangle [-negX..posX] x [-negZ..posZ].
func TestTick_RectangleInvariant(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{})
	rng := rand.New(rand.NewSource(99))

	tiles := map[[2]int]struct{}{{0, 0}: {}}

	obs := geom.Vec3{}
	for step := 0; step < 2000; step++ {
		switch rng.Intn(4) {
		case 0:
			obs.X += 1.5
		case 1:
			obs.X -= 1.5
		case 2:
			obs.Z += 1.5
		default:
			obs.Z -= 1.5
		}
		for _, r := range s.Tick(obs) {
			gx, gz := s.GridKey(r.Pos)
			if _, dup := tiles[[2]int{gx, gz}]; dup {
				t.Fatalf("step %d: duplicate tile (%d,%d)", step, gx, gz)
			}
			tiles[[2]int{gx, gz}] = struct{}{}
		}
	}

	posX := s.Dir(AxisPosX).Generated
	negX := s.Dir(AxisNegX).Generated
	posZ := s.Dir(AxisPosZ).Generated
	negZ := s.Dir(AxisNegZ).Generated
	if (posX+negX+1)*(posZ+negZ+1) != len(tiles) {
		t.Fatalf("tile count %d does not match rectangle %dx%d",
			len(tiles), posX+negX+1, posZ+negZ+1)
	}
	for gx := -negX; gx <= posX; gx++ {
		for gz := -negZ; gz <= posZ; gz++ {
			if _, ok := tiles[[2]int{gx, gz}]; !ok {
				t.Fatalf("missing tile (%d,%d) in rectangle [%d..%d]x[%d..%d]",
					gx, gz, -negX, posX, -negZ, posZ)
			}
		}
	}
}

func TestTick_DeterministicVariants(t *testing.T) {
	run := func() []string {
		s, err := New(geom.Vec3{}, 10, 2, []string{"a", "b", "c"}, rand.New(rand.NewSource(7)), nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		var got []string
		for i := 0; i < 6; i++ {
			obs := geom.Vec3{X: s.Dir(AxisPosX).Edge + 9}
			for _, r := range s.Tick(obs) {
				got = append(got, r.Variant)
			}
		}
		return got
	}

	a := run()
	b := run()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("bad run lengths: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("variant sequence diverged at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestGridKey(t *testing.T) {
	s := newTestStreamer(t, geom.Vec3{X: 5, Z: -5})
	cases := []struct {
		pos    geom.Vec3
		gx, gz int
	}{
		{geom.Vec3{X: 5, Z: -5}, 0, 0},
		{geom.Vec3{X: 15, Z: -5}, 1, 0},
		{geom.Vec3{X: -5, Z: -15}, -1, -1},
		{geom.Vec3{X: 45, Z: 25}, 4, 3},
	}
	for _, c := range cases {
		gx, gz := s.GridKey(c.pos)
		if gx != c.gx || gz != c.gz {
			t.Fatalf("GridKey(%+v) = (%d,%d), want (%d,%d)", c.pos, gx, gz, c.gx, c.gz)
		}
	}
}

func TestAxisHelpers(t *testing.T) {
	if AxisPosX.Sign() != 1 || AxisNegZ.Sign() != -1 {
		t.Fatalf("sign wrong")
	}
	if !AxisNegX.AlongX() || AxisPosZ.AlongX() {
		t.Fatalf("alongX wrong")
	}
	if perpendicular(AxisPosX) != [2]Axis{AxisPosZ, AxisNegZ} {
		t.Fatalf("perpendicular of +X wrong")
	}
	if perpendicular(AxisNegZ) != [2]Axis{AxisPosX, AxisNegX} {
		t.Fatalf("perpendicular of -Z wrong")
	}
	if math.Signbit(AxisPosZ.Sign()) {
		t.Fatalf("+Z must be positive")
	}
}
