package scene

import (
	"testing"

	"tinygo.org/x/drivers/pixel"

	"slate/gfx"
)

type recordOutput struct {
	areas []gfx.Area
	sizes []int
}

func (o *recordOutput) Flush(a gfx.Area, pixels []byte, done func()) {
	o.areas = append(o.areas, a)
	o.sizes = append(o.sizes, len(pixels))
	done()
}

type scriptInput struct {
	st gfx.TouchState
}

func (i *scriptInput) ReadTouch() gfx.TouchState { return i.st }

func newScene(t *testing.T) (*Scene, *recordOutput, *scriptInput, *int) {
	t.Helper()
	out := &recordOutput{}
	in := &scriptInput{}
	resets := 0
	s := New(Config{
		Width:   320,
		Height:  480,
		Output:  out,
		Input:   in,
		OnReset: func() { resets++ },
	})
	return s, out, in, &resets
}

func pixAt(s *Scene, x, y int) pixel.RGB565BE {
	off := (y*320 + x) * 2
	fb := s.Framebuffer()
	return pixel.RGB565BE(uint16(fb[off]) | uint16(fb[off+1])<<8)
}

func TestFirstProcessFlushesFullFrame(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.BuildInitialScene()
	s.Process()

	if len(out.areas) != 1 {
		t.Fatalf("flushes = %d, want 1", len(out.areas))
	}
	want := gfx.Area{X1: 0, Y1: 0, X2: 319, Y2: 479}
	if out.areas[0] != want {
		t.Fatalf("area = %+v, want full frame", out.areas[0])
	}
	if out.sizes[0] != 320*480*2 {
		t.Fatalf("payload = %d bytes", out.sizes[0])
	}

	// Nothing changed; the next cycle must not flush.
	s.Process()
	if len(out.areas) != 1 {
		t.Fatalf("idle Process flushed, areas = %v", out.areas)
	}
}

func TestProcessBeforeBuildIsInert(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.Process()
	if len(out.areas) != 0 {
		t.Fatal("unbuilt scene flushed")
	}
}

func TestBallMoveFlushesSmallRegion(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.BuildInitialScene()
	s.Process()

	s.SetBallPosition(0, 0)
	s.Process()

	if len(out.areas) != 2 {
		t.Fatalf("flushes = %d, want 2", len(out.areas))
	}
	a := out.areas[1]
	if a.Width() >= 320 || a.Height() >= 480 {
		t.Fatalf("ball move flushed %dx%d, want a small region", a.Width(), a.Height())
	}
	// The region must cover both the old (centered) and new ball spots.
	oldX := stickCenterX
	newX := stickCenterX - BallRange/2
	if int(a.X1) > newX-ballRadius || int(a.X2) < oldX+ballRadius {
		t.Fatalf("region %+v misses a ball footprint", a)
	}

	// Same position again: no new dirt.
	s.SetBallPosition(0, 0)
	s.Process()
	if len(out.areas) != 2 {
		t.Fatal("no-op ball move flushed")
	}
}

func TestResetHotspotFiresOncePerPress(t *testing.T) {
	s, _, in, resets := newScene(t)
	s.BuildInitialScene()
	s.Process()

	in.st = gfx.TouchState{X: 40, Y: 25, Pressed: true}
	s.Process()
	s.Process()
	s.Process()
	if *resets != 1 {
		t.Fatalf("resets = %d after held press, want 1", *resets)
	}

	in.st = gfx.TouchState{X: 40, Y: 25, Pressed: false}
	s.Process()
	in.st = gfx.TouchState{X: 40, Y: 25, Pressed: true}
	s.Process()
	if *resets != 2 {
		t.Fatalf("resets = %d after second press, want 2", *resets)
	}
}

func TestTouchOutsideHotspotDoesNotReset(t *testing.T) {
	s, _, in, resets := newScene(t)
	s.BuildInitialScene()
	s.Process()

	in.st = gfx.TouchState{X: 200, Y: 300, Pressed: true}
	s.Process()
	if *resets != 0 {
		t.Fatalf("resets = %d for touch outside hotspot", *resets)
	}
}

func TestToggleIndicatorRecomposesLED(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.BuildInitialScene()
	s.Process()

	off := pixAt(s, ledCenters[0][0], ledCenters[0][1])

	s.ToggleIndicator(0)
	s.Process()

	on := pixAt(s, ledCenters[0][0], ledCenters[0][1])
	if on == off {
		t.Fatal("LED pixel unchanged after toggle")
	}
	want := pixel.NewColor[pixel.RGB565BE](ledColors[0].R, ledColors[0].G, ledColors[0].B)
	if on != want {
		t.Fatalf("LED pixel = %04x, want %04x", uint16(on), uint16(want))
	}

	a := out.areas[len(out.areas)-1]
	if int(a.X1) > ledCenters[0][0] || int(a.X2) < ledCenters[0][0] {
		t.Fatalf("flush region %+v misses the LED", a)
	}

	s.ToggleIndicator(0)
	s.Process()
	if got := pixAt(s, ledCenters[0][0], ledCenters[0][1]); got != off {
		t.Fatalf("LED pixel = %04x after toggle back, want %04x", uint16(got), uint16(off))
	}
}

func TestToggleIndicatorOutOfRangeIgnored(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.BuildInitialScene()
	s.Process()

	s.ToggleIndicator(-1)
	s.ToggleIndicator(indicatorCount)
	s.Process()
	if len(out.areas) != 1 {
		t.Fatal("out-of-range toggle dirtied the scene")
	}
}

func TestTickIncAdvancesTimeBase(t *testing.T) {
	s, _, _, _ := newScene(t)
	for i := 0; i < 1500; i++ {
		s.TickInc(1)
	}
	if s.Now() != 1500 {
		t.Fatalf("Now() = %d, want 1500", s.Now())
	}
}

func TestUptimeRedrawsOncePerSecond(t *testing.T) {
	s, out, _, _ := newScene(t)
	s.BuildInitialScene()
	s.Process()

	s.TickInc(999)
	s.Process()
	if len(out.areas) != 1 {
		t.Fatal("sub-second tick flushed")
	}

	s.TickInc(1)
	s.Process()
	if len(out.areas) != 2 {
		t.Fatalf("flushes = %d after second boundary, want 2", len(out.areas))
	}
	a := out.areas[1]
	if a.Width() >= 320 {
		t.Fatalf("uptime redraw flushed %dx%d", a.Width(), a.Height())
	}
}
