package port

import (
	"errors"
	"testing"

	"slate/drivers/gt911"
	"slate/gfx"
)

type nullLogger struct{ lines []string }

func (l *nullLogger) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *nullLogger) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

type fakePanel struct {
	windows [][4]int16
	writes  []int
	wErr    error
	sErr    error
}

func (p *fakePanel) SetWindow(x1, y1, x2, y2 int16) error {
	if p.sErr != nil {
		return p.sErr
	}
	p.windows = append(p.windows, [4]int16{x1, y1, x2, y2})
	return nil
}

func (p *fakePanel) WritePixels(buf []byte, pixels int) error {
	if p.wErr != nil {
		return p.wErr
	}
	p.writes = append(p.writes, pixels)
	return nil
}

func TestFlushSetsWindowThenWrites(t *testing.T) {
	p := &fakePanel{}
	d := NewDisplay(p, &nullLogger{})

	var done int
	d.Flush(gfx.Area{X1: 10, Y1: 20, X2: 19, Y2: 24}, make([]byte, 100), func() { done++ })

	if done != 1 {
		t.Fatalf("done signalled %d times", done)
	}
	if len(p.windows) != 1 || p.windows[0] != [4]int16{10, 20, 19, 24} {
		t.Fatalf("windows = %v", p.windows)
	}
	if len(p.writes) != 1 || p.writes[0] != 50 {
		t.Fatalf("writes = %v, want one write of 10x5 pixels", p.writes)
	}
}

func TestFlushDisabledSkipsBusButSignals(t *testing.T) {
	p := &fakePanel{}
	d := NewDisplay(p, &nullLogger{})
	d.DisableOutput()

	var done int
	d.Flush(gfx.Area{X2: 9, Y2: 9}, make([]byte, 200), func() { done++ })

	if done != 1 {
		t.Fatalf("done signalled %d times", done)
	}
	if len(p.windows) != 0 || len(p.writes) != 0 {
		t.Fatal("disabled flush touched the panel")
	}

	// Re-enabling takes effect on the next call; the dropped frame is gone.
	d.EnableOutput()
	d.Flush(gfx.Area{X2: 9, Y2: 9}, make([]byte, 200), func() { done++ })
	if len(p.writes) != 1 {
		t.Fatalf("writes after enable = %v", p.writes)
	}
}

func TestFlushSignalsDoneOnDriverError(t *testing.T) {
	p := &fakePanel{sErr: errors.New("window rejected")}
	log := &nullLogger{}
	d := NewDisplay(p, log)

	var done int
	d.Flush(gfx.Area{X2: 9, Y2: 9}, make([]byte, 200), func() { done++ })
	if done != 1 {
		t.Fatalf("done signalled %d times on error path", done)
	}
	if len(log.lines) == 0 {
		t.Fatal("driver error not logged")
	}
}

type fakeTouchDrv struct {
	s   gt911.Sample
	err error
}

func (f *fakeTouchDrv) ReadTouch() (gt911.Sample, error) { return f.s, f.err }

func TestTouchCachesPressedPosition(t *testing.T) {
	drv := &fakeTouchDrv{s: gt911.Sample{X: 100, Y: 200, Pressed: true}}
	tp := NewTouch(drv, &nullLogger{})

	if s := tp.ReadTouch(); !s.Pressed || s.X != 100 || s.Y != 200 {
		t.Fatalf("pressed sample = %+v", s)
	}

	// Driver failure: report a release at the cached position.
	drv.err = errors.New("bus gone")
	if s := tp.ReadTouch(); s.Pressed || s.X != 100 || s.Y != 200 {
		t.Fatalf("failure sample = %+v", s)
	}
}

func TestTouchMirrorsDriverRelease(t *testing.T) {
	drv := &fakeTouchDrv{s: gt911.Sample{X: 100, Y: 200, Pressed: true}}
	tp := NewTouch(drv, &nullLogger{})
	tp.ReadTouch()

	// The driver's own persisted position arrives on release; the bridge
	// cache must agree with it afterwards.
	drv.s = gt911.Sample{X: 100, Y: 200, Pressed: false}
	if s := tp.ReadTouch(); s.Pressed || s.X != 100 || s.Y != 200 {
		t.Fatalf("release sample = %+v", s)
	}
	if tp.lastX != 100 || tp.lastY != 200 {
		t.Fatalf("cache = (%d,%d)", tp.lastX, tp.lastY)
	}
}

func TestTouchFailureLoggedOnce(t *testing.T) {
	drv := &fakeTouchDrv{err: errors.New("nack")}
	log := &nullLogger{}
	tp := NewTouch(drv, log)

	tp.ReadTouch()
	tp.ReadTouch()
	tp.ReadTouch()
	if len(log.lines) != 1 {
		t.Fatalf("failure logged %d times", len(log.lines))
	}
}
