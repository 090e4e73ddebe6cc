// Package scene is the small graphics engine behind the demo surface: an
// RGB565 framebuffer, a handful of fixed widgets, and a processing step
// that polls the pointer and flushes changed regions through the display
// bridge.
//
// All engine state except the millisecond time base and the indicator
// flags is guarded by the caller's surface lock; Process, SetBallPosition
// and BuildInitialScene must only run while holding it. TickInc and
// ToggleIndicator are lock-free so they stay safe in timer and interrupt
// context.
package scene

import (
	"image/color"
	"strconv"
	"sync/atomic"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"slate/gfx"
)

// BallRange is the joystick ball's travel in pixels on each axis.
const BallRange = 88

const indicatorCount = 2

// Fixed layout, tuned for a 320x480 portrait panel.
var (
	resetRect = gfx.Area{X1: 10, Y1: 10, X2: 90, Y2: 45}

	ledCenters = [indicatorCount][2]int{{130, 400}, {190, 400}}
	ledColors  = [indicatorCount]color.RGBA{
		{R: 0x22, G: 0xC5, B: 0x5E, A: 0xFF},
		{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	}

	stickCenterX = 160
	stickCenterY = 240
	stickRadius  = 50
	ballRadius   = 6

	uptimeRect = gfx.Area{X1: 230, Y1: 10, X2: 319, Y2: 30}
)

var (
	bgColor     = color.RGBA{R: 0x10, G: 0x14, B: 0x1C, A: 0xFF}
	frameColor  = color.RGBA{R: 0xE2, G: 0xE8, B: 0xF0, A: 0xFF}
	ballColor   = color.RGBA{R: 0x00, G: 0x78, B: 0xD7, A: 0xFF}
	resetColor  = color.RGBA{R: 0xDC, G: 0x35, B: 0x45, A: 0xFF}
	textColor   = color.RGBA{R: 0xF8, G: 0xFA, B: 0xFC, A: 0xFF}
	ledOffColor = color.RGBA{R: 0x33, G: 0x3A, B: 0x44, A: 0xFF}
	touchColor  = color.RGBA{R: 0xFF, G: 0xD7, B: 0x00, A: 0xFF}
)

// Config wires the engine to its collaborators.
type Config struct {
	Width  int
	Height int

	Output gfx.DisplayOutput
	Input  gfx.PointerInput

	// OnReset fires when the reset hotspot is pressed. Called from
	// Process, under the surface lock.
	OnReset func()
}

// Scene implements gfx.Engine. It also satisfies drivers.Displayer so
// tinyfont can render text straight into the framebuffer.
type Scene struct {
	w, h int
	fb   []byte // RGB565, big-endian per pixel
	out  gfx.DisplayOutput
	in   gfx.PointerInput

	onReset func()

	ticks atomic.Uint32 // engine time base, milliseconds

	// Indicator flags toggled from interrupt context; shown mirrors what
	// is currently composed into the framebuffer.
	indicators [indicatorCount]atomic.Bool
	shown      [indicatorCount]bool

	ballX, ballY int

	touch     gfx.TouchState
	wasInside bool

	uptimeShown uint32

	dirty    gfx.Area
	hasDirty bool

	scratch []byte
	built   bool
}

// New creates an engine for the given panel size. The framebuffer starts
// black; nothing is flushed until BuildInitialScene.
func New(cfg Config) *Scene {
	s := &Scene{
		w:       cfg.Width,
		h:       cfg.Height,
		fb:      make([]byte, cfg.Width*cfg.Height*2),
		out:     cfg.Output,
		in:      cfg.Input,
		onReset: cfg.OnReset,
		ballX:   BallRange / 2,
		ballY:   BallRange / 2,
		scratch: make([]byte, cfg.Width*cfg.Height*2),
	}
	return s
}

// TickInc advances the engine time base. Runs in timer context; never
// blocks.
func (s *Scene) TickInc(ms uint32) {
	s.ticks.Add(ms)
}

// Now returns the engine time base in milliseconds.
func (s *Scene) Now() uint32 {
	return s.ticks.Load()
}

// ToggleIndicator flips one LED indicator. Safe from interrupt context;
// the change is composed on the next Process.
func (s *Scene) ToggleIndicator(i int) {
	if i < 0 || i >= indicatorCount {
		return
	}
	for {
		v := s.indicators[i].Load()
		if s.indicators[i].CompareAndSwap(v, !v) {
			return
		}
	}
}

// SetBallPosition moves the joystick ball. x and y are in 0..BallRange.
// Must be called under the surface lock.
func (s *Scene) SetBallPosition(x, y int) {
	if x == s.ballX && y == s.ballY {
		return
	}
	s.markDirty(s.ballArea())
	s.ballX, s.ballY = x, y
	s.markDirty(s.ballArea())
}

// BuildInitialScene composes every widget and schedules a full-frame
// flush. Must be called once, under the surface lock, before Process runs.
func (s *Scene) BuildInitialScene() {
	s.built = true
	s.markDirty(gfx.Area{X2: int16(s.w - 1), Y2: int16(s.h - 1)})
}

// Framebuffer exposes the composed surface for readback, e.g. for a
// screenshot while the bridge output is disabled. Read under the surface
// lock.
func (s *Scene) Framebuffer() []byte {
	return s.fb
}

// Process runs one engine cycle: poll the pointer, fold in state changes,
// and flush the changed region. Must run under the surface lock.
func (s *Scene) Process() {
	if !s.built {
		return
	}

	s.pollTouch()
	s.syncIndicators()
	s.syncUptime()

	if s.hasDirty {
		s.compose()
		s.flush(s.dirty)
		s.hasDirty = false
	}
}

func (s *Scene) pollTouch() {
	if s.in == nil {
		return
	}
	st := s.in.ReadTouch()

	if st != s.touch {
		// Repaint both the old and new marker footprints.
		if s.touch.Pressed {
			s.markDirty(s.touchArea(s.touch))
		}
		if st.Pressed {
			s.markDirty(s.touchArea(st))
		}
	}

	inside := st.Pressed && within(resetRect, st.X, st.Y)
	if inside && !s.wasInside && s.onReset != nil {
		s.onReset()
	}
	s.wasInside = inside
	s.touch = st
}

func (s *Scene) syncIndicators() {
	for i := 0; i < indicatorCount; i++ {
		v := s.indicators[i].Load()
		if v != s.shown[i] {
			s.shown[i] = v
			cx, cy := ledCenters[i][0], ledCenters[i][1]
			s.markDirty(gfx.Area{
				X1: int16(cx - 10), Y1: int16(cy - 10),
				X2: int16(cx + 10), Y2: int16(cy + 10),
			})
		}
	}
}

func (s *Scene) syncUptime() {
	sec := s.Now() / 1000
	if sec != s.uptimeShown {
		s.uptimeShown = sec
		s.markDirty(uptimeRect)
	}
}

// compose renders the full scene into the framebuffer. Only the dirty
// region is flushed afterwards, so redundant pixels cost memory writes,
// not bus time.
func (s *Scene) compose() {
	s.fillRect(0, 0, s.w, s.h, bgColor)

	// Reset hotspot.
	s.fillArea(resetRect, resetColor)
	tinyfont.WriteLine(s, &proggy.TinySZ8pt7b, resetRect.X1+18, resetRect.Y1+23, "RESET", textColor)

	// Uptime, top right.
	tinyfont.WriteLine(s, &proggy.TinySZ8pt7b, uptimeRect.X1, uptimeRect.Y1+15,
		"up "+strconv.FormatUint(uint64(s.uptimeShown), 10)+"s", textColor)

	// Joystick well and ball.
	s.strokeCircle(stickCenterX, stickCenterY, stickRadius, frameColor)
	bx, by := s.ballCenter()
	s.fillCircle(bx, by, ballRadius, ballColor)

	// LED indicators.
	for i := 0; i < indicatorCount; i++ {
		c := ledOffColor
		if s.shown[i] {
			c = ledColors[i]
		}
		s.fillCircle(ledCenters[i][0], ledCenters[i][1], 8, c)
	}

	tinyfont.WriteLine(s, &proggy.TinySZ8pt7b, 70, 435, "Press buttons to toggle LEDs", textColor)

	if s.touch.Pressed {
		s.fillCircle(int(s.touch.X), int(s.touch.Y), 3, touchColor)
	}
}

// flush hands the region to the display bridge and waits for the
// completion signal. The bridge owes exactly one done call per flush; the
// engine would stall here without it.
func (s *Scene) flush(a gfx.Area) {
	a = s.clip(a)
	w, h := a.Width(), a.Height()
	if w <= 0 || h <= 0 {
		return
	}

	n := 0
	for y := int(a.Y1); y <= int(a.Y2); y++ {
		off := (y*s.w + int(a.X1)) * 2
		n += copy(s.scratch[n:], s.fb[off:off+w*2])
	}

	ch := make(chan struct{})
	s.out.Flush(a, s.scratch[:n], func() { close(ch) })
	<-ch
}

func (s *Scene) clip(a gfx.Area) gfx.Area {
	if a.X1 < 0 {
		a.X1 = 0
	}
	if a.Y1 < 0 {
		a.Y1 = 0
	}
	if int(a.X2) >= s.w {
		a.X2 = int16(s.w - 1)
	}
	if int(a.Y2) >= s.h {
		a.Y2 = int16(s.h - 1)
	}
	return a
}

func (s *Scene) markDirty(a gfx.Area) {
	a = s.clip(a)
	if s.hasDirty {
		s.dirty = s.dirty.Union(a)
	} else {
		s.dirty = a
		s.hasDirty = true
	}
}

func (s *Scene) ballCenter() (int, int) {
	x0 := stickCenterX - BallRange/2
	y0 := stickCenterY - BallRange/2
	return x0 + s.ballX, y0 + s.ballY
}

func (s *Scene) ballArea() gfx.Area {
	cx, cy := s.ballCenter()
	return gfx.Area{
		X1: int16(cx - ballRadius - 1), Y1: int16(cy - ballRadius - 1),
		X2: int16(cx + ballRadius + 1), Y2: int16(cy + ballRadius + 1),
	}
}

func (s *Scene) touchArea(st gfx.TouchState) gfx.Area {
	return gfx.Area{
		X1: int16(int(st.X) - 4), Y1: int16(int(st.Y) - 4),
		X2: int16(int(st.X) + 4), Y2: int16(int(st.Y) + 4),
	}
}

func within(a gfx.Area, x, y uint16) bool {
	return int(x) >= int(a.X1) && int(x) <= int(a.X2) &&
		int(y) >= int(a.Y1) && int(y) <= int(a.Y2)
}
