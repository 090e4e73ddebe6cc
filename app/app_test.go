package app

import (
	"testing"
	"time"

	"slate/hal"
	"slate/scene"
)

func TestMapAxisCenterAndDeadZone(t *testing.T) {
	cases := []struct {
		raw  uint16
		want int
	}{
		{2048, 44},
		{2048 - 149, 44},
		{2048 + 149, 44},
		// Just past the dead zone edge integer division still truncates
		// to the center step.
		{2048 - 151, 44},
		{2048 + 151, 44},
	}
	for _, c := range cases {
		if got := MapAxis(c.raw, 88, false); got != c.want {
			t.Errorf("MapAxis(%d) = %d, want %d", c.raw, got, c.want)
		}
	}
}

func TestMapAxisExtremes(t *testing.T) {
	if got := MapAxis(0, 88, false); got != 0 {
		t.Errorf("MapAxis(0) = %d, want 0", got)
	}
	if got := MapAxis(4095, 88, false); got != 87 {
		t.Errorf("MapAxis(4095) = %d, want 87", got)
	}
	if got := MapAxis(3000, 88, false); got != 62 {
		t.Errorf("MapAxis(3000) = %d, want 62", got)
	}
	if got := MapAxis(1000, 88, false); got != 24 {
		t.Errorf("MapAxis(1000) = %d, want 24", got)
	}
}

func TestMapAxisInvertMirrors(t *testing.T) {
	for _, raw := range []uint16{0, 500, 1897, 2048, 2199, 3000, 4095} {
		plain := MapAxis(raw, 88, false)
		inv := MapAxis(raw, 88, true)
		if inv != 88-plain {
			t.Errorf("MapAxis(%d, invert) = %d, want %d", raw, inv, 88-plain)
		}
	}
}

func TestMapAxisMonotonic(t *testing.T) {
	prev := -1
	for raw := 0; raw <= 4095; raw += 13 {
		got := MapAxis(uint16(raw), 88, false)
		if got < prev {
			t.Fatalf("MapAxis(%d) = %d dropped below previous %d", raw, got, prev)
		}
		prev = got
	}
}

func TestDebouncerWindow(t *testing.T) {
	cur := time.Unix(0, 0)
	d := NewDebouncer(50*time.Millisecond, func() time.Time { return cur })

	if !d.Accept() {
		t.Fatal("first edge rejected")
	}
	cur = cur.Add(10 * time.Millisecond)
	if d.Accept() {
		t.Fatal("bounce at +10ms accepted")
	}
	// Exactly at the window boundary still counts as bounce.
	cur = cur.Add(40 * time.Millisecond)
	if d.Accept() {
		t.Fatal("edge at exactly the window accepted")
	}
	cur = cur.Add(1 * time.Millisecond)
	if !d.Accept() {
		t.Fatal("edge past the window rejected")
	}
	// Rejected edges must not slide the reference point.
	cur = cur.Add(30 * time.Millisecond)
	if d.Accept() {
		t.Fatal("bounce after re-arm accepted")
	}
}

type fakeButton struct {
	name string
	fn   func()
}

func (b *fakeButton) Name() string                       { return b.name }
func (b *fakeButton) SetRisingInterrupt(fn func()) error { b.fn = fn; return nil }

type fakeLED struct{ on bool }

func (l *fakeLED) High() { l.on = true }
func (l *fakeLED) Low()  { l.on = false }

type buttonHAL struct {
	log     testLogger
	buttons []*fakeButton
	leds    []*fakeLED
}

type testLogger struct{}

func (testLogger) WriteLineString(string) {}
func (testLogger) WriteLineBytes([]byte)  {}

func (h *buttonHAL) Logger() hal.Logger { return h.log }
func (h *buttonHAL) Display() hal.DisplayIO {
	return hal.DisplayIO{}
}
func (h *buttonHAL) Touch() hal.I2C               { return nil }
func (h *buttonHAL) Joystick() (hal.ADC, hal.ADC) { return nil, nil }
func (h *buttonHAL) Buttons() []hal.Button {
	out := make([]hal.Button, len(h.buttons))
	for i, b := range h.buttons {
		out[i] = b
	}
	return out
}
func (h *buttonHAL) LEDs() []hal.Pin {
	out := make([]hal.Pin, len(h.leds))
	for i, l := range h.leds {
		out[i] = l
	}
	return out
}
func (h *buttonHAL) Time() hal.Time         { return nil }
func (h *buttonHAL) Resetter() hal.Resetter { return nil }

func TestButtonTogglesLEDWithDebounce(t *testing.T) {
	fh := &buttonHAL{
		buttons: []*fakeButton{{name: "BTN1"}, {name: "BTN2"}},
		leds:    []*fakeLED{{}, {}},
	}
	s := &System{
		h: fh,
		scn: scene.New(scene.Config{
			Width: 320, Height: 480,
		}),
		stop: make(chan struct{}),
	}

	if err := s.wireButtons(); err != nil {
		t.Fatal(err)
	}
	if fh.buttons[0].fn == nil || fh.buttons[1].fn == nil {
		t.Fatal("handlers not installed")
	}

	fh.buttons[0].fn()
	if !fh.leds[0].on {
		t.Fatal("LED0 off after first edge")
	}
	if fh.leds[1].on {
		t.Fatal("LED1 toggled by button 0")
	}

	// Immediate bounce on the same button is suppressed.
	fh.buttons[0].fn()
	if !fh.leds[0].on {
		t.Fatal("bounce toggled LED0 off")
	}

	// A clean edge after the window toggles back off.
	time.Sleep(60 * time.Millisecond)
	fh.buttons[0].fn()
	if fh.leds[0].on {
		t.Fatal("LED0 still on after second clean edge")
	}

	// The other button has its own debouncer.
	fh.buttons[1].fn()
	if !fh.leds[1].on {
		t.Fatal("LED1 off after its first edge")
	}
}
