//go:build !tinygo

package hal

import (
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// hostHAL emulates the handheld on a desktop: the panel and touch
// controller are register-level emulators driven through the same bus
// interfaces the real drivers use on device.
type hostHAL struct {
	logger *hostLogger
	panel  *hostPanel
	touch  *hostTouch
	axisX  *hostAxis
	axisY  *hostAxis
	btns   []*hostButton
	leds   []*hostLED
	t      *hostTime
	rst    *hostResetter
}

// New returns a host HAL implementation.
func New() HAL {
	logger := &hostLogger{w: os.Stdout}
	panel := newHostPanel(320, 480)
	h := &hostHAL{
		logger: logger,
		panel:  panel,
		touch:  newHostTouch(320, 480),
		axisX:  newHostAxis(),
		axisY:  newHostAxis(),
		btns:   []*hostButton{{name: "BTN1"}, {name: "BTN2"}},
		leds:   []*hostLED{{name: "LED1"}, {name: "LED2"}},
		t:      newHostTime(true),
		rst:    &hostResetter{logger: logger},
	}
	return h
}

func (h *hostHAL) Logger() Logger { return h.logger }

func (h *hostHAL) Display() DisplayIO {
	return DisplayIO{
		Bus: h.panel,
		CS:  h.panel.pin(pinCS),
		DC:  h.panel.pin(pinDC),
		RST: h.panel.pin(pinRST),
	}
}

func (h *hostHAL) Touch() I2C { return h.touch }

func (h *hostHAL) Joystick() (ADC, ADC) { return h.axisX, h.axisY }

func (h *hostHAL) Buttons() []Button {
	out := make([]Button, len(h.btns))
	for i, b := range h.btns {
		out[i] = b
	}
	return out
}

func (h *hostHAL) LEDs() []Pin {
	out := make([]Pin, len(h.leds))
	for i, l := range h.leds {
		out[i] = l
	}
	return out
}

func (h *hostHAL) Time() Time         { return h.t }
func (h *hostHAL) Resetter() Resetter { return h.rst }

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.WriteString(s + "\n")
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(append(b, '\n'))
}

// hostAxis is one joystick channel. It rests at mid-scale.
type hostAxis struct {
	raw atomic.Uint32
}

func newHostAxis() *hostAxis {
	a := &hostAxis{}
	a.raw.Store(2048)
	return a
}

func (a *hostAxis) Read() uint16 { return uint16(a.raw.Load()) }
func (a *hostAxis) set(v uint16) { a.raw.Store(uint32(v)) }

type hostButton struct {
	name string
	mu   sync.Mutex
	fn   func()
}

func (b *hostButton) Name() string { return b.name }

func (b *hostButton) SetRisingInterrupt(fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fn = fn
	return nil
}

// trigger simulates one rising edge, invoking the handler inline like a
// device interrupt would.
func (b *hostButton) trigger() {
	b.mu.Lock()
	fn := b.fn
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type hostLED struct {
	name string
	on   atomic.Bool
}

func (l *hostLED) High() { l.on.Store(true) }
func (l *hostLED) Low()  { l.on.Store(false) }

type hostResetter struct {
	logger *hostLogger
}

// Reboot terminates the process; on host a clean exit stands in for the
// watchdog-forced restart.
func (r *hostResetter) Reboot() {
	r.logger.WriteLineString("hal: reboot")
	os.Exit(0)
}

// hostTime is the 1 kHz tick source. In auto mode a goroutine derives
// ticks from the wall clock; tests construct it manually and call step.
type hostTime struct {
	ch chan uint64
}

func newHostTime(auto bool) *hostTime {
	t := &hostTime{ch: make(chan uint64, 64)}
	if auto {
		go t.run()
	}
	return t
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) run() {
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	var seq uint64
	for range tick.C {
		seq++
		t.emit(seq)
	}
}

// step injects n ticks. Used by tests and the headless runner.
func (t *hostTime) step(n int) {
	for i := 0; i < n; i++ {
		t.emit(0)
	}
}

// emit never blocks; a stalled consumer loses ticks rather than wedging
// the source.
func (t *hostTime) emit(seq uint64) {
	select {
	case t.ch <- seq:
	default:
	}
}
