package app

import "time"

const (
	axisCenter   = 2048
	axisDeadZone = 150
)

// MapAxis converts a 12-bit joystick sample into a widget position in
// 0..maxPos. Samples within the dead zone around mid-scale map to the
// center position; outside it the remaining swing scales linearly with
// integer division, so the extremes land at 0 and just under maxPos.
// invert mirrors the result for axes whose wiring reads backwards.
func MapAxis(raw uint16, maxPos int, invert bool) int {
	offset := int(raw) - axisCenter
	half := maxPos / 2

	mapped := half
	switch {
	case offset > axisDeadZone:
		mapped = half + (offset-axisDeadZone)*half/(axisCenter-axisDeadZone)
	case offset < -axisDeadZone:
		mapped = half + (offset+axisDeadZone)*half/(axisCenter-axisDeadZone)
	}

	if mapped < 0 {
		mapped = 0
	}
	if mapped > maxPos {
		mapped = maxPos
	}
	if invert {
		mapped = maxPos - mapped
	}
	return mapped
}

// Debouncer suppresses switch bounce on an edge-triggered input: after an
// accepted edge, further edges within the window are dropped. The very
// first edge is always accepted. Single-handler use only; it is not
// goroutine safe.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	last  time.Time
	armed bool
}

// NewDebouncer returns a debouncer with the given suppression window. The
// clock is injected so tests can script edge timing.
func NewDebouncer(window time.Duration, now func() time.Time) *Debouncer {
	return &Debouncer{window: window, now: now}
}

// Accept reports whether an edge arriving now should be acted on, and
// records it as the new reference edge if so.
func (d *Debouncer) Accept() bool {
	t := d.now()
	if d.armed && t.Sub(d.last) <= d.window {
		return false
	}
	d.armed = true
	d.last = t
	return true
}
