// Package port adapts the panel and touch drivers to the graphics
// engine's flush and poll callback contract.
package port

import (
	"sync/atomic"

	"slate/gfx"
	"slate/hal"
)

// Panel is the subset of the display driver the bridge needs.
type Panel interface {
	SetWindow(x1, y1, x2, y2 int16) error
	WritePixels(buf []byte, pixels int) error
}

// Display bridges the engine's flush callback onto a panel driver, with a
// runtime gate over hardware writes.
type Display struct {
	drv Panel
	log hal.Logger

	enabled atomic.Bool
}

// NewDisplay returns a bridge with output enabled.
func NewDisplay(drv Panel, log hal.Logger) *Display {
	d := &Display{drv: drv, log: log}
	d.enabled.Store(true)
	return d
}

// Flush implements gfx.DisplayOutput. While output is disabled the frame
// is dropped without touching the bus (not queued), and done is still
// signalled so the engine keeps rendering; a collaborator can then read
// the engine's framebuffer for a screenshot while the panel stays frozen.
func (d *Display) Flush(a gfx.Area, pixels []byte, done func()) {
	defer done()

	if !d.enabled.Load() {
		return
	}

	if err := d.drv.SetWindow(a.X1, a.Y1, a.X2, a.Y2); err != nil {
		d.log.WriteLineString("port: flush window: " + err.Error())
		return
	}
	if err := d.drv.WritePixels(pixels, a.Width()*a.Height()); err != nil {
		d.log.WriteLineString("port: flush pixels: " + err.Error())
	}
}

// EnableOutput resumes hardware writes starting with the next flush.
func (d *Display) EnableOutput() { d.enabled.Store(true) }

// DisableOutput suppresses hardware writes starting with the next flush.
// Suppressed frames are not buffered.
func (d *Display) DisableOutput() { d.enabled.Store(false) }
