package port

import (
	"slate/drivers/gt911"
	"slate/gfx"
	"slate/hal"
)

// TouchReader is the subset of the touch driver the bridge needs.
type TouchReader interface {
	ReadTouch() (gt911.Sample, error)
}

// Touch bridges the engine's poll callback onto the touch driver. It
// keeps its own last-position cache, which mirrors the driver's persisted
// position after every successful read, so driver failures still report a
// release at a sane location.
type Touch struct {
	drv TouchReader
	log hal.Logger

	lastX, lastY uint16
	failLogged   bool
}

func NewTouch(drv TouchReader, log hal.Logger) *Touch {
	return &Touch{drv: drv, log: log}
}

// ReadTouch implements gfx.PointerInput.
func (t *Touch) ReadTouch() gfx.TouchState {
	s, err := t.drv.ReadTouch()
	if err != nil {
		// Polled at frame rate; log the first failure only.
		if !t.failLogged {
			t.log.WriteLineString("port: touch read: " + err.Error())
			t.failLogged = true
		}
		return gfx.TouchState{X: t.lastX, Y: t.lastY, Pressed: false}
	}
	t.failLogged = false

	t.lastX, t.lastY = s.X, s.Y
	return gfx.TouchState{X: s.X, Y: s.Y, Pressed: s.Pressed}
}
