// Package gfx defines the callback contract between the firmware core and
// the graphics engine that owns the shared surface.
package gfx

// Area is an axis-aligned rectangle in panel pixel coordinates,
// inclusive on all edges.
type Area struct {
	X1, Y1, X2, Y2 int16
}

func (a Area) Width() int  { return int(a.X2-a.X1) + 1 }
func (a Area) Height() int { return int(a.Y2-a.Y1) + 1 }

// Union returns the smallest area covering both a and b.
func (a Area) Union(b Area) Area {
	if b.X1 < a.X1 {
		a.X1 = b.X1
	}
	if b.Y1 < a.Y1 {
		a.Y1 = b.Y1
	}
	if b.X2 > a.X2 {
		a.X2 = b.X2
	}
	if b.Y2 > a.Y2 {
		a.Y2 = b.Y2
	}
	return a
}

// TouchState is one pointer sample.
type TouchState struct {
	X, Y    uint16
	Pressed bool
}

// DisplayOutput receives rendered regions from the engine. Implementations
// must invoke done exactly once per call, on every path; the engine stalls
// indefinitely waiting for it otherwise.
type DisplayOutput interface {
	Flush(a Area, pixels []byte, done func())
}

// PointerInput returns one touch sample per call. There is no
// continue-reading protocol; the engine asks again on its next cycle.
type PointerInput interface {
	ReadTouch() TouchState
}

// Engine is the processing surface shared between tasks. TickInc runs in
// timer context and must never block. Process must only run while holding
// the surface lock.
type Engine interface {
	TickInc(ms uint32)
	Process()
}
