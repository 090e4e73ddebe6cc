package scene

import (
	"image/color"

	"tinygo.org/x/drivers/pixel"

	"slate/gfx"
)

// Size implements drivers.Displayer.
func (s *Scene) Size() (int16, int16) {
	return int16(s.w), int16(s.h)
}

// SetPixel implements drivers.Displayer. Out-of-bounds writes are dropped.
func (s *Scene) SetPixel(x, y int16, c color.RGBA) {
	s.setPix(int(x), int(y), pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B))
}

// Display implements drivers.Displayer. The scene flushes through the
// bridge on its own schedule, so this is a no-op.
func (s *Scene) Display() error { return nil }

func (s *Scene) setPix(x, y int, c pixel.RGB565BE) {
	if x < 0 || x >= s.w || y < 0 || y >= s.h {
		return
	}
	off := (y*s.w + x) * 2
	s.fb[off] = byte(c)
	s.fb[off+1] = byte(c >> 8)
}

func (s *Scene) fillRect(x, y, w, h int, c color.RGBA) {
	p := pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B)
	for yy := y; yy < y+h; yy++ {
		for xx := x; xx < x+w; xx++ {
			s.setPix(xx, yy, p)
		}
	}
}

func (s *Scene) fillArea(a gfx.Area, c color.RGBA) {
	s.fillRect(int(a.X1), int(a.Y1), a.Width(), a.Height(), c)
}

func (s *Scene) fillCircle(cx, cy, r int, c color.RGBA) {
	p := pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				s.setPix(cx+dx, cy+dy, p)
			}
		}
	}
}

// strokeCircle draws a one-pixel ring.
func (s *Scene) strokeCircle(cx, cy, r int, c color.RGBA) {
	p := pixel.NewColor[pixel.RGB565BE](c.R, c.G, c.B)
	outer := r * r
	inner := (r - 1) * (r - 1)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx*dx + dy*dy
			if d <= outer && d > inner {
				s.setPix(cx+dx, cy+dy, p)
			}
		}
	}
}
