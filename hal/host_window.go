//go:build !tinygo

package hal

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"slate/internal/buildinfo"
)

// RunWindow opens a desktop window showing the emulated panel and
// forwarding mouse and keyboard input to the emulated touch controller,
// joystick and buttons. It blocks until the window closes.
func RunWindow(run func(HAL)) error {
	h := New().(*hostHAL)
	run(h)

	g := &hostGame{h: h}
	ebiten.SetWindowTitle("Slate (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.panel.width, h.panel.height)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	touched bool
}

func (g *hostGame) Update() error {
	g.pollMouse()
	g.pollKeys()
	return nil
}

func (g *hostGame) pollMouse() {
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		if x >= 0 && x < g.h.panel.width && y >= 0 && y < g.h.panel.height {
			g.h.touch.press(uint16(x), uint16(y))
			g.touched = true
		}
		return
	}
	if g.touched {
		g.h.touch.release()
		g.touched = false
	}
}

func (g *hostGame) pollKeys() {
	// Arrow keys deflect the joystick well past the dead zone.
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowLeft):
		g.h.axisX.set(300)
	case ebiten.IsKeyPressed(ebiten.KeyArrowRight):
		g.h.axisX.set(3800)
	default:
		g.h.axisX.set(2048)
	}
	switch {
	case ebiten.IsKeyPressed(ebiten.KeyArrowUp):
		g.h.axisY.set(3800)
	case ebiten.IsKeyPressed(ebiten.KeyArrowDown):
		g.h.axisY.set(300)
	default:
		g.h.axisY.set(2048)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) && len(g.h.btns) > 0 {
		g.h.btns[0].trigger()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) && len(g.h.btns) > 1 {
		g.h.btns[1].trigger()
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	p := g.h.panel
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, p.width, p.height))
		g.scratch = make([]byte, p.width*p.height*2)
		g.fbImg = ebiten.NewImage(p.width, p.height)
	}

	p.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.panel.width, g.h.panel.height
}

func rgb888From565(v uint16) (r, g, b uint8) {
	r = uint8((v >> 11) & 0x1F)
	g = uint8((v >> 5) & 0x3F)
	b = uint8(v & 0x1F)
	r = r<<3 | r>>2
	g = g<<2 | g>>4
	b = b<<3 | b>>2
	return r, g, b
}
