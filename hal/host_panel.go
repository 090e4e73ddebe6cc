//go:build !tinygo

package hal

import "sync"

// Control line roles on the emulated panel.
const (
	pinCS = iota
	pinDC
	pinRST
)

// MADCTL orientation bits.
const (
	madMY = 0x80
	madMX = 0x40
	madMV = 0x20
)

// hostPanel is a register-level ST7796 emulator behind the drivers.SPI
// interface. It decodes the command framing the real controller expects:
// a command byte arrives with DC low inside a CS bracket, parameters and
// pixel data with DC high.
type hostPanel struct {
	mu sync.Mutex

	width, height int
	vram          []uint16
	writes        []int // per-pixel write counter, for tests

	csLow, dcLow bool
	rstLow       bool

	cmd     byte
	haveCmd bool
	params  []byte

	// RAMWR state.
	writing   bool
	x1, y1    int
	x2, y2    int
	col, row  int
	pixHi     byte
	havePixHi bool
	madctl    byte
	sleeping  bool
	displayOn bool
	inverted  bool
	cmdLog    []byte
}

func newHostPanel(w, h int) *hostPanel {
	p := &hostPanel{width: w, height: h}
	p.powerOn()
	return p
}

func (p *hostPanel) powerOn() {
	p.vram = make([]uint16, p.width*p.height)
	p.writes = make([]int, p.width*p.height)
	p.cmd = 0
	p.haveCmd = false
	p.writing = false
	p.madctl = 0
	p.sleeping = true
	p.displayOn = false
	p.inverted = false
	p.x1, p.y1 = 0, 0
	p.x2, p.y2 = p.width-1, p.height-1
}

// Tx implements drivers.SPI. The panel is write-only; read bytes come
// back zero.
func (p *hostPanel) Tx(w, r []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, b := range w {
		p.feed(b)
	}
	for i := range r {
		r[i] = 0
	}
	return nil
}

// Transfer implements drivers.SPI.
func (p *hostPanel) Transfer(b byte) (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.feed(b)
	return 0, nil
}

func (p *hostPanel) feed(b byte) {
	if !p.csLow {
		// Byte clocked with CS high: the controller ignores it.
		return
	}
	if p.dcLow {
		p.startCommand(b)
		return
	}
	if p.writing {
		p.feedPixel(b)
		return
	}
	p.params = append(p.params, b)
	p.applyParams()
}

func (p *hostPanel) startCommand(b byte) {
	p.cmd = b
	p.haveCmd = true
	p.params = p.params[:0]
	p.writing = false
	p.havePixHi = false
	p.cmdLog = append(p.cmdLog, b)

	switch b {
	case 0x11: // SLPOUT
		p.sleeping = false
	case 0x29: // DISPON
		p.displayOn = true
	case 0x28: // DISPOFF
		p.displayOn = false
	case 0x21: // INVON
		p.inverted = true
	case 0x20: // INVOFF
		p.inverted = false
	case 0x2C: // RAMWR
		p.writing = true
		p.col, p.row = p.x1, p.y1
	}
}

func (p *hostPanel) applyParams() {
	if !p.haveCmd {
		return
	}
	switch p.cmd {
	case 0x36: // MADCTL
		p.madctl = p.params[0]
	case 0x2A: // CASET
		if len(p.params) == 4 {
			p.x1 = int(p.params[0])<<8 | int(p.params[1])
			p.x2 = int(p.params[2])<<8 | int(p.params[3])
		}
	case 0x2B: // RASET
		if len(p.params) == 4 {
			p.y1 = int(p.params[0])<<8 | int(p.params[1])
			p.y2 = int(p.params[2])<<8 | int(p.params[3])
		}
	}
}

func (p *hostPanel) feedPixel(b byte) {
	if !p.havePixHi {
		p.pixHi = b
		p.havePixHi = true
		return
	}
	p.havePixHi = false
	v := uint16(p.pixHi)<<8 | uint16(b)
	p.plot(p.col, p.row, v)

	p.col++
	if p.col > p.x2 {
		p.col = p.x1
		p.row++
		if p.row > p.y2 {
			// Address pointer wraps to the window origin.
			p.row = p.y1
		}
	}
}

// plot maps logical window coordinates through MADCTL onto native VRAM.
func (p *hostPanel) plot(cx, cy int, v uint16) {
	x, y := cx, cy
	if p.madctl&madMV != 0 {
		x, y = y, x
	}
	if p.madctl&madMX != 0 {
		x = p.width - 1 - x
	}
	if p.madctl&madMY != 0 {
		y = p.height - 1 - y
	}
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	p.vram[y*p.width+x] = v
	p.writes[y*p.width+x]++
}

// snapshotRGB565 copies native VRAM, little-endian per pixel, into dst.
func (p *hostPanel) snapshotRGB565(dst []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, v := range p.vram {
		if i*2+1 >= len(dst) {
			break
		}
		dst[i*2] = byte(v)
		dst[i*2+1] = byte(v >> 8)
	}
}

func (p *hostPanel) pin(role int) Pin {
	return &panelPin{p: p, role: role}
}

// panelPin drives one of the panel's control lines.
type panelPin struct {
	p    *hostPanel
	role int
}

func (pp *panelPin) High() { pp.set(true) }
func (pp *panelPin) Low()  { pp.set(false) }

func (pp *panelPin) set(high bool) {
	p := pp.p
	p.mu.Lock()
	defer p.mu.Unlock()
	switch pp.role {
	case pinCS:
		p.csLow = !high
	case pinDC:
		p.dcLow = !high
	case pinRST:
		if !high {
			p.rstLow = true
		} else if p.rstLow {
			p.rstLow = false
			p.powerOn()
		}
	}
}
