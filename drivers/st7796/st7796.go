// Package st7796 implements a driver for the ST7796 TFT panel controller
// connected over 4-wire SPI (clock and data plus chip-select and
// data/command control lines).
//
// Every bus transaction is bracketed by chip-select; command and data
// phases are never mixed inside one bracket. The controller expects a
// short settling margin around command bytes, not around data.
package st7796

import (
	"fmt"
	"time"

	"slate/hal"
)

// Panel dimensions in the controller's native (portrait) addressing.
const (
	defaultWidth  = 320
	defaultHeight = 480
)

// Command opcodes. Values and transmission order are part of the
// compatibility surface with the panel.
const (
	cmdSLPIN  = 0x10
	cmdSLPOUT = 0x11
	cmdINVON  = 0x21
	cmdDISPON = 0x29
	cmdCASET  = 0x2A
	cmdRASET  = 0x2B
	cmdRAMWR  = 0x2C
	cmdMADCTL = 0x36
	cmdCOLMOD = 0x3A
)

// Orientation selects how (x,y) map to panel memory. It remaps the
// controller's row/column/refresh-order bits for all subsequent window
// operations.
type Orientation uint8

const (
	Portrait Orientation = iota
	Landscape
	PortraitInverted
	LandscapeInverted
)

// MADCTL values per orientation: MY/MX/MV plus the BGR channel-order bit,
// which this panel wants set in every mode.
var madctl = [4]byte{
	Portrait:          0x48,
	Landscape:         0x28,
	PortraitInverted:  0x88,
	LandscapeInverted: 0xE8,
}

type initCmd struct {
	cmd   byte
	data  []byte
	delay time.Duration // applied after the transaction completes
}

// Power-on command table, from the panel vendor's recommended sequence.
// Transmitted in order during Configure; reordering breaks initialization.
// The two delay entries satisfy the controller's power sequencing after
// leave-sleep and display-on.
var initSequence = []initCmd{
	{cmd: 0xCF, data: []byte{0x00, 0x83, 0x30}},
	{cmd: 0xED, data: []byte{0x64, 0x03, 0x12, 0x81}},
	{cmd: 0xE8, data: []byte{0x85, 0x01, 0x79}},
	{cmd: 0xCB, data: []byte{0x39, 0x2C, 0x00, 0x34, 0x02}},
	{cmd: 0xF7, data: []byte{0x20}},
	{cmd: 0xEA, data: []byte{0x00, 0x00}},

	// Power and VCOM control.
	{cmd: 0xC0, data: []byte{0x26}},
	{cmd: 0xC1, data: []byte{0x11}},
	{cmd: 0xC5, data: []byte{0x35, 0x3E}},
	{cmd: 0xC7, data: []byte{0xBE}},

	{cmd: cmdMADCTL, data: []byte{0x28}},
	{cmd: cmdCOLMOD, data: []byte{0x05}}, // 16bpp RGB565

	// Frame rate.
	{cmd: 0xB1, data: []byte{0x00, 0x1B}},
	{cmd: 0xF2, data: []byte{0x08}},
	{cmd: 0x26, data: []byte{0x01}},

	// Gamma correction.
	{cmd: 0xE0, data: []byte{0x1F, 0x1A, 0x18, 0x0A, 0x0F, 0x06, 0x45, 0x87,
		0x32, 0x0A, 0x07, 0x02, 0x07, 0x05, 0x00}},
	{cmd: 0xE1, data: []byte{0x00, 0x25, 0x27, 0x05, 0x10, 0x09, 0x3A, 0x78,
		0x4D, 0x05, 0x18, 0x0D, 0x38, 0x3A, 0x1F}},

	// Full-panel address window.
	{cmd: cmdCASET, data: []byte{0x00, 0x00, 0x00, 0xEF}},
	{cmd: cmdRASET, data: []byte{0x00, 0x00, 0x01, 0x3F}},
	{cmd: cmdRAMWR},

	{cmd: 0xB7, data: []byte{0x07}},
	{cmd: 0xB6, data: []byte{0x0A, 0x82, 0x27, 0x00}},

	{cmd: cmdSLPOUT, delay: 100 * time.Millisecond},
	{cmd: cmdDISPON, delay: 100 * time.Millisecond},
}

// Config is the panel configuration applied by Configure.
type Config struct {
	Width       int16 // native portrait width; 0 means 320
	Height      int16 // native portrait height; 0 means 480
	Orientation Orientation
}

// Device is an owned handle to one panel controller. All state lives here;
// there is no package-level device.
type Device struct {
	bus hal.SPI
	cs  hal.Pin
	dc  hal.Pin
	rst hal.Pin

	width       int16
	height      int16
	orientation Orientation

	sleep func(time.Duration)
	buf   [4]byte
}

// New creates a driver for a panel on the given bus and control lines.
// The bus must already be configured.
func New(bus hal.SPI, cs, dc, rst hal.Pin) *Device {
	return &Device{
		bus:   bus,
		cs:    cs,
		dc:    dc,
		rst:   rst,
		width: defaultWidth, height: defaultHeight,
		sleep: time.Sleep,
	}
}

// Configure resets the controller and transmits the power-on command
// table, then applies the configured orientation and enables display
// inversion (the panel's native color polarity requires it).
func (d *Device) Configure(cfg Config) error {
	if cfg.Width != 0 {
		d.width = cfg.Width
	}
	if cfg.Height != 0 {
		d.height = cfg.Height
	}

	d.reset()

	for _, c := range initSequence {
		if err := d.command(c.cmd, c.data); err != nil {
			return err
		}
		if c.delay > 0 {
			d.sleep(c.delay)
		}
	}

	if err := d.SetOrientation(cfg.Orientation); err != nil {
		return err
	}
	return d.command(cmdINVON, nil)
}

// SetOrientation writes the memory-access-control byte for the given
// orientation. It must precede any window operation that assumes the new
// axis mapping.
func (d *Device) SetOrientation(o Orientation) error {
	if o > LandscapeInverted {
		return fmt.Errorf("st7796: orientation %d: %w", o, hal.ErrInvalidArg)
	}
	d.orientation = o
	return d.command(cmdMADCTL, []byte{madctl[o]})
}

// Orientation returns the current orientation.
func (d *Device) Orientation() Orientation {
	return d.orientation
}

// Size returns the panel size in the current orientation.
func (d *Device) Size() (width, height int16) {
	if d.orientation == Landscape || d.orientation == LandscapeInverted {
		return d.height, d.width
	}
	return d.width, d.height
}

// SetWindow sets the addressable rectangle for the next pixel stream and
// arms the controller's memory write. The controller auto-increments
// through the window as bytes arrive, wrapping row to row. Call it exactly
// once per WritePixels.
func (d *Device) SetWindow(x1, y1, x2, y2 int16) error {
	w, h := d.Size()
	if x1 > x2 || y1 > y2 || x1 < 0 || y1 < 0 || x2 >= w || y2 >= h {
		return fmt.Errorf("st7796: window (%d,%d)-(%d,%d): %w", x1, y1, x2, y2, hal.ErrInvalidArg)
	}

	// Coordinate bytes go out high byte first.
	if err := d.command(cmdCASET, []byte{
		byte(uint16(x1) >> 8), byte(x1),
		byte(uint16(x2) >> 8), byte(x2),
	}); err != nil {
		return err
	}
	if err := d.command(cmdRASET, []byte{
		byte(uint16(y1) >> 8), byte(y1),
		byte(uint16(y2) >> 8), byte(y2),
	}); err != nil {
		return err
	}
	return d.command(cmdRAMWR, nil)
}

// WritePixels streams pixels*2 bytes of 16-bit color data as one burst
// with the data line held active. The pixel encoding is opaque to this
// layer. No-op when pixels is 0 or the buffer is empty.
func (d *Device) WritePixels(buf []byte, pixels int) error {
	if pixels == 0 || len(buf) == 0 {
		return nil
	}
	n := pixels * 2
	if n > len(buf) {
		return fmt.Errorf("st7796: %d pixels exceed %d-byte buffer: %w", pixels, len(buf), hal.ErrInvalidArg)
	}

	d.cs.Low()
	d.dc.High()
	err := d.bus.Tx(buf[:n], nil)
	d.cs.High()
	if err != nil {
		return fmt.Errorf("st7796: pixel write: %w", err)
	}
	return nil
}

// Sleep puts the controller in or out of sleep mode.
func (d *Device) Sleep(enable bool) error {
	cmd := byte(cmdSLPOUT)
	if enable {
		cmd = cmdSLPIN
	}
	if err := d.command(cmd, nil); err != nil {
		return err
	}
	d.sleep(100 * time.Millisecond)
	return nil
}

// reset runs the documented reset-line sequence so the controller's
// internal reset completes before any command is sent.
func (d *Device) reset() {
	d.rst.High()
	d.sleep(100 * time.Millisecond)
	d.rst.Low()
	d.sleep(100 * time.Millisecond)
	d.rst.High()
	d.sleep(100 * time.Millisecond)
}

// command sends one command byte, then any payload as a separate data
// transaction.
func (d *Device) command(cmd byte, data []byte) error {
	d.cs.Low()
	d.dc.Low()
	d.sleep(time.Microsecond) // datasheet timing margin
	d.buf[0] = cmd
	err := d.bus.Tx(d.buf[:1], nil)
	d.sleep(time.Microsecond)
	d.cs.High()
	if err != nil {
		return fmt.Errorf("st7796: command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *Device) data(data []byte) error {
	d.cs.Low()
	d.dc.High()
	err := d.bus.Tx(data, nil)
	d.cs.High()
	if err != nil {
		return fmt.Errorf("st7796: data write: %w", err)
	}
	return nil
}
