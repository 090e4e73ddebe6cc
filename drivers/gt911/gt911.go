// Package gt911 implements a driver for the GT911 capacitive touch
// controller on I2C.
//
// All registers sit behind 16-bit big-endian addresses sent as the first
// two bytes of every transaction; reads are an address write followed by a
// repeated-start data read. Multi-byte values are little-endian.
package gt911

import (
	"errors"
	"fmt"

	"slate/hal"
)

// DefaultAddress is the controller's 7-bit bus address.
const DefaultAddress = 0x5D

// Register map, from the chip datasheet.
const (
	regProductID = 0x8140 // 4 ASCII bytes
	regVendorID  = 0x814A
	regXResL     = 0x8146
	regXResH     = 0x8147
	regYResL     = 0x8148
	regYResH     = 0x8149
	regStatus    = 0x814E
	regPt1XL     = 0x8150
	regPt1XH     = 0x8151
	regPt1YL     = 0x8152
	regPt1YH     = 0x8153
)

// Status register layout: bit7 flags new data, the low nibble is the
// reported touch-point count.
const (
	statusReady  = 0x80
	statusPtMask = 0x0F
)

const productIDLen = 4

// ErrNotConfigured is returned by ReadTouch before a successful Configure.
var ErrNotConfigured = errors.New("gt911: not configured")

// DeviceInfo is the read-only identity snapshot populated by Configure.
type DeviceInfo struct {
	Initialized bool
	ProductID   string // 4-character ASCII code
	MaxX        uint16
	MaxY        uint16
	BusAddress  uint8
}

// Sample is one touch reading. When no finger is detected the sample
// still carries the last pressed coordinates with Pressed false, so a
// release reports where it occurred.
type Sample struct {
	X       uint16
	Y       uint16
	Pressed bool
}

// Device is an owned handle to one touch controller. The persisted
// last-known position lives here, not in hidden storage.
type Device struct {
	bus  hal.I2C
	addr uint16
	info DeviceInfo

	lastX uint16
	lastY uint16

	buf [3]byte
}

// New creates a driver for a controller at the default address. The bus
// must already be configured (pull-ups on, 100 kHz).
func New(bus hal.I2C) *Device {
	return &Device{
		bus:  bus,
		addr: DefaultAddress,
		info: DeviceInfo{BusAddress: DefaultAddress},
	}
}

// Configure verifies the controller responds and reads its identity and
// resolution. It fails on the first register read that fails; there is no
// retry.
func (d *Device) Configure() error {
	if d.info.Initialized {
		return nil
	}

	var id [productIDLen]byte
	for i := range id {
		b, err := d.readReg(regProductID + uint16(i))
		if err != nil {
			return err
		}
		id[i] = b
	}

	if _, err := d.readReg(regVendorID); err != nil {
		return err
	}

	lo, err := d.readReg(regXResL)
	if err != nil {
		return err
	}
	hi, err := d.readReg(regXResH)
	if err != nil {
		return err
	}
	d.info.MaxX = uint16(lo) | uint16(hi)<<8

	lo, err = d.readReg(regYResL)
	if err != nil {
		return err
	}
	hi, err = d.readReg(regYResH)
	if err != nil {
		return err
	}
	d.info.MaxY = uint16(lo) | uint16(hi)<<8

	d.info.ProductID = string(id[:])
	d.info.Initialized = true
	return nil
}

// ReadTouch reads the status register and extracts at most one touch
// point. Any bus failure returns an error with no partial result.
//
// The status register must be written back to zero before the point data
// is consumed whenever the ready bit is set or the point count is below 6:
// the controller withholds the next frame until it sees its own status
// byte cleared, and the low nibble can hold garbage that would otherwise
// never be acknowledged. Clearing happens before branching on the count so
// acknowledgment is never starved by however many points were found.
func (d *Device) ReadTouch() (Sample, error) {
	if !d.info.Initialized {
		return Sample{}, ErrNotConfigured
	}

	status, err := d.readReg(regStatus)
	if err != nil {
		return Sample{}, err
	}
	count := status & statusPtMask

	if status&statusReady != 0 || count < 6 {
		if err := d.clearStatus(); err != nil {
			return Sample{}, err
		}
	}

	if count == 1 {
		xl, err := d.readReg(regPt1XL)
		if err != nil {
			return Sample{}, err
		}
		xh, err := d.readReg(regPt1XH)
		if err != nil {
			return Sample{}, err
		}
		yl, err := d.readReg(regPt1YL)
		if err != nil {
			return Sample{}, err
		}
		yh, err := d.readReg(regPt1YH)
		if err != nil {
			return Sample{}, err
		}
		d.lastX = uint16(xl) | uint16(xh)<<8
		d.lastY = uint16(yl) | uint16(yh)<<8
		return Sample{X: d.lastX, Y: d.lastY, Pressed: true}, nil
	}

	// No touch, or two or more points (multi-touch is unsupported):
	// report a release at the last pressed position.
	return Sample{X: d.lastX, Y: d.lastY, Pressed: false}, nil
}

// Info returns the identity snapshot from Configure. It never touches the
// bus.
func (d *Device) Info() DeviceInfo {
	return d.info
}

func (d *Device) readReg(reg uint16) (byte, error) {
	d.buf[0] = byte(reg >> 8)
	d.buf[1] = byte(reg)
	if err := d.bus.Tx(d.addr, d.buf[:2], d.buf[2:3]); err != nil {
		return 0, fmt.Errorf("gt911: read %#04x: %w", reg, err)
	}
	return d.buf[2], nil
}

func (d *Device) clearStatus() error {
	d.buf[0] = byte(regStatus >> 8)
	d.buf[1] = byte(regStatus)
	d.buf[2] = 0x00
	if err := d.bus.Tx(d.addr, d.buf[:3], nil); err != nil {
		return fmt.Errorf("gt911: clear status: %w", err)
	}
	return nil
}
