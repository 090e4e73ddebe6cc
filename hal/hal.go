package hal

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// Closed set of bus error kinds. Drivers wrap these with %w so callers can
// tell transient conditions (Timeout, Nack) from fatal ones (BusClaim) and
// from their own mistakes (InvalidArg).
var (
	ErrBusClaim   = errors.New("bus claim failed")
	ErrTimeout    = errors.New("bus timeout")
	ErrNack       = errors.New("bus nack")
	ErrInvalidArg = errors.New("invalid argument")
)

// SPI is the byte-oriented SPI bus contract consumed by the display driver.
// machine.SPI on device and the host panel emulator both satisfy it.
type SPI = drivers.SPI

// I2C matches machine.I2C's transaction shape: write w, then read into r
// with a repeated start between the two when both are non-empty.
type I2C interface {
	Tx(addr uint16, w, r []byte) error
}

// Pin is a single digital output line.
type Pin interface {
	High()
	Low()
}

// ADC is one analog input channel. Read returns a 12-bit right-aligned
// sample (0..4095) regardless of the underlying converter's width.
type ADC interface {
	Read() uint16
}

// Button is an edge-triggered digital input. The handler fires on rising
// edges only and runs in interrupt context on device: it must not block
// and must not touch anything guarded by the surface lock.
type Button interface {
	Name() string
	SetRisingInterrupt(fn func()) error
}

// Resetter requests a fatal full-device reset. Reboot does not return.
type Resetter interface {
	Reboot()
}

// Time provides the 1 kHz base tick stream that drives the graphics
// engine's time base.
type Time interface {
	Ticks() <-chan uint64
}

// DisplayIO is the wiring of the panel controller: the SPI bus plus the
// chip-select, data/command and reset control lines.
type DisplayIO struct {
	Bus SPI
	CS  Pin
	DC  Pin
	RST Pin
}

// HAL is the only contact point between the firmware core and the board.
type HAL interface {
	Logger() Logger
	Display() DisplayIO
	Touch() I2C
	Joystick() (x, y ADC)
	Buttons() []Button
	LEDs() []Pin
	Time() Time
	Resetter() Resetter
}
