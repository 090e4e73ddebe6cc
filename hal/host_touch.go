//go:build !tinygo

package hal

import "sync"

// GT911 register layout, mirrored by the emulator.
const (
	touchRegProductID = 0x8140
	touchRegVendorID  = 0x814A
	touchRegMaxXLow   = 0x8146
	touchRegStatus    = 0x814E
	touchRegPoint1    = 0x8150
)

// hostTouch is a register-level GT911 emulator behind the hal.I2C
// interface. It honors the controller's status handshake: a new frame is
// published to the point registers only when the previous status byte has
// been acknowledged with a zero write, matching real silicon where an
// unacknowledged frame blocks the next one.
type hostTouch struct {
	mu sync.Mutex

	regs map[uint16]byte

	hasPending bool
	pendX      uint16
	pendY      uint16
	pendCount  byte
}

func newHostTouch(maxX, maxY int) *hostTouch {
	t := &hostTouch{regs: make(map[uint16]byte)}
	id := "911\x00"
	for i := 0; i < len(id); i++ {
		t.regs[touchRegProductID+uint16(i)] = id[i]
	}
	t.regs[touchRegVendorID] = 0x01
	t.regs[touchRegMaxXLow] = byte(maxX)
	t.regs[touchRegMaxXLow+1] = byte(maxX >> 8)
	t.regs[touchRegMaxXLow+2] = byte(maxY)
	t.regs[touchRegMaxXLow+3] = byte(maxY >> 8)
	return t
}

// Tx implements hal.I2C: a two-byte big-endian register address, then
// either a payload write or a sequential read.
func (t *hostTouch) Tx(addr uint16, w, r []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(w) < 2 {
		return ErrInvalidArg
	}
	reg := uint16(w[0])<<8 | uint16(w[1])

	for i, b := range w[2:] {
		t.write(reg+uint16(i), b)
	}
	for i := range r {
		r[i] = t.regs[reg+uint16(i)]
	}
	return nil
}

func (t *hostTouch) write(reg uint16, b byte) {
	t.regs[reg] = b
	if reg == touchRegStatus && b == 0 && t.hasPending {
		t.publishLocked()
	}
}

// press queues one touch frame. It publishes immediately when the status
// register is idle, otherwise it waits for the host to ack the frame in
// flight.
func (t *hostTouch) press(x, y uint16) {
	t.frame(x, y, 1)
}

// release queues a zero-contact frame at the last coordinates.
func (t *hostTouch) release() {
	t.mu.Lock()
	x := uint16(t.regs[touchRegPoint1]) | uint16(t.regs[touchRegPoint1+1])<<8
	y := uint16(t.regs[touchRegPoint1+2]) | uint16(t.regs[touchRegPoint1+3])<<8
	t.mu.Unlock()
	t.frame(x, y, 0)
}

func (t *hostTouch) frame(x, y uint16, count byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pendX, t.pendY, t.pendCount = x, y, count
	t.hasPending = true
	if t.regs[touchRegStatus] == 0 {
		t.publishLocked()
	}
}

func (t *hostTouch) publishLocked() {
	t.regs[touchRegPoint1] = byte(t.pendX)
	t.regs[touchRegPoint1+1] = byte(t.pendX >> 8)
	t.regs[touchRegPoint1+2] = byte(t.pendY)
	t.regs[touchRegPoint1+3] = byte(t.pendY >> 8)
	t.regs[touchRegStatus] = 0x80 | t.pendCount
	t.hasPending = false
}
