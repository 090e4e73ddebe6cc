//go:build tinygo && baremetal

package hal

import (
	"machine"
	"time"
)

// Board wiring. SPI0 carries the panel, I2C0 the touch controller; the
// joystick sits on the two ADC-capable pins.
const (
	pinPanelSCK = machine.GP2
	pinPanelSDO = machine.GP3
	pinPanelCS  = machine.GP5
	pinPanelDC  = machine.GP6
	pinPanelRST = machine.GP7

	pinTouchSDA = machine.GP8
	pinTouchSCL = machine.GP9

	pinJoyX = machine.GP26
	pinJoyY = machine.GP27

	pinBtn1 = machine.GP14
	pinBtn2 = machine.GP15
	pinBtn3 = machine.GP22

	pinLED1 = machine.GP16
	pinLED2 = machine.GP17
)

const (
	panelSPIFreq = 40_000_000
	touchI2CFreq = 100_000
)

type deviceHAL struct {
	logger *uartLogger
	t      *deviceTime
}

// New brings up the board peripherals and returns the device HAL. Bus
// configuration failures are logged and surface later as transfer errors;
// there is nothing useful to do about them this early.
func New() HAL {
	logger := newUARTLogger()

	if err := machine.SPI0.Configure(machine.SPIConfig{
		Frequency: panelSPIFreq,
		SCK:       pinPanelSCK,
		SDO:       pinPanelSDO,
		Mode:      0,
	}); err != nil {
		logger.WriteLineString("hal: spi0: " + err.Error())
	}

	if err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       pinTouchSDA,
		SCL:       pinTouchSCL,
		Frequency: touchI2CFreq,
	}); err != nil {
		logger.WriteLineString("hal: i2c0: " + err.Error())
	}
	// The touch controller needs a moment after bus power-up before it
	// answers.
	time.Sleep(10 * time.Millisecond)

	machine.InitADC()

	for _, p := range []machine.Pin{pinPanelCS, pinPanelDC, pinPanelRST, pinLED1, pinLED2} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}

	return &deviceHAL{
		logger: logger,
		t:      newDeviceTime(),
	}
}

func (h *deviceHAL) Logger() Logger { return h.logger }

func (h *deviceHAL) Display() DisplayIO {
	return DisplayIO{
		Bus: machine.SPI0,
		CS:  outPin(pinPanelCS),
		DC:  outPin(pinPanelDC),
		RST: outPin(pinPanelRST),
	}
}

func (h *deviceHAL) Touch() I2C { return machine.I2C0 }

func (h *deviceHAL) Joystick() (ADC, ADC) {
	return newADCPin(pinJoyX), newADCPin(pinJoyY)
}

func (h *deviceHAL) Buttons() []Button {
	// The third button has no LED or indicator behind it; the app layer
	// debounces it all the same.
	return []Button{
		&devButton{name: "BTN1", pin: pinBtn1},
		&devButton{name: "BTN2", pin: pinBtn2},
		&devButton{name: "BTN3", pin: pinBtn3},
	}
}

func (h *deviceHAL) LEDs() []Pin {
	return []Pin{outPin(pinLED1), outPin(pinLED2)}
}

func (h *deviceHAL) Time() Time         { return h.t }
func (h *deviceHAL) Resetter() Resetter { return watchdogResetter{log: h.logger} }

// outPin adapts machine.Pin to the output-line contract.
type outPin machine.Pin

func (p outPin) High() { machine.Pin(p).High() }
func (p outPin) Low()  { machine.Pin(p).Low() }

type adcPin struct {
	a machine.ADC
}

func newADCPin(p machine.Pin) *adcPin {
	a := machine.ADC{Pin: p}
	a.Configure(machine.ADCConfig{})
	return &adcPin{a: a}
}

// Read narrows the converter's left-aligned 16-bit sample to the 12 bits
// the hardware actually resolves.
func (p *adcPin) Read() uint16 { return p.a.Get() >> 4 }

type devButton struct {
	name string
	pin  machine.Pin
}

func (b *devButton) Name() string { return b.name }

func (b *devButton) SetRisingInterrupt(fn func()) error {
	b.pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return b.pin.SetInterrupt(machine.PinRising, func(machine.Pin) { fn() })
}

// deviceTime emits the 1 kHz tick stream from a sleeping goroutine. A
// stalled consumer loses ticks rather than wedging the source.
type deviceTime struct {
	ch chan uint64
}

func newDeviceTime() *deviceTime {
	t := &deviceTime{ch: make(chan uint64, 64)}
	go t.run()
	return t
}

func (t *deviceTime) Ticks() <-chan uint64 { return t.ch }

func (t *deviceTime) run() {
	var seq uint64
	for {
		time.Sleep(time.Millisecond)
		seq++
		select {
		case t.ch <- seq:
		default:
		}
	}
}

type watchdogResetter struct {
	log Logger
}

// Reboot arms the watchdog with the shortest timeout and spins until it
// fires. The reset is a full chip reset; this function does not return.
func (r watchdogResetter) Reboot() {
	r.log.WriteLineString("hal: watchdog reboot")
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
	}
}

type uartLogger struct {
	uart *machine.UART
}

func newUARTLogger() *uartLogger {
	uart := machine.UART0
	uart.Configure(machine.UARTConfig{
		BaudRate: 115200,
		TX:       machine.GP0,
		RX:       machine.GP1,
	})
	return &uartLogger{uart: uart}
}

func (l *uartLogger) WriteLineString(s string) {
	l.uart.Write([]byte(s))
	l.uart.Write([]byte("\r\n"))
}

func (l *uartLogger) WriteLineBytes(b []byte) {
	l.uart.Write(b)
	l.uart.Write([]byte("\r\n"))
}
