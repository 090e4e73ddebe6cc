// Package app assembles the firmware core: it brings up the display and
// touch drivers over the HAL, builds the scene, and runs the render and
// input tasks around the shared surface lock.
package app

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"slate/drivers/gt911"
	"slate/drivers/st7796"
	"slate/hal"
	"slate/port"
	"slate/scene"
)

const (
	panelWidth  = 320
	panelHeight = 480

	renderInterval = 5 * time.Millisecond
	inputInterval  = 200 * time.Millisecond
	idleInterval   = time.Second

	debounceWindow = 50 * time.Millisecond
)

// Config selects optional behavior of the core.
type Config struct {
	// Joystick enables the analog joystick input task. When false the
	// input task only builds the scene and then idles.
	Joystick bool
}

// System is the running firmware core.
type System struct {
	h   hal.HAL
	cfg Config

	// mu is the surface lock: it spans every engine call that touches
	// scene state (Process, BuildInitialScene, SetBallPosition) and, via
	// Process, the flush and poll callbacks underneath it.
	mu sync.Mutex

	scn   *scene.Scene
	disp  *port.Display
	panel *st7796.Device
	tp    *gt911.Device

	stop chan struct{}
	wg   sync.WaitGroup
}

// New brings up the drivers and builds the system, without starting any
// task. A bus that cannot be brought up is fatal; the caller decides
// between returning the error (host) and halting in place (device).
func New(h hal.HAL, cfg Config) (*System, error) {
	log := h.Logger()

	io := h.Display()
	panel := st7796.New(io.Bus, io.CS, io.DC, io.RST)
	if err := panel.Configure(st7796.Config{Width: panelWidth, Height: panelHeight}); err != nil {
		return nil, fmt.Errorf("app: display bringup: %w", err)
	}
	log.WriteLineString("app: display up 320x480")

	tp := gt911.New(h.Touch())
	if err := tp.Configure(); err != nil {
		return nil, fmt.Errorf("app: touch bringup: %w", err)
	}
	info := tp.Info()
	log.WriteLineString(fmt.Sprintf("app: touch up id=%q res=%dx%d addr=%#x",
		info.ProductID, info.MaxX, info.MaxY, info.BusAddress))

	s := &System{
		h:     h,
		cfg:   cfg,
		panel: panel,
		tp:    tp,
		stop:  make(chan struct{}),
	}
	s.disp = port.NewDisplay(panel, log)
	s.scn = scene.New(scene.Config{
		Width:   panelWidth,
		Height:  panelHeight,
		Output:  s.disp,
		Input:   port.NewTouch(tp, log),
		OnReset: s.requestReset,
	})
	return s, nil
}

// Start wires the buttons and launches the tick pump, the input task and
// the render task.
func (s *System) Start() error {
	if err := s.wireButtons(); err != nil {
		return err
	}

	if t := s.h.Time(); t != nil {
		if ch := t.Ticks(); ch != nil {
			s.wg.Add(1)
			go s.tickPump(ch)
		}
	}

	s.wg.Add(2)
	go s.inputTask()
	go s.renderTask()
	return nil
}

// Stop terminates the tasks. The tick pump exits when its channel closes.
func (s *System) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Scene exposes the engine for host-side screenshots and tests.
func (s *System) Scene() *scene.Scene { return s.scn }

// Display exposes the display bridge so the host shell can gate output.
func (s *System) Display() *port.Display { return s.disp }

// Lock acquires the surface lock for external engine access.
func (s *System) Lock() { s.mu.Lock() }

// Unlock releases the surface lock.
func (s *System) Unlock() { s.mu.Unlock() }

// Run brings the system up and blocks forever (device entrypoint). Bus
// bringup failure halts in place after logging: rebooting would just loop
// through the same failure.
func Run(h hal.HAL, cfg Config) {
	s, err := New(h, cfg)
	if err == nil {
		err = s.Start()
	}
	if err != nil {
		h.Logger().WriteLineString("app: fatal: " + err.Error())
		select {}
	}
	select {}
}

// tickPump forwards the 1 kHz HAL tick stream into the engine time base.
// TickInc is atomic, so this runs without the surface lock.
func (s *System) tickPump(ch <-chan uint64) {
	defer s.wg.Done()
	for range ch {
		s.scn.TickInc(1)
	}
}

// renderTask drives the engine at a steady cadence. Pinned to its thread
// so the render work stays off the input task's core scheduling.
func (s *System) renderTask() {
	defer s.wg.Done()
	runtime.LockOSThread()

	for {
		s.mu.Lock()
		s.scn.Process()
		s.mu.Unlock()

		select {
		case <-s.stop:
			return
		case <-time.After(renderInterval):
		}
	}
}

// inputTask builds the scene, then feeds joystick samples into it. Scene
// construction happens here rather than in New so every widget mutation
// runs under the surface lock while the render task may already be live.
func (s *System) inputTask() {
	defer s.wg.Done()
	runtime.LockOSThread()

	s.mu.Lock()
	s.scn.BuildInitialScene()
	s.mu.Unlock()

	if !s.cfg.Joystick {
		for {
			select {
			case <-s.stop:
				return
			case <-time.After(idleInterval):
			}
		}
	}

	xa, ya := s.h.Joystick()
	for {
		x := MapAxis(xa.Read(), scene.BallRange, false)
		y := MapAxis(ya.Read(), scene.BallRange, true)

		s.mu.Lock()
		s.scn.SetBallPosition(x, y)
		s.mu.Unlock()

		select {
		case <-s.stop:
			return
		case <-time.After(inputInterval):
		}
	}
}

// wireButtons attaches one debounced interrupt handler per button. The
// handler runs in interrupt context: it only touches the lock-free
// indicator flags and the LED line.
func (s *System) wireButtons() error {
	leds := s.h.LEDs()
	for i, b := range s.h.Buttons() {
		i := i
		var led hal.Pin
		if i < len(leds) {
			led = leds[i]
		}
		deb := NewDebouncer(debounceWindow, time.Now)
		ledOn := false // only touched from this button's handler
		err := b.SetRisingInterrupt(func() {
			if !deb.Accept() {
				return
			}
			s.scn.ToggleIndicator(i)
			if led != nil {
				ledOn = !ledOn
				if ledOn {
					led.High()
				} else {
					led.Low()
				}
			}
		})
		if err != nil {
			return fmt.Errorf("app: button %s: %w", b.Name(), err)
		}
	}
	return nil
}

// requestReset runs from Process under the surface lock. Reboot does not
// return on device; on host it terminates the process.
func (s *System) requestReset() {
	s.h.Logger().WriteLineString("app: reset requested")
	s.h.Resetter().Reboot()
}
