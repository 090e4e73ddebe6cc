//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"slate/app"
	"slate/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var joystick bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&cfg.For, "for", 0, "Stop after this long in headless mode (0 = run forever).")
	flag.BoolVar(&joystick, "joystick", true, "Enable the joystick input task.")
	flag.Parse()

	start := func(h hal.HAL) {
		s, err := app.New(h, app.Config{Joystick: joystick})
		if err == nil {
			err = s.Start()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, start, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(start); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
