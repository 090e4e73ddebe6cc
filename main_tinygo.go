//go:build tinygo

package main

import (
	"slate/app"
	"slate/hal"
)

func main() {
	app.Run(hal.New(), app.Config{Joystick: true})
}
