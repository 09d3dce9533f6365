//go:build tinygo && baremetal

package main

import (
	"receiver/app"
	"receiver/hal"
)

func main() {
	app.Run(hal.New(), app.Config{})
}
