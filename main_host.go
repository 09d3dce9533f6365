//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"receiver/app"
	"receiver/hal"
)

func main() {
	var hc hal.HeadlessConfig
	var host hal.HostConfig
	var cfg app.Config
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.DurationVar(&hc.RunFor, "run-for", 0, "Stop after this long in headless mode (0 = run forever).")
	flag.StringVar(&host.SDImage, "sd-image", "", "FAT image file used as the SD card.")
	flag.StringVar(&host.RadioPort, "radio-port", "", "Serial port of an RYLR896 LoRa modem.")
	flag.IntVar(&host.RadioBaud, "radio-baud", 115200, "Baud rate of the LoRa modem.")
	flag.BoolVar(&host.Demo, "demo", false, "Press the buttons periodically instead of reading the keyboard.")
	flag.BoolVar(&cfg.Debug, "debug", false, "Log debug lines.")
	flag.BoolVar(&cfg.Listen, "listen", false, "Keep the radio listening and log received frames.")
	flag.BoolVar(&cfg.Journal, "journal", false, "Append received frames to rx.log on the SD card.")
	flag.Parse()

	run := func(ctx context.Context, h hal.HAL) error {
		s, err := app.Boot(h, cfg, nil)
		if err != nil {
			return err
		}
		return s.Run(ctx)
	}

	var err error
	if hc.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = hal.RunHeadless(ctx, hc, host, run)
	} else {
		err = hal.RunWindow(host, run)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
