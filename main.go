//go:build tinygo

package main

import (
	"context"
	"embed"
	"io/fs"
	"log"
	"machine"
	"os"
	"time"

	"nifri2/emotipet/cmd"
)

//go:embed animations
var animations embed.FS

// buildChannels, buildDayStart and buildStore are set at compile time via -ldflags
// e.g. -ldflags="-X main.buildChannels=3 -X main.buildDayStart=7"
var (
	buildChannels string
	buildDayStart string
	buildStore    string
)

func main() {
	logger := log.New(os.Stdout, "", 0)

	settings := cmd.DefaultSettings()
	settings.Channels = cmd.ParseChannels(buildChannels, settings.Channels)
	settings.Emotion.DayStartHour = cmd.ParseHour(buildDayStart, settings.Emotion.DayStartHour)
	settings.Store = cmd.ParseStore(buildStore)
	settings.Motion = cmd.BoardMotion()

	assets, err := fs.Sub(animations, "animations")
	if err != nil {
		halt(logger, err)
	}

	board, err := cmd.NewPicoBoard(assets, settings.StateKey)
	if err != nil {
		halt(logger, err)
	}
	if settings.Store == cmd.StoreMemory {
		board.KV = nil
	}

	pet := cmd.NewPet(settings, board, logger)
	if err := pet.Run(context.Background()); err != nil {
		halt(logger, err)
	}
}

// halt reports a fatal error by blinking the LED until reset.
func halt(logger *log.Logger, err error) {
	logger.Printf("[pet] fatal: %v", err)
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(200 * time.Millisecond)
		led.Low()
		time.Sleep(200 * time.Millisecond)
	}
}
