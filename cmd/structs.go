package cmd

import (
	"image/color"
	"io/fs"
	"time"

	"tinygo.org/x/drivers"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/emotion"
	"nifri2/emotipet/gesture"
	"nifri2/emotipet/motion"
	"nifri2/emotipet/personality"
	"nifri2/emotipet/storage"
)

type StoreKind int

const (
	StoreFlash StoreKind = 0x00 + iota
	StoreMemory
)

type Settings struct {
	Channels     int
	Tick         time.Duration
	SaveInterval time.Duration
	StateKey     string
	Manifest     string
	Store        StoreKind
	Seed         int64 // 0 seeds from the clock

	Gesture gesture.Config
	Motion  motion.Config
	Emotion emotion.Config
}

const (
	TouchChannels = 3
	TickPeriod    = 20 * time.Millisecond
	SaveInterval  = 5 * time.Minute
)

func DefaultSettings() Settings {
	return Settings{
		Channels:     TouchChannels,
		Tick:         TickPeriod,
		SaveInterval: SaveInterval,
		StateKey:     personality.DefaultKey,
		Manifest:     anim.ManifestName,
		Store:        StoreFlash,
		Gesture:      gesture.DefaultConfig(),
		Motion:       motion.DefaultConfig(),
		Emotion:      emotion.DefaultConfig(),
	}
}

// Sensors is the raw input sampled once per tick: touch channel levels are
// written into levels, the inertial sample is returned.
type Sensors interface {
	Read(now time.Duration, levels []bool) (motion.Sample, error)
}

type Motor interface {
	SetMotor(on bool)
}

// StatusLight shows the emotion tint.
type StatusLight interface {
	SetStatus(c color.RGBA) error
}

// Watchdog resets the board unless it is fed every tick.
type Watchdog interface {
	Start() error
	Update()
}

// Board is the hardware a Pet drives. Motor, Status and Watchdog are
// optional.
type Board struct {
	Sensors  Sensors
	Screen   drivers.Displayer
	Motor    Motor
	Status   StatusLight
	Watchdog Watchdog
	Assets   fs.FS
	KV       storage.KV
}
