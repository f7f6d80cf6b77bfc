// Package cmd runs the pet: it samples the board, classifies touches and
// motion, drives the emotion state machine and renders the active clip, all
// from one cooperative loop.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/emotion"
	"nifri2/emotipet/gesture"
	"nifri2/emotipet/haptic"
	"nifri2/emotipet/motion"
	"nifri2/emotipet/personality"
	"nifri2/emotipet/render"
)

type Pet struct {
	settings Settings
	board    Board
	log      *log.Logger

	levels     []bool
	lastSample motion.Sample

	gestures *gesture.Classifier
	motion   *motion.Classifier
	haptics  haptic.Sequencer
	machine  *emotion.Machine
	display  *displayWorker
	saver    saver

	booted     bool
	started    bool
	introUntil time.Duration
	ticks      int
}

func NewPet(settings Settings, board Board, logger *log.Logger) *Pet {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pet{
		settings: settings,
		board:    board,
		log:      logger,
		levels:   make([]bool, settings.Channels),
		gestures: gesture.New(settings.Gesture, settings.Channels),
		motion:   motion.New(settings.Motion),
	}
}

// Boot mounts the assets, loads the personality record and starts the
// intro clip. A failed mount is returned and is fatal; everything else
// degrades.
func (p *Pet) Boot(now time.Duration) error {
	fsys, catalog, err := LoadAssets(p.board, p.settings.Manifest, p.log)
	if err != nil {
		return fmt.Errorf("asset store: %w", err)
	}

	rec := personality.NewRecord(p.settings.Channels)
	if p.board.KV != nil {
		loaded, fresh, err := personality.Load(p.board.KV, p.settings.StateKey, p.settings.Channels)
		switch {
		case err != nil:
			p.log.Printf("[pet] personality unavailable, using defaults: %v", err)
		case fresh:
			p.log.Printf("[pet] first boot, personality initialised")
			rec = loaded
		default:
			p.log.Printf("[pet] personality loaded: traits %v bond %d", loaded.Traits, loaded.History.Bond)
			rec = loaded
		}
	}

	var screen anim.Renderer
	if p.board.Screen != nil {
		screen = render.NewScreen(p.board.Screen)
	}
	p.display = &displayWorker{
		catalog: catalog,
		player:  anim.NewPlayer(fsys, screen, render.FrameSize, p.log),
		status:  p.board.Status,
		log:     p.log,
	}

	seed := p.settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	p.machine = emotion.NewMachine(p.settings.Emotion, rec, rng, p.display, &p.haptics, p.log)

	p.saver = saver{
		kv:       p.board.KV,
		key:      p.settings.StateKey,
		interval: p.settings.SaveInterval,
		last:     now,
		log:      p.log,
	}

	p.introUntil = now
	if intro, err := catalog.Clip(emotion.IntroClip); err == nil && intro.FrameCount > 0 {
		_ = p.display.player.Play(now, intro)
		p.introUntil = now + time.Duration(intro.FrameCount)*intro.FrameDelay()
	}
	p.booted = true
	return nil
}

// Tick runs one loop iteration at uptime now: sample, classify, decide,
// render, drive the motor, persist.
func (p *Pet) Tick(now time.Duration) {
	if !p.booted {
		return
	}
	p.ticks++
	if p.board.Watchdog != nil {
		p.board.Watchdog.Update()
	}

	sample := p.lastSample
	if p.board.Sensors != nil {
		s, err := p.board.Sensors.Read(now, p.levels)
		if err != nil {
			p.log.Printf("[pet] sensor read: %v", err)
		} else {
			sample = s
		}
	}
	p.lastSample = sample

	touches := p.gestures.Update(now, p.levels)
	moved, hasMotion := p.motion.Update(now, sample)

	if !p.started {
		if now < p.introUntil {
			p.display.update(now)
			return
		}
		p.started = true
		p.machine.Start(now)
	} else {
		p.dispatch(now, touches, moved, hasMotion)
		p.machine.Tick(now, p.motion.StillFor())
	}

	p.display.setTint(p.machine.Current().Tint())
	p.display.update(now)

	motorOn := p.haptics.Update(now)
	if p.board.Motor != nil {
		p.board.Motor.SetMotor(motorOn)
	}

	if p.saver.due(now) {
		_ = p.saver.save(now, p.machine.Record())
	}
}

func (p *Pet) dispatch(now time.Duration, touches []gesture.Event, moved motion.Event, hasMotion bool) {
	for _, ev := range touches {
		p.log.Printf("[pet] %s on %v", ev.Pattern, ev.Channels())
		p.machine.HandleTouch(now, ev)
	}
	if hasMotion {
		p.log.Printf("[pet] motion %s -> %s", moved.Previous, moved.State)
		p.machine.HandleMotion(now, moved)
	}
}

// Run boots the pet and ticks it every Settings.Tick until ctx is done,
// then saves the record once more. The watchdog is started after a
// successful boot.
func (p *Pet) Run(ctx context.Context) error {
	start := time.Now()
	if err := p.Boot(0); err != nil {
		return err
	}
	if p.board.Watchdog != nil {
		if err := p.board.Watchdog.Start(); err != nil {
			p.log.Printf("[pet] watchdog: %v", err)
		}
	}

	ticker := time.NewTicker(p.settings.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return p.Save(time.Since(start))
		case <-ticker.C:
			p.Tick(time.Since(start))
		}
	}
}

// Save writes the personality record now.
func (p *Pet) Save(now time.Duration) error {
	if !p.booted {
		return nil
	}
	return p.saver.save(now, p.machine.Record())
}

// Emotion is the current emotion; Content before the intro has finished.
func (p *Pet) Emotion() emotion.Emotion {
	if p.machine == nil {
		return emotion.Content
	}
	return p.machine.Current()
}

func (p *Pet) Machine() *emotion.Machine { return p.machine }

func (p *Pet) Player() *anim.Player { return p.display.player }

func (p *Pet) Record() *personality.Record { return p.machine.Record() }

func (p *Pet) Ticks() int { return p.ticks }

// Started reports whether the intro has finished and the state machine runs.
func (p *Pet) Started() bool { return p.started }
