package cmd

import (
	"image/color"
	"log"
	"time"

	"nifri2/emotipet/anim"
	"nifri2/emotipet/personality"
	"nifri2/emotipet/storage"
)

// displayWorker switches clips on request and advances the player once per
// tick. A requested clip is only opened in the render stage so the state
// machine never touches the stream directly.
type displayWorker struct {
	catalog *anim.Catalog
	player  *anim.Player
	status  StatusLight
	log     *log.Logger

	pending    string
	hasPending bool
	tint       color.RGBA
	tinted     bool
}

// Show implements emotion.Display.
func (d *displayWorker) Show(_ time.Duration, clip string) {
	d.pending = clip
	d.hasPending = true
}

func (d *displayWorker) setTint(c color.RGBA) {
	if d.status == nil || (d.tinted && c == d.tint) {
		return
	}
	if err := d.status.SetStatus(c); err != nil {
		d.log.Printf("[pet] status light: %v", err)
		return
	}
	d.tint = c
	d.tinted = true
}

func (d *displayWorker) update(now time.Duration) {
	if d.hasPending {
		key := d.pending
		d.hasPending = false

		clip, err := d.catalog.Clip(key)
		if err != nil {
			_ = d.player.Fail(anim.ClipName(key), err)
			return
		}
		_ = d.player.Play(now, clip)
		return
	}

	if _, err := d.player.Update(now); err != nil {
		d.log.Printf("[anim] %s frame %d: %v", d.player.Clip().Name, d.player.Index(), err)
	}
}

// saver writes the personality record every interval. The boot tick that
// loaded the record never writes it.
type saver struct {
	kv       storage.KV
	key      string
	interval time.Duration
	last     time.Duration
	log      *log.Logger
}

func (s *saver) due(now time.Duration) bool {
	return s.kv != nil && now-s.last >= s.interval
}

func (s *saver) save(now time.Duration, rec *personality.Record) error {
	s.last = now
	if s.kv == nil {
		return nil
	}
	if err := personality.Save(s.kv, s.key, rec); err != nil {
		s.log.Printf("[pet] save failed: %v", err)
		return err
	}
	s.log.Printf("[pet] saved personality (bond %d, favorite %d)", rec.History.Bond, rec.Favorite())
	return nil
}
