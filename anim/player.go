package anim

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"nifri2/emotipet/rle"
	"nifri2/emotipet/storage"
)

// Renderer draws decoded frames and the fallback shown when no clip is
// loaded.
type Renderer interface {
	Frame(frame []byte) error
	Placeholder(text string) error
}

// Player is the playback cursor. Animations loop until another clip is
// played.
type Player struct {
	stream    *Stream
	render    Renderer
	log       *log.Logger
	frameSize int

	compressed []byte
	frame      []byte

	loaded    bool
	shown     bool
	index     int
	lastFrame time.Duration
	lastErr   error

	// retry is the frame whose read came up short; it is read once more at
	// the next frame update and skipped if it fails again.
	retry    int
	retrying bool
}

// NewPlayer returns a Player decoding frames of frameSize bytes (1024 for a
// 128x64 page-format display).
func NewPlayer(fsys storage.FS, r Renderer, frameSize int, logger *log.Logger) *Player {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Player{
		stream:    NewStream(fsys),
		render:    r,
		log:       logger,
		frameSize: frameSize,
		frame:     make([]byte, frameSize),
	}
}

// Play switches to clip. The previous clip is closed first. If the clip
// cannot be opened the player shows a placeholder until the next Play.
func (p *Player) Play(now time.Duration, clip Clip) error {
	if err := p.stream.Close(); err != nil {
		p.log.Printf("[anim] closing %s: %v", p.stream.Clip().Name, err)
	}
	p.loaded = false
	p.shown = false
	p.retrying = false
	p.index = 0
	p.lastFrame = now

	if clip.FPS == 0 {
		return p.fail(clip.Name, fmt.Errorf("%w: %s", ErrInvalidFPS, clip.Key))
	}
	if err := p.stream.Open(clip); err != nil {
		return p.fail(clip.Name, err)
	}
	if cap(p.compressed) < clip.MaxCompressedSize {
		p.compressed = make([]byte, clip.MaxCompressedSize)
	}
	p.compressed = p.compressed[:clip.MaxCompressedSize]
	p.loaded = true
	p.lastErr = nil

	p.log.Printf("[anim] playing %s (%d frames @ %d fps)", clip.Name, clip.FrameCount, clip.FPS)
	if clip.FrameCount > 0 {
		_, _ = p.Update(now)
	}
	return nil
}

// Fail puts the player in the not-loaded state for a clip whose metadata
// could not be read.
func (p *Player) Fail(name string, err error) error {
	p.loaded = false
	_ = p.stream.Close()
	return p.fail(name, err)
}

func (p *Player) fail(name string, err error) error {
	p.lastErr = err
	p.log.Printf("[anim] %s not loaded: %v", name, err)
	if p.render != nil {
		if rerr := p.render.Placeholder(name); rerr != nil {
			p.log.Printf("[anim] placeholder: %v", rerr)
		}
	}
	return err
}

// Update shows the next frame once the frame delay has elapsed. It reports
// whether a frame was drawn. A short read leaves the cursor in place and the
// frame is retried at the next frame update; if the retry is short too the
// frame is skipped. A frame that fails to decode is skipped without drawing.
func (p *Player) Update(now time.Duration) (bool, error) {
	if !p.loaded {
		return false, nil
	}
	clip := p.stream.Clip()
	if clip.FrameCount == 0 {
		return false, nil
	}

	if (p.shown || p.retrying) && now-p.lastFrame < clip.FrameDelay() {
		return false, nil
	}
	next := p.index
	switch {
	case p.retrying:
		next = p.retry
	case p.shown:
		next = (p.index + 1) % clip.FrameCount
	}

	n, err := p.stream.ReadFrame(next, p.compressed)
	if err != nil {
		p.lastErr = err
		if errors.Is(err, ErrShortRead) && !p.retrying {
			p.retry = next
			p.retrying = true
			p.lastFrame = now
			return false, err
		}
		p.advance(now, next)
		return false, err
	}

	p.advance(now, next)
	if err := rle.Decode(p.frame, p.compressed[:n]); err != nil {
		p.lastErr = err
		return false, fmt.Errorf("frame %d of %s: %w", next, clip.Name, err)
	}
	if p.render != nil {
		if err := p.render.Frame(p.frame); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (p *Player) advance(now time.Duration, next int) {
	p.retrying = false
	p.index = next
	p.shown = true
	p.lastFrame = now
}

// Loaded reports whether a clip is streaming.
func (p *Player) Loaded() bool { return p.loaded }

// Index is the frame currently on screen.
func (p *Player) Index() int { return p.index }

// Clip returns the clip being streamed.
func (p *Player) Clip() Clip { return p.stream.Clip() }

// Err returns the last load, read or decode error.
func (p *Player) Err() error { return p.lastErr }

func (p *Player) Close() error {
	p.loaded = false
	return p.stream.Close()
}
