// Package gesture turns polled touch-channel levels into discrete tap
// patterns.
package gesture

import "time"

type Pattern uint8

const (
	None Pattern = iota
	SingleTap
	DoubleTap
	RapidTaps
	LongPress
	MultiChannel
)

func (p Pattern) String() string {
	switch p {
	case SingleTap:
		return "single-tap"
	case DoubleTap:
		return "double-tap"
	case RapidTaps:
		return "rapid-taps"
	case LongPress:
		return "long-press"
	case MultiChannel:
		return "multi-channel"
	default:
		return "none"
	}
}

// Phase is the coarse state of one channel.
type Phase uint8

const (
	Idle Phase = iota
	Pressed
	AwaitingMultiTap
)

// Event is one classified gesture. Channel is -1 for MultiChannel; Mask has
// a bit set for every channel involved.
type Event struct {
	Pattern Pattern
	Channel int
	Mask    uint32
}

// Channels lists the channel indexes in Mask.
func (e Event) Channels() []int {
	var out []int
	for i := 0; i < 32; i++ {
		if e.Mask&(1<<uint(i)) != 0 {
			out = append(out, i)
		}
	}
	return out
}

type Config struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	LongPress       time.Duration `mapstructure:"long_press"`
	DoubleTapWindow time.Duration `mapstructure:"double_tap_window"`
	TapResetWindow  time.Duration `mapstructure:"tap_reset_window"`
	RapidTapWindow  time.Duration `mapstructure:"rapid_tap_window"`
	RapidTapCount   int           `mapstructure:"rapid_tap_count"`
}

func DefaultConfig() Config {
	return Config{
		Debounce:        30 * time.Millisecond,
		LongPress:       2500 * time.Millisecond,
		DoubleTapWindow: 500 * time.Millisecond,
		TapResetWindow:  2000 * time.Millisecond,
		RapidTapWindow:  2000 * time.Millisecond,
		RapidTapCount:   5,
	}
}

type channel struct {
	raw      bool
	rawSince time.Duration

	level bool
	prev  bool

	pressedAt   time.Duration
	releasedAt  time.Duration
	hasReleased bool

	// taps is the tap counter zeroed by every pattern. burst counts taps
	// since the last resolved single/rapid/long/multi and survives a
	// double tap so a run of quick taps can still reach RapidTaps.
	taps  int
	burst int

	longFired bool
	consumed  bool

	awaiting  bool
	singleDue time.Duration

	queue []Pattern
}

// Classifier tracks every touch channel. It is not safe for concurrent use.
type Classifier struct {
	cfg         Config
	ch          []channel
	multiActive bool
	out         []Event
}

func New(cfg Config, channels int) *Classifier {
	return &Classifier{cfg: cfg, ch: make([]channel, channels)}
}

// Channels returns the number of channels classified.
func (c *Classifier) Channels() int { return len(c.ch) }

// Taps returns the tap counter of channel i.
func (c *Classifier) Taps(i int) int { return c.ch[i].taps }

// Held reports the debounced level of channel i.
func (c *Classifier) Held(i int) bool { return c.ch[i].level }

func (c *Classifier) Phase(i int) Phase {
	ch := &c.ch[i]
	switch {
	case ch.level:
		return Pressed
	case ch.awaiting:
		return AwaitingMultiTap
	default:
		return Idle
	}
}

// Update samples levels at now and returns the events that fired. At most
// one per-channel event is returned per call; a MultiChannel event may
// accompany it. The returned slice is reused by the next call.
func (c *Classifier) Update(now time.Duration, levels []bool) []Event {
	c.out = c.out[:0]

	for i := range c.ch {
		level := false
		if i < len(levels) {
			level = levels[i]
		}
		c.sample(i, now, level)
	}

	for i := range c.ch {
		c.timers(i, now)
	}

	if ev, ok := c.multi(); ok {
		c.out = append(c.out, ev)
	}

	for i := range c.ch {
		ch := &c.ch[i]
		if len(ch.queue) == 0 {
			continue
		}
		p := ch.queue[0]
		ch.queue = ch.queue[1:]
		c.out = append(c.out, Event{Pattern: p, Channel: i, Mask: 1 << uint(i)})
		break
	}
	return c.out
}

func (c *Classifier) sample(i int, now time.Duration, raw bool) {
	ch := &c.ch[i]
	if raw != ch.raw {
		ch.raw = raw
		ch.rawSince = now
	}

	ch.prev = ch.level
	if ch.raw != ch.level && now-ch.rawSince >= c.cfg.Debounce {
		ch.level = ch.raw
	}

	switch {
	case ch.level && !ch.prev:
		c.press(ch, now)
	case !ch.level && ch.prev:
		c.release(ch, now)
	}
}

func (c *Classifier) press(ch *channel, now time.Duration) {
	ch.awaiting = false

	gap := now - ch.releasedAt
	if !ch.hasReleased || gap > c.cfg.TapResetWindow {
		ch.taps = 1
	} else {
		ch.taps++
	}
	if !ch.hasReleased || gap > c.cfg.RapidTapWindow {
		ch.burst = 1
	} else {
		ch.burst++
	}

	ch.pressedAt = now
	ch.longFired = false
}

func (c *Classifier) release(ch *channel, now time.Duration) {
	prevRelease, hadRelease := ch.releasedAt, ch.hasReleased
	ch.releasedAt = now
	ch.hasReleased = true

	if ch.longFired || ch.consumed {
		ch.longFired = false
		ch.consumed = false
		ch.taps = 0
		ch.burst = 0
		return
	}

	switch {
	case c.cfg.RapidTapCount > 0 && ch.burst >= c.cfg.RapidTapCount:
		ch.fire(RapidTaps)
		ch.burst = 0
	case ch.taps == 2 && hadRelease && now-prevRelease <= c.cfg.DoubleTapWindow:
		ch.fire(DoubleTap)
	default:
		ch.awaiting = true
		ch.singleDue = now + c.cfg.DoubleTapWindow
	}
}

func (c *Classifier) timers(i int, now time.Duration) {
	ch := &c.ch[i]

	if ch.level && !ch.longFired && now-ch.pressedAt >= c.cfg.LongPress {
		ch.longFired = true
		ch.fire(LongPress)
		ch.burst = 0
		return
	}

	if ch.awaiting && !ch.level && now >= ch.singleDue {
		ch.awaiting = false
		ch.fire(SingleTap)
		ch.burst = 0
	}
}

func (c *Classifier) multi() (Event, bool) {
	var mask uint32
	held := 0
	for i := range c.ch {
		if c.ch[i].level {
			mask |= 1 << uint(i)
			held++
		}
	}

	if held < 2 {
		c.multiActive = false
		return Event{}, false
	}

	for i := range c.ch {
		ch := &c.ch[i]
		if ch.level && !ch.consumed {
			ch.consumed = true
			ch.awaiting = false
			ch.taps = 0
			ch.burst = 0
			ch.dropTaps()
		}
	}

	if c.multiActive {
		return Event{}, false
	}
	c.multiActive = true
	return Event{Pattern: MultiChannel, Channel: -1, Mask: mask}, true
}

func (ch *channel) fire(p Pattern) {
	ch.taps = 0
	ch.queue = append(ch.queue, p)
}

// dropTaps removes queued single and double taps for a channel that a
// multi-channel hold has claimed.
func (ch *channel) dropTaps() {
	kept := ch.queue[:0]
	for _, p := range ch.queue {
		if p != SingleTap && p != DoubleTap {
			kept = append(kept, p)
		}
	}
	ch.queue = kept
}
