// Package haptic defines the vibration patterns and a sequencer that plays
// them without blocking the control loop.
package haptic

import "time"

type Pattern uint8

const (
	None Pattern = iota
	Tap
	DoubleTap
	Buzz
	Purr
	Heartbeat
	Rumble
	Wobble
	patternCount
)

// Step holds the motor on or off for a duration.
type Step struct {
	On  bool
	For time.Duration
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var patterns = [patternCount]struct {
	name  string
	steps []Step
}{
	None:      {"none", nil},
	Tap:       {"tap", []Step{{true, ms(40)}}},
	DoubleTap: {"double-tap", []Step{{true, ms(40)}, {false, ms(80)}, {true, ms(40)}}},
	Buzz:      {"buzz", []Step{{true, ms(60)}, {false, ms(40)}, {true, ms(60)}, {false, ms(40)}, {true, ms(60)}}},
	Purr:      {"purr", []Step{{true, ms(20)}, {false, ms(30)}, {true, ms(20)}, {false, ms(30)}, {true, ms(20)}, {false, ms(30)}, {true, ms(20)}}},
	Heartbeat: {"heartbeat", []Step{{true, ms(60)}, {false, ms(100)}, {true, ms(90)}, {false, ms(400)}, {true, ms(60)}, {false, ms(100)}, {true, ms(90)}}},
	Rumble:    {"rumble", []Step{{true, ms(300)}}},
	Wobble:    {"wobble", []Step{{true, ms(100)}, {false, ms(150)}, {true, ms(100)}}},
}

func (p Pattern) String() string {
	if p >= patternCount {
		return "unknown"
	}
	return patterns[p].name
}

// Steps returns the on/off sequence of p.
func (p Pattern) Steps() []Step {
	if p >= patternCount {
		return nil
	}
	return patterns[p].steps
}

// Duration is the total play time of p.
func (p Pattern) Duration() time.Duration {
	var d time.Duration
	for _, s := range p.Steps() {
		d += s.For
	}
	return d
}

// Player accepts a named pattern.
type Player interface {
	Play(p Pattern)
}

// Sequencer turns patterns into motor levels, one Update per loop tick. A
// new pattern replaces the one playing.
type Sequencer struct {
	current Pattern
	pending bool
	idx     int
	start   time.Duration
}

func (s *Sequencer) Play(p Pattern) {
	s.current = p
	s.pending = true
	s.idx = 0
}

// Busy reports whether a pattern is in progress.
func (s *Sequencer) Busy() bool {
	return s.current != None
}

// Current returns the pattern playing, or None.
func (s *Sequencer) Current() Pattern {
	return s.current
}

// Update returns the motor level at now.
func (s *Sequencer) Update(now time.Duration) bool {
	if s.current == None {
		return false
	}
	if s.pending {
		s.pending = false
		s.start = now
	}

	steps := s.current.Steps()
	for s.idx < len(steps) && now-s.start >= steps[s.idx].For {
		s.start += steps[s.idx].For
		s.idx++
	}
	if s.idx >= len(steps) {
		s.current = None
		return false
	}
	return steps[s.idx].On
}
