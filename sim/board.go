package sim

import (
	"fmt"
	"time"

	"nifri2/emotipet/motion"
)

// Board replays a Script. It implements the pet's sensor source.
type Board struct {
	steps  []Step
	next   int
	levels []bool
	sample motion.Sample

	motor bool
}

// NewBoard starts at rest with every channel released.
func NewBoard(s *Script, channels int, mc motion.Config) (*Board, error) {
	if ch := s.MaxChannel(); ch >= channels {
		return nil, fmt.Errorf("%w: channel %d used but only %d configured", ErrScript, ch, channels)
	}
	return &Board{
		steps:  s.Steps,
		levels: make([]bool, channels),
		sample: presets(mc).rest,
	}, nil
}

// Read applies every step due at now, copies the channel levels into levels
// and returns the inertial sample.
func (b *Board) Read(now time.Duration, levels []bool) (motion.Sample, error) {
	for b.next < len(b.steps) && b.steps[b.next].At <= now {
		st := b.steps[b.next]
		switch st.Kind {
		case Press:
			b.levels[st.Channel] = true
		case Release:
			b.levels[st.Channel] = false
		case SetMotion:
			b.sample = st.Sample
		}
		b.next++
	}
	copy(levels, b.levels)
	return b.sample, nil
}

// Done reports whether every step has been applied.
func (b *Board) Done() bool { return b.next >= len(b.steps) }

// SetMotor records the motor level.
func (b *Board) SetMotor(on bool) { b.motor = on }

func (b *Board) Motor() bool { return b.motor }
