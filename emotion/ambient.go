package emotion

import (
	"time"

	"nifri2/emotipet/personality"
)

type period uint8

const (
	daytime period = iota
	night
	morning
)

func (p period) String() string {
	switch p {
	case night:
		return "night"
	case morning:
		return "morning"
	default:
		return "day"
	}
}

// Hour is the simulated hour of day after uptime: the device boots at
// DayStartHour and a full day lasts DayLength.
func (c Config) Hour(uptime time.Duration) int {
	if c.DayLength <= 0 {
		return c.DayStartHour % 24
	}
	elapsed := int(uptime % c.DayLength * 24 / c.DayLength)
	return (c.DayStartHour + elapsed) % 24
}

func (c Config) period(hour int) period {
	switch {
	case inRange(hour, c.NightStartHour, c.MorningHour):
		return night
	case inRange(hour, c.MorningHour, c.DayHour):
		return morning
	default:
		return daytime
	}
}

// inRange reports from <= h < to on a 24-hour clock that may wrap midnight.
func inRange(h, from, to int) bool {
	if from <= to {
		return h >= from && h < to
	}
	return h >= from || h < to
}

// ambient runs the low-frequency context process and reports whether it
// made a transition.
func (m *Machine) ambient(now, stillFor time.Duration) bool {
	p := m.cfg.period(m.cfg.Hour(now))
	changed := p != m.period
	m.period = p

	switch p {
	case night:
		if changed {
			m.rec.Traits.Nudge(personality.Energy, -1)
			m.log.Printf("[emotion] night falls, energy %d", m.rec.Traits.Get(personality.Energy))
		}
		if m.current != Sleepy && m.rng.Float64() < m.cfg.NightSleepChance {
			return m.Transition(now, Sleepy, true)
		}
	case morning:
		if changed {
			m.rec.Traits.Nudge(personality.Energy, 1)
			if m.current == Sleepy {
				m.log.Printf("[emotion] morning, waking up")
				return m.Transition(now, Content, true)
			}
		}
	}

	if m.current != Lonely && m.current != Sleepy && m.Idle(now, stillFor) >= m.cfg.IdleThreshold {
		chance := m.cfg.LonelyChance(m.rec.Traits.Get(personality.Sociability))
		if m.rng.Float64() < chance {
			target := Lonely
			if m.rec.Traits.Get(personality.Energy) <= m.cfg.LowEnergy {
				target = Sleepy
			}
			return m.Transition(now, target, false)
		}
	}

	switch m.current {
	case Bored, Sleepy, Lonely:
		return false
	}
	if now-m.entered >= m.cfg.BoredAfter && now-m.lastTouch >= m.cfg.BoredAfter {
		if m.rng.Float64() < m.cfg.BoredChance {
			return m.Transition(now, Bored, false)
		}
	}
	return false
}
