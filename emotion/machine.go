package emotion

import (
	"io"
	"log"
	"time"

	"nifri2/emotipet/gesture"
	"nifri2/emotipet/haptic"
	"nifri2/emotipet/motion"
	"nifri2/emotipet/personality"
)

type Config struct {
	DwellMin        time.Duration `mapstructure:"dwell_min"`
	DwellMax        time.Duration `mapstructure:"dwell_max"`
	AmbientInterval time.Duration `mapstructure:"ambient_interval"`
	IdleThreshold   time.Duration `mapstructure:"idle_threshold"`
	LonelyMin       float64       `mapstructure:"lonely_min"`
	LonelyMax       float64       `mapstructure:"lonely_max"`
	LowEnergy       int           `mapstructure:"low_energy"`
	BoredAfter      time.Duration `mapstructure:"bored_after"`
	BoredChance     float64       `mapstructure:"bored_chance"`
	AdaptChance     float64       `mapstructure:"adapt_chance"`

	DayStartHour     int           `mapstructure:"day_start_hour"`
	DayLength        time.Duration `mapstructure:"day_length"`
	NightStartHour   int           `mapstructure:"night_start_hour"`
	MorningHour      int           `mapstructure:"morning_hour"`
	DayHour          int           `mapstructure:"day_hour"`
	NightSleepChance float64       `mapstructure:"night_sleep_chance"`
}

func DefaultConfig() Config {
	return Config{
		DwellMin:        15 * time.Second,
		DwellMax:        60 * time.Second,
		AmbientInterval: 10 * time.Second,
		IdleThreshold:   5 * time.Minute,
		LonelyMin:       0.1,
		LonelyMax:       0.6,
		LowEnergy:       3,
		BoredAfter:      45 * time.Second,
		BoredChance:     0.2,
		AdaptChance:     0.3,

		DayStartHour:     8,
		DayLength:        24 * time.Hour,
		NightStartHour:   22,
		MorningHour:      6,
		DayHour:          9,
		NightSleepChance: 0.3,
	}
}

// Display switches the clip on screen.
type Display interface {
	Show(now time.Duration, clip string)
}

type reaction struct {
	candidates []Emotion
	haptic     haptic.Pattern
	trait      personality.Trait
}

var touchReactions = map[gesture.Pattern]reaction{
	gesture.SingleTap:    {[]Emotion{Happy, Content, Confused}, haptic.Tap, personality.Sociability},
	gesture.DoubleTap:    {[]Emotion{Excited, Laugh, Happy}, haptic.DoubleTap, personality.Playfulness},
	gesture.RapidTaps:    {[]Emotion{Laugh, Playful, Excited}, haptic.Buzz, personality.Playfulness},
	gesture.LongPress:    {[]Emotion{Love, Relaxed, Content}, haptic.Purr, personality.Affection},
	gesture.MultiChannel: {[]Emotion{Love, Proud, Embarrassed}, haptic.Heartbeat, personality.Sociability},
}

var motionReactions = map[motion.State]reaction{
	motion.Shake:        {[]Emotion{Angry, Confused, Excited}, haptic.Rumble, personality.Energy},
	motion.Rotation:     {[]Emotion{Confused, Excited, Music}, haptic.Wobble, personality.Curiosity},
	motion.TiltLeft:     {[]Emotion{Confused, Embarrassed, Determined}, haptic.Tap, personality.Curiosity},
	motion.TiltRight:    {[]Emotion{Confused, Embarrassed, Determined}, haptic.Tap, personality.Curiosity},
	motion.TiltForward:  {[]Emotion{Proud, Determined, Confused}, haptic.Tap, personality.Curiosity},
	motion.TiltBackward: {[]Emotion{Relaxed, Sleepy, Confused}, haptic.Tap, personality.Curiosity},
}

// Machine is the single owner of the current emotion and the personality
// record. It is driven from the control loop and is not safe for concurrent
// use.
type Machine struct {
	cfg     Config
	rec     *personality.Record
	rng     Rand
	display Display
	haptic  haptic.Player
	log     *log.Logger

	current  Emotion
	previous Emotion
	entered  time.Duration
	dwell    time.Duration

	lastTouch   time.Duration
	lastAmbient time.Duration
	period      period

	transitions int
}

func NewMachine(cfg Config, rec *personality.Record, rng Rand, display Display, hp haptic.Player, logger *log.Logger) *Machine {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Machine{
		cfg:     cfg,
		rec:     rec,
		rng:     rng,
		display: display,
		haptic:  hp,
		log:     logger,
	}
}

// Start enters Content at now and shows its clip.
func (m *Machine) Start(now time.Duration) {
	m.lastTouch = now
	m.lastAmbient = now
	m.period = m.cfg.period(m.cfg.Hour(now))
	m.Transition(now, Content, true)
}

func (m *Machine) Current() Emotion            { return m.current }
func (m *Machine) Previous() Emotion           { return m.previous }
func (m *Machine) Dwell() time.Duration        { return m.dwell }
func (m *Machine) EnteredAt() time.Duration    { return m.entered }
func (m *Machine) Record() *personality.Record { return m.rec }
func (m *Machine) Transitions() int            { return m.transitions }
func (m *Machine) LastTouch() time.Duration    { return m.lastTouch }
func (m *Machine) Asleep() bool                { return m.current == Sleepy }
func (m *Machine) Traits() personality.Vector  { return m.rec.Traits }

// Transition moves to e. Moving to the current emotion is a no-op unless
// force is set. An accepted transition redraws the dwell and switches the
// clip.
func (m *Machine) Transition(now time.Duration, e Emotion, force bool) bool {
	if e >= Count {
		return false
	}
	if e == m.current && !force {
		return false
	}
	m.previous = m.current
	m.current = e
	m.entered = now
	m.dwell = m.drawDwell()
	m.transitions++

	m.log.Printf("[emotion] %s -> %s (dwell %s)", m.previous, e, m.dwell)
	if m.display != nil {
		m.display.Show(now, e.Clip())
	}
	return true
}

func (m *Machine) drawDwell() time.Duration {
	span := m.cfg.DwellMax - m.cfg.DwellMin
	if span <= 0 {
		return m.cfg.DwellMin
	}
	steps := int(span/time.Millisecond) + 1
	return m.cfg.DwellMin + time.Duration(m.rng.Intn(steps))*time.Millisecond
}

// HandleTouch reacts to a classified gesture.
func (m *Machine) HandleTouch(now time.Duration, ev gesture.Event) {
	r, ok := touchReactions[ev.Pattern]
	if !ok {
		return
	}
	m.lastTouch = now
	m.rec.History.RecordTouch(ev.Channels()...)
	m.react(now, r)
}

// HandleMotion reacts to a motion state change. Returning to Still is not a
// reaction.
func (m *Machine) HandleMotion(now time.Duration, ev motion.Event) {
	r, ok := motionReactions[ev.State]
	if !ok {
		return
	}
	m.react(now, r)
}

func (m *Machine) react(now time.Duration, r reaction) {
	if m.haptic != nil {
		m.haptic.Play(r.haptic)
	}
	if m.rng.Float64() < m.cfg.AdaptChance {
		m.rec.Traits.Nudge(r.trait, 1)
	}

	var exclude []Emotion
	if m.current == Sleepy {
		// woken up: never pick sleep again on a touch
		exclude = append(exclude, Sleepy)
	}
	m.Transition(now, m.choose(r.candidates, exclude), false)
}

// choose draws among candidates by their personality weights. If every
// candidate weighs zero the first eligible one wins.
func (m *Machine) choose(candidates, exclude []Emotion) Emotion {
	all := Weights(m.rec.Traits, exclude...)
	var w [Count]int
	fallback := Count
	for _, e := range candidates {
		if excluded(e, exclude) {
			continue
		}
		if fallback == Count {
			fallback = e
		}
		w[e] = all[e]
	}
	if e, ok := Draw(w, m.rng); ok {
		return e
	}
	if fallback == Count {
		return Content
	}
	return fallback
}

func excluded(e Emotion, list []Emotion) bool {
	for _, x := range list {
		if x == e {
			return true
		}
	}
	return false
}

// Tick runs the time-based transitions: the ambient process every
// AmbientInterval, then dwell expiry. stillFor is how long the pet has
// been motionless. At most one transition happens per tick.
func (m *Machine) Tick(now time.Duration, stillFor time.Duration) {
	if now-m.lastAmbient >= m.cfg.AmbientInterval {
		m.lastAmbient = now
		if m.ambient(now, stillFor) {
			return
		}
	}

	if m.current == Sleepy {
		return
	}
	if now-m.entered < m.dwell {
		return
	}
	next, ok := Draw(Weights(m.rec.Traits, m.current), m.rng)
	if !ok {
		// nothing else is eligible; stay and restart the dwell
		m.entered = now
		m.dwell = m.drawDwell()
		return
	}
	m.Transition(now, next, false)
}

// Idle is how long the pet has gone without a touch or any movement.
func (m *Machine) Idle(now, stillFor time.Duration) time.Duration {
	idle := now - m.lastTouch
	if stillFor < idle {
		idle = stillFor
	}
	return idle
}

// LonelyChance is the probability of turning lonely once idle, falling
// linearly from LonelyMax at sociability 0 to LonelyMin at 10.
func (c Config) LonelyChance(sociability int) float64 {
	soc := clamp(sociability, personality.MinTrait, personality.MaxTrait)
	return c.LonelyMin + (c.LonelyMax-c.LonelyMin)*float64(personality.MaxTrait-soc)/personality.MaxTrait
}
