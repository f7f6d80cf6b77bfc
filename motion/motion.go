// Package motion classifies 6-axis inertial samples into coarse motion
// states.
package motion

import (
	"math"
	"time"
)

// Sample is one raw accelerometer (AX..AZ) and gyroscope (GX..GZ) reading.
type Sample struct {
	AX, AY, AZ int32
	GX, GY, GZ int32
}

type State uint8

const (
	Still State = iota
	Shake
	Rotation
	TiltLeft
	TiltRight
	TiltForward
	TiltBackward
	stateCount
)

func (s State) String() string {
	switch s {
	case Still:
		return "still"
	case Shake:
		return "shake"
	case Rotation:
		return "rotation"
	case TiltLeft:
		return "tilt-left"
	case TiltRight:
		return "tilt-right"
	case TiltForward:
		return "tilt-forward"
	case TiltBackward:
		return "tilt-backward"
	default:
		return "unknown"
	}
}

type Config struct {
	AccelPerG   float64       `mapstructure:"accel_per_g"`
	GyroPerDPS  float64       `mapstructure:"gyro_per_dps"`
	ShakeG      float64       `mapstructure:"shake_g"`
	RotationDPS float64       `mapstructure:"rotation_dps"`
	TiltG       float64       `mapstructure:"tilt_g"`
	Debounce    time.Duration `mapstructure:"debounce"`
}

// DefaultConfig uses MPU6050 register units at ±2g / ±250°/s.
func DefaultConfig() Config {
	return Config{
		AccelPerG:   16384,
		GyroPerDPS:  131,
		ShakeG:      1.8,
		RotationDPS: 180,
		TiltG:       0.5,
		Debounce:    time.Second,
	}
}

// Reading is a sample in physical units: g and degrees per second.
type Reading struct {
	Accel    [3]float64
	Gyro     [3]float64
	AccelMag float64
	GyroMag  float64
}

func (c Config) Convert(s Sample) Reading {
	var r Reading
	r.Accel = [3]float64{
		float64(s.AX) / c.AccelPerG,
		float64(s.AY) / c.AccelPerG,
		float64(s.AZ) / c.AccelPerG,
	}
	r.Gyro = [3]float64{
		float64(s.GX) / c.GyroPerDPS,
		float64(s.GY) / c.GyroPerDPS,
		float64(s.GZ) / c.GyroPerDPS,
	}
	r.AccelMag = magnitude(r.Accel)
	r.GyroMag = magnitude(r.Gyro)
	return r
}

func magnitude(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Classify applies the threshold cascade: shake, rotation, side tilt,
// front/back tilt, otherwise still.
func (c Config) Classify(r Reading) State {
	switch {
	case r.AccelMag > c.ShakeG:
		return Shake
	case r.GyroMag > c.RotationDPS:
		return Rotation
	case r.Accel[0] < -c.TiltG:
		return TiltLeft
	case r.Accel[0] > c.TiltG:
		return TiltRight
	case r.Accel[1] > c.TiltG:
		return TiltForward
	case r.Accel[1] < -c.TiltG:
		return TiltBackward
	default:
		return Still
	}
}

// Event reports a change of classification.
type Event struct {
	State    State
	Previous State
}

// Classifier emits an Event only when the classification changes, and not
// for a state that was already emitted within the debounce interval.
type Classifier struct {
	cfg      Config
	state    State
	started  bool
	lastTick time.Duration
	stillFor time.Duration

	emitted  [stateCount]bool
	lastEmit [stateCount]time.Duration
}

func New(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

func (c *Classifier) State() State { return c.state }

// StillFor is how long the device has been continuously still.
func (c *Classifier) StillFor() time.Duration { return c.stillFor }

func (c *Classifier) Update(now time.Duration, s Sample) (Event, bool) {
	next := c.cfg.Classify(c.cfg.Convert(s))
	prev := c.state

	if c.started && next == Still && prev == Still {
		c.stillFor += now - c.lastTick
	} else if next != Still {
		c.stillFor = 0
	}
	c.started = true
	c.lastTick = now

	if next == prev {
		return Event{}, false
	}
	c.state = next

	if c.emitted[next] && now-c.lastEmit[next] < c.cfg.Debounce {
		return Event{}, false
	}
	c.emitted[next] = true
	c.lastEmit[next] = now
	return Event{State: next, Previous: prev}, true
}
