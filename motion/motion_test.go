package motion

import (
	"math"
	"testing"
	"time"
)

const g = 16384

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var (
	rest  = Sample{AZ: g}
	shake = Sample{AX: 2 * g, AY: g, AZ: g}
	spin  = Sample{AZ: g, GZ: 300 * 131}
)

func TestConvert(t *testing.T) {
	r := DefaultConfig().Convert(Sample{AX: 3 * g, AY: 4 * g, GX: 131 * 30, GY: 131 * 40})
	if math.Abs(r.AccelMag-5) > 1e-9 {
		t.Fatalf("accel magnitude = %v, want 5", r.AccelMag)
	}
	if math.Abs(r.GyroMag-50) > 1e-9 {
		t.Fatalf("gyro magnitude = %v, want 50", r.GyroMag)
	}
}

func TestClassifyCascade(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		s    Sample
		want State
	}{
		{"rest", rest, Still},
		{"shake beats rotation", Sample{AX: 2 * g, AY: g, AZ: g, GZ: 300 * 131}, Shake},
		{"rotation beats tilt", Sample{AX: g * 3 / 4, AZ: g / 2, GX: 250 * 131}, Rotation},
		{"tilt left", Sample{AX: -g * 3 / 4, AZ: g / 2}, TiltLeft},
		{"tilt right", Sample{AX: g * 3 / 4, AZ: g / 2}, TiltRight},
		{"tilt forward", Sample{AY: g * 3 / 4, AZ: g / 2}, TiltForward},
		{"tilt backward", Sample{AY: -g * 3 / 4, AZ: g / 2}, TiltBackward},
		{"side tilt beats front tilt", Sample{AX: g * 3 / 5, AY: g * 3 / 5, AZ: g / 2}, TiltRight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Classify(cfg.Convert(tt.s)); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestShakeIsEdgeTriggered(t *testing.T) {
	c := New(DefaultConfig())
	var shakes int

	feed := func(at time.Duration, s Sample) {
		if ev, ok := c.Update(at, s); ok && ev.State == Shake {
			shakes++
		}
	}

	feed(0, rest)
	feed(ms(20), shake)
	for at := 40; at <= 400; at += 20 {
		feed(ms(at), rest)
	}
	if shakes != 1 {
		t.Fatalf("expected one shake for a one-tick spike, got %d", shakes)
	}

	// held above threshold still fires once
	for at := 1500; at <= 2500; at += 20 {
		feed(ms(at), shake)
	}
	if shakes != 2 {
		t.Fatalf("expected a second shake after returning to rest, got %d", shakes)
	}
}

func TestDebounceSuppressesRepeatWithinInterval(t *testing.T) {
	c := New(DefaultConfig())
	var events []Event
	seq := []Sample{rest, shake, rest, shake, rest}
	for i, s := range seq {
		if ev, ok := c.Update(ms(100*i), s); ok {
			events = append(events, ev)
		}
	}
	// shake@100, still@200, shake@300 suppressed, still@400 suppressed
	if len(events) != 2 || events[0].State != Shake || events[1].State != Still {
		t.Fatalf("unexpected events %+v", events)
	}
	if c.State() != Still {
		t.Fatalf("classification must still track the latest sample, got %s", c.State())
	}
	if events[0].Previous != Still {
		t.Fatalf("unexpected previous state %s", events[0].Previous)
	}
}

func TestStillForAccumulatesAndResets(t *testing.T) {
	c := New(DefaultConfig())
	for at := 0; at <= 1000; at += 100 {
		c.Update(ms(at), rest)
	}
	if c.StillFor() != ms(1000) {
		t.Fatalf("StillFor = %v, want 1s", c.StillFor())
	}

	c.Update(ms(1100), spin)
	if c.StillFor() != 0 {
		t.Fatalf("StillFor should reset when motion starts, got %v", c.StillFor())
	}

	c.Update(ms(1200), rest)
	c.Update(ms(1300), rest)
	if c.StillFor() != ms(100) {
		t.Fatalf("StillFor should restart from zero, got %v", c.StillFor())
	}
}
