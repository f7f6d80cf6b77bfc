// Package sim replays scripted touches and motion against virtual time so
// the pet can run on a host.
package sim

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"nifri2/emotipet/motion"
)

var ErrScript = errors.New("sim: bad script")

type Kind uint8

const (
	Press Kind = iota
	Release
	SetMotion
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Release:
		return "release"
	default:
		return "motion"
	}
}

// Step is one scheduled input change.
type Step struct {
	At      time.Duration
	Kind    Kind
	Channel int
	Sample  motion.Sample
	Line    int
}

const (
	defaultHold  = 100 * time.Millisecond
	defaultShake = 200 * time.Millisecond
	defaultSpin  = 500 * time.Millisecond
)

// Script is a time-ordered list of steps.
type Script struct {
	Steps []Step
}

// End is the time of the last step.
func (s *Script) End() time.Duration {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].At
}

// MaxChannel is the highest touch channel the script uses, or -1.
func (s *Script) MaxChannel() int {
	hi := -1
	for _, st := range s.Steps {
		if st.Kind != SetMotion && st.Channel > hi {
			hi = st.Channel
		}
	}
	return hi
}

// ParseScript reads one command per line:
//
//	at <dur> press <ch>
//	at <dur> release <ch>
//	at <dur> tap <ch> [hold]
//	at <dur> motion <ax> <ay> <az> <gx> <gy> <gz>
//	at <dur> shake [for]
//	at <dur> spin [for]
//	at <dur> tilt left|right|forward|back
//	at <dur> still
//
// Motion presets are scaled with mc. Text after # is ignored.
func ParseScript(r io.Reader, mc motion.Config) (*Script, error) {
	p := presets(mc)
	s := &Script{}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		words, err := shlex.Split(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrScript, line, err)
		}
		if len(words) == 0 {
			continue
		}
		steps, err := parseLine(words, p)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrScript, line, err)
		}
		for i := range steps {
			steps[i].Line = line
		}
		s.Steps = append(s.Steps, steps...)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return s, nil
}

func parseLine(words []string, p preset) ([]Step, error) {
	if len(words) < 3 || words[0] != "at" {
		return nil, fmt.Errorf("expected \"at <time> <command>\"")
	}
	at, err := time.ParseDuration(words[1])
	if err != nil || at < 0 {
		return nil, fmt.Errorf("invalid time %q", words[1])
	}
	cmd, args := words[2], words[3:]

	switch cmd {
	case "press", "release":
		ch, err := channelArg(args, 1)
		if err != nil {
			return nil, err
		}
		kind := Press
		if cmd == "release" {
			kind = Release
		}
		return []Step{{At: at, Kind: kind, Channel: ch}}, nil

	case "tap":
		ch, err := channelArg(args, 2)
		if err != nil {
			return nil, err
		}
		hold, err := durationArg(args, 1, defaultHold)
		if err != nil {
			return nil, err
		}
		return []Step{
			{At: at, Kind: Press, Channel: ch},
			{At: at + hold, Kind: Release, Channel: ch},
		}, nil

	case "motion":
		if len(args) != 6 {
			return nil, fmt.Errorf("motion takes six integers")
		}
		var v [6]int32
		for i, a := range args {
			n, err := strconv.ParseInt(a, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid motion value %q", a)
			}
			v[i] = int32(n)
		}
		s := motion.Sample{AX: v[0], AY: v[1], AZ: v[2], GX: v[3], GY: v[4], GZ: v[5]}
		return []Step{{At: at, Kind: SetMotion, Sample: s}}, nil

	case "shake", "spin":
		sample, def := p.shake, defaultShake
		if cmd == "spin" {
			sample, def = p.spin, defaultSpin
		}
		d, err := durationArg(args, 0, def)
		if err != nil {
			return nil, err
		}
		return []Step{
			{At: at, Kind: SetMotion, Sample: sample},
			{At: at + d, Kind: SetMotion, Sample: p.rest},
		}, nil

	case "tilt":
		if len(args) != 1 {
			return nil, fmt.Errorf("tilt needs a direction")
		}
		sample, ok := p.tilt[args[0]]
		if !ok {
			return nil, fmt.Errorf("unknown tilt direction %q", args[0])
		}
		return []Step{{At: at, Kind: SetMotion, Sample: sample}}, nil

	case "still":
		return []Step{{At: at, Kind: SetMotion, Sample: p.rest}}, nil
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}

func channelArg(args []string, maxArgs int) (int, error) {
	if len(args) < 1 || len(args) > maxArgs {
		return 0, fmt.Errorf("expected a channel")
	}
	ch, err := strconv.Atoi(args[0])
	if err != nil || ch < 0 || ch > 31 {
		return 0, fmt.Errorf("invalid channel %q", args[0])
	}
	return ch, nil
}

// durationArg reads the optional duration at args[i].
func durationArg(args []string, i int, def time.Duration) (time.Duration, error) {
	if len(args) <= i {
		return def, nil
	}
	if len(args) > i+1 {
		return 0, fmt.Errorf("unexpected %q", strings.Join(args[i+1:], " "))
	}
	d, err := time.ParseDuration(args[i])
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid duration %q", args[i])
	}
	return d, nil
}

type preset struct {
	rest, shake, spin motion.Sample
	tilt              map[string]motion.Sample
}

func presets(mc motion.Config) preset {
	g := func(x float64) int32 { return int32(x * mc.AccelPerG) }
	dps := func(x float64) int32 { return int32(x * mc.GyroPerDPS) }
	lean := mc.TiltG + 0.2
	up := g(1 - lean/2)

	return preset{
		rest:  motion.Sample{AZ: g(1)},
		shake: motion.Sample{AX: g(mc.ShakeG + 0.7), AY: g(0.5), AZ: g(1)},
		spin:  motion.Sample{AZ: g(1), GZ: dps(mc.RotationDPS + 70)},
		tilt: map[string]motion.Sample{
			"left":    {AX: -g(lean), AZ: up},
			"right":   {AX: g(lean), AZ: up},
			"forward": {AY: g(lean), AZ: up},
			"back":    {AY: -g(lean), AZ: up},
		},
	}
}
