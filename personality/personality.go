// Package personality holds the learned traits and interaction history that
// bias the emotion state machine, and their persisted record.
package personality

type Trait uint8

const (
	Playfulness Trait = iota
	Affection
	Curiosity
	Energy
	Sociability
	TraitCount
)

const (
	MinTrait     = 0
	MaxTrait     = 10
	DefaultTrait = 5
	MaxBond      = 100
)

var traitNames = [TraitCount]string{
	Playfulness: "playfulness",
	Affection:   "affection",
	Curiosity:   "curiosity",
	Energy:      "energy",
	Sociability: "sociability",
}

func (t Trait) String() string {
	if t >= TraitCount {
		return "unknown"
	}
	return traitNames[t]
}

// Vector is the five trait levels, each in [0,10].
type Vector [TraitCount]uint8

// DefaultVector is the first-boot personality.
func DefaultVector() Vector {
	var v Vector
	for i := range v {
		v[i] = DefaultTrait
	}
	return v
}

func (v Vector) Get(t Trait) int {
	return int(v[t])
}

// Nudge moves trait t by delta, saturating at the trait bounds.
func (v *Vector) Nudge(t Trait, delta int) {
	v[t] = uint8(clamp(int(v[t])+delta, MinTrait, MaxTrait))
}

// History counts interactions per touch channel.
type History struct {
	Touches []uint16
	Bond    uint8
}

func NewHistory(channels int) History {
	return History{Touches: make([]uint16, channels)}
}

// RecordTouch counts one classified touch event on every channel it
// involved. The bond rises once per event however many channels took part.
func (h *History) RecordTouch(channels ...int) {
	for _, ch := range channels {
		if ch >= 0 && ch < len(h.Touches) && h.Touches[ch] < 0xFFFF {
			h.Touches[ch]++
		}
	}
	if h.Bond < MaxBond {
		h.Bond++
	}
}

// Favorite is the most touched channel, lowest index on ties, or -1 before
// any touch.
func (h History) Favorite() int {
	best, bestCount := -1, uint16(0)
	for i, n := range h.Touches {
		if n > bestCount {
			best, bestCount = i, n
		}
	}
	return best
}

// Total is the sum of all channel counts.
func (h History) Total() int {
	total := 0
	for _, n := range h.Touches {
		total += int(n)
	}
	return total
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
