package emotion

import "nifri2/emotipet/personality"

const MaxWeight = 100

// Rand is the randomness the machine draws from; *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// off is a trait's distance from neutral, in [-5,5].
func off(v personality.Vector, t personality.Trait) int {
	return v.Get(t) - personality.DefaultTrait
}

// Modifier is the signed adjustment personality applies to e's base weight.
func Modifier(e Emotion, v personality.Vector) int {
	var (
		play   = off(v, personality.Playfulness)
		aff    = off(v, personality.Affection)
		cur    = off(v, personality.Curiosity)
		energy = off(v, personality.Energy)
		soc    = off(v, personality.Sociability)
	)
	switch e {
	case Happy:
		return 2 * soc
	case Playful:
		return 3 * play
	case Excited:
		return 2*energy + play
	case Laugh:
		return 2 * play
	case Love:
		return 3 * aff
	case Proud:
		return cur + energy
	case Relaxed:
		return -2 * energy
	case Music:
		return cur + play
	case Confused:
		return cur
	case Determined:
		return 2 * energy
	case Embarrassed:
		return -soc
	case Frustrated:
		return -aff
	case Angry:
		return -aff - soc
	case Sleepy:
		return -3 * energy
	case Bored:
		return -2 * cur
	case Lonely:
		return -2 * soc
	}
	return 0
}

// Weights returns base weight plus modifier for every emotion, clamped to
// [0, MaxWeight]. Excluded emotions get zero.
func Weights(v personality.Vector, exclude ...Emotion) [Count]int {
	var w [Count]int
	for i := range w {
		e := Emotion(i)
		w[i] = clamp(e.BaseWeight()+Modifier(e, v), 0, MaxWeight)
	}
	for _, e := range exclude {
		if e < Count {
			w[e] = 0
		}
	}
	return w
}

// Total sums w.
func Total(w [Count]int) int {
	total := 0
	for _, x := range w {
		total += x
	}
	return total
}

// Pick returns the emotion whose cumulative-weight interval holds r, for r
// in [0, Total(w)). ok is false when r is out of range.
func Pick(w [Count]int, r int) (e Emotion, ok bool) {
	if r < 0 {
		return 0, false
	}
	cum := 0
	for i, x := range w {
		cum += x
		if r < cum {
			return Emotion(i), true
		}
	}
	return 0, false
}

// Draw picks from w with one uniform draw. ok is false when every weight
// is zero.
func Draw(w [Count]int, rng Rand) (Emotion, bool) {
	total := Total(w)
	if total <= 0 {
		return 0, false
	}
	return Pick(w, rng.Intn(total))
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
