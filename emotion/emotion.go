// Package emotion holds the emotion table and the state machine that moves
// between emotions on touch, motion, time and context.
package emotion

import (
	"fmt"
	"image/color"
)

type Emotion uint8

const (
	Content Emotion = iota
	Happy
	Playful
	Excited
	Laugh
	Love
	Proud
	Relaxed
	Music
	Confused
	Determined
	Embarrassed
	Frustrated
	Angry
	Sleepy
	Bored
	Lonely
	Count
)

type entry struct {
	name   string
	clip   string
	weight int
	tint   color.RGBA
}

// table is indexed by Emotion; a missing entry leaves an empty name, which
// TestTableComplete rejects.
var table = [Count]entry{
	Content:     {"content", "content", 20, color.RGBA{R: 0x20, G: 0x40, B: 0x20}},
	Happy:       {"happy", "happy", 15, color.RGBA{R: 0x40, G: 0x40, B: 0x00}},
	Playful:     {"playful", "happy_2", 10, color.RGBA{R: 0x40, G: 0x20, B: 0x00}},
	Excited:     {"excited", "excited_2", 8, color.RGBA{R: 0x60, G: 0x30, B: 0x00}},
	Laugh:       {"laugh", "laugh", 6, color.RGBA{R: 0x50, G: 0x50, B: 0x10}},
	Love:        {"love", "love", 8, color.RGBA{R: 0x60, G: 0x08, B: 0x20}},
	Proud:       {"proud", "proud", 5, color.RGBA{R: 0x30, G: 0x00, B: 0x40}},
	Relaxed:     {"relaxed", "relaxed", 12, color.RGBA{R: 0x00, G: 0x30, B: 0x30}},
	Music:       {"music", "music", 6, color.RGBA{R: 0x10, G: 0x20, B: 0x50}},
	Confused:    {"confused", "confused_2", 5, color.RGBA{R: 0x30, G: 0x30, B: 0x30}},
	Determined:  {"determined", "determined", 5, color.RGBA{R: 0x50, G: 0x20, B: 0x10}},
	Embarrassed: {"embarrassed", "embarrassed", 3, color.RGBA{R: 0x50, G: 0x10, B: 0x10}},
	Frustrated:  {"frustrated", "frustrated", 3, color.RGBA{R: 0x50, G: 0x10, B: 0x00}},
	Angry:       {"angry", "angry", 2, color.RGBA{R: 0x60, G: 0x00, B: 0x00}},
	Sleepy:      {"sleepy", "sleepy", 6, color.RGBA{R: 0x00, G: 0x00, B: 0x10}},
	Bored:       {"bored", "angry_2", 4, color.RGBA{R: 0x10, G: 0x10, B: 0x10}},
	Lonely:      {"lonely", "sleepy_3", 2, color.RGBA{R: 0x00, G: 0x10, B: 0x30}},
}

// IntroClip is played once at boot.
const IntroClip = "intro.anim"

func (e Emotion) String() string {
	if e >= Count {
		return fmt.Sprintf("emotion(%d)", e)
	}
	return table[e].name
}

// Clip is the storage key of the animation shown for e.
func (e Emotion) Clip() string {
	if e >= Count {
		return ""
	}
	return table[e].clip + ".anim"
}

// BaseWeight is e's weight in autonomous selection before personality.
func (e Emotion) BaseWeight() int {
	if e >= Count {
		return 0
	}
	return table[e].weight
}

// Tint is the status LED colour for e.
func (e Emotion) Tint() color.RGBA {
	if e >= Count {
		return color.RGBA{}
	}
	return table[e].tint
}

// Parse returns the emotion named name.
func Parse(name string) (Emotion, error) {
	for i := range table {
		if table[i].name == name {
			return Emotion(i), nil
		}
	}
	return 0, fmt.Errorf("unknown emotion %q", name)
}

// All lists every emotion in table order.
func All() []Emotion {
	out := make([]Emotion, Count)
	for i := range out {
		out[i] = Emotion(i)
	}
	return out
}
