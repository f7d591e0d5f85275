// Package beep plays short audible cues around speech capture.
package beep

import (
	"math"
	"sync/atomic"
)

const sampleRate = 44100

type tone struct {
	freq   float64
	dur    float64 // seconds
	volume float64
	decay  float64
}

var (
	startTone = tone{freq: 1200, dur: 0.2, volume: 0.5, decay: 60}
	endTone   = tone{freq: 900, dur: 0.2, volume: 0.5, decay: 40}
	errorTone = tone{freq: 350, dur: 0.08, volume: 0.6, decay: 30}
)

const errorGap = 0.05

// Cues plays the start, end and error sounds. The zero value is ready to
// use; a disabled Cues is silent.
type Cues struct {
	disabled atomic.Bool
}

func New(enabled bool) *Cues {
	c := &Cues{}
	c.disabled.Store(!enabled)
	return c
}

func (c *Cues) Disable() { c.disabled.Store(true) }

func (c *Cues) PlayStart() {
	if !c.disabled.Load() {
		play(startSamples())
	}
}

func (c *Cues) PlayEnd() {
	if !c.disabled.Load() {
		play(endSamples())
	}
}

func (c *Cues) PlayError() {
	if !c.disabled.Load() {
		play(errorSamples())
	}
}

// samples renders t as mono PCM with an exponential decay envelope.
func (t tone) samples() []int16 {
	n := int(sampleRate * t.dur)
	out := make([]int16, n)
	for i := range out {
		x := float64(i) / sampleRate
		env := math.Exp(-x * t.decay)
		out[i] = int16(math.Sin(2*math.Pi*t.freq*x) * 32767 * t.volume * env)
	}
	return out
}

func doubleBeep(t tone, gap float64) []int16 {
	b := t.samples()
	out := make([]int16, 0, 2*len(b)+int(sampleRate*gap))
	out = append(out, b...)
	out = append(out, make([]int16, int(sampleRate*gap))...)
	return append(out, b...)
}

func startSamples() []int16 { return startTone.samples() }
func endSamples() []int16   { return endTone.samples() }
func errorSamples() []int16 { return doubleBeep(errorTone, errorGap) }
