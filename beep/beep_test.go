package beep

import "testing"

func TestToneLengths(t *testing.T) {
	if got, want := len(startSamples()), int(sampleRate*startTone.dur); got != want {
		t.Errorf("start samples = %d, want %d", got, want)
	}
	b := errorTone.samples()
	want := 2*len(b) + int(sampleRate*errorGap)
	if got := len(errorSamples()); got != want {
		t.Errorf("error samples = %d, want %d", got, want)
	}
}

func TestToneDecays(t *testing.T) {
	s := endSamples()
	peak := func(xs []int16) int16 {
		var m int16
		for _, x := range xs {
			if x < 0 {
				x = -x
			}
			m = max(m, x)
		}
		return m
	}
	head := peak(s[:len(s)/10])
	tail := peak(s[len(s)*9/10:])
	if tail >= head {
		t.Errorf("expected decay: head peak %d, tail peak %d", head, tail)
	}
}

func TestDisabledCuesAreSilent(t *testing.T) {
	c := New(false)
	c.PlayStart()
	c.PlayEnd()
	c.PlayError()
}
