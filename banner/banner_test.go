package banner

import (
	"slices"
	"testing"
)

func TestFrames(t *testing.T) {
	got := slices.Collect(Frames("abc"))
	want := []string{"a", "ab", "abc"}
	if !slices.Equal(got, want) {
		t.Errorf("Frames(abc) = %q, want %q", got, want)
	}
}

func TestFramesRuneAware(t *testing.T) {
	got := slices.Collect(Frames("héllo"))
	want := []string{"h", "hé", "hél", "héll", "héllo"}
	if !slices.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFramesEmpty(t *testing.T) {
	if got := slices.Collect(Frames("")); len(got) != 0 {
		t.Errorf("expected no frames, got %q", got)
	}
}

func TestFramesRestartable(t *testing.T) {
	seq := Frames(Text)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) {
		t.Error("second pass differs from first")
	}
	if len(first) != len([]rune(Text)) || first[len(first)-1] != Text {
		t.Errorf("unexpected frames: %q", first)
	}
}

func TestFramesEarlyStop(t *testing.T) {
	n := 0
	for range Frames(Text) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("n = %d", n)
	}
}
