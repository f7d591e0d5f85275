package speech

import (
	"testing"
	"time"
)

func TestCheckUtterance(t *testing.T) {
	cfg := RecognizerConfig{EndSilence: 2 * time.Second, NoSpeechTimeout: 8 * time.Second}
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Duration
		voiced    bool
		lastVoice time.Duration
		want      utterance
	}{
		{"quiet start", time.Second, false, 0, utteranceOngoing},
		{"still talking", 5 * time.Second, true, 4500 * time.Millisecond, utteranceOngoing},
		{"trailing silence", 5 * time.Second, true, 3 * time.Second, utteranceEnded},
		{"never spoke", 8 * time.Second, false, 0, utteranceSilent},
		{"spoke once then long pause", 9 * time.Second, true, time.Second, utteranceEnded},
	}
	for _, tt := range tests {
		got := checkUtterance(start.Add(tt.now), start, tt.voiced, start.Add(tt.lastVoice), cfg)
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestCheckUtteranceDisabled(t *testing.T) {
	start := time.Now()
	later := start.Add(time.Hour)
	if got := checkUtterance(later, start, true, start, RecognizerConfig{}); got != utteranceOngoing {
		t.Errorf("voiced: got %d, want ongoing", got)
	}
	if got := checkUtterance(later, start, false, time.Time{}, RecognizerConfig{}); got != utteranceOngoing {
		t.Errorf("silent: got %d, want ongoing", got)
	}
}

func TestVoiceDetectorSilence(t *testing.T) {
	d, err := newVoiceDetector()
	if err != nil {
		t.Fatal(err)
	}

	// 10 full frames plus a partial one that stays buffered.
	d.Process(make([]byte, vadFrameBytes*10+100))

	voiced, last := d.Voice()
	if voiced {
		t.Error("silence detected as voice")
	}
	if !last.IsZero() {
		t.Errorf("last voice time set for silence: %v", last)
	}
	total, speech := d.Stats()
	if total != 10 {
		t.Errorf("total frames = %d, want 10", total)
	}
	if speech != 0 {
		t.Errorf("speech frames = %d, want 0", speech)
	}
}
