package speech

import (
	"sync"
	"time"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"xenora/encoder"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = encoder.SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
	vadDebounce   = 3                                          // consecutive speech frames to confirm voice
	vadTick       = 100 * time.Millisecond
)

type voiceDetector struct {
	vad *webrtcvad.VAD

	mu            sync.Mutex
	buf           []byte
	voiceDetected bool
	lastVoiceTime time.Time
	speechRun     int
	totalFrames   int
	speechFrames  int
}

func newVoiceDetector() (*voiceDetector, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &voiceDetector{vad: v}, nil
}

// Process consumes little-endian 16-bit PCM at encoder.SampleRate.
func (d *voiceDetector) Process(data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.buf = append(d.buf, data...)
	for len(d.buf) >= vadFrameBytes {
		frame := d.buf[:vadFrameBytes]
		d.buf = d.buf[vadFrameBytes:]

		active, err := d.vad.Process(encoder.SampleRate, frame)
		if err != nil {
			continue
		}
		d.totalFrames++
		if !active {
			d.speechRun = 0
			continue
		}
		d.speechFrames++
		d.speechRun++
		if d.voiceDetected || d.speechRun >= vadDebounce {
			d.voiceDetected = true
			d.lastVoiceTime = time.Now()
		}
	}
}

// Voice reports whether speech has been confirmed and when it was last heard.
func (d *voiceDetector) Voice() (bool, time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.voiceDetected, d.lastVoiceTime
}

func (d *voiceDetector) Stats() (total, speech int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.totalFrames, d.speechFrames
}

type utterance int

const (
	utteranceOngoing utterance = iota
	utteranceEnded             // speech followed by trailing silence
	utteranceSilent            // nothing said before the no-speech timeout
)

func checkUtterance(now, started time.Time, voiced bool, lastVoice time.Time, cfg RecognizerConfig) utterance {
	if voiced {
		if cfg.EndSilence > 0 && now.Sub(lastVoice) >= cfg.EndSilence {
			return utteranceEnded
		}
		return utteranceOngoing
	}
	if cfg.NoSpeechTimeout > 0 && now.Sub(started) >= cfg.NoSpeechTimeout {
		return utteranceSilent
	}
	return utteranceOngoing
}
