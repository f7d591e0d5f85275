package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"xenora/audio"
	"xenora/encoder"
	"xenora/log"
	"xenora/transcriber"
)

var ErrAlreadyCapturing = errors.New("speech capture already active")

type RecognizerConfig struct {
	Language    string        // BCP 47, e.g. "en-US"
	MaxDuration time.Duration // auto-stop for one utterance
	// MinFrames shorter recordings end with no-speech without upload.
	MinFrames uint64
	// EndSilence stops capture once speech has been followed by this much
	// silence. Zero keeps capturing until Stop.
	EndSilence time.Duration
	// NoSpeechTimeout ends capture with no-speech when no voice is heard.
	NoSpeechTimeout time.Duration
}

func DefaultRecognizerConfig() RecognizerConfig {
	return RecognizerConfig{
		Language:        "en-US",
		MaxDuration:     30 * time.Second,
		MinFrames:       encoder.SampleRate / 10,
		EndSilence:      2 * time.Second,
		NoSpeechTimeout: 8 * time.Second,
	}
}

// Recognizer records one utterance from the microphone per activation and
// transcribes it when capture stops. No interim results are produced.
type Recognizer struct {
	capture audio.CaptureDevice
	tr      transcriber.Transcriber
	cfg     RecognizerConfig

	mu     sync.Mutex
	active *recording
}

type recording struct {
	h       Handler
	sess    transcriber.Session
	ctx     context.Context
	cancel  context.CancelFunc
	stop    chan struct{}
	once    sync.Once
	vad     *voiceDetector
	aborted atomic.Bool
	silent  atomic.Bool
	fed     atomic.Int64
}

func (r *recording) requestStop() {
	r.once.Do(func() { close(r.stop) })
}

func NewRecognizer(capture audio.CaptureDevice, tr transcriber.Transcriber, cfg RecognizerConfig) *Recognizer {
	return &Recognizer{capture: capture, tr: tr, cfg: cfg}
}

func (r *Recognizer) Provider() string { return r.tr.Name() }

func (r *Recognizer) Start(h Handler) error {
	r.mu.Lock()
	if r.active != nil {
		r.mu.Unlock()
		return ErrAlreadyCapturing
	}

	ctx, cancel := context.WithCancel(context.Background())
	sess, err := r.tr.NewSession(ctx, transcriber.SessionConfig{
		Language:  transcriber.Language(r.cfg.Language),
		MinFrames: r.cfg.MinFrames,
	})
	if err != nil {
		r.mu.Unlock()
		cancel()
		return fmt.Errorf("transcription session: %w", err)
	}

	rec := &recording{h: h, sess: sess, ctx: ctx, cancel: cancel, stop: make(chan struct{})}
	if r.cfg.EndSilence > 0 || r.cfg.NoSpeechTimeout > 0 {
		if d, err := newVoiceDetector(); err != nil {
			log.Warnf("voice detection disabled: %v", err)
		} else {
			rec.vad = d
		}
	}
	r.capture.SetCallback(func(data []byte, _ uint32) {
		rec.fed.Add(int64(len(data)))
		if rec.vad != nil {
			rec.vad.Process(data)
		}
		sess.Feed(data)
	})
	if err := r.capture.Start(); err != nil {
		r.capture.ClearCallback()
		sess.Abort()
		cancel()
		r.mu.Unlock()
		return fmt.Errorf("start capture on %s: %w", r.capture.DeviceName(), err)
	}
	r.active = rec
	r.mu.Unlock()

	log.Info("capture started on " + r.capture.DeviceName())
	h.CaptureStarted()
	go r.run(rec)
	return nil
}

// Stop ends the current utterance; the transcript follows asynchronously.
func (r *Recognizer) Stop() error {
	r.mu.Lock()
	rec := r.active
	r.mu.Unlock()
	if rec != nil {
		rec.requestStop()
	}
	return nil
}

// Abort discards the current utterance without transcribing it.
func (r *Recognizer) Abort() {
	r.mu.Lock()
	rec := r.active
	r.mu.Unlock()
	if rec != nil {
		rec.aborted.Store(true)
		rec.cancel()
		rec.requestStop()
	}
}

func (r *Recognizer) run(rec *recording) {
	timer := time.NewTimer(r.cfg.MaxDuration)
	defer timer.Stop()

	var tick <-chan time.Time
	if rec.vad != nil {
		ticker := time.NewTicker(vadTick)
		defer ticker.Stop()
		tick = ticker.C
	}
	started := time.Now()

wait:
	for {
		select {
		case <-rec.stop:
			break wait
		case <-timer.C:
			log.Info("capture auto-stopped after max duration")
			break wait
		case now := <-tick:
			voiced, last := rec.vad.Voice()
			switch checkUtterance(now, started, voiced, last, r.cfg) {
			case utteranceEnded:
				log.Info("capture stopped after trailing silence")
				break wait
			case utteranceSilent:
				total, _ := rec.vad.Stats()
				log.Warnf("no voice in %d frames", total)
				rec.silent.Store(true)
				break wait
			}
		}
	}

	r.capture.Stop()
	r.capture.ClearCallback()

	r.settle(rec)

	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()
	rec.cancel()
	rec.h.CaptureEnded()
}

func (r *Recognizer) settle(rec *recording) {
	provider := r.tr.Name()

	if rec.aborted.Load() {
		rec.sess.Abort()
		log.SpeechResult(provider, 0, 0, CodeAborted)
		rec.h.Error(CodeAborted)
		return
	}
	if rec.fed.Load() == 0 {
		rec.sess.Abort()
		log.SpeechResult(provider, 0, 0, CodeAudioCapture)
		rec.h.Error(CodeAudioCapture)
		return
	}

	if rec.silent.Load() {
		rec.sess.Abort()
		log.SpeechResult(provider, 0, 0, CodeNoSpeech)
		rec.h.Error(CodeNoSpeech)
		return
	}

	res, err := rec.sess.Close(rec.ctx)
	audioS := 0.0
	if res.Batch != nil {
		audioS = res.Batch.AudioLengthS
	}
	switch {
	case err != nil && rec.aborted.Load():
		log.SpeechResult(provider, audioS, 0, CodeAborted)
		rec.h.Error(CodeAborted)
	case err != nil:
		log.Errorf("transcribe: %v", err)
		log.SpeechResult(provider, audioS, 0, CodeNetwork)
		rec.h.Error(CodeNetwork)
	case res.NoSpeech:
		log.SpeechResult(provider, audioS, 0, CodeNoSpeech)
		rec.h.Error(CodeNoSpeech)
	default:
		log.SpeechResult(provider, audioS, len(res.Text), "")
		rec.h.Result(res.Text)
	}
}
