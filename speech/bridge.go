// Package speech connects a speech-to-text engine to the chat session:
// the mic toggle, the listening indicator, and submission of recognized
// utterances.
package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"xenora/chat"
	"xenora/log"
	"xenora/session"
)

const StartFailedBanner = "Could not start speech recognition. Try again."

// Handler receives engine lifecycle events. Calls may arrive on any
// goroutine.
type Handler interface {
	CaptureStarted()
	Result(transcript string)
	Error(code string)
	CaptureEnded()
}

// Engine is a one-utterance-per-activation recognizer. Start begins
// capture and reports through h; Stop requests the end, which the engine
// confirms later with CaptureEnded.
type Engine interface {
	Start(h Handler) error
	Stop() error
}

type Cues interface {
	PlayStart()
	PlayEnd()
	PlayError()
}

type SubmitFunc func(ctx context.Context, text string) error

type Options struct {
	// Settle delays submission after the draft shows the transcript.
	Settle time.Duration
	Cues   Cues
	// Unavailable explains why engine is nil.
	Unavailable string
}

type Bridge struct {
	ctx    context.Context
	engine Engine
	state  *session.State
	submit SubmitFunc
	opts   Options

	// toggleMu serializes Toggle so a stop cannot reach the engine while
	// its Start is still running.
	toggleMu sync.Mutex

	mu      sync.Mutex
	fsm     State
	lastErr error
}

func NewBridge(ctx context.Context, engine Engine, state *session.State, submit SubmitFunc, opts Options) *Bridge {
	return &Bridge{
		ctx:    ctx,
		engine: engine,
		state:  state,
		submit: submit,
		opts:   opts,
	}
}

func (b *Bridge) Available() bool { return b.engine != nil }

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fsm
}

// Err returns the last capture error, cleared by the next successful start.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func (b *Bridge) fire(e Event) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.fsm
	b.fsm = next(prev, e)
	if prev != b.fsm {
		log.Info("speech " + prev.String() + " -> " + b.fsm.String() + " on " + e.String())
	}
	return prev
}

// Toggle starts capture when idle and requests a stop while capturing.
func (b *Bridge) Toggle() error {
	if b.engine == nil {
		return &CapabilityError{Reason: b.opts.Unavailable}
	}

	b.toggleMu.Lock()
	defer b.toggleMu.Unlock()

	if prev := b.fire(EvToggle); prev == Capturing {
		if err := b.engine.Stop(); err != nil {
			log.Warnf("speech stop: %v", err)
			return err
		}
		return nil
	}

	b.state.SetListening(true)
	b.mu.Lock()
	b.lastErr = nil
	b.mu.Unlock()

	if err := b.engine.Start(b); err != nil {
		log.Errorf("speech start: %v", err)
		b.fire(EvStartFailed)
		b.state.SetErrorBanner(StartFailedBanner)
		b.state.SetListening(false)
		b.cue(Cues.PlayError)
		return err
	}
	b.cue(Cues.PlayStart)
	return nil
}

func (b *Bridge) CaptureStarted() {
	b.fire(EvStarted)
	b.state.SetListening(true)
}

// Result shows the transcript in the draft and submits it. The captured
// text is submitted directly; a later edit to the draft does not change
// what is sent.
func (b *Bridge) Result(transcript string) {
	b.fire(EvResult)
	b.state.SetDraft(transcript)

	if b.opts.Settle <= 0 {
		b.doSubmit(transcript)
		return
	}
	time.AfterFunc(b.opts.Settle, func() { b.doSubmit(transcript) })
}

func (b *Bridge) doSubmit(text string) {
	if err := b.submit(b.ctx, text); err != nil {
		var vErr *chat.ValidationError
		if errors.As(err, &vErr) {
			log.Warnf("speech result rejected: %v", err)
			return
		}
		log.Errorf("speech submit: %v", err)
	}
}

func (b *Bridge) Error(code string) {
	b.fire(EvError)
	err := &SpeechCaptureError{Code: code}
	b.mu.Lock()
	b.lastErr = err
	b.mu.Unlock()

	log.Warnf("speech error: %s", code)
	b.state.SetErrorBanner("Speech recognition error: " + code)
	b.state.SetListening(false)
	b.cue(Cues.PlayError)
}

func (b *Bridge) CaptureEnded() {
	prev := b.fire(EvEnded)
	b.state.SetListening(false)
	if prev == Capturing {
		b.cue(Cues.PlayEnd)
	}
}

func (b *Bridge) cue(play func(Cues)) {
	if b.opts.Cues != nil {
		go play(b.opts.Cues)
	}
}
