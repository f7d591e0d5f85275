package transcriber

import (
	"context"
	"fmt"
	"sync"
)

// FakeTranscriber returns a canned transcript for every session.
type FakeTranscriber struct {
	text string
	err  error
	lang string

	mu  sync.Mutex
	fed int
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string            { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }

// BytesFed reports the PCM bytes received across all sessions.
func (f *FakeTranscriber) BytesFed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fed
}

func (f *FakeTranscriber) Transcribe(_ context.Context, audio []byte, _ string) (*Result, error) {
	f.mu.Lock()
	f.fed += len(audio)
	f.mu.Unlock()
	if f.err != nil {
		return nil, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return &Result{Text: f.text}, nil
}

func (f *FakeTranscriber) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		f.SetLanguage(cfg.Language)
	}
	return &fakeSession{parent: f}, nil
}

type fakeSession struct {
	parent *FakeTranscriber
	mu     sync.Mutex
	ended  bool
}

func (s *fakeSession) Feed(pcm []byte) {
	s.parent.mu.Lock()
	s.parent.fed += len(pcm)
	s.parent.mu.Unlock()
}

func (s *fakeSession) Abort() {
	s.mu.Lock()
	s.ended = true
	s.mu.Unlock()
}

func (s *fakeSession) Close(context.Context) (SessionResult, error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return SessionResult{}, ErrSessionEnded
	}
	s.ended = true
	s.mu.Unlock()

	if s.parent.err != nil {
		return SessionResult{}, fmt.Errorf("fake transcriber error: %w", s.parent.err)
	}
	r := SessionResult{
		Text:     s.parent.text,
		HasText:  s.parent.text != "",
		NoSpeech: s.parent.text == "",
		Batch:    &BatchStats{AudioLengthS: 1.0, TotalTimeMs: 10},
	}
	r.captureMemStats()
	return r, nil
}
