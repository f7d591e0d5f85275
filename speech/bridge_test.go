package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xenora/chat"
	"xenora/session"
)

type fakeEngine struct {
	mu       sync.Mutex
	h        Handler
	startErr error
	starts   int
	stops    int
}

func (e *fakeEngine) Start(h Handler) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.starts++
	if e.startErr != nil {
		return e.startErr
	}
	e.h = h
	return nil
}

func (e *fakeEngine) Stop() error {
	e.mu.Lock()
	e.stops++
	e.mu.Unlock()
	return nil
}

type submitRecorder struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (s *submitRecorder) submit(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.err
}

func (s *submitRecorder) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type countingCues struct {
	mu                 sync.Mutex
	start, end, errors int
}

func (c *countingCues) PlayStart() { c.mu.Lock(); c.start++; c.mu.Unlock() }
func (c *countingCues) PlayEnd()   { c.mu.Lock(); c.end++; c.mu.Unlock() }
func (c *countingCues) PlayError() { c.mu.Lock(); c.errors++; c.mu.Unlock() }

func newBridge(engine Engine, opts Options) (*Bridge, *session.State, *submitRecorder) {
	state := session.New(session.Light)
	rec := &submitRecorder{}
	return NewBridge(context.Background(), engine, state, rec.submit, opts), state, rec
}

func TestToggleWithoutEngine(t *testing.T) {
	b, state, _ := newBridge(nil, Options{Unavailable: "no API key"})

	err := b.Toggle()
	var capErr *CapabilityError
	require.True(t, errors.As(err, &capErr))
	assert.Contains(t, capErr.Error(), "no API key")
	assert.False(t, state.Listening())
	assert.False(t, b.Available())
}

func TestToggleStartsAndStops(t *testing.T) {
	eng := &fakeEngine{}
	b, state, _ := newBridge(eng, Options{})

	require.NoError(t, b.Toggle())
	assert.True(t, state.Listening())
	assert.Equal(t, Capturing, b.State())
	assert.Equal(t, 1, eng.starts)

	require.NoError(t, b.Toggle())
	assert.Equal(t, 1, eng.stops)
	// still capturing until the engine confirms the end
	assert.Equal(t, Capturing, b.State())
	assert.True(t, state.Listening())

	eng.h.CaptureEnded()
	assert.Equal(t, Idle, b.State())
	assert.False(t, state.Listening())
}

type blockingEngine struct {
	fakeEngine
	entered chan struct{}
	release chan struct{}
}

func (e *blockingEngine) Start(h Handler) error {
	close(e.entered)
	<-e.release
	return e.fakeEngine.Start(h)
}

func (e *blockingEngine) Stops() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stops
}

func TestToggleDuringStartWaitsForStart(t *testing.T) {
	eng := &blockingEngine{entered: make(chan struct{}), release: make(chan struct{})}
	b, state, _ := newBridge(eng, Options{})

	first := make(chan error, 1)
	go func() { first <- b.Toggle() }()
	<-eng.entered
	assert.Equal(t, Capturing, b.State())

	second := make(chan error, 1)
	go func() { second <- b.Toggle() }()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, eng.Stops(), "stop reached the engine before start returned")

	close(eng.release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)
	assert.Equal(t, 1, eng.Stops())
	assert.True(t, state.Listening())
}

func TestToggleStartFailure(t *testing.T) {
	eng := &fakeEngine{startErr: errors.New("mic busy")}
	b, state, _ := newBridge(eng, Options{})

	err := b.Toggle()
	assert.EqualError(t, err, "mic busy")
	assert.Equal(t, StartFailedBanner, state.ErrorBanner())
	assert.False(t, state.Listening())
	assert.Equal(t, Idle, b.State())
}

func TestResultUpdatesDraftThenSubmits(t *testing.T) {
	eng := &fakeEngine{}
	b, state, rec := newBridge(eng, Options{})

	var draftAtSubmit string
	b.submit = func(ctx context.Context, text string) error {
		draftAtSubmit = state.Draft()
		return rec.submit(ctx, text)
	}

	require.NoError(t, b.Toggle())
	eng.h.CaptureStarted()
	eng.h.Result("what is the fee")
	eng.h.CaptureEnded()

	assert.Equal(t, []string{"what is the fee"}, rec.Texts())
	assert.Equal(t, "what is the fee", draftAtSubmit)
	assert.False(t, state.Listening())
	assert.NoError(t, b.Err())
}

func TestResultWithSettleDelay(t *testing.T) {
	eng := &fakeEngine{}
	b, state, rec := newBridge(eng, Options{Settle: 100 * time.Millisecond})

	require.NoError(t, b.Toggle())
	eng.h.Result("hello")

	assert.Equal(t, "hello", state.Draft())
	assert.Empty(t, rec.Texts())

	// editing the draft during the settle window does not change what is sent
	state.SetDraft("typed")

	assert.Eventually(t, func() bool { return len(rec.Texts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "hello", rec.Texts()[0])
	assert.Equal(t, "typed", state.Draft())
}

func TestResultRejectedByValidationIsTolerated(t *testing.T) {
	eng := &fakeEngine{}
	b, _, rec := newBridge(eng, Options{})
	rec.err = &chat.ValidationError{Reason: "empty query"}

	require.NoError(t, b.Toggle())
	eng.h.Result("   ")
	eng.h.CaptureEnded()

	assert.Equal(t, []string{"   "}, rec.Texts())
	assert.Equal(t, Idle, b.State())
}

func TestEngineError(t *testing.T) {
	eng := &fakeEngine{}
	b, state, rec := newBridge(eng, Options{})

	require.NoError(t, b.Toggle())
	eng.h.Error(CodeNoSpeech)

	assert.Equal(t, "Speech recognition error: no-speech", state.ErrorBanner())
	assert.False(t, state.Listening())

	var capErr *SpeechCaptureError
	require.True(t, errors.As(b.Err(), &capErr))
	assert.Equal(t, CodeNoSpeech, capErr.Code)

	eng.h.CaptureEnded()
	assert.Equal(t, Idle, b.State())
	assert.Empty(t, rec.Texts())

	// a new activation clears the previous error
	require.NoError(t, b.Toggle())
	assert.NoError(t, b.Err())
}

func TestCaptureEndedIsUnconditional(t *testing.T) {
	eng := &fakeEngine{}
	b, state, _ := newBridge(eng, Options{})

	state.SetListening(true)
	b.CaptureEnded()
	assert.False(t, state.Listening())
	assert.Equal(t, Idle, b.State())
}

func TestCues(t *testing.T) {
	eng := &fakeEngine{}
	cues := &countingCues{}
	b, _, _ := newBridge(eng, Options{Cues: cues})

	require.NoError(t, b.Toggle())
	eng.h.Error(CodeNetwork)
	eng.h.CaptureEnded()

	assert.Eventually(t, func() bool {
		cues.mu.Lock()
		defer cues.mu.Unlock()
		return cues.start == 1 && cues.errors == 1 && cues.end == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTransitionTableIsTotal(t *testing.T) {
	for _, s := range []State{Idle, Capturing} {
		for _, e := range []Event{EvToggle, EvStarted, EvStartFailed, EvResult, EvError, EvEnded} {
			_, ok := transitions[s][e]
			assert.True(t, ok, "missing transition %s on %s", s, e)
		}
	}
	assert.Equal(t, Idle, next(Capturing, EvEnded))
	assert.Equal(t, Capturing, next(Idle, EvToggle))
}
