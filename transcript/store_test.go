package transcript

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedGreetingOnce(t *testing.T) {
	s := NewStore()
	s.SeedGreeting()
	s.SeedGreeting()

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, Assistant, msgs[0].Sender)
	assert.Equal(t, Greeting, msgs[0].Content)
	assert.False(t, msgs[0].Pending)
}

func TestBeginExchangeOrdering(t *testing.T) {
	s := NewStore()
	s.SeedGreeting()

	h := s.BeginExchange("what is the fee?")
	msgs := s.Messages()
	require.Len(t, msgs, 3)

	assert.Equal(t, h, msgs[0].ID)
	assert.Equal(t, Assistant, msgs[0].Sender)
	assert.True(t, msgs[0].Pending)

	assert.Equal(t, User, msgs[1].Sender)
	assert.Equal(t, "what is the fee?", msgs[1].Content)
	assert.False(t, msgs[1].Pending)

	assert.Equal(t, Greeting, msgs[2].Content)
	assert.Equal(t, 1, s.Pending())
}

func TestResolveExchange(t *testing.T) {
	s := NewStore()
	h := s.BeginExchange("hi")

	require.NoError(t, s.ResolveExchange(h, "hello"))
	msgs := s.Messages()
	assert.Equal(t, "hello", msgs[0].Content)
	assert.False(t, msgs[0].Pending)
	assert.False(t, msgs[0].Failed)
	assert.Equal(t, 0, s.Pending())
}

func TestFailExchangeMarksFailed(t *testing.T) {
	s := NewStore()
	h := s.BeginExchange("hi")

	require.NoError(t, s.FailExchange(h, "Error fetching response."))
	msgs := s.Messages()
	assert.Equal(t, "Error fetching response.", msgs[0].Content)
	assert.True(t, msgs[0].Failed)
	assert.False(t, msgs[0].Pending)
}

func TestResolveTwiceLeavesFirstText(t *testing.T) {
	s := NewStore()
	h := s.BeginExchange("hi")
	require.NoError(t, s.ResolveExchange(h, "first"))

	err := s.ResolveExchange(h, "second")
	assert.ErrorIs(t, err, ErrNotPending)
	assert.ErrorIs(t, s.FailExchange(h, "third"), ErrNotPending)
	assert.Equal(t, "first", s.Messages()[0].Content)
}

func TestResolveUnknownHandle(t *testing.T) {
	s := NewStore()
	s.BeginExchange("hi")
	before := s.Messages()

	err := s.ResolveExchange(Handle("nope"), "x")
	assert.ErrorIs(t, err, ErrUnknownHandle)
	assert.Equal(t, before, s.Messages())
}

func TestUserMessageIDIsNotAHandle(t *testing.T) {
	s := NewStore()
	s.BeginExchange("hi")
	userID := s.Messages()[1].ID

	assert.ErrorIs(t, s.ResolveExchange(userID, "x"), ErrUnknownHandle)
}

func TestOutOfOrderResolution(t *testing.T) {
	s := NewStore()
	h1 := s.BeginExchange("one")
	h2 := s.BeginExchange("two")

	require.NoError(t, s.ResolveExchange(h2, "answer two"))
	require.NoError(t, s.ResolveExchange(h1, "answer one"))

	msgs := s.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "answer two", msgs[0].Content)
	assert.Equal(t, "two", msgs[1].Content)
	assert.Equal(t, "answer one", msgs[2].Content)
	assert.Equal(t, "one", msgs[3].Content)
}

func TestOnChangeFiresPerMutation(t *testing.T) {
	s := NewStore()
	calls := 0
	s.OnChange(func() { calls++ })

	s.SeedGreeting()
	h := s.BeginExchange("hi")
	_ = s.ResolveExchange(h, "ok")
	_ = s.ResolveExchange(h, "again")

	assert.Equal(t, 3, calls)
}

func TestListenerMayReadStore(t *testing.T) {
	s := NewStore()
	var seen int
	s.OnChange(func() { seen = s.Len() })

	s.BeginExchange("hi")
	assert.Equal(t, 2, seen)
}

func TestConcurrentExchanges(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h := s.BeginExchange("q")
			_ = s.ResolveExchange(h, "a")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, s.Len())
	assert.Equal(t, 0, s.Pending())
}
