// Package transcript holds the ordered conversation log shown to the user.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

const Greeting = "Hey! Hi, how can I assist you?"

type Sender string

const (
	User      Sender = "user"
	Assistant Sender = "assistant"
)

// Handle identifies one exchange. It is the ID of the pending assistant
// message created by BeginExchange.
type Handle string

var (
	ErrUnknownHandle = errors.New("transcript: unknown exchange handle")
	ErrNotPending    = errors.New("transcript: exchange already resolved")
)

type Message struct {
	ID        Handle
	Sender    Sender
	Content   string
	Pending   bool
	Failed    bool
	CreatedAt time.Time
}

// Store is safe for concurrent use. Messages are kept newest-first.
type Store struct {
	mu        sync.Mutex
	messages  []Message
	seeded    bool
	listeners []func()
}

func NewStore() *Store {
	return &Store{}
}

// OnChange registers fn to be called after every mutation.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) SeedGreeting() {
	s.mu.Lock()
	if s.seeded {
		s.mu.Unlock()
		return
	}
	s.seeded = true
	s.messages = append([]Message{{
		ID:        newHandle(),
		Sender:    Assistant,
		Content:   Greeting,
		CreatedAt: time.Now(),
	}}, s.messages...)
	s.mu.Unlock()
	s.notify()
}

// BeginExchange prepends a pending assistant placeholder and the resolved
// user message in one step and returns the placeholder's handle.
func (s *Store) BeginExchange(userText string) Handle {
	now := time.Now()
	h := newHandle()
	placeholder := Message{ID: h, Sender: Assistant, Pending: true, CreatedAt: now}
	user := Message{ID: newHandle(), Sender: User, Content: userText, CreatedAt: now}

	s.mu.Lock()
	front := []Message{placeholder, user}
	s.messages = append(front, s.messages...)
	s.mu.Unlock()
	s.notify()
	return h
}

func (s *Store) ResolveExchange(h Handle, text string) error {
	return s.settle(h, text, false)
}

// FailExchange resolves the exchange with an error text and marks it failed.
func (s *Store) FailExchange(h Handle, text string) error {
	return s.settle(h, text, true)
}

func (s *Store) settle(h Handle, text string, failed bool) error {
	s.mu.Lock()
	i := s.indexOf(h)
	if i < 0 {
		s.mu.Unlock()
		return ErrUnknownHandle
	}
	if !s.messages[i].Pending {
		s.mu.Unlock()
		return ErrNotPending
	}
	s.messages[i].Content = text
	s.messages[i].Pending = false
	s.messages[i].Failed = failed
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) indexOf(h Handle) int {
	for i := range s.messages {
		if s.messages[i].ID == h && s.messages[i].Sender == Assistant {
			return i
		}
	}
	return -1
}

func (s *Store) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// Pending returns how many assistant messages are still awaiting an answer.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, m := range s.messages {
		if m.Pending {
			n++
		}
	}
	return n
}

func (s *Store) notify() {
	s.mu.Lock()
	ls := make([]func(), len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, fn := range ls {
		fn()
	}
}

func newHandle() Handle {
	return Handle(uuid.NewString())
}
