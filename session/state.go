// Package session holds the per-process UI flags shared by the chat
// controller, the speech bridge and the terminal view.
package session

import "sync"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme returns the theme named by s, or Light for anything else.
func ParseTheme(s string) Theme {
	if Theme(s) == Dark {
		return Dark
	}
	return Light
}

func (t Theme) Flip() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

type Snapshot struct {
	Draft         string
	InFlight      bool
	Listening     bool
	Theme         Theme
	CopyConfirmed bool
	ErrorBanner   string
}

type State struct {
	mu            sync.Mutex
	draft         string
	inFlight      bool
	listening     bool
	theme         Theme
	copyConfirmed bool
	errorBanner   string
	listeners     []func()
}

func New(theme Theme) *State {
	return &State{theme: theme}
}

func (s *State) OnChange(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Draft:         s.draft,
		InFlight:      s.inFlight,
		Listening:     s.listening,
		Theme:         s.theme,
		CopyConfirmed: s.copyConfirmed,
		ErrorBanner:   s.errorBanner,
	}
}

func (s *State) Draft() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *State) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

func (s *State) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

func (s *State) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *State) CopyConfirmed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyConfirmed
}

func (s *State) ErrorBanner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errorBanner
}

func (s *State) SetDraft(v string) {
	s.update(func() bool {
		if s.draft == v {
			return false
		}
		s.draft = v
		return true
	})
}

func (s *State) SetInFlight(v bool) {
	s.update(func() bool {
		if s.inFlight == v {
			return false
		}
		s.inFlight = v
		return true
	})
}

func (s *State) SetListening(v bool) {
	s.update(func() bool {
		if s.listening == v {
			return false
		}
		s.listening = v
		return true
	})
}

func (s *State) SetTheme(v Theme) {
	s.update(func() bool {
		if s.theme == v {
			return false
		}
		s.theme = v
		return true
	})
}

func (s *State) SetCopyConfirmed(v bool) {
	s.update(func() bool {
		if s.copyConfirmed == v {
			return false
		}
		s.copyConfirmed = v
		return true
	})
}

// SetErrorBanner replaces the banner text; "" clears it.
func (s *State) SetErrorBanner(v string) {
	s.update(func() bool {
		if s.errorBanner == v {
			return false
		}
		s.errorBanner = v
		return true
	})
}

// update applies fn under the lock and notifies listeners after release
// when fn reports a change.
func (s *State) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var ls []func()
	if changed {
		ls = make([]func(), len(s.listeners))
		copy(ls, s.listeners)
	}
	s.mu.Unlock()
	for _, l := range ls {
		l()
	}
}
