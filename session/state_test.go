package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in   string
		want Theme
	}{
		{"dark", Dark},
		{"light", Light},
		{"", Light},
		{"solarized", Light},
		{"DARK", Light},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseTheme(tt.in), "ParseTheme(%q)", tt.in)
	}
}

func TestFlip(t *testing.T) {
	assert.Equal(t, Dark, Light.Flip())
	assert.Equal(t, Light, Dark.Flip())
}

func TestNewDefaults(t *testing.T) {
	s := New(Dark)
	snap := s.Snapshot()
	assert.Equal(t, Snapshot{Theme: Dark}, snap)
}

func TestSettersNotifyOnlyOnChange(t *testing.T) {
	s := New(Light)
	calls := 0
	s.OnChange(func() { calls++ })

	s.SetDraft("hello")
	s.SetDraft("hello")
	s.SetInFlight(true)
	s.SetInFlight(true)
	s.SetListening(true)
	s.SetTheme(Dark)
	s.SetCopyConfirmed(true)
	s.SetErrorBanner("oops")
	s.SetErrorBanner("")

	assert.Equal(t, 7, calls)
	assert.Equal(t, Snapshot{
		Draft:         "hello",
		InFlight:      true,
		Listening:     true,
		Theme:         Dark,
		CopyConfirmed: true,
	}, s.Snapshot())
}

func TestListenerCanReadState(t *testing.T) {
	s := New(Light)
	var seen string
	s.OnChange(func() { seen = s.Draft() })

	s.SetDraft("abc")
	assert.Equal(t, "abc", seen)
}
