// Package clipboard writes to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	cb "github.com/atotto/clipboard"
)

// Writer is the write side of a clipboard.
type Writer interface {
	WriteText(text string) error
}

type System struct{}

func (System) WriteText(text string) error {
	if cb.Unsupported {
		return fmt.Errorf("clipboard: no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	return cb.WriteAll(text)
}

func Copy(text string) error {
	return System{}.WriteText(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// Memory is an in-process clipboard for tests.
type Memory struct {
	mu     sync.Mutex
	text   string
	writes int
	Err    error
}

func (m *Memory) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	m.writes++
	return nil
}

func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
