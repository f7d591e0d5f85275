package presentation

import (
	"strings"
	"sync"
	"time"

	"xenora/clipboard"
	"xenora/log"
	"xenora/session"
)

const ConfirmWindow = 2 * time.Second

// Copier copies the draft query to the clipboard and shows a confirmation
// for a fixed window. A new copy restarts the window.
type Copier struct {
	state  *session.State
	clip   clipboard.Writer
	window time.Duration

	mu    sync.Mutex
	gen   uint64
	timer *time.Timer
}

func NewCopier(state *session.State, clip clipboard.Writer, window time.Duration) *Copier {
	if window <= 0 {
		window = ConfirmWindow
	}
	return &Copier{state: state, clip: clip, window: window}
}

// CopyDraft writes the current draft in the background. The returned
// channel yields the write result once; a blank draft yields nil without
// touching the clipboard.
func (c *Copier) CopyDraft() <-chan error {
	done := make(chan error, 1)
	text := c.state.Draft()
	if strings.TrimSpace(text) == "" {
		done <- nil
		return done
	}

	go func() {
		err := c.clip.WriteText(text)
		if err != nil {
			log.Warnf("clipboard write: %v", err)
		} else {
			c.confirm()
		}
		done <- err
	}()
	return done
}

// confirm and expire update the flag under c.mu so a stale expiry can
// never clear a confirmation from a newer copy.
func (c *Copier) confirm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	gen := c.gen
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, func() { c.expire(gen) })
	c.state.SetCopyConfirmed(true)
}

func (c *Copier) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen == c.gen {
		c.state.SetCopyConfirmed(false)
	}
}
