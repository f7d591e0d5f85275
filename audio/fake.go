package audio

import (
	"sync"
	"time"
)

const fakeChunkFrames = 1024

// FakeContext hands out FakeCaptures replaying an in-memory PCM buffer.
type FakeContext struct {
	PCM      []byte
	Names    []string
	StartErr error
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	out := make([]DeviceInfo, len(f.Names))
	for i, n := range f.Names {
		out[i] = DeviceInfo{ID: n, Name: n}
	}
	return out, nil
}

func (f *FakeContext) NewCapture(device *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	name := "fake"
	if device != nil {
		name = device.Name
	}
	return NewFakeCapture(f.PCM, name, f.StartErr), nil
}

func (f *FakeContext) Close() {}

// FakeCapture delivers its PCM in 1024-frame chunks, then silence, until
// stopped. Starting after a stop replays from the beginning.
type FakeCapture struct {
	pcm      []byte
	name     string
	startErr error

	mu      sync.Mutex
	cb      DataCallback
	stop    chan struct{}
	done    chan struct{}
	starts  int
	stopped int
}

func NewFakeCapture(pcm []byte, name string, startErr error) *FakeCapture {
	return &FakeCapture{pcm: pcm, name: name, startErr: startErr}
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() { f.SetCallback(nil) }

func (f *FakeCapture) DeviceName() string { return f.name }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.mu.Lock()
	f.starts++
	stop := make(chan struct{})
	done := make(chan struct{})
	f.stop, f.done = stop, done
	f.mu.Unlock()

	go func() {
		defer close(done)
		chunk := fakeChunkFrames * 2
		silence := make([]byte, chunk)
		pos := 0
		for {
			select {
			case <-stop:
				return
			default:
			}
			if cb := f.callback(); cb != nil {
				data := silence
				if pos < len(f.pcm) {
					end := min(pos+chunk, len(f.pcm))
					data = f.pcm[pos:end]
					pos = end
				}
				cb(data, uint32(len(data)/2))
			}
			select {
			case <-stop:
				return
			case <-time.After(time.Millisecond):
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stop, done := f.stop, f.done
	f.stop, f.done = nil, nil
	if stop != nil {
		f.stopped++
	}
	f.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (f *FakeCapture) Close() { f.Stop() }

// Counts reports how many times the capture was started and stopped.
func (f *FakeCapture) Counts() (starts, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stopped
}
