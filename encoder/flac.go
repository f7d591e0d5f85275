package encoder

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// Flac encodes mono 16-bit blocks into an in-memory FLAC stream. Safe for
// use from one producer goroutine plus readers of the counters.
type Flac struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	enc     *flac.Encoder
	frames  uint64
	elapsed time.Duration
	closed  bool
}

func NewFlac() (*Flac, error) {
	f := &Flac{}
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
	}
	enc, err := flac.NewEncoder(&f.buf, info)
	if err != nil {
		return nil, fmt.Errorf("create flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)
	f.enc = enc
	return f, nil
}

func (f *Flac) EncodeBlock(block []int16) error {
	if len(block) == 0 {
		return nil
	}
	start := time.Now()

	samples := make([]int32, len(block))
	for i, s := range block {
		samples[i] = int32(s)
	}
	fr := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    SampleRate,
			Channels:      frame.ChannelsMono,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   samples,
			NSamples:  len(block),
		}},
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return fmt.Errorf("flac encoder closed")
	}
	if err := f.enc.WriteFrame(fr); err != nil {
		return fmt.Errorf("write flac frame: %w", err)
	}
	f.frames += uint64(len(block))
	f.elapsed += time.Since(start)
	return nil
}

func (f *Flac) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.enc.Close()
}

func (f *Flac) Bytes() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buf.Bytes()
}

func (f *Flac) TotalFrames() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

func (f *Flac) EncodeTime() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}
