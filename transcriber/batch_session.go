package transcriber

import (
	"context"
	"errors"
	"strings"
	"sync"

	"xenora/encoder"
)

var ErrSessionEnded = errors.New("transcription session already ended")

type transcribeFunc func(ctx context.Context, audio []byte, format string) (*Result, error)

type batchSession struct {
	cfg        SessionConfig
	transcribe transcribeFunc
	enc        encoder.Encoder
	blocks     chan []int16
	encodeDone chan struct{}

	mu      sync.Mutex
	pending []int16
	ended   bool
}

func newBatchSession(cfg SessionConfig, transcribe transcribeFunc) (*batchSession, error) {
	enc, err := encoder.NewFlac()
	if err != nil {
		return nil, err
	}

	bs := &batchSession{
		cfg:        cfg,
		transcribe: transcribe,
		enc:        enc,
		blocks:     make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(bs.encodeDone)
		for block := range bs.blocks {
			bs.enc.EncodeBlock(block)
		}
	}()

	return bs, nil
}

func (bs *batchSession) Feed(pcm []byte) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	if bs.ended {
		return
	}
	bs.pending = append(bs.pending, encoder.Samples(pcm)...)
	for len(bs.pending) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, bs.pending[:encoder.BlockSize])
		bs.pending = bs.pending[encoder.BlockSize:]
		bs.blocks <- block
	}
}

// finish flushes the partial block and waits for the encoder.
func (bs *batchSession) finish() bool {
	bs.mu.Lock()
	if bs.ended {
		bs.mu.Unlock()
		return false
	}
	bs.ended = true
	if len(bs.pending) > 0 {
		bs.blocks <- bs.pending
		bs.pending = nil
	}
	close(bs.blocks)
	bs.mu.Unlock()

	<-bs.encodeDone
	bs.enc.Close()
	return true
}

func (bs *batchSession) Abort() {
	bs.finish()
}

func (bs *batchSession) Close(ctx context.Context) (SessionResult, error) {
	if !bs.finish() {
		return SessionResult{}, ErrSessionEnded
	}

	frames := bs.enc.TotalFrames()
	if frames < bs.cfg.MinFrames || frames == 0 {
		return SessionResult{NoSpeech: true}, nil
	}

	data := bs.enc.Bytes()
	result, err := bs.transcribe(ctx, data, "flac")
	if err != nil {
		return SessionResult{}, err
	}

	text := strings.TrimSpace(result.Text)
	rawSize := frames * 2
	encodedSize := uint64(len(data))

	stats := &BatchStats{
		AudioLengthS:     encoder.Duration(frames).Seconds(),
		RawSizeKB:        float64(rawSize) / 1024,
		CompressedSizeKB: float64(encodedSize) / 1024,
		CompressionPct:   (1.0 - float64(encodedSize)/float64(rawSize)) * 100,
		EncodeTimeMs:     float64(bs.enc.EncodeTime().Milliseconds()),
	}
	if m := result.Metrics; m != nil {
		stats.DNSTimeMs = float64(m.DNS.Milliseconds())
		stats.TLSTimeMs = float64(m.TLS.Milliseconds())
		stats.TTFBMs = float64(m.TTFB.Milliseconds())
		stats.TotalTimeMs = float64(m.Sum().Milliseconds())
		stats.ConnReused = m.ConnReused
	}

	sr := SessionResult{
		Text:      text,
		HasText:   text != "",
		NoSpeech:  text == "",
		RateLimit: result.RateLimit,
		Batch:     stats,
	}
	sr.captureMemStats()
	return sr, nil
}
