package transcriber

import (
	"context"
	"runtime"
)

func (r *SessionResult) captureMemStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocMB = float64(m.Alloc) / 1024 / 1024
}

type SessionConfig struct {
	Language string
	// MinFrames below which the recording is treated as no speech and
	// never uploaded.
	MinFrames uint64
}

type BatchStats struct {
	AudioLengthS     float64
	RawSizeKB        float64
	CompressedSizeKB float64
	CompressionPct   float64
	EncodeTimeMs     float64
	DNSTimeMs        float64
	TLSTimeMs        float64
	TTFBMs           float64
	TotalTimeMs      float64
	ConnReused       bool
}

type SessionResult struct {
	Text          string
	HasText       bool
	NoSpeech      bool
	RateLimit     string // "remaining/limit" or empty
	MemoryAllocMB float64
	Batch         *BatchStats
}

// Session collects one utterance. Feed may be called from the audio
// callback; exactly one of Close or Abort ends it.
type Session interface {
	Feed(pcm []byte)
	Close(ctx context.Context) (SessionResult, error)
	Abort()
}
