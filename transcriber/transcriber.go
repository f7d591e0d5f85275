// Package transcriber turns recorded speech into text through hosted
// Whisper-style transcription APIs.
package transcriber

import (
	"context"
	"errors"

	"xenora/transport"
)

var ErrNoAPIKey = errors.New("set GROQ_API_KEY or OPENAI_API_KEY to enable speech input")

type Segment struct {
	Text         string
	NoSpeechProb float64
	AvgLogProb   float64
	Start        float64
	End          float64
}

type Result struct {
	Text         string
	Metrics      *transport.NetworkMetrics
	RateLimit    string
	NoSpeechProb float64
	AvgLogProb   float64
	Duration     float64
	Segments     []Segment
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
	// Transcribe uploads an already encoded recording.
	Transcribe(ctx context.Context, audio []byte, format string) (*Result, error)
}

type baseTranscriber struct {
	client *transport.TracedClient
	apiURL string
	lang   string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

// New picks a provider from the given keys, preferring Groq.
func New(groqKey, openaiKey string) (Transcriber, error) {
	if groqKey != "" {
		return NewGroq(groqKey), nil
	}
	if openaiKey != "" {
		return NewOpenAI(openaiKey), nil
	}
	return nil, ErrNoAPIKey
}

// Language maps a BCP 47 tag such as "en-US" to the ISO 639-1 code the
// transcription APIs accept.
func Language(tag string) string {
	for i, r := range tag {
		if r == '-' || r == '_' {
			return tag[:i]
		}
	}
	return tag
}
