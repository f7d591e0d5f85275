package transcriber

import (
	"context"
	"encoding/json"
	"fmt"

	"xenora/transport"
)

const groqURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	baseTranscriber
	apiKey string
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		baseTranscriber: baseTranscriber{
			client: transport.NewTracedClient(groqURL, uploadTimeout),
			apiURL: groqURL,
		},
		apiKey: apiKey,
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	go g.client.Warm()
	if cfg.Language != "" {
		g.SetLanguage(cfg.Language)
	}
	return newBatchSession(cfg, g.Transcribe)
}

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		Start        float64 `json:"start"`
		End          float64 `json:"end"`
		NoSpeechProb float64 `json:"no_speech_prob"`
		AvgLogProb   float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, audio []byte, format string) (*Result, error) {
	resp, err := upload(ctx, &g.baseTranscriber, "groq", g.apiKey, audio, format, map[string]string{
		"model":           "whisper-large-v3-turbo",
		"response_format": "verbose_json",
	})
	if err != nil {
		return nil, err
	}

	var gResp groqResponse
	if err := json.Unmarshal(resp.Body, &gResp); err != nil {
		return nil, fmt.Errorf("groq response parse error: %w", err)
	}

	res := &Result{
		Text:      gResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: rateLimit(resp.Header),
		Duration:  gResp.Duration,
	}
	var logProbSum float64
	for _, seg := range gResp.Segments {
		res.NoSpeechProb = max(res.NoSpeechProb, seg.NoSpeechProb)
		logProbSum += seg.AvgLogProb
		res.Segments = append(res.Segments, Segment{
			Text:         seg.Text,
			NoSpeechProb: seg.NoSpeechProb,
			AvgLogProb:   seg.AvgLogProb,
			Start:        seg.Start,
			End:          seg.End,
		})
	}
	if n := len(gResp.Segments); n > 0 {
		res.AvgLogProb = logProbSum / float64(n)
	}
	return res, nil
}
