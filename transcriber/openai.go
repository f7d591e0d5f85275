package transcriber

import (
	"context"
	"encoding/json"
	"fmt"

	"xenora/transport"
)

const openaiURL = "https://api.openai.com/v1/audio/transcriptions"

type OpenAI struct {
	baseTranscriber
	apiKey string
}

func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		baseTranscriber: baseTranscriber{
			client: transport.NewTracedClient(openaiURL, uploadTimeout),
			apiURL: openaiURL,
		},
		apiKey: apiKey,
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) NewSession(_ context.Context, cfg SessionConfig) (Session, error) {
	go o.client.Warm()
	if cfg.Language != "" {
		o.SetLanguage(cfg.Language)
	}
	return newBatchSession(cfg, o.Transcribe)
}

func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, format string) (*Result, error) {
	resp, err := upload(ctx, &o.baseTranscriber, "openai", o.apiKey, audio, format, map[string]string{
		"model":           "gpt-4o-transcribe",
		"response_format": "json",
	})
	if err != nil {
		return nil, err
	}

	var oResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(resp.Body, &oResp); err != nil {
		return nil, fmt.Errorf("openai response parse error: %w", err)
	}

	return &Result{
		Text:      oResp.Text,
		Metrics:   resp.Metrics,
		RateLimit: rateLimit(resp.Header),
	}, nil
}
