package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"xenora/transport"
)

const uploadTimeout = 60 * time.Second

// APIError is a non-200 reply from a transcription provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Body)
}

// upload posts audio as multipart/form-data with the given extra fields.
func upload(ctx context.Context, b *baseTranscriber, provider, apiKey string, audio []byte, format string, fields map[string]string) (*transport.TracedResponse, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	if b.lang != "" {
		writer.WriteField("language", b.lang)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Provider: provider, StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp, nil
}

func rateLimit(h http.Header) string {
	remaining := transport.FirstNonEmpty(h, "x-ratelimit-remaining-requests")
	limit := transport.FirstNonEmpty(h, "x-ratelimit-limit-requests")
	return remaining + "/" + limit
}
