package speech

import "fmt"

// Engine error codes delivered through Handler.Error.
const (
	CodeNoSpeech     = "no-speech"
	CodeAudioCapture = "audio-capture"
	CodeNetwork      = "network"
	CodeAborted      = "aborted"
)

// CapabilityError means no speech engine exists on this host.
type CapabilityError struct {
	Reason string
}

func (e *CapabilityError) Error() string {
	if e.Reason == "" {
		return "speech input is not supported on this system"
	}
	return "speech input is not supported: " + e.Reason
}

// SpeechCaptureError is an engine-reported failure during capture.
type SpeechCaptureError struct {
	Code string
}

func (e *SpeechCaptureError) Error() string {
	return fmt.Sprintf("speech recognition error: %s", e.Code)
}
