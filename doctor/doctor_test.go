package doctor

import (
	"bufio"
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xenora/audio"
	"xenora/transcriber"
)

func TestRunChecksSummary(t *testing.T) {
	var out bytes.Buffer
	code := runChecks(&out, []check{
		{"one", func() bool { return true }},
		{"two", func() bool { return false }},
		{"three", func() bool { return true }},
	})
	if code != 1 {
		t.Errorf("code = %d, want 1", code)
	}
	s := out.String()
	for _, want := range []string{"[1/3] one", "[2/3] two", "[3/3] three", "Some checks failed"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}

	out.Reset()
	if code := runChecks(&out, []check{{"ok", func() bool { return true }}}); code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}

func TestCheckEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer srv.Close()

	var out bytes.Buffer
	if !checkEndpoint(&out, srv.URL+"/chat") {
		t.Errorf("expected pass, got:\n%s", out.String())
	}

	srv.Close()
	out.Reset()
	if checkEndpoint(&out, srv.URL+"/chat") {
		t.Error("expected failure for closed server")
	}
	if !strings.Contains(out.String(), "-serve") {
		t.Errorf("missing stub hint:\n%s", out.String())
	}
}

func TestCheckPrefs(t *testing.T) {
	var out bytes.Buffer
	if !checkPrefs(&out, t.TempDir()) {
		t.Errorf("expected pass, got:\n%s", out.String())
	}
}

func speechInput(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestCheckSpeechSkip(t *testing.T) {
	actx := &audio.FakeContext{Names: []string{"Built-in Microphone"}}
	var out bytes.Buffer
	if !checkSpeech(&out, speechInput("s"), actx, transcriber.NewFake("x", nil), "", "en-US") {
		t.Errorf("expected skip to pass:\n%s", out.String())
	}
}

func TestCheckSpeechNoDevices(t *testing.T) {
	var out bytes.Buffer
	if checkSpeech(&out, speechInput(""), &audio.FakeContext{}, transcriber.NewFake("x", nil), "", "en-US") {
		t.Error("expected failure without devices")
	}
}

func TestCheckSpeechUnknownDevice(t *testing.T) {
	actx := &audio.FakeContext{Names: []string{"Built-in Microphone"}}
	var out bytes.Buffer
	if checkSpeech(&out, speechInput(""), actx, transcriber.NewFake("x", nil), "webcam", "en-US") {
		t.Error("expected failure for unknown device")
	}
}

func TestRecordAudioStartError(t *testing.T) {
	actx := &audio.FakeContext{StartErr: errors.New("busy")}
	stop := make(chan struct{})
	close(stop)
	var out bytes.Buffer
	if _, err := recordAudio(&out, actx, nil, stop); err == nil {
		t.Error("expected start error")
	}
}
