// Package doctor runs interactive checks of everything xenora depends on.
package doctor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"xenora/audio"
	"xenora/clipboard"
	"xenora/config"
	"xenora/encoder"
	"xenora/prefs"
	"xenora/transcriber"
	"xenora/transport"
)

const recordFor = 3 * time.Second

type check struct {
	name string
	run  func() bool
}

// Run executes the checks in order and returns an exit code (0 = all
// pass, 1 = any fail). Later checks still run after a failure.
func Run(cfg *config.Config) int {
	resetTerminal()
	setupInterruptHandler()

	out := os.Stdout
	in := bufio.NewReader(os.Stdin)

	fmt.Fprintln(out, "xenora doctor - system diagnostics")
	fmt.Fprintln(out, "==================================")

	checks := []check{
		{"Answering service", func() bool { return checkEndpoint(out, cfg.Endpoint) }},
		{"Preferences store", func() bool { return checkPrefs(out, cfg.DataDir) }},
		{"Clipboard", func() bool { return checkClipboard(out) }},
		{"Speech input", func() bool { return checkSpeechSetup(out, in, cfg) }},
	}
	return runChecks(out, checks)
}

func runChecks(out io.Writer, checks []check) int {
	allPass := true
	for i, c := range checks {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "[%d/%d] %s\n", i+1, len(checks), c.name)
		if !c.run() {
			allPass = false
		}
	}

	fmt.Fprintln(out)
	if allPass {
		fmt.Fprintln(out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(out, "Some checks failed. See details above.")
	return 1
}

func checkEndpoint(out io.Writer, endpoint string) bool {
	client := transport.NewTracedClient("", 5*time.Second)
	req, err := http.NewRequest(http.MethodHead, endpoint, nil)
	if err != nil {
		fmt.Fprintf(out, "  FAIL: invalid endpoint %q: %v\n", endpoint, err)
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Fprintf(out, "  FAIL: %s unreachable: %v\n", endpoint, err)
		fmt.Fprintln(out, "  Start the backend, or run `xenora -serve :5000` for a local stub")
		return false
	}
	// /chat only accepts POST, so any HTTP status proves the server is up.
	fmt.Fprintf(out, "  PASS: %s answered %d in %dms\n", endpoint, resp.StatusCode, resp.Metrics.Total.Milliseconds())
	return true
}

func checkPrefs(out io.Writer, dir string) bool {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(out, "  FAIL: cannot create %s: %v\n", dir, err)
		return false
	}
	store, err := prefs.Open(dir)
	if err != nil {
		fmt.Fprintf(out, "  FAIL: %v\n", err)
		return false
	}
	defer store.Close()

	ctx := context.Background()
	probe := fmt.Sprintf("%d", time.Now().UnixNano())
	if err := store.Set(ctx, "doctor_probe", probe); err != nil {
		fmt.Fprintf(out, "  FAIL: write: %v\n", err)
		return false
	}
	got, err := store.Get(ctx, "doctor_probe")
	if err != nil || got != probe {
		fmt.Fprintf(out, "  FAIL: read back %q, %v\n", got, err)
		return false
	}
	fmt.Fprintf(out, "  PASS: %s is writable\n", dir)
	return true
}

func checkClipboard(out io.Writer) bool {
	testStr := fmt.Sprintf("xenora-doctor-%d", time.Now().UnixNano())

	type cbResult struct {
		readback string
		err      error
		phase    string
	}
	ch := make(chan cbResult, 1)
	go func() {
		if err := clipboard.Copy(testStr); err != nil {
			ch <- cbResult{err: err, phase: "write"}
			return
		}
		got, err := clipboard.Read()
		if err != nil {
			ch <- cbResult{err: err, phase: "read"}
			return
		}
		ch <- cbResult{readback: got}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			fmt.Fprintf(out, "  FAIL: clipboard %s failed: %v\n", res.phase, res.err)
			return false
		}
		if res.readback != testStr {
			fmt.Fprintf(out, "  FAIL: clipboard mismatch: wrote %q, got %q\n", testStr, res.readback)
			return false
		}
		fmt.Fprintln(out, "  PASS: clipboard write/read verified")
		return true
	case <-time.After(3 * time.Second):
		fmt.Fprintln(out, "  FAIL: clipboard timed out (clipboard tool hung?)")
		return false
	}
}

func checkSpeechSetup(out io.Writer, in *bufio.Reader, cfg *config.Config) bool {
	tr, err := transcriber.New(cfg.GroqAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		fmt.Fprintf(out, "  SKIP: %v (the mic button will be unavailable)\n", err)
		return true
	}
	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(out, "  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()
	return checkSpeech(out, in, actx, tr, cfg.Device, cfg.Language)
}

func checkSpeech(out io.Writer, in *bufio.Reader, actx audio.Context, tr transcriber.Transcriber, deviceName, language string) bool {
	devices, err := actx.Devices()
	if err != nil {
		fmt.Fprintf(out, "  FAIL: cannot list devices: %v\n", err)
		return false
	}
	if len(devices) == 0 {
		fmt.Fprintln(out, "  FAIL: no capture devices found")
		return false
	}
	device, err := audio.FindDevice(actx, deviceName)
	if err != nil {
		fmt.Fprintf(out, "  FAIL: %v\n", err)
		return false
	}
	name := "system default"
	if device != nil {
		name = device.Name
	}
	fmt.Fprintf(out, "  Using %s with %s\n", name, tr.Name())

	fmt.Fprintf(out, "  Press Enter and speak for %d seconds (s to skip)... ", int(recordFor.Seconds()))
	line, _ := in.ReadString('\n')
	if strings.TrimSpace(strings.ToLower(line)) == "s" {
		fmt.Fprintln(out, "  SKIP: recording test skipped")
		return true
	}

	stop := make(chan struct{})
	time.AfterFunc(recordFor, func() { close(stop) })
	pcm, err := recordAudio(out, actx, device, stop)
	if err != nil {
		fmt.Fprintf(out, "  FAIL: recording error: %v\n", err)
		return false
	}
	if len(pcm) == 0 {
		fmt.Fprintln(out, "  FAIL: no audio captured")
		return false
	}
	fmt.Fprintf(out, "  Recorded %.1f KB, transcribing...\n", float64(len(pcm))/1024)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sess, err := tr.NewSession(ctx, transcriber.SessionConfig{
		Language:  transcriber.Language(language),
		MinFrames: encoder.SampleRate / 10,
	})
	if err != nil {
		fmt.Fprintf(out, "  FAIL: session error: %v\n", err)
		return false
	}
	sess.Feed(pcm)
	result, err := sess.Close(ctx)
	if err != nil {
		var apiErr *transcriber.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			fmt.Fprintln(out, "  FAIL: API key rejected")
			return false
		}
		fmt.Fprintf(out, "  FAIL: transcription error: %v\n", err)
		return false
	}

	text := result.Text
	if result.NoSpeech {
		text = "(no speech detected)"
	}
	fmt.Fprintf(out, "\n  Transcribed text: %s\n\n", text)

	fmt.Fprint(out, "  Is this correct? [y/n]: ")
	confirm, _ := in.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))
	if confirm == "y" || confirm == "yes" {
		fmt.Fprintln(out, "  PASS: transcription verified by user")
		return true
	}
	fmt.Fprintln(out, "  FAIL: transcription not confirmed")
	return false
}

func recordAudio(out io.Writer, actx audio.Context, device *audio.DeviceInfo, stop <-chan struct{}) ([]byte, error) {
	capture, err := actx.NewCapture(device, audio.SpeechConfig)
	if err != nil {
		return nil, err
	}
	defer capture.Close()

	pcmCh := make(chan []byte, 256)
	capture.SetCallback(func(data []byte, _ uint32) {
		select {
		case pcmCh <- data:
		default:
		}
	})
	if err := capture.Start(); err != nil {
		return nil, err
	}

	fmt.Fprint(out, "  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	var pcm []byte
	for {
		select {
		case data := <-pcmCh:
			pcm = append(pcm, data...)
		case <-ticker.C:
			fmt.Fprint(out, ".")
		case <-stop:
			capture.ClearCallback()
			capture.Stop()
			for {
				select {
				case data := <-pcmCh:
					pcm = append(pcm, data...)
				default:
					fmt.Fprintln(out, " done")
					return pcm, nil
				}
			}
		}
	}
}
