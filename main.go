package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"xenora/answer"
	"xenora/audio"
	"xenora/beep"
	"xenora/chat"
	"xenora/clipboard"
	"xenora/config"
	"xenora/doctor"
	"xenora/log"
	"xenora/prefs"
	"xenora/presentation"
	"xenora/session"
	"xenora/shutdown"
	"xenora/speech"
	"xenora/stubserver"
	"xenora/transcriber"
	"xenora/transcript"
)

var version = "dev"

const stubShutdownTimeout = 5 * time.Second

func main() {
	endpointFlag := flag.String("endpoint", "", "Answering service URL (default "+answer.DefaultEndpoint+")")
	timeoutFlag := flag.Duration("timeout", 0, "Answering service request timeout (e.g., 30s)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	dataDirFlag := flag.String("datadir", "", "Directory holding the preferences database")
	settleFlag := flag.Duration("settle", 0, "Delay between showing a speech transcript and sending it")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	langFlag := flag.String("lang", "", "Speech recognition language tag (default en-US)")
	noBeepFlag := flag.Bool("nobeep", false, "Disable microphone start/stop sounds")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	serveFlag := flag.String("serve", "", "Run the local answering stub on addr (e.g., :5000) and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("xenora %s\n", version)
		return
	}

	cfg := config.Load()
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = *endpointFlag
		case "timeout":
			cfg.Timeout = *timeoutFlag
		case "datadir":
			cfg.DataDir = *dataDirFlag
		case "settle":
			cfg.Settle = *settleFlag
		case "device":
			cfg.Device = *deviceFlag
		case "lang":
			cfg.Language = *langFlag
		case "nobeep":
			cfg.Beep = !*noBeepFlag
		}
	})

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	var code int
	switch {
	case *serveFlag != "":
		code = serve(cfg, *serveFlag)
	case *doctorFlag:
		code = doctor.Run(cfg)
	default:
		code = run(cfg, *setupFlag)
	}
	log.Close()
	os.Exit(code)
}

func run(cfg *config.Config, setup bool) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kv prefs.Store
	if s, err := prefs.Open(cfg.DataDir); err != nil {
		log.Warnf("preferences unavailable, theme will not persist: %v", err)
		kv = prefs.NewMemoryStore()
	} else {
		kv = s
	}
	defer kv.Close()

	theme := presentation.LoadTheme(ctx, kv)
	state := session.New(theme)
	store := transcript.NewStore()
	store.SeedGreeting()

	client := answer.New(cfg.Endpoint, cfg.Timeout)
	go client.Warm()
	controller := chat.NewController(store, state, client, client.Endpoint())

	engine, provider, reason, closeSpeech := setupSpeech(cfg, setup)
	defer closeSpeech()

	bridge := speech.NewBridge(ctx, engine, state, func(ctx context.Context, text string) error {
		_, err := controller.Submit(ctx, text)
		return err
	}, speech.Options{
		Settle:      cfg.Settle,
		Cues:        beep.New(cfg.Beep),
		Unavailable: reason,
	})

	log.SessionStart(client.Endpoint(), provider, string(theme))

	deps := tuiDeps{
		ctx:        ctx,
		store:      store,
		state:      state,
		controller: controller,
		bridge:     bridge,
		themes:     presentation.NewThemes(state, kv),
		copier:     presentation.NewCopier(state, clipboard.System{}, presentation.ConfirmWindow),
	}
	bindTUI(store, state)

	tuiMu.Lock()
	tuiProgram = NewTUIProgram(deps)
	p := tuiProgram
	tuiMu.Unlock()

	sigCh := make(chan os.Signal, 1)
	shutdown.Notify(sigCh)
	go func() {
		<-sigCh
		log.Info("shutdown signal")
		p.Quit()
	}()

	code := 0
	if _, err := p.Run(); err != nil {
		log.Errorf("TUI error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		code = 1
	}

	tuiMu.Lock()
	tuiProgram = nil
	tuiMu.Unlock()

	if n := store.Pending(); n > 0 {
		fmt.Printf("Waiting for %d pending replies...\n", n)
	}
	controller.Wait()
	log.SessionEnd(controller.Exchanges())
	return code
}

// setupSpeech builds the speech engine. A nil engine comes with the reason
// speech input is unavailable.
func setupSpeech(cfg *config.Config, setup bool) (speech.Engine, string, string, func()) {
	noop := func() {}

	tr, err := transcriber.New(cfg.GroqAPIKey, cfg.OpenAIAPIKey)
	if err != nil {
		log.Warnf("speech disabled: %v", err)
		return nil, "none", "set GROQ_API_KEY or OPENAI_API_KEY", noop
	}
	tr.SetLanguage(transcriber.Language(cfg.Language))

	actx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		return nil, "none", "audio system unavailable", noop
	}

	var device *audio.DeviceInfo
	if setup {
		device, err = audio.SelectDevice(actx)
		if err != nil && !errors.Is(err, audio.ErrSelectionCancelled) {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
		}
	} else {
		device, err = audio.FindDevice(actx, cfg.Device)
		if err != nil {
			log.Warnf("device %q: %v, using default", cfg.Device, err)
		}
	}

	capture, err := actx.NewCapture(device, audio.SpeechConfig)
	if err != nil {
		log.Errorf("capture device init error: %v", err)
		actx.Close()
		return nil, "none", "no microphone available", noop
	}

	rcfg := speech.DefaultRecognizerConfig()
	rcfg.Language = cfg.Language
	rec := speech.NewRecognizer(capture, tr, rcfg)
	log.Info("speech via " + rec.Provider() + " on " + capture.DeviceName())

	return rec, rec.Provider(), "", func() {
		rec.Abort()
		capture.Close()
		actx.Close()
	}
}

func serve(cfg *config.Config, addr string) int {
	// Voice transcription on the stub is optional.
	voice, err := transcriber.New(cfg.GroqAPIKey, cfg.OpenAIAPIKey)
	if err == nil {
		voice.SetLanguage(transcriber.Language(cfg.Language))
	}
	srv := stubserver.New(stubserver.Echo, voice)

	ctx, stop := shutdown.Context(context.Background())
	defer stop()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), stubShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			log.Errorf("stub shutdown: %v", err)
		}
	}()

	fmt.Printf("xenora answering stub listening on %s (POST /chat)\n", addr)
	log.Info("stub listening on " + addr)
	if err := srv.Start(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
