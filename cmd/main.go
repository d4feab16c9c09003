// padkey - drive the desktop with a game controller
// Sticks and buttons become mouse and keyboard input, or navigate the
// on-screen keyboard overlay while it is open.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"padkey/internal/config"
	"padkey/internal/engine"
	"padkey/internal/gamepad/sdlreader"
	"padkey/internal/input"
	"padkey/internal/osutils"
	"padkey/internal/overlay"
	"padkey/internal/state"
	"padkey/internal/tray"

	"github.com/spf13/pflag"
)

var version = "0.1.0"

func main() {
	flags := pflag.NewFlagSet("padkey", pflag.ExitOnError)
	configPath := flags.String("config", "", "Path to the configuration file")
	flags.Bool("dry-run", false, "Log synthetic input instead of injecting it")
	flags.String("overlay-addr", "", "Listen address for the overlay websocket (default 127.0.0.1:17321)")
	listCtl := flags.Bool("list-controllers", false, "List connected controllers and exit")
	writeCfg := flags.Bool("write-config", false, "Write the effective configuration to the config file and exit")
	noTray := flags.Bool("no-tray", false, "Run without the system tray icon")
	showVer := flags.Bool("version", false, "Show version")
	flags.Parse(os.Args[1:])

	if *showVer {
		fmt.Printf("padkey version %s\n", version)
		return
	}

	// Initialize config
	cfgMgr, err := config.NewManager(*configPath)
	if err != nil {
		log.Fatalf("Failed to initialize config: %v", err)
	}
	if err := cfgMgr.BindFlags(flags); err != nil {
		log.Fatalf("Failed to bind flags: %v", err)
	}
	if err := cfgMgr.Load(); err != nil {
		log.Printf("Warning: failed to load config: %v", err)
	}

	if *writeCfg {
		if err := cfgMgr.Save(); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Configuration written to %s\n", cfgMgr.Path())
		return
	}

	if logFile := cfgMgr.Get().Log.File; logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Warning: failed to open log file %s: %v", logFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}

	if *listCtl {
		listControllers()
		return
	}

	runService(cfgMgr, !*noTray)
}

func listControllers() {
	// SDL must stay on one thread from Open to Close
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	reader := sdlreader.NewReader()
	if err := reader.Open(); err != nil {
		log.Fatalf("Failed to open controllers: %v", err)
	}
	defer reader.Close()

	fmt.Println("Connected Controllers:")
	fmt.Println("----------------------")
	infos := reader.Info()
	if len(infos) == 0 {
		fmt.Println("(none)")
	}
	for _, info := range infos {
		fmt.Printf("ID: %d\n", info.ID)
		fmt.Printf("  Name: %s\n", info.Name)
		fmt.Printf("  USB ID: %04x:%04x\n", info.Vendor, info.Product)
		fmt.Printf("  Mapping: %s\n", info.Mapping)
		fmt.Println()
	}
}

// openSink creates the platform injector, or the logging sink for --dry-run.
// ok is false when no injection is possible.
func openSink(cfg *config.Config) (sink input.Sink, ok bool) {
	if cfg.DryRun {
		return input.NewLogSink(), true
	}

	opts := input.DefaultOptions()
	if cfg.Input.UinputPath != "" {
		opts.UinputPath = cfg.Input.UinputPath
	}
	inj, err := input.NewInjector(opts)
	if err != nil {
		log.Printf("Input: injection backend unavailable: %v", err)
		return input.Disabled{}, false
	}
	return inj, true
}

func runService(cfgMgr *config.Manager, withTray bool) {
	log.Printf("padkey %s starting...", version)
	cfg := cfgMgr.Get()

	if runtime.GOOS == "windows" && !osutils.IsAdmin() {
		log.Println("Note: not running as Administrator; input cannot reach elevated windows")
	}

	opts, err := engine.OptionsFromConfig(cfg)
	if err != nil {
		log.Printf("Warning: %v; using default tuning", err)
		opts = engine.DefaultOptions()
	}

	sink, injecting := openSink(cfg)
	defer sink.Close()

	eng, err := engine.New(state.New(), sdlreader.NewReader(), sink, opts)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}

	hub := overlay.NewHub(eng)
	go hub.Run()

	var t *tray.Tray
	if withTray {
		t = tray.New(eng, func() { t.Stop() })
		eng.SetNotifier(overlay.Fanout{hub, t})
	} else {
		eng.SetNotifier(hub)
	}

	srv := overlay.NewServer(hub, cfg.Overlay.Token)
	go func() {
		if err := srv.Start(cfg.Overlay.Addr); err != nil {
			log.Printf("Overlay server error: %v", err)
		}
	}()

	// Apply tuning changes without a restart
	cfgMgr.RegisterChangeCallback(func(c *config.Config) {
		o, err := engine.OptionsFromConfig(c)
		if err != nil {
			log.Printf("Config: keeping previous tuning: %v", err)
			return
		}
		if err := eng.SetOptions(o); err != nil {
			log.Printf("Config: keeping previous tuning: %v", err)
			return
		}
		log.Println("Config: tuning applied")
	})
	cfgMgr.Watch()

	ctx, cancel := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	if injecting {
		go func() {
			defer close(loopDone)
			eng.Run(ctx)
		}()
	} else {
		eng.Disable()
		close(loopDone)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if t != nil {
		go func() {
			<-sigCh
			log.Println("Shutting down...")
			t.Stop()
		}()
		t.Run() // blocks until Quit
	} else {
		log.Println("Press Ctrl+C to exit")
		<-sigCh
		log.Println("Shutting down...")
	}

	cancel()
	<-loopDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Overlay server shutdown error: %v", err)
	}

	log.Println("padkey stopped")
}
