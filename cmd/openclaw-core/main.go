package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sungkue/openclaw/internal/config"
	"github.com/sungkue/openclaw/internal/diaglog"
	"github.com/sungkue/openclaw/internal/forward"
	"github.com/sungkue/openclaw/internal/hostcheck"
	"github.com/sungkue/openclaw/internal/ipc"
	"github.com/sungkue/openclaw/internal/pidfile"
	"github.com/sungkue/openclaw/internal/speech"
	"github.com/sungkue/openclaw/internal/speech/wsengine"
	"github.com/sungkue/openclaw/internal/wake"
	"github.com/sungkue/openclaw/pkg/macui"
)

const logPrefix = "[openclaw-core]"

var (
	// Version is set at build time via -ldflags "-X main.Version=..."
	Version = "dev"

	outLog *log.Logger
	errLog *log.Logger

	// Live configuration, swapped on reload.
	cfgMu sync.RWMutex
	cfg   *config.Config

	// Wake bookkeeping for status reporting.
	statMu        sync.Mutex
	wakeCount     int
	lastDetected  string // session id of the first Detected emission
	relistenDelay = 500 * time.Millisecond
)

func main() {
	// --export-diag subcommand: read log, write bundle, exit.
	if len(os.Args) > 1 && os.Args[1] == "--export-diag" {
		logPath := os.Getenv("OPENCLAW_LOG_PATH")
		if logPath == "" {
			logPath = "/tmp/openclaw-debug.log"
		}
		diaglog.Version = Version
		path, n, err := diaglog.Export(logPath, ".")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(os.Stderr, "hint: run with OPENCLAW_DEBUG=true to enable logging")
				os.Exit(1)
			}
			os.Exit(2)
		}
		fmt.Printf("Wrote: %s (%d lines)\n", path, n)
		os.Exit(0)
	}

	// Recover from any panics and log them
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "PANIC in openclaw-core: %v\n", r)
			if errLog != nil {
				errLog.Printf("PANIC: %v", r)
			}
			os.Exit(1)
		}
	}()

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	outLog.Println("===========================================")
	outLog.Println("Starting OpenClaw Core v" + Version + "...")
	outLog.Printf("PID: %d", os.Getpid())
	outLog.Println("===========================================")

	// Check for duplicate instances
	pidPath := pidfile.Path("openclaw-core")
	pf, err := pidfile.Acquire(pidPath)
	if err != nil {
		errLog.Printf("Failed to create PID file: %v", err)
		errLog.Println("Another instance of openclaw-core may already be running.")
		errLog.Printf("If you're sure no other instance is running, remove: %s", pidPath)
		os.Exit(1)
	}
	defer func() {
		if err := pf.Release(); err != nil {
			errLog.Printf("Warning: failed to remove PID file: %v", err)
		}
	}()
	outLog.Printf("[STARTUP] PID file created: %s (PID %d)", pidPath, os.Getpid())

	// Load configuration
	loaded, err := config.Load()
	if err != nil {
		errLog.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	cfgMu.Lock()
	cfg = loaded
	cfgMu.Unlock()
	outLog.Printf("[STARTUP] Loaded config: %d triggers, locale=%s, engine=%s, auto_listen=%v",
		len(loaded.Triggers), loaded.Locale, loaded.Engine.URL, loaded.AutoListen)

	// Structured diagnostic log
	logPath := os.Getenv("OPENCLAW_LOG_PATH")
	if logPath == "" {
		logPath = "/tmp/openclaw-debug.log"
	}
	diagLogger, diagErr := diaglog.New(logPath)
	if diagErr != nil {
		errLog.Printf("[STARTUP] WARNING: could not open diagnostic log at %s: %v (continuing)", logPath, diagErr)
		diagLogger = diaglog.NewNoOp()
	}
	defer func() { _ = diagLogger.Close() }()
	diaglog.Version = Version

	// Transcription engine registry
	registry := speech.NewRegistry()
	ws := wsengine.New(loaded.Engine.URL)
	ws.SetLogger(diagLogger)
	registry.Register(ws.Name(), ws)

	engine, err := registry.Default()
	if err != nil {
		errLog.Printf("No transcription engine available: %v", err)
		os.Exit(1)
	}
	outLog.Printf("[STARTUP] Transcription engine: %s (%s)", engine.Name(), loaded.Engine.URL)

	// Forward dispatcher
	runner := forward.NewSSHRunner()
	dispatcher := forward.NewDispatcher(runner, 2, 16)
	dispatcher.SetLogger(diagLogger)
	defer dispatcher.Close()
	if loaded.Forward.Enabled {
		outLog.Printf("[STARTUP] Forwarding enabled (target=%s)", loaded.Forward.Target)
	} else {
		outLog.Println("[STARTUP] Forwarding disabled")
	}

	// Wake controller
	controller := wake.NewController(wake.Options{
		Engine:    engine,
		Config:    snapshot,
		Forwarder: dispatcher,
		OnWake: func(text string) {
			statMu.Lock()
			wakeCount++
			statMu.Unlock()
			macui.NotifyWakeDetected(text)
		},
		Preflight: func() error {
			cfgMu.RLock()
			hints := cfg.Engine.ProcessHints
			cfgMu.RUnlock()
			return hostcheck.Check(hints)
		},
		Hold: wake.HoldPolicy{
			MaxHold:      time.Duration(loaded.Hold.MaxHoldSeconds) * time.Second,
			SilenceGap:   time.Duration(loaded.Hold.SilenceGapMs) * time.Millisecond,
			PollInterval: time.Duration(loaded.Hold.PollIntervalMs) * time.Millisecond,
		},
		Logger: diagLogger,
	})

	// Write initial status
	if err := writeStatus(controller.Current(), dispatcher, engine.Name()); err != nil {
		errLog.Printf("Failed to write initial status: %v", err)
	}

	// Command file watcher
	go watchCommands(controller, dispatcher, engine.Name())

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if loaded.AutoListen {
		outLog.Println("[STARTUP] Auto-listen enabled, starting first session")
		controller.Start()
	} else {
		outLog.Println("[STARTUP] Auto-listen disabled, waiting for start command")
	}

	outLog.Println("[RUNNING] OpenClaw Core is running")

	for {
		select {
		case st := <-controller.States():
			handleState(st, controller, dispatcher, engine.Name())

		case <-sigChan:
			outLog.Println("===========================================")
			outLog.Printf("[SHUTDOWN] Received shutdown signal at %s", time.Now().Format(time.RFC3339))
			controller.Stop()
			outLog.Println("[SHUTDOWN] Shutting down gracefully")
			return
		}
	}
}

// snapshot builds the per-session view of the current configuration.
func snapshot() wake.Snapshot {
	cfgMu.RLock()
	defer cfgMu.RUnlock()
	return wake.Snapshot{
		Triggers:   cfg.Triggers,
		Locale:     cfg.Locale,
		Microphone: cfg.Microphone,
		Forward: forward.Config{
			Enabled:         cfg.Forward.Enabled,
			Target:          cfg.Forward.Target,
			IdentityPath:    cfg.Forward.IdentityPath,
			CommandTemplate: cfg.Forward.CommandTemplate,
		},
	}
}

// handleState reacts to one lifecycle transition: status file update, failure
// notification, and auto re-listen after a terminal state.
func handleState(st wake.State, controller *wake.Controller, d *forward.Dispatcher, engineName string) {
	outLog.Printf("[STATE] %s session=%s text=%q reason=%q", st.Phase, st.SessionID, st.Text, st.Reason)

	if err := writeStatus(st, d, engineName); err != nil {
		errLog.Printf("Failed to write status: %v", err)
	}

	terminal := false
	switch st.Phase {
	case wake.PhaseDetected:
		statMu.Lock()
		if lastDetected == st.SessionID {
			// Second emission for this session is the post-hold confirmation.
			terminal = true
			lastDetected = ""
		} else {
			lastDetected = st.SessionID
		}
		statMu.Unlock()

	case wake.PhaseFailed:
		statMu.Lock()
		lastDetected = ""
		statMu.Unlock()
		terminal = true
		macui.NotifyFailure(st.Reason)
	}

	if !terminal {
		return
	}

	cfgMu.RLock()
	rearm := cfg.AutoListen
	cfgMu.RUnlock()
	if rearm {
		time.AfterFunc(relistenDelay, controller.Start)
	}
}

// writeStatus updates the status.json file.
func writeStatus(st wake.State, d *forward.Dispatcher, engineName string) error {
	cfgMu.RLock()
	triggers := cfg.Triggers
	target := ""
	if cfg.Forward.Enabled {
		target = cfg.Forward.Target
	}
	cfgMu.RUnlock()

	statMu.Lock()
	wakes := wakeCount
	statMu.Unlock()

	stats := d.Stats()
	status := ipc.StatusSnapshot{
		Phase:          st.Phase.String(),
		Transcript:     st.Text,
		Reason:         st.Reason,
		SessionID:      st.SessionID,
		Triggers:       triggers,
		WakeCount:      wakes,
		ForwardTarget:  target,
		ForwardSent:    stats.Sent,
		ForwardFailed:  stats.Failed,
		ForwardDropped: stats.Dropped,
		EngineName:     engineName,
		Timestamp:      time.Now(),
	}
	return ipc.WriteStatus(&status)
}

// watchCommands monitors cmd.txt for control commands from openclaw-ctl.
func watchCommands(controller *wake.Controller, d *forward.Dispatcher, engineName string) {
	cmdPath := ipc.CommandPath()
	cmdDir := filepath.Dir(cmdPath)
	if err := os.MkdirAll(cmdDir, 0755); err != nil {
		errLog.Printf("Failed to create command directory: %v", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		errLog.Printf("fsnotify not available, falling back to polling: %v", err)
		watchCommandsWithPolling(cmdPath, controller, d, engineName)
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			errLog.Printf("Failed to close watcher: %v", err)
		}
	}()

	if err := watcher.Add(cmdDir); err != nil {
		errLog.Printf("Failed to watch command directory, falling back to polling: %v", err)
		watchCommandsWithPolling(cmdPath, controller, d, engineName)
		return
	}

	outLog.Println("Command watcher started (using fsnotify)")

	// Fallback polling ticker in case fsnotify misses events
	pollTicker := time.NewTicker(1 * time.Second)
	defer pollTicker.Stop()

	lastCheckTime := time.Now()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				outLog.Println("fsnotify watcher closed, switching to polling")
				watchCommandsWithPolling(cmdPath, controller, d, engineName)
				return
			}

			if event.Name == cmdPath && (event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create) {
				// Small delay to ensure write is complete
				time.Sleep(50 * time.Millisecond)

				cmd, err := ipc.ReadCommand()
				if err != nil || cmd == "" {
					continue
				}

				handleCommand(cmd, controller, d, engineName)
				lastCheckTime = time.Now()
			}

		case <-pollTicker.C:
			if fileInfo, err := os.Stat(cmdPath); err == nil {
				if fileInfo.ModTime().After(lastCheckTime) {
					time.Sleep(50 * time.Millisecond)

					cmd, err := ipc.ReadCommand()
					if err == nil && cmd != "" {
						handleCommand(cmd, controller, d, engineName)
						lastCheckTime = time.Now()
					}
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				outLog.Println("fsnotify error channel closed, switching to polling")
				watchCommandsWithPolling(cmdPath, controller, d, engineName)
				return
			}
			errLog.Printf("File watcher error: %v", err)
		}
	}
}

// watchCommandsWithPolling is a pure polling fallback for command monitoring.
func watchCommandsWithPolling(cmdPath string, controller *wake.Controller, d *forward.Dispatcher, engineName string) {
	outLog.Println("Command watcher started (using polling fallback, 1s interval)")

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	lastCheckTime := time.Now()

	for range ticker.C {
		fileInfo, err := os.Stat(cmdPath)
		if err != nil {
			continue // File doesn't exist yet, keep polling
		}

		if fileInfo.ModTime().After(lastCheckTime) {
			time.Sleep(50 * time.Millisecond)

			cmd, err := ipc.ReadCommand()
			if err == nil && cmd != "" {
				handleCommand(cmd, controller, d, engineName)
			}
			lastCheckTime = time.Now()
		}
	}
}

// handleCommand processes control commands.
func handleCommand(cmd ipc.Command, controller *wake.Controller, d *forward.Dispatcher, engineName string) {
	outLog.Printf("Received command: %s", cmd)

	switch cmd {
	case ipc.CmdStart:
		controller.Start()

	case ipc.CmdStop:
		controller.Stop()

	case ipc.CmdTest:
		go func() {
			cfgMu.RLock()
			fc := forward.Config{
				Enabled:         cfg.Forward.Enabled,
				Target:          cfg.Forward.Target,
				IdentityPath:    cfg.Forward.IdentityPath,
				CommandTemplate: cfg.Forward.CommandTemplate,
			}
			cfgMu.RUnlock()

			result := forward.Check(forward.NewSSHRunner(), fc)
			outLog.Printf("Forward self-test: %s (%s)", result.State, result.Message)
			for _, issue := range result.Issues {
				errLog.Printf("  - %s", issue)
			}
			_ = macui.SendNotification("OpenClaw", "Forward self-test", result.Message)
		}()

	case ipc.CmdReload:
		loaded, err := config.Load()
		if err != nil {
			errLog.Printf("Reload failed, keeping previous config: %v", err)
			return
		}
		cfgMu.Lock()
		prevURL := cfg.Engine.URL
		cfg = loaded
		cfgMu.Unlock()
		outLog.Printf("Config reloaded: %d triggers, forwarding=%v", len(loaded.Triggers), loaded.Forward.Enabled)
		if loaded.Engine.URL != prevURL {
			outLog.Println("Engine URL changed; restart the daemon to apply it")
		}
		if err := writeStatus(controller.Current(), d, engineName); err != nil {
			errLog.Printf("Failed to write status after reload: %v", err)
		}

	case ipc.CmdQuit:
		outLog.Println("Quit command received - shutting down")
		controller.Stop()
		if p, err := os.FindProcess(os.Getpid()); err == nil {
			_ = p.Signal(syscall.SIGTERM)
		}

	default:
		errLog.Printf("Unknown command: %s", cmd)
	}
}

// initLogging sets up log files with rotation support
func initLogging() error {
	logDir := "/tmp"

	outLogPath := filepath.Join(logDir, "openclaw-core.out.log")
	errLogPath := filepath.Join(logDir, "openclaw-core.err.log")

	if err := rotateLogIfNeeded(outLogPath, 10*1024*1024); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to rotate out log: %v\n", err)
	}

	if err := rotateLogIfNeeded(errLogPath, 10*1024*1024); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to rotate err log: %v\n", err)
	}

	outFile, err := os.OpenFile(outLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	errFile, err := os.OpenFile(errLogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	outLog = log.New(outFile, logPrefix+" ", log.LstdFlags)
	errLog = log.New(errFile, logPrefix+" ERROR: ", log.LstdFlags)

	return nil
}

// rotateLogIfNeeded rotates a log file if it exceeds maxSize bytes
func rotateLogIfNeeded(logPath string, maxSize int64) error {
	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if info.Size() < maxSize {
		return nil
	}

	oldPath := logPath + ".old"
	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old log: %w", err)
	}

	return os.Rename(logPath, oldPath)
}
