// Command openkeyflow runs the OpenKeyFlow text-expansion daemon: it
// loads the profile store and configuration, wires a hook.Backend (an
// OS-specific package this repository does not ship, per spec §1's
// scope) into a Trigger Engine, registers the three reserved hot-key
// chords, and blocks until signalled to exit.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/engine"
	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
	"github.com/esotericlabs-connor/OpenKeyFlow/internal/profiles"
)

// initLogging opens <dataDir>/openkeyflow.log and mirrors everything
// written through the standard logger to both it and stdout, the same
// shape as the teacher's main.go:initLogging.
func initLogging(dataDir string) (*log.Logger, *os.File) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Printf("logging: failed to create data dir: %v", err)
		return log.Default(), nil
	}
	logPath := filepath.Join(dataDir, "openkeyflow.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logging: failed to open log file: %v", err)
		return log.Default(), nil
	}
	logger := log.New(io.MultiWriter(os.Stdout, f), "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logger.Println("=== openkeyflow started ===")
	return logger, f
}

// newHookBackend is the integration point an OS-specific package fills
// in. This repository ships only the Backend contract (spec §4.1) and a
// hook.PartialBackend whose AddHotkey/RemoveHotkey are real
// (golang.design/x/hotkey); raw global keystroke capture/synthesis is a
// platform concern outside this core's scope (§1), so Start reports
// ErrBackendUnavailable and Send/Write return errors until an
// OS-specific package supplies a full Backend here. The three reserved chords still work; expansion
// does not until that package is wired in.
func newHookBackend() (hook.Backend, error) {
	backend := hook.NewPartialBackend()
	return backend, hook.NewBackendUnavailable("no platform key-capture backend compiled in; hot-keys still function", nil)
}

func main() {
	var (
		passphrase = flag.String("passphrase", "", "passphrase for an encrypted profiles file")
		profile    = flag.String("profile", "", "override the active profile on startup")
		dataDir    = flag.String("data-dir", defaultDataDir(), "directory for profiles.json, hotkeys.json legacy import, and the log file")
		configDir  = flag.String("config-dir", defaultConfigDir(), "directory for config.json")
		legacyDir  = flag.String("legacy-dir", defaultLegacyDir(), "pre-migration colocated directory to import from, if present")
	)
	flag.Parse()

	logger, logFile := initLogging(*dataDir)
	if logFile != nil {
		defer logFile.Close()
	}

	if err := profiles.MigrateLegacyDir(*legacyDir, *dataDir, *configDir); err != nil {
		logger.Printf("migrate: %v", err)
	}

	configStore := profiles.NewConfigStore(*configDir)
	cfg := configStore.Load()

	profileStore := profiles.NewStore(*dataDir)
	current, profileSet, err := profileStore.Load(*passphrase)
	if err != nil {
		if profiles.IsEncryptionError(err) {
			fmt.Fprintln(os.Stderr, "openkeyflow: profiles file is encrypted; re-run with -passphrase")
			os.Exit(1)
		}
		logger.Fatalf("load profiles: %v", err)
	}
	if *profile != "" {
		if _, ok := profileSet[*profile]; ok {
			current = *profile
		} else {
			logger.Printf("startup: profile %q not found, keeping %q", *profile, current)
		}
	}

	backend, backendErr := newHookBackend()
	if backendErr != nil {
		logger.Printf("hook backend unavailable: %v (running with hot-keys only)", backendErr)
	}

	eng := engine.New(
		backend,
		backendErr,
		hook.NewOSClipboard(),
		profileSet[current],
		time.Duration(cfg.Cooldown*float64(time.Second)),
		time.Duration(cfg.PasteDelay*float64(time.Second)),
		logger,
	)
	eng.SetFireObservers(
		func(trigger, output string) { logger.Printf("fire: %q -> %q", trigger, output) },
		nil,
	)

	dispatcher := engine.NewHotkeyDispatch(eng,
		func() {
			current = cycleProfile(profileSet, current, logger)
			eng.UpdateTriggers(profileSet[current])
		},
		func(evt engine.QuickAddEvent) { logger.Printf("quick-add requested: %s", evt.ID) },
	)
	hkCfg := engine.HotkeyConfig{
		Modifier:         cfg.HotkeyModifier,
		QuickAddKey:      cfg.QuickAddKey,
		ProfileSwitchKey: cfg.ProfileSwitchKey,
		ToggleKey:        cfg.ToggleHotkeyKey,
	}
	if err := dispatcher.Apply(hkCfg); err != nil {
		logger.Printf("hotkeys: %v", err)
	}

	watcher, err := profiles.NewWatcher(filepath.Join(*dataDir, "profiles.json"), logger, func() {
		newCurrent, newSet, err := profileStore.Load(*passphrase)
		if err != nil {
			logger.Printf("watch: reload failed: %v", err)
			return
		}
		current, profileSet = newCurrent, newSet
		eng.UpdateTriggers(profileSet[current])
		logger.Printf("watch: reloaded profiles, active=%q", current)
	})
	if err != nil {
		logger.Printf("profiles: file watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	if err := eng.Start(); err != nil {
		if hook.IsBackendUnavailable(err) {
			logger.Printf("engine start: %v (hot-keys remain active; expansion disabled)", err)
		} else {
			logger.Fatalf("engine start: %v", err)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	logger.Println("shutting down")
	dispatcher.Shutdown()
}

// cycleProfile returns the lexicographically-next profile name after
// current (wrapping around); the RoleProfileSwitch callback in main then
// points the engine at that profile's trigger set (spec §4.6). Triggers already captured by an
// in-flight fire are unaffected (spec §9's open-question resolution).
func cycleProfile(profileSet map[string]map[string]string, current string, logger *log.Logger) string {
	names := make([]string, 0, len(profileSet))
	for name := range profileSet {
		names = append(names, name)
	}
	if len(names) <= 1 {
		return current
	}
	sort.Strings(names)
	for i, name := range names {
		if name == current {
			next := names[(i+1)%len(names)]
			logger.Printf("profile switch: %q -> %q", current, next)
			return next
		}
	}
	return current
}

func defaultDataDir() string {
	if d, err := os.UserHomeDir(); err == nil {
		return filepath.Join(d, ".openkeyflow")
	}
	return ".openkeyflow"
}

func defaultConfigDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "openkeyflow")
	}
	return defaultDataDir()
}

func defaultLegacyDir() string {
	if d, err := os.UserHomeDir(); err == nil {
		return filepath.Join(d, ".openkeyflow-legacy")
	}
	return ""
}
