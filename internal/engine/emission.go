package engine

import (
	"runtime"
	"time"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
)

// fire runs the emission protocol (spec §4.5) for (trigger, output)
// outside the critical section, then reacquires it to clear suppress,
// reset the buffer, and bump the fired counter unless emission aborted
// (spec §4.4 step 11).
func (e *Engine) fire(trigger, output string) {
	e.mu.Lock()
	onStart, onEnd := e.onFireStart, e.onFireEnd
	backend, clipboard, pasteDelay := e.backend, e.clipboard, e.pasteDelay
	logger := e.logger
	e.mu.Unlock()

	if onStart != nil {
		onStart(trigger, output)
	}

	// completed tracks whether emission ran to completion — a terminal
	// failure (backend gone mid-backspace) aborts the rest of the fire
	// rather than still typing the expansion (spec §7's failure taxonomy).
	completed := false
	if backend != nil {
		if backspace(backend, len(trigger), pasteDelay, logger) {
			safeWrite(backend, clipboard, output, pasteDelay, logger)
			completed = true
		}
	}

	if onEnd != nil {
		onEnd(trigger, output)
	}

	e.mu.Lock()
	e.buffer = ""
	if completed {
		e.firedCount++
	}
	e.suppress = false
	e.mu.Unlock()
}

// backspace synthesizes n backspace chords, sleeping pasteDelay between
// each — spec §4.5 step 1. Returns false on a terminal synthesis
// failure (backend gone), which aborts the rest of the fire.
func backspace(backend hook.Backend, n int, pasteDelay time.Duration, logger logFn) bool {
	for i := 0; i < n; i++ {
		if err := backend.Send("backspace"); err != nil {
			if logger != nil {
				logger.Printf("emission: backspace synthesis failed, aborting fire: %v", err)
			}
			return false
		}
		if pasteDelay > 0 {
			time.Sleep(pasteDelay)
		}
	}
	return true
}

// safeWrite inserts output via the clipboard-paste path if feasible,
// falling back to character-by-character synthesis on any failure —
// spec §4.5 step 2/3, grounded on the original's safe_write /
// output_service.go's paste-then-clipboard-fallback shape.
func safeWrite(backend hook.Backend, clipboard hook.Clipboard, output string, pasteDelay time.Duration, logger logFn) {
	if clipboard == nil {
		if err := backend.Write(output); err != nil && logger != nil {
			logger.Printf("emission: direct write failed: %v", err)
		}
		return
	}

	previous, err := clipboard.Read()
	if err != nil {
		logWarn(logger, "clipboard read failed; falling back to direct typing", err)
		typeDirect(backend, output, logger)
		return
	}

	if err := pasteViaClipboard(backend, clipboard, output, pasteDelay); err != nil {
		logWarn(logger, "clipboard paste failed; falling back to direct typing", err)
		typeDirect(backend, output, logger)
	}

	if err := clipboard.Write(previous); err != nil {
		logWarn(logger, "failed to restore clipboard", err)
	}
}

func pasteViaClipboard(backend hook.Backend, clipboard hook.Clipboard, output string, pasteDelay time.Duration) error {
	if err := clipboard.Write(output); err != nil {
		return newTransientEmission("clipboard write failed", err)
	}
	sleep(pasteDelay)
	got, err := clipboard.Read()
	if err != nil {
		return newTransientEmission("clipboard verify read failed", err)
	}
	if got != output {
		return newTransientEmission("clipboard content mismatch", nil)
	}
	if err := backend.Send(pasteChord()); err != nil {
		return newTransientEmission("paste chord synthesis failed", err)
	}
	sleep(pasteDelay)
	return nil
}

func typeDirect(backend hook.Backend, output string, logger logFn) {
	if err := backend.Write(output); err != nil && logger != nil {
		logger.Printf("emission: direct write also failed: %v", err)
	}
}

func pasteChord() hook.Chord {
	if runtime.GOOS == "darwin" {
		return "cmd+v"
	}
	return "ctrl+v"
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// logFn is the minimal logging capability emission needs — satisfied by
// *log.Logger, kept narrow so tests can swap in a no-op.
type logFn interface {
	Printf(format string, v ...interface{})
}

func logWarn(logger logFn, msg string, err error) {
	if logger == nil {
		return
	}
	logger.Printf("emission: %s: %v", msg, err)
}
