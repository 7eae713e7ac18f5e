// Package engine implements the Trigger Engine (spec §4.4): the
// platform-agnostic state machine that consumes raw key events, matches
// a typed-character buffer against the active trigger set, and drives
// emission without re-entering itself on its own synthesized events.
package engine

import (
	"log"
	"sync"
	"time"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
)

// Engine is the Trigger Engine. The zero value is not usable; construct
// with New.
type Engine struct {
	// mu guards every field below except those marked atomic-safe by
	// their own synchronization. It is held only around pure state
	// reads/writes — emission happens outside it (spec §4.4 "why this
	// shape").
	mu sync.Mutex

	backend    hook.Backend
	backendErr error // set when construction couldn't get a working backend
	clipboard  hook.Clipboard
	logger     *log.Logger

	sorted []triggerEntry
	maxLen int
	buffer string

	enabled     bool
	suppress    bool
	shiftActive bool
	capsLock    bool
	lastFire    time.Time
	firedCount  int

	cooldown   time.Duration
	pasteDelay time.Duration

	onFireStart func(trigger, output string)
	onFireEnd   func(trigger, output string)

	startOnce sync.Once
	started   bool
}

// New constructs an Engine. backend is nil when the caller could not
// obtain any hook.Backend at all (e.g. the OS-specific package this
// repository does not ship is absent); backendErr records why, for
// HooksError(), and is surfaced even when backend is non-nil but only
// partially functional (e.g. hot-key registration works but raw
// keystroke capture does not — spec §4.1's BackendUnavailable taxonomy
// is per-capability, not all-or-nothing). When backend is nil, Start is
// a no-op and no emission ever occurs, per spec §4.1/§7.
func New(backend hook.Backend, backendErr error, clipboard hook.Clipboard, triggers map[string]string, cooldown, pasteDelay time.Duration, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{
		backend:    backend,
		backendErr: backendErr,
		clipboard:  clipboard,
		logger:     logger,
		enabled:    true,
		cooldown:   clampNonNegative(cooldown),
		pasteDelay: clampNonNegative(pasteDelay),
	}
	if backend != nil {
		e.capsLock = backend.IsToggled("caps lock")
	}
	e.UpdateTriggers(triggers)
	return e
}

func clampNonNegative(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}

// HooksAvailable reports whether a hook.Backend is wired in at all; a
// backend that is only partially functional still counts (see HooksError).
func (e *Engine) HooksAvailable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.backend != nil
}

// HooksError returns the backendErr passed to New, or "" if none was
// given. It can be non-empty while HooksAvailable is true, when the
// backend is only partially functional.
func (e *Engine) HooksError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.backendErr == nil {
		return ""
	}
	return e.backendErr.Error()
}

// SetFireObservers installs cheap, non-blocking callbacks invoked around
// emission — used by a UI to drive an activity indicator (spec §6).
func (e *Engine) SetFireObservers(onStart, onEnd func(trigger, output string)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onFireStart = onStart
	e.onFireEnd = onEnd
}

// Start begins backend event delivery on the backend's own goroutine.
// Idempotent; a no-op if hooks are unavailable.
func (e *Engine) Start() error {
	var err error
	e.startOnce.Do(func() {
		e.mu.Lock()
		backend := e.backend
		already := e.started
		e.started = true
		e.mu.Unlock()
		if already || backend == nil {
			return
		}
		err = backend.Start(e.HandleEvent)
	})
	return err
}

// UpdateTriggers replaces the active trigger set atomically, recomputes
// the sorted trigger list and max length, and truncates buffer to the
// new max length (spec §4.4).
func (e *Engine) UpdateTriggers(triggers map[string]string) {
	sorted, maxLen := buildSortedTriggers(triggers)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sorted = sorted
	e.maxLen = maxLen
	e.buffer = truncateToLen(e.buffer, e.maxLen)
}

// SetCooldown clamps and stores the minimum time between two fires.
func (e *Engine) SetCooldown(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cooldown = clampNonNegative(d)
}

// SetPasteDelay clamps and stores the emission inter-step sleep.
func (e *Engine) SetPasteDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pasteDelay = clampNonNegative(d)
}

// SetEnabled sets the enabled flag; disabling clears the buffer.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
	if !enabled {
		e.buffer = ""
	}
}

// ToggleEnabled flips the enabled flag and returns the new value.
func (e *Engine) ToggleEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = !e.enabled
	if !e.enabled {
		e.buffer = ""
	}
	return e.enabled
}

// Enabled reports the current enabled state.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Buffer returns the current typed-character buffer (test/observability
// use only — not part of any documented host contract).
func (e *Engine) Buffer() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

// AddHotkey forwards to the backend, if available.
func (e *Engine) AddHotkey(chord hook.Chord, callback func()) error {
	e.mu.Lock()
	backend := e.backend
	e.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.AddHotkey(chord, callback)
}

// RemoveHotkey forwards to the backend, if available.
func (e *Engine) RemoveHotkey(chord hook.Chord) error {
	e.mu.Lock()
	backend := e.backend
	e.mu.Unlock()
	if backend == nil {
		return nil
	}
	return backend.RemoveHotkey(chord)
}

// fireIntent is what the critical section hands off to emission once it
// decides a trigger fired — the (trigger, output) pair spec §4.4 step 10
// says must stay stable for "the remainder of the in-flight match".
type fireIntent struct {
	trigger string
	output  string
}

// HandleEvent is the Handler the backend drives (spec §4.4 "the heart").
// State reads/writes happen under e.mu; emission happens after it is
// released, so a backend callback re-entering HandleEvent from the
// emitted keystrokes never deadlocks.
func (e *Engine) HandleEvent(evt hook.Event) {
	if evt.Type != hook.Down && evt.Type != hook.Up {
		return
	}
	name := evt.Name

	if hook.ShiftKeyNames[name] {
		e.mu.Lock()
		e.shiftActive = evt.Type == hook.Down
		e.mu.Unlock()
		return
	}
	if name == "caps lock" && evt.Type == hook.Down {
		e.mu.Lock()
		e.capsLock = !e.capsLock
		e.mu.Unlock()
		return
	}
	if evt.Type != hook.Down {
		return
	}

	var intent *fireIntent
	func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		if e.suppress || !e.enabled || len(e.sorted) == 0 {
			if name == "backspace" {
				e.popBuffer()
			}
			return
		}
		if name == "backspace" {
			e.popBuffer()
			return
		}

		r, result := hook.Translate(name, e.shiftActive, e.capsLock)
		switch result {
		case hook.None:
			return
		case hook.Whitespace:
			e.buffer = ""
			return
		}
		e.buffer = truncateToLen(e.buffer+string(r), e.maxLen)

		match, ok := findMatch(e.sorted, e.buffer)
		if !ok {
			return
		}

		now := time.Now()
		if now.Sub(e.lastFire) < e.cooldown {
			return
		}
		e.lastFire = now
		e.suppress = true
		intent = &fireIntent{trigger: match.trigger, output: match.output}
	}()

	if intent == nil {
		return
	}
	e.fire(intent.trigger, intent.output)
}

// popBuffer drops the last character of buffer. Caller must hold e.mu.
func (e *Engine) popBuffer() {
	if e.buffer == "" {
		return
	}
	e.buffer = e.buffer[:len(e.buffer)-1]
}
