package hook

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.design/x/hotkey"
)

// ErrChordConflict is returned when a chord is already registered by
// another application. Mirrors hotkey_service.go's ErrHotkeyConflict.
var ErrChordConflict = errors.New("hotkey: key combination already registered by another application")

// ErrChordInvalid is returned when a chord string cannot be parsed.
// Mirrors hotkey_service.go's ErrHotkeyInvalid.
var ErrChordInvalid = errors.New("hotkey: invalid key combination")

var modMap = map[string]hotkey.Modifier{
	"ctrl":    hotkey.ModCtrl,
	"control": hotkey.ModCtrl,
	"shift":   hotkey.ModShift,
	"alt":     hotkey.ModOption,
	"option":  hotkey.ModOption,
	"cmd":     hotkey.ModCmd,
	"command": hotkey.ModCmd,
}

var keyMap = map[string]hotkey.Key{
	"space": hotkey.KeySpace, "tab": hotkey.KeyTab, "return": hotkey.KeyReturn, "enter": hotkey.KeyReturn,
	"a": hotkey.KeyA, "b": hotkey.KeyB, "c": hotkey.KeyC, "d": hotkey.KeyD,
	"e": hotkey.KeyE, "f": hotkey.KeyF, "g": hotkey.KeyG, "h": hotkey.KeyH,
	"i": hotkey.KeyI, "j": hotkey.KeyJ, "k": hotkey.KeyK, "l": hotkey.KeyL,
	"m": hotkey.KeyM, "n": hotkey.KeyN, "o": hotkey.KeyO, "p": hotkey.KeyP,
	"q": hotkey.KeyQ, "r": hotkey.KeyR, "s": hotkey.KeyS, "t": hotkey.KeyT,
	"u": hotkey.KeyU, "v": hotkey.KeyV, "w": hotkey.KeyW, "x": hotkey.KeyX,
	"y": hotkey.KeyY, "z": hotkey.KeyZ,
	"0": hotkey.Key0, "1": hotkey.Key1, "2": hotkey.Key2, "3": hotkey.Key3,
	"4": hotkey.Key4, "5": hotkey.Key5, "6": hotkey.Key6, "7": hotkey.Key7,
	"8": hotkey.Key8, "9": hotkey.Key9,
	"f1": hotkey.KeyF1, "f2": hotkey.KeyF2, "f3": hotkey.KeyF3, "f4": hotkey.KeyF4,
	"f5": hotkey.KeyF5, "f6": hotkey.KeyF6, "f7": hotkey.KeyF7, "f8": hotkey.KeyF8,
	"f9": hotkey.KeyF9, "f10": hotkey.KeyF10, "f11": hotkey.KeyF11, "f12": hotkey.KeyF12,
}

// parseChord parses a combo string like "ctrl+f11" into modifiers + key.
// Grounded on hotkey_service.go's parseHotkey.
func parseChord(chord Chord) ([]hotkey.Modifier, hotkey.Key, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(string(chord))), "+")
	if len(parts) < 2 {
		return nil, 0, errors.Wrapf(ErrChordInvalid, "%q (need at least one modifier)", chord)
	}
	keyPart := parts[len(parts)-1]
	key, ok := keyMap[keyPart]
	if !ok {
		return nil, 0, errors.Wrapf(ErrChordInvalid, "unknown key %q", keyPart)
	}

	var mods []hotkey.Modifier
	seen := map[string]bool{}
	for _, m := range parts[:len(parts)-1] {
		if seen[m] {
			continue
		}
		seen[m] = true
		mod, ok := modMap[m]
		if !ok {
			return nil, 0, errors.Wrapf(ErrChordInvalid, "unknown modifier %q", m)
		}
		mods = append(mods, mod)
	}
	if len(mods) == 0 {
		return nil, 0, errors.Wrapf(ErrChordInvalid, "no valid modifier in %q", chord)
	}
	return mods, key, nil
}

// registration is one live golang.design/x/hotkey registration and the
// goroutine relaying its Keydown channel to the caller's callback.
type registration struct {
	hk     *hotkey.Hotkey
	cancel func()
}

// HotkeyDispatcher registers the reserved global chords (spec §4.6)
// through golang.design/x/hotkey. It implements the subset of hook.Backend
// needed for hot-key dispatch (AddHotkey/RemoveHotkey); raw keystroke
// capture (Start/Send/Write/IsToggled) is a separate, platform-specific
// concern this repository does not ship — see SPEC_FULL.md.
type HotkeyDispatcher struct {
	mu    sync.Mutex
	regs  map[Chord]*registration
	newHK func(mods []hotkey.Modifier, key hotkey.Key) *hotkey.Hotkey
}

// NewHotkeyDispatcher returns a dispatcher backed by the real OS hotkey API.
func NewHotkeyDispatcher() *HotkeyDispatcher {
	return &HotkeyDispatcher{
		regs:  make(map[Chord]*registration),
		newHK: hotkey.New,
	}
}

// AddHotkey registers chord, invoking callback on its own goroutine each
// time the chord fires until RemoveHotkey is called.
func (d *HotkeyDispatcher) AddHotkey(chord Chord, callback func()) error {
	mods, key, err := parseChord(chord)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.regs[chord]; exists {
		return nil
	}

	hk := d.newHK(mods, key)
	if err := hk.Register(); err != nil {
		_ = hk.Unregister()
		return errors.Wrapf(ErrChordConflict, "%q", chord)
	}

	stop := make(chan struct{})
	go func() {
		keydown := hk.Keydown()
		for {
			select {
			case <-stop:
				return
			case _, ok := <-keydown:
				if !ok {
					return
				}
				if callback != nil {
					callback()
				}
			}
		}
	}()

	d.regs[chord] = &registration{hk: hk, cancel: func() { close(stop) }}
	return nil
}

// RemoveHotkey unregisters chord. Removing an unregistered chord is a no-op.
func (d *HotkeyDispatcher) RemoveHotkey(chord Chord) error {
	d.mu.Lock()
	reg, exists := d.regs[chord]
	if exists {
		delete(d.regs, chord)
	}
	d.mu.Unlock()

	if !exists {
		return nil
	}
	reg.cancel()
	return reg.hk.Unregister()
}

// Shutdown unregisters every live chord. Best-effort, as spec §5 requires
// of process-exit hot-key teardown.
func (d *HotkeyDispatcher) Shutdown() {
	d.mu.Lock()
	chords := make([]Chord, 0, len(d.regs))
	for c := range d.regs {
		chords = append(chords, c)
	}
	d.mu.Unlock()
	for _, c := range chords {
		_ = d.RemoveHotkey(c)
	}
}

// PartialBackend adapts a HotkeyDispatcher into a full Backend so it can
// be handed to engine.New directly: AddHotkey/RemoveHotkey go through the
// real golang.design/x/hotkey registration, while raw keystroke capture
// and synthesis, the platform-specific concern spec §1 keeps out of this
// core, are unavailable: Start reports ErrBackendUnavailable, Send and
// Write return plain errors, and IsToggled always reports false.
// This lets the three reserved chords (§4.6) work out of the box in
// cmd/openkeyflow while expansion itself stays degraded until a real
// platform capture backend is compiled in.
type PartialBackend struct {
	*HotkeyDispatcher
}

// NewPartialBackend returns a Backend whose hot-key registration is real
// and whose event capture/synthesis is unavailable.
func NewPartialBackend() *PartialBackend {
	return &PartialBackend{HotkeyDispatcher: NewHotkeyDispatcher()}
}

func (b *PartialBackend) Start(handler Handler) error {
	return NewBackendUnavailable("no platform key-capture backend compiled in", nil)
}

func (b *PartialBackend) Send(chord Chord) error {
	return errors.New("hook: key synthesis unavailable without a platform backend")
}

func (b *PartialBackend) Write(text string) error {
	return errors.New("hook: key synthesis unavailable without a platform backend")
}

func (b *PartialBackend) IsToggled(key string) bool { return false }

// FormatChord converts a combo string to a user-friendly display string,
// e.g. "ctrl+f11" -> "⌃F11". Grounded on hotkey_service.go's FormatHotkey.
func FormatChord(chord Chord) string {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(string(chord))), "+")
	if len(parts) < 2 {
		return string(chord)
	}
	modSymbols := map[string]string{
		"ctrl": "⌃", "control": "⌃",
		"alt": "⌥", "option": "⌥",
		"shift": "⇧",
		"cmd":   "⌘", "command": "⌘",
	}
	var out strings.Builder
	for _, p := range parts[:len(parts)-1] {
		if s, ok := modSymbols[p]; ok {
			out.WriteString(s)
		}
	}
	key := parts[len(parts)-1]
	out.WriteString(strings.ToUpper(key))
	return out.String()
}
