package engine

import (
	"sync"

	"github.com/google/uuid"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
)

// HotkeyRole names one of the three reserved chords (spec §4.6).
type HotkeyRole int

const (
	RoleToggleEnabled HotkeyRole = iota
	RoleProfileSwitch
	RoleQuickAdd
)

// HotkeyConfig is the subset of the persisted config that determines the
// three reserved chords (spec §3): a shared modifier plus one key per role.
type HotkeyConfig struct {
	Modifier         string
	QuickAddKey      string
	ProfileSwitchKey string
	ToggleKey        string
}

func (c HotkeyConfig) chord(key string) hook.Chord {
	return hook.Chord(c.Modifier + "+" + key)
}

// QuickAddEvent is delivered to the host's quick-add callback, tagged with
// a correlation id so a UI can match the firing hot-key press to whatever
// asynchronous capture dialog it opens in response (spec DOMAIN STACK:
// quick-add events are uuid-tagged).
type QuickAddEvent struct {
	ID string
}

// HotkeyDispatch owns registration of the three reserved global chords
// against the engine's backend and forwards each to a host callback,
// re-registering whenever the config changes (spec §4.6). The engine
// supplies RoleToggleEnabled's callback itself; ProfileSwitch and
// QuickAdd are forwarded to host-supplied functions since only the host
// knows how to cycle profiles or open a capture UI.
type HotkeyDispatch struct {
	mu     sync.Mutex
	engine *Engine
	cfg    HotkeyConfig
	active map[HotkeyRole]hook.Chord

	onProfileSwitch func()
	onQuickAdd      func(QuickAddEvent)
}

// NewHotkeyDispatch constructs a dispatcher bound to engine. Callbacks may
// be nil; Apply still registers that chord, and pressing it does nothing
// until SetCallbacks supplies a non-nil function.
func NewHotkeyDispatch(e *Engine, onProfileSwitch func(), onQuickAdd func(QuickAddEvent)) *HotkeyDispatch {
	return &HotkeyDispatch{
		engine:          e,
		active:          make(map[HotkeyRole]hook.Chord),
		onProfileSwitch: onProfileSwitch,
		onQuickAdd:      onQuickAdd,
	}
}

// SetCallbacks replaces the host-supplied profile-switch / quick-add
// callbacks. Safe to call at any time; takes effect on the next press of
// the corresponding chord, without a new Apply.
func (d *HotkeyDispatch) SetCallbacks(onProfileSwitch func(), onQuickAdd func(QuickAddEvent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onProfileSwitch = onProfileSwitch
	d.onQuickAdd = onQuickAdd
}

// Apply unregisters any chords previously registered by this dispatcher
// and registers the three reserved chords for cfg — called on engine
// start and whenever the host changes hotkey_modifier or one of the three
// key options while running (spec §4.6).
func (d *HotkeyDispatch) Apply(cfg HotkeyConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.unregisterLocked()
	d.cfg = cfg

	toggle := cfg.chord(cfg.ToggleKey)
	if err := d.engine.AddHotkey(toggle, func() { d.engine.ToggleEnabled() }); err != nil {
		return err
	}
	d.active[RoleToggleEnabled] = toggle

	profileSwitch := cfg.chord(cfg.ProfileSwitchKey)
	if err := d.engine.AddHotkey(profileSwitch, d.fireProfileSwitch); err != nil {
		d.unregisterLocked()
		return err
	}
	d.active[RoleProfileSwitch] = profileSwitch

	quickAdd := cfg.chord(cfg.QuickAddKey)
	if err := d.engine.AddHotkey(quickAdd, d.fireQuickAdd); err != nil {
		d.unregisterLocked()
		return err
	}
	d.active[RoleQuickAdd] = quickAdd

	return nil
}

// fireProfileSwitch and fireQuickAdd run on whatever thread the backend
// invokes hot-key callbacks on (spec §4.6: "an unspecified thread"); they
// only forward to the host-supplied callback, which is responsible for
// marshaling onto whatever thread context it needs.
func (d *HotkeyDispatch) fireProfileSwitch() {
	d.mu.Lock()
	cb := d.onProfileSwitch
	d.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (d *HotkeyDispatch) fireQuickAdd() {
	d.mu.Lock()
	cb := d.onQuickAdd
	d.mu.Unlock()
	if cb != nil {
		cb(QuickAddEvent{ID: uuid.New().String()})
	}
}

// Shutdown unregisters every chord this dispatcher holds. Best-effort:
// errors from individual RemoveHotkey calls are ignored, matching spec
// §5's "unregister hot-keys (best-effort)" on process exit.
func (d *HotkeyDispatch) Shutdown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unregisterLocked()
}

func (d *HotkeyDispatch) unregisterLocked() {
	for role, chord := range d.active {
		_ = d.engine.RemoveHotkey(chord)
		delete(d.active, role)
	}
}
