package engine

import (
	"testing"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
)

func TestHotkeyDispatchAppliesThreeReservedChords(t *testing.T) {
	backend := hook.NewMockBackend()
	e := New(backend, nil, hook.NewMockClipboard(), nil, 0, 0, nil)

	var switched, added int
	var lastQuickAdd QuickAddEvent
	d := NewHotkeyDispatch(e,
		func() { switched++ },
		func(evt QuickAddEvent) { added++; lastQuickAdd = evt },
	)

	cfg := HotkeyConfig{Modifier: "ctrl", QuickAddKey: "f10", ProfileSwitchKey: "f11", ToggleKey: "f12"}
	if err := d.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !backend.FireHotkey("ctrl+f12") {
		t.Fatal("toggle chord not registered")
	}
	if e.Enabled() {
		t.Fatal("Enabled() = true after toggle chord fired, want false")
	}

	if !backend.FireHotkey("ctrl+f11") {
		t.Fatal("profile-switch chord not registered")
	}
	if switched != 1 {
		t.Fatalf("switched = %d, want 1", switched)
	}

	if !backend.FireHotkey("ctrl+f10") {
		t.Fatal("quick-add chord not registered")
	}
	if added != 1 {
		t.Fatalf("added = %d, want 1", added)
	}
	if lastQuickAdd.ID == "" {
		t.Fatal("QuickAddEvent.ID is empty, want a uuid")
	}
}

func TestHotkeyDispatchReapplyReregisters(t *testing.T) {
	backend := hook.NewMockBackend()
	e := New(backend, nil, hook.NewMockClipboard(), nil, 0, 0, nil)
	d := NewHotkeyDispatch(e, func() {}, func(QuickAddEvent) {})

	first := HotkeyConfig{Modifier: "ctrl", QuickAddKey: "f10", ProfileSwitchKey: "f11", ToggleKey: "f12"}
	if err := d.Apply(first); err != nil {
		t.Fatal(err)
	}
	second := HotkeyConfig{Modifier: "shift", QuickAddKey: "f1", ProfileSwitchKey: "f2", ToggleKey: "f3"}
	if err := d.Apply(second); err != nil {
		t.Fatal(err)
	}

	if backend.FireHotkey("ctrl+f12") {
		t.Fatal("old toggle chord still registered after reapply")
	}
	if !backend.FireHotkey("shift+f3") {
		t.Fatal("new toggle chord not registered after reapply")
	}
}

func TestHotkeyDispatchShutdownUnregistersAll(t *testing.T) {
	backend := hook.NewMockBackend()
	e := New(backend, nil, hook.NewMockClipboard(), nil, 0, 0, nil)
	d := NewHotkeyDispatch(e, func() {}, func(QuickAddEvent) {})
	cfg := HotkeyConfig{Modifier: "ctrl", QuickAddKey: "f10", ProfileSwitchKey: "f11", ToggleKey: "f12"}
	if err := d.Apply(cfg); err != nil {
		t.Fatal(err)
	}
	d.Shutdown()
	if backend.FireHotkey("ctrl+f12") || backend.FireHotkey("ctrl+f11") || backend.FireHotkey("ctrl+f10") {
		t.Fatal("a chord still fired after Shutdown")
	}
}
