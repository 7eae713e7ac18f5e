package engine

import (
	"errors"
	"testing"

	"github.com/esotericlabs-connor/OpenKeyFlow/internal/hook"
)

// A clipboard read failure falls back to direct typing, and the fire
// still counts (spec §7: TransientEmissionError is recovered locally).
func TestEmissionFallsBackToTypingOnClipboardReadError(t *testing.T) {
	backend := hook.NewMockBackend()
	clipboard := hook.NewMockClipboard()
	clipboard.ReadErr = errors.New("no clipboard owner")

	e := New(backend, nil, clipboard, map[string]string{"-x": "X"}, 0, 0, nil)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	backend.Emit(hook.Event{Type: hook.Down, Name: "-"})
	backend.Emit(hook.Event{Type: hook.Down, Name: "x"})

	if e.FiredCount() != 1 {
		t.Fatalf("FiredCount() = %d, want 1 (transient clipboard failure still counts as fired)", e.FiredCount())
	}
	if len(backend.Written) != 1 || backend.Written[0] != "X" {
		t.Fatalf("Written = %v, want [\"X\"] (direct-type fallback)", backend.Written)
	}
}

// A clipboard content mismatch after write (a racing owner) also falls
// back to typing instead of pasting the wrong content.
func TestEmissionFallsBackToTypingOnClipboardMismatch(t *testing.T) {
	backend := hook.NewMockBackend()
	clipboard := hook.NewMockClipboard()
	clipboard.MismatchOnce = true

	e := New(backend, nil, clipboard, map[string]string{"-x": "X"}, 0, 0, nil)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	backend.Emit(hook.Event{Type: hook.Down, Name: "-"})
	backend.Emit(hook.Event{Type: hook.Down, Name: "x"})

	if len(backend.Written) != 1 || backend.Written[0] != "X" {
		t.Fatalf("Written = %v, want [\"X\"] (direct-type fallback on mismatch)", backend.Written)
	}
}

// A terminal backspace failure aborts the fire entirely: no expansion is
// typed or pasted, suppress clears, and the counter does not advance.
func TestEmissionAbortsOnBackspaceFailure(t *testing.T) {
	backend := hook.NewMockBackend()
	backend.SendErr = errors.New("backend gone")
	clipboard := hook.NewMockClipboard()

	e := New(backend, nil, clipboard, map[string]string{"-x": "X"}, 0, 0, nil)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	backend.Emit(hook.Event{Type: hook.Down, Name: "-"})
	backend.Emit(hook.Event{Type: hook.Down, Name: "x"})

	if e.FiredCount() != 0 {
		t.Fatalf("FiredCount() = %d, want 0 (aborted fire must not count)", e.FiredCount())
	}
	if len(backend.Written) != 0 {
		t.Fatalf("Written = %v, want empty (no typing after an aborted fire)", backend.Written)
	}
	if e.Buffer() != "" {
		t.Fatalf("Buffer() = %q, want empty after an aborted fire", e.Buffer())
	}
}
