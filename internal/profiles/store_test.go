package profiles

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

// S7 — default repair: an empty profiles file loads to the default
// profile set and rewrites the file.
func TestLoadEmptyFileRepairsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)

	current, profileSet, err := s.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if current != DefaultProfileName {
		t.Fatalf("current = %q, want %q", current, DefaultProfileName)
	}
	if _, ok := profileSet[DefaultProfileName]; !ok {
		t.Fatalf("profileSet missing default profile: %+v", profileSet)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "profiles.json"))
	if err != nil {
		t.Fatal(err)
	}
	var doc plaintextDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("rewritten file is not valid JSON: %v", err)
	}
	if doc.CurrentProfile != DefaultProfileName {
		t.Fatalf("rewritten current_profile = %q, want %q", doc.CurrentProfile, DefaultProfileName)
	}
}

func TestLoadMissingFileCreatesDefaults(t *testing.T) {
	s := newTestStore(t)
	current, profileSet, err := s.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if current != DefaultProfileName || len(profileSet) != 1 {
		t.Fatalf("current=%q profileSet=%+v, want just the default profile", current, profileSet)
	}
}

func TestLoadRepairsDanglingCurrentPointer(t *testing.T) {
	dir := t.TempDir()
	doc := `{"current_profile":"ghost","profiles":{"main":{},"work":{"-w":"work"}}}`
	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	current, profileSet, err := s.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if current != DefaultProfileName {
		t.Fatalf("current = %q, want repaired to %q", current, DefaultProfileName)
	}
	if _, ok := profileSet["work"]; !ok {
		t.Fatal("non-default resident profile was dropped during repair")
	}
}

func TestLoadDropsMalformedTriggerEntries(t *testing.T) {
	dir := t.TempDir()
	doc := `{"current_profile":"main","profiles":{"main":{"-g":"go","-n":5,"":"dropped too"}}}`
	if err := os.WriteFile(filepath.Join(dir, "profiles.json"), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewStore(dir)
	_, profileSet, err := s.Load("")
	if err != nil {
		t.Fatal(err)
	}
	main := profileSet["main"]
	if len(main) != 1 || main["-g"] != "go" {
		t.Fatalf("main profile = %+v, want only {-g: go}", main)
	}
}

// Invariant 5: round-trip Save -> Load yields an equal profile map and
// pointer, with or without a passphrase.
func TestSaveLoadRoundTripPlaintext(t *testing.T) {
	s := newTestStore(t)
	want := map[string]map[string]string{
		"main": {"-hi": "Hello"},
		"work": {"-sig": "Best,\nAlice"},
	}
	if err := s.Save("work", want, ""); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	current, got, err := s.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if current != "work" {
		t.Fatalf("current = %q, want work", current)
	}
	if len(got) != len(want) || got["main"]["-hi"] != "Hello" || got["work"]["-sig"] != "Best,\nAlice" {
		t.Fatalf("round-tripped profileSet = %+v, want %+v", got, want)
	}
}

// S6 / invariant 5 & 6 — encrypted round-trip.
func TestSaveLoadRoundTripEncrypted(t *testing.T) {
	s := newTestStore(t)
	want := map[string]map[string]string{"main": {"-g": "go"}}
	if err := s.Save("main", want, "pw"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	current, got, err := s.Load("pw")
	if err != nil {
		t.Fatalf("Load(pw) error = %v", err)
	}
	if current != "main" || got["main"]["-g"] != "go" {
		t.Fatalf("round-tripped = %q/%+v", current, got)
	}

	if _, _, err := s.Load(""); !IsEncryptionError(err) {
		t.Fatalf("Load(\"\") error = %v, want ErrEncryption", err)
	}
	if _, _, err := s.Load("wrong"); !IsEncryptionError(err) {
		t.Fatalf("Load(wrong) error = %v, want ErrEncryption", err)
	}
}

func TestLoadEncryptedWithoutPassphraseLeavesFileUnchanged(t *testing.T) {
	s := newTestStore(t)
	if err := s.Save("main", map[string]map[string]string{"main": {"-g": "go"}}, "pw"); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(s.dataDir, "profiles.json")
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(""); !IsEncryptionError(err) {
		t.Fatalf("Load(\"\") error = %v, want ErrEncryption", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("profiles file was modified despite a failed decrypt")
	}
}

func TestIsEncrypted(t *testing.T) {
	s := newTestStore(t)
	if enc, err := s.IsEncrypted(); err != nil || enc {
		t.Fatalf("IsEncrypted() on missing file = %v, %v, want false, nil", enc, err)
	}
	if err := s.Save("main", map[string]map[string]string{"main": {}}, "pw"); err != nil {
		t.Fatal(err)
	}
	if enc, err := s.IsEncrypted(); err != nil || !enc {
		t.Fatalf("IsEncrypted() = %v, %v, want true, nil", enc, err)
	}
}
