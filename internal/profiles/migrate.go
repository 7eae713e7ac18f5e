package profiles

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// MigrateLegacyDir copies profiles.json and config.json out of legacyDir
// into dataDir/configDir respectively, if present and not already
// migrated, then best-effort removes the legacy copies — spec §4.3 load
// step 1 and §6 "a legacy colocated directory is migrated on first run".
func MigrateLegacyDir(legacyDir, dataDir, configDir string) error {
	if _, err := os.Stat(legacyDir); os.IsNotExist(err) {
		return nil
	}

	copiedProfiles, err := copyIfMissing(filepath.Join(legacyDir, "profiles.json"), filepath.Join(dataDir, "profiles.json"))
	if err != nil {
		return errors.Wrap(err, "migrate legacy profiles file")
	}
	copiedConfig, err := copyIfMissing(filepath.Join(legacyDir, "config.json"), filepath.Join(configDir, "config.json"))
	if err != nil {
		return errors.Wrap(err, "migrate legacy config file")
	}

	if copiedProfiles || copiedConfig {
		_ = os.Remove(filepath.Join(legacyDir, "profiles.json"))
		_ = os.Remove(filepath.Join(legacyDir, "config.json"))
		_ = os.Remove(legacyDir) // best-effort; only succeeds if now empty
	}
	return nil
}

// copyIfMissing copies src to dst (creating dst's directory) only if src
// exists and dst does not. Reports whether a copy actually happened.
func copyIfMissing(src, dst string) (bool, error) {
	if _, err := os.Stat(dst); err == nil {
		return false, nil
	}
	in, err := os.Open(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}
	out, err := os.Create(dst)
	if err != nil {
		return false, err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return false, err
	}
	return true, out.Sync()
}

// legacyHotkeysDoc is the flat trigger set the original pre-profile-store
// format used (original_source/backend/storage.py's hotkeys.json).
type legacyHotkeysDoc map[string]string

// migrateLegacyHotkeysFile seeds the default profile's trigger set from a
// flat legacy hotkeys.json if one exists and no profiles file has been
// written yet — a feature the distilled spec.md dropped but the original
// implementation carried (SPEC_FULL.md "supplemented features" #2).
func (s *Store) migrateLegacyHotkeysFile() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil // profiles file already exists; nothing to seed
	}
	legacyPath := filepath.Join(s.dataDir, "hotkeys.json")
	data, err := os.ReadFile(legacyPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "read legacy hotkeys file")
	}

	var legacy legacyHotkeysDoc
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil // malformed legacy file: ignore, not fatal
	}
	if len(legacy) == 0 {
		return nil
	}

	profileSet := map[string]map[string]string{DefaultProfileName: map[string]string(legacy)}
	return s.Save(DefaultProfileName, profileSet, "")
}
