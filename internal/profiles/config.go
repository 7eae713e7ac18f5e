package profiles

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Config holds the recognized options of spec §3, plus any unrecognized
// keys found on disk so they round-trip unchanged — the same
// "preserve what you don't understand" rule config_service.go applies
// to its own (much smaller) Config struct.
type Config struct {
	Cooldown          float64 `json:"cooldown"`
	PasteDelay        float64 `json:"paste_delay"`
	HotkeyModifier    string  `json:"hotkey_modifier"`
	QuickAddKey       string  `json:"quick_add_key"`
	ProfileSwitchKey  string  `json:"profile_switch_key"`
	ToggleHotkeyKey   string  `json:"toggle_hotkey_key"`
	ProfilesEncrypted bool    `json:"profiles_encrypted"`

	// Unknown holds any keys the on-disk file carried that are not
	// recognized above. Preserved verbatim across load/save.
	Unknown map[string]json.RawMessage `json:"-"`

	// present records which known keys were actually found on disk, so
	// mergeConfigDefaults can tell an explicit zero apart from "missing".
	present map[string]bool
}

// DefaultConfig returns the factory defaults of spec §3's table.
func DefaultConfig() Config {
	return Config{
		Cooldown:          0.3,
		PasteDelay:        0.05,
		HotkeyModifier:    "ctrl",
		QuickAddKey:       "f10",
		ProfileSwitchKey:  "f11",
		ToggleHotkeyKey:   "f12",
		ProfilesEncrypted: false,
	}
}

var knownConfigKeys = map[string]bool{
	"cooldown": true, "paste_delay": true, "hotkey_modifier": true,
	"quick_add_key": true, "profile_switch_key": true,
	"toggle_hotkey_key": true, "profiles_encrypted": true,
}

// MarshalJSON re-emits known fields alongside any preserved unknown keys.
func (c Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(c.Unknown)+7)
	for k, v := range c.Unknown {
		out[k] = v
	}
	set := func(key string, v interface{}) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		out[key] = raw
		return nil
	}
	if err := set("cooldown", c.Cooldown); err != nil {
		return nil, err
	}
	if err := set("paste_delay", c.PasteDelay); err != nil {
		return nil, err
	}
	if err := set("hotkey_modifier", c.HotkeyModifier); err != nil {
		return nil, err
	}
	if err := set("quick_add_key", c.QuickAddKey); err != nil {
		return nil, err
	}
	if err := set("profile_switch_key", c.ProfileSwitchKey); err != nil {
		return nil, err
	}
	if err := set("toggle_hotkey_key", c.ToggleHotkeyKey); err != nil {
		return nil, err
	}
	if err := set("profiles_encrypted", c.ProfilesEncrypted); err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

// UnmarshalJSON fills known fields and stashes everything else in Unknown.
func (c *Config) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Unknown = make(map[string]json.RawMessage)
	c.present = make(map[string]bool)
	for k, v := range raw {
		switch k {
		case "cooldown":
			_ = json.Unmarshal(v, &c.Cooldown)
		case "paste_delay":
			_ = json.Unmarshal(v, &c.PasteDelay)
		case "hotkey_modifier":
			_ = json.Unmarshal(v, &c.HotkeyModifier)
		case "quick_add_key":
			_ = json.Unmarshal(v, &c.QuickAddKey)
		case "profile_switch_key":
			_ = json.Unmarshal(v, &c.ProfileSwitchKey)
		case "toggle_hotkey_key":
			_ = json.Unmarshal(v, &c.ToggleHotkeyKey)
		case "profiles_encrypted":
			_ = json.Unmarshal(v, &c.ProfilesEncrypted)
		default:
			c.Unknown[k] = v
			continue
		}
		c.present[k] = true
	}
	return nil
}

// ConfigStore loads and saves Config to a flat JSON file, filling missing
// keys from defaults and preserving unknown ones, the way
// config_service.go's ConfigService does for its own smaller schema.
type ConfigStore struct {
	path string
}

// NewConfigStore points a ConfigStore at the standard config file path.
func NewConfigStore(configDir string) *ConfigStore {
	return &ConfigStore{path: filepath.Join(configDir, "config.json")}
}

// Load reads the config file, materializing defaults for anything
// missing or on any read/parse failure (spec §4.3's "load is total").
func (s *ConfigStore) Load() Config {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return DefaultConfig()
	}
	var onDisk Config
	if err := json.Unmarshal(data, &onDisk); err != nil {
		defaults := DefaultConfig()
		_ = s.Save(defaults)
		return defaults
	}
	return mergeConfigDefaults(onDisk)
}

// mergeConfigDefaults takes the stored value for each known key when
// present on disk (an explicit zero included), else the default; unknown
// keys pass through untouched (spec §4.3 "Config merge on load").
func mergeConfigDefaults(cfg Config) Config {
	d := DefaultConfig()
	if !cfg.present["cooldown"] {
		cfg.Cooldown = d.Cooldown
	}
	if !cfg.present["paste_delay"] {
		cfg.PasteDelay = d.PasteDelay
	}
	if !cfg.present["hotkey_modifier"] {
		cfg.HotkeyModifier = d.HotkeyModifier
	}
	if !cfg.present["quick_add_key"] {
		cfg.QuickAddKey = d.QuickAddKey
	}
	if !cfg.present["profile_switch_key"] {
		cfg.ProfileSwitchKey = d.ProfileSwitchKey
	}
	if !cfg.present["toggle_hotkey_key"] {
		cfg.ToggleHotkeyKey = d.ToggleHotkeyKey
	}
	if cfg.Unknown == nil {
		cfg.Unknown = make(map[string]json.RawMessage)
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = 0
	}
	if cfg.PasteDelay < 0 {
		cfg.PasteDelay = 0
	}
	return cfg
}

// Save writes cfg to disk atomically: temp file in the same directory,
// fsync, rename — spec §4.3's "writes are atomic".
func (s *ConfigStore) Save(cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "create config dir")
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return atomicWrite(s.path, data)
}

// atomicWrite writes data to a sibling temp file, fsyncs it, then
// renames it into place, per spec §4.3.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "fsync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrap(err, "rename temp file")
	}
	return nil
}
