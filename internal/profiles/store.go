// Package profiles implements the Profile & Config Store (spec §4.3):
// atomic, optionally passphrase-encrypted on-disk state for the named
// trigger sets the engine consumes, plus the flat configuration file.
package profiles

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// DefaultProfileName is the reserved profile that must always exist.
const DefaultProfileName = "main"

// plaintextDoc is the on-disk shape of an unencrypted profiles file.
type plaintextDoc struct {
	CurrentProfile string                       `json:"current_profile"`
	Profiles       map[string]map[string]string `json:"profiles"`
}

// rawDoc mirrors plaintextDoc but accepts arbitrary JSON values so
// coerceProfiles can drop malformed entries instead of failing the
// whole parse, per spec §4.3 step 3.
type rawDoc struct {
	CurrentProfile interface{}            `json:"current_profile"`
	Profiles       map[string]interface{} `json:"profiles"`
}

// Store loads and saves the profile set and the active-profile pointer.
type Store struct {
	dataDir string
	path    string
}

// NewStore points a Store at <dataDir>/profiles.json.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir, path: filepath.Join(dataDir, "profiles.json")}
}

// Load implements spec §4.3's load contract: ensure directories exist,
// migrate legacy data, decrypt if needed, coerce/drop malformed entries,
// repair invariants, and rewrite the file to normalize any repairs.
// If the file is marked encrypted and passphrase is empty, it fails with
// ErrEncryption without touching the file.
func (s *Store) Load(passphrase string) (current string, profileSet map[string]map[string]string, err error) {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", nil, errors.Wrap(err, "create data dir")
	}
	if err := s.migrateLegacyHotkeysFile(); err != nil {
		return "", nil, err
	}

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		current, profileSet = DefaultProfileName, defaultProfileSet()
		if werr := s.Save(current, profileSet, passphrase); werr != nil {
			return "", nil, werr
		}
		return current, profileSet, nil
	}
	if err != nil {
		return "", nil, errors.Wrap(err, "read profiles file")
	}

	plaintext := raw
	if isEncryptedEnvelope(raw) {
		plaintext, err = decryptEnvelope(raw, passphrase)
		if err != nil {
			return "", nil, err
		}
	}

	var doc rawDoc
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		// Malformed data is tolerated, not surfaced: materialize defaults.
		current, profileSet = DefaultProfileName, defaultProfileSet()
	} else {
		currentName, _ := doc.CurrentProfile.(string)
		current, profileSet = repairInvariants(currentName, coerceProfiles(doc.Profiles))
	}

	if err := s.Save(current, profileSet, passphrase); err != nil {
		return "", nil, err
	}
	return current, profileSet, nil
}

// Save implements spec §4.3's save contract: encrypt when a passphrase is
// supplied, otherwise write plaintext; total modulo I/O failure.
func (s *Store) Save(current string, profileSet map[string]map[string]string, passphrase string) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.Wrap(err, "create data dir")
	}
	doc := plaintextDoc{CurrentProfile: current, Profiles: profileSet}
	plaintext, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal profiles")
	}

	out := plaintext
	if passphrase != "" {
		out, err = encryptPlaintext(plaintext, passphrase)
		if err != nil {
			return err
		}
	}
	return atomicWrite(s.path, out)
}

// IsEncrypted reports whether the on-disk profiles file is an encrypted
// envelope, without needing a passphrase to check.
func (s *Store) IsEncrypted() (bool, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "read profiles file")
	}
	return isEncryptedEnvelope(raw), nil
}

func defaultProfileSet() map[string]map[string]string {
	return map[string]map[string]string{DefaultProfileName: {}}
}

// coerceProfiles drops entries whose types are wrong and stringifies
// remaining keys/values, per spec §4.3 step 3: a profile name must be a
// non-empty string and its trigger set must be a JSON object; within it,
// only string values survive (a number or nested object as an expansion
// is dropped, not coerced, since silently stringifying "output": 5 would
// surprise a user far more than losing that one trigger).
func coerceProfiles(raw map[string]interface{}) map[string]map[string]string {
	out := make(map[string]map[string]string, len(raw))
	for name, value := range raw {
		if name == "" {
			continue
		}
		triggers, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		cleaned := make(map[string]string, len(triggers))
		for k, v := range triggers {
			if k == "" {
				continue
			}
			s, ok := v.(string)
			if !ok {
				continue
			}
			cleaned[k] = s
		}
		out[name] = cleaned
	}
	return out
}

// repairInvariants ensures the default profile exists and that current
// names a resident profile, per spec §4.3 step 4.
func repairInvariants(current string, profileSet map[string]map[string]string) (string, map[string]map[string]string) {
	if profileSet == nil {
		profileSet = make(map[string]map[string]string)
	}
	if _, ok := profileSet[DefaultProfileName]; !ok {
		profileSet[DefaultProfileName] = map[string]string{}
	}
	if _, ok := profileSet[current]; !ok {
		current = DefaultProfileName
	}
	return current, profileSet
}
