// Package lockfile implements transbuilder.lock, a lock file that tracks
// MD5 checksums of the source text each translation was made from. It lets
// the status command list translations whose source text has changed
// since they were entered.
//
// The lock file is stored alongside the target language files.
package lockfile

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
)

// LockFileName is the default lock file name.
const LockFileName = "transbuilder.lock"

// Version is the lock file format version.
const Version = 1

// LockFile represents the transbuilder.lock file structure.
type LockFile struct {
	Version   int                          `yaml:"version"`
	Checksums map[string]map[string]string `yaml:"checksums"` // target -> key -> md5

	fs   afero.Fs `yaml:"-"`
	path string   `yaml:"-"`
}

// Load reads the lock file from dir on fsys.
// Returns an empty lock file if the file doesn't exist.
func Load(fsys afero.Fs, dir string) (*LockFile, error) {
	path := filepath.Join(dir, LockFileName)
	lf := &LockFile{
		Version:   Version,
		Checksums: make(map[string]map[string]string),
		fs:        fsys,
		path:      path,
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return lf, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, lf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if lf.Checksums == nil {
		lf.Checksums = make(map[string]map[string]string)
	}

	return lf, nil
}

// Save writes the lock file.
func (lf *LockFile) Save() error {
	if lf.path == "" || lf.fs == nil {
		return fmt.Errorf("lock file path not set")
	}

	data, err := yaml.Marshal(lf)
	if err != nil {
		return fmt.Errorf("marshaling lock file: %w", err)
	}

	if err := afero.WriteFile(lf.fs, lf.path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", lf.path, err)
	}

	return nil
}

// Path returns the lock file path.
func (lf *LockFile) Path() string {
	return lf.path
}

// Hash computes the MD5 hex digest of a string.
func Hash(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}

// TargetKey builds the lock file key for a target file: its base name,
// e.g. "fr.json".
func TargetKey(filePath string) string {
	return filepath.Base(filePath)
}

// EntryContent builds the hashed content for a key path and its source
// value. The key is included so renaming a key counts as a change.
func EntryContent(key string, source jsonvalue.Value) string {
	return key + "\x00" + source.Text()
}

// IsChanged checks if a source value has changed since it was translated.
// Returns true if the key was never recorded or its content differs.
func (lf *LockFile) IsChanged(target, key string, source jsonvalue.Value) bool {
	keys, ok := lf.Checksums[target]
	if !ok {
		return true
	}
	oldHash, ok := keys[key]
	if !ok {
		return true
	}
	return oldHash != Hash(EntryContent(key, source))
}

// Update records the checksum of a source value after it was translated.
func (lf *LockFile) Update(target, key string, source jsonvalue.Value) {
	if lf.Checksums[target] == nil {
		lf.Checksums[target] = make(map[string]string)
	}
	lf.Checksums[target][key] = Hash(EntryContent(key, source))
}

// Outdated returns, in source order, the recorded keys of target whose
// source value no longer matches the checksum. Keys never recorded are
// not outdated.
func (lf *LockFile) Outdated(target string, source *flatpath.Map) []string {
	existing := lf.Checksums[target]
	if len(existing) == 0 {
		return nil
	}

	var out []string
	source.Range(func(key string, v jsonvalue.Value) bool {
		if _, ok := existing[key]; ok && lf.IsChanged(target, key, v) {
			out = append(out, key)
		}
		return true
	})
	return out
}

// Clean removes entries from the lock file that are no longer present in
// the current set of keys. This prevents stale entries from accumulating.
func (lf *LockFile) Clean(target string, currentKeys []string) {
	existing := lf.Checksums[target]
	if existing == nil {
		return
	}

	valid := make(map[string]bool, len(currentKeys))
	for _, k := range currentKeys {
		valid[k] = true
	}

	for k := range existing {
		if !valid[k] {
			delete(existing, k)
		}
	}
}

// Stats returns the number of targets and total keys in the lock file.
func (lf *LockFile) Stats() (targets, keys int) {
	targets = len(lf.Checksums)
	for _, m := range lf.Checksums {
		keys += len(m)
	}
	return
}

// Targets returns the tracked target keys, sorted.
func (lf *LockFile) Targets() []string {
	targets := lo.Keys(lf.Checksums)
	sort.Strings(targets)
	return targets
}

// Summary describes the tracked targets for the status command, e.g.
// "2 targets, 3 keys tracked (de.json: 1, fr.json: 2)".
func (lf *LockFile) Summary() string {
	targets, keys := lf.Stats()
	if targets == 0 {
		return "no keys tracked"
	}

	parts := make([]string, 0, targets)
	for _, t := range lf.Targets() {
		parts = append(parts, fmt.Sprintf("%s: %d", t, len(lf.Checksums[t])))
	}
	return fmt.Sprintf("%d targets, %d keys tracked (%s)", targets, keys, strings.Join(parts, ", "))
}
