// Package store loads and persists flattened translation files.
//
// The target file on disk is the only durable artifact of a translation
// session; a flatpath.Map is a cache over it that is written back with
// Persist. Writes go to a temporary file in the same directory which is then
// renamed over the destination, so an interrupted write leaves the previous
// file intact.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/spf13/afero"

	"github.com/jacktools/transbuilder/flatpath"
	"github.com/jacktools/transbuilder/jsonvalue"
)

// Indent is the indentation used for persisted files.
const Indent = "  "

var (
	// ErrIO marks files that could not be read or written.
	ErrIO = errors.New("i/o error")
	// ErrParse marks files whose content is not valid JSON.
	ErrParse = errors.New("invalid JSON")
)

// Error describes a failed store operation on a file.
type Error struct {
	Op   string // "read", "parse", "write"
	Path string
	Kind error // ErrIO or ErrParse
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// TargetStatus tells how LoadOrInit obtained the target mapping.
type TargetStatus int

const (
	// TargetNew means the file does not exist yet.
	TargetNew TargetStatus = iota
	// TargetLoaded means the file was read and parsed.
	TargetLoaded
	// TargetMalformed means the file exists but could not be read or
	// parsed. The mapping is empty, exactly as for TargetNew.
	TargetMalformed
)

func (s TargetStatus) String() string {
	switch s {
	case TargetNew:
		return "new"
	case TargetLoaded:
		return "loaded"
	case TargetMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("TargetStatus(%d)", int(s))
	}
}

// Store reads and writes translation files on a file system.
type Store struct {
	fs afero.Fs
}

// New returns a Store backed by fsys. A nil fsys means the OS file system.
func New(fsys afero.Fs) *Store {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Store{fs: fsys}
}

// Fs returns the underlying file system.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Read parses the JSON file at path without flattening it.
func (s *Store) Read(path string) (jsonvalue.Value, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return jsonvalue.Value{}, &Error{Op: "read", Path: path, Kind: ErrIO, Err: err}
	}
	v, err := jsonvalue.Parse(data)
	if err != nil {
		return jsonvalue.Value{}, &Error{Op: "parse", Path: path, Kind: ErrParse, Err: err}
	}
	return v, nil
}

// Load reads, parses and flattens the source file at path.
func (s *Store) Load(path string) (*flatpath.Map, error) {
	v, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	return flatpath.Flatten(v), nil
}

// LoadOrInit loads the target file at path. A missing or malformed file is
// not an error: it yields an empty mapping, and the status says which case
// applied.
func (s *Store) LoadOrInit(path string) (*flatpath.Map, TargetStatus) {
	m, err := s.Load(path)
	switch {
	case err == nil:
		return m, TargetLoaded
	case errors.Is(err, fs.ErrNotExist):
		return flatpath.NewMap(), TargetNew
	default:
		return flatpath.NewMap(), TargetMalformed
	}
}

// Persist unflattens target and writes it to path as JSON indented with two
// spaces and no trailing newline, replacing any existing content.
func (s *Store) Persist(target *flatpath.Map, path string) error {
	data := jsonvalue.MarshalIndent(flatpath.Unflatten(target), Indent)
	if err := s.writeFile(path, data); err != nil {
		return &Error{Op: "write", Path: path, Kind: ErrIO, Err: err}
	}
	return nil
}

func (s *Store) writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = s.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := s.fs.Chmod(tmpName, 0644); err != nil {
		cleanup()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := s.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing file: %w", err)
	}
	return nil
}

// Backup copies the file at path to path+".bak". It returns the backup path.
func (s *Store) Backup(path string) (string, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return "", &Error{Op: "read", Path: path, Kind: ErrIO, Err: err}
	}
	bak := path + ".bak"
	if err := afero.WriteFile(s.fs, bak, data, 0644); err != nil {
		return "", &Error{Op: "write", Path: bak, Kind: ErrIO, Err: err}
	}
	return bak, nil
}

// Exists reports whether a regular file exists at path.
func (s *Store) Exists(path string) bool {
	info, err := s.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// IsBlank reports whether a target value still needs translation: empty
// strings, null, false and numeric zero all count as blank. Arrays, even
// empty ones, are not blank.
func IsBlank(v jsonvalue.Value) bool {
	switch v.Kind() {
	case jsonvalue.KindNull:
		return true
	case jsonvalue.KindString:
		return v.Str() == ""
	case jsonvalue.KindBool:
		return !v.Bool()
	case jsonvalue.KindNumber:
		return v.IsZeroNumber()
	default:
		return false
	}
}

// PendingKeys returns the key paths of source, in source order, whose value
// in target is missing or blank.
func PendingKeys(source, target *flatpath.Map) []string {
	return lo.Filter(source.Keys(), func(key string, _ int) bool {
		v, ok := target.Get(key)
		return !ok || IsBlank(v)
	})
}

// TargetPath returns the conventional path of the file for lang in dir.
func TargetPath(dir, lang string) string {
	return filepath.Join(dir, lang+".json")
}
