// Package config discovers translation files and loads transbuilder's
// settings.
package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/jacktools/transbuilder/langmeta"
)

// LanguageFile is a translation file found in a directory.
type LanguageFile struct {
	// Code is the lower-cased file name without the .json extension.
	Code string
	Path string
	Lang langmeta.Meta
}

// Label returns "flag Name (code)" for listings.
func (f LanguageFile) Label() string {
	return fmt.Sprintf("%s (%s)", f.Lang.Label(), f.Code)
}

// IsJSONFile reports whether name looks like a translation file.
// Hidden files (temporary files, editor backups) are ignored.
func IsJSONFile(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".json")
}

// LanguageCode derives the language code from a translation file path:
// "i18n/FR.json" -> "fr".
func LanguageCode(path string) string {
	base := filepath.Base(path)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// NewLanguageFile describes the file at path.
func NewLanguageFile(path string) LanguageFile {
	code := LanguageCode(path)
	return LanguageFile{Code: code, Path: path, Lang: langmeta.Resolve(code)}
}

// FindLanguageFiles lists the translation files in dir, sorted by code.
func FindLanguageFiles(fsys afero.Fs, dir string) ([]LanguageFile, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var files []LanguageFile
	for _, e := range entries {
		if e.IsDir() || !IsJSONFile(e.Name()) {
			continue
		}
		files = append(files, NewLanguageFile(filepath.Join(dir, e.Name())))
	}

	sort.SliceStable(files, func(i, j int) bool { return files[i].Code < files[j].Code })
	return files, nil
}
