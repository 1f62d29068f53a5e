package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigName is the settings file name looked up in the working directory
// and then the home directory.
const ConfigName = ".transbuilder"

// EnvPrefix prefixes environment overrides, e.g. TRANSBUILDER_AUTOSAVE_INTERVAL.
const EnvPrefix = "TRANSBUILDER"

const dataDirName = "transbuilder"

// Settings keys.
const (
	KeyAutosaveInterval = "autosave_interval"
	KeyNoColor          = "no_color"
	KeyYes              = "yes"
	KeyTrackChanges     = "track_changes"
	KeyHistoryFile      = "history_file"
	KeyUILang           = "ui_lang"
	KeyVerbose          = "verbose"
)

// FlagNames maps settings keys to the command-line flags bound to them.
var FlagNames = map[string]string{
	KeyAutosaveInterval: "autosave-interval",
	KeyNoColor:          "no-color",
	KeyYes:              "yes",
	KeyTrackChanges:     "track",
	KeyHistoryFile:      "history-file",
	KeyUILang:           "ui-lang",
	KeyVerbose:          "verbose",
}

// Settings are the effective user settings.
type Settings struct {
	AutosaveInterval int    `mapstructure:"autosave_interval"`
	NoColor          bool   `mapstructure:"no_color"`
	Yes              bool   `mapstructure:"yes"`
	TrackChanges     bool   `mapstructure:"track_changes"`
	HistoryFile      string `mapstructure:"history_file"`
	UILang           string `mapstructure:"ui_lang"`
	Verbose          bool   `mapstructure:"verbose"`

	// ConfigFile is the settings file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

// Load resolves settings from flags, TRANSBUILDER_* environment variables,
// the settings file and defaults, in that order of precedence. cfgFile
// overrides the search; a missing cfgFile is an error while a missing
// searched file is not. searchPaths defaults to the working directory
// and the home directory.
func Load(v *viper.Viper, cfgFile string, flags *pflag.FlagSet, searchPaths ...string) (*Settings, error) {
	v.SetDefault(KeyAutosaveInterval, 10)
	v.SetDefault(KeyNoColor, false)
	v.SetDefault(KeyYes, false)
	v.SetDefault(KeyTrackChanges, false)
	v.SetDefault(KeyHistoryFile, "")
	v.SetDefault(KeyUILang, "")
	v.SetDefault(KeyVerbose, false)

	if flags != nil {
		for key, name := range FlagNames {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if len(searchPaths) == 0 {
			searchPaths = []string{"."}
			if home, err := os.UserHomeDir(); err == nil {
				searchPaths = append(searchPaths, home)
			}
		}
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(ConfigName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	s.ConfigFile = v.ConfigFileUsed()

	if s.AutosaveInterval < 1 {
		return nil, fmt.Errorf("%s must be at least 1, got %d", KeyAutosaveInterval, s.AutosaveInterval)
	}
	// https://no-color.org
	if os.Getenv("NO_COLOR") != "" {
		s.NoColor = true
	}
	if s.HistoryFile == "" {
		if p, err := HistoryPath(); err == nil {
			s.HistoryFile = p
		}
	}

	return &s, nil
}

// DataDir returns the transbuilder data directory.
// Respects $XDG_DATA_HOME (falls back to ~/.local/share).
func DataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, dataDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", dataDirName), nil
}

// HistoryPath returns the default readline history file.
// Default: ~/.local/share/transbuilder/history (or $XDG_DATA_HOME/transbuilder/history).
func HistoryPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}
