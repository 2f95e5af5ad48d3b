// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Analysis   AnalysisConfig   `toml:"analysis"`
	References ReferencesConfig `toml:"references"`
	Store      StoreConfig      `toml:"store"`
	Log        LogConfig        `toml:"log"`
}

// AnalysisConfig maps analysis-related settings.
type AnalysisConfig struct {
	Lang         *string `toml:"lang"`
	ExtraLetters *string `toml:"extra-letters"`
	StopChars    *string `toml:"stop-chars"`
	Punctuation  *string `toml:"punctuation"`
	MaxWords     *int    `toml:"max-words"`
	Top          *int    `toml:"top"`
	Workers      *int    `toml:"workers"`
	PassTimeout  *string `toml:"pass-timeout"`
}

// ReferencesConfig maps the reference fingerprint library location.
type ReferencesConfig struct {
	Dir *string `toml:"dir"`
}

// StoreConfig maps profile history settings.
type StoreConfig struct {
	Path    *string `toml:"path"`
	Disable *bool   `toml:"disable"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if _, err := cfg.Analysis.Timeout(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Timeout parses pass-timeout. An unset value yields zero.
func (a AnalysisConfig) Timeout() (time.Duration, error) {
	if a.PassTimeout == nil || *a.PassTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(*a.PassTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid pass-timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid pass-timeout: must be >= 0")
	}
	return d, nil
}

// Template is written by "textstat config" when no config file exists yet.
const Template = `# textstat configuration

[analysis]
# lang = "en"                 # selects extra word letters (sv, de, fr, ...)
# extra-letters = ""          # overrides the letters picked by lang; "@path" loads a file
# stop-chars = ".!?"          # sentence terminators; "@path" loads a file
# punctuation = "@/path/to/punctuation"
# max-words = 65536           # trigram word budget, 0 for no limit
# top = 10
# workers = 0                 # concurrent passes, 0 for all at once
# pass-timeout = "30s"

[references]
# dir = "~/.local/share/textstat/references"

[store]
# path = "~/.local/share/textstat/textstat.db"
# disable = false

[log]
# level = "info"              # debug, info, warn, error
# format = "text"             # text or json
`
