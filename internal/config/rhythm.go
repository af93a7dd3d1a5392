package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

var ErrInvalidRhythm = errors.New("invalid rhythm")

const (
	defaultIntervalMS      = 100
	defaultTriggerShortcut = "<Ctrl>+<Alt>+L"
	defaultTheme           = "dark"
	defaultStorageBackend  = "file"
	defaultInjector        = "xdotool"
	defaultLogLevel        = "info"

	maxIntervalMS = 10_000
)

var (
	themes          = []string{"dark", "light"}
	storageBackends = []string{"file", "bbolt"}
	injectors       = []string{"xdotool", "dry-run"}
	logLevels       = []string{"debug", "info", "warn", "error"}
)

// Rhythm is the launcher configuration. It lives as TOML on disk and
// travels as JSON through update_rhythm.
type Rhythm struct {
	LizPath         string `toml:"liz_path" json:"liz_path"`
	MusicSheetPath  string `toml:"music_sheet_path" json:"music_sheet_path"`
	KeymapPath      string `toml:"keymap_path" json:"keymap_path"`
	IntervalMS      int64  `toml:"interval_ms" json:"interval_ms"`
	TriggerShortcut string `toml:"trigger_shortcut" json:"trigger_shortcut"`
	Theme           string `toml:"theme" json:"theme"`
	StorageBackend  string `toml:"storage_backend" json:"storage_backend"`
	Injector        string `toml:"injector" json:"injector"`
	LogLevel        string `toml:"log_level" json:"log_level"`
}

// Descriptor is one entry of the info listing.
type Descriptor struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
	Hint  string `json:"hint"`
}

func DefaultRhythm() Rhythm {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = ""
	}
	musicSheet, err := MusicSheetPath()
	if err != nil {
		musicSheet = musicSheetFile
	}
	return Rhythm{
		LizPath:         dataDir,
		MusicSheetPath:  musicSheet,
		IntervalMS:      defaultIntervalMS,
		TriggerShortcut: defaultTriggerShortcut,
		Theme:           defaultTheme,
		StorageBackend:  defaultStorageBackend,
		Injector:        defaultInjector,
		LogLevel:        defaultLogLevel,
	}
}

// LoadRhythm reads the rhythm at path, or at RhythmPath when path is
// empty. A missing or empty file yields the defaults.
func LoadRhythm(path string) (Rhythm, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := RhythmPath()
		if err != nil {
			return Rhythm{}, err
		}
		path = defaultPath
	}
	cfg := DefaultRhythm()
	if err := readTOML(path, &cfg); err != nil {
		return Rhythm{}, fmt.Errorf("load rhythm %s: %w", path, err)
	}
	if err := cfg.normalize(); err != nil {
		return Rhythm{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Rhythm{}, fmt.Errorf("load rhythm %s: %w", path, err)
	}
	return cfg, nil
}

// ParseRhythmJSON decodes a rhythm sent over the command protocol. Absent
// fields keep their defaults; unknown fields are rejected.
func ParseRhythmJSON(raw string) (Rhythm, error) {
	cfg := DefaultRhythm()
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&cfg); err != nil {
		return Rhythm{}, fmt.Errorf("%w: %v", ErrInvalidRhythm, err)
	}
	if decoder.More() {
		return Rhythm{}, fmt.Errorf("%w: trailing data after rhythm object", ErrInvalidRhythm)
	}
	if err := cfg.normalize(); err != nil {
		return Rhythm{}, err
	}
	return cfg, nil
}

// Save writes the rhythm as TOML to path, or to RhythmPath when path is
// empty, and returns the path written.
func (r Rhythm) Save(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := RhythmPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.SetIndentTables(true)
	if err := encoder.Encode(r); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func (r Rhythm) Validate() error {
	if strings.TrimSpace(r.MusicSheetPath) == "" {
		return fmt.Errorf("%w: music_sheet_path is required", ErrInvalidRhythm)
	}
	if r.IntervalMS < 0 || r.IntervalMS > maxIntervalMS {
		return fmt.Errorf("%w: interval_ms must be between 0 and %d", ErrInvalidRhythm, maxIntervalMS)
	}
	if strings.TrimSpace(r.TriggerShortcut) == "" {
		return fmt.Errorf("%w: trigger_shortcut is required", ErrInvalidRhythm)
	}
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"theme", r.Theme, themes},
		{"storage_backend", r.StorageBackend, storageBackends},
		{"injector", r.Injector, injectors},
		{"log_level", r.LogLevel, logLevels},
	}
	for _, check := range checks {
		if !oneOf(check.value, check.allowed) {
			return fmt.Errorf("%w: %s must be one of %s, got %q", ErrInvalidRhythm, check.name, strings.Join(check.allowed, ", "), check.value)
		}
	}
	return nil
}

func (r Rhythm) Interval() time.Duration {
	if r.IntervalMS <= 0 {
		return 0
	}
	return time.Duration(r.IntervalMS) * time.Millisecond
}

func (r Rhythm) Descriptors() []Descriptor {
	return []Descriptor{
		{Name: "liz_path", Value: r.LizPath, Hint: "The path of data dir"},
		{Name: "music_sheet_path", Value: r.MusicSheetPath, Hint: "Path for the persisted shortcut sheet"},
		{Name: "keymap_path", Value: r.KeymapPath, Hint: "Can be used to customize key mapping"},
		{Name: "interval_ms", Value: r.IntervalMS, Hint: "Interval of each shortcut block. No need to set it normally."},
		{Name: "trigger_shortcut", Value: r.TriggerShortcut, Hint: "The shortcut to activate Liz"},
		{Name: "theme", Value: r.Theme, Hint: "Theme (dark/light)"},
		{Name: "storage_backend", Value: r.StorageBackend, Hint: "Sheet storage (file/bbolt)"},
		{Name: "injector", Value: r.Injector, Hint: "Keystroke injector (xdotool/dry-run)"},
		{Name: "log_level", Value: r.LogLevel, Hint: "Log level (debug/info/warn/error)"},
	}
}

// DescriptorStrings renders every descriptor as a JSON object string.
func (r Rhythm) DescriptorStrings() []string {
	descriptors := r.Descriptors()
	out := make([]string, 0, len(descriptors))
	for _, d := range descriptors {
		data, err := json.Marshal(d)
		if err != nil {
			continue
		}
		out = append(out, string(data))
	}
	return out
}

// normalize fills blank settings with defaults and anchors relative paths
// at liz_path.
func (r *Rhythm) normalize() error {
	defaults := DefaultRhythm()
	r.LizPath = strings.TrimSpace(r.LizPath)
	if r.LizPath == "" {
		r.LizPath = defaults.LizPath
	} else if resolved, err := resolvePath(r.LizPath, ""); err == nil {
		r.LizPath = resolved
	} else {
		return err
	}
	if strings.TrimSpace(r.MusicSheetPath) == "" {
		r.MusicSheetPath = musicSheetFile
	}
	path, err := resolvePath(r.MusicSheetPath, r.LizPath)
	if err != nil {
		return err
	}
	r.MusicSheetPath = path
	if strings.TrimSpace(r.KeymapPath) != "" {
		path, err := resolvePath(r.KeymapPath, r.LizPath)
		if err != nil {
			return err
		}
		r.KeymapPath = path
	} else {
		r.KeymapPath = ""
	}
	r.TriggerShortcut = strings.TrimSpace(r.TriggerShortcut)
	if r.TriggerShortcut == "" {
		r.TriggerShortcut = defaults.TriggerShortcut
	}
	r.Theme = lowerOr(r.Theme, defaults.Theme)
	r.StorageBackend = lowerOr(r.StorageBackend, defaults.StorageBackend)
	r.Injector = lowerOr(r.Injector, defaults.Injector)
	r.LogLevel = lowerOr(r.LogLevel, defaults.LogLevel)
	return nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func lowerOr(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
