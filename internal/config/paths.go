package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName     = "liz"
	dataDirEnv     = "LIZ_DATA_DIR"
	rhythmFile     = "rhythm.toml"
	musicSheetFile = "music_sheet.lock"
)

// DataDir returns the base data directory for liz. LIZ_DATA_DIR wins over
// the platform config directory.
func DataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(dataDirEnv)); dir != "" {
		return filepath.Clean(dir), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// RhythmPath returns the path to the rhythm configuration file.
func RhythmPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, rhythmFile), nil
}

// MusicSheetPath returns the default path of the persisted sheet.
func MusicSheetPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, musicSheetFile), nil
}

// resolvePath expands "~/" and anchors relative paths at base.
func resolvePath(path, base string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	if filepath.IsAbs(path) {
		return path, nil
	}
	if base == "" {
		dataDir, err := DataDir()
		if err != nil {
			return "", err
		}
		base = dataDir
	}
	return filepath.Join(base, path), nil
}
