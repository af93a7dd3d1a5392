package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"liz/internal/types"
)

type KeymapStore interface {
	Load(ctx context.Context) (types.Keymap, error)
}

// FileKeymapStore reads a JSON object of key name to key code. The keymap
// is optional: an unset path or a missing file yields an empty keymap.
type FileKeymapStore struct {
	path string
	mu   sync.Mutex
}

func NewFileKeymapStore(path string) *FileKeymapStore {
	return &FileKeymapStore{path: strings.TrimSpace(path)}
}

func (s *FileKeymapStore) Path() string {
	return s.path
}

func (s *FileKeymapStore) Load(ctx context.Context) (types.Keymap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return types.Keymap{}, nil
	}
	entries := map[string]string{}
	if err := readJSON(s.path, &entries); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return types.Keymap{}, nil
		}
		return nil, fmt.Errorf("load keymap %s: %w", s.path, err)
	}
	for name, code := range entries {
		if err := types.CheckKeyCode(strings.TrimSpace(code)); err != nil {
			return nil, fmt.Errorf("load keymap %s: key %q: %w", s.path, name, err)
		}
	}
	return types.NewKeymap(entries), nil
}
