package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var ErrInvalidKeyCode = errors.New("invalid key code")

// Keymap maps a lowercase key name to the code handed to the injector,
// e.g. "meta" -> "126".
type Keymap map[string]string

func NewKeymap(entries map[string]string) Keymap {
	out := make(Keymap, len(entries))
	for name, code := range entries {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		out[name] = strings.TrimSpace(code)
	}
	return out
}

// Lookup resolves a key name case-insensitively.
func (k Keymap) Lookup(name string) (string, bool) {
	if len(k) == 0 {
		return "", false
	}
	code, ok := k[strings.ToLower(name)]
	return code, ok
}

// CheckKeyCode rejects codes that cannot travel inside a key directive:
// empty codes, codes with whitespace and codes holding the typing marker.
func CheckKeyCode(code string) error {
	switch {
	case code == "":
		return fmt.Errorf("%w: empty", ErrInvalidKeyCode)
	case strings.IndexFunc(code, unicode.IsSpace) >= 0:
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidKeyCode, code)
	case strings.Contains(code, "[STR]"):
		return fmt.Errorf("%w: %q contains [STR]", ErrInvalidKeyCode, code)
	}
	return nil
}
