package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"liz/internal/types"
)

func TestFileKeymapStoreLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.json")
	if err := os.WriteFile(path, []byte(`{"Meta":"126","tab":"15"}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	keymap, err := NewFileKeymapStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if code, ok := keymap.Lookup("meta"); !ok || code != "126" {
		t.Fatalf("unexpected meta code %q", code)
	}
	if len(keymap) != 2 {
		t.Fatalf("unexpected keymap %v", keymap)
	}
}

func TestFileKeymapStoreOptional(t *testing.T) {
	ctx := context.Background()
	for _, path := range []string{"", filepath.Join(t.TempDir(), "missing.json")} {
		keymap, err := NewFileKeymapStore(path).Load(ctx)
		if err != nil {
			t.Fatalf("Load(%q): %v", path, err)
		}
		if len(keymap) != 0 {
			t.Fatalf("expected empty keymap for %q", path)
		}
	}
}

func TestFileKeymapStoreRejectsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keymap.json")
	if err := os.WriteFile(path, []byte(`{"meta": 126}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := NewFileKeymapStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for numeric code")
	}
}

func TestFileKeymapStoreRejectsUnusableCodes(t *testing.T) {
	dir := t.TempDir()
	for i, content := range []string{`{"meta":""}`, `{"meta":"  "}`, `{"meta":"12 6"}`, `{"meta":"[STR]"}`} {
		path := filepath.Join(dir, "keymap"+string(rune('a'+i))+".json")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := NewFileKeymapStore(path).Load(context.Background()); !errors.Is(err, types.ErrInvalidKeyCode) {
			t.Fatalf("%s: expected ErrInvalidKeyCode, got %v", content, err)
		}
	}

	path := filepath.Join(dir, "padded.json")
	if err := os.WriteFile(path, []byte(`{"meta":" 126 "}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	keymap, err := NewFileKeymapStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if code, _ := keymap.Lookup("meta"); code != "126" {
		t.Fatalf("expected trimmed code, got %q", code)
	}
}
