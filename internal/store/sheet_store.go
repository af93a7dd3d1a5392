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

const (
	BackendFile  = "file"
	BackendBbolt = "bbolt"
)

// SheetStore persists the whole sheet, active and deleted records alike.
type SheetStore interface {
	Load(ctx context.Context) (*Sheet, error)
	Save(ctx context.Context, sheet *Sheet) error
	Close() error
}

// OpenSheetStore picks the persistence backend for the music sheet.
func OpenSheetStore(path, backend string) (SheetStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("music sheet path is required")
	}
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileSheetStore(path), nil
	case BackendBbolt:
		return NewBboltSheetStore(path)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", backend)
	}
}

// sheetFile is the on-disk layout: two named lists.
type sheetFile struct {
	Deleted []*types.Shortcut `json:"deleted"`
	Data    []*types.Shortcut `json:"data"`
}

type FileSheetStore struct {
	path string
	mu   sync.Mutex
}

func NewFileSheetStore(path string) *FileSheetStore {
	return &FileSheetStore{path: path}
}

// Load reads the sheet; a missing file yields an empty sheet.
func (s *FileSheetStore) Load(ctx context.Context) (*Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var file sheetFile
	if err := readJSON(s.path, &file); err != nil {
		if errors.Is(err, os.ErrNotExist) || errors.Is(err, errEmptyFile) {
			return NewSheet(nil, nil), nil
		}
		return nil, fmt.Errorf("load music sheet %s: %w", s.path, err)
	}
	return NewSheet(file.Data, file.Deleted), nil
}

func (s *FileSheetStore) Save(ctx context.Context, sheet *Sheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sheet == nil {
		return errors.New("sheet is required")
	}
	file := sheetFile{
		Deleted: nonNil(sheet.deleted),
		Data:    nonNil(sheet.active),
	}
	if err := writeJSONAtomic(s.path, file); err != nil {
		return fmt.Errorf("save music sheet %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSheetStore) Close() error {
	return nil
}

func nonNil(in []*types.Shortcut) []*types.Shortcut {
	if in == nil {
		return []*types.Shortcut{}
	}
	return in
}
