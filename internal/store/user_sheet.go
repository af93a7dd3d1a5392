package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"liz/internal/types"
)

const (
	sheetExt           = ".json"
	maxParallelImports = 4
)

// SheetPorter moves bare record lists in and out of user sheet files.
type SheetPorter interface {
	Import(ctx context.Context, path string) ([]*types.Shortcut, error)
	Export(ctx context.Context, path string, records []*types.Shortcut) error
}

type FilePorter struct{}

func (FilePorter) Import(ctx context.Context, path string) ([]*types.Shortcut, error) {
	return ImportSheet(ctx, path)
}

func (FilePorter) Export(ctx context.Context, path string, records []*types.Shortcut) error {
	return ExportSheet(path, records)
}

// ImportSheet reads a user sheet. A file holds a JSON list of records; a
// directory contributes every .json file in it, in file name order.
func ImportSheet(ctx context.Context, path string) ([]*types.Shortcut, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sheet path is required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	switch {
	case info.Mode().IsRegular():
		return readSheetFile(path)
	case info.IsDir():
		return importSheetDir(ctx, path)
	default:
		return nil, fmt.Errorf("%s is neither a file nor a directory", path)
	}
}

func importSheetDir(ctx context.Context, dir string) ([]*types.Shortcut, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || filepath.Ext(entry.Name()) != sheetExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	results := make([][]*types.Shortcut, len(files))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(maxParallelImports)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := readSheetFile(file)
			if err != nil {
				return err
			}
			results[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	var out []*types.Shortcut
	for _, records := range results {
		out = append(out, records...)
	}
	return out, nil
}

func readSheetFile(path string) ([]*types.Shortcut, error) {
	var records []*types.Shortcut
	if err := readJSON(path, &records); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", path, err)
	}
	return compact(records), nil
}

// ExportSheet writes records as a bare JSON list, replacing any existing file.
func ExportSheet(path string, records []*types.Shortcut) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("sheet path is required")
	}
	if err := writeJSONAtomic(path, nonNil(records)); err != nil {
		return fmt.Errorf("write sheet %s: %w", path, err)
	}
	return nil
}
