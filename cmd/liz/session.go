package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"liz/internal/config"
	"liz/internal/dispatch"
	"liz/internal/ident"
	"liz/internal/injector"
	"liz/internal/logging"
	"liz/internal/store"
	"liz/internal/types"
)

type sessionOptions struct {
	dryRun    bool
	eventsOut io.Writer
	logOut    io.Writer
}

type sessionFactory func(ctx context.Context, opts sessionOptions) (*session, error)

// session is one loaded launcher: rhythm, sheet, keymap and the
// dispatcher that owns them.
type session struct {
	rhythm     config.Rhythm
	dispatcher *dispatch.Dispatcher
	sheetStore store.SheetStore
	logger     logging.Logger
}

func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	rhythmPath, err := config.RhythmPath()
	if err != nil {
		return nil, err
	}
	rhythm, err := config.LoadRhythm(rhythmPath)
	if err != nil {
		return nil, err
	}
	logger := logging.New(opts.logOut, logging.ParseLevel(rhythm.LogLevel))

	sheetStore, err := store.OpenSheetStore(rhythm.MusicSheetPath, rhythm.StorageBackend)
	if err != nil {
		return nil, err
	}
	sheet, err := sheetStore.Load(ctx)
	if err != nil {
		_ = sheetStore.Close()
		return nil, err
	}

	keymap, err := loadKeymap(ctx, rhythm.KeymapPath, logger)
	if err != nil {
		_ = sheetStore.Close()
		return nil, err
	}

	injectorName := rhythm.Injector
	if opts.dryRun {
		injectorName = injector.NameDryRun
	}
	inj, err := injector.New(injectorName, opts.eventsOut, logger)
	if err != nil {
		_ = sheetStore.Close()
		return nil, err
	}

	logger.Debug("session_opened",
		logging.F("music_sheet", rhythm.MusicSheetPath),
		logging.F("backend", rhythm.StorageBackend),
		logging.F("records", sheet.Len()),
		logging.F("injector", injectorName),
	)
	return &session{
		rhythm: rhythm,
		dispatcher: dispatch.New(dispatch.Options{
			Sheet:      sheet,
			Keymap:     keymap,
			Rhythm:     rhythm,
			RhythmPath: rhythmPath,
			Injector:   inj,
			SheetStore: sheetStore,
			Logger:     logger,
			LoadKeymap: func(ctx context.Context, path string) (types.Keymap, error) {
				return loadKeymap(ctx, path, logger)
			},
		}),
		sheetStore: sheetStore,
		logger:     logger,
	}, nil
}

func loadKeymap(ctx context.Context, path string, logger logging.Logger) (types.Keymap, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Warn("keymap_missing", logging.F("path", path))
		}
	}
	return store.NewFileKeymapStore(path).Load(ctx)
}

// lookup finds an active record by either id form.
func (s *session) lookup(raw string) (*types.Shortcut, error) {
	id, err := ident.Parse(raw)
	if err != nil {
		return nil, err
	}
	sc, ok := s.dispatcher.Sheet().Get(id, store.CollectionActive)
	if !ok {
		return nil, fmt.Errorf("shortcut %s not found", id)
	}
	return sc, nil
}

func (s *session) persist(ctx context.Context) error {
	return s.dispatcher.Persist(ctx)
}

func (s *session) Close() error {
	return s.sheetStore.Close()
}

// uiLogWriter opens the UI log in the data dir; the terminal belongs to
// the launcher while it runs.
func uiLogWriter() (io.WriteCloser, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, err
	}
	return os.OpenFile(filepath.Join(dataDir, "ui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}
