package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"liz/internal/config"
	"liz/internal/encoder"
	"liz/internal/ident"
	"liz/internal/injector"
	"liz/internal/logging"
	"liz/internal/store"
	"liz/internal/types"
)

type KeymapLoader func(ctx context.Context, path string) (types.Keymap, error)

type RhythmSaver func(rhythm config.Rhythm, path string) (string, error)

type Options struct {
	Sheet      *store.Sheet
	Keymap     types.Keymap
	Rhythm     config.Rhythm
	RhythmPath string
	Injector   injector.Injector
	SheetStore store.SheetStore
	Porter     store.SheetPorter
	LoadKeymap KeymapLoader
	SaveRhythm RhythmSaver
	Logger     logging.Logger
}

// Dispatcher owns the sheet, keymap and rhythm and answers commands one at
// a time.
type Dispatcher struct {
	mu         sync.Mutex
	sheet      *store.Sheet
	keymap     types.Keymap
	rhythm     config.Rhythm
	rhythmPath string
	injector   injector.Injector
	sheetStore store.SheetStore
	porter     store.SheetPorter
	loadKeymap KeymapLoader
	saveRhythm RhythmSaver
	logger     logging.Logger
}

func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		sheet:      opts.Sheet,
		keymap:     opts.Keymap,
		rhythm:     opts.Rhythm,
		rhythmPath: opts.RhythmPath,
		injector:   opts.Injector,
		sheetStore: opts.SheetStore,
		porter:     opts.Porter,
		loadKeymap: opts.LoadKeymap,
		saveRhythm: opts.SaveRhythm,
		logger:     opts.Logger,
	}
	if d.sheet == nil {
		d.sheet = store.NewSheet(nil, nil)
	}
	if d.keymap == nil {
		d.keymap = types.Keymap{}
	}
	if d.porter == nil {
		d.porter = store.FilePorter{}
	}
	if d.loadKeymap == nil {
		d.loadKeymap = func(ctx context.Context, path string) (types.Keymap, error) {
			return store.NewFileKeymapStore(path).Load(ctx)
		}
	}
	if d.saveRhythm == nil {
		d.saveRhythm = func(rhythm config.Rhythm, path string) (string, error) {
			return rhythm.Save(path)
		}
	}
	if d.logger == nil {
		d.logger = logging.Nop()
	}
	d.sheet.Rank()
	return d
}

// Play handles one command. It never panics on caller input.
func (d *Dispatcher) Play(ctx context.Context, cmd Command) Response {
	d.mu.Lock()
	defer d.mu.Unlock()

	logger := d.logger.With(
		logging.F("request_id", logging.NewRequestID()),
		logging.F("action", cmd.Action),
	)
	resp := d.play(ctx, ParseAction(cmd.Action), cmd)
	switch resp.Code {
	case BUG:
		logger.Error("command_rejected", logging.F("code", resp.Code), logging.F("results", resp.Results))
	case FAIL:
		logger.Warn("command_failed", logging.F("code", resp.Code), logging.F("results", resp.Results))
	default:
		logger.Info("command_handled", logging.F("code", resp.Code), logging.F("args", len(cmd.Args)))
	}
	return resp
}

func (d *Dispatcher) play(ctx context.Context, action Action, cmd Command) Response {
	args := cmd.Args
	switch action {
	case ActionUnknown:
		return bug("invalid action: %s", cmd.Action)
	case ActionExecute:
		return d.execute(ctx, args)
	case ActionPersist:
		return d.persist(ctx)
	case ActionInfo:
		return ok(d.rhythm.DescriptorStrings()...)
	case ActionGetShortcutDetails:
		return ok(recordLines(d.sheet.Search(strings.Join(args, " ")))...)
	case ActionGetDeletedShortcutDetails:
		return ok(recordLines(d.sheet.Deleted())...)
	case ActionNewID:
		return ok(ident.New().String())
	case ActionCreateShortcuts:
		return d.createShortcuts(args)
	case ActionUpdateShortcuts:
		return d.updateShortcuts(args)
	case ActionDeleteShortcuts:
		return d.deleteShortcuts(args)
	case ActionExportShortcuts:
		return d.exportShortcuts(ctx, args)
	case ActionImportShortcuts:
		return d.importShortcuts(ctx, args)
	case ActionUpdateRhythm:
		return d.updateRhythm(ctx, args)
	case ActionClearDeleted:
		d.sheet.ClearDeleted()
		return ok()
	case ActionSortShortcuts:
		return d.sortShortcuts(args)
	default:
		panic(fmt.Sprintf("dispatch: unhandled action %d", int(action)))
	}
}

func (d *Dispatcher) execute(ctx context.Context, args []string) Response {
	if len(args) == 0 {
		return bug("execute requires a shortcut id")
	}
	id, err := ident.Parse(args[0])
	if err != nil {
		return bug("invalid id %q: %v", args[0], err)
	}
	record, found := d.sheet.Get(id, store.CollectionActive)
	if !found {
		return bug("shortcut %s not found", id)
	}
	if d.injector == nil {
		return fail("no keystroke injector configured")
	}
	sequence := encoder.Encode(record.Shortcut, d.keymap)
	if err := d.injector.Inject(ctx, sequence, d.rhythm.Interval()); err != nil {
		return fail(fmt.Sprintf("inject %s: %v", id, err))
	}
	if err := d.sheet.IncrementHits(id); err != nil {
		return bug("%v", err)
	}
	d.sheet.Rank()
	return ok(record.JSON())
}

func (d *Dispatcher) persist(ctx context.Context) Response {
	if d.sheetStore == nil {
		return bug("no sheet store configured")
	}
	if err := d.sheetStore.Save(ctx, d.sheet); err != nil {
		return bug("persist: %v", err)
	}
	return ok()
}

func (d *Dispatcher) createShortcuts(args []string) Response {
	records, resp, valid := parseRecords(args)
	if !valid {
		return resp
	}
	d.sheet.Add(records, true)
	return ok()
}

func (d *Dispatcher) updateShortcuts(args []string) Response {
	records, resp, valid := parseRecords(args)
	if !valid {
		return resp
	}
	unmatched := d.sheet.Update(records)
	if len(unmatched) > 0 {
		return fail(recordLines(unmatched)...)
	}
	return ok()
}

func (d *Dispatcher) deleteShortcuts(args []string) Response {
	ids, bad := d.activeIDs(args)
	if len(bad) > 0 {
		return Response{Code: BUG, Results: bad}
	}
	d.sheet.Delete(ids)
	return ok()
}

func (d *Dispatcher) exportShortcuts(ctx context.Context, args []string) Response {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return bug("export_shortcuts requires a destination path")
	}
	path := args[0]
	var records []*types.Shortcut
	if len(args) == 1 {
		records = d.sheet.Active()
	} else {
		ids, bad := d.activeIDs(args[1:])
		if len(bad) > 0 {
			return Response{Code: BUG, Results: bad}
		}
		for _, id := range ids {
			record, _ := d.sheet.Get(id, store.CollectionActive)
			records = append(records, record)
		}
	}
	if err := d.porter.Export(ctx, path, records); err != nil {
		return fail(err.Error())
	}
	return ok(path)
}

func (d *Dispatcher) importShortcuts(ctx context.Context, args []string) Response {
	if len(args) == 0 {
		return bug("import_shortcuts requires at least one path")
	}
	var failed []string
	for _, path := range args {
		records, err := d.porter.Import(ctx, path)
		if err != nil {
			d.logger.Warn("import_failed", logging.F("path", path), logging.Err(err))
			failed = append(failed, path)
			continue
		}
		d.sheet.Add(records, true)
	}
	d.sheet.Rank()
	if len(failed) > 0 {
		return fail(failed...)
	}
	return ok()
}

func (d *Dispatcher) updateRhythm(ctx context.Context, args []string) Response {
	if len(args) == 0 {
		return bug("update_rhythm requires a rhythm JSON object")
	}
	next, err := config.ParseRhythmJSON(args[0])
	if err != nil {
		return bug("%v", err)
	}
	if err := next.Validate(); err != nil {
		return bug("%v", err)
	}
	path, saveErr := d.saveRhythm(next, d.rhythmPath)

	if next.KeymapPath != d.rhythm.KeymapPath {
		keymap, err := d.loadKeymap(ctx, next.KeymapPath)
		if err != nil {
			d.logger.Warn("keymap_reload_failed", logging.F("path", next.KeymapPath), logging.Err(err))
			keymap = types.Keymap{}
		}
		d.keymap = keymap
	}
	d.rhythm = next

	if saveErr != nil {
		return fail(fmt.Sprintf("save rhythm: %v", saveErr))
	}
	return ok(path)
}

func (d *Dispatcher) sortShortcuts(args []string) Response {
	if len(args) == 0 {
		return bug("sort_shortcuts requires a column")
	}
	column := args[0]
	if !store.IsSortColumn(column) {
		return bug("unknown sort column %q", column)
	}
	ascending := true
	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "asc":
		case "desc":
			ascending = false
		default:
			return bug("sort direction must be asc or desc, got %q", args[1])
		}
	}
	d.sheet.Sort(column, ascending)
	return ok()
}

// activeIDs parses ids and checks each against the active collection.
// Offending arguments are reported and nothing should be applied.
func (d *Dispatcher) activeIDs(args []string) ([]ident.ID, []string) {
	ids := make([]ident.ID, 0, len(args))
	var bad []string
	for _, raw := range args {
		id, err := ident.Parse(raw)
		if err != nil {
			bad = append(bad, fmt.Sprintf("invalid id %q", raw))
			continue
		}
		if _, found := d.sheet.Get(id, store.CollectionActive); !found {
			bad = append(bad, fmt.Sprintf("shortcut %s not found", id))
			continue
		}
		ids = append(ids, id)
	}
	return ids, bad
}

// parseRecords is all or nothing: one bad record rejects the batch.
func parseRecords(args []string) ([]*types.Shortcut, Response, bool) {
	records := make([]*types.Shortcut, 0, len(args))
	for i, raw := range args {
		record, err := types.ParseShortcut(raw)
		if err != nil {
			return nil, bug("record %d: %v", i, err), false
		}
		records = append(records, record)
	}
	return records, Response{}, true
}

func recordLines(records []*types.Shortcut) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.JSON())
	}
	return out
}

// Sheet exposes the dispatcher's sheet for hosts that persist on shutdown.
// Callers must not use it concurrently with Play.
func (d *Dispatcher) Sheet() *store.Sheet {
	return d.sheet
}

func (d *Dispatcher) Rhythm() config.Rhythm {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rhythm
}

func (d *Dispatcher) Keymap() types.Keymap {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keymap
}

// Persist saves the sheet through the configured store.
func (d *Dispatcher) Persist(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sheetStore == nil {
		return errors.New("no sheet store configured")
	}
	return d.sheetStore.Save(ctx, d.sheet)
}
