package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"liz/internal/config"
	"liz/internal/ident"
	"liz/internal/logging"
	"liz/internal/store"
	"liz/internal/types"
)

type fakeInjector struct {
	calls []string
	delay time.Duration
	err   error
}

func (f *fakeInjector) Inject(_ context.Context, sequence string, delay time.Duration) error {
	f.calls = append(f.calls, sequence)
	f.delay = delay
	return f.err
}

type memorySheetStore struct {
	saved *store.Sheet
	saves int
	err   error
}

func (m *memorySheetStore) Load(context.Context) (*store.Sheet, error) {
	if m.saved == nil {
		return store.NewSheet(nil, nil), nil
	}
	return m.saved, nil
}

func (m *memorySheetStore) Save(_ context.Context, sheet *store.Sheet) error {
	if m.err != nil {
		return m.err
	}
	m.saves++
	m.saved = store.NewSheet(sheet.Active(), sheet.Deleted())
	return nil
}

func (m *memorySheetStore) Close() error { return nil }

func record(app, desc, keys string, hits int64) *types.Shortcut {
	return &types.Shortcut{ID: ident.New(), HitNumber: hits, Shortcut: keys, Application: app, Description: desc}
}

type fixture struct {
	d        *Dispatcher
	injector *fakeInjector
	store    *memorySheetStore
	records  []*types.Shortcut
	logs     *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("LIZ_DATA_DIR", t.TempDir())
	records := []*types.Shortcut{
		record("vim", "save", ":w enter", 0),
		record("code", "palette", "ctrl+shift+p", 2),
		record("vim", "quit", ":q enter", 5),
	}
	inj := &fakeInjector{}
	mem := &memorySheetStore{}
	logs := &bytes.Buffer{}
	rhythm := config.DefaultRhythm()
	rhythm.IntervalMS = 7
	d := New(Options{
		Sheet:      store.NewSheet(types.CloneShortcuts(records), nil),
		Keymap:     types.NewKeymap(map[string]string{"ctrl": "17"}),
		Rhythm:     rhythm,
		RhythmPath: filepath.Join(t.TempDir(), "rhythm.toml"),
		Injector:   inj,
		SheetStore: mem,
		Logger:     logging.New(logs, logging.Debug),
	})
	return &fixture{d: d, injector: inj, store: mem, records: records, logs: logs}
}

func (f *fixture) play(t *testing.T, action string, args ...string) Response {
	t.Helper()
	return f.d.Play(context.Background(), Command{Action: action, Args: args})
}

func decodeRecords(t *testing.T, lines []string) []*types.Shortcut {
	t.Helper()
	out := make([]*types.Shortcut, 0, len(lines))
	for _, line := range lines {
		sc, err := types.ParseShortcut(line)
		if err != nil {
			t.Fatalf("ParseShortcut(%s): %v", line, err)
		}
		out = append(out, sc)
	}
	return out
}

func TestNewRanksSheet(t *testing.T) {
	f := newFixture(t)
	active := f.d.Sheet().Active()
	if active[0].Application != "code" || active[1].Description != "quit" || active[2].Description != "save" {
		t.Fatalf("unexpected initial order: %v", recordLines(active))
	}
}

func TestExecuteInjectsAndCountsHit(t *testing.T) {
	f := newFixture(t)
	save := f.records[0]

	resp := f.play(t, "execute", save.ID.String())
	if resp.Code != OK {
		t.Fatalf("expected OK, got %v %v", resp.Code, resp.Results)
	}
	if len(f.injector.calls) != 1 || f.injector.calls[0] != "[STR]+ :w[STR] enter.1 enter.0" {
		t.Fatalf("unexpected injection: %v", f.injector.calls)
	}
	if f.injector.delay != 7*time.Millisecond {
		t.Fatalf("unexpected delay %v", f.injector.delay)
	}
	got := decodeRecords(t, resp.Results)
	if len(got) != 1 || got[0].ID != save.ID || got[0].HitNumber != 1 {
		t.Fatalf("unexpected result: %v", resp.Results)
	}
}

func TestExecuteAcceptsDecimalIDAndUsesKeymap(t *testing.T) {
	f := newFixture(t)
	palette := f.records[1]
	resp := f.play(t, "execute", palette.ID.Decimal())
	if resp.Code != OK {
		t.Fatalf("expected OK, got %v %v", resp.Code, resp.Results)
	}
	if f.injector.calls[0] != "17.1 shift.1 p.1 p.0 shift.0 17.0" {
		t.Fatalf("unexpected injection: %q", f.injector.calls[0])
	}
}

func TestExecuteFailureKeepsHitCount(t *testing.T) {
	f := newFixture(t)
	f.injector.err = errors.New("no display")
	quit := f.records[2]

	resp := f.play(t, "execute", quit.ID.String())
	if resp.Code != FAIL {
		t.Fatalf("expected FAIL, got %v", resp.Code)
	}
	got, _ := f.d.Sheet().Get(quit.ID, store.CollectionActive)
	if got.HitNumber != 5 {
		t.Fatalf("hit count changed to %d", got.HitNumber)
	}
}

func TestExecuteRejectsBadArguments(t *testing.T) {
	f := newFixture(t)
	for _, args := range [][]string{nil, {"not-an-id"}, {ident.New().String()}} {
		if resp := f.play(t, "execute", args...); resp.Code != BUG {
			t.Fatalf("execute %v: expected BUG, got %v", args, resp.Code)
		}
	}
	if len(f.injector.calls) != 0 {
		t.Fatalf("injector must not run for rejected commands")
	}
}

func TestExecuteReranksByHits(t *testing.T) {
	f := newFixture(t)
	save := f.records[0]
	for i := 0; i < 6; i++ {
		if resp := f.play(t, "execute", save.ID.String()); resp.Code != OK {
			t.Fatalf("execute: %v", resp.Results)
		}
	}
	active := f.d.Sheet().Active()
	if active[1].ID != save.ID {
		t.Fatalf("expected save to lead the vim group, got %v", recordLines(active))
	}
}

func TestPersist(t *testing.T) {
	f := newFixture(t)
	if resp := f.play(t, "persist"); resp.Code != OK {
		t.Fatalf("persist: %v", resp.Results)
	}
	if f.store.saves != 1 || f.store.saved.Len() != 3 {
		t.Fatalf("sheet not saved")
	}
	f.store.err = errors.New("disk full")
	if resp := f.play(t, "persist"); resp.Code != BUG {
		t.Fatalf("expected BUG on save failure, got %v", resp.Code)
	}
}

func TestInfoListsDescriptors(t *testing.T) {
	f := newFixture(t)
	resp := f.play(t, "info")
	if resp.Code != OK || len(resp.Results) != len(f.d.Rhythm().Descriptors()) {
		t.Fatalf("unexpected info: %v", resp)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(resp.Results[0]), &entry); err != nil {
		t.Fatalf("descriptor is not JSON: %v", err)
	}
	for _, key := range []string{"name", "value", "hint"} {
		if _, ok := entry[key]; !ok {
			t.Fatalf("descriptor missing %s: %v", key, entry)
		}
	}
}

func TestGetShortcutDetails(t *testing.T) {
	f := newFixture(t)
	all := f.play(t, "get_shortcut_details")
	if all.Code != OK || len(all.Results) != 3 {
		t.Fatalf("expected all records, got %v", all)
	}
	some := f.play(t, "get_shortcut_details", "vim", "quit")
	got := decodeRecords(t, some.Results)
	if len(got) != 1 || got[0].ID != f.records[2].ID {
		t.Fatalf("unexpected search results: %v", some.Results)
	}
}

func TestNewID(t *testing.T) {
	f := newFixture(t)
	resp := f.play(t, "new_id")
	if resp.Code != OK || len(resp.Results) != 1 {
		t.Fatalf("unexpected response: %v", resp)
	}
	if _, err := ident.Parse(resp.Results[0]); err != nil {
		t.Fatalf("new id does not parse: %v", err)
	}
}

func TestCreateShortcuts(t *testing.T) {
	f := newFixture(t)
	fresh := record("shell", "clear", "ctrl+l", 0)
	dup := f.records[0].Clone()
	dup.ID = ident.New()

	resp := f.play(t, "create_shortcuts", fresh.JSON(), dup.JSON(), `{"shortcut":"f5"}`)
	if resp.Code != OK {
		t.Fatalf("create: %v", resp.Results)
	}
	if f.d.Sheet().Len() != 5 {
		t.Fatalf("expected duplicate to be dropped, have %d", f.d.Sheet().Len())
	}
	if _, ok := f.d.Sheet().Get(fresh.ID, store.CollectionActive); !ok {
		t.Fatalf("created record missing")
	}

	before := f.d.Sheet().Len()
	resp = f.play(t, "create_shortcuts", record("a", "b", "c", 0).JSON(), `{"hit_number": -1}`)
	if resp.Code != BUG {
		t.Fatalf("expected BUG for invalid record, got %v", resp.Code)
	}
	if f.d.Sheet().Len() != before {
		t.Fatalf("invalid batch must not be applied")
	}
}

func TestUpdateShortcuts(t *testing.T) {
	f := newFixture(t)
	next := f.records[0].Clone()
	next.Shortcut = ":wq enter"
	stray := record("x", "y", "z", 0)

	resp := f.play(t, "update_shortcuts", next.JSON(), stray.JSON())
	if resp.Code != FAIL {
		t.Fatalf("expected FAIL for unmatched record, got %v", resp.Code)
	}
	unmatched := decodeRecords(t, resp.Results)
	if len(unmatched) != 1 || unmatched[0].ID != stray.ID {
		t.Fatalf("unexpected unmatched: %v", resp.Results)
	}
	got, _ := f.d.Sheet().Get(next.ID, store.CollectionActive)
	if got.Shortcut != ":wq enter" {
		t.Fatalf("record not updated")
	}
	deleted := f.play(t, "get_deleted_shortcut_details")
	old := decodeRecords(t, deleted.Results)
	if len(old) != 1 || old[0].Shortcut != ":w enter" {
		t.Fatalf("expected previous value in deleted: %v", deleted.Results)
	}

	if resp := f.play(t, "update_shortcuts", next.JSON()); resp.Code != OK {
		t.Fatalf("expected OK, got %v", resp.Code)
	}
	if resp := f.play(t, "update_shortcuts", "{"); resp.Code != BUG {
		t.Fatalf("expected BUG, got %v", resp.Code)
	}
}

func TestDeleteShortcuts(t *testing.T) {
	f := newFixture(t)
	missing := ident.New()
	resp := f.play(t, "delete_shortcuts", f.records[0].ID.String(), missing.String())
	if resp.Code != BUG {
		t.Fatalf("expected BUG for non-existent id, got %v", resp.Code)
	}
	if len(resp.Results) != 1 || !strings.Contains(resp.Results[0], missing.String()) {
		t.Fatalf("expected offending id in results: %v", resp.Results)
	}
	if f.d.Sheet().Len() != 3 {
		t.Fatalf("nothing should be deleted on BUG")
	}

	if resp := f.play(t, "delete_shortcuts", "garbage"); resp.Code != BUG {
		t.Fatalf("expected BUG for garbage id")
	}

	resp = f.play(t, "delete_shortcuts", f.records[0].ID.String(), f.records[1].ID.Decimal())
	if resp.Code != OK {
		t.Fatalf("delete: %v", resp.Results)
	}
	if f.d.Sheet().Len() != 1 || len(f.d.Sheet().Deleted()) != 2 {
		t.Fatalf("unexpected sheet after delete")
	}

	if resp := f.play(t, "clear_deleted"); resp.Code != OK || len(f.d.Sheet().Deleted()) != 0 {
		t.Fatalf("clear_deleted did not empty the deleted collection")
	}
}

func TestExportAndImportShortcuts(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "vim.json")

	resp := f.play(t, "export_shortcuts", path, f.records[0].ID.String(), f.records[2].ID.String())
	if resp.Code != OK {
		t.Fatalf("export: %v", resp.Results)
	}
	exported, err := store.ImportSheet(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportSheet: %v", err)
	}
	if len(exported) != 2 {
		t.Fatalf("expected 2 exported records, got %d", len(exported))
	}

	if resp := f.play(t, "export_shortcuts", path, ident.New().String()); resp.Code != BUG {
		t.Fatalf("expected BUG for unknown id, got %v", resp.Code)
	}
	if resp := f.play(t, "export_shortcuts"); resp.Code != BUG {
		t.Fatalf("expected BUG without path")
	}
	blocked := filepath.Join(path, "inside-a-file.json")
	if resp := f.play(t, "export_shortcuts", blocked, f.records[0].ID.String()); resp.Code != FAIL {
		t.Fatalf("expected FAIL for unwritable path, got %v", resp.Code)
	}

	other := []*types.Shortcut{record("shell", "clear", "ctrl+l", 0)}
	otherPath := filepath.Join(dir, "shell.json")
	if err := store.ExportSheet(otherPath, other); err != nil {
		t.Fatalf("ExportSheet: %v", err)
	}
	missing := filepath.Join(dir, "missing.json")
	resp = f.play(t, "import_shortcuts", path, otherPath, missing)
	if resp.Code != FAIL || len(resp.Results) != 1 || resp.Results[0] != missing {
		t.Fatalf("expected FAIL naming missing path, got %v", resp)
	}
	if f.d.Sheet().Len() != 4 {
		t.Fatalf("expected re-imported records to dedup, have %d", f.d.Sheet().Len())
	}
	if resp := f.play(t, "import_shortcuts"); resp.Code != BUG {
		t.Fatalf("expected BUG without paths")
	}
}

func TestUpdateRhythm(t *testing.T) {
	f := newFixture(t)
	keymapPath := filepath.Join(t.TempDir(), "keymap.json")
	var loaded []string
	f.d.loadKeymap = func(_ context.Context, path string) (types.Keymap, error) {
		loaded = append(loaded, path)
		return types.NewKeymap(map[string]string{"shift": "16"}), nil
	}

	raw := `{"interval_ms": 30, "keymap_path": "` + keymapPath + `"}`
	resp := f.play(t, "update_rhythm", raw)
	if resp.Code != OK || len(resp.Results) != 1 || resp.Results[0] != f.d.rhythmPath {
		t.Fatalf("unexpected response %v", resp)
	}
	if f.d.Rhythm().IntervalMS != 30 {
		t.Fatalf("rhythm not swapped in")
	}
	if len(loaded) != 1 || loaded[0] != keymapPath {
		t.Fatalf("keymap not reloaded: %v", loaded)
	}
	if code, _ := f.d.Keymap().Lookup("shift"); code != "16" {
		t.Fatalf("new keymap not active")
	}
	saved, err := config.LoadRhythm(f.d.rhythmPath)
	if err != nil || saved.IntervalMS != 30 {
		t.Fatalf("rhythm not saved: %v %#v", err, saved)
	}

	for _, args := range [][]string{nil, {"{"}, {`{"theme":"neon"}`}, {`{"unknown":1}`}} {
		if resp := f.play(t, "update_rhythm", args...); resp.Code != BUG {
			t.Fatalf("update_rhythm %v: expected BUG, got %v", args, resp.Code)
		}
	}
}

func TestUpdateRhythmSaveFailureStillSwaps(t *testing.T) {
	f := newFixture(t)
	f.d.saveRhythm = func(config.Rhythm, string) (string, error) {
		return "", errors.New("read-only")
	}
	resp := f.play(t, "update_rhythm", `{"interval_ms": 55}`)
	if resp.Code != FAIL {
		t.Fatalf("expected FAIL, got %v", resp.Code)
	}
	if f.d.Rhythm().IntervalMS != 55 {
		t.Fatalf("new rhythm should be in effect")
	}
}

func TestSortShortcuts(t *testing.T) {
	f := newFixture(t)
	if resp := f.play(t, "sort_shortcuts", "hit_number", "desc"); resp.Code != OK {
		t.Fatalf("sort: %v", resp.Results)
	}
	if f.d.Sheet().Active()[0].ID != f.records[2].ID {
		t.Fatalf("expected most hits first")
	}
	for _, args := range [][]string{nil, {"color"}, {"hit_number", "up"}} {
		if resp := f.play(t, "sort_shortcuts", args...); resp.Code != BUG {
			t.Fatalf("sort_shortcuts %v: expected BUG", args)
		}
	}
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"explode", "Execute", ""} {
		resp := f.play(t, name)
		if resp.Code != BUG || len(resp.Results) != 1 || resp.Results[0] != "invalid action: "+name {
			t.Fatalf("unexpected response for %q: %v", name, resp)
		}
	}
	if !strings.Contains(f.logs.String(), "level=error") {
		t.Fatalf("expected BUG to be logged at error level:\n%s", f.logs.String())
	}
}

func TestEveryActionIsHandled(t *testing.T) {
	f := newFixture(t)
	for _, action := range Actions() {
		if ParseAction(action.String()) != action {
			t.Fatalf("action %d does not round trip through its name", int(action))
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("action %s panicked: %v", action, r)
				}
			}()
			f.play(t, action.String())
		}()
	}
}

func TestResponseJSON(t *testing.T) {
	data, err := json.Marshal(Response{Code: FAIL, Results: []string{"x"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"code":"FAIL","results":["x"]}` {
		t.Fatalf("unexpected json %s", data)
	}
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil || resp.Code != FAIL {
		t.Fatalf("Unmarshal: %v %v", err, resp)
	}
	if _, err := ParseCommand([]byte(`{"action":"info","args":[]}`)); err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if _, err := ParseCommand([]byte(`{"args":[]}`)); err == nil {
		t.Fatalf("expected error for missing action")
	}
}
