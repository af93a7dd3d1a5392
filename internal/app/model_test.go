package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"liz/internal/clipboard"
	"liz/internal/ident"
	"liz/internal/store"
	"liz/internal/types"
)

func testSheet() *store.Sheet {
	return store.NewSheet([]*types.Shortcut{
		{ID: ident.New(), Shortcut: "ctrl+s", Application: "code", Description: "save file"},
		{ID: ident.New(), Shortcut: "ctrl+shift+p", Application: "code", Description: "command palette"},
		{ID: ident.New(), Shortcut: ":q enter", Application: "vim", Description: "quit"},
	}, nil)
}

func typeQuery(m *Model, query string) {
	for _, r := range query {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestModelListsEverythingInitially(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	if len(m.results) != 3 || m.current() == nil {
		t.Fatalf("expected all records, got %d", len(m.results))
	}
}

func TestModelFiltersAsYouType(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	typeQuery(m, "vim")
	if len(m.results) != 1 || m.results[0].Description != "quit" {
		t.Fatalf("unexpected results: %v", m.results)
	}
	if m.fuzzy {
		t.Fatalf("strict match should not be marked fuzzy")
	}
}

func TestModelFallsBackToRankedSearch(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	typeQuery(m, "cmdpal")
	if !m.fuzzy || len(m.results) == 0 || m.results[0].Description != "command palette" {
		t.Fatalf("expected fuzzy fallback, got fuzzy=%v %v", m.fuzzy, m.results)
	}
	if !strings.Contains(m.View(), "(fuzzy)") {
		t.Fatalf("expected fuzzy marker in view")
	}
}

func TestModelEnterSelectsAndQuits(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	want := m.results[1]

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
	if m.Selected() != want {
		t.Fatalf("unexpected selection %v", m.Selected())
	}
	if m.View() != "" {
		t.Fatalf("expected empty view after quitting")
	}
}

func TestModelEnterWithoutResults(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	typeQuery(m, "zzzzzz")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || m.Selected() != nil {
		t.Fatalf("enter on empty list must not quit")
	}
	if !m.statusError {
		t.Fatalf("expected error status")
	}
}

func TestModelEscQuitsWithoutSelection(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil || m.Selected() != nil {
		t.Fatalf("esc should quit without a selection")
	}
}

func TestModelCursorStaysInBounds(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 0 {
		t.Fatalf("cursor moved above the list")
	}
	for i := 0; i < 10; i++ {
		m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.cursor != 2 {
		t.Fatalf("cursor should stop at the last row, got %d", m.cursor)
	}
}

func TestModelScrollsWithSmallWindow(t *testing.T) {
	m := NewModel(Options{Source: testSheet()})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: chromeLines + 1})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.offset != 2 {
		t.Fatalf("expected list to scroll, offset=%d", m.offset)
	}
	view := m.View()
	if !strings.Contains(view, m.results[2].Description) || strings.Contains(view, m.results[0].Description) {
		t.Fatalf("unexpected visible rows:\n%s", view)
	}
}

func TestModelCopyUsesClipboard(t *testing.T) {
	var copied string
	m := NewModel(Options{Source: testSheet(), Copy: func(_ context.Context, text string) (clipboard.Method, error) {
		copied = text
		return clipboard.MethodOSC52, nil
	}})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if copied != m.results[0].Shortcut {
		t.Fatalf("unexpected copied text %q", copied)
	}
	if m.statusError || !strings.Contains(m.status, "osc52") {
		t.Fatalf("unexpected status %q", m.status)
	}

	m.copy = func(context.Context, string) (clipboard.Method, error) {
		return clipboard.MethodSystem, errors.New("no clipboard")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if !m.statusError || !strings.Contains(m.status, "no clipboard") {
		t.Fatalf("expected copy failure status, got %q", m.status)
	}
}

func TestModelDetailsToggle(t *testing.T) {
	m := NewModel(Options{Source: testSheet(), Dark: true})
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if !m.showDetails {
		t.Fatalf("expected details pane")
	}
	if !strings.Contains(m.View(), "save") {
		t.Fatalf("expected details of current record")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	if m.showDetails {
		t.Fatalf("expected details pane to close")
	}
}

func TestShortcutMarkdown(t *testing.T) {
	sc := &types.Shortcut{ID: ident.New(), HitNumber: 4, Shortcut: "ctrl+s", Application: "a|b", Description: "# save", Comment: "note"}
	md := ShortcutMarkdown(sc)
	for _, want := range []string{"## \\# save", "a\\|b", "`ctrl+s`", "| hits | 4 |", "> note", sc.ID.String()} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
	if out := RenderShortcut(sc, 60, false); !strings.Contains(out, "ctrl+s") {
		t.Fatalf("rendered output missing shortcut:\n%s", out)
	}
}
