package store

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"liz/internal/types"
)

// ConvertCheatSheet extracts shortcuts from a markdown cheat sheet. Only
// tables whose header is exactly "Shortcut | Action" are read; the nearest
// preceding level-3 heading becomes part of the description.
func ConvertCheatSheet(src []byte, application string) []*types.Shortcut {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		section string
		out     []*types.Shortcut
	)
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.Heading:
			if n.Level == 3 {
				section = sectionTitle(nodeText(n, src))
			}
		case *extast.Table:
			out = append(out, tableShortcuts(n, src, section, application)...)
		}
	}
	return out
}

func tableShortcuts(table *extast.Table, src []byte, section, application string) []*types.Shortcut {
	var out []*types.Shortcut
	headerOK := false
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		cells := rowCells(row, src)
		if _, isHeader := row.(*extast.TableHeader); isHeader {
			headerOK = len(cells) == 2 &&
				strings.EqualFold(cells[0], "shortcut") &&
				strings.EqualFold(cells[1], "action")
			continue
		}
		if !headerOK {
			return nil
		}
		if len(cells) < 2 {
			continue
		}
		keys := strings.TrimSpace(strings.ReplaceAll(cells[0], "`", ""))
		action := strings.TrimSpace(cells[1])
		if keys == "" {
			continue
		}
		description := action
		if section != "" {
			description = "(" + section + ") " + action
		}
		sc := types.NewShortcut()
		sc.Shortcut = cheatSheetKeys(keys)
		sc.Application = application
		sc.Description = description
		out = append(out, sc)
	}
	return out
}

var spacedPlus = regexp.MustCompile(`\s*\+\s*`)

// cheatSheetKeys turns "Ctrl Space" and "Ctrl + S" alike into the combo
// form "ctrl+space" / "ctrl+s".
func cheatSheetKeys(keys string) string {
	keys = spacedPlus.ReplaceAllString(strings.ToLower(keys), "+")
	return strings.Join(strings.Fields(keys), "+")
}

func rowCells(row ast.Node, src []byte) []string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*extast.TableCell); ok {
			cells = append(cells, strings.TrimSpace(nodeText(cell, src)))
		}
	}
	return cells
}

// sectionTitle drops trailing attribute blocks such as "{.cols-2}".
func sectionTitle(title string) string {
	if i := strings.Index(title, " {"); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

func nodeText(node ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}
