package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"

	"liz/internal/app"
	"liz/internal/types"
)

type tableColumn struct {
	title string
	width int
	value func(sc *types.Shortcut) string
}

var shortcutColumns = []tableColumn{
	{title: "ID", width: 36, value: func(sc *types.Shortcut) string { return sc.ID.String() }},
	{title: "HITS", width: 5, value: func(sc *types.Shortcut) string { return fmt.Sprintf("%d", sc.HitNumber) }},
	{title: "APPLICATION", width: 18, value: func(sc *types.Shortcut) string { return sc.Application }},
	{title: "SHORTCUT", width: 24, value: func(sc *types.Shortcut) string { return sc.Shortcut }},
	{title: "DESCRIPTION", width: 48, value: func(sc *types.Shortcut) string { return sc.Description }},
}

// printShortcuts writes a fixed-width table. Cells are measured in
// terminal columns so wide runes line up.
func printShortcuts(output io.Writer, records []*types.Shortcut) {
	titles := make([]string, 0, len(shortcutColumns))
	for _, col := range shortcutColumns {
		titles = append(titles, fitCell(col.title, col.width))
	}
	fmt.Fprintln(output, app.HeaderStyle().Render(strings.TrimRight(strings.Join(titles, "  "), " ")))
	for _, sc := range records {
		cells := make([]string, 0, len(shortcutColumns))
		for _, col := range shortcutColumns {
			cells = append(cells, fitCell(col.value(sc), col.width))
		}
		fmt.Fprintln(output, strings.TrimRight(strings.Join(cells, "  "), " "))
	}
}

func fitCell(value string, width int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	return runewidth.FillRight(runewidth.Truncate(value, width, "…"), width)
}

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}
