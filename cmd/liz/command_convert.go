package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"liz/internal/store"
)

type ConvertCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewConvertCommand(stdout, stderr io.Writer) *ConvertCommand {
	return &ConvertCommand{stdout: stdout, stderr: stderr}
}

// Run converts a markdown cheat sheet. Without an output path the user
// sheet is printed to stdout.
func (c *ConvertCommand) Run(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	application := fs.String("app", "", "application name (default: input file name)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errors.New("usage: liz convert [--app name] <input.md> [output.json]")
	}
	input := fs.Arg(0)
	src, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(*application)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	records := store.ConvertCheatSheet(src, name)

	if fs.NArg() == 2 {
		if err := store.ExportSheet(fs.Arg(1), records); err != nil {
			return err
		}
		_, err := fmt.Fprintf(c.stderr, "wrote %d shortcuts to %s\n", len(records), fs.Arg(1))
		return err
	}
	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")
	if records == nil {
		return encoder.Encode([]any{})
	}
	return encoder.Encode(records)
}
