package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"liz/internal/config"
	"liz/internal/encoder"
	"liz/internal/store"
)

type EncodeCommand struct {
	stdout io.Writer
	stderr io.Writer
}

func NewEncodeCommand(stdout, stderr io.Writer) *EncodeCommand {
	return &EncodeCommand{stdout: stdout, stderr: stderr}
}

func (c *EncodeCommand) Run(args []string) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	keymapPath := fs.String("keymap", "", "keymap JSON file (default: rhythm keymap_path)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("shortcut text is required")
	}

	path := strings.TrimSpace(*keymapPath)
	if path == "" {
		rhythm, err := config.LoadRhythm("")
		if err != nil {
			return err
		}
		path = rhythm.KeymapPath
	}
	keymap, err := store.NewFileKeymapStore(path).Load(context.Background())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.stdout, encoder.Encode(strings.Join(fs.Args(), " "), keymap))
	return err
}
