package main

import (
	"context"
	"io"
	"os"

	"liz/internal/app"
	"liz/internal/clipboard"
	"liz/internal/types"
)

type commandRunner interface {
	Run(args []string) error
}

type uiRunner func(ctx context.Context, opts app.Options) (*types.Shortcut, error)

type commandWiring struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
	copy        app.CopyFunc
	runUI       uiRunner
}

func defaultCommandWiring(stdin io.Reader, stdout, stderr io.Writer) commandWiring {
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdin:       stdin,
		stdout:      stdout,
		stderr:      stderr,
		openSession: openSession,
		copy:        clipboard.Copy,
		runUI: func(ctx context.Context, opts app.Options) (*types.Shortcut, error) {
			return app.Run(ctx, opts)
		},
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"play":    NewPlayCommand(wiring.stdout, wiring.stderr, wiring.openSession),
		"serve":   NewServeCommand(wiring.stdin, wiring.stdout, wiring.stderr, wiring.openSession),
		"encode":  NewEncodeCommand(wiring.stdout, wiring.stderr),
		"search":  NewSearchCommand(wiring.stdout, wiring.stderr, wiring.openSession),
		"show":    NewShowCommand(wiring.stdout, wiring.stderr, wiring.openSession),
		"copy":    NewCopyCommand(wiring.stdout, wiring.stderr, wiring.openSession, wiring.copy),
		"convert": NewConvertCommand(wiring.stdout, wiring.stderr),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr),
		"ui":      NewUICommand(wiring.stderr, wiring.openSession, wiring.runUI, wiring.copy),
	}
}
