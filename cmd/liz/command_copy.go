package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"time"

	"liz/internal/app"
)

const copyTimeout = 3 * time.Second

type CopyCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
	copy        app.CopyFunc
}

func NewCopyCommand(stdout, stderr io.Writer, openSession sessionFactory, copyFn app.CopyFunc) *CopyCommand {
	return &CopyCommand{stdout: stdout, stderr: stderr, openSession: openSession, copy: copyFn}
}

func (c *CopyCommand) Run(args []string) error {
	fs := flag.NewFlagSet("copy", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("exactly one shortcut id is required")
	}

	sess, err := c.openSession(context.Background(), sessionOptions{logOut: c.stderr})
	if err != nil {
		return err
	}
	defer sess.Close()

	sc, err := sess.lookup(fs.Arg(0))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), copyTimeout)
	defer cancel()
	method, err := c.copy(ctx, sc.Shortcut)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.stdout, "copied %q via %s\n", sc.Shortcut, method)
	return err
}
