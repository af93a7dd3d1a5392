package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"liz/internal/app"
)

type ShowCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
}

func NewShowCommand(stdout, stderr io.Writer, openSession sessionFactory) *ShowCommand {
	return &ShowCommand{stdout: stdout, stderr: stderr, openSession: openSession}
}

func (c *ShowCommand) Run(args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	width := fs.Int("width", 80, "wrap width")
	raw := fs.Bool("raw", false, "print markdown without rendering")
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
	if *raw {
		_, err = fmt.Fprint(c.stdout, app.ShortcutMarkdown(sc))
		return err
	}
	_, err = fmt.Fprintln(c.stdout, app.RenderShortcut(sc, *width, sess.rhythm.Theme != "light"))
	return err
}
