package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"liz/internal/app"
	"liz/internal/dispatch"
	"liz/internal/logging"
)

type UICommand struct {
	stderr      io.Writer
	openSession sessionFactory
	runUI       uiRunner
	copy        app.CopyFunc
	openLog     func() (io.WriteCloser, error)
}

func NewUICommand(stderr io.Writer, openSession sessionFactory, runUI uiRunner, copyFn app.CopyFunc) *UICommand {
	return &UICommand{
		stderr:      stderr,
		openSession: openSession,
		runUI:       runUI,
		copy:        copyFn,
		openLog:     uiLogWriter,
	}
}

// Run shows the launcher. The selection is executed after the UI has
// closed so keystrokes land in the window that regains focus.
func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dryRun := fs.Bool("dry-run", false, "print key events instead of injecting them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logOut := io.Writer(c.stderr)
	if c.openLog != nil {
		if file, err := c.openLog(); err == nil {
			defer file.Close()
			logOut = file
		}
	}
	sess, err := c.openSession(ctx, sessionOptions{dryRun: *dryRun, eventsOut: c.stderr, logOut: logOut})
	if err != nil {
		return err
	}
	defer sess.Close()

	selected, err := c.runUI(ctx, app.Options{
		Source: sess.dispatcher.Sheet(),
		Dark:   sess.rhythm.Theme != "light",
		Copy:   c.copy,
	})
	if err != nil {
		return err
	}
	if selected != nil {
		resp := sess.dispatcher.Play(ctx, dispatch.Command{
			Action: dispatch.ActionExecute.String(),
			Args:   []string{selected.ID.String()},
		})
		if resp.Code != dispatch.OK {
			sess.logger.Warn("execute_failed", logging.F("id", selected.ID), logging.F("results", resp.Results))
			fmt.Fprintf(c.stderr, "execute %s: %s %v\n", selected.ID, resp.Code, resp.Results)
		}
	}
	return sess.persist(context.WithoutCancel(ctx))
}
