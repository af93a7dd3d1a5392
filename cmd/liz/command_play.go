package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	"liz/internal/dispatch"
)

type PlayCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
}

func NewPlayCommand(stdout, stderr io.Writer, openSession sessionFactory) *PlayCommand {
	return &PlayCommand{stdout: stdout, stderr: stderr, openSession: openSession}
}

func (c *PlayCommand) Run(args []string) error {
	fs := flag.NewFlagSet("play", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dryRun := fs.Bool("dry-run", false, "print key events instead of injecting them")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("action is required")
	}

	ctx := context.Background()
	sess, err := c.openSession(ctx, sessionOptions{dryRun: *dryRun, eventsOut: c.stderr, logOut: c.stderr})
	if err != nil {
		return err
	}
	defer sess.Close()

	cmd := dispatch.Command{Action: fs.Arg(0), Args: fs.Args()[1:]}
	resp := sess.dispatcher.Play(ctx, cmd)
	if err := writeResponse(c.stdout, resp); err != nil {
		return err
	}
	if dispatch.ParseAction(cmd.Action).Mutates() && resp.Code != dispatch.BUG {
		if err := sess.persist(ctx); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
	}
	if resp.Code != dispatch.OK {
		return fmt.Errorf("%s returned %s", cmd.Action, resp.Code)
	}
	return nil
}

func writeResponse(out io.Writer, resp dispatch.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
