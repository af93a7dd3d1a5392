package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"liz/internal/dispatch"
	"liz/internal/logging"
)

const maxCommandLine = 4 << 20

type ServeCommand struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
}

func NewServeCommand(stdin io.Reader, stdout, stderr io.Writer, openSession sessionFactory) *ServeCommand {
	return &ServeCommand{stdin: stdin, stdout: stdout, stderr: stderr, openSession: openSession}
}

// Run reads one JSON command per line and answers each with one JSON
// response line. The sheet is saved when input ends or on SIGINT/SIGTERM.
func (c *ServeCommand) Run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.serve(ctx, args)
}

func (c *ServeCommand) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	dryRun := fs.Bool("dry-run", false, "print key events to stderr instead of injecting them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.openSession(ctx, sessionOptions{dryRun: *dryRun, eventsOut: c.stderr, logOut: c.stderr})
	if err != nil {
		return err
	}
	defer sess.Close()

	lines, readErr := readLines(ctx, c.stdin)
	var scanErr error
serveLoop:
	for {
		select {
		case <-ctx.Done():
			sess.logger.Info("serve_interrupted")
			break serveLoop
		case line, ok := <-lines:
			if !ok {
				scanErr = <-readErr
				break serveLoop
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var resp dispatch.Response
			cmd, err := dispatch.ParseCommand([]byte(line))
			if err != nil {
				resp = dispatch.Response{Code: dispatch.BUG, Results: []string{"invalid command: " + err.Error()}}
			} else {
				resp = sess.dispatcher.Play(ctx, cmd)
			}
			if err := writeResponse(c.stdout, resp); err != nil {
				return err
			}
		}
	}

	// Save with a fresh context so an interrupt still persists the sheet.
	if err := sess.persist(context.WithoutCancel(ctx)); err != nil {
		sess.logger.Error("persist_failed", logging.Err(err))
		return err
	}
	return scanErr
}

// readLines scans in on its own goroutine so the caller can stop waiting
// when ctx is done. The reader goroutine stays blocked in Read until the
// input closes; serve exits right after, so that is tolerated. readErr
// receives the scanner error once lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxCommandLine)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()
	return lines, readErr
}
