package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"liz/internal/logging"
	"liz/internal/types"
)

type SearchCommand struct {
	stdout      io.Writer
	stderr      io.Writer
	openSession sessionFactory
}

func NewSearchCommand(stdout, stderr io.Writer, openSession sessionFactory) *SearchCommand {
	return &SearchCommand{stdout: stdout, stderr: stderr, openSession: openSession}
}

func (c *SearchCommand) Run(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	ranked := fs.Bool("ranked", false, "rank by fuzzy match score instead of filtering")
	format := fs.String("format", "", "line template using #id #hit_number #shortcut #application #description #comment")
	deleted := fs.Bool("deleted", false, "list soft-deleted records instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := c.openSession(context.Background(), sessionOptions{logOut: c.stderr})
	if err != nil {
		return err
	}
	defer sess.Close()

	query := strings.Join(fs.Args(), " ")
	sheet := sess.dispatcher.Sheet()
	var records []*types.Shortcut
	switch {
	case *deleted:
		records = sheet.Deleted()
	case *ranked:
		records = sheet.RankedSearch(query)
	default:
		records = sheet.Search(query)
	}
	sess.logger.Debug("search", logging.F("query", query), logging.F("matches", len(records)))

	if *format != "" {
		for _, sc := range records {
			if _, err := fmt.Fprintln(c.stdout, sc.Format(*format)); err != nil {
				return err
			}
		}
		return nil
	}
	printShortcuts(c.stdout, records)
	return nil
}
