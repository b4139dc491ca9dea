package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/RowanDark/cifra/internal/history"
)

func (c *cli) runHistory(args []string) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	limit := fs.Int("limit", 20, "maximum number of runs to list")
	source := fs.String("source", "", "only list runs over this source")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := history.Open(c.cfg.HistoryPath)
	if err != nil {
		return c.fail(err)
	}
	defer store.Close()

	runs, err := store.Recent(c.ctx, *source, *limit)
	if err != nil {
		return c.fail(err)
	}
	for _, run := range runs {
		fmt.Fprintf(c.stdout, "%s  %s  shift=%-2d score=%-5d %-10s %s\n",
			run.CreatedAt.Format(time.RFC3339), run.ID, run.Shift, run.Score, run.Mode, run.Source)
	}
	return 0
}
