package main

import (
	"encoding/json"
	"flag"

	"github.com/RowanDark/cifra/internal/cryptanalysis"
)

type freqRow struct {
	Letter  string  `json:"letter"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type freqReport struct {
	Source  string    `json:"source"`
	Total   int       `json:"total"`
	Letters []freqRow `json:"letters"`
}

func (c *cli) runFreq(args []string) int {
	fs := flag.NewFlagSet("freq", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	var in inputFlags
	in.register(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	text, source, err := in.read()
	if err != nil {
		return c.fail(err)
	}

	hist := cryptanalysis.Frequency(text)
	if !*asJSON {
		if err := hist.WriteTable(c.stdout); err != nil {
			return c.fail(err)
		}
		return 0
	}

	report := freqReport{Source: source, Total: hist.Total, Letters: make([]freqRow, 0, len(hist.Letters))}
	for _, lc := range hist.Letters {
		report.Letters = append(report.Letters, freqRow{Letter: string(lc.Letter), Count: lc.Count, Percent: lc.Percent})
	}
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return c.fail(err)
	}
	return 0
}
