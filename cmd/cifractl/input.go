package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/RowanDark/cifra/internal/extract"
	"github.com/RowanDark/cifra/internal/output"
)

var errUsage = errors.New("usage")

// inputFlags selects the text a command works on: a file (-f) or an
// inline string (-t), never both.
type inputFlags struct {
	file string
	text string
}

func (in *inputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&in.file, "f", "", "input file (.txt or .json)")
	fs.StringVar(&in.text, "t", "", "input text")
}

// read returns the input text and a label for logs and history.
func (in inputFlags) read() (string, string, error) {
	switch {
	case in.file != "" && in.text != "":
		return "", "", fmt.Errorf("%w: -f and -t are mutually exclusive", errUsage)
	case in.file != "":
		doc, err := extract.File(in.file)
		if err != nil {
			return "", "", err
		}
		return doc.Text, in.file, nil
	case in.text != "":
		return in.text, "inline", nil
	default:
		return "", "", fmt.Errorf("%w: one of -f or -t is required", errUsage)
	}
}

// outputFlags control where a transformed text goes. Inline input is
// printed; file input is written next to the source unless -stdout is set.
type outputFlags struct {
	path     string
	toStdout bool
}

func (o *outputFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&o.path, "o", "", "output file (default derived from the input name)")
	fs.BoolVar(&o.toStdout, "stdout", false, "print the result instead of writing a file")
}

func (c *cli) deliver(in inputFlags, out outputFlags, result string, name func(string) string) error {
	if out.toStdout || (in.file == "" && out.path == "") {
		fmt.Fprintln(c.stdout, result)
		return nil
	}
	path := out.path
	if path == "" {
		path = output.In(c.cfg.OutputDir, name(in.file))
	}
	if err := output.WriteFile(path, result); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "saved to %s\n", path)
	return nil
}

// fail prints err and maps it to an exit code: 2 for usage errors, 1 for
// everything else.
func (c *cli) fail(err error) int {
	msg := strings.TrimPrefix(err.Error(), errUsage.Error()+": ")
	fmt.Fprintf(c.stderr, "error: %s\n", msg)
	if errors.Is(err, errUsage) {
		return 2
	}
	return 1
}
