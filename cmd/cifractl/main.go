package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/RowanDark/cifra/internal/config"
	"github.com/RowanDark/cifra/internal/logging"
)

const productName = "cifra"
const cliBanner = productName + " CLI (cifractl)"

// cli carries what every subcommand needs. Subcommands write results to
// stdout and diagnostics to stderr.
type cli struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	cfg    config.Config
	logger *slog.Logger
	audit  *logging.AuditLogger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, cliBanner)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: cifractl <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  caesar     encrypt or decrypt with a Caesar shift")
	fmt.Fprintln(w, "  vigenere   encrypt or decrypt with a Vigenère keyword")
	fmt.Fprintln(w, "  crack      recover the Caesar shift of a ciphertext")
	fmt.Fprintln(w, "  detect     rank every candidate shift")
	fmt.Fprintln(w, "  freq       letter frequency table")
	fmt.Fprintln(w, "  pipeline   run a chain of operations")
	fmt.Fprintln(w, "  recipe     manage saved pipelines")
	fmt.Fprintln(w, "  ops        list available operations")
	fmt.Fprintln(w, "  history    list recorded crack runs")
	fmt.Fprintln(w, "  config     print the resolved configuration")
	fmt.Fprintln(w, "  version    print the version")
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "-h", "--help", "help":
		usage(stdout)
		return 0
	case "version":
		return runVersion(args[1:], stdout, stderr)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	level, _ := config.ParseLevel(cfg.LogLevel)

	audit := logging.Discard()
	if cfg.AuditLogPath != "" {
		audit, err = logging.NewAuditLogger("cifractl", logging.WithoutStdout(), logging.WithFile(cfg.AuditLogPath))
		if err != nil {
			fmt.Fprintf(stderr, "open audit log: %v\n", err)
			return 1
		}
	}
	defer audit.Close()

	c := &cli{
		ctx:    ctx,
		stdout: stdout,
		stderr: stderr,
		cfg:    cfg,
		logger: logging.New(stderr, level, logging.FormatText, "cifractl"),
		audit:  audit,
	}

	switch args[0] {
	case "caesar":
		return c.runCaesar(args[1:])
	case "vigenere":
		return c.runVigenere(args[1:])
	case "crack":
		return c.runCrack(args[1:])
	case "detect":
		return c.runDetect(args[1:])
	case "freq":
		return c.runFreq(args[1:])
	case "pipeline":
		return c.runPipeline(args[1:])
	case "recipe":
		return c.runRecipe(args[1:])
	case "ops":
		return c.runOps(args[1:])
	case "history":
		return c.runHistory(args[1:])
	case "config":
		return c.runConfig(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown command: %s\n", args[0])
		usage(stderr)
		return 2
	}
}

func (c *cli) emit(event logging.AuditEvent) {
	if err := c.audit.Emit(event); err != nil {
		c.logger.Warn("emit audit event", "event", event.EventType, "error", err)
	}
}
