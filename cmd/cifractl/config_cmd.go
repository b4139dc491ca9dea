package main

import (
	"fmt"
	"io"

	"github.com/RowanDark/cifra/internal/config"
)

func (c *cli) runConfig(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(c.stderr, "config subcommand required")
		return 2
	}
	switch args[0] {
	case "print":
		printResolvedConfig(c.stdout, c.cfg)
		return 0
	default:
		fmt.Fprintf(c.stderr, "unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func printResolvedConfig(out io.Writer, cfg config.Config) {
	fmt.Fprintf(out, "dictionary_path: %s\n", cfg.DictionaryPath)
	fmt.Fprintf(out, "recipes_dir: %s\n", cfg.RecipesDir)
	fmt.Fprintf(out, "history_path: %s\n", cfg.HistoryPath)
	fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "audit_log: %s\n", cfg.AuditLogPath)
	fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
	fmt.Fprintf(out, "preview_chars: %d\n", cfg.PreviewChars)
	fmt.Fprintln(out, "server:")
	fmt.Fprintf(out, "  addr: %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  metrics_addr: %s\n", cfg.Server.MetricsAddr)
	fmt.Fprintf(out, "  max_conns: %d\n", cfg.Server.MaxConns)
	fmt.Fprintln(out, "crack:")
	fmt.Fprintf(out, "  min_shift: %d\n", cfg.Crack.MinShift)
	fmt.Fprintf(out, "  max_shift: %d\n", cfg.Crack.MaxShift)
	fmt.Fprintf(out, "  workers: %d\n", cfg.Crack.Workers)
}
